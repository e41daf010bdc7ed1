package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/triskelion9/justdjangoecomm/internal/config"
	"github.com/triskelion9/justdjangoecomm/internal/models"
	"github.com/triskelion9/justdjangoecomm/internal/repo"
	"github.com/triskelion9/justdjangoecomm/internal/service"
)

func newWebhookHandler(t *testing.T) (*WebhookHTTP, *repo.GormRepo) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, config.Migrate(db))

	r := &repo.GormRepo{DB: db}
	return &WebhookHTTP{Svc: &service.OrderService{Repo: r}}, r
}

func postWebhook(t *testing.T, h *WebhookHTTP, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.PaymentConfirmation(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func seedCart(t *testing.T, r *repo.GormRepo) *models.Order {
	t.Helper()
	ctx := context.Background()

	item := &models.Item{Slug: "blue-shirt", Title: "blue shirt", Price: 10}
	require.NoError(t, r.CreateItem(ctx, item))
	_, _, err := r.AddItemToCart(ctx, 1, item.ID)
	require.NoError(t, err)

	order, err := r.FindOpenOrder(ctx, 1)
	require.NoError(t, err)
	return order
}

func TestPaymentWebhookReplayReturnsOK(t *testing.T) {
	h, r := newWebhookHandler(t)
	order := seedCart(t, r)

	body := `{"event_id":"evt_1","order_ref":"` + strconv.FormatUint(uint64(order.ID), 10) + `","charge_id":"ch_1"}`

	rec := postWebhook(t, h, body)
	assert.Equal(t, http.StatusOK, rec.Code)

	// replay of the same event id is acknowledged, not re-applied
	rec = postWebhook(t, h, body)
	assert.Equal(t, http.StatusOK, rec.Code)

	placed, err := r.FindOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, placed.Ordered)

	var payments int64
	require.NoError(t, r.DB.Model(&models.Payment{}).Count(&payments).Error)
	assert.EqualValues(t, 1, payments)
}

func TestPaymentWebhookMissingFields(t *testing.T) {
	h, _ := newWebhookHandler(t)

	rec := postWebhook(t, h, `{"order_ref":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentWebhookUnknownOrder(t *testing.T) {
	h, _ := newWebhookHandler(t)

	rec := postWebhook(t, h, `{"event_id":"evt_1","order_ref":"424242","charge_id":"ch_1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
