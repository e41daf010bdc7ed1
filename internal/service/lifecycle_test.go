package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triskelion9/justdjangoecomm/internal/models"
	"github.com/triskelion9/justdjangoecomm/internal/repo"
	"github.com/triskelion9/justdjangoecomm/internal/util"
)

type lifecycleEnv struct {
	Repo     *repo.GormRepo
	Cart     *CartService
	Notifier *fakeNotifier
	Svc      *OrderService
}

func newLifecycleEnv(t *testing.T) *lifecycleEnv {
	t.Helper()

	r := newTestRepo(t)
	env := &lifecycleEnv{
		Repo:     r,
		Cart:     &CartService{Repo: r},
		Notifier: &fakeNotifier{},
	}
	env.Svc = &OrderService{Repo: r, Notifier: env.Notifier, Producer: &fakeProducer{}}
	return env
}

// placedOrder seeds a cart with one line and runs the place transition.
func (env *lifecycleEnv) placedOrder(t *testing.T, userID uint) *models.Order {
	t.Helper()
	ctx := context.Background()

	slug := "item-" + strconv.FormatUint(uint64(userID), 10)
	createItem(t, env.Repo, slug, 10, nil)
	_, _, err := env.Cart.AddItem(ctx, userID, slug)
	require.NoError(t, err)

	open, err := env.Repo.FindOpenOrder(ctx, userID)
	require.NoError(t, err)

	order, placed, err := env.Repo.PlaceOrder(ctx, open.ID, "ch_seed", util.NewRefCode(), "", 10)
	require.NoError(t, err)
	require.True(t, placed)
	return order
}

func TestMarkDelivered(t *testing.T) {
	env := newLifecycleEnv(t)
	order := env.placedOrder(t, 1)

	got, err := env.Svc.MarkDelivered(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, got.Delivered)
	assert.False(t, got.Received)
}

func TestMarkDeliveredRequiresPlacedOrder(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	createItem(t, env.Repo, "blue-shirt", 10, nil)
	_, _, err := env.Cart.AddItem(ctx, 1, "blue-shirt")
	require.NoError(t, err)
	open, err := env.Repo.FindOpenOrder(ctx, 1)
	require.NoError(t, err)

	_, err = env.Svc.MarkDelivered(ctx, open.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMarkReceivedRepairsDeliveredFlag(t *testing.T) {
	env := newLifecycleEnv(t)
	order := env.placedOrder(t, 1)
	require.False(t, order.Delivered)

	got, err := env.Svc.MarkReceived(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, got.Delivered)
	assert.True(t, got.Received)
}

func TestRequestRefundByRefCode(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()
	order := env.placedOrder(t, 1)

	got, err := env.Svc.RequestRefund(ctx, order.RefCode, "arrived damaged")
	require.NoError(t, err)
	assert.True(t, got.RefundRequested)
	assert.False(t, got.RefundGranted)

	var refund models.Refund
	require.NoError(t, env.Repo.DB.Where("order_id = ?", order.ID).First(&refund).Error)
	assert.Equal(t, "arrived damaged", refund.Reason)
	assert.False(t, refund.Accepted)

	stored, err := env.Repo.FindOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.RefundRequested)

	require.NotEmpty(t, env.Notifier.notes)
}

func TestRequestRefundUnknownRefCode(t *testing.T) {
	env := newLifecycleEnv(t)

	_, err := env.Svc.RequestRefund(context.Background(), "nosuchcode", "whatever")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGrantRefundClearsPendingFlag(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()
	order := env.placedOrder(t, 1)

	_, err := env.Svc.RequestRefund(ctx, order.RefCode, "wrong size")
	require.NoError(t, err)

	got, err := env.Svc.GrantRefund(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, got.RefundRequested)
	assert.True(t, got.RefundGranted)

	var refund models.Refund
	require.NoError(t, env.Repo.DB.Where("order_id = ?", order.ID).Order("id DESC").First(&refund).Error)
	assert.True(t, refund.Accepted)
}

func TestGrantRefundTracksLatestRequest(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()
	order := env.placedOrder(t, 1)

	_, err := env.Svc.RequestRefund(ctx, order.RefCode, "first reason")
	require.NoError(t, err)
	_, err = env.Svc.RequestRefund(ctx, order.RefCode, "second reason")
	require.NoError(t, err)

	_, err = env.Svc.GrantRefund(ctx, order.ID)
	require.NoError(t, err)

	var refunds []models.Refund
	require.NoError(t, env.Repo.DB.Where("order_id = ?", order.ID).Order("id").Find(&refunds).Error)
	require.Len(t, refunds, 2)
	assert.False(t, refunds[0].Accepted)
	assert.True(t, refunds[1].Accepted)
}

func TestConfirmPaymentPlacesOpenOrder(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	createItem(t, env.Repo, "blue-shirt", 10, nil)
	_, _, err := env.Cart.AddItem(ctx, 1, "blue-shirt")
	require.NoError(t, err)
	open, err := env.Repo.FindOpenOrder(ctx, 1)
	require.NoError(t, err)

	orderRef := strconv.FormatUint(uint64(open.ID), 10)
	got, err := env.Svc.ConfirmPayment(ctx, "evt_1", orderRef, "ch_async", "buyer@example.com")
	require.NoError(t, err)
	assert.True(t, got.Ordered)
	assert.Len(t, got.RefCode, 20)

	placed, err := env.Repo.FindOrderByID(ctx, open.ID)
	require.NoError(t, err)
	require.NotNil(t, placed.Payment)
	assert.Equal(t, "ch_async", placed.Payment.ChargeID)
}

func TestConfirmPaymentReplayIsNoOp(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	createItem(t, env.Repo, "blue-shirt", 10, nil)
	_, _, err := env.Cart.AddItem(ctx, 1, "blue-shirt")
	require.NoError(t, err)
	open, err := env.Repo.FindOpenOrder(ctx, 1)
	require.NoError(t, err)
	orderRef := strconv.FormatUint(uint64(open.ID), 10)

	first, err := env.Svc.ConfirmPayment(ctx, "evt_1", orderRef, "ch_async", "")
	require.NoError(t, err)

	_, err = env.Svc.ConfirmPayment(ctx, "evt_1", orderRef, "ch_async", "")
	assert.ErrorIs(t, err, ErrDuplicateEvent)

	// a distinct event for an already-placed order changes nothing either
	second, err := env.Svc.ConfirmPayment(ctx, "evt_2", orderRef, "ch_other", "")
	require.NoError(t, err)
	assert.Equal(t, first.RefCode, second.RefCode)

	var payments int64
	require.NoError(t, env.Repo.DB.Model(&models.Payment{}).Count(&payments).Error)
	assert.EqualValues(t, 1, payments)
}

func TestConfirmPaymentUnknownOrder(t *testing.T) {
	env := newLifecycleEnv(t)

	_, err := env.Svc.ConfirmPayment(context.Background(), "evt_1", "9999", "ch_x", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmPaymentFailedAttemptKeepsEventUsable(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	createItem(t, env.Repo, "blue-shirt", 10, nil)
	_, _, err := env.Cart.AddItem(ctx, 1, "blue-shirt")
	require.NoError(t, err)
	open, err := env.Repo.FindOpenOrder(ctx, 1)
	require.NoError(t, err)

	// a confirmation that cannot be applied must not consume the event
	_, err = env.Svc.ConfirmPayment(ctx, "evt_1", "999999", "ch_async", "")
	require.ErrorIs(t, err, ErrNotFound)

	got, err := env.Svc.ConfirmPayment(ctx, "evt_1", strconv.FormatUint(uint64(open.ID), 10), "ch_async", "")
	require.NoError(t, err)
	assert.True(t, got.Ordered)

	var payments int64
	require.NoError(t, env.Repo.DB.Model(&models.Payment{}).Count(&payments).Error)
	assert.EqualValues(t, 1, payments)
}
