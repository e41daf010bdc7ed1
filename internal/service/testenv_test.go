package service

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/triskelion9/justdjangoecomm/internal/config"
	"github.com/triskelion9/justdjangoecomm/internal/models"
	"github.com/triskelion9/justdjangoecomm/internal/payment"
	"github.com/triskelion9/justdjangoecomm/internal/repo"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one shared in-memory database per test
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return &repo.GormRepo{DB: db}
}

func createItem(t *testing.T, r *repo.GormRepo, slug string, price float64, discount *float64) *models.Item {
	t.Helper()

	item := &models.Item{
		Slug:        slug,
		Title:       "item " + slug,
		Price:       price,
		Description: "test item",
	}
	item.DiscountPrice = discount
	require.NoError(t, r.CreateItem(context.Background(), item))
	return item
}

func floatPtr(v float64) *float64 { return &v }

// fakeGateway lets a test script the provider's answer and inspect what was
// charged.
type fakeGateway struct {
	mu       sync.Mutex
	requests []payment.ChargeRequest
	result   *payment.ChargeResult
	err      error
}

func (g *fakeGateway) Charge(_ context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	if g.result != nil {
		return g.result, nil
	}
	return &payment.ChargeResult{ProviderChargeID: "ch_test"}, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

type publishedEvent struct {
	Topic string
	Key   string
	Event interface{}
}

type fakeProducer struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakeProducer) PublishEvent(_ context.Context, topic, key string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

type notification struct {
	UserID   uint
	Message  string
	Severity string
}

type fakeNotifier struct {
	mu    sync.Mutex
	notes []notification
}

func (n *fakeNotifier) Notify(_ context.Context, userID uint, message, severity string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, notification{UserID: userID, Message: message, Severity: severity})
}
