package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/triskelion9/justdjangoecomm/internal/logging"
	"github.com/triskelion9/justdjangoecomm/internal/models"
	"github.com/triskelion9/justdjangoecomm/internal/mykafka"
	"github.com/triskelion9/justdjangoecomm/internal/repo"
)

// Cart notices, surfaced to the caller and never persisted.
const (
	NoticeItemAdded       = "This item was added to your cart."
	NoticeQuantityUpdated = "This item's quantity was updated."
	NoticeItemRemoved     = "This item was removed from your cart."
	NoticeItemNotInCart   = "This item was not found in your cart."
	NoticeNoActiveOrder   = "No active order found."
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event interface{}) error
}

type CartService struct {
	Repo     *repo.GormRepo
	Producer EventPublisher
}

// AddItem puts one unit of the slug's item into the user's open cart,
// creating the cart when none is open and bumping the quantity when the item
// is already a line.
func (s *CartService) AddItem(ctx context.Context, userID uint, slug string) (*models.OrderItem, string, error) {
	item, err := s.Repo.FindItemBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("%w: item %q", ErrNotFound, slug)
	}
	if err != nil {
		return nil, "", err
	}

	line, created, err := s.Repo.AddItemToCart(ctx, userID, item.ID)
	if err != nil {
		return nil, "", err
	}
	line.Item = *item

	notice := NoticeQuantityUpdated
	eventType := "cart_quantity_updated"
	if created {
		notice = NoticeItemAdded
		eventType = "cart_item_added"
	}
	s.publish(ctx, userID, eventType, item.ID, line.Quantity)

	return line, notice, nil
}

// RemoveItem drops the whole line. A missing cart or a line the item is not
// in is a no-op with a notice, never an error.
func (s *CartService) RemoveItem(ctx context.Context, userID uint, slug string) (string, error) {
	item, err := s.Repo.FindItemBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: item %q", ErrNotFound, slug)
	}
	if err != nil {
		return "", err
	}

	found, err := s.Repo.RemoveItemFromCart(ctx, userID, item.ID)
	if err != nil {
		return "", err
	}
	if !found {
		return NoticeItemNotInCart, nil
	}

	s.publish(ctx, userID, "cart_item_removed", item.ID, 0)
	return NoticeItemRemoved, nil
}

// DecrementItem lowers the line quantity by one, removing the line at zero.
func (s *CartService) DecrementItem(ctx context.Context, userID uint, slug string) (*models.OrderItem, string, error) {
	item, err := s.Repo.FindItemBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("%w: item %q", ErrNotFound, slug)
	}
	if err != nil {
		return nil, "", err
	}

	line, removed, found, err := s.Repo.DecrementItemInCart(ctx, userID, item.ID)
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, NoticeItemNotInCart, nil
	}
	if removed {
		s.publish(ctx, userID, "cart_item_removed", item.ID, 0)
		return nil, NoticeItemRemoved, nil
	}

	line.Item = *item
	s.publish(ctx, userID, "cart_quantity_updated", item.ID, line.Quantity)
	return line, NoticeQuantityUpdated, nil
}

// Summary returns the open cart with its coupon-adjusted total.
func (s *CartService) Summary(ctx context.Context, userID uint) (*models.Order, float64, error) {
	order, err := s.Repo.FindOpenOrder(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, ErrNoActiveOrder
	}
	if err != nil {
		return nil, 0, err
	}
	return order, OrderTotal(order), nil
}

// LineCount counts distinct lines, the way the cart badge does.
func (s *CartService) LineCount(ctx context.Context, userID uint) (int64, error) {
	return s.Repo.CountCartLines(ctx, userID)
}

func (s *CartService) publish(ctx context.Context, userID uint, eventType string, itemID, quantity uint) {
	if s.Producer == nil {
		return
	}
	err := s.Producer.PublishEvent(ctx, mykafka.TopicCartEvents, strconv.FormatUint(uint64(userID), 10), map[string]interface{}{
		"type":     eventType,
		"userID":   userID,
		"itemID":   itemID,
		"quantity": quantity,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("cart event publish failed", "error", err)
	}
}
