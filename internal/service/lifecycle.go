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
	"github.com/triskelion9/justdjangoecomm/internal/notify"
	"github.com/triskelion9/justdjangoecomm/internal/repo"
	"github.com/triskelion9/justdjangoecomm/internal/util"
)

// OrderService owns every transition of a placed order: fulfillment flags,
// refunds, and the idempotent payment confirmation arriving over the webhook.
type OrderService struct {
	Repo     *repo.GormRepo
	Producer EventPublisher
	Notifier notify.Notifier
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.Repo.FindOrderByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uint, limit, offset int) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx, userID, limit, offset)
}

// MarkDelivered flips the delivered flag. Only placed orders can be
// delivered.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Ordered {
		return nil, fmt.Errorf("%w: order %d is not placed", ErrConflict, orderID)
	}

	order.Delivered = true
	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, order, "order_delivered")
	return order, nil
}

// MarkReceived sets the received flag, repairing the implied delivered flag
// when an administrator skips straight to received.
func (s *OrderService) MarkReceived(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Ordered {
		return nil, fmt.Errorf("%w: order %d is not placed", ErrConflict, orderID)
	}

	order.Delivered = true
	order.Received = true
	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, order, "order_received")
	return order, nil
}

// RequestRefund files a refund request against the order the ref code names.
func (s *OrderService) RequestRefund(ctx context.Context, refCode, reason string) (*models.Order, error) {
	order, err := s.Repo.FindOrderByRefCode(ctx, refCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %q", ErrNotFound, refCode)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Repo.FileRefundRequest(ctx, order.ID, reason); err != nil {
		return nil, err
	}
	order.RefundRequested = true

	if s.Notifier != nil {
		s.Notifier.Notify(ctx, order.UserID, "Your refund request has reached us.", notify.SeverityInfo)
	}
	s.publish(ctx, order, "refund_requested")
	return order, nil
}

// GrantRefund clears the pending flag and sets granted, accepting the most
// recent refund request on record.
func (s *OrderService) GrantRefund(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.RefundRequested = false
	order.RefundGranted = true
	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return nil, err
	}
	if err := s.Repo.AcceptLatestRefund(ctx, orderID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.Notify(ctx, order.UserID, "Your refund was granted.", notify.SeverityInfo)
	}
	s.publish(ctx, order, "refund_granted")
	return order, nil
}

// ConfirmPayment applies an asynchronous provider confirmation exactly once
// per event id. The event is consumed inside the place transaction, so a
// confirmation that fails to apply leaves the event unconsumed and the
// provider's retry still lands; the transition itself no-ops on an
// already-ordered order, so a distinct event for a placed order changes
// nothing.
func (s *OrderService) ConfirmPayment(ctx context.Context, eventID, orderRef, chargeID, email string) (*models.Order, error) {
	id, err := strconv.ParseUint(orderRef, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: order ref %q", ErrNotFound, orderRef)
	}
	order, err := s.GetOrder(ctx, uint(id))
	if err != nil {
		return nil, err
	}

	total := OrderTotal(order)
	placedOrder, placed, err := s.Repo.PlaceOrder(ctx, order.ID, chargeID, util.NewRefCode(), eventID, total)
	if err != nil {
		if errors.Is(err, repo.ErrEventExists) {
			return nil, fmt.Errorf("%w: event %q", ErrDuplicateEvent, eventID)
		}
		return nil, err
	}
	if placed {
		if s.Notifier != nil {
			s.Notifier.Notify(ctx, placedOrder.UserID, "Your order was successful!", notify.SeverityInfo)
		}
		s.publishPlaced(ctx, placedOrder, email)
	}
	return placedOrder, nil
}

func (s *OrderService) publishPlaced(ctx context.Context, order *models.Order, email string) {
	if s.Producer == nil {
		return
	}
	err := s.Producer.PublishEvent(ctx, mykafka.TopicOrderEvents, strconv.FormatUint(uint64(order.ID), 10), map[string]interface{}{
		"type":         "order_placed",
		"orderID":      order.ID,
		"userID":       order.UserID,
		"refCode":      order.RefCode,
		"receiptEmail": email,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("order event publish failed", "error", err)
	}
}

func (s *OrderService) publish(ctx context.Context, order *models.Order, eventType string) {
	if s.Producer == nil {
		return
	}
	err := s.Producer.PublishEvent(ctx, mykafka.TopicOrderEvents, strconv.FormatUint(uint64(order.ID), 10), map[string]interface{}{
		"type":    eventType,
		"orderID": order.ID,
		"userID":  order.UserID,
		"refCode": order.RefCode,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("order event publish failed", "error", err)
	}
}
