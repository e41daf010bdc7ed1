package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/triskelion9/justdjangoecomm/internal/models"
)

func (r *GormRepo) FindOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items.Item").
		Preload("Coupon").
		Preload("Payment").
		Preload("ShippingAddress").
		Preload("BillingAddress").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) FindOrderByRefCode(ctx context.Context, refCode string) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items.Item").
		Preload("Coupon").
		Where("ref_code = ?", refCode).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uint, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items.Item").
		Where("user_id = ? AND ordered = ?", userID, true).
		Order("ordered_date DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) SaveOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Omit("Items", "ShippingAddress", "BillingAddress", "Payment", "Coupon").Save(order).Error
}

// PlaceOrder is the single "mark ordered + attach payment" write, shared by
// the synchronous checkout path and the webhook path. Placing an order that
// is already ordered is a no-op (placed=false) so replays are harmless. A
// non-empty eventID is consumed in the same transaction: ErrEventExists on a
// replay, and a failed transaction leaves the event unconsumed so the
// provider's retry can still apply it.
func (r *GormRepo) PlaceOrder(ctx context.Context, orderID uint, chargeID, refCode, eventID string, amount float64) (order *models.Order, placed bool, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if eventID != "" {
			if err := markEventProcessed(tx, eventID); err != nil {
				return err
			}
		}

		var o models.Order
		if err := lockForUpdate(tx).Where("id = ?", orderID).First(&o).Error; err != nil {
			return err
		}
		if o.Ordered {
			order = &o
			return nil
		}

		now := time.Now().UTC()
		pay := models.Payment{
			ChargeID:  chargeID,
			UserID:    o.UserID,
			Amount:    amount,
			Timestamp: now,
		}
		if err := tx.Create(&pay).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.OrderItem{}).Where("order_id = ?", o.ID).Update("ordered", true).Error; err != nil {
			return err
		}

		o.Ordered = true
		o.OrderedDate = &now
		o.RefCode = refCode
		o.PaymentID = &pay.ID
		if err := tx.Omit("Items", "ShippingAddress", "BillingAddress", "Payment", "Coupon").Save(&o).Error; err != nil {
			return err
		}

		order = &o
		placed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return order, placed, nil
}

// FileRefundRequest flags the order and records the refund reason in one
// transaction, so the flag is never set without a refund row behind it.
func (r *GormRepo) FileRefundRequest(ctx context.Context, orderID uint, reason string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Order{}).Where("id = ?", orderID).Update("refund_requested", true).Error
		if err != nil {
			return err
		}
		return tx.Create(&models.Refund{OrderID: orderID, Reason: reason}).Error
	})
}

// AcceptLatestRefund flags the most recent refund request for the order as
// accepted. Older requests keep their history untouched.
func (r *GormRepo) AcceptLatestRefund(ctx context.Context, orderID uint) error {
	var refund models.Refund
	err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Order("id DESC").First(&refund).Error
	if err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&refund).Update("accepted", true).Error
}
