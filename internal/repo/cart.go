package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/triskelion9/justdjangoecomm/internal/models"
)

// FindOpenOrder returns the user's cart (ordered=false) with lines and item
// records preloaded. gorm.ErrRecordNotFound when no cart is open.
func (r *GormRepo) FindOpenOrder(ctx context.Context, userID uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Item").
		Preload("Coupon").
		Where("user_id = ? AND ordered = ?", userID, false).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// AddItemToCart finds or creates the user's open order and either bumps the
// quantity of an existing line or appends a new one. Row locks serialize
// concurrent mutations of an existing cart; the first-ever add races on rows
// that do not exist yet, so the partial unique index on (user_id) WHERE
// ordered=false rejects the loser, which then retries against the winner's
// cart. The line-level unique index covers the same race on order items.
func (r *GormRepo) AddItemToCart(ctx context.Context, userID, itemID uint) (*models.OrderItem, bool, error) {
	line, created, err := r.addItemToCart(ctx, userID, itemID)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.addItemToCart(ctx, userID, itemID)
	}
	return line, created, err
}

func (r *GormRepo) addItemToCart(ctx context.Context, userID, itemID uint) (line *models.OrderItem, created bool, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := lockForUpdate(tx).Where("user_id = ? AND ordered = ?", userID, false).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			order = models.Order{UserID: userID, StartDate: time.Now().UTC()}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var existing models.OrderItem
		err = lockForUpdate(tx).Where("order_id = ? AND item_id = ?", order.ID, itemID).First(&existing).Error
		if err == nil {
			if err := tx.Model(&existing).Update("quantity", gorm.Expr("quantity + 1")).Error; err != nil {
				return err
			}
			if err := tx.Where("id = ?", existing.ID).First(&existing).Error; err != nil {
				return err
			}
			line = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		newline := models.OrderItem{
			OrderID:  order.ID,
			UserID:   userID,
			ItemID:   itemID,
			Quantity: 1,
		}
		if err := tx.Create(&newline).Error; err != nil {
			return err
		}
		line = &newline
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return line, created, nil
}

// RemoveItemFromCart drops the whole line. found=false (nil error) when the
// user has no open cart or the item is not in it.
func (r *GormRepo) RemoveItemFromCart(ctx context.Context, userID, itemID uint) (found bool, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := lockForUpdate(tx).Where("user_id = ? AND ordered = ?", userID, false).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		res := tx.Where("order_id = ? AND item_id = ?", order.ID, itemID).Delete(&models.OrderItem{})
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// DecrementItemInCart lowers a line's quantity by one, removing the line when
// it hits zero. found=false (nil error) mirrors RemoveItemFromCart.
func (r *GormRepo) DecrementItemInCart(ctx context.Context, userID, itemID uint) (line *models.OrderItem, removed, found bool, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := lockForUpdate(tx).Where("user_id = ? AND ordered = ?", userID, false).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var existing models.OrderItem
		err = lockForUpdate(tx).Where("order_id = ? AND item_id = ?", order.ID, itemID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		if existing.Quantity > 1 {
			if err := tx.Model(&existing).Update("quantity", gorm.Expr("quantity - 1")).Error; err != nil {
				return err
			}
			if err := tx.Where("id = ?", existing.ID).First(&existing).Error; err != nil {
				return err
			}
			line = &existing
			return nil
		}

		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return nil, false, false, err
	}
	return line, removed, found, nil
}

// CountCartLines counts distinct lines in the open cart, 0 when none is open.
func (r *GormRepo) CountCartLines(ctx context.Context, userID uint) (int64, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Where("user_id = ? AND ordered = ?", userID, false).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
