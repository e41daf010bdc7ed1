package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/triskelion9/justdjangoecomm/internal/models"
)

// FindDefaultAddress returns (nil, nil) when the user has no default address
// of the given type.
func (r *GormRepo) FindDefaultAddress(ctx context.Context, userID uint, addressType string) (*models.Address, error) {
	var addr models.Address
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND address_type = ? AND \"default\" = ?", userID, addressType, true).
		First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (r *GormRepo) SaveAddress(ctx context.Context, addr *models.Address) error {
	return r.DB.WithContext(ctx).Save(addr).Error
}

// SetDefaultAddress makes addr the sole default for its (user, type) pair.
func (r *GormRepo) SetDefaultAddress(ctx context.Context, addr *models.Address) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Address{}).
			Where("user_id = ? AND address_type = ? AND id <> ?", addr.UserID, addr.AddressType, addr.ID).
			Update("default", false).Error
		if err != nil {
			return err
		}
		addr.Default = true
		return tx.Save(addr).Error
	})
}
