package repo

import (
	"context"

	"github.com/triskelion9/justdjangoecomm/internal/models"
)

func (r *GormRepo) FindItemBySlug(ctx context.Context, slug string) (*models.Item, error) {
	var item models.Item
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) ListItems(ctx context.Context, limit, offset int) ([]models.Item, error) {
	var items []models.Item
	if err := r.DB.WithContext(ctx).Order("id").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateItem(ctx context.Context, item *models.Item) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) SaveItem(ctx context.Context, item *models.Item) error {
	return r.DB.WithContext(ctx).Save(item).Error
}

func (r *GormRepo) DeleteItem(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Item{}, id).Error
}
