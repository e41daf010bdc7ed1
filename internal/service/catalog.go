package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"gorm.io/gorm"

	"github.com/triskelion9/justdjangoecomm/internal/logging"
	"github.com/triskelion9/justdjangoecomm/internal/models"
	"github.com/triskelion9/justdjangoecomm/internal/mykafka"
	"github.com/triskelion9/justdjangoecomm/internal/repo"
	"github.com/triskelion9/justdjangoecomm/internal/search"
)

// CatalogService is the read side the cart consumes plus the admin write
// side. Writes keep the search index in sync; index failures are logged and
// never fail the write.
type CatalogService struct {
	Repo     *repo.GormRepo
	ES       *elasticsearch.Client
	Producer EventPublisher
}

func (s *CatalogService) GetItem(ctx context.Context, slug string) (*models.Item, error) {
	item, err := s.Repo.FindItemBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: item %q", ErrNotFound, slug)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CatalogService) ListItems(ctx context.Context, limit, offset int) ([]models.Item, error) {
	return s.Repo.ListItems(ctx, limit, offset)
}

func (s *CatalogService) SearchItems(ctx context.Context, query string, from, size int) (int64, []models.Item, error) {
	if s.ES == nil {
		return 0, nil, fmt.Errorf("%w: search unavailable", ErrValidation)
	}
	return search.Search(ctx, s.ES, query, from, size)
}

func (s *CatalogService) CreateItem(ctx context.Context, item *models.Item) error {
	if item.Slug == "" || item.Title == "" {
		return fmt.Errorf("%w: slug and title required", ErrValidation)
	}
	if item.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}

	if err := s.Repo.CreateItem(ctx, item); err != nil {
		return err
	}
	s.index(ctx, item)
	s.publish(ctx, item, "item_created")
	return nil
}

func (s *CatalogService) UpdateItem(ctx context.Context, item *models.Item) error {
	if err := s.Repo.SaveItem(ctx, item); err != nil {
		return err
	}
	s.index(ctx, item)
	s.publish(ctx, item, "item_updated")
	return nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, slug string) error {
	item, err := s.GetItem(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteItem(ctx, item.ID); err != nil {
		return err
	}
	if s.ES != nil {
		if err := search.DeleteItem(ctx, s.ES, item.ID); err != nil {
			logging.FromContext(ctx).Warn("search delete failed", "item_id", item.ID, "error", err)
		}
	}
	s.publish(ctx, item, "item_deleted")
	return nil
}

func (s *CatalogService) index(ctx context.Context, item *models.Item) {
	if s.ES == nil {
		return
	}
	if err := search.IndexItem(ctx, s.ES, item); err != nil {
		logging.FromContext(ctx).Warn("search index failed", "item_id", item.ID, "error", err)
	}
}

func (s *CatalogService) publish(ctx context.Context, item *models.Item, eventType string) {
	if s.Producer == nil {
		return
	}
	err := s.Producer.PublishEvent(ctx, mykafka.TopicProductEvents, strconv.FormatUint(uint64(item.ID), 10), map[string]interface{}{
		"type":   eventType,
		"itemID": item.ID,
		"slug":   item.Slug,
		"title":  item.Title,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("product event publish failed", "error", err)
	}
}
