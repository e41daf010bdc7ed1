package repo

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/triskelion9/justdjangoecomm/internal/models"
)

// markEventProcessed records a provider event id, returning ErrEventExists on
// a replay. It runs inside the caller's transaction so the event is only
// consumed when the write it guards commits.
func markEventProcessed(tx *gorm.DB, eventID string) error {
	var existing models.ProcessedEvent
	err := lockForUpdate(tx).Where("event_id = ?", eventID).First(&existing).Error
	if err == nil {
		return ErrEventExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(&models.ProcessedEvent{
		EventID:     eventID,
		ProcessedAt: time.Now().UTC(),
	}).Error
}
