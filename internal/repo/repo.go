package repo

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventExists = errors.New("event already processed")
)

type GormRepo struct {
	DB *gorm.DB
}

// lockForUpdate adds SELECT ... FOR UPDATE on postgres. sqlite (used by the
// test suite) has no row locks and serializes writers itself.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
