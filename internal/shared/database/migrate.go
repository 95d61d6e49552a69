package database

import (
	"goodfoods/internal/ledger"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ledger.Reservation{},
		&ledger.SlotBucket{},
	)
}
