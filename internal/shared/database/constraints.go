package database

import (
	"fmt"

	"gorm.io/gorm"
)

// constraintStatements are applied after AutoMigrate. Each must be valid
// Postgres and idempotent: Postgres has no ADD CONSTRAINT IF NOT EXISTS, so
// the CHECK constraint is guarded via pg_constraint, and index builds are
// plain CREATE INDEX because CONCURRENTLY is refused inside a transaction.
var constraintStatements = []string{
	// Counters must never go negative even under concurrent release
	`DO $$
	BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM pg_constraint WHERE conname = 'chk_slot_buckets_non_negative'
		) THEN
			ALTER TABLE slot_buckets
				ADD CONSTRAINT chk_slot_buckets_non_negative CHECK (confirmed >= 0);
		END IF;
	END $$;`,

	// Index for availability counting by bucket
	`CREATE INDEX IF NOT EXISTS idx_reservations_venue_slot_bucket
		ON reservations (venue_id, slot_start, bucket);`,

	// Index for guest lookups
	`CREATE INDEX IF NOT EXISTS idx_reservations_guest_name
		ON reservations (LOWER(guest_name));`,
}

// MigrateConstraints adds database constraints for concurrency control
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to apply constraint: %w", err)
		}
	}
	return nil
}
