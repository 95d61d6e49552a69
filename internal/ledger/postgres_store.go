package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"goodfoods/internal/availability"
)

// SlotBucket is the per-bucket counter row. Reserve and Move lock it FOR
// UPDATE, which serializes check-and-mutate per key without touching any
// other bucket's row.
type SlotBucket struct {
	Key       string `gorm:"primaryKey;size:80"`
	Confirmed int    `gorm:"not null;default:0"`
}

// PostgresStore is the durable ledger store.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore creates a Postgres-backed ledger store.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// lockBucket upserts the counter row for key and locks it for the
// transaction's duration.
func lockBucket(tx *gorm.DB, key BucketKey) (*SlotBucket, error) {
	row := SlotBucket{Key: key.String()}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to ensure bucket row %s: %w", key, err)
	}

	var bucket SlotBucket
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("key = ?", key.String()).
		First(&bucket).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock bucket row %s: %w", key, err)
	}
	return &bucket, nil
}

func (s *PostgresStore) Reserve(ctx context.Context, key BucketKey, capacity int) (bool, error) {
	reserved := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bucket, err := lockBucket(tx, key)
		if err != nil {
			return err
		}
		if bucket.Confirmed >= capacity {
			return nil
		}
		bucket.Confirmed++
		if err := tx.Save(bucket).Error; err != nil {
			return fmt.Errorf("failed to increment bucket %s: %w", key, err)
		}
		reserved = true
		return nil
	})
	return reserved, err
}

func (s *PostgresStore) Release(ctx context.Context, key BucketKey) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bucket, err := lockBucket(tx, key)
		if err != nil {
			return err
		}
		if bucket.Confirmed == 0 {
			return nil
		}
		bucket.Confirmed--
		if err := tx.Save(bucket).Error; err != nil {
			return fmt.Errorf("failed to decrement bucket %s: %w", key, err)
		}
		return nil
	})
}

func (s *PostgresStore) Move(ctx context.Context, from, to BucketKey, toCapacity int) (bool, error) {
	if from == to {
		return true, nil
	}

	moved := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock rows in key order so crossing modifies cannot deadlock.
		first, second := from, to
		if first.String() > second.String() {
			first, second = second, first
		}
		if _, err := lockBucket(tx, first); err != nil {
			return err
		}
		if _, err := lockBucket(tx, second); err != nil {
			return err
		}

		var target SlotBucket
		if err := tx.Where("key = ?", to.String()).First(&target).Error; err != nil {
			return fmt.Errorf("failed to re-read bucket %s: %w", to, err)
		}
		if target.Confirmed >= toCapacity {
			return nil
		}

		if err := tx.Model(&SlotBucket{}).Where("key = ?", to.String()).
			UpdateColumn("confirmed", gorm.Expr("confirmed + 1")).Error; err != nil {
			return fmt.Errorf("failed to increment bucket %s: %w", to, err)
		}
		if err := tx.Model(&SlotBucket{}).Where("key = ? AND confirmed > 0", from.String()).
			UpdateColumn("confirmed", gorm.Expr("confirmed - 1")).Error; err != nil {
			return fmt.Errorf("failed to decrement bucket %s: %w", from, err)
		}
		moved = true
		return nil
	})
	return moved, err
}

func (s *PostgresStore) ConfirmedCount(ctx context.Context, venueID string, slot time.Time, bucket int) (int, error) {
	key := BucketKey{VenueID: venueID, Slot: availability.NormalizeSlot(slot), Bucket: bucket}

	var row SlotBucket
	err := s.db.WithContext(ctx).Where("key = ?", key.String()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read bucket %s: %w", key, err)
	}
	return row.Confirmed, nil
}

func (s *PostgresStore) Insert(ctx context.Context, r *Reservation) error {
	err := s.db.WithContext(ctx).Create(r).Error
	if err != nil && isUniqueViolation(err) {
		return ErrCodeTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, code string) (*Reservation, error) {
	var r Reservation
	err := s.db.WithContext(ctx).Where("confirmation_code = ?", code).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reservation %s: %w", code, err)
	}
	return &r, nil
}

func (s *PostgresStore) Update(ctx context.Context, r *Reservation) error {
	result := s.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("confirmation_code = ?", r.ConfirmationCode).
		Updates(map[string]interface{}{
			"venue_id":         r.VenueID,
			"party_size":       r.PartySize,
			"slot_start":       r.SlotStart,
			"bucket":           r.Bucket,
			"guest_name":       r.GuestName,
			"contact":          r.Contact,
			"notes":            r.Notes,
			"status":           r.Status,
			"last_modified_at": r.LastModifiedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update reservation %s: %w", r.ConfirmationCode, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]Reservation, error) {
	query := s.db.WithContext(ctx).Model(&Reservation{})
	if filter.VenueID != "" {
		query = query.Where("venue_id = ?", filter.VenueID)
	}
	if filter.GuestName != "" {
		query = query.Where("LOWER(guest_name) LIKE ?", "%"+strings.ToLower(filter.GuestName)+"%")
	}
	if filter.Date != "" {
		query = query.Where("DATE(slot_start) = ?", filter.Date)
	}

	var out []Reservation
	if err := query.Order("created_at DESC, confirmation_code ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return out, nil
}

// isUniqueViolation detects a Postgres duplicate-key error without binding
// to a driver-specific error type.
func isUniqueViolation(err error) bool {
	return err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key value") ||
		strings.Contains(err.Error(), "SQLSTATE 23505"))
}
