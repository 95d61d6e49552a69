package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reservation is the authoritative record of a booking. The confirmation
// code, not the internal ID, is the identity guests see and share.
type Reservation struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ConfirmationCode string    `json:"confirmation_code" gorm:"uniqueIndex;not null;size:16"`
	VenueID          string    `json:"venue_id" gorm:"not null;size:32;index:idx_reservations_bucket"`
	PartySize        int       `json:"party_size" gorm:"not null;check:party_size > 0"`
	SlotStart        time.Time `json:"slot" gorm:"not null;index:idx_reservations_bucket"`
	Bucket           int       `json:"table_size" gorm:"not null;index:idx_reservations_bucket"`
	GuestName        string    `json:"guest_name" gorm:"not null;size:255"`
	Contact          string    `json:"contact" gorm:"size:255"`
	Notes            string    `json:"notes,omitempty" gorm:"type:text"`
	Status           Status    `json:"status" gorm:"type:varchar(16);not null"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	LastModifiedAt   time.Time `json:"last_modified_at" gorm:"autoUpdateTime"`
}

// OccupiesCapacity reports whether this reservation currently holds a unit
// of its bucket's capacity.
func (r *Reservation) OccupiesCapacity() bool {
	return r.Status.IsActive()
}

// BucketKey scopes capacity accounting to one (venue, slot, table-size)
// unit. All contention in the ledger is per key, never wider.
type BucketKey struct {
	VenueID string
	Slot    time.Time
	Bucket  int
}

// String renders the canonical key form used by the keyed stores.
func (k BucketKey) String() string {
	return fmt.Sprintf("%s:%s:%d", k.VenueID, k.Slot.Format("200601021504"), k.Bucket)
}

// CreateParams are the inputs to Service.Create, already validated at the
// dispatcher boundary.
type CreateParams struct {
	VenueID   string
	Slot      time.Time
	PartySize int
	GuestName string
	Contact   string
	Notes     string
}

// ModifyParams carry the changes for Service.Modify. Nil fields keep the
// reservation's current value.
type ModifyParams struct {
	NewSlot      *time.Time
	NewPartySize *int
}

// ListFilter narrows Service.List. Zero values mean "no constraint".
type ListFilter struct {
	VenueID   string
	GuestName string // case-insensitive substring
	Date      string // "2006-01-02", matches the slot's calendar day
}
