package ledger

type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusModified  Status = "MODIFIED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusModified, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsActive reports whether a reservation with this status holds capacity.
func (s Status) IsActive() bool {
	return s == StatusConfirmed || s == StatusModified
}

func (s Status) CanBeCancelled() bool {
	return s.IsActive()
}
