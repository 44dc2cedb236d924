package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Assignment places one marshal at one checkpoint. Position preserves the
// order assignments were made in; scope resolution uses it when a sentinel
// has to pick "the first assigned checkpoint".
type Assignment struct {
	ID           uuid.UUID `json:"id"`
	EventID      uuid.UUID `json:"event_id"`
	MarshalID    uuid.UUID `json:"marshal_id"`
	CheckpointID uuid.UUID `json:"checkpoint_id"`
	Position     int       `json:"position"`

	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewAssignment(eventID, marshalID, checkpointID uuid.UUID, position int) (*Assignment, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID cannot be nil")
	}
	if marshalID == uuid.Nil {
		return nil, fmt.Errorf("marshal ID cannot be nil")
	}
	if checkpointID == uuid.Nil {
		return nil, fmt.Errorf("checkpoint ID cannot be nil")
	}
	if position < 0 {
		return nil, fmt.Errorf("position cannot be negative")
	}

	now := time.Now()
	return &Assignment{
		ID:           uuid.New(),
		EventID:      eventID,
		MarshalID:    marshalID,
		CheckpointID: checkpointID,
		Position:     position,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsCheckedIn reports whether the marshal is currently checked in at the
// checkpoint. A later check-out clears the state.
func (a *Assignment) IsCheckedIn() bool {
	if a.CheckedInAt == nil {
		return false
	}
	if a.CheckedOutAt == nil {
		return true
	}
	return a.CheckedOutAt.Before(*a.CheckedInAt)
}

// CheckIn records the check-in time.
func (a *Assignment) CheckIn(at time.Time) {
	a.CheckedInAt = &at
	a.CheckedOutAt = nil
	a.UpdatedAt = at
}

// CheckOut records the check-out time.
func (a *Assignment) CheckOut(at time.Time) {
	a.CheckedOutAt = &at
	a.UpdatedAt = at
}
