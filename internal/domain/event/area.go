package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Area is a geographic or administrative grouping of checkpoints. Older
// events stored area leads inline on the area row; those ids survive in
// LegacyLeadIDs until the role migration moves them to AreaRole rows.
type Area struct {
	ID      uuid.UUID `json:"id"`
	EventID uuid.UUID `json:"event_id"`
	Name    string    `json:"name"`

	LegacyLeadIDs []uuid.UUID `json:"legacy_lead_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewArea(eventID uuid.UUID, name string) (*Area, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID cannot be nil")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("area name cannot be empty")
	}

	now := time.Now()
	return &Area{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
