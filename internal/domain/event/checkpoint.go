package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Checkpoint is a staffed point in the event. A checkpoint belongs to zero
// or more areas; area membership drives scope resolution for area-targeted
// items.
type Checkpoint struct {
	ID      uuid.UUID `json:"id"`
	EventID uuid.UUID `json:"event_id"`
	Name    string    `json:"name"`

	AreaIDs []uuid.UUID `json:"area_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCheckpoint(eventID uuid.UUID, name string, areaIDs []uuid.UUID) (*Checkpoint, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID cannot be nil")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("checkpoint name cannot be empty")
	}

	now := time.Now()
	return &Checkpoint{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      name,
		AreaIDs:   areaIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// InArea reports whether the checkpoint belongs to the given area.
func (c *Checkpoint) InArea(areaID uuid.UUID) bool {
	for _, id := range c.AreaIDs {
		if id == areaID {
			return true
		}
	}
	return false
}
