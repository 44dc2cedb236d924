package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Marshal is a volunteer registered for one event. A marshal staffs zero or
// more checkpoints through assignments and may hold the area-lead role for
// one or more areas.
type Marshal struct {
	ID      uuid.UUID `json:"id"`
	EventID uuid.UUID `json:"event_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email,omitempty"`
	Phone   string    `json:"phone,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewMarshal(eventID uuid.UUID, name, email string) (*Marshal, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID cannot be nil")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("marshal name cannot be empty")
	}

	now := time.Now()
	return &Marshal{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      name,
		Email:     strings.TrimSpace(email),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
