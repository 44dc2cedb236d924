package note

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
)

// Note is a shareable item carrying free text. It reuses the checklist scope
// vocabulary for visibility but has no completion semantics.
type Note struct {
	ID      uuid.UUID `json:"id"`
	EventID uuid.UUID `json:"event_id"`
	Title   string    `json:"title"`
	Body    string    `json:"body,omitempty"`
	Pinned  bool      `json:"pinned"`

	Scopes []scope.Configuration `json:"scopes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewNote(eventID uuid.UUID, title, body string, scopes []scope.Configuration) (*Note, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID cannot be nil")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("note title cannot be empty")
	}

	now := time.Now()
	return &Note{
		ID:        uuid.New(),
		EventID:   eventID,
		Title:     title,
		Body:      body,
		Scopes:    scopes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ScopeConfigurations satisfies the shareable-item contract used by
// visibility filtering.
func (n *Note) ScopeConfigurations() []scope.Configuration {
	return n.Scopes
}
