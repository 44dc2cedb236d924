package checklist

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marshalhq/event-coordination-backend/internal/domain/errors"
	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
)

// Item is a checklist task declared for an event. Its scope configurations
// decide which marshals see it and how completion is tracked. An item
// flagged LinksToCheckIn doubles as the check-in action for the checkpoint
// its scope maps to.
type Item struct {
	ID      uuid.UUID `json:"id"`
	EventID uuid.UUID `json:"event_id"`
	Title   string    `json:"title"`
	Details string    `json:"details,omitempty"`

	LinksToCheckIn bool                  `json:"links_to_check_in"`
	Scopes         []scope.Configuration `json:"scopes"`

	DueAt *time.Time `json:"due_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewItem(eventID uuid.UUID, title string, linksToCheckIn bool, scopes []scope.Configuration) (*Item, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID cannot be nil")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("item title cannot be empty")
	}

	item := &Item{
		ID:             uuid.New(),
		EventID:        eventID,
		Title:          title,
		LinksToCheckIn: linksToCheckIn,
		Scopes:         scopes,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := item.ValidateLinkScopes(); err != nil {
		return nil, err
	}
	return item, nil
}

// ValidateLinkScopes enforces the one hard precondition in scope handling: a
// linked item must map each marshal's completion to exactly one check-in
// state, so shared scopes are rejected at creation time.
func (i *Item) ValidateLinkScopes() error {
	if !i.LinksToCheckIn {
		return nil
	}
	for _, cfg := range i.Scopes {
		switch cfg.Scope {
		case scope.EveryoneAtCheckpoints, scope.SpecificPeople:
			// allowed: completion is unambiguously one marshal's check-in
		default:
			return errors.NewValidationError(
				"INVALID_LINKED_SCOPE",
				fmt.Sprintf("a task linked to check-in cannot use the %s scope; use EveryoneAtCheckpoints or SpecificPeople", cfg.Scope),
			)
		}
	}
	return nil
}
