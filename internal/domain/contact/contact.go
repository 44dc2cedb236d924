package contact

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
)

// Contact is a shareable phone contact (medics, control room, recovery
// drivers). Visibility follows the same scope rules as checklist items.
type Contact struct {
	ID      uuid.UUID `json:"id"`
	EventID uuid.UUID `json:"event_id"`
	Name    string    `json:"name"`
	Phone   string    `json:"phone"`
	Role    string    `json:"role,omitempty"`

	Scopes []scope.Configuration `json:"scopes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewContact(eventID uuid.UUID, name, phone, role string, scopes []scope.Configuration) (*Contact, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID cannot be nil")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("contact name cannot be empty")
	}
	if strings.TrimSpace(phone) == "" {
		return nil, fmt.Errorf("contact phone cannot be empty")
	}

	now := time.Now()
	return &Contact{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      name,
		Phone:     strings.TrimSpace(phone),
		Role:      role,
		Scopes:    scopes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ScopeConfigurations satisfies the shareable-item contract used by
// visibility filtering.
func (c *Contact) ScopeConfigurations() []scope.Configuration {
	return c.Scopes
}
