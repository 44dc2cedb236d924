package checklist

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
)

// Completion records that one context of an item was completed. For linked
// items the row doubles as check-in state; soft-deleting it is the
// uncomplete / check-out action. Actor identity is kept for audit and may
// differ from the owner when a lead completes on someone's behalf.
type Completion struct {
	ID      uuid.UUID `json:"id"`
	EventID uuid.UUID `json:"event_id"`
	ItemID  uuid.UUID `json:"item_id"`

	ContextType    scope.ContextType `json:"context_type"`
	ContextID      string            `json:"context_id"`
	OwnerMarshalID uuid.UUID         `json:"owner_marshal_id"`

	ActorID   uuid.UUID `json:"actor_id"`
	ActorName string    `json:"actor_name,omitempty"`

	CompletedAt time.Time  `json:"completed_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

func NewCompletion(eventID, itemID uuid.UUID, contextType scope.ContextType, contextID string, owner uuid.UUID, actorID uuid.UUID, actorName string) (*Completion, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID cannot be nil")
	}
	if itemID == uuid.Nil {
		return nil, fmt.Errorf("item ID cannot be nil")
	}
	if contextID == "" {
		return nil, fmt.Errorf("context ID cannot be empty")
	}
	if owner == uuid.Nil {
		return nil, fmt.Errorf("owner marshal ID cannot be nil")
	}

	return &Completion{
		ID:             uuid.New(),
		EventID:        eventID,
		ItemID:         itemID,
		ContextType:    contextType,
		ContextID:      contextID,
		OwnerMarshalID: owner,
		ActorID:        actorID,
		ActorName:      actorName,
		CompletedAt:    time.Now(),
	}, nil
}

// IsActive reports whether the completion still counts, i.e. has not been
// soft-deleted.
func (c *Completion) IsActive() bool {
	return c.DeletedAt == nil
}

// MatchesContext reports whether the completion satisfies the given item
// context, regardless of owner.
func (c *Completion) MatchesContext(itemID uuid.UUID, contextType scope.ContextType, contextID string) bool {
	return c.ItemID == itemID && c.ContextType == contextType && c.ContextID == contextID
}

// OwnedBy reports whether the completion belongs to the given marshal id
// (string form, as carried in a MarshalContext).
func (c *Completion) OwnedBy(marshalID string) bool {
	return c.OwnerMarshalID.String() == marshalID
}

// SoftDelete marks the completion inactive.
func (c *Completion) SoftDelete(at time.Time) {
	c.DeletedAt = &at
}
