package checklist

import (
	"time"

	"github.com/google/uuid"

	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
)

// ItemStatus is the per-marshal view of one checklist item: whether it is
// completed, by whom, and whether the viewing marshal may toggle it. Items
// irrelevant to a marshal are filtered out upstream and never produce a
// status.
type ItemStatus struct {
	ItemID         uuid.UUID `json:"item_id"`
	Title          string    `json:"title"`
	LinksToCheckIn bool      `json:"links_to_check_in"`

	ContextType scope.ContextType `json:"context_type"`
	ContextID   string            `json:"context_id"`

	IsCompleted bool       `json:"is_completed"`
	CanComplete bool       `json:"can_complete"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy string     `json:"completed_by,omitempty"`

	// ContextOwnerMarshalID is set for personal contexts always, and for
	// shared contexts only in per-marshal views; nil means the task belongs
	// to the context itself, not an individual.
	ContextOwnerMarshalID *string `json:"context_owner_marshal_id,omitempty"`

	LinkedCheckpointID   string `json:"linked_checkpoint_id,omitempty"`
	LinkedCheckpointName string `json:"linked_checkpoint_name,omitempty"`
}
