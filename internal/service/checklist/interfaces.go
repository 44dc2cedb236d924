package checklist

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/marshalhq/event-coordination-backend/internal/domain/checklist"
	"github.com/marshalhq/event-coordination-backend/internal/domain/event"
)

// ItemRepository defines the interface for checklist item storage
type ItemRepository interface {
	// GetByID retrieves an item within an event
	GetByID(ctx context.Context, eventID, itemID uuid.UUID) (*checklist.Item, error)
	// ListByEvent returns all items for an event
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*checklist.Item, error)
	// Create persists a new item
	Create(ctx context.Context, item *checklist.Item) error
}

// CompletionRepository defines the interface for completion record storage
type CompletionRepository interface {
	// ListByEvent returns all completion records for an event, including
	// soft-deleted ones
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*checklist.Completion, error)
	// ListByItem returns all completion records for one item
	ListByItem(ctx context.Context, eventID, itemID uuid.UUID) ([]*checklist.Completion, error)
	// Create persists a new completion record
	Create(ctx context.Context, completion *checklist.Completion) error
	// SoftDelete marks a completion record deleted
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
}

// AssignmentRepository defines the assignment operations the check-in bridge
// needs
type AssignmentRepository interface {
	// GetByMarshalAndCheckpoint finds the assignment placing a marshal at a
	// checkpoint
	GetByMarshalAndCheckpoint(ctx context.Context, eventID, marshalID, checkpointID uuid.UUID) (*event.Assignment, error)
	// Update persists assignment changes
	Update(ctx context.Context, assignment *event.Assignment) error
}

// Actor identifies who performed a completion or check-in, for audit.
type Actor struct {
	ID   uuid.UUID
	Name string
}
