package scoping

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/marshalhq/event-coordination-backend/internal/domain/event"
)

// MarshalRepository defines the interface for marshal storage
type MarshalRepository interface {
	// GetByID retrieves a marshal within an event
	GetByID(ctx context.Context, eventID, marshalID uuid.UUID) (*event.Marshal, error)
	// ListByEvent returns all marshals for an event
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.Marshal, error)
}

// AssignmentRepository defines the interface for assignment storage
type AssignmentRepository interface {
	// ListByMarshal returns a marshal's assignments ordered by position
	ListByMarshal(ctx context.Context, eventID, marshalID uuid.UUID) ([]*event.Assignment, error)
	// ListByEvent returns all assignments for an event ordered by marshal and position
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.Assignment, error)
}

// CheckpointRepository defines the interface for checkpoint storage
type CheckpointRepository interface {
	// GetByID retrieves a checkpoint within an event
	GetByID(ctx context.Context, eventID, checkpointID uuid.UUID) (*event.Checkpoint, error)
	// ListByEvent returns all checkpoints for an event
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.Checkpoint, error)
}

// AreaRepository defines the interface for area storage
type AreaRepository interface {
	// ListByEvent returns all areas for an event
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.Area, error)
}

// AreaRoleRepository defines the interface for area role storage
type AreaRoleRepository interface {
	// ListByMarshal returns a marshal's area roles
	ListByMarshal(ctx context.Context, eventID, marshalID uuid.UUID) ([]*event.AreaRole, error)
	// ListByEvent returns all area roles for an event
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.AreaRole, error)
	// Create persists a new area role
	Create(ctx context.Context, role *event.AreaRole) error
}

// MigrationCache guards the legacy-lead migration so it runs at most once
// per marshal per TTL window. Implemented by the redis cache; tests inject
// miniredis or a stub.
type MigrationCache interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
}
