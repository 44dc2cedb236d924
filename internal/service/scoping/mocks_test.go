package scoping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/marshalhq/event-coordination-backend/internal/domain/event"
)

type mockMarshalRepo struct {
	mock.Mock
}

func (m *mockMarshalRepo) GetByID(ctx context.Context, eventID, marshalID uuid.UUID) (*event.Marshal, error) {
	args := m.Called(ctx, eventID, marshalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Marshal), args.Error(1)
}

func (m *mockMarshalRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.Marshal, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Marshal), args.Error(1)
}

type mockAssignmentRepo struct {
	mock.Mock
}

func (m *mockAssignmentRepo) ListByMarshal(ctx context.Context, eventID, marshalID uuid.UUID) ([]*event.Assignment, error) {
	args := m.Called(ctx, eventID, marshalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Assignment), args.Error(1)
}

func (m *mockAssignmentRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.Assignment, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Assignment), args.Error(1)
}

type mockCheckpointRepo struct {
	mock.Mock
}

func (m *mockCheckpointRepo) GetByID(ctx context.Context, eventID, checkpointID uuid.UUID) (*event.Checkpoint, error) {
	args := m.Called(ctx, eventID, checkpointID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Checkpoint), args.Error(1)
}

func (m *mockCheckpointRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.Checkpoint, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Checkpoint), args.Error(1)
}

type mockAreaRepo struct {
	mock.Mock
}

func (m *mockAreaRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.Area, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Area), args.Error(1)
}

type mockAreaRoleRepo struct {
	mock.Mock
}

func (m *mockAreaRoleRepo) ListByMarshal(ctx context.Context, eventID, marshalID uuid.UUID) ([]*event.AreaRole, error) {
	args := m.Called(ctx, eventID, marshalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.AreaRole), args.Error(1)
}

func (m *mockAreaRoleRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.AreaRole, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.AreaRole), args.Error(1)
}

func (m *mockAreaRoleRepo) Create(ctx context.Context, role *event.AreaRole) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

// memoryAreaRoleRepo is a stateful role store, so migration writes are
// visible to reads issued later in the same test.
type memoryAreaRoleRepo struct {
	roles []*event.AreaRole
}

func (r *memoryAreaRoleRepo) ListByMarshal(_ context.Context, eventID, marshalID uuid.UUID) ([]*event.AreaRole, error) {
	var out []*event.AreaRole
	for _, role := range r.roles {
		if role.EventID == eventID && role.MarshalID == marshalID {
			out = append(out, role)
		}
	}
	return out, nil
}

func (r *memoryAreaRoleRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]*event.AreaRole, error) {
	var out []*event.AreaRole
	for _, role := range r.roles {
		if role.EventID == eventID {
			out = append(out, role)
		}
	}
	return out, nil
}

func (r *memoryAreaRoleRepo) Create(_ context.Context, role *event.AreaRole) error {
	r.roles = append(r.roles, role)
	return nil
}

// mockMigrationCache is an in-memory SetNX for migration guard tests.
type mockMigrationCache struct {
	keys map[string]struct{}
}

func newMockMigrationCache() *mockMigrationCache {
	return &mockMigrationCache{keys: make(map[string]struct{})}
}

func (c *mockMigrationCache) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) (bool, error) {
	if _, ok := c.keys[key]; ok {
		return false, nil
	}
	c.keys[key] = struct{}{}
	return true, nil
}
