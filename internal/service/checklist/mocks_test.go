package checklist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/marshalhq/event-coordination-backend/internal/domain/checklist"
	"github.com/marshalhq/event-coordination-backend/internal/domain/event"
)

type mockItemRepo struct {
	mock.Mock
}

func (m *mockItemRepo) GetByID(ctx context.Context, eventID, itemID uuid.UUID) (*checklist.Item, error) {
	args := m.Called(ctx, eventID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checklist.Item), args.Error(1)
}

func (m *mockItemRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*checklist.Item, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*checklist.Item), args.Error(1)
}

func (m *mockItemRepo) Create(ctx context.Context, item *checklist.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// mockCompletionRepo keeps records in memory so find-before-create and
// soft-delete flows behave like real storage.
type mockCompletionRepo struct {
	records []*checklist.Completion
}

func (m *mockCompletionRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*checklist.Completion, error) {
	out := make([]*checklist.Completion, 0, len(m.records))
	for _, c := range m.records {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCompletionRepo) ListByItem(ctx context.Context, eventID, itemID uuid.UUID) ([]*checklist.Completion, error) {
	out := make([]*checklist.Completion, 0, len(m.records))
	for _, c := range m.records {
		if c.EventID == eventID && c.ItemID == itemID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCompletionRepo) Create(ctx context.Context, completion *checklist.Completion) error {
	m.records = append(m.records, completion)
	return nil
}

func (m *mockCompletionRepo) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	for _, c := range m.records {
		if c.ID == id {
			c.SoftDelete(at)
			return nil
		}
	}
	return nil
}

type mockAssignmentRepo struct {
	mock.Mock
}

func (m *mockAssignmentRepo) GetByMarshalAndCheckpoint(ctx context.Context, eventID, marshalID, checkpointID uuid.UUID) (*event.Assignment, error) {
	args := m.Called(ctx, eventID, marshalID, checkpointID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Assignment), args.Error(1)
}

func (m *mockAssignmentRepo) Update(ctx context.Context, assignment *event.Assignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}
