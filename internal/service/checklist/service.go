package checklist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marshalhq/event-coordination-backend/internal/domain/checklist"
	"github.com/marshalhq/event-coordination-backend/internal/domain/errors"
	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
	"github.com/marshalhq/event-coordination-backend/internal/service/scoping"
)

// Service is the checklist entry point for HTTP handlers: per-marshal status
// lists, completion toggling, linked check-in and the per-marshal dashboard
// grid leads use.
type Service struct {
	items       ItemRepository
	completions CompletionRepository
	contexts    *scoping.ContextBuilder
	bridge      *CheckInBridge
	logger      *slog.Logger
}

func NewService(
	items ItemRepository,
	completions CompletionRepository,
	contexts *scoping.ContextBuilder,
	bridge *CheckInBridge,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		items:       items,
		completions: completions,
		contexts:    contexts,
		bridge:      bridge,
		logger:      logger,
	}
}

// CreateItem validates and persists a new checklist item. Link-scope
// violations surface as validation errors; this is the only rule in scope
// handling that raises instead of degrading.
func (s *Service) CreateItem(ctx context.Context, eventID uuid.UUID, title string, linksToCheckIn bool, scopes []scope.Configuration) (*checklist.Item, error) {
	item, err := checklist.NewItem(eventID, title, linksToCheckIn, scopes)
	if err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, errors.Wrap(err, "creating item")
	}
	return item, nil
}

// ChecklistFor returns the statuses of every item visible to one marshal.
func (s *Service) ChecklistFor(ctx context.Context, eventID, marshalID uuid.UUID) ([]*checklist.ItemStatus, error) {
	mctx, err := s.contexts.Build(ctx, eventID, marshalID)
	if err != nil {
		return nil, err
	}
	lookup, names, err := s.contexts.CheckpointIndex(ctx, eventID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "listing items")
	}
	completions, err := s.completions.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "listing completions")
	}

	return BuildStatuses(items, mctx, lookup, names, completions, false), nil
}

// Complete marks one item's context complete on behalf of a marshal. For
// linked items this is the check-in action.
func (s *Service) Complete(ctx context.Context, eventID, marshalID, itemID uuid.UUID, requestedCheckpointID string, actor Actor) (*checklist.ItemStatus, error) {
	item, err := s.items.GetByID(ctx, eventID, itemID)
	if err != nil {
		return nil, errors.ErrItemNotFound.WithCause(err)
	}
	mctx, err := s.contexts.Build(ctx, eventID, marshalID)
	if err != nil {
		return nil, err
	}
	lookup, names, err := s.contexts.CheckpointIndex(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if item.LinksToCheckIn {
		if _, err := s.bridge.CheckIn(ctx, eventID, marshalID, item, mctx, lookup, requestedCheckpointID, actor); err != nil {
			return nil, err
		}
		return s.statusAfterChange(ctx, eventID, item, mctx, lookup, names)
	}

	match := scope.Evaluate(item.Scopes, mctx, lookup)
	if !match.IsRelevant {
		return nil, errors.NewForbiddenError("item is not visible to this marshal")
	}

	records, err := s.completions.ListByItem(ctx, eventID, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "listing completions")
	}
	existing := findActive(records, func(c *checklist.Completion) bool {
		return c.MatchesContext(itemID, match.ContextType, match.ContextID)
	})
	if existing != nil {
		if !existing.OwnedBy(marshalID.String()) {
			return nil, errors.NewConflictError("this task was already completed by someone else")
		}
		// completing an already-completed context is a no-op
		return s.statusAfterChange(ctx, eventID, item, mctx, lookup, names)
	}

	completion, err := checklist.NewCompletion(eventID, itemID, match.ContextType, match.ContextID, marshalID, actor.ID, actor.Name)
	if err != nil {
		return nil, err
	}
	if err := s.completions.Create(ctx, completion); err != nil {
		return nil, errors.Wrap(err, "creating completion")
	}

	return s.statusAfterChange(ctx, eventID, item, mctx, lookup, names)
}

// Uncomplete reverts a completion. Only the marshal who completed a shared
// context may uncomplete it; for linked items this is the check-out action.
func (s *Service) Uncomplete(ctx context.Context, eventID, marshalID, itemID uuid.UUID, requestedCheckpointID string) error {
	item, err := s.items.GetByID(ctx, eventID, itemID)
	if err != nil {
		return errors.ErrItemNotFound.WithCause(err)
	}
	mctx, err := s.contexts.Build(ctx, eventID, marshalID)
	if err != nil {
		return err
	}
	lookup, err := s.contexts.CheckpointLookup(ctx, eventID)
	if err != nil {
		return err
	}

	if item.LinksToCheckIn {
		return s.bridge.CheckOut(ctx, eventID, marshalID, item, mctx, lookup, requestedCheckpointID)
	}

	match := scope.Evaluate(item.Scopes, mctx, lookup)
	if !match.IsRelevant {
		return errors.NewForbiddenError("item is not visible to this marshal")
	}

	records, err := s.completions.ListByItem(ctx, eventID, itemID)
	if err != nil {
		return errors.Wrap(err, "listing completions")
	}
	existing := findActive(records, func(c *checklist.Completion) bool {
		return c.MatchesContext(itemID, match.ContextType, match.ContextID)
	})
	if existing == nil {
		return errors.NewBusinessError("NOT_COMPLETED", "this task is not completed")
	}
	if !existing.OwnedBy(marshalID.String()) {
		return errors.NewForbiddenError("only the marshal who completed this task can uncomplete it")
	}

	return s.completions.SoftDelete(ctx, existing.ID, time.Now())
}

// RelevantContexts lists every completion context one marshal can reach for
// an item, for reporting endpoints.
func (s *Service) RelevantContexts(ctx context.Context, eventID, marshalID, itemID uuid.UUID) ([]scope.Context, error) {
	item, err := s.items.GetByID(ctx, eventID, itemID)
	if err != nil {
		return nil, errors.ErrItemNotFound.WithCause(err)
	}
	mctx, err := s.contexts.Build(ctx, eventID, marshalID)
	if err != nil {
		return nil, err
	}
	lookup, err := s.contexts.CheckpointLookup(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return scope.AllRelevantContexts(item.Scopes, mctx, lookup), nil
}

// DashboardRow is one marshal's slice of the per-marshal dashboard grid.
type DashboardRow struct {
	MarshalID   uuid.UUID                `json:"marshal_id"`
	MarshalName string                   `json:"marshal_name"`
	Statuses    []*checklist.ItemStatus  `json:"statuses"`
}

// Dashboard builds the per-marshal view for every marshal in the event from
// one preloaded snapshot. Evaluations only read the immutable snapshot, so
// they fan out across goroutines without coordination.
func (s *Service) Dashboard(ctx context.Context, eventID uuid.UUID) ([]*DashboardRow, error) {
	pd, err := s.contexts.Preload(ctx, eventID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "listing items")
	}
	completions, err := s.completions.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "listing completions")
	}

	marshalIDs := pd.MarshalIDs()
	rows := make([]*DashboardRow, len(marshalIDs))

	names := make(map[string]string)
	lookup := pd.CheckpointAreas()
	for cpID := range lookup {
		names[cpID] = pd.CheckpointName(cpID)
	}

	var wg sync.WaitGroup
	for i, marshalID := range marshalIDs {
		wg.Add(1)
		go func(i int, marshalID uuid.UUID) {
			defer wg.Done()
			mctx := scoping.BuildFromPreloaded(marshalID, pd)
			rows[i] = &DashboardRow{
				MarshalID:   marshalID,
				MarshalName: pd.MarshalName(marshalID),
				Statuses:    BuildStatuses(items, mctx, lookup, names, completions, true),
			}
		}(i, marshalID)
	}
	wg.Wait()

	return rows, nil
}

func (s *Service) statusAfterChange(ctx context.Context, eventID uuid.UUID, item *checklist.Item, mctx *scope.MarshalContext, lookup scope.CheckpointAreas, names map[string]string) (*checklist.ItemStatus, error) {
	records, err := s.completions.ListByItem(ctx, eventID, item.ID)
	if err != nil {
		return nil, errors.Wrap(err, "listing completions")
	}
	status := BuildStatus(item, mctx, lookup, names, records, nil, false)
	if status == nil {
		return nil, errors.NewForbiddenError("item is not visible to this marshal")
	}
	return status, nil
}
