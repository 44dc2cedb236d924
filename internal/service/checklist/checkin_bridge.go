package checklist

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/marshalhq/event-coordination-backend/internal/domain/checklist"
	"github.com/marshalhq/event-coordination-backend/internal/domain/errors"
	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
)

// CheckInBridge ties checklist items flagged LinksToCheckIn to assignment
// check-in state: completing the task and checking in are the same action,
// and the completion record doubles as the check-in record.
type CheckInBridge struct {
	assignments AssignmentRepository
	completions CompletionRepository
}

func NewCheckInBridge(assignments AssignmentRepository, completions CompletionRepository) *CheckInBridge {
	return &CheckInBridge{
		assignments: assignments,
		completions: completions,
	}
}

// LinkedCheckpoint determines which checkpoint a linked item maps to for a
// marshal: the requested checkpoint when it fits the item's scope, else the
// marshal's first matching assigned checkpoint, else (for the sentinel)
// their first assignment outright. Empty means the item does not map to any
// of the marshal's checkpoints.
func (b *CheckInBridge) LinkedCheckpoint(item *checklist.Item, mctx *scope.MarshalContext, requestedCheckpointID string) string {
	return linkedCheckpointFor(item.Scopes, mctx, requestedCheckpointID)
}

// CheckIn finds or creates the completion record that stands for the
// marshal's check-in at the linked checkpoint, and stamps the assignment.
func (b *CheckInBridge) CheckIn(
	ctx context.Context,
	eventID, marshalID uuid.UUID,
	item *checklist.Item,
	mctx *scope.MarshalContext,
	lookup scope.CheckpointAreas,
	requestedCheckpointID string,
	actor Actor,
) (*checklist.Completion, error) {
	if err := item.ValidateLinkScopes(); err != nil {
		return nil, err
	}

	match := scope.Evaluate(item.Scopes, mctx, lookup)
	if !match.IsRelevant {
		return nil, errors.NewForbiddenError("item is not visible to this marshal")
	}

	cpID := b.LinkedCheckpoint(item, mctx, requestedCheckpointID)
	if cpID == "" {
		return nil, errors.ErrAssignmentNotFound
	}
	checkpointID, err := uuid.Parse(cpID)
	if err != nil {
		return nil, errors.NewInternalError("invalid linked checkpoint id").WithCause(err)
	}

	assignment, err := b.assignments.GetByMarshalAndCheckpoint(ctx, eventID, marshalID, checkpointID)
	if err != nil {
		return nil, errors.ErrAssignmentNotFound.WithCause(err)
	}

	// Find before create: checking in twice is a no-op, not an error.
	existing, err := b.activeCompletion(ctx, eventID, item.ID, match, marshalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	completion, err := checklist.NewCompletion(eventID, item.ID, match.ContextType, match.ContextID, marshalID, actor.ID, actor.Name)
	if err != nil {
		return nil, err
	}
	if err := b.completions.Create(ctx, completion); err != nil {
		return nil, errors.Wrap(err, "creating check-in completion")
	}

	assignment.CheckIn(completion.CompletedAt)
	if err := b.assignments.Update(ctx, assignment); err != nil {
		return nil, errors.Wrap(err, "updating assignment check-in state")
	}
	return completion, nil
}

// CheckOut soft-deletes the completion that stands for the marshal's
// check-in and stamps the assignment's check-out time.
func (b *CheckInBridge) CheckOut(
	ctx context.Context,
	eventID, marshalID uuid.UUID,
	item *checklist.Item,
	mctx *scope.MarshalContext,
	lookup scope.CheckpointAreas,
	requestedCheckpointID string,
) error {
	match := scope.Evaluate(item.Scopes, mctx, lookup)
	if !match.IsRelevant {
		return errors.NewForbiddenError("item is not visible to this marshal")
	}

	existing, err := b.activeCompletion(ctx, eventID, item.ID, match, marshalID)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.ErrNotCheckedIn
	}

	now := time.Now()
	if err := b.completions.SoftDelete(ctx, existing.ID, now); err != nil {
		return errors.Wrap(err, "soft-deleting check-in completion")
	}

	cpID := b.LinkedCheckpoint(item, mctx, requestedCheckpointID)
	if cpID != "" {
		if checkpointID, err := uuid.Parse(cpID); err == nil {
			if assignment, err := b.assignments.GetByMarshalAndCheckpoint(ctx, eventID, marshalID, checkpointID); err == nil {
				assignment.CheckOut(now)
				if err := b.assignments.Update(ctx, assignment); err != nil {
					return errors.Wrap(err, "updating assignment check-out state")
				}
			}
		}
	}
	return nil
}

func (b *CheckInBridge) activeCompletion(ctx context.Context, eventID, itemID uuid.UUID, match scope.MatchResult, marshalID uuid.UUID) (*checklist.Completion, error) {
	records, err := b.completions.ListByItem(ctx, eventID, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "listing completions")
	}
	return findActive(records, func(c *checklist.Completion) bool {
		return c.MatchesContext(itemID, match.ContextType, match.ContextID) && c.OwnedBy(marshalID.String())
	}), nil
}

// linkedCheckpointFor resolves a linked item's checkpoint from its scope
// configurations. Linked scopes are restricted to EveryoneAtCheckpoints and
// SpecificPeople, so the resolution only has to consider checkpoint- and
// marshal-typed configurations.
func linkedCheckpointFor(configs []scope.Configuration, mctx *scope.MarshalContext, requestedCheckpointID string) string {
	assigned := mctx.AssignedCheckpoints()

	for i := range configs {
		cfg := &configs[i]
		switch cfg.Target {
		case scope.TargetCheckpoint:
			all := cfg.ContainsID(scope.AllCheckpoints)
			if requestedCheckpointID != "" {
				if mctx.IsAssignedTo(requestedCheckpointID) && (all || cfg.ContainsID(requestedCheckpointID)) {
					return requestedCheckpointID
				}
				continue
			}
			for _, cp := range assigned {
				if all || cfg.ContainsID(cp) {
					return cp
				}
			}
		case scope.TargetMarshal:
			if !cfg.ContainsID(scope.AllMarshals) && !cfg.ContainsID(mctx.MarshalID()) {
				continue
			}
			if requestedCheckpointID != "" {
				if mctx.IsAssignedTo(requestedCheckpointID) {
					return requestedCheckpointID
				}
				continue
			}
			if len(assigned) > 0 {
				return assigned[0]
			}
		}
	}
	return ""
}
