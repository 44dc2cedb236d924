package checklist

import (
	"github.com/marshalhq/event-coordination-backend/internal/domain/checklist"
	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
)

// BuildStatus produces the per-marshal view of one item. It returns nil for
// items irrelevant to the marshal; callers filter those out rather than
// rendering a "hidden" flag.
//
// match may be precomputed by batch callers (one evaluation per item per
// marshal); when nil it is derived here. perMarshalView switches shared
// contexts from "is the context satisfied" to "did this specific marshal
// complete it", which area-lead dashboards use to render one row per
// marshal.
func BuildStatus(
	item *checklist.Item,
	mctx *scope.MarshalContext,
	lookup scope.CheckpointAreas,
	checkpointNames map[string]string,
	completions []*checklist.Completion,
	match *scope.MatchResult,
	perMarshalView bool,
) *checklist.ItemStatus {
	if match == nil {
		m := scope.Evaluate(item.Scopes, mctx, lookup)
		match = &m
	}
	if !match.IsRelevant {
		return nil
	}

	status := &checklist.ItemStatus{
		ItemID:         item.ID,
		Title:          item.Title,
		LinksToCheckIn: item.LinksToCheckIn,
		ContextType:    match.ContextType,
		ContextID:      match.ContextID,
		CanComplete:    true,
	}

	shared := match.ContextType != scope.ContextPersonal

	switch {
	case item.LinksToCheckIn:
		// Linked tasks mirror personal check-in state: every marshal has an
		// independent copy even inside a shared context.
		own := findActive(completions, func(c *checklist.Completion) bool {
			return c.MatchesContext(item.ID, match.ContextType, match.ContextID) && c.OwnedBy(mctx.MarshalID())
		})
		applyCompletion(status, own)

	case shared:
		contextCompletion := findActive(completions, func(c *checklist.Completion) bool {
			return c.MatchesContext(item.ID, match.ContextType, match.ContextID)
		})

		if perMarshalView {
			own := contextCompletion
			if own != nil && !own.OwnedBy(mctx.MarshalID()) {
				own = nil
			}
			applyCompletion(status, own)
			// Only the actual completer may toggle a satisfied shared task.
			if contextCompletion != nil && own == nil {
				status.CanComplete = false
			}
		} else {
			applyCompletion(status, contextCompletion)
			// Someone else's completion locks the context; the completer may
			// still uncomplete it.
			if contextCompletion != nil && !contextCompletion.OwnedBy(mctx.MarshalID()) {
				status.CanComplete = false
			}
		}

	default:
		own := findActive(completions, func(c *checklist.Completion) bool {
			return c.ItemID == item.ID && c.OwnedBy(mctx.MarshalID())
		})
		applyCompletion(status, own)
	}

	// Ownership labeling: personal contexts always carry the marshal; shared
	// contexts only in per-marshal views. A nil owner signals the task
	// belongs to the context itself.
	if !shared || perMarshalView {
		id := mctx.MarshalID()
		status.ContextOwnerMarshalID = &id
	}

	if item.LinksToCheckIn {
		if cpID := linkedCheckpointFor(item.Scopes, mctx, ""); cpID != "" {
			status.LinkedCheckpointID = cpID
			status.LinkedCheckpointName = checkpointNames[cpID]
		}
	}

	return status
}

// BuildStatuses evaluates a batch of items for one marshal, computing the
// match once per item.
func BuildStatuses(
	items []*checklist.Item,
	mctx *scope.MarshalContext,
	lookup scope.CheckpointAreas,
	checkpointNames map[string]string,
	completions []*checklist.Completion,
	perMarshalView bool,
) []*checklist.ItemStatus {
	statuses := make([]*checklist.ItemStatus, 0, len(items))
	for _, item := range items {
		if s := BuildStatus(item, mctx, lookup, checkpointNames, completions, nil, perMarshalView); s != nil {
			statuses = append(statuses, s)
		}
	}
	return statuses
}

func applyCompletion(status *checklist.ItemStatus, c *checklist.Completion) {
	if c == nil {
		return
	}
	status.IsCompleted = true
	completedAt := c.CompletedAt
	status.CompletedAt = &completedAt
	status.CompletedBy = c.ActorName
}

func findActive(completions []*checklist.Completion, pred func(*checklist.Completion) bool) *checklist.Completion {
	for _, c := range completions {
		if c.IsActive() && pred(c) {
			return c
		}
	}
	return nil
}
