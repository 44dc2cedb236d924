package scoping

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/marshalhq/event-coordination-backend/internal/domain/errors"
	"github.com/marshalhq/event-coordination-backend/internal/domain/event"
	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
)

// ContextBuilder assembles the MarshalContext snapshots the scope evaluator
// consumes. It supports two modes: Build does per-request repository calls
// for one marshal; Preload fetches everything for an event once so that
// BuildFromPreloaded is pure computation. Both paths must produce identical
// contexts for the same underlying data: dashboards evaluate hundreds of
// marshals against one preloaded snapshot and must not diverge from the
// single-marshal path.
type ContextBuilder struct {
	marshals    MarshalRepository
	assignments AssignmentRepository
	checkpoints CheckpointRepository
	areas       AreaRepository
	roles       AreaRoleRepository
	migrator    *RoleMigrator
	logger      *slog.Logger
}

func NewContextBuilder(
	marshals MarshalRepository,
	assignments AssignmentRepository,
	checkpoints CheckpointRepository,
	areas AreaRepository,
	roles AreaRoleRepository,
	migrator *RoleMigrator,
	logger *slog.Logger,
) *ContextBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextBuilder{
		marshals:    marshals,
		assignments: assignments,
		checkpoints: checkpoints,
		areas:       areas,
		roles:       roles,
		migrator:    migrator,
		logger:      logger,
	}
}

// Build assembles the context for one marshal. It fails only if the marshal
// does not exist; a marshal with no placements gets an empty context.
func (b *ContextBuilder) Build(ctx context.Context, eventID, marshalID uuid.UUID) (*scope.MarshalContext, error) {
	if _, err := b.marshals.GetByID(ctx, eventID, marshalID); err != nil {
		return nil, errors.ErrMarshalNotFound.WithCause(err)
	}

	// Legacy areas may still carry their leads inline; move them to role
	// rows before reading roles. Failure here must not break evaluation.
	if b.migrator != nil {
		if err := b.migrator.EnsureMigrated(ctx, eventID, marshalID); err != nil {
			b.logger.Warn("legacy lead migration failed",
				"event_id", eventID, "marshal_id", marshalID, "error", err)
		}
	}

	assignments, err := b.assignments.ListByMarshal(ctx, eventID, marshalID)
	if err != nil {
		return nil, errors.Wrap(err, "listing assignments")
	}

	// Derive checkpoints and their areas in one pass so the two sets cannot
	// drift. Stale checkpoint references are skipped, not fatal.
	var checkpointIDs []string
	areaSet := make(map[string]struct{})
	for _, a := range assignments {
		cp, err := b.checkpoints.GetByID(ctx, eventID, a.CheckpointID)
		if err != nil {
			continue
		}
		checkpointIDs = append(checkpointIDs, cp.ID.String())
		for _, areaID := range cp.AreaIDs {
			areaSet[areaID.String()] = struct{}{}
		}
	}

	roles, err := b.roles.ListByMarshal(ctx, eventID, marshalID)
	if err != nil {
		return nil, errors.Wrap(err, "listing area roles")
	}
	var leadAreas []string
	for _, r := range roles {
		if r.Role == event.RoleAreaLead {
			leadAreas = append(leadAreas, r.AreaID.String())
		}
	}

	return scope.NewMarshalContext(marshalID.String(), checkpointIDs, setToSlice(areaSet), leadAreas), nil
}

// CheckpointLookup loads the checkpoint-to-areas mapping for an event, used
// as the evaluator's entity lookup on the single-marshal path.
func (b *ContextBuilder) CheckpointLookup(ctx context.Context, eventID uuid.UUID) (scope.CheckpointAreas, error) {
	lookup, _, err := b.CheckpointIndex(ctx, eventID)
	return lookup, err
}

// CheckpointIndex loads both the area lookup and the display-name map in
// one fetch.
func (b *ContextBuilder) CheckpointIndex(ctx context.Context, eventID uuid.UUID) (scope.CheckpointAreas, map[string]string, error) {
	checkpoints, err := b.checkpoints.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "listing checkpoints")
	}
	lookup := make(scope.CheckpointAreas, len(checkpoints))
	names := make(map[string]string, len(checkpoints))
	for _, cp := range checkpoints {
		areas := make([]string, 0, len(cp.AreaIDs))
		for _, id := range cp.AreaIDs {
			areas = append(areas, id.String())
		}
		lookup[cp.ID.String()] = areas
		names[cp.ID.String()] = cp.Name
	}
	return lookup, names, nil
}

// PreloadedData is an immutable per-event snapshot. It is only usable once
// all batched fetches completed; a partially loaded snapshot fails closed
// and yields empty contexts.
type PreloadedData struct {
	complete bool

	assignmentsByMarshal map[uuid.UUID][]*event.Assignment
	checkpointAreas      scope.CheckpointAreas
	checkpointNames      map[string]string
	leadAreasByMarshal   map[uuid.UUID][]string
	marshalNames         map[uuid.UUID]string
}

// Complete reports whether every batched fetch finished.
func (p *PreloadedData) Complete() bool {
	return p != nil && p.complete
}

// CheckpointAreas returns the snapshot's checkpoint-to-areas lookup.
func (p *PreloadedData) CheckpointAreas() scope.CheckpointAreas {
	if p == nil {
		return nil
	}
	return p.checkpointAreas
}

// CheckpointName resolves a checkpoint's display name from the snapshot.
func (p *PreloadedData) CheckpointName(checkpointID string) string {
	if p == nil {
		return ""
	}
	return p.checkpointNames[checkpointID]
}

// MarshalName resolves a marshal's display name from the snapshot.
func (p *PreloadedData) MarshalName(marshalID uuid.UUID) string {
	if p == nil {
		return ""
	}
	return p.marshalNames[marshalID]
}

// MarshalIDs returns every marshal in the snapshot, sorted for deterministic
// fan-out.
func (p *PreloadedData) MarshalIDs() []uuid.UUID {
	if p == nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(p.marshalNames))
	for id := range p.marshalNames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Preload issues one fetch per entity type and returns the completed
// snapshot. All fetches finish before the snapshot is marked complete.
func (b *ContextBuilder) Preload(ctx context.Context, eventID uuid.UUID) (*PreloadedData, error) {
	marshals, err := b.marshals.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "preloading marshals")
	}
	assignments, err := b.assignments.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "preloading assignments")
	}
	checkpoints, err := b.checkpoints.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "preloading checkpoints")
	}
	roles, err := b.roles.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "preloading area roles")
	}
	areas, err := b.areas.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "preloading areas")
	}

	pd := &PreloadedData{
		assignmentsByMarshal: make(map[uuid.UUID][]*event.Assignment),
		checkpointAreas:      make(scope.CheckpointAreas, len(checkpoints)),
		checkpointNames:      make(map[string]string, len(checkpoints)),
		leadAreasByMarshal:   make(map[uuid.UUID][]string),
		marshalNames:         make(map[uuid.UUID]string, len(marshals)),
	}

	for _, m := range marshals {
		pd.marshalNames[m.ID] = m.Name
	}
	for _, a := range assignments {
		pd.assignmentsByMarshal[a.MarshalID] = append(pd.assignmentsByMarshal[a.MarshalID], a)
	}
	for _, list := range pd.assignmentsByMarshal {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	}
	for _, cp := range checkpoints {
		areas := make([]string, 0, len(cp.AreaIDs))
		for _, id := range cp.AreaIDs {
			areas = append(areas, id.String())
		}
		pd.checkpointAreas[cp.ID.String()] = areas
		pd.checkpointNames[cp.ID.String()] = cp.Name
	}
	for _, r := range roles {
		if r.Role == event.RoleAreaLead {
			pd.leadAreasByMarshal[r.MarshalID] = append(pd.leadAreasByMarshal[r.MarshalID], r.AreaID.String())
		}
	}
	// Legacy areas may still carry their leads inline; fold them into the
	// snapshot so preloaded contexts match the per-marshal path, which
	// migrates those entries to role rows before reading roles.
	for _, area := range areas {
		areaID := area.ID.String()
		for _, leadID := range area.LegacyLeadIDs {
			pd.leadAreasByMarshal[leadID] = appendMissing(pd.leadAreasByMarshal[leadID], areaID)
		}
	}

	pd.complete = true
	return pd, nil
}

func appendMissing(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

// BuildFromPreloaded is the pure counterpart of Build. For the same
// underlying data it returns a context equal field-for-field to Build's. An
// incomplete snapshot yields an empty context rather than evaluating
// against partial data.
func (b *ContextBuilder) BuildFromPreloaded(marshalID uuid.UUID, pd *PreloadedData) *scope.MarshalContext {
	return BuildFromPreloaded(marshalID, pd)
}

// BuildFromPreloaded is exported as a free function so batch fan-out does
// not need a ContextBuilder per goroutine.
func BuildFromPreloaded(marshalID uuid.UUID, pd *PreloadedData) *scope.MarshalContext {
	if !pd.Complete() {
		return scope.NewMarshalContext(marshalID.String(), nil, nil, nil)
	}

	var checkpointIDs []string
	areaSet := make(map[string]struct{})
	for _, a := range pd.assignmentsByMarshal[marshalID] {
		cpID := a.CheckpointID.String()
		areas, ok := pd.checkpointAreas[cpID]
		if !ok {
			// stale checkpoint reference, same treatment as Build
			continue
		}
		checkpointIDs = append(checkpointIDs, cpID)
		for _, areaID := range areas {
			areaSet[areaID] = struct{}{}
		}
	}

	return scope.NewMarshalContext(marshalID.String(), checkpointIDs, setToSlice(areaSet), pd.leadAreasByMarshal[marshalID])
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
