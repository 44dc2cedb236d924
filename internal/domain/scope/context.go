package scope

import "sort"

// MarshalContext is the read-only snapshot of one marshal's placements used
// during evaluation. It is built fresh per evaluation (or per bulk preload)
// and never mutated afterwards.
type MarshalContext struct {
	marshalID string

	// assignment order preserved; sentinel matches pick the first entry
	assignedCheckpointIDs []string

	assignedAreaIDs map[string]struct{}
	leadAreaIDs     map[string]struct{}
}

// NewMarshalContext builds a context snapshot. assignedAreas must be the
// areas implied by assignedCheckpoints' memberships; builders derive both in
// one pass so the two cannot drift.
func NewMarshalContext(marshalID string, assignedCheckpoints, assignedAreas, leadAreas []string) *MarshalContext {
	ctx := &MarshalContext{
		marshalID:             marshalID,
		assignedCheckpointIDs: append([]string(nil), assignedCheckpoints...),
		assignedAreaIDs:       make(map[string]struct{}, len(assignedAreas)),
		leadAreaIDs:           make(map[string]struct{}, len(leadAreas)),
	}
	for _, id := range assignedAreas {
		ctx.assignedAreaIDs[id] = struct{}{}
	}
	for _, id := range leadAreas {
		ctx.leadAreaIDs[id] = struct{}{}
	}
	return ctx
}

// MarshalID returns the marshal this context describes.
func (m *MarshalContext) MarshalID() string {
	return m.marshalID
}

// AssignedCheckpoints returns checkpoint ids in assignment order.
func (m *MarshalContext) AssignedCheckpoints() []string {
	return m.assignedCheckpointIDs
}

// AssignedAreas returns the areas implied by checkpoint assignments, sorted
// lexically for deterministic iteration.
func (m *MarshalContext) AssignedAreas() []string {
	return sortedKeys(m.assignedAreaIDs)
}

// LeadAreas returns the areas this marshal leads, sorted lexically.
func (m *MarshalContext) LeadAreas() []string {
	return sortedKeys(m.leadAreaIDs)
}

func (m *MarshalContext) IsAssignedTo(checkpointID string) bool {
	for _, id := range m.assignedCheckpointIDs {
		if id == checkpointID {
			return true
		}
	}
	return false
}

func (m *MarshalContext) IsInArea(areaID string) bool {
	_, ok := m.assignedAreaIDs[areaID]
	return ok
}

func (m *MarshalContext) LeadsArea(areaID string) bool {
	_, ok := m.leadAreaIDs[areaID]
	return ok
}

// LeadsAnyOf reports whether the marshal leads at least one of the areas.
func (m *MarshalContext) LeadsAnyOf(areaIDs []string) bool {
	for _, id := range areaIDs {
		if m.LeadsArea(id) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the marshal has no placements at all.
func (m *MarshalContext) IsEmpty() bool {
	return len(m.assignedCheckpointIDs) == 0 && len(m.leadAreaIDs) == 0
}

// CheckpointAreas maps checkpoint ids to the areas they belong to. It is the
// entity lookup the evaluator consults; missing checkpoints are treated as
// belonging to no area, never as an error.
type CheckpointAreas map[string][]string

// AreasOf returns the area memberships for a checkpoint, or nil if the
// checkpoint is unknown.
func (l CheckpointAreas) AreasOf(checkpointID string) []string {
	return l[checkpointID]
}

// SortedIDs returns all known checkpoint ids in lexical order, so sentinel
// expansion never depends on map iteration order.
func (l CheckpointAreas) SortedIDs() []string {
	ids := make([]string, 0, len(l))
	for id := range l {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
