package scoping

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/marshalhq/event-coordination-backend/internal/domain/errors"
	"github.com/marshalhq/event-coordination-backend/internal/domain/event"
)

type builderFixture struct {
	eventID uuid.UUID

	marshals    []*event.Marshal
	areas       []*event.Area
	checkpoints []*event.Checkpoint
	assignments []*event.Assignment
	roles       []*event.AreaRole
}

// newBuilderFixture builds a small event: two areas, three checkpoints, two
// marshals. m1 staffs cp1 then cp2 (both area1); m2 leads area2 with no
// assignments.
func newBuilderFixture(t *testing.T) *builderFixture {
	t.Helper()
	eventID := uuid.New()

	m1, err := event.NewMarshal(eventID, "Alex", "alex@example.com")
	require.NoError(t, err)
	m2, err := event.NewMarshal(eventID, "Brook", "brook@example.com")
	require.NoError(t, err)

	area1, err := event.NewArea(eventID, "North Loop")
	require.NoError(t, err)
	area2, err := event.NewArea(eventID, "South Loop")
	require.NoError(t, err)

	cp1, err := event.NewCheckpoint(eventID, "Gate A", []uuid.UUID{area1.ID})
	require.NoError(t, err)
	cp2, err := event.NewCheckpoint(eventID, "Gate B", []uuid.UUID{area1.ID})
	require.NoError(t, err)
	cp3, err := event.NewCheckpoint(eventID, "Gate C", []uuid.UUID{area2.ID})
	require.NoError(t, err)

	a1, err := event.NewAssignment(eventID, m1.ID, cp1.ID, 0)
	require.NoError(t, err)
	a2, err := event.NewAssignment(eventID, m1.ID, cp2.ID, 1)
	require.NoError(t, err)

	r1, err := event.NewAreaRole(eventID, m2.ID, area2.ID, event.RoleAreaLead)
	require.NoError(t, err)

	return &builderFixture{
		eventID:     eventID,
		marshals:    []*event.Marshal{m1, m2},
		areas:       []*event.Area{area1, area2},
		checkpoints: []*event.Checkpoint{cp1, cp2, cp3},
		assignments: []*event.Assignment{a1, a2},
		roles:       []*event.AreaRole{r1},
	}
}

func (f *builderFixture) builder(t *testing.T) *ContextBuilder {
	t.Helper()
	ctx := context.Background()

	marshals := new(mockMarshalRepo)
	assignments := new(mockAssignmentRepo)
	checkpoints := new(mockCheckpointRepo)
	areas := new(mockAreaRepo)
	roles := new(mockAreaRoleRepo)

	for _, m := range f.marshals {
		marshals.On("GetByID", ctx, f.eventID, m.ID).Return(m, nil)
	}
	marshals.On("ListByEvent", ctx, f.eventID).Return(f.marshals, nil)

	byMarshal := make(map[uuid.UUID][]*event.Assignment)
	for _, a := range f.assignments {
		byMarshal[a.MarshalID] = append(byMarshal[a.MarshalID], a)
	}
	for _, m := range f.marshals {
		assignments.On("ListByMarshal", ctx, f.eventID, m.ID).Return(byMarshal[m.ID], nil)
	}
	assignments.On("ListByEvent", ctx, f.eventID).Return(f.assignments, nil)

	for _, cp := range f.checkpoints {
		checkpoints.On("GetByID", ctx, f.eventID, cp.ID).Return(cp, nil)
	}
	checkpoints.On("ListByEvent", ctx, f.eventID).Return(f.checkpoints, nil)

	areas.On("ListByEvent", ctx, f.eventID).Return(f.areas, nil)

	rolesByMarshal := make(map[uuid.UUID][]*event.AreaRole)
	for _, r := range f.roles {
		rolesByMarshal[r.MarshalID] = append(rolesByMarshal[r.MarshalID], r)
	}
	for _, m := range f.marshals {
		roles.On("ListByMarshal", ctx, f.eventID, m.ID).Return(rolesByMarshal[m.ID], nil)
	}
	roles.On("ListByEvent", ctx, f.eventID).Return(f.roles, nil)

	return NewContextBuilder(marshals, assignments, checkpoints, areas, roles, nil, nil)
}

func TestContextBuilder_Build(t *testing.T) {
	f := newBuilderFixture(t)
	b := f.builder(t)
	ctx := context.Background()

	m1 := f.marshals[0]
	mctx, err := b.Build(ctx, f.eventID, m1.ID)
	require.NoError(t, err)

	assert.Equal(t, m1.ID.String(), mctx.MarshalID())
	assert.Equal(t, []string{f.checkpoints[0].ID.String(), f.checkpoints[1].ID.String()}, mctx.AssignedCheckpoints())
	assert.Equal(t, []string{f.areas[0].ID.String()}, mctx.AssignedAreas())
	assert.Empty(t, mctx.LeadAreas())
}

func TestContextBuilder_Build_LeadWithoutAssignments(t *testing.T) {
	f := newBuilderFixture(t)
	b := f.builder(t)

	m2 := f.marshals[1]
	mctx, err := b.Build(context.Background(), f.eventID, m2.ID)
	require.NoError(t, err)

	assert.Empty(t, mctx.AssignedCheckpoints())
	assert.Empty(t, mctx.AssignedAreas())
	assert.Equal(t, []string{f.areas[1].ID.String()}, mctx.LeadAreas())
}

func TestContextBuilder_Build_UnknownMarshal(t *testing.T) {
	f := newBuilderFixture(t)
	ctx := context.Background()

	marshals := new(mockMarshalRepo)
	unknown := uuid.New()
	marshals.On("GetByID", ctx, f.eventID, unknown).Return(nil, domerrors.ErrMarshalNotFound)

	b := NewContextBuilder(marshals, new(mockAssignmentRepo), new(mockCheckpointRepo), new(mockAreaRepo), new(mockAreaRoleRepo), nil, nil)

	_, err := b.Build(ctx, f.eventID, unknown)
	require.Error(t, err)
	assert.True(t, domerrors.IsType(err, domerrors.ErrorTypeNotFound))
}

func TestContextBuilder_PreloadEquivalence(t *testing.T) {
	f := newBuilderFixture(t)
	b := f.builder(t)
	ctx := context.Background()

	pd, err := b.Preload(ctx, f.eventID)
	require.NoError(t, err)
	require.True(t, pd.Complete())

	for _, m := range f.marshals {
		direct, err := b.Build(ctx, f.eventID, m.ID)
		require.NoError(t, err)

		preloaded := BuildFromPreloaded(m.ID, pd)

		assert.Equal(t, direct.MarshalID(), preloaded.MarshalID())
		assert.Equal(t, direct.AssignedCheckpoints(), preloaded.AssignedCheckpoints())
		assert.Equal(t, direct.AssignedAreas(), preloaded.AssignedAreas())
		assert.Equal(t, direct.LeadAreas(), preloaded.LeadAreas())
	}
}

func TestContextBuilder_PreloadEquivalence_LegacyLeads(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()

	lead, err := event.NewMarshal(eventID, "Casey", "casey@example.com")
	require.NoError(t, err)

	area, err := event.NewArea(eventID, "Old Quarter")
	require.NoError(t, err)
	area.LegacyLeadIDs = []uuid.UUID{lead.ID}

	marshals := new(mockMarshalRepo)
	marshals.On("GetByID", ctx, eventID, lead.ID).Return(lead, nil)
	marshals.On("ListByEvent", ctx, eventID).Return([]*event.Marshal{lead}, nil)

	assignments := new(mockAssignmentRepo)
	assignments.On("ListByMarshal", ctx, eventID, lead.ID).Return([]*event.Assignment{}, nil)
	assignments.On("ListByEvent", ctx, eventID).Return([]*event.Assignment{}, nil)

	checkpoints := new(mockCheckpointRepo)
	checkpoints.On("ListByEvent", ctx, eventID).Return([]*event.Checkpoint{}, nil)

	areas := new(mockAreaRepo)
	areas.On("ListByEvent", ctx, eventID).Return([]*event.Area{area}, nil)

	roles := &memoryAreaRoleRepo{}
	migrator := NewRoleMigrator(areas, roles, newMockMigrationCache(), time.Hour, nil)
	b := NewContextBuilder(marshals, assignments, checkpoints, areas, roles, migrator, nil)

	// Preload before any per-marshal build, while the lead exists only as a
	// legacy inline entry and no role row has been written yet.
	pd, err := b.Preload(ctx, eventID)
	require.NoError(t, err)
	require.True(t, pd.Complete())

	direct, err := b.Build(ctx, eventID, lead.ID)
	require.NoError(t, err)
	require.Equal(t, []string{area.ID.String()}, direct.LeadAreas())

	preloaded := BuildFromPreloaded(lead.ID, pd)
	assert.Equal(t, direct.LeadAreas(), preloaded.LeadAreas())
	assert.Equal(t, direct.AssignedCheckpoints(), preloaded.AssignedCheckpoints())
	assert.Equal(t, direct.AssignedAreas(), preloaded.AssignedAreas())
}

func TestContextBuilder_PreloadLookupMatchesDirectLookup(t *testing.T) {
	f := newBuilderFixture(t)
	b := f.builder(t)
	ctx := context.Background()

	direct, err := b.CheckpointLookup(ctx, f.eventID)
	require.NoError(t, err)

	pd, err := b.Preload(ctx, f.eventID)
	require.NoError(t, err)

	assert.Equal(t, direct, pd.CheckpointAreas())
}

func TestBuildFromPreloaded_IncompleteSnapshotFailsClosed(t *testing.T) {
	f := newBuilderFixture(t)
	m1 := f.marshals[0]

	mctx := BuildFromPreloaded(m1.ID, &PreloadedData{})
	assert.True(t, mctx.IsEmpty())

	mctx = BuildFromPreloaded(m1.ID, nil)
	assert.True(t, mctx.IsEmpty())
}

func TestBuildFromPreloaded_SkipsStaleCheckpointRefs(t *testing.T) {
	f := newBuilderFixture(t)
	b := f.builder(t)
	ctx := context.Background()

	pd, err := b.Preload(ctx, f.eventID)
	require.NoError(t, err)

	// Simulate a deleted checkpoint by removing it from the snapshot lookup.
	stale := f.checkpoints[0].ID.String()
	delete(pd.checkpointAreas, stale)

	mctx := BuildFromPreloaded(f.marshals[0].ID, pd)
	assert.NotContains(t, mctx.AssignedCheckpoints(), stale)
	assert.Equal(t, []string{f.checkpoints[1].ID.String()}, mctx.AssignedCheckpoints())
}
