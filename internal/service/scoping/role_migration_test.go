package scoping

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marshalhq/event-coordination-backend/internal/domain/event"
)

func TestRoleMigrator_MigratesLegacyLeads(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	marshalID := uuid.New()

	legacy, err := event.NewArea(eventID, "Old Quarter")
	require.NoError(t, err)
	legacy.LegacyLeadIDs = []uuid.UUID{marshalID}

	modern, err := event.NewArea(eventID, "New Quarter")
	require.NoError(t, err)

	areas := new(mockAreaRepo)
	areas.On("ListByEvent", ctx, eventID).Return([]*event.Area{legacy, modern}, nil)

	roles := new(mockAreaRoleRepo)
	roles.On("ListByMarshal", ctx, eventID, marshalID).Return([]*event.AreaRole{}, nil)
	roles.On("Create", ctx, mock.MatchedBy(func(r *event.AreaRole) bool {
		return r.AreaID == legacy.ID && r.MarshalID == marshalID && r.Role == event.RoleAreaLead
	})).Return(nil).Once()

	m := NewRoleMigrator(areas, roles, newMockMigrationCache(), time.Hour, nil)

	require.NoError(t, m.EnsureMigrated(ctx, eventID, marshalID))
	roles.AssertExpectations(t)
}

func TestRoleMigrator_SkipsAlreadyMigrated(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	marshalID := uuid.New()

	area, err := event.NewArea(eventID, "Old Quarter")
	require.NoError(t, err)
	area.LegacyLeadIDs = []uuid.UUID{marshalID}

	existing, err := event.NewAreaRole(eventID, marshalID, area.ID, event.RoleAreaLead)
	require.NoError(t, err)

	areas := new(mockAreaRepo)
	areas.On("ListByEvent", ctx, eventID).Return([]*event.Area{area}, nil)

	roles := new(mockAreaRoleRepo)
	roles.On("ListByMarshal", ctx, eventID, marshalID).Return([]*event.AreaRole{existing}, nil)

	m := NewRoleMigrator(areas, roles, newMockMigrationCache(), time.Hour, nil)

	require.NoError(t, m.EnsureMigrated(ctx, eventID, marshalID))
	roles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoleMigrator_RunsOncePerWindow(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	marshalID := uuid.New()

	areas := new(mockAreaRepo)
	areas.On("ListByEvent", ctx, eventID).Return([]*event.Area{}, nil).Once()

	roles := new(mockAreaRoleRepo)
	roles.On("ListByMarshal", ctx, eventID, marshalID).Return([]*event.AreaRole{}, nil).Once()

	m := NewRoleMigrator(areas, roles, newMockMigrationCache(), time.Hour, nil)

	require.NoError(t, m.EnsureMigrated(ctx, eventID, marshalID))
	// Second call hits the cache guard and never touches the repositories.
	require.NoError(t, m.EnsureMigrated(ctx, eventID, marshalID))

	areas.AssertExpectations(t)
	roles.AssertExpectations(t)
}

func TestMigrationKey_Distinct(t *testing.T) {
	e1, e2 := uuid.New(), uuid.New()
	m1 := uuid.New()

	assert.NotEqual(t,
		migrationKey{EventID: e1, MarshalID: m1}.String(),
		migrationKey{EventID: e2, MarshalID: m1}.String())
}
