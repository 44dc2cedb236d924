package scoping

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/marshalhq/event-coordination-backend/internal/domain/errors"
	"github.com/marshalhq/event-coordination-backend/internal/domain/event"
)

// migrationKey is the composite cache key for one migration attempt. Using a
// struct keeps the parts from colliding the way ad-hoc string concatenation
// can.
type migrationKey struct {
	EventID   uuid.UUID
	MarshalID uuid.UUID
}

func (k migrationKey) String() string {
	return fmt.Sprintf("role-migration:%s:%s", k.EventID, k.MarshalID)
}

// RoleMigrator moves inline legacy lead ids on Area rows into AreaRole rows.
// The injected cache bounds how often the check runs per (event, marshal);
// the TTL makes a failed attempt retryable once the window lapses.
type RoleMigrator struct {
	areas  AreaRepository
	roles  AreaRoleRepository
	cache  MigrationCache
	ttl    time.Duration
	logger *slog.Logger
}

func NewRoleMigrator(areas AreaRepository, roles AreaRoleRepository, cache MigrationCache, ttl time.Duration, logger *slog.Logger) *RoleMigrator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleMigrator{
		areas:  areas,
		roles:  roles,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// EnsureMigrated creates AreaRole rows for any legacy inline lead entries
// naming the marshal. At most one attempt runs per (event, marshal) per TTL
// window.
func (m *RoleMigrator) EnsureMigrated(ctx context.Context, eventID, marshalID uuid.UUID) error {
	key := migrationKey{EventID: eventID, MarshalID: marshalID}
	acquired, err := m.cache.SetNX(ctx, key.String(), "1", m.ttl)
	if err != nil {
		// Cache trouble means we cannot tell whether an attempt already ran;
		// run the check anyway, it is idempotent.
		m.logger.Warn("migration cache unavailable", "key", key.String(), "error", err)
	} else if !acquired {
		return nil
	}

	areas, err := m.areas.ListByEvent(ctx, eventID)
	if err != nil {
		return errors.Wrap(err, "listing areas for lead migration")
	}

	existing, err := m.roles.ListByMarshal(ctx, eventID, marshalID)
	if err != nil {
		return errors.Wrap(err, "listing existing roles")
	}
	hasRole := make(map[uuid.UUID]struct{}, len(existing))
	for _, r := range existing {
		if r.Role == event.RoleAreaLead {
			hasRole[r.AreaID] = struct{}{}
		}
	}

	for _, area := range areas {
		if !containsUUID(area.LegacyLeadIDs, marshalID) {
			continue
		}
		if _, ok := hasRole[area.ID]; ok {
			continue
		}
		role, err := event.NewAreaRole(eventID, marshalID, area.ID, event.RoleAreaLead)
		if err != nil {
			return err
		}
		if err := m.roles.Create(ctx, role); err != nil {
			return errors.Wrap(err, "creating migrated area role")
		}
		m.logger.Info("migrated legacy area lead",
			"event_id", eventID, "marshal_id", marshalID, "area_id", area.ID)
	}
	return nil
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
