package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marshalhq/event-coordination-backend/internal/domain/event"
)

// marshalRepository implements scoping.MarshalRepository using PostgreSQL
type marshalRepository struct {
	db *pgxpool.Pool
}

// NewMarshalRepository creates a new marshal repository
func NewMarshalRepository(db *pgxpool.Pool) *marshalRepository {
	return &marshalRepository{db: db}
}

func (r *marshalRepository) GetByID(ctx context.Context, eventID, marshalID uuid.UUID) (*event.Marshal, error) {
	query := `
		SELECT id, event_id, name, email, phone, created_at, updated_at
		FROM marshals
		WHERE event_id = $1 AND id = $2
	`
	var m event.Marshal
	err := r.db.QueryRow(ctx, query, eventID, marshalID).Scan(
		&m.ID, &m.EventID, &m.Name, &m.Email, &m.Phone, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("marshal not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get marshal: %w", err)
	}
	return &m, nil
}

func (r *marshalRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.Marshal, error) {
	query := `
		SELECT id, event_id, name, email, phone, created_at, updated_at
		FROM marshals
		WHERE event_id = $1
		ORDER BY name, id
	`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list marshals: %w", err)
	}
	defer rows.Close()

	var marshals []*event.Marshal
	for rows.Next() {
		var m event.Marshal
		if err := rows.Scan(&m.ID, &m.EventID, &m.Name, &m.Email, &m.Phone, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan marshal: %w", err)
		}
		marshals = append(marshals, &m)
	}
	return marshals, rows.Err()
}

// checkpointRepository implements scoping.CheckpointRepository using PostgreSQL
type checkpointRepository struct {
	db *pgxpool.Pool
}

// NewCheckpointRepository creates a new checkpoint repository
func NewCheckpointRepository(db *pgxpool.Pool) *checkpointRepository {
	return &checkpointRepository{db: db}
}

func (r *checkpointRepository) GetByID(ctx context.Context, eventID, checkpointID uuid.UUID) (*event.Checkpoint, error) {
	query := `
		SELECT c.id, c.event_id, c.name, c.created_at, c.updated_at,
		       COALESCE(array_agg(ca.area_id) FILTER (WHERE ca.area_id IS NOT NULL), '{}')
		FROM checkpoints c
		LEFT JOIN checkpoint_areas ca ON ca.checkpoint_id = c.id
		WHERE c.event_id = $1 AND c.id = $2
		GROUP BY c.id
	`
	var cp event.Checkpoint
	err := r.db.QueryRow(ctx, query, eventID, checkpointID).Scan(
		&cp.ID, &cp.EventID, &cp.Name, &cp.CreatedAt, &cp.UpdatedAt, &cp.AreaIDs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("checkpoint not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	return &cp, nil
}

func (r *checkpointRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.Checkpoint, error) {
	query := `
		SELECT c.id, c.event_id, c.name, c.created_at, c.updated_at,
		       COALESCE(array_agg(ca.area_id) FILTER (WHERE ca.area_id IS NOT NULL), '{}')
		FROM checkpoints c
		LEFT JOIN checkpoint_areas ca ON ca.checkpoint_id = c.id
		WHERE c.event_id = $1
		GROUP BY c.id
		ORDER BY c.name, c.id
	`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []*event.Checkpoint
	for rows.Next() {
		var cp event.Checkpoint
		if err := rows.Scan(&cp.ID, &cp.EventID, &cp.Name, &cp.CreatedAt, &cp.UpdatedAt, &cp.AreaIDs); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		checkpoints = append(checkpoints, &cp)
	}
	return checkpoints, rows.Err()
}

// areaRepository implements scoping.AreaRepository using PostgreSQL
type areaRepository struct {
	db *pgxpool.Pool
}

// NewAreaRepository creates a new area repository
func NewAreaRepository(db *pgxpool.Pool) *areaRepository {
	return &areaRepository{db: db}
}

func (r *areaRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.Area, error) {
	query := `
		SELECT id, event_id, name, COALESCE(legacy_lead_ids, '{}'), created_at, updated_at
		FROM areas
		WHERE event_id = $1
		ORDER BY name, id
	`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}
	defer rows.Close()

	var areas []*event.Area
	for rows.Next() {
		var a event.Area
		if err := rows.Scan(&a.ID, &a.EventID, &a.Name, &a.LegacyLeadIDs, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan area: %w", err)
		}
		areas = append(areas, &a)
	}
	return areas, rows.Err()
}

// assignmentRepository implements the assignment interfaces of both the
// scoping and checklist services using PostgreSQL
type assignmentRepository struct {
	db *pgxpool.Pool
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *pgxpool.Pool) *assignmentRepository {
	return &assignmentRepository{db: db}
}

const assignmentColumns = `id, event_id, marshal_id, checkpoint_id, position, checked_in_at, checked_out_at, created_at, updated_at`

func scanAssignment(row pgx.Row) (*event.Assignment, error) {
	var a event.Assignment
	err := row.Scan(
		&a.ID, &a.EventID, &a.MarshalID, &a.CheckpointID, &a.Position,
		&a.CheckedInAt, &a.CheckedOutAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepository) ListByMarshal(ctx context.Context, eventID, marshalID uuid.UUID) ([]*event.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE event_id = $1 AND marshal_id = $2
		ORDER BY position, created_at
	`
	rows, err := r.db.Query(ctx, query, eventID, marshalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func (r *assignmentRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE event_id = $1
		ORDER BY marshal_id, position, created_at
	`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func (r *assignmentRepository) GetByMarshalAndCheckpoint(ctx context.Context, eventID, marshalID, checkpointID uuid.UUID) (*event.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE event_id = $1 AND marshal_id = $2 AND checkpoint_id = $3
	`
	a, err := scanAssignment(r.db.QueryRow(ctx, query, eventID, marshalID, checkpointID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("assignment not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return a, nil
}

func (r *assignmentRepository) Update(ctx context.Context, a *event.Assignment) error {
	query := `
		UPDATE assignments
		SET checked_in_at = $2, checked_out_at = $3, position = $4, updated_at = $5
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, a.ID, a.CheckedInAt, a.CheckedOutAt, a.Position, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("assignment not found")
	}
	return nil
}

func collectAssignments(rows pgx.Rows) ([]*event.Assignment, error) {
	var assignments []*event.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// areaRoleRepository implements scoping.AreaRoleRepository using PostgreSQL
type areaRoleRepository struct {
	db *pgxpool.Pool
}

// NewAreaRoleRepository creates a new area role repository
func NewAreaRoleRepository(db *pgxpool.Pool) *areaRoleRepository {
	return &areaRoleRepository{db: db}
}

func (r *areaRoleRepository) ListByMarshal(ctx context.Context, eventID, marshalID uuid.UUID) ([]*event.AreaRole, error) {
	query := `
		SELECT id, event_id, marshal_id, area_id, role, created_at
		FROM area_roles
		WHERE event_id = $1 AND marshal_id = $2
	`
	rows, err := r.db.Query(ctx, query, eventID, marshalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list area roles: %w", err)
	}
	defer rows.Close()
	return collectAreaRoles(rows)
}

func (r *areaRoleRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.AreaRole, error) {
	query := `
		SELECT id, event_id, marshal_id, area_id, role, created_at
		FROM area_roles
		WHERE event_id = $1
	`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list area roles: %w", err)
	}
	defer rows.Close()
	return collectAreaRoles(rows)
}

func (r *areaRoleRepository) Create(ctx context.Context, role *event.AreaRole) error {
	query := `
		INSERT INTO area_roles (id, event_id, marshal_id, area_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, marshal_id, area_id, role) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, role.ID, role.EventID, role.MarshalID, role.AreaID, role.Role.String(), role.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create area role: %w", err)
	}
	return nil
}

func collectAreaRoles(rows pgx.Rows) ([]*event.AreaRole, error) {
	var roles []*event.AreaRole
	for rows.Next() {
		var role event.AreaRole
		var roleStr string
		if err := rows.Scan(&role.ID, &role.EventID, &role.MarshalID, &role.AreaID, &roleStr, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan area role: %w", err)
		}
		role.Role = parseRoleType(roleStr)
		roles = append(roles, &role)
	}
	return roles, rows.Err()
}

func parseRoleType(s string) event.RoleType {
	switch s {
	case "area_lead":
		return event.RoleAreaLead
	default:
		return event.RoleAreaLead
	}
}
