package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marshalhq/event-coordination-backend/internal/domain/checklist"
	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
)

// itemRepository implements checklist.ItemRepository using PostgreSQL. Scope
// configurations live in a JSONB column; malformed rows decode to an empty
// configuration list, which the evaluator treats as matching nobody.
type itemRepository struct {
	db *pgxpool.Pool
}

// NewItemRepository creates a new checklist item repository
func NewItemRepository(db *pgxpool.Pool) *itemRepository {
	return &itemRepository{db: db}
}

const itemColumns = `id, event_id, title, COALESCE(details, ''), links_to_check_in, scopes, due_at, created_at, updated_at`

func scanItem(row pgx.Row) (*checklist.Item, error) {
	var item checklist.Item
	var scopesJSON []byte
	err := row.Scan(
		&item.ID, &item.EventID, &item.Title, &item.Details,
		&item.LinksToCheckIn, &scopesJSON, &item.DueAt,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Scopes = scope.DecodeConfigurations(scopesJSON)
	return &item, nil
}

func (r *itemRepository) GetByID(ctx context.Context, eventID, itemID uuid.UUID) (*checklist.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM checklist_items
		WHERE event_id = $1 AND id = $2
	`
	item, err := scanItem(r.db.QueryRow(ctx, query, eventID, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("checklist item not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get checklist item: %w", err)
	}
	return item, nil
}

func (r *itemRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*checklist.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM checklist_items
		WHERE event_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	defer rows.Close()

	var items []*checklist.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *itemRepository) Create(ctx context.Context, item *checklist.Item) error {
	scopesJSON, err := json.Marshal(item.Scopes)
	if err != nil {
		return fmt.Errorf("failed to marshal scopes: %w", err)
	}
	query := `
		INSERT INTO checklist_items (id, event_id, title, details, links_to_check_in, scopes, due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.Exec(ctx, query,
		item.ID, item.EventID, item.Title, item.Details,
		item.LinksToCheckIn, scopesJSON, item.DueAt,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create checklist item: %w", err)
	}
	return nil
}

// completionRepository implements checklist.CompletionRepository using
// PostgreSQL. Soft-deleted rows stay in the table; callers filter on
// IsActive so an uncompleted-then-recompleted context keeps its history.
type completionRepository struct {
	db *pgxpool.Pool
}

// NewCompletionRepository creates a new completion repository
func NewCompletionRepository(db *pgxpool.Pool) *completionRepository {
	return &completionRepository{db: db}
}

const completionColumns = `id, event_id, item_id, context_type, context_id, owner_marshal_id, actor_id, COALESCE(actor_name, ''), completed_at, deleted_at`

func scanCompletion(row pgx.Row) (*checklist.Completion, error) {
	var c checklist.Completion
	var contextType string
	err := row.Scan(
		&c.ID, &c.EventID, &c.ItemID, &contextType, &c.ContextID,
		&c.OwnerMarshalID, &c.ActorID, &c.ActorName,
		&c.CompletedAt, &c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ContextType = parseContextType(contextType)
	return &c, nil
}

func (r *completionRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*checklist.Completion, error) {
	query := `
		SELECT ` + completionColumns + `
		FROM completions
		WHERE event_id = $1
		ORDER BY completed_at, id
	`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

func (r *completionRepository) ListByItem(ctx context.Context, eventID, itemID uuid.UUID) ([]*checklist.Completion, error) {
	query := `
		SELECT ` + completionColumns + `
		FROM completions
		WHERE event_id = $1 AND item_id = $2
		ORDER BY completed_at, id
	`
	rows, err := r.db.Query(ctx, query, eventID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

func (r *completionRepository) Create(ctx context.Context, c *checklist.Completion) error {
	query := `
		INSERT INTO completions (id, event_id, item_id, context_type, context_id, owner_marshal_id, actor_id, actor_name, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.EventID, c.ItemID, c.ContextType.String(), c.ContextID,
		c.OwnerMarshalID, c.ActorID, c.ActorName, c.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create completion: %w", err)
	}
	return nil
}

func (r *completionRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE completions
		SET deleted_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to soft-delete completion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("completion not found or already deleted")
	}
	return nil
}

func collectCompletions(rows pgx.Rows) ([]*checklist.Completion, error) {
	var completions []*checklist.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

func parseContextType(s string) scope.ContextType {
	switch s {
	case "checkpoint":
		return scope.ContextCheckpoint
	case "area":
		return scope.ContextArea
	default:
		return scope.ContextPersonal
	}
}
