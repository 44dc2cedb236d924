package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marshalhq/event-coordination-backend/internal/domain/contact"
	"github.com/marshalhq/event-coordination-backend/internal/domain/note"
	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
)

// noteRepository implements sharing.NoteRepository using PostgreSQL
type noteRepository struct {
	db *pgxpool.Pool
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *pgxpool.Pool) *noteRepository {
	return &noteRepository{db: db}
}

const noteColumns = `id, event_id, title, COALESCE(body, ''), pinned, scopes, created_at, updated_at`

func scanNote(row pgx.Row) (*note.Note, error) {
	var n note.Note
	var scopesJSON []byte
	err := row.Scan(&n.ID, &n.EventID, &n.Title, &n.Body, &n.Pinned, &scopesJSON, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	n.Scopes = scope.DecodeConfigurations(scopesJSON)
	return &n, nil
}

func (r *noteRepository) GetByID(ctx context.Context, eventID, noteID uuid.UUID) (*note.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE event_id = $1 AND id = $2`
	n, err := scanNote(r.db.QueryRow(ctx, query, eventID, noteID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("note not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return n, nil
}

func (r *noteRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*note.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE event_id = $1 ORDER BY pinned DESC, created_at, id`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*note.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *noteRepository) Create(ctx context.Context, n *note.Note) error {
	scopesJSON, err := json.Marshal(n.Scopes)
	if err != nil {
		return fmt.Errorf("failed to marshal scopes: %w", err)
	}
	query := `
		INSERT INTO notes (id, event_id, title, body, pinned, scopes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.db.Exec(ctx, query, n.ID, n.EventID, n.Title, n.Body, n.Pinned, scopesJSON, n.CreatedAt, n.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (r *noteRepository) Update(ctx context.Context, n *note.Note) error {
	scopesJSON, err := json.Marshal(n.Scopes)
	if err != nil {
		return fmt.Errorf("failed to marshal scopes: %w", err)
	}
	query := `
		UPDATE notes
		SET title = $3, body = $4, pinned = $5, scopes = $6, updated_at = $7
		WHERE event_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, n.EventID, n.ID, n.Title, n.Body, n.Pinned, scopesJSON, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("note not found")
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, eventID, noteID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notes WHERE event_id = $1 AND id = $2`, eventID, noteID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("note not found")
	}
	return nil
}

// contactRepository implements sharing.ContactRepository using PostgreSQL
type contactRepository struct {
	db *pgxpool.Pool
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *pgxpool.Pool) *contactRepository {
	return &contactRepository{db: db}
}

const contactColumns = `id, event_id, name, phone, COALESCE(role, ''), scopes, created_at, updated_at`

func scanContact(row pgx.Row) (*contact.Contact, error) {
	var c contact.Contact
	var scopesJSON []byte
	err := row.Scan(&c.ID, &c.EventID, &c.Name, &c.Phone, &c.Role, &scopesJSON, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Scopes = scope.DecodeConfigurations(scopesJSON)
	return &c, nil
}

func (r *contactRepository) GetByID(ctx context.Context, eventID, contactID uuid.UUID) (*contact.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE event_id = $1 AND id = $2`
	c, err := scanContact(r.db.QueryRow(ctx, query, eventID, contactID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("contact not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

func (r *contactRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*contact.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE event_id = $1 ORDER BY name, id`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*contact.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *contactRepository) Create(ctx context.Context, c *contact.Contact) error {
	scopesJSON, err := json.Marshal(c.Scopes)
	if err != nil {
		return fmt.Errorf("failed to marshal scopes: %w", err)
	}
	query := `
		INSERT INTO contacts (id, event_id, name, phone, role, scopes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.db.Exec(ctx, query, c.ID, c.EventID, c.Name, c.Phone, c.Role, scopesJSON, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func (r *contactRepository) Update(ctx context.Context, c *contact.Contact) error {
	scopesJSON, err := json.Marshal(c.Scopes)
	if err != nil {
		return fmt.Errorf("failed to marshal scopes: %w", err)
	}
	query := `
		UPDATE contacts
		SET name = $3, phone = $4, role = $5, scopes = $6, updated_at = $7
		WHERE event_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, c.EventID, c.ID, c.Name, c.Phone, c.Role, scopesJSON, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("contact not found")
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, eventID, contactID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE event_id = $1 AND id = $2`, eventID, contactID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("contact not found")
	}
	return nil
}
