package sharing

import (
	"context"

	"github.com/google/uuid"

	"github.com/marshalhq/event-coordination-backend/internal/domain/contact"
	"github.com/marshalhq/event-coordination-backend/internal/domain/note"
	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
)

// ScopeCarrier is anything whose visibility is governed by scope
// configurations. Notes and contacts implement it; checklist items have
// their own richer path through the status builder.
type ScopeCarrier interface {
	ScopeConfigurations() []scope.Configuration
}

// NoteRepository defines the interface for note storage
type NoteRepository interface {
	// GetByID retrieves a note within an event
	GetByID(ctx context.Context, eventID, noteID uuid.UUID) (*note.Note, error)
	// ListByEvent returns all notes for an event
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*note.Note, error)
	// Create persists a new note
	Create(ctx context.Context, n *note.Note) error
	// Update persists note changes
	Update(ctx context.Context, n *note.Note) error
	// Delete removes a note
	Delete(ctx context.Context, eventID, noteID uuid.UUID) error
}

// ContactRepository defines the interface for contact storage
type ContactRepository interface {
	// GetByID retrieves a contact within an event
	GetByID(ctx context.Context, eventID, contactID uuid.UUID) (*contact.Contact, error)
	// ListByEvent returns all contacts for an event
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*contact.Contact, error)
	// Create persists a new contact
	Create(ctx context.Context, c *contact.Contact) error
	// Update persists contact changes
	Update(ctx context.Context, c *contact.Contact) error
	// Delete removes a contact
	Delete(ctx context.Context, eventID, contactID uuid.UUID) error
}
