package sharing

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/marshalhq/event-coordination-backend/internal/domain/contact"
	"github.com/marshalhq/event-coordination-backend/internal/domain/errors"
	"github.com/marshalhq/event-coordination-backend/internal/domain/note"
	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
	"github.com/marshalhq/event-coordination-backend/internal/service/scoping"
)

// Service serves scope-filtered notes and contacts. Reads are always
// filtered through the marshal's context; writes are organiser actions and
// bypass visibility.
type Service struct {
	notes    NoteRepository
	contacts ContactRepository
	contexts *scoping.ContextBuilder
	logger   *slog.Logger
}

func NewService(notes NoteRepository, contacts ContactRepository, contexts *scoping.ContextBuilder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		notes:    notes,
		contacts: contacts,
		contexts: contexts,
		logger:   logger,
	}
}

// NotesFor lists the notes visible to one marshal.
func (s *Service) NotesFor(ctx context.Context, eventID, marshalID uuid.UUID) ([]*note.Note, error) {
	mctx, lookup, err := s.resolve(ctx, eventID, marshalID)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "listing notes")
	}
	return FilterVisible(notes, mctx, lookup), nil
}

// ContactsFor lists the contacts visible to one marshal.
func (s *Service) ContactsFor(ctx context.Context, eventID, marshalID uuid.UUID) ([]*contact.Contact, error) {
	mctx, lookup, err := s.resolve(ctx, eventID, marshalID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contacts.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "listing contacts")
	}
	return FilterVisible(contacts, mctx, lookup), nil
}

// GetNote returns one note if the marshal may see it. Invisible and missing
// notes are indistinguishable to the caller.
func (s *Service) GetNote(ctx context.Context, eventID, marshalID, noteID uuid.UUID) (*note.Note, error) {
	mctx, lookup, err := s.resolve(ctx, eventID, marshalID)
	if err != nil {
		return nil, err
	}
	n, err := s.notes.GetByID(ctx, eventID, noteID)
	if err != nil {
		return nil, errors.NewNotFoundError("note").WithCause(err)
	}
	if !Visible(n, mctx, lookup) {
		return nil, errors.NewNotFoundError("note")
	}
	return n, nil
}

// CreateNote persists a new note.
func (s *Service) CreateNote(ctx context.Context, eventID uuid.UUID, title, body string, scopes []scope.Configuration) (*note.Note, error) {
	n, err := note.NewNote(eventID, title, body, scopes)
	if err != nil {
		return nil, errors.NewValidationError("INVALID_NOTE", err.Error())
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, errors.Wrap(err, "creating note")
	}
	return n, nil
}

// CreateContact persists a new contact.
func (s *Service) CreateContact(ctx context.Context, eventID uuid.UUID, name, phone, role string, scopes []scope.Configuration) (*contact.Contact, error) {
	c, err := contact.NewContact(eventID, name, phone, role, scopes)
	if err != nil {
		return nil, errors.NewValidationError("INVALID_CONTACT", err.Error())
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "creating contact")
	}
	return c, nil
}

func (s *Service) resolve(ctx context.Context, eventID, marshalID uuid.UUID) (*scope.MarshalContext, scope.CheckpointAreas, error) {
	mctx, err := s.contexts.Build(ctx, eventID, marshalID)
	if err != nil {
		return nil, nil, err
	}
	lookup, err := s.contexts.CheckpointLookup(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return mctx, lookup, nil
}
