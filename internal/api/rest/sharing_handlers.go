package rest

import (
	"net/http"

	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
)

type createNoteRequest struct {
	Title  string                `json:"title" validate:"required,max=200"`
	Body   string                `json:"body"`
	Scopes []scope.Configuration `json:"scopes" validate:"required,min=1"`
}

type createContactRequest struct {
	Name   string                `json:"name" validate:"required,max=200"`
	Phone  string                `json:"phone" validate:"required,max=40"`
	Role   string                `json:"role"`
	Scopes []scope.Configuration `json:"scopes" validate:"required,min=1"`
}

// GetNotes lists the notes visible to the caller.
func (h *Handler) GetNotes(w http.ResponseWriter, r *http.Request) {
	eventID, marshalID, ok := h.identity(w, r)
	if !ok {
		return
	}
	notes, err := h.sharing.NotesFor(r.Context(), eventID, marshalID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notes": notes})
}

// GetNote returns one visible note.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	eventID, marshalID, ok := h.identity(w, r)
	if !ok {
		return
	}
	noteID, ok := h.pathID(w, r, "noteID")
	if !ok {
		return
	}
	n, err := h.sharing.GetNote(r.Context(), eventID, marshalID, noteID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// CreateNote creates a note.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	eventID, _, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req createNoteRequest
	if !h.decode(w, r, &req) {
		return
	}
	n, err := h.sharing.CreateNote(r.Context(), eventID, req.Title, req.Body, req.Scopes)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// GetContacts lists the contacts visible to the caller.
func (h *Handler) GetContacts(w http.ResponseWriter, r *http.Request) {
	eventID, marshalID, ok := h.identity(w, r)
	if !ok {
		return
	}
	contacts, err := h.sharing.ContactsFor(r.Context(), eventID, marshalID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"contacts": contacts})
}

// CreateContact creates a contact.
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	eventID, _, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req createContactRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.sharing.CreateContact(r.Context(), eventID, req.Name, req.Phone, req.Role, req.Scopes)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
