package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marshalhq/event-coordination-backend/internal/domain/errors"
	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
	checklistsvc "github.com/marshalhq/event-coordination-backend/internal/service/checklist"
	"github.com/marshalhq/event-coordination-backend/internal/service/sharing"
)

// Handler carries the service dependencies for all REST endpoints.
type Handler struct {
	checklist *checklistsvc.Service
	sharing   *sharing.Service
	hub       *WebSocketHub
	logger    *slog.Logger
	validate  *validator.Validate
}

// NewHandler creates the REST handler.
func NewHandler(checklist *checklistsvc.Service, sharingSvc *sharing.Service, hub *WebSocketHub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		checklist: checklist,
		sharing:   sharingSvc,
		hub:       hub,
		logger:    logger,
		validate:  validator.New(),
	}
}

var checklistEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "checklist_events_total",
		Help: "Completion and check-in state changes by action.",
	},
	[]string{"action"},
)

type createItemRequest struct {
	Title          string                `json:"title" validate:"required,max=200"`
	LinksToCheckIn bool                  `json:"links_to_check_in"`
	Scopes         []scope.Configuration `json:"scopes" validate:"required,min=1"`
}

type completeRequest struct {
	CheckpointID string `json:"checkpoint_id,omitempty"`
}

type checkInRequest struct {
	ItemID       uuid.UUID `json:"item_id" validate:"required"`
	CheckpointID string    `json:"checkpoint_id,omitempty"`
}

// GetChecklist returns the per-marshal checklist.
func (h *Handler) GetChecklist(w http.ResponseWriter, r *http.Request) {
	eventID, marshalID, ok := h.identity(w, r)
	if !ok {
		return
	}
	statuses, err := h.checklist.ChecklistFor(r.Context(), eventID, marshalID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": statuses})
}

// CreateItem creates a checklist item.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	eventID, _, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req createItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	item, err := h.checklist.CreateItem(r.Context(), eventID, req.Title, req.LinksToCheckIn, req.Scopes)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// CompleteItem marks an item's context complete for the caller.
func (h *Handler) CompleteItem(w http.ResponseWriter, r *http.Request) {
	eventID, marshalID, ok := h.identity(w, r)
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r, "itemID")
	if !ok {
		return
	}
	var req completeRequest
	if r.ContentLength > 0 && !h.decode(w, r, &req) {
		return
	}

	actor := checklistsvc.Actor{ID: marshalID, Name: MarshalNameFromContext(r.Context())}
	status, err := h.checklist.Complete(r.Context(), eventID, marshalID, itemID, req.CheckpointID, actor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.broadcastStatus(eventID, marshalID, status.LinksToCheckIn, "completed", itemID)
	writeJSON(w, http.StatusOK, status)
}

// UncompleteItem reverts a completion for the caller.
func (h *Handler) UncompleteItem(w http.ResponseWriter, r *http.Request) {
	eventID, marshalID, ok := h.identity(w, r)
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r, "itemID")
	if !ok {
		return
	}
	var req completeRequest
	if r.ContentLength > 0 && !h.decode(w, r, &req) {
		return
	}

	if err := h.checklist.Uncomplete(r.Context(), eventID, marshalID, itemID, req.CheckpointID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.broadcastStatus(eventID, marshalID, false, "uncompleted", itemID)
	writeJSON(w, http.StatusNoContent, nil)
}

// GetItemContexts lists the completion contexts the caller can reach for one
// item.
func (h *Handler) GetItemContexts(w http.ResponseWriter, r *http.Request) {
	eventID, marshalID, ok := h.identity(w, r)
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r, "itemID")
	if !ok {
		return
	}
	contexts, err := h.checklist.RelevantContexts(r.Context(), eventID, marshalID, itemID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"contexts": contexts})
}

// GetDashboard returns the per-marshal dashboard grid.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	eventID, _, ok := h.identity(w, r)
	if !ok {
		return
	}
	rows, err := h.checklist.Dashboard(r.Context(), eventID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

// CheckIn performs the check-in action for a linked item.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	eventID, marshalID, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req checkInRequest
	if !h.decode(w, r, &req) {
		return
	}

	actor := checklistsvc.Actor{ID: marshalID, Name: MarshalNameFromContext(r.Context())}
	status, err := h.checklist.Complete(r.Context(), eventID, marshalID, req.ItemID, req.CheckpointID, actor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.broadcastStatus(eventID, marshalID, true, "checked_in", req.ItemID)
	writeJSON(w, http.StatusOK, status)
}

// CheckOut performs the check-out action for a linked item.
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	eventID, marshalID, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req checkInRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.checklist.Uncomplete(r.Context(), eventID, marshalID, req.ItemID, req.CheckpointID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.broadcastStatus(eventID, marshalID, true, "checked_out", req.ItemID)
	writeJSON(w, http.StatusNoContent, nil)
}

// identity extracts the token's event and marshal binding.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (eventID, marshalID uuid.UUID, ok bool) {
	eventID, okE := EventIDFromContext(r.Context())
	marshalID, okM := MarshalIDFromContext(r.Context())
	if !okE || !okM {
		writeError(w, r, h.logger, errors.NewUnauthorizedError("missing authentication context"))
		return uuid.Nil, uuid.Nil, false
	}
	return eventID, marshalID, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, r, h.logger, errors.NewValidationError("INVALID_ID", "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, h.logger, errors.NewValidationError("INVALID_BODY", "malformed request body"))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, r, h.logger, errors.NewValidationError("VALIDATION_FAILED", err.Error()))
		return false
	}
	return true
}

func (h *Handler) broadcastStatus(eventID, marshalID uuid.UUID, linked bool, action string, itemID uuid.UUID) {
	checklistEventsTotal.WithLabelValues(action).Inc()
	if h.hub == nil {
		return
	}
	h.hub.Broadcast(eventID, Event{
		Type:      action,
		ItemID:    itemID,
		MarshalID: marshalID,
		Linked:    linked,
	})
}
