package rest

import (
	stderrors "errors"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/marshalhq/event-coordination-backend/internal/domain/errors"
)

// errorResponse is the wire shape of every error the API returns.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// writeError maps domain errors onto HTTP responses. AppError carries its
// own status code; anything else is an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		logger.ErrorContext(r.Context(), "unhandled error",
			"error", err,
			"path", r.URL.Path,
		)
		appErr = errors.NewInternalError("An internal error occurred")
	}

	if appErr.StatusCode >= 500 {
		logger.ErrorContext(r.Context(), "internal error",
			"error", err,
			"code", appErr.Code,
			"path", r.URL.Path,
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	json.NewEncoder(w).Encode(errorResponse{
		Error: errorBody{
			Code:      appErr.Code,
			Message:   appErr.Message,
			Details:   appErr.Details,
			RequestID: RequestIDFromContext(r.Context()),
		},
	})
}

// writeJSON writes a success response.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}
