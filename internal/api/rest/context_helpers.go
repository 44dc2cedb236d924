package rest

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	contextKeyMarshalID   contextKey = "marshal_id"
	contextKeyEventID     contextKey = "event_id"
	contextKeyMarshalName contextKey = "marshal_name"
	contextKeyRequestID   contextKey = "request_id"
)

// MarshalIDFromContext extracts the authenticated marshal id.
func MarshalIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKeyMarshalID).(uuid.UUID)
	return id, ok
}

// EventIDFromContext extracts the event the token is scoped to.
func EventIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKeyEventID).(uuid.UUID)
	return id, ok
}

// MarshalNameFromContext extracts the display name carried in the token.
func MarshalNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(contextKeyMarshalName).(string)
	return name
}

// RequestIDFromContext extracts the request id set by the middleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}
