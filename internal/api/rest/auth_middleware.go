package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret   []byte
	TokenExpiry time.Duration
	Issuer      string
}

// Claims are the JWT claims carried by marshal tokens. Tokens are minted
// per event; a marshal at two events holds two tokens.
type Claims struct {
	jwt.RegisteredClaims
	MarshalID   uuid.UUID `json:"marshal_id"`
	EventID     uuid.UUID `json:"event_id"`
	MarshalName string    `json:"marshal_name,omitempty"`
}

// AuthMiddleware provides JWT-based authentication
type AuthMiddleware struct {
	config *AuthConfig
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(config *AuthConfig) *AuthMiddleware {
	return &AuthMiddleware{config: config}
}

// Middleware returns the authentication middleware function
func (a *AuthMiddleware) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := a.extractToken(r)
			if err != nil {
				a.writeUnauthorized(w, "Authorization required")
				return
			}

			claims, err := a.validateToken(token)
			if err != nil {
				a.writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyMarshalID, claims.MarshalID)
			ctx = context.WithValue(ctx, contextKeyEventID, claims.EventID)
			ctx = context.WithValue(ctx, contextKeyMarshalName, claims.MarshalName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GenerateToken mints a token binding a marshal to one event.
func (a *AuthMiddleware) GenerateToken(marshalID, eventID uuid.UUID, marshalName string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.config.Issuer,
			Subject:   marshalID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.TokenExpiry)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		MarshalID:   marshalID,
		EventID:     eventID,
		MarshalName: marshalName,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.config.JWTSecret)
}

func (a *AuthMiddleware) extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("no authorization token provided")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

func (a *AuthMiddleware) validateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.config.JWTSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.MarshalID == uuid.Nil || claims.EventID == uuid.Nil {
		return nil, errors.New("token missing marshal or event binding")
	}
	return claims, nil
}

func (a *AuthMiddleware) writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
