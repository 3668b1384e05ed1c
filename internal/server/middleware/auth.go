// Package middleware provides HTTP middleware for authentication.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// agencyIDKey is the context key for the caller's agency.
const agencyIDKey ContextKey = "agencyID"

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (AgencyIDGetter, error)
}

// AgencyIDGetter extracts the agency from validated token claims.
type AgencyIDGetter interface {
	GetAgencyID() uuid.UUID
}

// AuthMiddleware rejects requests without a valid bearer token and puts the
// token's agency ID in the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// "Bearer" is matched case-insensitively
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			agencyID := claims.GetAgencyID()
			if agencyID == uuid.Nil {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			ctx := WithAgencyID(r.Context(), agencyID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithAgencyID returns a context carrying the agency ID.
func WithAgencyID(ctx context.Context, agencyID uuid.UUID) context.Context {
	return context.WithValue(ctx, agencyIDKey, agencyID)
}

// GetAgencyID extracts the authenticated agency ID from the request context.
func GetAgencyID(r *http.Request) (uuid.UUID, error) {
	agencyID, ok := r.Context().Value(agencyIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("agency ID not found in request context")
	}
	return agencyID, nil
}
