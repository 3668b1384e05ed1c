package server

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/estate-desk/internal/config"
	"github.com/jonathan/estate-desk/internal/server/middleware"
)

// Claims are the access token claims issued by the auth provider.
type Claims struct {
	AgencyID uuid.UUID `json:"agency_id"`
	jwt.RegisteredClaims
}

// GetAgencyID implements middleware.AgencyIDGetter.
func (c *Claims) GetAgencyID() uuid.UUID {
	return c.AgencyID
}

// TokenVerifier verifies HS256 access tokens. It never issues tokens.
type TokenVerifier struct {
	config *config.AuthConfig
	parser *jwt.Parser
}

// NewTokenVerifier creates a verifier for the given configuration.
func NewTokenVerifier(cfg *config.AuthConfig) *TokenVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &TokenVerifier{config: cfg, parser: jwt.NewParser(opts...)}
}

// AsTokenValidator adapts the verifier to middleware.TokenValidator.
func (v *TokenVerifier) AsTokenValidator() middleware.TokenValidator {
	return &tokenVerifierValidator{verifier: v}
}

type tokenVerifierValidator struct {
	verifier *TokenVerifier
}

func (a *tokenVerifierValidator) ValidateToken(tokenString string) (middleware.AgencyIDGetter, error) {
	claims, err := a.verifier.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Verify parses a token and returns its claims.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(v.config.Secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if claims.AgencyID == uuid.Nil {
		return nil, fmt.Errorf("token has no agency_id claim")
	}
	return claims, nil
}
