package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// minSecretLength is the HS256 key size.
const minSecretLength = 32

// AuthConfig holds the settings used to verify access tokens issued by the
// external auth provider.
type AuthConfig struct {
	Secret string
	Issuer string        // optional; checked against the iss claim when set
	Leeway time.Duration // clock skew tolerated on exp/nbf
}

// NewAuthConfig reads JWT_SECRET (required), JWT_ISSUER and JWT_LEEWAY_SECONDS (default: 30).
func NewAuthConfig() (*AuthConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	leewayStr := os.Getenv("JWT_LEEWAY_SECONDS")
	if leewayStr == "" {
		leewayStr = "30"
	}
	leeway, err := strconv.Atoi(leewayStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_LEEWAY_SECONDS: %v", err)
	}

	cfg := &AuthConfig{
		Secret: secret,
		Issuer: os.Getenv("JWT_ISSUER"),
		Leeway: time.Duration(leeway) * time.Second,
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AuthConfig) normalize() error {
	if len(c.Secret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes, got %d", minSecretLength, len(c.Secret))
	}
	if c.Leeway < 0 {
		return fmt.Errorf("JWT_LEEWAY_SECONDS cannot be negative")
	}
	return nil
}
