package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the rate limit for one route.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method
	Limit  int           // requests per window
	Window time.Duration // refill window
	Burst  int           // bucket capacity; Limit when 0
}

// LoadConfig reads the limiter configuration from RATE_LIMIT_* variables.
//
// Scans load every contact of an agency and are the most expensive call, so
// they get their own hourly budget (RATE_LIMIT_SCAN_LIMIT). Stateless checks
// are CPU bound on the request body and are limited per minute
// (RATE_LIMIT_CHECK_LIMIT).
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: EndpointConfigs(
			getEnvInt("RATE_LIMIT_SCAN_LIMIT", 30),
			getEnvInt("RATE_LIMIT_CHECK_LIMIT", 60),
		),
	}
}

// DefaultEndpointConfigs returns the endpoint tiers with default budgets.
func DefaultEndpointConfigs() []EndpointConfig {
	return EndpointConfigs(30, 60)
}

// EndpointConfigs returns the endpoint tiers for the given scan (per hour)
// and check (per minute) budgets.
func EndpointConfigs(scansPerHour, checksPerMinute int) []EndpointConfig {
	scanBurst := max(1, scansPerHour/10)
	checkBurst := max(1, checksPerMinute/6)

	return []EndpointConfig{
		// Tier 1: detection runs
		{Path: "/scans", Method: "POST", Limit: scansPerHour, Window: time.Hour, Burst: scanBurst},
		{Path: "/duplicates/check", Method: "POST", Limit: checksPerMinute, Window: time.Minute, Burst: checkBurst},

		// Tier 2: writes
		{Path: "/contacts", Method: "POST", Limit: 300, Window: time.Minute, Burst: 50},
		{Path: "/contacts/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/scans/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/dismissals", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/dismissals/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},

		// Reads fall back to the default limit; /health and /metrics are never limited
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue >= 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
