package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one route. Pattern follows the server's route syntax, see Match.
type Rule struct {
	Method  string
	Pattern string
	Limit   int // requests per Window; 0 means unlimited
	Window  time.Duration
	Burst   int // defaults to Limit
}

// LoadConfig reads RATE_LIMIT_* environment variables on top of the defaults.
// Malformed values are ignored.
func LoadConfig() *Config {
	if !env("ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    env("DEFAULT_LIMIT", 1000, strconv.Atoi),
		DefaultWindow:   env("DEFAULT_WINDOW", time.Minute, time.ParseDuration),
		CleanupInterval: env("CLEANUP_INTERVAL", 5*time.Minute, time.ParseDuration),
		IdleTTL:         env("IDLE_TTL", time.Hour, time.ParseDuration),
		Whitelist:       clientSet(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       clientSet(os.Getenv("RATE_LIMIT_BLACKLIST")),
		Rules:           DefaultRules(),
	}
}

// DefaultRules are the per-route limits of the listing API. Routes that may
// call the model are limited per hour, run control per minute. Reads use the
// default limit.
func DefaultRules() []Rule {
	return []Rule{
		{Method: "POST", Pattern: "/pipelines", Limit: 30, Window: time.Hour, Burst: 5},
		{Method: "POST", Pattern: "/generate-content", Limit: 60, Window: time.Hour, Burst: 10},
		{Method: "POST", Pattern: "/products/{id}/sections/{platform}/{section}/generate", Limit: 120, Window: time.Hour, Burst: 20},
		// A sweep regenerates every enabled section.
		{Method: "POST", Pattern: "/products/{id}/sections/{platform}/sweep", Limit: 20, Window: time.Hour, Burst: 4},

		{Method: "POST", Pattern: "/pipelines/{id}/{action...}", Limit: 100, Window: time.Minute, Burst: 10},
		{Method: "POST", Pattern: "/compliance/check", Limit: 100, Window: time.Minute, Burst: 20},
	}
}

func env[T any](name string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv("RATE_LIMIT_" + name)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// clientSet parses a comma-separated list of client IPs.
func clientSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
