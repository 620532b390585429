package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	l := NewLimiter(cfg)
	t.Cleanup(l.Stop)
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l.now = clock.Now
	return l, clock
}

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: 10 * time.Second, // 1 token per second
		Whitelist:     map[string]bool{},
		Blacklist:     map[string]bool{},
	}
}

func TestLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(t, testConfig())

	// Should allow 10 requests immediately (burst)
	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("1.2.3.4", "/pipelines/x", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	// 11th request should be denied (no tokens left)
	allowed, info := l.Allow("1.2.3.4", "/pipelines/x", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, info.RetryAfter, time.Second)

	// Another client has its own bucket
	allowed, _ = l.Allow("5.6.7.8", "/pipelines/x", "GET")
	assert.True(t, allowed)
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(t, testConfig())

	for i := 0; i < 10; i++ {
		l.Allow("client", "/platforms", "GET")
	}
	allowed, _ := l.Allow("client", "/platforms", "GET")
	require.False(t, allowed)

	clock.Advance(time.Second)

	allowed, _ = l.Allow("client", "/platforms", "GET")
	assert.True(t, allowed, "one token refilled")
	allowed, _ = l.Allow("client", "/platforms", "GET")
	assert.False(t, allowed)
}

func TestLimiter_ResetTime(t *testing.T) {
	l, clock := newTestLimiter(t, testConfig())

	for i := 0; i < 5; i++ {
		l.Allow("client", "/platforms", "GET")
	}
	_, info := l.Allow("client", "/platforms", "GET")

	// 6 tokens used at 1 token/sec
	assert.Equal(t, clock.Now().Add(6*time.Second), info.ResetTime)
}

func TestLimiter_Whitelist(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 1
	cfg.Whitelist["10.0.0.1"] = true
	l, _ := newTestLimiter(t, cfg)

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/pipelines", "POST")
		assert.True(t, allowed)
	}
	assert.Zero(t, l.Len())
}

func TestLimiter_Blacklist(t *testing.T) {
	cfg := testConfig()
	cfg.Blacklist["10.0.0.2"] = true
	l, _ := newTestLimiter(t, cfg)

	allowed, _ := l.Allow("10.0.0.2", "/health", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: false})

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("client", "/pipelines", "POST")
		assert.True(t, allowed)
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 1
	l, _ := newTestLimiter(t, cfg)

	for i := 0; i < 20; i++ {
		allowed, _ := l.Allow("client", "/health", "GET")
		assert.True(t, allowed)
	}
}

func TestLimiter_RouteRules(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = DefaultRules()
	l, _ := newTestLimiter(t, cfg)

	// POST /pipelines has burst 5
	for i := 0; i < 5; i++ {
		allowed, info := l.Allow("client", "/pipelines", "POST")
		require.True(t, allowed)
		assert.Equal(t, 30, info.Limit)
	}
	allowed, _ := l.Allow("client", "/pipelines", "POST")
	assert.False(t, allowed)

	// Run control routes share one bucket per pattern
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("/pipelines/run-%d/pause", i)
		allowed, _ := l.Allow("client", id, "POST")
		require.True(t, allowed)
	}
	allowed, _ = l.Allow("client", "/pipelines/another/resume", "POST")
	assert.False(t, allowed)

	// Reads fall back to the default
	allowed, info := l.Allow("client", "/pipelines", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 10, info.Limit)
}

func TestLimiter_Concurrent(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 50
	l, _ := newTestLimiter(t, cfg)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("client", "/platforms", "GET"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	cfg := testConfig()
	cfg.IdleTTL = time.Minute
	l, clock := newTestLimiter(t, cfg)

	l.Allow("old", "/platforms", "GET")
	clock.Advance(2 * time.Minute)
	l.Allow("new", "/platforms", "GET")
	require.Equal(t, 2, l.Len())

	l.cleanupBuckets()

	assert.Equal(t, 1, l.Len())
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	allowed, info := l.Allow("client", "/platforms", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)

	l.Stop()
}

func TestMatch(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name    string
		method  string
		path    string
		pattern string
	}{
		{name: "trigger", method: "POST", path: "/pipelines", pattern: "/pipelines"},
		{name: "review", method: "POST", path: "/pipelines/abc/review", pattern: "/pipelines/{id}/{action...}"},
		{name: "skip", method: "POST", path: "/pipelines/abc/steps/human-review/skip", pattern: "/pipelines/{id}/{action...}"},
		{name: "section generate", method: "POST", path: "/products/p1/sections/otto/hero/generate", pattern: "/products/{id}/sections/{platform}/{section}/generate"},
		{name: "sweep", method: "POST", path: "/products/p1/sections/otto/sweep", pattern: "/products/{id}/sections/{platform}/sweep"},
		{name: "toggle uses default", method: "POST", path: "/products/p1/sections/otto/hero/toggle"},
		{name: "read uses default", method: "GET", path: "/pipelines/abc"},
		{name: "missing id", method: "POST", path: "/pipelines//pause"},
		{name: "platforms", method: "GET", path: "/platforms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Match(tt.method, tt.path, rules)
			if tt.pattern == "" {
				assert.Nil(t, r)
				return
			}
			require.NotNil(t, r)
			assert.Equal(t, tt.pattern, r.Pattern)
		})
	}

	health := Match("GET", "/health", nil)
	require.NotNil(t, health)
	assert.Zero(t, health.Limit)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.True(t, cfg.Whitelist["10.0.0.2"])
	assert.NotEmpty(t, cfg.Rules)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
