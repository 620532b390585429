package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// GuardConfig configures rate limiting and circuit breaking around a Client.
type GuardConfig struct {
	// RequestsPerSecond caps provider calls. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int
	// MaxFailures consecutive failures open the breaker.
	MaxFailures int
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of trial calls allowed while half-open.
	HalfOpenRequests int
}

// DefaultGuardConfig suits a shared API key used by concurrent pipeline runs.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		RequestsPerSecond: 5,
		Burst:             5,
		MaxFailures:       5,
		OpenTimeout:       30 * time.Second,
		HalfOpenRequests:  1,
	}
}

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("llm circuit breaker is open")

// GuardedClient rate-limits calls to an inner Client and stops calling it
// after repeated failures.
type GuardedClient struct {
	inner   Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewGuardedClient wraps inner. A nil logger disables breaker state logging.
func NewGuardedClient(inner Client, cfg GuardConfig, logger *zap.Logger) *GuardedClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = DefaultGuardConfig().MaxFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = DefaultGuardConfig().OpenTimeout
	}
	if cfg.HalfOpenRequests <= 0 {
		cfg.HalfOpenRequests = 1
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	settings := gobreaker.Settings{
		Name:        "llm",
		MaxRequests: uint32(cfg.HalfOpenRequests),
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.MaxFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about provider health
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &GuardedClient{
		inner:   inner,
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// GenerateContent implements Client.
func (g *GuardedClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return g.call(ctx, func() (string, error) {
		return g.inner.GenerateContent(ctx, prompt, tier)
	})
}

// GenerateJSON implements Client.
func (g *GuardedClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return g.call(ctx, func() (string, error) {
		return g.inner.GenerateJSON(ctx, prompt, tier)
	})
}

// GetModel implements Client.
func (g *GuardedClient) GetModel(tier ModelTier) string {
	return g.inner.GetModel(tier)
}

// Close implements Client.
func (g *GuardedClient) Close() error {
	return g.inner.Close()
}

// State reports the breaker state (closed, half-open, open).
func (g *GuardedClient) State() string {
	return g.breaker.State().String()
}

func (g *GuardedClient) call(ctx context.Context, fn func() (string, error)) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}
