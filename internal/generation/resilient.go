package generation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/listing-pipeline/internal/types"
)

// Outcome is the result of a generation that may have fallen back.
type Outcome struct {
	Content      string `json:"content"`
	UsedFallback bool   `json:"usedFallback"`
	// Cause is the primary generator's error when the fallback was used.
	Cause error `json:"-"`
}

// Resilient substitutes fallback content when the primary generator fails or
// returns nothing.
type Resilient struct {
	Primary  Generator
	Fallback Generator
	Logger   *zap.Logger
}

// WithFallback wraps primary with the deterministic template generator.
func WithFallback(primary Generator, logger *zap.Logger) *Resilient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resilient{Primary: primary, Fallback: FallbackGenerator{}, Logger: logger}
}

// Generate implements Generator.
func (r *Resilient) Generate(ctx context.Context, product *types.ProductData, platform types.Platform, section types.SectionKey) (string, error) {
	out, err := r.GenerateDetailed(ctx, product, platform, section)
	if err != nil {
		return "", err
	}
	return out.Content, nil
}

// GenerateDetailed is Generate that also reports whether the fallback ran.
// A cancelled context is returned as an error rather than masked.
func (r *Resilient) GenerateDetailed(ctx context.Context, product *types.ProductData, platform types.Platform, section types.SectionKey) (Outcome, error) {
	content, err := r.Primary.Generate(ctx, product, platform, section)
	if err == nil && strings.TrimSpace(content) != "" {
		return Outcome{Content: content}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Outcome{}, ctxErr
	}

	cause := err
	content, err = r.Fallback.Generate(ctx, product, platform, section)
	if err != nil {
		return Outcome{}, err
	}
	if cause == nil {
		// Both sides have nothing to show, e.g. a gallery without images.
		if strings.TrimSpace(content) == "" {
			return Outcome{}, nil
		}
		cause = &GenerationError{Platform: platform, Section: section, Message: "empty output", Cause: ErrEmptyOutput}
	}
	r.Logger.Warn("using fallback content",
		zap.String("platform", string(platform)),
		zap.String("section", string(section)),
		zap.Error(cause))
	return Outcome{Content: content, UsedFallback: true, Cause: cause}, nil
}
