// Package generation produces product-page HTML and marketplace listings.
package generation

import (
	"context"
	"fmt"

	"github.com/jonathan/listing-pipeline/internal/types"
)

// Generator produces the HTML for one section of a product page on one
// platform. types.SectionFull asks for a complete page.
type Generator interface {
	Generate(ctx context.Context, product *types.ProductData, platform types.Platform, section types.SectionKey) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, product *types.ProductData, platform types.Platform, section types.SectionKey) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, product *types.ProductData, platform types.Platform, section types.SectionKey) (string, error) {
	return f(ctx, product, platform, section)
}

// GenerationError reports a failed or unusable generation.
type GenerationError struct {
	Platform types.Platform
	Section  types.SectionKey
	Message  string
	Cause    error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generate %s/%s: %s: %v", e.Platform, e.Section, e.Message, e.Cause)
	}
	return fmt.Sprintf("generate %s/%s: %s", e.Platform, e.Section, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// UnknownSectionError is returned for a section key outside the known set.
type UnknownSectionError struct {
	Section string
}

func (e *UnknownSectionError) Error() string {
	return fmt.Sprintf("unknown section: %s", e.Section)
}
