package generation

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/listing-pipeline/internal/llm"
	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// minGalleryImages is the number of product images a gallery needs.
const minGalleryImages = 2

// GeminiGenerator generates section HTML with a language model.
type GeminiGenerator struct {
	client llm.Client
	logger *zap.Logger
}

// NewGeminiGenerator creates a generator backed by client.
func NewGeminiGenerator(client llm.Client, logger *zap.Logger) *GeminiGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiGenerator{client: client, logger: logger}
}

// Generate implements Generator. A gallery for a product with fewer than two
// images is empty and costs no model call.
func (g *GeminiGenerator) Generate(ctx context.Context, product *types.ProductData, platform types.Platform, section types.SectionKey) (string, error) {
	style, err := platforms.StyleFor(platform)
	if err != nil {
		return "", err
	}
	if section == types.SectionGallery && len(ProductImages(product)) < minGalleryImages {
		return "", nil
	}

	prompt, err := BuildSectionPrompt(product, style, section)
	if err != nil {
		return "", &GenerationError{Platform: platform, Section: section, Message: "build prompt", Cause: err}
	}

	tier := llm.TierStandard
	if section == types.SectionFull || section == "" {
		tier = llm.TierAdvanced
	}

	g.logger.Debug("generating section",
		zap.String("platform", string(platform)),
		zap.String("section", string(section)),
		zap.String("model", g.client.GetModel(tier)))

	raw, err := g.client.GenerateContent(ctx, prompt, tier)
	if err != nil {
		return "", &GenerationError{Platform: platform, Section: section, Message: "model call failed", Cause: err}
	}

	html := llm.StripCodeFence(raw)
	if err := ValidateFragment(html); err != nil {
		return "", &GenerationError{Platform: platform, Section: section, Message: "unusable model output", Cause: err}
	}
	return html, nil
}
