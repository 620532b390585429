package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/listing-pipeline/internal/compliance"
	"github.com/jonathan/listing-pipeline/internal/llm"
	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/prompts"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// MetaDescriptionMax is the length search engines display.
const MetaDescriptionMax = 160

// PlatformContent is the structured listing copy for one marketplace.
type PlatformContent struct {
	Platform        types.Platform `json:"platform"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	BulletPoints    []string       `json:"bulletPoints"`
	SEOKeywords     []string       `json:"seoKeywords"`
	AEOSnippet      string         `json:"aeoSnippet"`
	GEOSummary      string         `json:"geoSummary"`
	MetaDescription string         `json:"metaDescription"`
	UsedFallback    bool           `json:"usedFallback"`
}

// ContentOptions tune GeneratePlatformContent.
type ContentOptions struct {
	// Language is the listing language, e.g. "German".
	Language string
	Logger   *zap.Logger
}

// GeneratePlatformContent asks the model for structured listing copy. Model
// errors and unparsable responses fall back to copy assembled from the
// product fields.
func GeneratePlatformContent(ctx context.Context, client llm.Client, product *types.ProductData, platform types.Platform, opts ContentOptions) (*PlatformContent, error) {
	req, err := platforms.Lookup(platform)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	prompt, err := buildListingPrompt(product, req, opts.Language)
	if err != nil {
		return nil, err
	}

	raw, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("listing generation failed, using fallback",
			zap.String("platform", string(platform)), zap.Error(err))
		return FallbackPlatformContent(product, req), nil
	}

	content, err := ParsePlatformContent(raw, platform)
	if err != nil {
		logger.Warn("unparsable listing output, using fallback",
			zap.String("platform", string(platform)), zap.Error(err))
		return FallbackPlatformContent(product, req), nil
	}
	return content, nil
}

func buildListingPrompt(p *types.ProductData, req platforms.Requirements, language string) (string, error) {
	if language == "" {
		language = languageName(req.Style.Locale)
	}
	bulletRange := fmt.Sprintf("up to %d", req.BulletPointsMax)
	if req.BulletPointsMin > 0 {
		bulletRange = fmt.Sprintf("%d-%d", req.BulletPointsMin, req.BulletPointsMax)
	}
	specs, _ := ProductSpecs(p)

	input, err := prompts.Render(prompts.ListingFile, "platform-listing", map[string]string{
		"PlatformName":      req.Style.Name,
		"Country":           req.Style.Country,
		"Language":          language,
		"Title":             p.Title,
		"ModelNumber":       p.ModelNumber,
		"Category":          p.CategoryName,
		"Description":       p.Description,
		"Specifications":    specList(specs),
		"TitleFormat":       req.TitleFormat,
		"DescriptionFormat": string(req.DescriptionFormat),
		"BulletRange":       bulletRange,
		"BulletFormat":      req.BulletPointFormat,
		"Tone":              req.Tone,
		"Philosophy":        req.Philosophy,
		"Keywords":          strings.Join(req.Keywords, ", "),
		"Restrictions":      strings.Join(req.Restrictions, "; "),
		"SEONotes":          req.SEONotes,
	})
	if err != nil {
		return "", err
	}
	schema := llm.ListingContentSchema(req.TitleMaxLength, req.DescriptionMaxLength, req.BulletPointsMax)
	return llm.BuildStructuredPrompt(schema, input), nil
}

func languageName(locale string) string {
	switch locale {
	case "de":
		return "German"
	case "es":
		return "Spanish"
	case "th":
		return "Thai"
	default:
		return "English"
	}
}

// ParsePlatformContent decodes the first JSON object in raw. Missing fields
// are left empty.
func ParsePlatformContent(raw string, platform types.Platform) (*PlatformContent, error) {
	obj, ok := llm.ExtractJSONObject(raw)
	if !ok {
		return nil, &GenerationError{Platform: platform, Section: types.SectionFull, Message: "no JSON object in listing output"}
	}
	var content PlatformContent
	if err := json.Unmarshal([]byte(obj), &content); err != nil {
		return nil, &GenerationError{Platform: platform, Section: types.SectionFull, Message: "decode listing output", Cause: err}
	}
	content.Platform = platform
	content.UsedFallback = false
	if content.BulletPoints == nil {
		content.BulletPoints = []string{}
	}
	if content.SEOKeywords == nil {
		content.SEOKeywords = []string{}
	}
	return &content, nil
}

// FallbackPlatformContent assembles listing copy from product fields alone.
func FallbackPlatformContent(p *types.ProductData, req platforms.Requirements) *PlatformContent {
	features := p.RawData.Features
	category := strings.ToLower(orDefault(p.CategoryName, "product"))

	keywords := make([]string, 0, 7)
	for _, k := range append([]string{p.CategoryName, p.ModelNumber, "LG", string(req.Platform)}, limit(features, 3)...) {
		if k != "" {
			keywords = append(keywords, k)
		}
	}

	first, second := nth(features, 0), nth(features, 1)
	aeo := strings.TrimSpace(fmt.Sprintf("The %s (%s) is LG's %s. %s %s", p.Title, p.ModelNumber, category, first, second))
	geo := strings.TrimSpace(fmt.Sprintf("%s (Model: %s) is a %s from LG Electronics. %s Key features include %s.",
		p.Title, p.ModelNumber, category, p.Description, strings.Join(limit(features, 3), ", ")))

	bullets := append([]string{}, limit(features, req.BulletPointsMax)...)

	return &PlatformContent{
		Platform:        req.Platform,
		Title:           compliance.ListingTitle(p.Title, p.ModelNumber),
		Description:     orDefault(p.Description, p.Title),
		BulletPoints:    bullets,
		SEOKeywords:     keywords,
		AEOSnippet:      aeo,
		GEOSummary:      geo,
		MetaDescription: Truncate(strings.TrimSpace(fmt.Sprintf("Buy LG %s (%s). %s", p.Title, p.ModelNumber, orDefault(first, p.CategoryName))), MetaDescriptionMax),
		UsedFallback:    true,
	}
}

func nth(items []string, i int) string {
	if i < len(items) {
		return items[i]
	}
	return ""
}
