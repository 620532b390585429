// Package seo builds per-platform search metadata for a listing.
package seo

import (
	"fmt"
	"strings"

	"github.com/jonathan/listing-pipeline/internal/compliance"
	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// MetaDescriptionMax is the length search engines display.
const MetaDescriptionMax = 160

// BrandRecommendation is given for every run.
const BrandRecommendation = "Include brand name in all platform titles"

// metaTemplates are the meta description sentences by language. Other
// languages use English.
var metaTemplates = map[string]string{
	"de": "Entdecken Sie den %s. Premium Qualität von LG. %s",
	"en": "Discover the %s. Premium quality from LG. %s",
	"es": "Descubra el %s. Calidad premium de LG. %s",
}

// BaseKeywords are added to every platform's keyword list.
var BaseKeywords = []string{"LG", "Premium", "Qualität", "Original", "Neu"}

// PlatformSEO is the optimized metadata for one platform.
type PlatformSEO struct {
	Title           string   `json:"title"`
	TitleMobile     string   `json:"titleMobile,omitempty"`
	Keywords        []string `json:"keywords"`
	MetaDescription string   `json:"metaDescription"`
	Format          string   `json:"format"`
	SEONotes        string   `json:"seoNotes"`
}

// Report is the SEO output for a set of platforms.
type Report struct {
	TitleOptimized  bool                           `json:"titleOptimized"`
	KeywordsAdded   int                            `json:"keywordsAdded"`
	Platforms       map[types.Platform]PlatformSEO `json:"platformSEO"`
	Recommendations []string                       `json:"recommendations"`
}

// Optimize builds metadata for one platform. Titles are cut to the platform
// limits in characters, never in bytes. language is a tag such as "de-DE";
// empty means the platform's own locale.
func Optimize(req platforms.Requirements, language, productTitle, modelNumber string) PlatformSEO {
	base := compliance.ListingTitle(productTitle, modelNumber)

	out := PlatformSEO{
		Title:           truncate(base, req.TitleMaxLength),
		Keywords:        Keywords(req),
		MetaDescription: truncate(metaDescription(req, language, productTitle), MetaDescriptionMax),
		Format:          req.TitleFormat,
		SEONotes:        req.SEONotes,
	}
	if req.TitleMobileMaxLength > 0 {
		out.TitleMobile = truncate(base, req.TitleMobileMaxLength)
	}
	return out
}

func metaDescription(req platforms.Requirements, language, productTitle string) string {
	lang, _, _ := strings.Cut(strings.ToLower(language), "-")
	if lang == "" {
		lang = req.Style.Locale
	}
	tmpl, ok := metaTemplates[lang]
	if !ok {
		tmpl = metaTemplates["en"]
	}
	return strings.TrimSpace(fmt.Sprintf(tmpl, productTitle, req.Philosophy))
}

// Keywords returns the platform keywords followed by the shared base and the
// platform's own SEO keywords.
func Keywords(req platforms.Requirements) []string {
	out := make([]string, 0, len(req.Keywords)+len(BaseKeywords)+len(req.SEOKeywords))
	out = append(out, req.Keywords...)
	out = append(out, BaseKeywords...)
	return append(out, req.SEOKeywords...)
}

// Build optimizes every platform in targets. Unknown platforms are an error.
func Build(targets []types.Platform, language, productTitle, modelNumber string) (*Report, error) {
	report := &Report{
		TitleOptimized:  true,
		Platforms:       make(map[types.Platform]PlatformSEO, len(targets)),
		Recommendations: []string{BrandRecommendation},
	}
	for _, p := range targets {
		req, err := platforms.Lookup(p)
		if err != nil {
			return nil, err
		}
		meta := Optimize(req, language, productTitle, modelNumber)
		report.Platforms[p] = meta
		report.KeywordsAdded += len(meta.Keywords)
		if req.SEORecommendation != "" {
			report.Recommendations = append(report.Recommendations, req.Style.Name+": "+req.SEORecommendation)
		}
	}
	return report, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}
