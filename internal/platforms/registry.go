// Package platforms holds the marketplace requirements registry.
package platforms

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/jonathan/listing-pipeline/internal/types"
)

// DescriptionFormat is the markup a marketplace accepts in descriptions.
type DescriptionFormat string

// Description formats.
const (
	FormatPlain    DescriptionFormat = "plain"
	FormatHTML     DescriptionFormat = "html"
	FormatMarkdown DescriptionFormat = "markdown"
)

// ImageRequirements are a marketplace's image rules.
type ImageRequirements struct {
	MinResolution   string `json:"minResolution"`
	Background      string `json:"background"`
	MaxSize         string `json:"maxSize,omitempty"`
	MinQuantity     int    `json:"minQuantity"`
	MaxQuantity     int    `json:"maxQuantity"`
	AllowWatermarks bool   `json:"allowWatermarks"`
	AllowText       bool   `json:"allowText"`
}

// CategoryMapping names the taxonomy a marketplace classifies listings with.
type CategoryMapping struct {
	Required bool   `json:"required"`
	System   string `json:"system"`
}

// Style is the display identity used when rendering a marketplace's pages.
type Style struct {
	Name    string `json:"name"`
	Color   string `json:"color"`
	Locale  string `json:"locale"`
	Country string `json:"country"`
}

// Requirements is the full rule set for one marketplace.
type Requirements struct {
	Platform             types.Platform    `json:"platform"`
	TitleMaxLength       int               `json:"titleMaxLength"`
	TitleMobileMaxLength int               `json:"titleMobileMaxLength,omitempty"`
	TitleFormat          string            `json:"titleFormat"`
	DescriptionMaxLength int               `json:"descriptionMaxLength"`
	DescriptionFormat    DescriptionFormat `json:"descriptionFormat"`
	BulletPointsMin      int               `json:"bulletPointsMin,omitempty"`
	BulletPointsMax      int               `json:"bulletPointsMax"`
	BulletPointFormat    string            `json:"bulletPointFormat,omitempty"`
	Images               ImageRequirements `json:"imageRequirements"`
	Tone                 string            `json:"tone"`
	Keywords             []string          `json:"keywords"`
	Philosophy           string            `json:"philosophy"`
	Restrictions         []string          `json:"restrictions"`
	Compliance           []string          `json:"compliance"`
	GlobalCompliance     []types.RuleKey   `json:"globalCompliance"`
	CategoryMapping      CategoryMapping   `json:"categoryMapping"`
	SEONotes             string            `json:"seoNotes"`
	PriceHistory         bool              `json:"priceHistory,omitempty"`
	Style                Style             `json:"style"`

	// SEOKeywords are appended to the shared keyword base during SEO optimization.
	SEOKeywords []string `json:"seoKeywords,omitempty"`
	// SEORecommendation is an optional platform-specific SEO hint.
	SEORecommendation string `json:"seoRecommendation,omitempty"`
	// Advisory is an optional compliance hint surfaced in compliance reports.
	Advisory string `json:"advisory,omitempty"`
}

// UnknownPlatformError is returned when a platform is not in the registry.
type UnknownPlatformError struct {
	Platform string
}

func (e *UnknownPlatformError) Error() string {
	return fmt.Sprintf("unknown platform: %s", e.Platform)
}

// Lookup returns a copy of the requirements for p.
func Lookup(p types.Platform) (Requirements, error) {
	req, ok := registry[p]
	if !ok {
		return Requirements{}, &UnknownPlatformError{Platform: string(p)}
	}
	return req.clone(), nil
}

// MustLookup is Lookup for platforms already known to be valid.
func MustLookup(p types.Platform) Requirements {
	req, err := Lookup(p)
	if err != nil {
		panic(err)
	}
	return req
}

// All returns the requirements of every supported platform in registry order.
func All() []Requirements {
	out := make([]Requirements, 0, len(types.AllPlatforms))
	for _, p := range types.AllPlatforms {
		out = append(out, registry[p].clone())
	}
	return out
}

// Supported reports whether p is in the registry.
func Supported(p types.Platform) bool {
	_, ok := registry[p]
	return ok
}

// StyleFor returns the display style of p.
func StyleFor(p types.Platform) (Style, error) {
	req, ok := registry[p]
	if !ok {
		return Style{}, &UnknownPlatformError{Platform: string(p)}
	}
	return req.Style, nil
}

// TitleLimit returns the title limit, using the mobile limit when requested and defined.
func (r Requirements) TitleLimit(mobile bool) int {
	if mobile && r.TitleMobileMaxLength > 0 {
		return r.TitleMobileMaxLength
	}
	return r.TitleMaxLength
}

var leadingNumber = regexp.MustCompile(`\d+`)

// MinImagePixels is the first pixel dimension named in the minimum resolution,
// or zero when none is given.
func (r Requirements) MinImagePixels() int {
	m := leadingNumber.FindString(r.Images.MinResolution)
	if m == "" {
		return 0
	}
	n, _ := strconv.Atoi(m)
	return n
}

func (r Requirements) clone() Requirements {
	c := r
	c.Keywords = slices.Clone(r.Keywords)
	c.Restrictions = slices.Clone(r.Restrictions)
	c.Compliance = slices.Clone(r.Compliance)
	c.GlobalCompliance = slices.Clone(r.GlobalCompliance)
	c.SEOKeywords = slices.Clone(r.SEOKeywords)
	return c
}
