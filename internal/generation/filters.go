package generation

import (
	"strings"

	"github.com/jonathan/listing-pipeline/internal/types"
)

var imageExcludePatterns = []string{
	"/banners/", "/banner/", "/promotion/", "/promo/",
	"/logo/", "logo-lg", "logo.svg", "logo.png",
	"/wcms/", "/gnb/", "/lifesgood/",
	"teads.tv", "bazaarvoice", "tracking",
	"width=0", "height=0",
	"membership", "financing", "0-financing",
	"trade-up", "winter-sale", "happy-new-year",
	"gaming-chair", "xboom-landing",
}

var imageIncludePatterns = []string{
	"/gallery/", "/thumbnail/", "/product/",
	"basic-01", "basic-02", "gallery-",
	"-front", "-back", "-side", "-angle",
}

// FilterProductImages keeps actual product shots and drops banners, logos,
// tracking pixels and promotional artwork.
func FilterProductImages(images []types.ProductImage) []types.ProductImage {
	out := make([]types.ProductImage, 0, len(images))
	for _, img := range images {
		if isProductImage(img) {
			out = append(out, img)
		}
	}
	return out
}

func isProductImage(img types.ProductImage) bool {
	if img.Src == "" {
		return false
	}
	src := strings.ToLower(img.Src)
	alt := strings.ToLower(img.Alt)

	for _, p := range imageExcludePatterns {
		if strings.Contains(src, p) || strings.Contains(alt, p) {
			return false
		}
	}
	for _, p := range imageIncludePatterns {
		if strings.Contains(src, p) {
			return true
		}
	}

	hasProductAlt := len(alt) > 10 && !strings.Contains(alt, "banner") && !strings.Contains(alt, "promotion")
	hasGoodDimensions := img.Width >= 200 && img.Height >= 200
	return hasProductAlt && hasGoodDimensions
}

// ProductImages returns the filtered main, gallery and lifestyle images.
func ProductImages(p *types.ProductData) []types.ProductImage {
	return FilterProductImages(p.Images())
}

// Bare "rate" is not listed: it would also match "Refresh Rate".
var financingPatterns = []string{
	"monatliche", "ratenzahlung", "zinssatz", "zinsen", "gesamtbetrag",
	"monthly", "financing", "interest", "total amount",
	"mensual", "financiación", "interés",
	"€", "$", "฿",
}

// FilterTechnicalSpecs drops specification rows that carry financing or price
// information rather than technical data.
func FilterTechnicalSpecs(specs []types.SpecPair) []types.SpecPair {
	out := make([]types.SpecPair, 0, len(specs))
	for _, s := range specs {
		key := strings.ToLower(s.Key)
		value := strings.ToLower(s.Value)
		financing := false
		for _, p := range financingPatterns {
			if strings.Contains(key, p) || strings.Contains(value, p) {
				financing = true
				break
			}
		}
		if !financing {
			out = append(out, s)
		}
	}
	return out
}

// DefaultSpecs returns a generic specification sheet for a product category.
func DefaultSpecs(category, modelNumber string) []types.SpecPair {
	c := strings.ToLower(category)

	switch {
	case strings.Contains(c, "oled") || strings.Contains(c, "tv") || strings.Contains(c, "qned"):
		display := "LED/LCD"
		if strings.Contains(c, "oled") {
			display = "OLED"
		}
		return []types.SpecPair{
			{Key: "Display Type", Value: display},
			{Key: "Resolution", Value: "4K UHD (3840 x 2160)"},
			{Key: "HDR", Value: "HDR10, HLG, Dolby Vision"},
			{Key: "Smart TV", Value: "webOS"},
			{Key: "Processor", Value: "AI Processor"},
			{Key: "Refresh Rate", Value: "120Hz"},
			{Key: "HDMI", Value: "4x HDMI 2.1"},
			{Key: "Audio", Value: "Dolby Atmos"},
			{Key: "Model", Value: modelNumber},
		}
	case strings.Contains(c, "soundbar") || strings.Contains(c, "audio"):
		return []types.SpecPair{
			{Key: "Audio Channels", Value: "5.1 / 7.1"},
			{Key: "Total Power", Value: "400W+"},
			{Key: "Subwoofer", Value: "Wireless"},
			{Key: "Bluetooth", Value: "5.0"},
			{Key: "HDMI", Value: "HDMI eARC"},
			{Key: "Dolby Atmos", Value: "Yes"},
			{Key: "DTS:X", Value: "Yes"},
			{Key: "Model", Value: modelNumber},
		}
	default:
		return []types.SpecPair{
			{Key: "Brand", Value: "LG Electronics"},
			{Key: "Model", Value: modelNumber},
			{Key: "Warranty", Value: "2 Years"},
		}
	}
}

// maxSpecRows caps the rows shown in a specification table.
const maxSpecRows = 15

// ProductSpecs returns the product's technical specifications, or category
// defaults when none survive filtering.
func ProductSpecs(p *types.ProductData) (specs []types.SpecPair, defaulted bool) {
	specs = FilterTechnicalSpecs(p.RawData.SpecList())
	if len(specs) == 0 {
		return DefaultSpecs(p.CategoryName, p.ModelNumber), true
	}
	if len(specs) > maxSpecRows {
		specs = specs[:maxSpecRows]
	}
	return specs, false
}
