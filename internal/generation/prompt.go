package generation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/prompts"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// PageTitleMax bounds product titles rendered into page templates.
const PageTitleMax = 80

// Truncate shortens s to at most n characters.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// BuildSectionPrompt renders the model prompt for one section of a product page.
func BuildSectionPrompt(p *types.ProductData, style platforms.Style, section types.SectionKey) (string, error) {
	key := string(section)
	if section == "" {
		key = string(types.SectionFull)
	}

	data := promptData(p, style, section)
	base, err := prompts.Render(prompts.SectionsFile, "base", data)
	if err != nil {
		return "", err
	}
	body, err := prompts.Render(prompts.SectionsFile, key, data)
	if err != nil {
		return "", err
	}
	return base + "\n" + body, nil
}

func promptData(p *types.ProductData, style platforms.Style, section types.SectionKey) map[string]string {
	locale := style.Locale
	if !SupportedLocale(locale) {
		locale = DefaultLocale
	}
	language, _ := prompts.Get(prompts.SectionsFile, "language-"+locale)

	images := ProductImages(p)
	main := p.MainImage
	if (main == nil || main.Src == "") && len(images) > 0 {
		main = &images[0]
	}
	mainURL, mainAlt := "", p.Title
	if main != nil {
		mainURL = main.Src
		if main.Alt != "" {
			mainAlt = main.Alt
		}
	}

	specs, _ := ProductSpecs(p)

	data := map[string]string{
		"PlatformName":        style.Name,
		"Country":             style.Country,
		"PlatformColor":       style.Color,
		"LanguageInstruction": language,
		"Title":               Truncate(p.Title, PageTitleMax),
		"ModelNumber":         p.ModelNumber,
		"Category":            p.CategoryName,
		"Description":         orDefault(p.Description, "Premium LG product with innovative technology and elegant design."),
		"MainImageURL":        mainURL,
		"MainImageAlt":        mainAlt,
		"ImageList":           imageList(images, p.Title),
		"SectionTitle":        SectionTitle(locale, section),
		"Features":            numbered(limit(p.RawData.Features, 8), fmt.Sprintf("Generate 5-6 relevant features for the product category %q.", p.CategoryName)),
		"FeatureSummary":      orDefault(strings.Join(limit(p.RawData.Features, 4), ", "), p.CategoryName),
		"Highlights":          bulleted(limit(p.RawData.Highlights, 4)),
		"USPs":                uspList(p.RawData.USPs),
		"Specifications":      specList(specs),
		"FAQ":                 faqList(p),
	}
	data["ProductContext"] = prompts.Format(prompts.MustGet(prompts.SectionsFile, "context"), map[string]string{
		"ProductName": orDefault(p.RawData.BasicInfo.ProductName, p.Title),
		"ModelNumber": p.ModelNumber,
		"Category":    p.CategoryName,
		"Headline":    orDefault(p.RawData.BasicInfo.Headline, Truncate(p.Description, 150)),
		"ScreenSize":  orDefault(p.RawData.BasicInfo.ScreenSize, "N/A"),
		"Series":      orDefault(p.RawData.BasicInfo.Series, "N/A"),
		"Price":       priceLabel(p),
	})
	return data
}

func priceLabel(p *types.ProductData) string {
	if p.Price == "" {
		return "Contact for price"
	}
	return orDefault(p.Currency, "€") + p.Price
}

func imageList(images []types.ProductImage, fallbackAlt string) string {
	lines := make([]string, 0, len(images))
	for i, img := range images {
		w, h := img.Width, img.Height
		if w == 0 {
			w = 800
		}
		if h == 0 {
			h = 600
		}
		lines = append(lines, fmt.Sprintf("  - Image %d: URL=%q ALT=%q (%dx%d)", i+1, img.Src, orDefault(img.Alt, fallbackAlt), w, h))
	}
	return strings.Join(lines, "\n")
}

func specList(specs []types.SpecPair) string {
	lines := make([]string, 0, len(specs))
	for _, s := range specs {
		lines = append(lines, fmt.Sprintf("- %s: %s", s.Key, s.Value))
	}
	return strings.Join(lines, "\n")
}

func uspList(usps []types.USP) string {
	lines := make([]string, 0, 4)
	for i, u := range usps {
		if i == 4 {
			break
		}
		lines = append(lines, fmt.Sprintf("• %s: %s", u.Headline, u.Description))
	}
	return strings.Join(lines, "\n")
}

func faqList(p *types.ProductData) string {
	if len(p.RawData.FAQ) == 0 {
		return fmt.Sprintf("No FAQ data available. Generate 5-6 common questions and answers for a %s product like %q covering setup, connectivity, compatibility, care, troubleshooting and warranty.",
			p.CategoryName, Truncate(p.Title, PageTitleMax))
	}
	var sb strings.Builder
	sb.WriteString("FAQ DATA FROM PRODUCT (USE THESE):\n")
	for i, f := range p.RawData.FAQ {
		fmt.Fprintf(&sb, "Q%d: %s\nA%d: %s\n\n", i+1, f.Question, i+1, f.Answer)
	}
	return strings.TrimSpace(sb.String())
}

func numbered(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, it)
	}
	return strings.Join(lines, "\n")
}

func bulleted(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "• " + it
	}
	return strings.Join(lines, "\n")
}

func limit[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
