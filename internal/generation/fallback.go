package generation

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/types"
)

const (
	brandRed   = "#A50034"
	brandDark  = "#1A1A1A"
	brandGray  = "#6B6B6B"
	brandLight = "#F5F5F5"
	fontFamily = "'LG EI Text', 'Helvetica Neue', Arial, sans-serif"

	maxFallbackFeatures = 6
	maxFallbackSpecs    = 10
	maxGalleryImages    = 6
	heroDescriptionMax  = 200
)

// pageData is what the section templates render.
type pageData struct {
	Title         string
	ModelNumber   string
	Category      string
	Description   string
	MainImage     *types.ProductImage
	Gallery       []types.ProductImage
	Features      []string
	Specs         []types.SpecPair
	USPs          []types.USP
	FAQ           []types.FAQEntry
	SectionTitle  string
	Accent        string
	Red           string
	Dark          string
	Gray          string
	Light         string
	Font          template.CSS
	Partner       string
	ModelLabel    string
	Warranty      string
	Shipping      string
	WarrantyTitle string
	WarrantyDesc  string
}

var sectionTemplates = template.Must(template.New("sections").Funcs(template.FuncMap{
	"rem": func(i int) int { return i % 2 },
}).Parse(`
{{define "hero"}}<div style="max-width:800px;background:#FFFFFF;padding:32px;font-family:{{.Font}};border-radius:8px;border:1px solid {{.Light}};border-top:4px solid {{.Accent}};">
{{if .MainImage}}<div style="max-width:600px;margin:0 auto 24px auto;background:{{.Light}};border-radius:8px;overflow:hidden;"><img src="{{.MainImage.Src}}" alt="{{if .MainImage.Alt}}{{.MainImage.Alt}}{{else}}{{.Title}}{{end}}" style="width:100%;height:auto;display:block;object-fit:contain;" /></div>{{end}}
<div style="text-align:center;">
<div style="display:inline-block;background:{{.Red}};color:#FFFFFF;padding:6px 16px;font-size:12px;font-weight:bold;border-radius:4px;margin-bottom:16px;text-transform:uppercase;">{{.Partner}}</div>
<h1 style="font-size:24px;font-weight:700;color:{{.Dark}};margin:0 0 12px 0;">{{.Title}}</h1>
<p style="font-size:14px;color:{{.Gray}};margin:0 0 8px 0;">{{.ModelLabel}}: {{.ModelNumber}}</p>
<p style="font-size:14px;color:{{.Dark}};margin:0 auto 20px auto;max-width:600px;">{{.Description}}</p>
<span style="display:inline-block;background:#e8f5e9;color:#2e7d32;padding:8px 14px;border-radius:6px;font-size:13px;">{{.Warranty}}</span>
<span style="display:inline-block;background:#e3f2fd;color:#1565c0;padding:8px 14px;border-radius:6px;font-size:13px;">{{.Shipping}}</span>
</div>
</div>{{end}}

{{define "gallery"}}{{if .Gallery}}<div style="max-width:800px;background:{{.Light}};padding:32px;font-family:{{.Font}};border-radius:8px;">
<h2 style="font-size:20px;font-weight:700;color:{{.Dark}};border-left:4px solid {{.Red}};padding-left:12px;margin:0 0 16px 0;">{{.SectionTitle}}</h2>
<div style="display:flex;flex-wrap:wrap;gap:16px;">
{{range .Gallery}}<div style="flex:1 1 200px;background:#FFFFFF;border-radius:8px;overflow:hidden;"><img src="{{.Src}}" alt="{{if .Alt}}{{.Alt}}{{else}}{{$.Title}}{{end}}" style="width:100%;height:200px;object-fit:cover;" /></div>
{{end}}</div>
</div>{{end}}{{end}}

{{define "features"}}<div style="max-width:800px;background:#FFFFFF;padding:32px;font-family:{{.Font}};border-radius:8px;">
<h2 style="font-size:22px;font-weight:700;color:{{.Dark}};border-left:4px solid {{.Red}};padding-left:12px;margin:0 0 16px 0;">{{.SectionTitle}}</h2>
<ul style="list-style:none;margin:0;padding:0;">
{{range .Features}}<li style="padding:12px 0;border-bottom:1px solid #E0E0E0;font-size:14px;color:{{$.Dark}};"><span style="display:inline-block;width:8px;height:8px;border-radius:50%;background:{{$.Red}};margin-right:10px;"></span>{{.}}</li>
{{end}}</ul>
</div>{{end}}

{{define "specifications"}}<div style="max-width:800px;background:#FFFFFF;padding:32px;font-family:{{.Font}};border-radius:8px;">
<h2 style="font-size:22px;font-weight:700;color:{{.Dark}};text-transform:uppercase;margin:0 0 16px 0;">{{.SectionTitle}}</h2>
<table style="width:100%;border-collapse:collapse;font-size:14px;">
{{range $i, $s := .Specs}}<tr style="background:{{if eq (rem $i) 0}}{{$.Light}}{{else}}#FFFFFF{{end}};"><td style="padding:10px 12px;color:{{$.Gray}};width:40%;">{{$s.Key}}</td><td style="padding:10px 12px;color:{{$.Dark}};font-weight:500;">{{$s.Value}}</td></tr>
{{end}}</table>
</div>{{end}}

{{define "benefits"}}<div style="max-width:800px;background:{{.Red}};padding:32px;font-family:{{.Font}};border-radius:8px;">
<h2 style="font-size:22px;font-weight:700;color:#FFFFFF;text-align:center;text-transform:uppercase;margin:0 0 20px 0;">{{.SectionTitle}}</h2>
<div style="display:flex;flex-wrap:wrap;gap:16px;">
{{range .USPs}}<div style="flex:1 1 300px;background:rgba(255,255,255,0.1);border-radius:8px;padding:20px;"><h3 style="font-size:16px;color:#FFFFFF;margin:0 0 8px 0;">{{.Headline}}</h3><p style="font-size:13px;color:rgba(255,255,255,0.85);margin:0;">{{.Description}}</p></div>
{{end}}</div>
</div>{{end}}

{{define "warranty"}}<div style="max-width:800px;background:#FFFFFF;padding:32px;font-family:{{.Font}};border-radius:8px;border:1px solid {{.Light}};">
<h2 style="font-size:20px;font-weight:700;color:{{.Dark}};border-left:4px solid {{.Red}};padding-left:12px;margin:0 0 16px 0;">{{.SectionTitle}}</h2>
<h3 style="font-size:16px;color:#43a047;margin:0 0 8px 0;">{{.WarrantyTitle}}</h3>
<p style="font-size:14px;color:{{.Gray}};margin:0;">{{.WarrantyDesc}}</p>
</div>{{end}}

{{define "faq"}}<div style="max-width:800px;background:#FFFFFF;padding:32px;font-family:{{.Font}};border-radius:8px;">
<h2 style="font-size:20px;font-weight:700;color:{{.Dark}};border-left:4px solid {{.Red}};padding-left:12px;margin:0 0 16px 0;">{{.SectionTitle}}</h2>
{{range .FAQ}}<details style="border-bottom:1px solid #E0E0E0;padding:12px 0;"><summary style="font-size:14px;font-weight:600;color:{{$.Dark}};cursor:pointer;">{{.Question}}</summary><p style="font-size:14px;color:{{$.Gray}};margin:8px 0 0 0;">{{.Answer}}</p></details>
{{end}}</div>{{end}}
`))

// FallbackGenerator renders sections from raw product fields without a model.
// Its output is deterministic.
type FallbackGenerator struct{}

// Generate implements Generator. The full page is the consolidation of every
// default section.
func (FallbackGenerator) Generate(_ context.Context, product *types.ProductData, platform types.Platform, section types.SectionKey) (string, error) {
	style, err := platforms.StyleFor(platform)
	if err != nil {
		return "", err
	}
	if section == types.SectionFull || section == "" {
		parts := make(map[types.SectionKey]string, len(types.DefaultSections))
		for _, s := range types.DefaultSections {
			html, err := renderSection(product, style, s)
			if err != nil {
				return "", err
			}
			parts[s] = html
		}
		return Consolidate(product, style, parts), nil
	}
	return renderSection(product, style, section)
}

func renderSection(product *types.ProductData, style platforms.Style, section types.SectionKey) (string, error) {
	if sectionTemplates.Lookup(string(section)) == nil {
		return "", fmt.Errorf("no template for section %q", section)
	}
	var buf bytes.Buffer
	if err := sectionTemplates.ExecuteTemplate(&buf, string(section), newPageData(product, style, section)); err != nil {
		return "", fmt.Errorf("render %s: %w", section, err)
	}
	return buf.String(), nil
}

func newPageData(p *types.ProductData, style platforms.Style, section types.SectionKey) pageData {
	locale := style.Locale
	if !SupportedLocale(locale) {
		locale = DefaultLocale
	}

	var main *types.ProductImage
	if p.MainImage != nil && p.MainImage.Src != "" {
		main = p.MainImage
	} else if images := ProductImages(p); len(images) > 0 {
		main = &images[0]
	}

	gallery := limit(append(append([]types.ProductImage{}, p.GalleryImages...), p.LifestyleImages...), maxGalleryImages)

	specs, _ := ProductSpecs(p)
	if len(specs) > maxFallbackSpecs {
		specs = specs[:maxFallbackSpecs]
	}

	usps := p.RawData.USPs
	if len(usps) == 0 {
		for _, f := range limit(p.RawData.Features, 4) {
			usps = append(usps, types.USP{Headline: f})
		}
	}

	return pageData{
		Title:         Truncate(p.Title, PageTitleMax),
		ModelNumber:   p.ModelNumber,
		Category:      p.CategoryName,
		Description:   orDefault(Truncate(p.Description, heroDescriptionMax), label(locale, labelPremium)),
		MainImage:     main,
		Gallery:       gallery,
		Features:      limit(p.RawData.Features, maxFallbackFeatures),
		Specs:         specs,
		USPs:          limit(usps, 4),
		FAQ:           p.RawData.FAQ,
		SectionTitle:  SectionTitle(locale, section),
		Accent:        style.Color,
		Red:           brandRed,
		Dark:          brandDark,
		Gray:          brandGray,
		Light:         brandLight,
		Font:          template.CSS(fontFamily),
		Partner:       label(locale, labelPartner),
		ModelLabel:    label(locale, labelModel),
		Warranty:      label(locale, labelWarranty),
		Shipping:      label(locale, labelShipping),
		WarrantyTitle: label(locale, labelWarrantyTitle),
		WarrantyDesc:  label(locale, labelWarrantyDesc),
	}
}
