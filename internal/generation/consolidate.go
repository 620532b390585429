package generation

import (
	"bytes"
	"html/template"

	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/types"
)

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}} - LG</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body { background: #F5F5F5; font-family: 'LG EI Text', 'Helvetica Neue', Arial, sans-serif; color: #1A1A1A; font-size: 14px; line-height: 1.6; }
  </style>
</head>
<body>
  <div style="max-width: 800px; margin: 0 auto; display: flex; flex-direction: column; gap: 16px; padding: 16px;">
{{range .Sections}}{{.}}
{{end}}  </div>
</body>
</html>
`))

// Consolidate joins section HTML into one page. Sections are placed in
// canonical order regardless of map order; empty sections are skipped.
func Consolidate(product *types.ProductData, style platforms.Style, sections map[types.SectionKey]string) string {
	lang := style.Locale
	if lang == "" {
		lang = DefaultLocale
	}

	ordered := make([]template.HTML, 0, len(sections))
	for _, key := range types.AllSections {
		if html := sections[key]; html != "" {
			ordered = append(ordered, template.HTML(html))
		}
	}

	var buf bytes.Buffer
	// The template has no failure paths for this data.
	_ = documentTemplate.Execute(&buf, struct {
		Lang     string
		Title    string
		Sections []template.HTML
	}{
		Lang:     lang,
		Title:    Truncate(product.Title, PageTitleMax),
		Sections: ordered,
	})
	return buf.String()
}

// IncludedSections lists the non-empty keys of sections in canonical order.
func IncludedSections(sections map[types.SectionKey]string) []types.SectionKey {
	var keys []types.SectionKey
	for _, key := range types.AllSections {
		if sections[key] != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
