package generation

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Output validation errors.
var (
	ErrEmptyOutput = errors.New("empty output")
	ErrNoMarkup    = errors.New("output contains no HTML elements")
)

// ValidateFragment checks that s parses as HTML and contains at least one element.
func ValidateFragment(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyOutput
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return err
	}
	if doc.Find("body *, head *").Length() == 0 {
		return ErrNoMarkup
	}
	return nil
}

// PlainText returns the visible text of an HTML fragment with whitespace collapsed.
func PlainText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// ImageSources returns the src attribute of every <img> in s, in document order.
func ImageSources(s string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil
	}
	var srcs []string
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok && src != "" {
			srcs = append(srcs, src)
		}
	})
	return srcs
}
