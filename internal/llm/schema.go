package llm

import (
	"fmt"
	"strings"
)

// OutputSchema describes the JSON object a structured prompt asks for.
type OutputSchema struct {
	Name        string        // Schema name (e.g., "PlatformListing")
	Description string        // System preamble describing the task
	Fields      []SchemaField // Expected output fields
	Rules       []string      // Extra instructions listed after the schema
}

// SchemaField defines a single field in the structured output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "\"string\"", "[\"string\"]"
	Description string // Description for the LLM
	Required    bool
}

// BuildStructuredPrompt renders schema and the task input into one prompt.
func BuildStructuredPrompt(schema OutputSchema, input string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")
	sb.WriteString(input)
	sb.WriteString("\n\nReturn ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = `"string"`
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  %q: %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(" // " + field.Description)
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")

	if len(schema.Rules) > 0 {
		sb.WriteString("\nIMPORTANT:\n")
		for _, r := range schema.Rules {
			sb.WriteString("- " + r + "\n")
		}
	}
	return sb.String()
}

// ListingContentSchema is the structured output of a per-platform listing.
func ListingContentSchema(titleMax, descriptionMax, bulletsMax int) OutputSchema {
	return OutputSchema{
		Name:        "PlatformListing",
		Description: "You are an expert e-commerce copywriter specialising in marketplace listings, search (SEO), answer engine (AEO) and generative engine (GEO) optimisation.",
		Fields: []SchemaField{
			{Name: "title", Description: fmt.Sprintf("at most %d characters", titleMax), Required: true},
			{Name: "description", Description: fmt.Sprintf("at most %d characters", descriptionMax), Required: true},
			{Name: "bulletPoints", Type: `["string"]`, Description: fmt.Sprintf("at most %d entries", bulletsMax), Required: true},
			{Name: "seoKeywords", Type: `["string"]`, Description: "search keywords in the listing language", Required: true},
			{Name: "aeoSnippet", Description: "one or two sentences that directly answer a shopper question"},
			{Name: "geoSummary", Description: "a factual summary an AI assistant could cite"},
			{Name: "metaDescription", Description: "at most 160 characters"},
		},
		Rules: []string{
			"Write in the listing language, do not mix languages.",
			"Respect every character limit exactly.",
			"Return ONLY the JSON object, no markdown, no explanation, no code blocks.",
		},
	}
}
