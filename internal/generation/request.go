package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// ActionConsolidate asks a content request to join existing section HTML.
const ActionConsolidate = "consolidate"

// ContentRequest is a request for product-page HTML. Exactly one mode applies,
// checked in this order: consolidate (Action plus SectionHTML), a list of
// Sections, a single Section, or the full page when none is given.
type ContentRequest struct {
	Product     *types.ProductData          `json:"product"`
	Platform    types.Platform              `json:"platform"`
	Section     types.SectionKey            `json:"section,omitempty"`
	Sections    []types.SectionKey          `json:"sections,omitempty"`
	Action      string                      `json:"action,omitempty"`
	SectionHTML map[types.SectionKey]string `json:"sectionHtmls,omitempty"`
}

// ContentResponse is the result of a content request. HTML is set for the
// consolidate, single and full modes; SectionsHTML for the list mode.
type ContentResponse struct {
	Platform          types.Platform              `json:"platform"`
	Section           string                      `json:"section,omitempty"`
	HTML              string                      `json:"html,omitempty"`
	SectionsHTML      map[types.SectionKey]string `json:"sections,omitempty"`
	IncludedSections  []types.SectionKey          `json:"includedSections,omitempty"`
	GeneratedSections []types.SectionKey          `json:"generatedSections,omitempty"`
	UsedFallback      bool                        `json:"usedFallback,omitempty"`
}

// ErrMissingInput is returned when a request has no product or platform.
var ErrMissingInput = errors.New("missing product or platform")

// HandleContentRequest serves a ContentRequest with gen. Unknown platforms are
// rejected. Unknown keys in a section list are ignored.
func HandleContentRequest(ctx context.Context, gen Generator, req ContentRequest) (*ContentResponse, error) {
	if req.Product == nil || req.Platform == "" {
		return nil, ErrMissingInput
	}
	style, err := platforms.StyleFor(req.Platform)
	if err != nil {
		return nil, err
	}

	if req.Action == ActionConsolidate && len(req.SectionHTML) > 0 {
		return &ContentResponse{
			Platform:         req.Platform,
			Section:          "consolidated",
			HTML:             Consolidate(req.Product, style, req.SectionHTML),
			IncludedSections: IncludedSections(req.SectionHTML),
		}, nil
	}

	if req.Sections != nil {
		resp := &ContentResponse{
			Platform:          req.Platform,
			SectionsHTML:      make(map[types.SectionKey]string, len(req.Sections)),
			GeneratedSections: []types.SectionKey{},
		}
		for _, key := range req.Sections {
			key, ok := types.ParseSection(string(key))
			if !ok {
				continue
			}
			out, err := generate(ctx, gen, req.Product, req.Platform, key)
			if err != nil {
				return nil, err
			}
			resp.SectionsHTML[key] = out.Content
			resp.GeneratedSections = append(resp.GeneratedSections, key)
			resp.UsedFallback = resp.UsedFallback || out.UsedFallback
		}
		return resp, nil
	}

	section := req.Section
	if section == "" {
		section = types.SectionFull
	} else if section != types.SectionFull {
		key, ok := types.ParseSection(string(section))
		if !ok {
			return nil, &UnknownSectionError{Section: string(section)}
		}
		section = key
	}
	out, err := generate(ctx, gen, req.Product, req.Platform, section)
	if err != nil {
		return nil, err
	}
	return &ContentResponse{
		Platform:     req.Platform,
		Section:      string(section),
		HTML:         out.Content,
		UsedFallback: out.UsedFallback,
	}, nil
}

func generate(ctx context.Context, gen Generator, product *types.ProductData, platform types.Platform, section types.SectionKey) (Outcome, error) {
	if r, ok := gen.(*Resilient); ok {
		return r.GenerateDetailed(ctx, product, platform, section)
	}
	html, err := gen.Generate(ctx, product, platform, section)
	if err != nil {
		return Outcome{}, fmt.Errorf("generate %s: %w", section, err)
	}
	return Outcome{Content: html}, nil
}
