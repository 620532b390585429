package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/listing-pipeline/internal/compliance"
	"github.com/jonathan/listing-pipeline/internal/generation"
	"github.com/jonathan/listing-pipeline/internal/gtin"
	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/schemas"
	"github.com/jonathan/listing-pipeline/internal/sections"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// ComplianceCheckRequest is the body of a compliance check. No platforms
// means every platform.
type ComplianceCheckRequest struct {
	Platforms  []types.Platform           `json:"platforms"`
	Attributes types.ComplianceAttributes `json:"attributes"`
	Listing    *ListingInput              `json:"listing,omitempty"`
}

// ListingInput is listing content to measure against platform limits.
type ListingInput struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Bullets     []string             `json:"bullets"`
	Images      []types.ProductImage `json:"images"`
}

// ComplianceCheckResponse is a compliance report with the EAN verdict.
type ComplianceCheckResponse struct {
	*compliance.Report
	EAN gtin.Result `json:"ean"`
}

// sectionRequest is the body of section generation and sweep calls.
type sectionRequest struct {
	Product *types.ProductData `json:"product"`
}

// toggleRequest optionally sets the enabled flag instead of flipping it.
type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

// productEnvelope extracts the raw product for schema validation.
type productEnvelope struct {
	Product json.RawMessage `json:"product"`
}

// decodeProductBody reads a body holding a "product" object, validates the
// product against its schema and decodes the whole body into v.
func decodeProductBody(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	var env productEnvelope
	if err := unmarshalBody(data, &env); err != nil {
		return err
	}
	if len(env.Product) == 0 || string(env.Product) == "null" {
		return &ErrValidation{Field: "product", Message: "product is required"}
	}
	if err := schemas.ValidateProduct(env.Product); err != nil {
		return err
	}
	return unmarshalBody(data, v)
}

// handleGenerateContent serves the four content modes: consolidate, section
// list, single section and full page.
func (s *Server) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	var req generation.ContentRequest
	if err := decodeProductBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Platform == "" {
		s.writeError(w, r, &ErrValidation{Field: "platform", Message: "platform is required"})
		return
	}
	if p, ok := types.ParsePlatform(string(req.Platform)); ok {
		req.Platform = p
	}

	resp, err := generation.HandleContentRequest(r.Context(), s.gen, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleListPlatforms(w http.ResponseWriter, _ *http.Request) {
	all := platforms.All()
	s.jsonResponse(w, http.StatusOK, map[string]any{"platforms": all, "count": len(all)})
}

func (s *Server) handleGetPlatform(w http.ResponseWriter, r *http.Request) {
	p, _ := types.ParsePlatform(r.PathValue("platform"))
	req, err := platforms.Lookup(p)
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, req)
}

func (s *Server) handleComplianceCheck(w http.ResponseWriter, r *http.Request) {
	var req ComplianceCheckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	targets := make([]types.Platform, 0, len(req.Platforms))
	for _, raw := range req.Platforms {
		p, ok := types.ParsePlatform(string(raw))
		if !ok {
			s.writeError(w, r, &platforms.UnknownPlatformError{Platform: string(raw)})
			return
		}
		targets = append(targets, p)
	}
	if len(targets) == 0 {
		targets = types.AllPlatforms
	}

	var listing compliance.Listing
	if req.Listing != nil {
		listing = compliance.Listing{
			Title:       req.Listing.Title,
			Description: req.Listing.Description,
			Bullets:     req.Listing.Bullets,
			Images:      req.Listing.Images,
		}
	}

	report, err := compliance.Aggregate(targets, req.Attributes, listing)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ComplianceCheckResponse{
		Report: report,
		EAN:    gtin.Validate(req.Attributes.EAN),
	})
}

// sectionTarget resolves the board, platform and, when present, section of a
// sections route.
func (s *Server) sectionTarget(r *http.Request, withSection bool) (*sections.Board, types.Platform, types.SectionKey, error) {
	p, ok := types.ParsePlatform(r.PathValue("platform"))
	if !ok {
		return nil, "", "", &platforms.UnknownPlatformError{Platform: r.PathValue("platform")}
	}
	var section types.SectionKey
	if withSection {
		section, ok = types.ParseSection(r.PathValue("section"))
		if !ok {
			return nil, "", "", &generation.UnknownSectionError{Section: r.PathValue("section")}
		}
	}
	return s.boards.For(r.PathValue("id")), p, section, nil
}

func (s *Server) handleGetSections(w http.ResponseWriter, r *http.Request) {
	board, p, _, err := s.sectionTarget(r, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	states, err := board.Platform(p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"productId": board.ProductID(),
		"platform":  p,
		"sections":  states,
		"complete":  board.PlatformComplete(p),
	})
}

func (s *Server) handleGenerateSection(w http.ResponseWriter, r *http.Request) {
	board, p, section, err := s.sectionTarget(r, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req sectionRequest
	if err := decodeProductBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Product.ID == "" {
		req.Product.ID = board.ProductID()
	}

	state, err := board.Generate(r.Context(), p, section, req.Product, s.gen)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

func (s *Server) handleToggleSection(w http.ResponseWriter, r *http.Request) {
	board, p, section, err := s.sectionTarget(r, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req toggleRequest
	if r.ContentLength != 0 {
		data, err := readBody(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if len(data) > 0 {
			if err := unmarshalBody(data, &req); err != nil {
				s.writeError(w, r, err)
				return
			}
		}
	}

	var state sections.State
	if req.Enabled != nil {
		state, err = board.SetEnabled(p, section, *req.Enabled)
	} else {
		state, err = board.Toggle(p, section)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

func (s *Server) handleSweepSections(w http.ResponseWriter, r *http.Request) {
	board, p, _, err := s.sectionTarget(r, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req sectionRequest
	if err := decodeProductBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Product.ID == "" {
		req.Product.ID = board.ProductID()
	}

	result, err := board.Sweep(r.Context(), p, req.Product, s.gen, s.sectionConcurrency)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}
