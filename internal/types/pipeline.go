package types

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Request defaults applied by PipelineRequest.Normalize.
const (
	DefaultLanguage    = "de-DE"
	DefaultCountryCode = "de"
)

// PipelineRequest is the payload that starts a pipeline run.
type PipelineRequest struct {
	ProductID    string                `json:"productId" validate:"required"`
	ProductTitle string                `json:"productTitle" validate:"required"`
	ModelNumber  string                `json:"modelNumber,omitempty"`
	Channel      Channel               `json:"channel" validate:"required,oneof=d2c 3p"`
	Platforms    []Platform            `json:"platforms,omitempty" validate:"dive,platform"`
	Language     string                `json:"language,omitempty"`
	CountryCode  string                `json:"countryCode,omitempty"`
	Product      *ProductData          `json:"product,omitempty"`
	Compliance   *ComplianceAttributes `json:"compliance,omitempty"`
}

// RequestError reports an invalid pipeline request.
type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
			return Platform(fl.Field().String()).Valid()
		})
	})
	return validate
}

// Normalize lower-cases identifiers, removes duplicate platforms and applies defaults.
func (r *PipelineRequest) Normalize() {
	r.ProductID = strings.TrimSpace(r.ProductID)
	r.ProductTitle = strings.TrimSpace(r.ProductTitle)
	r.Channel = Channel(strings.ToLower(strings.TrimSpace(string(r.Channel))))

	seen := make(map[Platform]bool, len(r.Platforms))
	platforms := make([]Platform, 0, len(r.Platforms))
	for _, p := range r.Platforms {
		p = Platform(strings.ToLower(strings.TrimSpace(string(p))))
		if seen[p] {
			continue
		}
		seen[p] = true
		platforms = append(platforms, p)
	}
	r.Platforms = platforms

	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if r.CountryCode == "" {
		r.CountryCode = DefaultCountryCode
	}
	if r.ModelNumber == "" {
		r.ModelNumber = r.ProductID
	}
}

// Validate checks required fields, the channel value and platform identifiers.
func (r *PipelineRequest) Validate() error {
	err := requestValidator().Struct(r)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return &RequestError{Field: fe.Field(), Message: "Missing required fields: productId, productTitle, channel"}
			}
		}
		fe := verrs[0]
		switch fe.Tag() {
		case "oneof":
			return &RequestError{Field: "channel", Message: fmt.Sprintf("invalid channel %q: must be one of d2c, 3p", fe.Value())}
		case "platform":
			return &RequestError{Field: "platforms", Message: fmt.Sprintf("unknown platform: %v", fe.Value())}
		default:
			return &RequestError{Field: fe.Field(), Message: fe.Error()}
		}
	}

	if r.Channel == ChannelThirdParty && len(r.Platforms) == 0 {
		return &RequestError{Field: "platforms", Message: "3P channel requires at least one platform"}
	}
	return nil
}

// ComplianceAttributes resolves the attributes a run is checked against.
// Explicit request attributes win over product attributes. A missing product
// category falls back to the product title so category rules can still match.
func (r *PipelineRequest) ComplianceAttributes() ComplianceAttributes {
	var attrs ComplianceAttributes
	switch {
	case r.Compliance != nil:
		attrs = *r.Compliance
	case r.Product != nil && r.Product.Compliance != nil:
		attrs = *r.Product.Compliance
	}
	if attrs.ProductCategory == "" {
		attrs.ProductCategory = r.ProductTitle
	}
	return attrs
}

// ProductData returns the product attached to the request, or a minimal one
// built from the request identifiers.
func (r *PipelineRequest) ProductData() *ProductData {
	if r.Product != nil {
		p := *r.Product
		if p.ID == "" {
			p.ID = r.ProductID
		}
		if p.Title == "" {
			p.Title = r.ProductTitle
		}
		if p.ModelNumber == "" {
			p.ModelNumber = r.ModelNumber
		}
		return &p
	}
	return &ProductData{
		ID:          r.ProductID,
		Title:       r.ProductTitle,
		ModelNumber: r.ModelNumber,
	}
}
