package compliance

import (
	"fmt"

	"github.com/jonathan/listing-pipeline/internal/gtin"
	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// Status is the outcome of one rule or content check.
type Status string

// Check outcomes.
const (
	StatusPass          Status = "pass"
	StatusFail          Status = "fail"
	StatusWarning       Status = "warning"
	StatusNotApplicable Status = "not_applicable"
)

// RuleResult is the outcome of one rule for one product.
type RuleResult struct {
	Key      types.RuleKey `json:"key"`
	Name     string        `json:"name"`
	Required bool          `json:"required"`
	Status   Status        `json:"status"`
	Message  string        `json:"message"`
}

// Result is the outcome of every rule a platform requires.
type Result struct {
	Passed       bool         `json:"passed"`
	Requirements []RuleResult `json:"requirements"`
}

// Failures returns the required rules that failed.
func (r *Result) Failures() []RuleResult {
	var out []RuleResult
	for _, req := range r.Requirements {
		if req.Required && req.Status == StatusFail {
			out = append(out, req)
		}
	}
	return out
}

// Check evaluates the rules required by platform against the product attributes.
func Check(platform types.Platform, attrs types.ComplianceAttributes) (*Result, error) {
	req, err := platforms.Lookup(platform)
	if err != nil {
		return nil, err
	}
	return CheckRules(req.GlobalCompliance, attrs)
}

// CheckRules evaluates the given rules in order. Passed is false when any
// required rule fails; soft rules only ever warn.
func CheckRules(keys []types.RuleKey, attrs types.ComplianceAttributes) (*Result, error) {
	res := &Result{Passed: true, Requirements: make([]RuleResult, 0, len(keys))}
	for _, key := range keys {
		def, err := Lookup(key)
		if err != nil {
			return nil, err
		}
		rr := evaluate(def, attrs)
		if rr.Required && rr.Status == StatusFail {
			res.Passed = false
		}
		res.Requirements = append(res.Requirements, rr)
	}
	return res, nil
}

func evaluate(def Definition, attrs types.ComplianceAttributes) RuleResult {
	rr := RuleResult{Key: def.Key, Name: def.Name, Required: true}

	switch def.Key {
	case types.RuleEANGTIN:
		v := gtin.Validate(attrs.EAN)
		if v.Valid {
			rr.Status, rr.Message = StatusPass, fmt.Sprintf("EAN/GTIN %s validated successfully", attrs.EAN)
		} else {
			rr.Status, rr.Message = StatusFail, v.Error
		}

	case types.RuleLUCID:
		rr.Status, rr.Message = present(attrs.LUCIDNumber != "",
			"LUCID number registered: "+attrs.LUCIDNumber,
			"LUCID Packaging Register number required for German marketplace", def.Severity)

	case types.RuleWEEE:
		if !def.AppliesTo(attrs.ProductCategory) {
			rr.Required = false
			rr.Status, rr.Message = StatusNotApplicable, "Product category does not require WEEE registration"
			break
		}
		rr.Status, rr.Message = present(attrs.WEEENumber != "",
			"WEEE registration: "+attrs.WEEENumber,
			"WEEE registration required for electronics in Germany", def.Severity)

	case types.RuleGermanReturnAddress:
		rr.Status, rr.Message = present(attrs.HasGermanReturnAddress,
			"German return address configured",
			"German return address recommended for most platforms", def.Severity)

	case types.RuleImpressum:
		rr.Status, rr.Message = present(attrs.HasImpressum,
			"Impressum (legal business info) configured",
			"Impressum required by German law for online sellers", def.Severity)

	case types.RuleRFCTaxID:
		rr.Status, rr.Message = present(attrs.RFCTaxID != "",
			"RFC tax ID registered: "+attrs.RFCTaxID,
			"RFC (Tax ID) required for Mexico sellers", def.Severity)

	case types.RuleWarrantyInfo:
		rr.Status, rr.Message = present(attrs.HasWarrantyInfo,
			"Warranty information provided",
			"Warranty information must be accurate and present on the listing", def.Severity)
	}

	return rr
}

// present maps a presence test to pass, or to fail/warning depending on severity.
func present(ok bool, passMsg, missingMsg string, sev Severity) (Status, string) {
	if ok {
		return StatusPass, passMsg
	}
	if sev == SeveritySoft {
		return StatusWarning, missingMsg
	}
	return StatusFail, missingMsg
}
