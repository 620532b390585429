// Package compliance evaluates regulatory rules and content limits for marketplace listings.
package compliance

import (
	"fmt"
	"strings"

	"github.com/jonathan/listing-pipeline/internal/types"
)

// Severity says whether failing a rule blocks a listing.
type Severity string

const (
	// SeverityHard failures make the platform check fail.
	SeverityHard Severity = "hard"
	// SeveritySoft failures are reported as warnings.
	SeveritySoft Severity = "soft"
)

// Definition describes one compliance rule.
type Definition struct {
	Key         types.RuleKey `json:"key"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Severity    Severity      `json:"severity"`
	URL         string        `json:"url,omitempty"`
	// Categories restricts the rule to products whose category contains one of
	// these terms. Empty means the rule always applies.
	Categories []string `json:"categories,omitempty"`
}

// UnknownRuleError is returned for rule keys without a definition.
type UnknownRuleError struct {
	Key types.RuleKey
}

func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("unknown compliance rule: %s", e.Key)
}

var definitions = map[types.RuleKey]Definition{
	types.RuleLUCID: {
		Key:         types.RuleLUCID,
		Name:        "LUCID Packaging Register",
		Description: "German Packaging Act registration number required for all sellers",
		Severity:    SeverityHard,
		URL:         "https://lucid.verpackungsregister.org/",
	},
	types.RuleWEEE: {
		Key:         types.RuleWEEE,
		Name:        "WEEE Registration",
		Description: "Electronic waste disposal registration required for all electronics",
		Severity:    SeverityHard,
		URL:         "https://www.stiftung-ear.de/",
		Categories:  []string{"TV", "Audio", "Laptop", "Monitor", "Projector", "Vacuum", "Air Conditioner"},
	},
	types.RuleEANGTIN: {
		Key:         types.RuleEANGTIN,
		Name:        "EAN/GTIN",
		Description: "13-digit barcode matching official manufacturer barcode",
		Severity:    SeverityHard,
	},
	types.RuleGermanReturnAddress: {
		Key:         types.RuleGermanReturnAddress,
		Name:        "German Return Address",
		Description: "Return address within Germany required for most platforms",
		Severity:    SeveritySoft,
	},
	types.RuleImpressum: {
		Key:         types.RuleImpressum,
		Name:        "Impressum",
		Description: "Legal business address and contact information (German law)",
		Severity:    SeverityHard,
	},
	types.RuleRFCTaxID: {
		Key:         types.RuleRFCTaxID,
		Name:        "RFC Tax ID",
		Description: "Mexican tax registration (RFC) required for Mexico sellers",
		Severity:    SeverityHard,
	},
	types.RuleWarrantyInfo: {
		Key:         types.RuleWarrantyInfo,
		Name:        "Warranty Information",
		Description: "Accurate warranty information on the listing",
		Severity:    SeveritySoft,
	},
}

// Lookup returns the definition of a rule.
func Lookup(key types.RuleKey) (Definition, error) {
	def, ok := definitions[key]
	if !ok {
		return Definition{}, &UnknownRuleError{Key: key}
	}
	def.Categories = append([]string(nil), def.Categories...)
	return def, nil
}

// Definitions returns every known rule definition.
func Definitions() []Definition {
	keys := []types.RuleKey{
		types.RuleLUCID,
		types.RuleWEEE,
		types.RuleEANGTIN,
		types.RuleGermanReturnAddress,
		types.RuleImpressum,
		types.RuleRFCTaxID,
		types.RuleWarrantyInfo,
	}
	out := make([]Definition, 0, len(keys))
	for _, k := range keys {
		def, _ := Lookup(k)
		out = append(out, def)
	}
	return out
}

// AppliesTo reports whether the rule covers a product category. Matching is a
// case-insensitive substring test against the rule's category terms.
func (d Definition) AppliesTo(category string) bool {
	if len(d.Categories) == 0 {
		return true
	}
	lower := strings.ToLower(category)
	for _, c := range d.Categories {
		if strings.Contains(lower, strings.ToLower(c)) {
			return true
		}
	}
	return false
}
