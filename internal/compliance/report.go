package compliance

import (
	"fmt"
	"math"

	"github.com/jonathan/listing-pipeline/internal/gtin"
	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// CheckWeight is the nominal number of checks counted per platform when
// computing the score. It approximates the rule plus content checks and is not
// derived from the rules actually evaluated.
const CheckWeight = 5

// PlatformCheck is the full result for one platform.
type PlatformCheck struct {
	Passed            bool              `json:"passed"`
	Issues            []string          `json:"issues"`
	GlobalCompliance  []RuleResult      `json:"globalCompliance"`
	ContentCompliance ContentCompliance `json:"contentCompliance"`
}

// GermanStatus summarizes the seller's German registrations.
type GermanStatus struct {
	LUCID               string `json:"lucid"`
	WEEE                string `json:"weee"`
	EAN                 string `json:"ean"`
	Impressum           string `json:"impressum"`
	GermanReturnAddress string `json:"germanReturnAddress"`
}

// Report aggregates platform checks for a pipeline run.
type Report struct {
	PlatformsChecked int                              `json:"platformsChecked"`
	ComplianceScore  int                              `json:"complianceScore"`
	TotalIssues      int                              `json:"totalIssues"`
	TotalWarnings    int                              `json:"totalWarnings"`
	GermanStatus     GermanStatus                     `json:"germanComplianceStatus"`
	PlatformChecks   map[types.Platform]PlatformCheck `json:"platformChecks"`
	Warnings         []string                         `json:"warnings"`
}

// Passed reports whether no issues were found.
func (r *Report) Passed() bool {
	return r.TotalIssues == 0
}

// Aggregate checks every platform against attrs and listing and scores the result.
// The score is round((n*CheckWeight - issues) / (n*CheckWeight) * 100) for n
// platforms, and 100 when there are no platforms.
func Aggregate(targets []types.Platform, attrs types.ComplianceAttributes, listing Listing) (*Report, error) {
	report := &Report{
		PlatformsChecked: len(targets),
		PlatformChecks:   make(map[types.Platform]PlatformCheck, len(targets)),
		Warnings:         []string{},
		GermanStatus:     germanStatus(attrs),
	}

	var advisories []string
	for _, p := range targets {
		req, err := platforms.Lookup(p)
		if err != nil {
			return nil, err
		}
		rules, err := CheckRules(req.GlobalCompliance, attrs)
		if err != nil {
			return nil, err
		}
		content := CheckContent(req, listing)

		issues := []string{}
		for _, rr := range rules.Requirements {
			switch rr.Status {
			case StatusFail:
				issues = append(issues, rr.Message)
			case StatusWarning:
				report.TotalWarnings++
			}
		}
		issues = append(issues, content.issues()...)
		report.TotalWarnings += content.warnings()
		report.TotalIssues += len(issues)

		report.PlatformChecks[p] = PlatformCheck{
			Passed:            rules.Passed && len(issues) == 0,
			Issues:            issues,
			GlobalCompliance:  rules.Requirements,
			ContentCompliance: content,
		}
		if req.Advisory != "" {
			advisories = append(advisories, req.Advisory)
		}
	}

	report.ComplianceScore = Score(len(targets), report.TotalIssues)

	if report.TotalWarnings > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d compliance warning(s) detected", report.TotalWarnings))
	}
	report.Warnings = append(report.Warnings, advisories...)

	return report, nil
}

// Score converts an issue count into a 0-100 style score.
func Score(platformCount, issues int) int {
	total := platformCount * CheckWeight
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(total-issues) / float64(total) * 100))
}

func germanStatus(attrs types.ComplianceAttributes) GermanStatus {
	s := GermanStatus{
		LUCID:               "missing",
		WEEE:                "missing",
		EAN:                 "invalid",
		Impressum:           "missing",
		GermanReturnAddress: "missing",
	}
	if attrs.LUCIDNumber != "" {
		s.LUCID = "registered"
	}
	if attrs.WEEENumber != "" {
		s.WEEE = "registered"
	}
	if gtin.Validate(attrs.EAN).Valid {
		s.EAN = "valid"
	}
	if attrs.HasImpressum {
		s.Impressum = "configured"
	}
	if attrs.HasGermanReturnAddress {
		s.GermanReturnAddress = "configured"
	}
	return s
}
