// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/listing-pipeline/internal/compliance"
	"github.com/jonathan/listing-pipeline/internal/gtin"
	"github.com/jonathan/listing-pipeline/internal/pipeline"
	"github.com/jonathan/listing-pipeline/internal/pipeline/steps"
	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to n runes, marking the cut with "...".
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

var statusIcons = map[steps.Status]string{
	steps.StatusPending:    "·",
	steps.StatusInProgress: "▶",
	steps.StatusCompleted:  "✓",
	steps.StatusWarning:    "⚠",
	steps.StatusFailed:     "✗",
	steps.StatusSkipped:    "↷",
}

// PrintRunSummary outputs the status of every step of a run and its summary counts.
func (p *Printer) PrintRunSummary(view *pipeline.View) {
	if view == nil || view.Run == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pipeline: %s\n", view.ID))
	sb.WriteString(fmt.Sprintf("Product:  %s\n", view.Request.ProductTitle))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", view.Status))
	sb.WriteString("\n")

	for _, res := range view.Steps {
		name := string(res.StepID)
		if def, err := steps.Lookup(string(res.StepID)); err == nil {
			name = def.Name
		}
		line := fmt.Sprintf("%s %-28s %s", statusIcons[res.Status], name, res.Status)
		if res.DurationMs != nil {
			line += fmt.Sprintf(" (%dms)", *res.DurationMs)
		}
		sb.WriteString(line + "\n")
		if res.Error != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", res.Error))
		}
	}

	s := view.Summary
	sb.WriteString(fmt.Sprintf("\n%d/%d completed, %d failed, %d skipped",
		s.CompletedSteps, s.TotalSteps, s.FailedSteps, s.SkippedSteps))

	p.printBox("PIPELINE RUN", sb.String())
}

// PrintComplianceReport outputs the aggregated compliance result for a run.
func (p *Printer) PrintComplianceReport(report *compliance.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:     %d%%\n", report.ComplianceScore))
	sb.WriteString(fmt.Sprintf("Platforms: %d\n", report.PlatformsChecked))
	sb.WriteString(fmt.Sprintf("Issues:    %d (warnings: %d)\n", report.TotalIssues, report.TotalWarnings))
	sb.WriteString("\n")

	g := report.GermanStatus
	sb.WriteString("German registrations:\n")
	sb.WriteString(fmt.Sprintf("  LUCID %s, WEEE %s, EAN %s\n", g.LUCID, g.WEEE, g.EAN))
	sb.WriteString(fmt.Sprintf("  Impressum %s, return address %s\n", g.Impressum, g.GermanReturnAddress))

	keys := make([]string, 0, len(report.PlatformChecks))
	for k := range report.PlatformChecks {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		check := report.PlatformChecks[types.Platform(k)]
		mark := "✓"
		if !check.Passed {
			mark = "✗"
		}
		sb.WriteString(fmt.Sprintf("\n%s %s\n", mark, k))
		count := min(len(check.Issues), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", check.Issues[i]))
		}
		if len(check.Issues) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(check.Issues)-maxItemsToShow))
		}
	}

	if len(report.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, w := range report.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", w))
		}
	}

	p.printBox("COMPLIANCE REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintComplianceResult outputs every rule evaluated for one platform.
func (p *Printer) PrintComplianceResult(platform types.Platform, result *compliance.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	verdict := "PASSED"
	if !result.Passed {
		verdict = "FAILED"
	}
	sb.WriteString(fmt.Sprintf("%s: %s\n\n", platform, verdict))
	for _, r := range result.Requirements {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", r.Status, r.Name))
		if r.Message != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", r.Message))
		}
	}

	p.printBox("COMPLIANCE CHECK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEAN outputs an EAN validation result.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintEAN(code string, result gtin.Result) {
	if result.Valid {
		fmt.Fprintf(p.out, "✅ %s is a valid EAN-13\n", gtin.Normalize(code))
		return
	}
	fmt.Fprintf(p.out, "❌ %s: %s\n", code, result.Error)
}

// PrintPlatforms outputs a one-line summary per marketplace.
func (p *Printer) PrintPlatforms(reqs []platforms.Requirements) {
	if len(reqs) == 0 {
		return
	}

	var sb strings.Builder
	for _, r := range reqs {
		sb.WriteString(fmt.Sprintf("%-13s title %3d  bullets %2d  images %d-%d\n",
			r.Platform, r.TitleMaxLength, r.BulletPointsMax, r.Images.MinQuantity, r.Images.MaxQuantity))
	}

	p.printBox("PLATFORM REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}
