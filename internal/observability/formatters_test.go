package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/listing-pipeline/internal/compliance"
	"github.com/jonathan/listing-pipeline/internal/gtin"
	"github.com/jonathan/listing-pipeline/internal/pipeline"
	"github.com/jonathan/listing-pipeline/internal/pipeline/steps"
	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/types"
)

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	run := pipeline.NewRun(uuid.New(), types.PipelineRequest{
		ProductID:    "p-1",
		ProductTitle: "LG OLED65C4",
		Channel:      types.ChannelThirdParty,
	}, time.Now())
	duration := int64(42)
	run.SetStep(steps.Result{StepID: steps.AssetVerification, Status: steps.StatusCompleted, DurationMs: &duration})
	run.SetStep(steps.Result{StepID: steps.SpecVerification, Status: steps.StatusFailed, Error: "spec lookup failed"})
	run.SetStep(steps.Result{StepID: steps.ComplianceCheck, Status: steps.StatusSkipped})

	view := pipeline.NewView(run)
	p.PrintRunSummary(&view)
	output := buf.String()

	assert.Contains(t, output, "PIPELINE RUN")
	assert.Contains(t, output, "LG OLED65C4")
	assert.Contains(t, output, "(42ms)")
	assert.Contains(t, output, "spec lookup failed")
	assert.Contains(t, output, "1/8 completed, 1 failed, 1 skipped")
}

func TestPrintRunSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(nil)
	p.PrintRunSummary(&pipeline.View{})

	assert.Empty(t, buf.String())
}

func TestPrintComplianceReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report, err := compliance.Aggregate(
		[]types.Platform{types.PlatformMediaMarkt, types.PlatformAmazon},
		types.ComplianceAttributes{EAN: "4005176000126", WEEENumber: "DE12345678"},
		compliance.Listing{Title: "LG OLED65C4"},
	)
	require.NoError(t, err)

	p.PrintComplianceReport(report)
	output := buf.String()

	assert.Contains(t, output, "COMPLIANCE REPORT")
	assert.Contains(t, output, "German registrations")
	assert.Contains(t, output, "WEEE registered")
	assert.Contains(t, output, "amazon")
	assert.Contains(t, output, "mediamarkt")
	assert.Less(t, strings.Index(output, "amazon"), strings.Index(output, "mediamarkt"))
}

func TestPrintComplianceResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result, err := compliance.Check(types.PlatformMediaMarkt, types.ComplianceAttributes{})
	require.NoError(t, err)

	p.PrintComplianceResult(types.PlatformMediaMarkt, result)
	output := buf.String()

	assert.Contains(t, output, "COMPLIANCE CHECK")
	assert.Contains(t, output, "mediamarkt: FAILED")
	assert.Contains(t, output, "[fail]")
}

func TestPrintEAN(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintEAN("4005176-000126", gtin.Validate("4005176-000126"))
	assert.Contains(t, buf.String(), "4005176000126 is a valid EAN-13")

	buf.Reset()
	p.PrintEAN("123", gtin.Validate("123"))
	assert.Contains(t, buf.String(), "❌ 123:")
}

func TestPrintPlatforms(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPlatforms(platforms.All())
	output := buf.String()

	assert.Contains(t, output, "PLATFORM REQUIREMENTS")
	for _, platform := range types.AllPlatforms {
		assert.Contains(t, output, string(platform))
	}

	buf.Reset()
	p.PrintPlatforms(nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_ClipsLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("ü", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth, line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcd...", clip("abcdefghij", 7))
}
