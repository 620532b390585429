package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"math"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/listing-pipeline/internal/compliance"
	"github.com/jonathan/listing-pipeline/internal/events"
	"github.com/jonathan/listing-pipeline/internal/generation"
	"github.com/jonathan/listing-pipeline/internal/pipeline/steps"
	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/seo"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// Banner and thumbnail dimensions rendered per platform.
var (
	BannerFormats  = []string{"1200x628", "1080x1080", "1920x1080"}
	ThumbnailSizes = []int{500, 800, 1200}
)

const publishedURLFormat = "https://%s.example.com/products/%s"

// AssetReport is the output of asset verification.
type AssetReport struct {
	ImagesVerified int                                       `json:"imagesVerified"`
	Resolutions    []string                                  `json:"resolutions"`
	Quality        string                                    `json:"quality"`
	Platforms      map[types.Platform]compliance.ImageCheck `json:"platforms,omitempty"`
	Issues         []string                                  `json:"issues"`
}

// SpecReport is the output of spec verification.
type SpecReport struct {
	SpecsValidated int      `json:"specsValidated"`
	SpecsUsable    int      `json:"specsUsable"`
	FilteredOut    int      `json:"filteredOut"`
	Fields         []string `json:"fields"`
	QualityScore   int      `json:"qualityScore"`
	DataQuality    string   `json:"dataQuality"`
	UsedDefaults   bool     `json:"usedDefaults"`
	Warnings       int      `json:"warnings"`
}

// PlatformArtifacts records what was generated for one platform in steps 4 and 5.
type PlatformArtifacts struct {
	Platform     types.Platform `json:"platform"`
	ContentURL   string         `json:"contentUrl,omitempty"`
	URLs         []string       `json:"urls,omitempty"`
	UsedFallback bool           `json:"usedFallback"`
	Error        string         `json:"error,omitempty"`
}

// BannerOutput is the output of banner generation.
type BannerOutput struct {
	BannersCreated int                 `json:"bannersCreated"`
	Formats        []string            `json:"formats"`
	Platforms      []PlatformArtifacts `json:"platforms"`
}

// ThumbnailOutput is the output of thumbnail generation.
type ThumbnailOutput struct {
	ThumbnailsCreated int                 `json:"thumbnailsCreated"`
	Sizes             []string            `json:"sizes"`
	Platforms         []PlatformArtifacts `json:"platforms"`
}

// Review outcomes.
const (
	ReviewAutoApproved = "auto-approved"
	ReviewApproved     = "approved"
	ReviewRejected     = "rejected"
)

// ReviewOutput is the output of the human-review step.
type ReviewOutput struct {
	Status               string    `json:"status"`
	Reviewer             string    `json:"reviewer"`
	Timestamp            time.Time `json:"timestamp"`
	Comments             string    `json:"comments,omitempty"`
	RequiresManualReview bool      `json:"requiresManualReview"`
}

// PublishedURL is where a listing went live.
type PublishedURL struct {
	Platform types.Platform `json:"platform"`
	URL      string         `json:"url"`
}

// Distribution outcomes.
const (
	DistributionSuccess  = "success"
	DistributionWithheld = "withheld"
)

// DistributionOutput is the output of the distribution step.
type DistributionOutput struct {
	PlatformsPublished int                       `json:"platformsPublished"`
	Status             string                    `json:"status"`
	Reason             string                    `json:"reason,omitempty"`
	Timestamp          time.Time                 `json:"timestamp"`
	APIResponses       map[types.Platform]string `json:"apiResponses"`
	PublishedURLs      []PublishedURL            `json:"publishedUrls"`
}

func (o *Orchestrator) verifyAssets(_ context.Context, run *Run) (steps.Status, any, error) {
	product := run.Request.ProductData()
	images := product.Images()

	report := &AssetReport{
		ImagesVerified: len(images),
		Resolutions:    resolutions(images),
		Platforms:      make(map[types.Platform]compliance.ImageCheck),
		Issues:         []string{},
	}
	if len(images) == 0 {
		report.Issues = append(report.Issues, "no product images supplied")
	} else {
		for _, p := range run.Request.Platforms {
			req, err := platforms.Lookup(p)
			if err != nil {
				return steps.StatusFailed, nil, err
			}
			check := compliance.CheckContent(req, compliance.Listing{Images: images}).ImageRequirements
			report.Platforms[p] = check
			if check.Current < check.MinQuantity {
				report.Issues = append(report.Issues, fmt.Sprintf("%s: %d image(s) supplied, minimum %d", p, check.Current, check.MinQuantity))
			}
			if check.Undersized > 0 {
				report.Issues = append(report.Issues, fmt.Sprintf("%s: %d image(s) below %s", p, check.Undersized, check.MinResolution))
			}
		}
	}

	switch {
	case len(images) == 0:
		report.Quality = "Missing"
	case len(report.Issues) > 0:
		report.Quality = "Low"
	default:
		report.Quality = "High"
	}
	if len(report.Issues) > 0 {
		return steps.StatusWarning, report, nil
	}
	return steps.StatusCompleted, report, nil
}

func resolutions(images []types.ProductImage) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, img := range images {
		if img.Width <= 0 || img.Height <= 0 {
			continue
		}
		r := fmt.Sprintf("%dx%d", img.Width, img.Height)
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

func (o *Orchestrator) verifySpecs(_ context.Context, run *Run) (steps.Status, any, error) {
	product := run.Request.ProductData()
	raw := product.RawData.SpecList()
	usable, defaulted := generation.ProductSpecs(product)

	filled := 0
	for _, s := range raw {
		if strings.TrimSpace(s.Value) != "" {
			filled++
		}
	}

	report := &SpecReport{
		SpecsValidated: len(raw),
		SpecsUsable:    len(usable),
		FilteredOut:    len(raw) - len(generation.FilterTechnicalSpecs(raw)),
		Fields:         make([]string, 0, len(usable)),
		UsedDefaults:   defaulted,
	}
	for _, s := range usable {
		report.Fields = append(report.Fields, s.Key)
	}
	if len(raw) > 0 {
		report.QualityScore = int(math.Round(float64(filled) / float64(len(raw)) * 100))
	}
	report.DataQuality = fmt.Sprintf("%d%%", report.QualityScore)
	if defaulted {
		report.Warnings++
	}
	if filled < len(raw) {
		report.Warnings++
	}

	if report.Warnings > 0 {
		return steps.StatusWarning, report, nil
	}
	return steps.StatusCompleted, report, nil
}

func (o *Orchestrator) checkCompliance(_ context.Context, run *Run) (steps.Status, any, error) {
	req := run.Request
	product := req.ProductData()
	listing := compliance.Listing{
		Title:  compliance.ListingTitle(req.ProductTitle, req.ModelNumber),
		Images: product.Images(),
	}
	report, err := compliance.Aggregate(req.Platforms, req.ComplianceAttributes(), listing)
	if err != nil {
		return steps.StatusFailed, nil, err
	}
	if report.TotalIssues > 0 {
		return steps.StatusWarning, report, nil
	}
	return steps.StatusCompleted, report, nil
}

func (o *Orchestrator) generateBanners(ctx context.Context, run *Run) (steps.Status, any, error) {
	product := run.Request.ProductData()
	results := o.fanOut(ctx, run.Request.Platforms, func(ctx context.Context, p types.Platform) PlatformArtifacts {
		out := PlatformArtifacts{Platform: p}
		outcome, err := o.gen.GenerateDetailed(ctx, product, p, types.SectionHero)
		if err != nil {
			out.Error = err.Error()
			return out
		}
		out.UsedFallback = outcome.UsedFallback

		ref, err := o.artifacts.Put(ctx, fmt.Sprintf("banners/%s/%s.html", product.ID, p), "text/html; charset=utf-8", []byte(outcome.Content))
		if err != nil {
			out.Error = err.Error()
			return out
		}
		out.ContentURL = ref.URL

		for _, format := range BannerFormats {
			var w, h int
			if _, err := fmt.Sscanf(format, "%dx%d", &w, &h); err != nil {
				out.Error = err.Error()
				return out
			}
			svg, err := renderArtwork(product, p, w, h)
			if err != nil {
				out.Error = err.Error()
				return out
			}
			ref, err := o.artifacts.Put(ctx, fmt.Sprintf("banners/%s/%s_%s.svg", product.ID, p, format), "image/svg+xml", svg)
			if err != nil {
				out.Error = err.Error()
				return out
			}
			out.URLs = append(out.URLs, ref.URL)
		}
		return out
	})

	output := &BannerOutput{Formats: BannerFormats, Platforms: results}
	for _, r := range results {
		if r.Error == "" {
			output.BannersCreated += len(r.URLs)
		}
	}
	return fanOutStatus(ctx, results, output)
}

func (o *Orchestrator) generateThumbnails(ctx context.Context, run *Run) (steps.Status, any, error) {
	product := run.Request.ProductData()
	results := o.fanOut(ctx, run.Request.Platforms, func(ctx context.Context, p types.Platform) PlatformArtifacts {
		out := PlatformArtifacts{Platform: p}
		outcome, err := o.gen.GenerateDetailed(ctx, product, p, types.SectionGallery)
		if err != nil {
			out.Error = err.Error()
			return out
		}
		out.UsedFallback = outcome.UsedFallback

		if strings.TrimSpace(outcome.Content) != "" {
			ref, err := o.artifacts.Put(ctx, fmt.Sprintf("thumbs/%s/%s/gallery.html", product.ID, p), "text/html; charset=utf-8", []byte(outcome.Content))
			if err != nil {
				out.Error = err.Error()
				return out
			}
			out.ContentURL = ref.URL
		}

		for _, size := range ThumbnailSizes {
			svg, err := renderArtwork(product, p, size, size)
			if err != nil {
				out.Error = err.Error()
				return out
			}
			ref, err := o.artifacts.Put(ctx, fmt.Sprintf("thumbs/%s/%s_%d.svg", product.ID, p, size), "image/svg+xml", svg)
			if err != nil {
				out.Error = err.Error()
				return out
			}
			out.URLs = append(out.URLs, ref.URL)
		}
		return out
	})

	output := &ThumbnailOutput{Platforms: results}
	for _, size := range ThumbnailSizes {
		output.Sizes = append(output.Sizes, fmt.Sprintf("%dx%d", size, size))
	}
	for _, r := range results {
		if r.Error == "" {
			output.ThumbnailsCreated += len(r.URLs)
		}
	}
	return fanOutStatus(ctx, results, output)
}

// fanOut runs fn for every platform concurrently, bounded by the configured
// concurrency. Results keep the order of targets.
func (o *Orchestrator) fanOut(ctx context.Context, targets []types.Platform, fn func(context.Context, types.Platform) PlatformArtifacts) []PlatformArtifacts {
	results := make([]PlatformArtifacts, len(targets))
	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, p := range targets {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = PlatformArtifacts{Platform: p, Error: fmt.Sprintf("panic: %v", r)}
				}
			}()
			results[i] = fn(ctx, p)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// fanOutStatus fails the step only when every platform failed.
func fanOutStatus(ctx context.Context, results []PlatformArtifacts, output any) (steps.Status, any, error) {
	if err := ctx.Err(); err != nil {
		return steps.StatusFailed, nil, err
	}
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	switch {
	case len(results) > 0 && failed == len(results):
		return steps.StatusFailed, nil, fmt.Errorf("all %d platforms failed: %s", failed, results[0].Error)
	case failed > 0:
		return steps.StatusWarning, output, nil
	}
	return steps.StatusCompleted, output, nil
}

func (o *Orchestrator) optimizeSEO(_ context.Context, run *Run) (steps.Status, any, error) {
	report, err := seo.Build(run.Request.Platforms, run.Request.Language, run.Request.ProductTitle, run.Request.ModelNumber)
	if err != nil {
		return steps.StatusFailed, nil, err
	}
	return steps.StatusCompleted, report, nil
}

func (o *Orchestrator) review(ctx context.Context, run *Run) (steps.Status, any, error) {
	if o.reviewMode == ReviewAuto {
		timer := time.NewTimer(o.reviewDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return steps.StatusFailed, nil, ctx.Err()
		case <-timer.C:
		}
		return steps.StatusCompleted, &ReviewOutput{
			Status:    ReviewAutoApproved,
			Reviewer:  "system",
			Timestamp: o.now(),
			Comments:  "Auto-approved for development environment",
		}, nil
	}

	ch := make(chan Decision, 1)
	o.mu.Lock()
	o.reviews[run.ID] = ch
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		if o.reviews[run.ID] == ch {
			delete(o.reviews, run.ID)
		}
		o.mu.Unlock()
	}()

	if _, err := o.transition(ctx, run.ID, func(r *Run) (RunStatus, error) {
		if r.Status == RunRunning {
			return RunAwaitingReview, nil
		}
		return r.Status, nil
	}); err != nil {
		return steps.StatusFailed, nil, err
	}
	o.publish(ctx, run.ID, events.ReviewRequested, run.Request)

	var d Decision
	select {
	case <-ctx.Done():
		return steps.StatusFailed, nil, ctx.Err()
	case d = <-ch:
	}

	if _, err := o.transition(context.WithoutCancel(ctx), run.ID, func(r *Run) (RunStatus, error) {
		if r.Status == RunAwaitingReview {
			return RunRunning, nil
		}
		return r.Status, nil
	}); err != nil {
		return steps.StatusFailed, nil, err
	}
	if d.skip {
		return steps.StatusSkipped, nil, nil
	}

	out := &ReviewOutput{
		Status:               ReviewApproved,
		Reviewer:             d.Reviewer,
		Timestamp:            o.now(),
		Comments:             d.Comments,
		RequiresManualReview: true,
	}
	if out.Reviewer == "" {
		out.Reviewer = "reviewer"
	}
	if !d.Approved {
		out.Status = ReviewRejected
		return steps.StatusWarning, out, nil
	}
	return steps.StatusCompleted, out, nil
}

func (o *Orchestrator) distribute(_ context.Context, run *Run) (steps.Status, any, error) {
	req := run.Request
	out := &DistributionOutput{
		Status:        DistributionSuccess,
		Timestamp:     o.now(),
		APIResponses:  make(map[types.Platform]string, len(req.Platforms)),
		PublishedURLs: []PublishedURL{},
	}

	if reason := withholdReason(run); reason != "" {
		out.Status = DistributionWithheld
		out.Reason = reason
		for _, p := range req.Platforms {
			out.APIResponses[p] = DistributionWithheld
		}
		return steps.StatusWarning, out, nil
	}

	for _, p := range req.Platforms {
		out.APIResponses[p] = "ok"
		out.PublishedURLs = append(out.PublishedURLs, PublishedURL{
			Platform: p,
			URL:      fmt.Sprintf(publishedURLFormat, p, url.PathEscape(req.ProductID)),
		})
	}
	out.PlatformsPublished = len(out.PublishedURLs)
	return steps.StatusCompleted, out, nil
}

// withholdReason explains why listings must not be published, or returns "".
func withholdReason(run *Run) string {
	res, ok := run.Step(steps.HumanReview)
	if !ok {
		return ""
	}
	switch res.Status {
	case steps.StatusFailed:
		return "review did not complete"
	case steps.StatusSkipped:
		return ""
	}
	var review ReviewOutput
	if err := res.Decode(&review); err != nil {
		return ""
	}
	if review.Status == ReviewRejected {
		if review.Comments != "" {
			return "rejected by " + review.Reviewer + ": " + review.Comments
		}
		return "rejected by " + review.Reviewer
	}
	return ""
}

type artwork struct {
	Width      int
	Height     int
	Image      string
	Title      string
	Color      string
	BandY      int
	BandHeight int
	FontSize   int
	TextX      int
	TextY      int
}

var artworkTemplate = template.Must(template.New("artwork").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
<rect width="{{.Width}}" height="{{.Height}}" fill="#ffffff"/>
{{- if .Image}}
<image href="{{.Image}}" x="0" y="0" width="{{.Width}}" height="{{.BandY}}" preserveAspectRatio="xMidYMid meet"/>
{{- end}}
<rect x="0" y="{{.BandY}}" width="{{.Width}}" height="{{.BandHeight}}" fill="{{.Color}}"/>
<text x="{{.TextX}}" y="{{.TextY}}" font-family="Arial, Helvetica, sans-serif" font-size="{{.FontSize}}" fill="#ffffff">{{.Title}}</text>
</svg>
`))

// renderArtwork draws a w x h SVG with the product image above a title band in
// the platform's color.
func renderArtwork(product *types.ProductData, p types.Platform, w, h int) ([]byte, error) {
	style, err := platforms.StyleFor(p)
	if err != nil {
		return nil, err
	}
	band := h / 5
	font := band / 3
	data := artwork{
		Width:      w,
		Height:     h,
		Title:      generation.Truncate("LG "+product.Title, max(w/font*2, 10)),
		Color:      style.Color,
		BandY:      h - band,
		BandHeight: band,
		FontSize:   font,
		TextX:      font,
		TextY:      h - band/2 + font/3,
	}
	if images := generation.ProductImages(product); len(images) > 0 {
		data.Image = images[0].Src
	} else if all := product.Images(); len(all) > 0 {
		data.Image = all[0].Src
	}

	var buf bytes.Buffer
	if err := artworkTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render artwork: %w", err)
	}
	return buf.Bytes(), nil
}
