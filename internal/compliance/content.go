package compliance

import (
	"fmt"
	"unicode/utf8"

	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// Listing is the content a platform check measures. Zero-valued fields are
// treated as not yet produced and pass.
type Listing struct {
	Title       string
	Description string
	Bullets     []string
	Images      []types.ProductImage
}

// ListingTitle is the title shape checked before content is generated.
func ListingTitle(productTitle, modelNumber string) string {
	return fmt.Sprintf("LG %s | %s", productTitle, modelNumber)
}

// LengthCheck compares a text length against a limit.
type LengthCheck struct {
	Status  Status `json:"status"`
	Max     int    `json:"max"`
	Current int    `json:"current"`
}

// BulletCheck compares a bullet count against the platform bounds.
type BulletCheck struct {
	Status  Status `json:"status"`
	Min     int    `json:"min,omitempty"`
	Max     int    `json:"max"`
	Current int    `json:"current"`
}

// ImageCheck compares supplied images against the platform's image rules.
type ImageCheck struct {
	Status        Status `json:"status"`
	MinResolution string `json:"minResolution"`
	MinQuantity   int    `json:"minQuantity"`
	Current       int    `json:"current"`
	Undersized    int    `json:"undersized,omitempty"`
}

// ContentCompliance is the content-limit part of a platform check.
type ContentCompliance struct {
	TitleLength       LengthCheck `json:"titleLength"`
	DescriptionLength LengthCheck `json:"descriptionLength"`
	BulletPoints      BulletCheck `json:"bulletPoints"`
	ImageRequirements ImageCheck  `json:"imageRequirements"`
}

// CheckContent measures a listing against the platform's content limits.
// Lengths are counted in characters, not bytes.
func CheckContent(req platforms.Requirements, l Listing) ContentCompliance {
	cc := ContentCompliance{
		TitleLength: LengthCheck{Status: StatusPass, Max: req.TitleMaxLength, Current: utf8.RuneCountInString(l.Title)},
		DescriptionLength: LengthCheck{
			Status:  StatusPass,
			Max:     req.DescriptionMaxLength,
			Current: utf8.RuneCountInString(l.Description),
		},
		BulletPoints: BulletCheck{Status: StatusPass, Min: req.BulletPointsMin, Max: req.BulletPointsMax, Current: len(l.Bullets)},
		ImageRequirements: ImageCheck{
			Status:        StatusPass,
			MinResolution: req.Images.MinResolution,
			MinQuantity:   req.Images.MinQuantity,
			Current:       len(l.Images),
		},
	}

	if cc.TitleLength.Current > cc.TitleLength.Max {
		cc.TitleLength.Status = StatusFail
	}
	if cc.DescriptionLength.Current > cc.DescriptionLength.Max {
		cc.DescriptionLength.Status = StatusFail
	}
	if l.Bullets != nil && (cc.BulletPoints.Current < cc.BulletPoints.Min || cc.BulletPoints.Current > cc.BulletPoints.Max) {
		cc.BulletPoints.Status = StatusFail
	}
	if l.Images != nil {
		minPx := req.MinImagePixels()
		for _, img := range l.Images {
			if img.Width > 0 && img.Height > 0 && max(img.Width, img.Height) < minPx {
				cc.ImageRequirements.Undersized++
			}
		}
		if cc.ImageRequirements.Current < cc.ImageRequirements.MinQuantity || cc.ImageRequirements.Undersized > 0 {
			cc.ImageRequirements.Status = StatusWarning
		}
	}

	return cc
}

// issues lists the failed content checks as readable messages.
func (cc ContentCompliance) issues() []string {
	var out []string
	if cc.TitleLength.Status == StatusFail {
		out = append(out, fmt.Sprintf("Title exceeds max length (%d/%d)", cc.TitleLength.Current, cc.TitleLength.Max))
	}
	if cc.DescriptionLength.Status == StatusFail {
		out = append(out, fmt.Sprintf("Description exceeds max length (%d/%d)", cc.DescriptionLength.Current, cc.DescriptionLength.Max))
	}
	if cc.BulletPoints.Status == StatusFail {
		out = append(out, fmt.Sprintf("Bullet point count %d outside %d-%d", cc.BulletPoints.Current, cc.BulletPoints.Min, cc.BulletPoints.Max))
	}
	return out
}

func (cc ContentCompliance) warnings() int {
	if cc.ImageRequirements.Status == StatusWarning {
		return 1
	}
	return 0
}
