// Package types provides type definitions for structured data used throughout the listing pipeline.
package types

import "strings"

// Platform identifies a marketplace that listings are generated for.
type Platform string

// Supported marketplaces.
const (
	PlatformMediaMarkt   Platform = "mediamarkt"
	PlatformSaturn       Platform = "saturn"
	PlatformAmazon       Platform = "amazon"
	PlatformOtto         Platform = "otto"
	PlatformGalaxus      Platform = "galaxus"
	PlatformKaufland     Platform = "kaufland"
	PlatformEbay         Platform = "ebay"
	PlatformShopee       Platform = "shopee"
	PlatformLazada       Platform = "lazada"
	PlatformTiktok       Platform = "tiktok"
	PlatformMercadoLibre Platform = "mercadolibre"
)

// AllPlatforms lists every supported marketplace in registry order.
var AllPlatforms = []Platform{
	PlatformMediaMarkt,
	PlatformSaturn,
	PlatformAmazon,
	PlatformOtto,
	PlatformGalaxus,
	PlatformKaufland,
	PlatformEbay,
	PlatformShopee,
	PlatformLazada,
	PlatformTiktok,
	PlatformMercadoLibre,
}

// ParsePlatform resolves a case-insensitive platform identifier.
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// Valid reports whether p is one of the supported marketplaces.
func (p Platform) Valid() bool {
	for _, known := range AllPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

func (p Platform) String() string { return string(p) }

// Channel is the sales channel a pipeline run targets.
type Channel string

const (
	// ChannelD2C is the brand's own storefront.
	ChannelD2C Channel = "d2c"
	// ChannelThirdParty is third-party marketplaces; requires at least one platform.
	ChannelThirdParty Channel = "3p"
)

// SectionKey names one content section of a product page.
type SectionKey string

// Content sections.
const (
	SectionHero           SectionKey = "hero"
	SectionGallery        SectionKey = "gallery"
	SectionFeatures       SectionKey = "features"
	SectionSpecifications SectionKey = "specifications"
	SectionBenefits       SectionKey = "benefits"
	SectionWarranty       SectionKey = "warranty"
	SectionFAQ            SectionKey = "faq"

	// SectionFull is the pseudo key for a single full-page template.
	SectionFull SectionKey = "full"
)

// DefaultSections are the sections tracked by default for every platform, in page order.
var DefaultSections = []SectionKey{
	SectionHero,
	SectionGallery,
	SectionFeatures,
	SectionSpecifications,
	SectionBenefits,
	SectionWarranty,
}

// AllSections is the consolidation order of every known section.
var AllSections = []SectionKey{
	SectionHero,
	SectionGallery,
	SectionFeatures,
	SectionSpecifications,
	SectionBenefits,
	SectionWarranty,
	SectionFAQ,
}

// ParseSection resolves a section key. SectionFull is not accepted.
func ParseSection(s string) (SectionKey, bool) {
	key := SectionKey(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllSections {
		if key == known {
			return key, true
		}
	}
	return "", false
}

// RuleKey identifies a regulatory compliance rule.
type RuleKey string

// Compliance rules known to the checker.
const (
	RuleLUCID               RuleKey = "LUCID"
	RuleWEEE                RuleKey = "WEEE"
	RuleEANGTIN             RuleKey = "EAN_GTIN"
	RuleGermanReturnAddress RuleKey = "GERMAN_RETURN_ADDRESS"
	RuleImpressum           RuleKey = "IMPRESSUM"
	RuleRFCTaxID            RuleKey = "RFC_TAX_ID"
	RuleWarrantyInfo        RuleKey = "WARRANTY_INFO"
)
