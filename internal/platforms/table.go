package platforms

import "github.com/jonathan/listing-pipeline/internal/types"

var registry = map[types.Platform]Requirements{
	types.PlatformMediaMarkt: {
		Platform:             types.PlatformMediaMarkt,
		TitleMaxLength:       150,
		TitleMobileMaxLength: 80,
		TitleFormat:          "[Brand] [Model Name] [Key Spec] [Product Type]",
		DescriptionMaxLength: 2000,
		DescriptionFormat:    FormatPlain,
		BulletPointsMin:      3,
		BulletPointsMax:      5,
		Images: ImageRequirements{
			MinResolution: "1000x1000 px (zoom trigger)",
			Background:    "Pure white (RGB 255,255,255)",
			MaxSize:       "10MB",
			MinQuantity:   3,
			MaxQuantity:   5,
		},
		Tone:       "Professional and technical. German buyers want hard data (refresh rate, wattage, ports).",
		Keywords:   []string{"Technik", "Premium", "Qualität", "Innovation"},
		Philosophy: "Trust & Professionalism. Brick-and-mortar giants - listings must look as official as in-store products.",
		Restrictions: []string{
			"No all-caps",
			`No promotional text ("Best Price")`,
			`No subjective adjectives ("Fast")`,
			"Keep under 80 chars for mobile optimization",
		},
		Compliance: []string{
			"EAN/GTIN (13-digit) mandatory - must match official manufacturer barcode",
			"German return address required",
			"MMS Taxonomy category mapping required",
		},
		GlobalCompliance: []types.RuleKey{types.RuleLUCID, types.RuleWEEE, types.RuleEANGTIN, types.RuleGermanReturnAddress},
		CategoryMapping:  CategoryMapping{Required: true, System: "MMS Taxonomy"},
		SEONotes:         "Focus on technical specifications. Plain text safer, basic HTML accepted for long descriptions.",
		Style:            Style{Name: "MediaMarkt", Color: "#DF0000", Locale: "de", Country: "Germany"},
		SEOKeywords:      []string{"Technik", "Innovation"},
	},
	types.PlatformSaturn: {
		Platform:             types.PlatformSaturn,
		TitleMaxLength:       150,
		TitleMobileMaxLength: 80,
		TitleFormat:          "[Brand] [Model Name] [Key Spec] [Product Type]",
		DescriptionMaxLength: 2000,
		DescriptionFormat:    FormatPlain,
		BulletPointsMin:      3,
		BulletPointsMax:      5,
		Images: ImageRequirements{
			MinResolution: "1000x1000 px",
			Background:    "Pure white (RGB 255,255,255)",
			MaxSize:       "10MB",
			MinQuantity:   3,
			MaxQuantity:   5,
		},
		Tone:             "Tech-savvy and modern. Same backend as MediaMarkt (MMS Marketplace).",
		Keywords:         []string{"Tech", "Smart", "Leistung", "Entertainment"},
		Philosophy:       "Trust & Professionalism. Same platform as MediaMarkt - upload once, appear on both.",
		Restrictions:     []string{"No all-caps", "No promotional text", "No subjective adjectives"},
		Compliance:       []string{"EAN/GTIN (13-digit) mandatory", "German return address required"},
		GlobalCompliance: []types.RuleKey{types.RuleLUCID, types.RuleWEEE, types.RuleEANGTIN, types.RuleGermanReturnAddress},
		CategoryMapping:  CategoryMapping{Required: true, System: "MMS Taxonomy"},
		SEONotes:         "Technical specs focused. Same requirements as MediaMarkt.",
		Style:            Style{Name: "Saturn", Color: "#F79422", Locale: "de", Country: "Germany"},
		SEOKeywords:      []string{"Tech", "Smart"},
	},
	types.PlatformAmazon: {
		Platform:             types.PlatformAmazon,
		TitleMaxLength:       200,
		TitleFormat:          "[Brand] [Series] [Model] [Product Type] [Key Specs (Size, Color, Tech)]",
		DescriptionMaxLength: 2000,
		DescriptionFormat:    FormatHTML,
		BulletPointsMin:      5,
		BulletPointsMax:      5,
		BulletPointFormat:    "CAPS LOCK BENEFIT - followed by explanation",
		Images: ImageRequirements{
			MinResolution: "1500x1500 px",
			Background:    "Pure white (RGB 255,255,255)",
			MinQuantity:   1,
			MaxQuantity:   9,
		},
		Tone:       "Conversion-focused. START WITH CAPS LOCK BENEFIT - followed by explanation.",
		Keywords:   []string{"Premium", "Best Seller", "Top Rated", "Award-winning"},
		Philosophy: "Conversion is King. Algorithm favors listings that get clicks and sales.",
		Restrictions: []string{
			"No auto-translation - use German terms (Handy vs Smartphone based on keyword volume)",
			"Main image: NO text/badges, product fills 85%+",
			"Secondary images: infographics highly effective",
		},
		Compliance: []string{
			"EAN/GTIN mandatory",
			"Impressum (business address/contact) required on seller profile",
			"A+ Content highly recommended for electronics",
		},
		GlobalCompliance:  []types.RuleKey{types.RuleLUCID, types.RuleWEEE, types.RuleEANGTIN, types.RuleImpressum},
		CategoryMapping:   CategoryMapping{Required: true, System: "Amazon Browse Nodes"},
		SEONotes:          "German localization critical. Use comparison charts for models. Infographics for technical features.",
		Style:             Style{Name: "Amazon", Color: "#FF9900", Locale: "de", Country: "Germany"},
		SEOKeywords:       []string{"Best Seller", "Top Rated"},
		SEORecommendation: "Use German terms (Handy vs Smartphone) based on keyword volume",
		Advisory:          "Amazon: Consider A+ Content for better visibility",
	},
	types.PlatformOtto: {
		Platform:             types.PlatformOtto,
		TitleMaxLength:       120,
		TitleFormat:          "[Brand] [Product Type] [Model] [Major Feature]",
		DescriptionMaxLength: 1500,
		DescriptionFormat:    FormatPlain,
		BulletPointsMin:      5,
		BulletPointsMax:      5,
		BulletPointFormat:    `Lifestyle benefit + spec combined (e.g., "Energy efficient A++ rating saves power")`,
		Images: ImageRequirements{
			MinResolution: "1500px width recommended",
			Background:    "Strict pure white/grey. No shadows, no props, no logos.",
			MinQuantity:   3,
			MaxQuantity:   8,
		},
		Tone:       "Curated quality. Lifestyle benefits + specs combined.",
		Keywords:   []string{"Zuhause", "Familie", "Lifestyle", "Qualität"},
		Philosophy: "Curated Quality. Otto sees itself as a catalog, not a bazaar. Manual data quality checks.",
		Restrictions: []string{
			"No duplicate info - check system auto-concatenation",
			"No repeated brand in model name if system auto-adds",
			"Ethical sourcing declaration required",
		},
		Compliance: []string{
			"EAN/GTIN mandatory",
			"German warehouse for returns often required",
			"Sustainability and fair labor declaration",
			"Specific materials may be banned (certain furs, sandblasted denim)",
		},
		GlobalCompliance:  []types.RuleKey{types.RuleLUCID, types.RuleWEEE, types.RuleEANGTIN, types.RuleGermanReturnAddress},
		CategoryMapping:   CategoryMapping{Required: true, System: "Otto Partner Connect Categories"},
		SEONotes:          `Exactly 5 bullets recommended. Example: "Energy efficient A++ rating saves power".`,
		Style:             Style{Name: "Otto", Color: "#E63312", Locale: "de", Country: "Germany"},
		SEOKeywords:       []string{"Zuhause", "Familie", "Lifestyle"},
		SEORecommendation: "Combine lifestyle benefits with specs in bullet points",
	},
	types.PlatformGalaxus: {
		Platform:             types.PlatformGalaxus,
		TitleMaxLength:       60,
		TitleFormat:          "[Model Name] [Key Spec] - DO NOT include Brand or Category separately",
		DescriptionMaxLength: 2000,
		DescriptionFormat:    FormatPlain,
		BulletPointsMax:      5,
		Images: ImageRequirements{
			MinResolution: "600x600 px minimum, 1000px+ preferred",
			Background:    "Clean, no watermarks or text",
			MinQuantity:   1,
			MaxQuantity:   10,
		},
		Tone:       "No Bullsh*t. Clean data only. No marketing fluff.",
		Keywords:   []string{"Präzision", "Qualität", "Schweizer Standard"},
		Philosophy: "No marketing fluff. Community will mock keyword-stuffing. Algorithm flags it.",
		Restrictions: []string{
			"Keep titles SHORT - system auto-generates full display title from attributes",
			"No watermarks or promotional text on images - INSTANT REJECTION",
			`Bad: "Samsung Galaxy S23 Ultra Smartphone 5G 256GB Phantom Black Android Best Camera"`,
			`Good: "Galaxy S23 Ultra"`,
		},
		Compliance: []string{
			"GTIN/EAN used for product clustering",
			"May be grouped with other sellers on same product page",
			"Detailed attribute sheets critical - fill completely",
		},
		GlobalCompliance:  []types.RuleKey{types.RuleEANGTIN},
		CategoryMapping:   CategoryMapping{Required: true, System: "Galaxus Category Tree"},
		SEONotes:          `Most critical: fill detailed specs. Missing "Panel Type" = vanish from OLED filter.`,
		PriceHistory:      true,
		Style:             Style{Name: "Galaxus", Color: "#0066CC", Locale: "de", Country: "Germany"},
		SEOKeywords:       []string{"Präzision", "Schweizer Standard"},
		SEORecommendation: "Keep titles minimal - system auto-generates from attributes",
		Advisory:          "Galaxus: Fill all detailed attribute fields for filter visibility",
	},
	types.PlatformKaufland: {
		Platform:             types.PlatformKaufland,
		TitleMaxLength:       200,
		TitleFormat:          "[Brand] [Model] [Product Type] [Key Specs]",
		DescriptionMaxLength: 4000,
		DescriptionFormat:    FormatHTML,
		BulletPointsMin:      5,
		BulletPointsMax:      10,
		Images: ImageRequirements{
			MinResolution: "1024px longest side",
			Background:    "White mandatory for Google Shopping feed approval",
			MinQuantity:   1,
			MaxQuantity:   10,
		},
		Tone:         "SEO-friendly. High volume marketplace heavily indexed by Google Shopping.",
		Keywords:     []string{"Original", "Neu", "OVP", "Garantie", "ohne Simlock"},
		Philosophy:   "High Volume / SEO. Heavily indexed by Google Shopping.",
		Restrictions: []string{"Must use relevant keywords - Google indexes heavily", "Incorrect categorization tanks visibility"},
		Compliance: []string{
			"EAN/GTIN mandatory",
			"LUCID Packaging Register number REQUIRED - account blocked immediately without it",
			"Kaufland category tree mapping required",
		},
		GlobalCompliance:  []types.RuleKey{types.RuleLUCID, types.RuleWEEE, types.RuleEANGTIN},
		CategoryMapping:   CategoryMapping{Required: true, System: "Kaufland Category Tree"},
		SEONotes:          "HTML allowed in description. Use bold headers to separate sections (Display, Battery). Similar to Amazon keyword strategy.",
		Style:             Style{Name: "Kaufland", Color: "#E10915", Locale: "de", Country: "Germany"},
		SEOKeywords:       []string{"Original", "OVP", "Garantie"},
		SEORecommendation: "Use HTML bold headers for section separation",
		Advisory:          "Kaufland: LUCID number strictly enforced - account may be blocked without it",
	},
	types.PlatformEbay: {
		Platform:             types.PlatformEbay,
		TitleMaxLength:       80,
		TitleFormat:          "[Brand] [Model] [Key Feature] [Condition]",
		DescriptionMaxLength: 4000,
		DescriptionFormat:    FormatHTML,
		BulletPointsMax:      10,
		Images: ImageRequirements{
			MinResolution: "1600x1600 px",
			Background:    "White preferred",
			MinQuantity:   1,
			MaxQuantity:   12,
			AllowText:     true,
		},
		Tone:             "Value-focused, detailed, trust-building.",
		Keywords:         []string{"Original", "Neu", "OVP", "Garantie", "Händler"},
		Philosophy:       "Trust and value. Established marketplace with buyer protection.",
		Restrictions:     []string{},
		Compliance:       []string{"German seller requirements apply", "Return policy compliance"},
		GlobalCompliance: []types.RuleKey{types.RuleLUCID, types.RuleWEEE, types.RuleEANGTIN},
		CategoryMapping:  CategoryMapping{Required: true, System: "eBay Categories"},
		SEONotes:         "Detailed descriptions help with search visibility.",
		Style:            Style{Name: "eBay", Color: "#0064D2", Locale: "de", Country: "Germany"},
		SEOKeywords:      []string{"Original", "Händler"},
	},
	types.PlatformShopee: {
		Platform:             types.PlatformShopee,
		TitleMaxLength:       120,
		TitleFormat:          "[Brand] [Model] [Key Feature]",
		DescriptionMaxLength: 3000,
		DescriptionFormat:    FormatPlain,
		BulletPointsMax:      5,
		Images: ImageRequirements{
			MinResolution:   "800x800 px",
			Background:      "Clean background",
			MinQuantity:     3,
			MaxQuantity:     9,
			AllowWatermarks: true,
			AllowText:       true,
		},
		Tone:             "Casual, engaging, deal-focused.",
		Keywords:         []string{"Flash Sale", "Best Price", "Free Shipping", "Official"},
		Philosophy:       "Deal-oriented marketplace.",
		Restrictions:     []string{},
		Compliance:       []string{},
		GlobalCompliance: []types.RuleKey{},
		CategoryMapping:  CategoryMapping{Required: true, System: "Shopee Categories"},
		SEONotes:         "Keywords for deals and promotions work well.",
		Style:            Style{Name: "Shopee", Color: "#EE4D2D", Locale: "th", Country: "Thailand"},
		SEOKeywords:      []string{"Flash Sale", "Best Price"},
	},
	types.PlatformLazada: {
		Platform:             types.PlatformLazada,
		TitleMaxLength:       255,
		TitleFormat:          "[Brand] [Category] [Model] [Specs]",
		DescriptionMaxLength: 5000,
		DescriptionFormat:    FormatHTML,
		BulletPointsMax:      8,
		Images: ImageRequirements{
			MinResolution: "800x800 px",
			Background:    "White preferred",
			MinQuantity:   3,
			MaxQuantity:   8,
			AllowText:     true,
		},
		Tone:             "Comprehensive, feature-rich, SEO-optimized.",
		Keywords:         []string{"Official Store", "Authentic", "Warranty", "Best Deal"},
		Philosophy:       "Feature-rich listings with comprehensive details.",
		Restrictions:     []string{},
		Compliance:       []string{"Official store verification helps"},
		GlobalCompliance: []types.RuleKey{},
		CategoryMapping:  CategoryMapping{Required: true, System: "Lazada Categories"},
		SEONotes:         "Long-form content performs well.",
		Style:            Style{Name: "Lazada", Color: "#0F146D", Locale: "th", Country: "Thailand"},
		SEOKeywords:      []string{"Official Store", "Authentic"},
	},
	types.PlatformTiktok: {
		Platform:             types.PlatformTiktok,
		TitleMaxLength:       100,
		TitleFormat:          "[Brand] [Product] [Trending Feature]",
		DescriptionMaxLength: 1000,
		DescriptionFormat:    FormatPlain,
		BulletPointsMax:      5,
		Images: ImageRequirements{
			MinResolution:   "800x800 px",
			Background:      "Lifestyle-oriented",
			MinQuantity:     1,
			MaxQuantity:     9,
			AllowWatermarks: true,
			AllowText:       true,
		},
		Tone:             "Trendy, viral-friendly, short and punchy.",
		Keywords:         []string{"Trending", "Viral", "Must-have", "TikTok Made Me Buy"},
		Philosophy:       "Social commerce with viral potential.",
		Restrictions:     []string{"Keep content authentic and relatable"},
		Compliance:       []string{},
		GlobalCompliance: []types.RuleKey{},
		CategoryMapping:  CategoryMapping{Required: true, System: "TikTok Shop Categories"},
		SEONotes:         "Hashtags and trending sounds important. Video content preferred.",
		Style:            Style{Name: "TikTok Shop", Color: "#000000", Locale: "th", Country: "Thailand"},
		SEOKeywords:      []string{"Trending", "Viral"},
	},
	types.PlatformMercadoLibre: {
		Platform:             types.PlatformMercadoLibre,
		TitleMaxLength:       60,
		TitleMobileMaxLength: 55,
		TitleFormat:          "[Marca] [Modelo] [Característica Principal] [Especificación]",
		DescriptionMaxLength: 50000,
		DescriptionFormat:    FormatPlain,
		BulletPointsMin:      3,
		BulletPointsMax:      7,
		Images: ImageRequirements{
			MinResolution: "1200x1200 px",
			Background:    "Pure white background mandatory",
			MaxSize:       "10MB",
			MinQuantity:   1,
			MaxQuantity:   12,
		},
		Tone:       "Informative and detailed. Latin American buyers value thorough product information.",
		Keywords:   []string{"Original", "Garantía", "Envío Gratis", "Oficial", "Nuevo"},
		Philosophy: "Trust through detail. Comprehensive listings with complete specifications perform best.",
		Restrictions: []string{
			"No all-caps titles",
			`No promotional text in title ("El Mejor", "Oferta")`,
			"No special characters or emojis",
			"Title must accurately describe the product",
			"No competitor brand mentions",
		},
		Compliance: []string{
			"RFC (Tax ID) required for Mexico sellers",
			"Official store verification recommended",
			"Warranty information must be accurate",
			"Product certification may be required for electronics",
		},
		GlobalCompliance: []types.RuleKey{types.RuleRFCTaxID, types.RuleWarrantyInfo},
		CategoryMapping:  CategoryMapping{Required: true, System: "Mercado Libre Category Tree"},
		SEONotes:         "Ficha técnica (spec sheet) heavily indexed. Complete all attributes. Use regional Spanish (Mexican Spanish for MX). Preguntas frecuentes (FAQ) section highly valued.",
		Style:            Style{Name: "MercadoLibre", Color: "#FFE600", Locale: "es", Country: "Mexico"},
		SEOKeywords:      []string{"Original", "Garantía"},
	},
}
