package generation

import "github.com/jonathan/listing-pipeline/internal/types"

// DefaultLocale is used for locales without translations.
const DefaultLocale = "en"

var sectionTitles = map[string]map[types.SectionKey]string{
	"de": {
		types.SectionFeatures:       "Hauptmerkmale",
		types.SectionSpecifications: "Technische Daten",
		types.SectionBenefits:       "Ihre Vorteile",
		types.SectionWarranty:       "Garantie & Service",
		types.SectionGallery:        "Produktgalerie",
		types.SectionFAQ:            "Häufig gestellte Fragen",
	},
	"en": {
		types.SectionFeatures:       "Key Features",
		types.SectionSpecifications: "Technical Specifications",
		types.SectionBenefits:       "Your Benefits",
		types.SectionWarranty:       "Warranty & Service",
		types.SectionGallery:        "Product Gallery",
		types.SectionFAQ:            "Frequently Asked Questions",
	},
	"es": {
		types.SectionFeatures:       "Características Principales",
		types.SectionSpecifications: "Especificaciones Técnicas",
		types.SectionBenefits:       "Sus Beneficios",
		types.SectionWarranty:       "Garantía y Servicio",
		types.SectionGallery:        "Galería de Productos",
		types.SectionFAQ:            "Preguntas Frecuentes",
	},
	"th": {
		types.SectionFeatures:       "คุณสมบัติเด่น",
		types.SectionSpecifications: "ข้อมูลจำเพาะทางเทคนิค",
		types.SectionBenefits:       "ข้อดีของคุณ",
		types.SectionWarranty:       "การรับประกันและบริการ",
		types.SectionGallery:        "แกลเลอรี่สินค้า",
		types.SectionFAQ:            "คำถามที่พบบ่อย",
	},
}

// SectionTitle returns the localized heading of a section. The hero section
// has no heading and returns "".
func SectionTitle(locale string, section types.SectionKey) string {
	titles, ok := sectionTitles[locale]
	if !ok {
		titles = sectionTitles[DefaultLocale]
	}
	return titles[section]
}

// SupportedLocale reports whether section titles exist for locale.
func SupportedLocale(locale string) bool {
	_, ok := sectionTitles[locale]
	return ok
}

// Label keys used by the template pages.
const (
	labelPartner       = "partner"
	labelModel         = "model"
	labelPremium       = "premium"
	labelWarranty      = "warranty"
	labelShipping      = "shipping"
	labelWarrantyTitle = "warrantyTitle"
	labelWarrantyDesc  = "warrantyDesc"
)

var labels = map[string]map[string]string{
	"de": {
		labelPartner:       "Offizieller LG Partner",
		labelModel:         "Modell",
		labelPremium:       "Premium-Qualität von LG Electronics",
		labelWarranty:      "2 Jahre Garantie",
		labelShipping:      "Kostenloser Versand",
		labelWarrantyTitle: "2 Jahre Herstellergarantie",
		labelWarrantyDesc:  "Ihr Kauf ist durch die offizielle LG Herstellergarantie abgesichert. Bei Fragen oder Problemen steht Ihnen unser Kundenservice zur Verfügung.",
	},
	"en": {
		labelPartner:       "Official LG Partner",
		labelModel:         "Model",
		labelPremium:       "Premium quality from LG Electronics",
		labelWarranty:      "2 Year Warranty",
		labelShipping:      "Free Shipping",
		labelWarrantyTitle: "2 Year Manufacturer Warranty",
		labelWarrantyDesc:  "Your purchase is protected by official LG manufacturer warranty. Our customer service team is available to assist you.",
	},
	"es": {
		labelPartner:       "Distribuidor Oficial LG",
		labelModel:         "Modelo",
		labelPremium:       "Calidad premium de LG Electronics",
		labelWarranty:      "2 Años de Garantía",
		labelShipping:      "Envío Gratis",
		labelWarrantyTitle: "2 Años de Garantía del Fabricante",
		labelWarrantyDesc:  "Su compra está protegida por la garantía oficial de LG. Nuestro equipo de servicio al cliente está disponible para ayudarle.",
	},
	"th": {
		labelPartner:       "ตัวแทนจำหน่ายอย่างเป็นทางการ LG",
		labelModel:         "รุ่น",
		labelPremium:       "คุณภาพระดับพรีเมียมจาก LG Electronics",
		labelWarranty:      "รับประกัน 2 ปี",
		labelShipping:      "จัดส่งฟรี",
		labelWarrantyTitle: "รับประกันจากผู้ผลิต 2 ปี",
	},
}

// label returns the localized label, falling back to English.
func label(locale, key string) string {
	if v, ok := labels[locale][key]; ok {
		return v
	}
	return labels[DefaultLocale][key]
}
