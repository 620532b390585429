package types

import (
	"fmt"
	"sort"
)

// ProductImage is one image attached to a product.
type ProductImage struct {
	Src    string `json:"src"`
	Alt    string `json:"alt,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Type   string `json:"type,omitempty"`
}

// USP is a unique selling point.
type USP struct {
	Headline    string `json:"headline"`
	Description string `json:"description,omitempty"`
}

// FAQEntry is a question/answer pair shown on the product page.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// BasicInfo carries descriptive product facts scraped from the brand site.
type BasicInfo struct {
	ProductName string `json:"productName,omitempty"`
	Headline    string `json:"headline,omitempty"`
	ScreenSize  string `json:"screenSize,omitempty"`
	Series      string `json:"series,omitempty"`
}

// RawData holds unstructured product information.
type RawData struct {
	Specifications map[string]any `json:"specifications,omitempty"`
	Features       []string       `json:"features,omitempty"`
	Highlights     []string       `json:"highlights,omitempty"`
	USPs           []USP          `json:"usps,omitempty"`
	BasicInfo      BasicInfo      `json:"basicInfo,omitempty"`
	FAQ            []FAQEntry     `json:"faq,omitempty"`
}

// ProductData is the product record content is generated from.
type ProductData struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	ModelNumber     string                `json:"modelNumber,omitempty"`
	CategoryName    string                `json:"categoryName,omitempty"`
	Description     string                `json:"description,omitempty"`
	Price           string                `json:"price,omitempty"`
	Currency        string                `json:"currency,omitempty"`
	MainImage       *ProductImage         `json:"mainImage,omitempty"`
	GalleryImages   []ProductImage        `json:"galleryImages,omitempty"`
	LifestyleImages []ProductImage        `json:"lifestyleImages,omitempty"`
	RawData         RawData               `json:"rawData,omitempty"`
	Compliance      *ComplianceAttributes `json:"compliance,omitempty"`
}

// Images returns the main, gallery and lifestyle images in that order.
func (p *ProductData) Images() []ProductImage {
	var images []ProductImage
	if p.MainImage != nil && p.MainImage.Src != "" {
		images = append(images, *p.MainImage)
	}
	images = append(images, p.GalleryImages...)
	images = append(images, p.LifestyleImages...)
	return images
}

// SpecPair is one specification row.
type SpecPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SpecList returns the specification map as rows sorted by key.
func (r RawData) SpecList() []SpecPair {
	keys := make([]string, 0, len(r.Specifications))
	for k := range r.Specifications {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]SpecPair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, SpecPair{Key: k, Value: fmt.Sprint(r.Specifications[k])})
	}
	return pairs
}

// ComplianceAttributes are the regulatory facts a product (and its seller) carries.
type ComplianceAttributes struct {
	EAN                    string `json:"ean,omitempty"`
	LUCIDNumber            string `json:"lucidNumber,omitempty"`
	WEEENumber             string `json:"weeeNumber,omitempty"`
	ProductCategory        string `json:"productCategory,omitempty"`
	HasGermanReturnAddress bool   `json:"hasGermanReturnAddress"`
	HasImpressum           bool   `json:"hasImpressum"`
	RFCTaxID               string `json:"rfcTaxId,omitempty"`
	HasWarrantyInfo        bool   `json:"hasWarrantyInfo"`
}
