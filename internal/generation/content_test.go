package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/listing-pipeline/internal/llm"
	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/types"
)

const listingJSON = "```json\n" + `{
  "title": "LG OLED65C47LA | 65 Zoll OLED evo",
  "description": "Perfektes Schwarz.",
  "bulletPoints": ["α9 Prozessor", "Dolby Vision"],
  "seoKeywords": ["OLED TV", "LG"],
  "aeoSnippet": "Ja, der C4 unterstützt 144Hz.",
  "geoSummary": "Der LG C4 ist ein OLED-Fernseher.",
  "metaDescription": "LG OLED evo C4 kaufen."
}` + "\n```"

func TestGeneratePlatformContent_ParsesModelOutput(t *testing.T) {
	var prompt string
	client := &llm.StaticClient{Respond: func(p string, _ llm.ModelTier) (string, error) {
		prompt = p
		return listingJSON, nil
	}}

	content, err := GeneratePlatformContent(context.Background(), client, sampleProduct(), types.PlatformAmazon, ContentOptions{})
	require.NoError(t, err)

	assert.Equal(t, types.PlatformAmazon, content.Platform)
	assert.Equal(t, "LG OLED65C47LA | 65 Zoll OLED evo", content.Title)
	assert.Equal(t, []string{"α9 Prozessor", "Dolby Vision"}, content.BulletPoints)
	assert.False(t, content.UsedFallback)

	assert.Contains(t, prompt, "Amazon (Germany) in German")
	assert.Contains(t, prompt, `"bulletPoints"`)
	assert.Contains(t, prompt, "at most 200 characters")
}

func TestGeneratePlatformContent_FallsBack(t *testing.T) {
	tests := []struct {
		name   string
		client *llm.StaticClient
	}{
		{"model error", &llm.StaticClient{Err: errors.New("503")}},
		{"no json", &llm.StaticClient{Response: "Sorry, I cannot help."}},
		{"broken json", &llm.StaticClient{Response: `{"title": }`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := GeneratePlatformContent(context.Background(), tt.client, sampleProduct(), types.PlatformOtto, ContentOptions{})
			require.NoError(t, err)
			assert.True(t, content.UsedFallback)
			assert.Equal(t, "LG OLED evo C4 65 Zoll 4K Smart TV | OLED65C47LA", content.Title)
		})
	}
}

func TestGeneratePlatformContent_UnknownPlatform(t *testing.T) {
	_, err := GeneratePlatformContent(context.Background(), &llm.StaticClient{}, sampleProduct(), "walmart", ContentOptions{})
	var unknown *platforms.UnknownPlatformError
	assert.ErrorAs(t, err, &unknown)
}

func TestParsePlatformContent_MissingFieldsAreEmpty(t *testing.T) {
	content, err := ParsePlatformContent(`noise {"title": "T"} trailing`, types.PlatformEbay)
	require.NoError(t, err)
	assert.Equal(t, "T", content.Title)
	assert.Empty(t, content.Description)
	assert.NotNil(t, content.BulletPoints)
	assert.NotNil(t, content.SEOKeywords)
}

func TestFallbackPlatformContent(t *testing.T) {
	req := platforms.MustLookup(types.PlatformGalaxus)
	p := sampleProduct()

	content := FallbackPlatformContent(p, req)

	assert.Equal(t, p.RawData.Features, content.BulletPoints)
	assert.LessOrEqual(t, len(content.BulletPoints), req.BulletPointsMax)
	assert.Equal(t, []string{"OLED TV", "OLED65C47LA", "LG", "galaxus", "α9 AI Processor Gen7", "Dolby Vision & Atmos", "webOS 24"}, content.SEOKeywords)
	assert.Equal(t, "The OLED evo C4 65 Zoll 4K Smart TV (OLED65C47LA) is LG's oled tv. α9 AI Processor Gen7 Dolby Vision & Atmos", content.AEOSnippet)
	assert.LessOrEqual(t, len([]rune(content.MetaDescription)), MetaDescriptionMax)
	assert.Equal(t, p.Description, content.Description)
}

func TestFallbackPlatformContent_SparseProduct(t *testing.T) {
	p := &types.ProductData{ID: "x", Title: "Soundbar S95", ModelNumber: "S95TR"}
	content := FallbackPlatformContent(p, platforms.MustLookup(types.PlatformShopee))

	assert.Equal(t, "Soundbar S95", content.Description)
	assert.Empty(t, content.BulletPoints)
	assert.Equal(t, []string{"S95TR", "LG", "shopee"}, content.SEOKeywords)
	assert.Equal(t, "Buy LG Soundbar S95 (S95TR).", content.MetaDescription)
}
