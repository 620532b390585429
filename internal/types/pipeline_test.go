package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request PipelineRequest
		errMsg  string
	}{
		{
			name: "valid 3p request",
			request: PipelineRequest{
				ProductID:    "OLED65C47LA",
				ProductTitle: "OLED evo C4",
				Channel:      ChannelThirdParty,
				Platforms:    []Platform{PlatformAmazon, PlatformOtto},
			},
		},
		{
			name: "valid d2c request without platforms",
			request: PipelineRequest{
				ProductID:    "OLED65C47LA",
				ProductTitle: "OLED evo C4",
				Channel:      ChannelD2C,
			},
		},
		{
			name: "missing product id",
			request: PipelineRequest{
				ProductTitle: "OLED evo C4",
				Channel:      ChannelD2C,
			},
			errMsg: "Missing required fields: productId, productTitle, channel",
		},
		{
			name: "missing channel",
			request: PipelineRequest{
				ProductID:    "OLED65C47LA",
				ProductTitle: "OLED evo C4",
			},
			errMsg: "Missing required fields: productId, productTitle, channel",
		},
		{
			name: "3p without platforms",
			request: PipelineRequest{
				ProductID:    "OLED65C47LA",
				ProductTitle: "OLED evo C4",
				Channel:      ChannelThirdParty,
				Platforms:    []Platform{},
			},
			errMsg: "3P channel requires at least one platform",
		},
		{
			name: "unknown channel",
			request: PipelineRequest{
				ProductID:    "OLED65C47LA",
				ProductTitle: "OLED evo C4",
				Channel:      "retail",
			},
			errMsg: "invalid channel",
		},
		{
			name: "unknown platform",
			request: PipelineRequest{
				ProductID:    "OLED65C47LA",
				ProductTitle: "OLED evo C4",
				Channel:      ChannelThirdParty,
				Platforms:    []Platform{"walmart"},
			},
			errMsg: "unknown platform: walmart",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var reqErr *RequestError
			assert.ErrorAs(t, err, &reqErr)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPipelineRequest_Normalize(t *testing.T) {
	r := PipelineRequest{
		ProductID:    " OLED65C47LA ",
		ProductTitle: "OLED evo C4",
		Channel:      "3P",
		Platforms:    []Platform{"Amazon", "amazon", "otto"},
	}
	r.Normalize()

	assert.Equal(t, "OLED65C47LA", r.ProductID)
	assert.Equal(t, ChannelThirdParty, r.Channel)
	assert.Equal(t, []Platform{PlatformAmazon, PlatformOtto}, r.Platforms)
	assert.Equal(t, DefaultLanguage, r.Language)
	assert.Equal(t, DefaultCountryCode, r.CountryCode)
	assert.Equal(t, "OLED65C47LA", r.ModelNumber)
	assert.NoError(t, r.Validate())
}

func TestPipelineRequest_ComplianceAttributes(t *testing.T) {
	t.Run("request attributes win", func(t *testing.T) {
		r := PipelineRequest{
			ProductTitle: "OLED TV",
			Compliance:   &ComplianceAttributes{LUCIDNumber: "DE123", ProductCategory: "Laptop"},
			Product:      &ProductData{Compliance: &ComplianceAttributes{LUCIDNumber: "DE999"}},
		}
		attrs := r.ComplianceAttributes()
		assert.Equal(t, "DE123", attrs.LUCIDNumber)
		assert.Equal(t, "Laptop", attrs.ProductCategory)
	})

	t.Run("category falls back to title", func(t *testing.T) {
		r := PipelineRequest{ProductTitle: "OLED TV"}
		attrs := r.ComplianceAttributes()
		assert.Equal(t, "OLED TV", attrs.ProductCategory)
		assert.Empty(t, attrs.LUCIDNumber)
	})
}

func TestPipelineRequest_ProductData(t *testing.T) {
	r := PipelineRequest{ProductID: "P1", ProductTitle: "Soundbar", ModelNumber: "S95TR"}
	p := r.ProductData()
	assert.Equal(t, "P1", p.ID)
	assert.Equal(t, "Soundbar", p.Title)
	assert.Equal(t, "S95TR", p.ModelNumber)

	r.Product = &ProductData{Title: "Soundbar S95TR", CategoryName: "Audio"}
	p = r.ProductData()
	assert.Equal(t, "P1", p.ID)
	assert.Equal(t, "Soundbar S95TR", p.Title)
	assert.Equal(t, "Audio", p.CategoryName)
}
