package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/types"
)

func echoGenerator() Generator {
	return GeneratorFunc(func(_ context.Context, _ *types.ProductData, p types.Platform, s types.SectionKey) (string, error) {
		return "<div>" + string(p) + "/" + string(s) + "</div>", nil
	})
}

func TestHandleContentRequest_Consolidate(t *testing.T) {
	resp, err := HandleContentRequest(context.Background(), echoGenerator(), ContentRequest{
		Product:  sampleProduct(),
		Platform: types.PlatformOtto,
		Action:   ActionConsolidate,
		SectionHTML: map[types.SectionKey]string{
			types.SectionFeatures: "<div>F</div>",
			types.SectionHero:     "<div>H</div>",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "consolidated", resp.Section)
	assert.Equal(t, []types.SectionKey{types.SectionHero, types.SectionFeatures}, resp.IncludedSections)
	assert.Contains(t, resp.HTML, "<div>H</div>")
}

func TestHandleContentRequest_SectionList(t *testing.T) {
	resp, err := HandleContentRequest(context.Background(), echoGenerator(), ContentRequest{
		Product:  sampleProduct(),
		Platform: types.PlatformEbay,
		Sections: []types.SectionKey{"hero", "reviews", "FAQ"},
	})
	require.NoError(t, err)
	assert.Equal(t, []types.SectionKey{types.SectionHero, types.SectionFAQ}, resp.GeneratedSections)
	assert.Equal(t, "<div>ebay/faq</div>", resp.SectionsHTML[types.SectionFAQ])
	assert.Empty(t, resp.HTML)
}

func TestHandleContentRequest_SingleAndFull(t *testing.T) {
	resp, err := HandleContentRequest(context.Background(), echoGenerator(), ContentRequest{
		Product:  sampleProduct(),
		Platform: types.PlatformSaturn,
		Section:  types.SectionBenefits,
	})
	require.NoError(t, err)
	assert.Equal(t, "benefits", resp.Section)
	assert.Equal(t, "<div>saturn/benefits</div>", resp.HTML)

	resp, err = HandleContentRequest(context.Background(), echoGenerator(), ContentRequest{
		Product:  sampleProduct(),
		Platform: types.PlatformSaturn,
	})
	require.NoError(t, err)
	assert.Equal(t, "full", resp.Section)
	assert.Equal(t, "<div>saturn/full</div>", resp.HTML)
}

func TestHandleContentRequest_ReportsFallback(t *testing.T) {
	resp, err := HandleContentRequest(context.Background(), WithFallback(failing(errors.New("down")), nil), ContentRequest{
		Product:  sampleProduct(),
		Platform: types.PlatformKaufland,
		Section:  types.SectionWarranty,
	})
	require.NoError(t, err)
	assert.True(t, resp.UsedFallback)
	assert.Contains(t, resp.HTML, "Garantie &amp; Service")
	assert.Contains(t, PlainText(resp.HTML), "Garantie & Service")
}

func TestHandleContentRequest_Errors(t *testing.T) {
	_, err := HandleContentRequest(context.Background(), echoGenerator(), ContentRequest{Platform: types.PlatformOtto})
	assert.ErrorIs(t, err, ErrMissingInput)

	_, err = HandleContentRequest(context.Background(), echoGenerator(), ContentRequest{Product: sampleProduct(), Platform: "walmart"})
	var unknownPlatform *platforms.UnknownPlatformError
	assert.ErrorAs(t, err, &unknownPlatform)

	_, err = HandleContentRequest(context.Background(), echoGenerator(), ContentRequest{Product: sampleProduct(), Platform: types.PlatformOtto, Section: "reviews"})
	var unknownSection *UnknownSectionError
	assert.ErrorAs(t, err, &unknownSection)

	_, err = HandleContentRequest(context.Background(), failing(errors.New("down")), ContentRequest{Product: sampleProduct(), Platform: types.PlatformOtto, Section: types.SectionHero})
	assert.Error(t, err)
}
