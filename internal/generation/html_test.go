package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFragment(t *testing.T) {
	assert.NoError(t, ValidateFragment("<div>ok</div>"))
	assert.NoError(t, ValidateFragment("<!DOCTYPE html><html><head><title>t</title></head><body></body></html>"))
	assert.ErrorIs(t, ValidateFragment("   "), ErrEmptyOutput)
	assert.ErrorIs(t, ValidateFragment("only words"), ErrNoMarkup)
}

func TestPlainText(t *testing.T) {
	html := `<div><style>p{color:red}</style><h1>LG  OLED</h1>
<p>Perfect &amp; black</p></div>`
	assert.Equal(t, "LG OLED Perfect & black", PlainText(html))
}

func TestImageSources(t *testing.T) {
	html := `<div><img src="a.jpg"><img alt="no src"><img src="b.jpg"></div>`
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, ImageSources(html))
}
