package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "html code block",
			input:    "```html\n<section class=\"hero\"><h1>OLED</h1></section>\n```",
			expected: `<section class="hero"><h1>OLED</h1></section>`,
		},
		{
			name:     "bare code block",
			input:    "```\n<div>x</div>\n```",
			expected: `<div>x</div>`,
		},
		{
			name:     "fence with markup on first line",
			input:    "```<div>x</div>```",
			expected: `<div>x</div>`,
		},
		{
			name:     "no fence",
			input:    "  <p>plain</p>\n",
			expected: `<p>plain</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripCodeFence(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	obj, ok := ExtractJSONObject("Here you go:\n{\"title\": \"LG OLED\", \"nested\": {\"a\": 1}}\nThanks!")
	assert.True(t, ok)
	assert.Equal(t, `{"title": "LG OLED", "nested": {"a": 1}}`, obj)

	obj, ok = ExtractJSONObject("```json\n{\"a\": 1}\n```")
	assert.True(t, ok)
	assert.Equal(t, `{"a": 1}`, obj)

	_, ok = ExtractJSONObject("no json here")
	assert.False(t, ok)
}
