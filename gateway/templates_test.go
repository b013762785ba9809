package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		vars map[string]string
		want string
	}{
		{"simple", "Hello {{name}}", map[string]string{"name": "Ada"}, "Hello Ada"},
		{"spaces inside braces", "{{ name }}!", map[string]string{"name": "Ada"}, "Ada!"},
		{"repeated", "{{a}}{{a}}", map[string]string{"a": "x"}, "xx"},
		{"missing variable", "[{{missing}}]", nil, "[]"},
		{"no placeholders", "plain", map[string]string{"a": "x"}, "plain"},
		{"value not re-expanded", "{{a}}", map[string]string{"a": "{{b}}", "b": "no"}, "{{b}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.tmpl, tt.vars))
		})
	}
}

func TestDefaultTemplates(t *testing.T) {
	templates := DefaultTemplates()
	require.NotEmpty(t, templates)

	for blockType, tmpl := range templates {
		assert.Contains(t, tmpl, "{{prompt}}", "template %q must use the prompt", blockType)
	}

	_, ok := templates.Template("text")
	assert.True(t, ok)
	_, ok = templates.Template("hologram")
	assert.False(t, ok)
}

func TestResolveOptions(t *testing.T) {
	got := resolveOptions(GenerationOptions{})
	assert.Equal(t, resolvedOptions{
		Tone:            DefaultTone,
		ReadingLevel:    DefaultReadingLevel,
		Length:          DefaultLength,
		IncludeExamples: true,
	}, got)

	got = resolveOptions(GenerationOptions{
		OptionTone:            "formal",
		OptionLength:          "brief",
		OptionIncludeExamples: false,
		"unknown":             42,
	})
	assert.Equal(t, "formal", got.Tone)
	assert.Equal(t, DefaultReadingLevel, got.ReadingLevel)
	assert.Equal(t, "brief", got.Length)
	assert.False(t, got.IncludeExamples)
}

func TestParseOutline(t *testing.T) {
	t.Run("fenced", func(t *testing.T) {
		got, err := parseOutline("```json\n[{\"type\":\"text\",\"title\":\"Intro\",\"estimatedTime\":7.6}]\n```")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 8, got[0].EstimatedTime)
	})

	t.Run("defaults for missing fields", func(t *testing.T) {
		got, err := parseOutline(`[{}, {"type": "quiz"}]`)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "text", got[0].Type)
		assert.Equal(t, "Block 1", got[0].Title)
		assert.Equal(t, "Block 2", got[1].Title)
	})

	t.Run("bracketed prose before array", func(t *testing.T) {
		got, err := parseOutline("Here is the outline for [Photosynthesis]:\n[{\"type\":\"text\",\"title\":\"Intro\"}]")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Intro", got[0].Title)
	})

	t.Run("bracketed note after array", func(t *testing.T) {
		got, err := parseOutline(`[{"type":"quiz","title":"Check"},{"title":"Wrap up"}]` + "\nNote: times are rough [estimates].")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "quiz", got[0].Type)
		assert.Equal(t, "Wrap up", got[1].Title)
	})

	t.Run("empty array then outline", func(t *testing.T) {
		got, err := parseOutline("Previous: []\nOutline: [{\"title\":\"Cells\"}]")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Cells", got[0].Title)
	})

	for _, bad := range []string{"", "no array", "[]", "[not json]", "] backwards [", "see [1] and [2]"} {
		_, err := parseOutline(bad)
		assert.ErrorIs(t, err, ErrMalformedOutline, "input %q", bad)
	}
}

func TestPlaceholderContent_Deterministic(t *testing.T) {
	for _, blockType := range []string{"text", "quiz", "flashcards", "reflection", "discussion", "checklist", "video"} {
		a := PlaceholderContent(blockType, "Cells")
		b := PlaceholderContent(blockType, "Cells")
		assert.Equal(t, a, b)

		m, ok := a.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Cells", m["title"])
	}
}

func TestContentFromText(t *testing.T) {
	got, err := contentFromText(`  {"a": 1}  `)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))

	got, err = contentFromText("just prose")
	require.NoError(t, err)
	assert.Equal(t, `"just prose"`, string(got))

	_, err = contentFromText("\n\t")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestIsValidationError(t *testing.T) {
	err := invalid("prompt", "is required")
	assert.True(t, IsValidationError(err))
	assert.EqualError(t, err, "gateway: invalid prompt: is required")
	assert.False(t, IsValidationError(ErrEmptyReply))
}
