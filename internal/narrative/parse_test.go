package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONContent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain object", `{"title":"A"}`, `{"title":"A"}`},
		{"json fence", "Here you go:\n```json\n{\"title\":\"A\"}\n```\nEnjoy!", `{"title":"A"}`},
		{"bare fence", "```\n{\"title\":\"A\"}\n```", `{"title":"A"}`},
		{"surrounding prose", `Sure! {"title":"A","pages":[]} Hope you like it.`, `{"title":"A","pages":[]}`},
		{"truncated", `{"title":"A","pages":[{"text":"x"}`, `{"title":"A","pages":[{"text":"x"}]}`},
		{"no json", "I cannot write that story.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONContent(tt.raw))
		})
	}
}

func TestParseResult_Paged(t *testing.T) {
	raw := `{"title":" Mia and the Stars ","pages":[
		{"text":"Mia looked up.","illustrationDescription":"Mia at night"},
		{"text":"She flew away. Far away.","illustrationDescription":""},
		{"text":"  ","illustrationDescription":"ignored"}
	]}`

	res, err := parseResult(raw, ModePaged)
	require.NoError(t, err)

	assert.Equal(t, KindPaged, res.Kind)
	assert.Equal(t, "Mia and the Stars", res.Title)
	require.Len(t, res.Pages, 2)
	assert.Equal(t, "Mia at night", res.Pages[0].IllustrationDescription)
	assert.Equal(t, "She flew away.", res.Pages[1].IllustrationDescription)
	assert.Equal(t, "Mia looked up.\n\nShe flew away. Far away.", res.Text())
}

func TestParseResult_Flat(t *testing.T) {
	res, err := parseResult(`{"title":"T","content":"Once upon a time."}`, ModeFlat)
	require.NoError(t, err)

	assert.Equal(t, KindFlat, res.Kind)
	assert.Equal(t, "Once upon a time.", res.Text())
	assert.Empty(t, res.Pages)
}

func TestParseResult_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		mode Mode
	}{
		{"not json", "sorry", ModePaged},
		{"missing title", `{"pages":[{"text":"x"}]}`, ModePaged},
		{"missing pages", `{"title":"T"}`, ModePaged},
		{"empty pages", `{"title":"T","pages":[]}`, ModePaged},
		{"pages wrong type", `{"title":"T","pages":"one"}`, ModePaged},
		{"flat without content", `{"title":"T"}`, ModeFlat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseResult(tt.raw, tt.mode)
			assert.Error(t, err)
		})
	}
}

func TestSplitIntoPages(t *testing.T) {
	content := "One. First.\n\nTwo!\n\nThree?\n\nFour.\n\nFive."

	pages := SplitIntoPages(content, 3)
	require.Len(t, pages, 3)
	assert.Equal(t, "One. First.\n\nTwo!", pages[0].Text)
	assert.Equal(t, "One.", pages[0].IllustrationDescription)
	assert.Equal(t, "Three?\n\nFour.", pages[1].Text)
	assert.Equal(t, "Five.", pages[2].Text)

	// Страниц не больше, чем абзацев
	assert.Len(t, SplitIntoPages("Only one paragraph.", 6), 1)
	assert.Nil(t, SplitIntoPages("   ", 6))
}

func TestSplitIntoPages_SingleNewlines(t *testing.T) {
	pages := SplitIntoPages("Line one.\nLine two.\nLine three.", 3)
	require.Len(t, pages, 3)
	assert.Equal(t, "Line two.", pages[1].Text)
}
