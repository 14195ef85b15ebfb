package textanalysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "whitespace", in: " \n ", want: nil},
		{name: "single", in: "One sentence.", want: []string{"One sentence."}},
		{name: "no terminal punctuation", in: "just words", want: []string{"just words"}},
		{
			name: "several",
			in:   "First one. Second one? Third one!",
			want: []string{"First one.", "Second one?", "Third one!"},
		},
		{
			name: "paragraphs",
			in:   "Opening line.\n\nClosing line.",
			want: []string{"Opening line.", "Closing line."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.in))
		})
	}
}

func TestTokenizeFlags(t *testing.T) {
	res, err := LoadResources(ResourceConfig{})
	require.NoError(t, err)

	tokens := res.Tokenize("The dragon, slept.")

	var texts []string
	byText := map[string]Token{}
	for _, tok := range tokens {
		texts = append(texts, tok.Text)
		byText[tok.Text] = tok
	}
	assert.Equal(t, []string{"The", " ", "dragon", ",", " ", "slept", "."}, texts)

	assert.True(t, byText["The"].IsStop)
	assert.True(t, byText[" "].IsSpace)
	assert.True(t, byText[","].IsPunct)
	assert.True(t, byText["."].IsPunct)
	assert.True(t, byText["dragon"].IsContent())
	assert.True(t, byText["slept"].IsContent())

	assert.Equal(t, 4, byText["dragon"].Start)
	assert.Equal(t, 10, byText["dragon"].End)
}
