package textanalysis

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T, opts ...Option) (*Analyzer, *Resources) {
	t.Helper()
	res, err := LoadResources(ResourceConfig{})
	require.NoError(t, err)
	a, err := New(res, opts...)
	require.NoError(t, err)
	return a, res
}

func analyze(t *testing.T, a *Analyzer, text string) Result {
	t.Helper()
	got, err := a.Analyze(context.Background(), text)
	require.NoError(t, err)
	return got
}

const sixSentences = "Dragons guarded the northern mountains. " +
	"The village feared the dragons every winter. " +
	"A young blacksmith forged a silver sword. " +
	"She climbed the mountains to face the dragons. " +
	"The dragons fled from the silver sword. " +
	"The village celebrated the blacksmith all spring."

func TestAnalyzeEmptyText(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	got := analyze(t, a, "")

	assert.Equal(t, "", got.Summary)
	require.NotNil(t, got.Keywords)
	assert.Empty(t, got.Keywords)
}

func TestAnalyzeWhitespaceOnly(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	got := analyze(t, a, "   \n\t  ")

	assert.Equal(t, "", got.Summary)
	assert.Empty(t, got.Keywords)
}

func TestAnalyzeShortDocumentKeepsEverySentence(t *testing.T) {
	a, _ := newTestAnalyzer(t)
	text := "Alice met Bob in Paris. They walked along the river. It rained."

	got := analyze(t, a, text)

	for _, s := range SplitSentences(text) {
		assert.Contains(t, got.Summary, s)
	}
	assert.Len(t, SplitSentences(got.Summary), 3)
}

func TestAnalyzeSingleStopWordSentence(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	got := analyze(t, a, "It is what it is.")

	assert.Equal(t, "It is what it is.", got.Summary)
	assert.Empty(t, got.Keywords)
}

func TestAnalyzeSixSentencesSelectsFive(t *testing.T) {
	a, _ := newTestAnalyzer(t)
	original := SplitSentences(sixSentences)
	require.Len(t, original, 6)

	got := analyze(t, a, sixSentences)
	selected := SplitSentences(got.Summary)

	require.Len(t, selected, 5)
	for _, s := range selected {
		assert.Contains(t, original, s)
	}
}

func TestAnalyzeSummaryKeepsDocumentOrder(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	got := analyze(t, a, sixSentences)

	last := -1
	for _, s := range SplitSentences(got.Summary) {
		idx := strings.Index(sixSentences, s)
		require.GreaterOrEqual(t, idx, 0)
		assert.Greater(t, idx, last)
		last = idx
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	first := analyze(t, a, sixSentences)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, analyze(t, a, sixSentences))
	}
}

func TestAnalyzeAllStopWordsFallsBackToFirstSentences(t *testing.T) {
	a, _ := newTestAnalyzer(t, WithSummarySentences(2))
	text := "It is so. We were there. You are here. They are not."

	got := analyze(t, a, text)

	assert.Equal(t, "It is so. We were there.", got.Summary)
}

func TestKeywordsFirstOccurrenceOrder(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	got := analyze(t, a, "Alice met Bob. Alice likes Carol, and Bob likes Alice!")

	assert.Equal(t, []string{"Alice", "met", "Bob", "likes", "Carol"}, got.Keywords)
}

func TestKeywordsAreCaseSensitive(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	got := analyze(t, a, "Dragon dragon DRAGON")

	assert.Equal(t, []string{"Dragon", "dragon", "DRAGON"}, got.Keywords)
}

func TestKeywordsCappedAtTen(t *testing.T) {
	a, _ := newTestAnalyzer(t)
	text := "apple banana cherry damson elder fig grape hazel iris juniper kiwi lemon mango"

	got := analyze(t, a, text)

	assert.Equal(t, []string{
		"apple", "banana", "cherry", "damson", "elder",
		"fig", "grape", "hazel", "iris", "juniper",
	}, got.Keywords)
}

func TestKeywordsExcludeStopWordsAndPunctuation(t *testing.T) {
	a, res := newTestAnalyzer(t)
	text := "The knight, and the dragon -- they fought; the castle burned... 42 times!"

	got := analyze(t, a, text)

	require.LessOrEqual(t, len(got.Keywords), DefaultMaxKeywords)
	for _, kw := range got.Keywords {
		assert.Contains(t, text, kw)
		assert.False(t, res.IsStopWord(kw), "stop-word %q", kw)
		assert.True(t, hasLetterOrDigit(kw), "punctuation %q", kw)
		assert.Equal(t, strings.TrimSpace(kw), kw)
	}
	assert.Contains(t, got.Keywords, "knight")
	assert.Contains(t, got.Keywords, "42")
	assert.NotContains(t, got.Keywords, "The")
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	res, err := LoadResources(ResourceConfig{})
	require.NoError(t, err)

	_, err = New(res, WithSummarySentences(0))
	assert.Error(t, err)

	_, err = New(res, WithMaxKeywords(-1))
	assert.Error(t, err)

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestWithSummarySentencesLimitsSelection(t *testing.T) {
	a, _ := newTestAnalyzer(t, WithSummarySentences(2))

	got := analyze(t, a, sixSentences)

	assert.Len(t, SplitSentences(got.Summary), 2)
}
