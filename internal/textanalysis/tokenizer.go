package textanalysis

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/sentences"
	"github.com/clipperhouse/uax29/v2/words"
)

// Token is one UAX #29 word segment of the input with its linguistic flags.
type Token struct {
	Text    string
	Start   int
	End     int
	IsStop  bool
	IsPunct bool
	IsSpace bool
}

// IsContent reports whether the token is neither stop-word, punctuation nor whitespace.
func (t Token) IsContent() bool {
	return !t.IsStop && !t.IsPunct && !t.IsSpace
}

// Tokenize splits text on word boundaries and tags every segment.
func (r *Resources) Tokenize(text string) []Token {
	segments := words.FromString(text)
	var out []Token
	pos := 0
	for segments.Next() {
		value := segments.Value()
		tok := Token{Text: value, Start: pos, End: pos + len(value)}
		pos += len(value)
		switch {
		case isSpace(value):
			tok.IsSpace = true
		case !hasLetterOrDigit(value):
			tok.IsPunct = true
		default:
			tok.IsStop = r.IsStopWord(value)
		}
		out = append(out, tok)
	}
	return out
}

// SplitSentences returns the sentences of text, trimmed, in document order.
// Every returned sentence is a substring of text.
func SplitSentences(text string) []string {
	segments := sentences.FromString(text)
	var out []string
	for segments.Next() {
		if s := strings.TrimSpace(segments.Value()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isSpace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
