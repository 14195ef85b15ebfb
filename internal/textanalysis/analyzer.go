// Package textanalysis produces extractive summaries and keyword lists from plain text.
package textanalysis

import (
	"context"
	"errors"
)

const (
	DefaultSummarySentences = 5
	DefaultMaxKeywords      = 10
)

// Result is the derived analysis of one document.
type Result struct {
	Summary  string   `json:"summary" yaml:"summary"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Analyzer runs the LSA summarizer and keyword extractor. It holds no
// per-call state and is safe for concurrent use.
type Analyzer struct {
	res              *Resources
	summarySentences int
	maxKeywords      int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSummarySentences sets how many sentences the summary keeps.
func WithSummarySentences(n int) Option {
	return func(a *Analyzer) { a.summarySentences = n }
}

// WithMaxKeywords sets the keyword cap.
func WithMaxKeywords(n int) Option {
	return func(a *Analyzer) { a.maxKeywords = n }
}

// New constructs an Analyzer over provisioned resources.
func New(res *Resources, opts ...Option) (*Analyzer, error) {
	if res == nil {
		return nil, ErrResourceUnavailable
	}
	a := &Analyzer{
		res:              res,
		summarySentences: DefaultSummarySentences,
		maxKeywords:      DefaultMaxKeywords,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.summarySentences <= 0 {
		return nil, errors.New("summary sentence count must be positive")
	}
	if a.maxKeywords <= 0 {
		return nil, errors.New("max keywords must be positive")
	}
	return a, nil
}

// Analyze returns the summary and keywords for text. It stops early with
// the context error when ctx is done.
func (a *Analyzer) Analyze(ctx context.Context, text string) (Result, error) {
	summary, err := a.summarize(ctx, text)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Summary:  summary,
		Keywords: a.keywords(text),
	}, nil
}

// keywords keeps content tokens, first occurrence wins, case-sensitive.
func (a *Analyzer) keywords(text string) []string {
	out := make([]string, 0, a.maxKeywords)
	seen := make(map[string]struct{})
	for _, tok := range a.res.Tokenize(text) {
		if !tok.IsContent() {
			continue
		}
		if _, dup := seen[tok.Text]; dup {
			continue
		}
		seen[tok.Text] = struct{}{}
		out = append(out, tok.Text)
		if len(out) == a.maxKeywords {
			break
		}
	}
	return out
}
