package textanalysis

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kljensen/snowball"
)

//go:embed stopwords/*.txt
var embeddedStopWords embed.FS

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "english"

// ErrResourceUnavailable indicates a stop-word list or stemmer could not be provisioned.
var ErrResourceUnavailable = errors.New("linguistic resource unavailable")

// ResourceConfig selects where linguistic resources are loaded from.
type ResourceConfig struct {
	Language string
	// Dir overrides the embedded lists with stopwords_<language>.txt from disk.
	Dir string
}

// Resources holds the stop-word list and stemmer settings shared by all analyses.
// It is read-only after LoadResources and safe for concurrent use.
type Resources struct {
	Language  string
	stopWords map[string]struct{}
}

// LoadResources provisions the stop-word list and verifies the stemmer for the
// configured language. Call it once at startup.
func LoadResources(cfg ResourceConfig) (*Resources, error) {
	lang := strings.ToLower(strings.TrimSpace(cfg.Language))
	if lang == "" {
		lang = DefaultLanguage
	}

	if _, err := snowball.Stem("running", lang, true); err != nil {
		return nil, fmt.Errorf("%w: stemmer %s: %v", ErrResourceUnavailable, lang, err)
	}

	name := "stopwords_" + lang + ".txt"
	var (
		f   io.ReadCloser
		err error
	)
	if dir := strings.TrimSpace(cfg.Dir); dir != "" {
		f, err = os.Open(filepath.Join(dir, name))
	} else {
		f, err = embeddedStopWords.Open("stopwords/" + name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stop-words %s: %v", ErrResourceUnavailable, name, err)
	}
	defer f.Close()

	words, err := readStopWords(f)
	if err != nil {
		return nil, fmt.Errorf("%w: stop-words %s: %v", ErrResourceUnavailable, name, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: stop-words %s: empty list", ErrResourceUnavailable, name)
	}

	return &Resources{Language: lang, stopWords: words}, nil
}

// IsStopWord reports whether word is in the stop-word list, ignoring case.
func (r *Resources) IsStopWord(word string) bool {
	_, ok := r.stopWords[strings.ToLower(word)]
	return ok
}

// Stem reduces a word to its Snowball stem.
func (r *Resources) Stem(word string) string {
	stemmed, err := snowball.Stem(word, r.Language, true)
	if err != nil {
		// language was verified in LoadResources
		return strings.ToLower(word)
	}
	return stemmed
}

// StopWordCount returns the number of loaded stop-words.
func (r *Resources) StopWordCount() int {
	return len(r.stopWords)
}

func readStopWords(rd io.Reader) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out[line] = struct{}{}
	}
	return out, scanner.Err()
}
