package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UntitledDocument names uploads that arrive without a usable file name.
const UntitledDocument = "untitled"

const (
	maxTitleBytes = 255
	maxKeyNameLen = 100
)

// ErrInvalidFileName is returned when a name cannot be used in a storage key.
var ErrInvalidFileName = errors.New("invalid file name")

// DocumentTitle reduces an uploaded file name to its base name. Some browsers
// send full client paths, with either separator.
func DocumentTitle(fileName string) string {
	name := strings.ReplaceAll(fileName, "\\", "/")
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(path.Base(strings.TrimSpace(name)))
	if name == "." || name == "/" || name == "" {
		return UntitledDocument
	}
	return truncateUTF8(name, maxTitleBytes)
}

// SanitizeFileName turns a document title into a storage-key segment made of
// ASCII letters, digits, dot, dash and underscore.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.TrimSpace(name)
	if s == "" {
		return "", ErrInvalidFileName
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, s)
	if len(s) > maxKeyNameLen {
		s = s[len(s)-maxKeyNameLen:]
	}
	return s, nil
}

func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
