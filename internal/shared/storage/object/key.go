package object

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path"
	"time"

	"novel-assistant/internal/shared/util"
)

// NewKey builds a storage key of the form uploads/YYYY/MM/DD/<random>_<name>.
func NewKey(now time.Time, fileName string) (string, error) {
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join("uploads", now.UTC().Format("2006/01/02"), randomID()+"_"+sanitized), nil
}

// ExtractedKey is where the plain-text rendition of an archived upload lives.
func ExtractedKey(storageKey string) string {
	return storageKey + ".extracted.txt"
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
