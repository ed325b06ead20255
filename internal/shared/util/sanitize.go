package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ErrInvalidFileName is returned for names that are empty or only a path element.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName flattens separators so the name stays one path element.
// Dots inside a name are kept; "." and ".." on their own are rejected.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	s = strings.NewReplacer("/", "_", "\\", "_").Replace(s)
	if s == "" || s == "." || s == ".." || strings.HasPrefix(s, "_.._") || strings.HasPrefix(s, ".._") {
		return "", ErrInvalidFileName
	}
	return s, nil
}

// StoredFileName prefixes name with the upload time in unix millis and
// replaces runs of whitespace with underscores.
func StoredFileName(name string, at time.Time) string {
	fields := strings.FieldsFunc(name, unicode.IsSpace)
	return fmt.Sprintf("%d-%s", at.UnixMilli(), strings.Join(fields, "_"))
}

// OwnerKey maps an identity to a stable hex key that is safe in object paths
// and does not expose the email it came from.
func OwnerKey(identity string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(identity))))
	return hex.EncodeToString(sum[:])
}

// UploadFolder is the per-owner folder uploads are stored under.
func UploadFolder(owner string) string {
	return "ai-resume-saas/" + OwnerKey(owner)
}
