package snapshot

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const fileTimestampLayout = "20060102T150405Z"

// Slug turns a directory's base name into a file-name-safe token. Any rune
// that is not a letter, digit, '-' or '_' becomes '_'.
func Slug(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	if base == "" || base == "." || base == string(filepath.Separator) || base == "/" {
		base = "root"
	}
	var b strings.Builder
	for _, r := range base {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

// FileName builds the durable page file name. requestID is omitted when
// empty and the page suffix appears only for multi-page snapshots.
func FileName(dir string, generatedAt time.Time, requestID string, page, pageCount int) string {
	var b strings.Builder
	b.WriteString(Slug(dir))
	b.WriteByte('_')
	b.WriteString(generatedAt.UTC().Format(fileTimestampLayout))
	if requestID != "" {
		b.WriteByte('_')
		b.WriteString(requestID)
	}
	if pageCount > 1 {
		fmt.Fprintf(&b, "_p%03d", page)
	}
	b.WriteString(".json")
	return b.String()
}
