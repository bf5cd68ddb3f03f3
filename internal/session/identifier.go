package session

import (
	"path/filepath"
	"strconv"
	"strings"
)

// fallbackIdentifier names a table whose file name has no base.
const fallbackIdentifier = "table"

// Identifier derives a table identifier from a file name: the base name
// without its extension, with every rune that is not an ASCII letter or
// digit replaced by an underscore. Leading dots belong to the name, so
// ".csv" maps to "_csv".
func Identifier(fileName string) string {
	base := filepath.Base(fileName)
	if base == "." || base == string(filepath.Separator) {
		return fallbackIdentifier
	}
	base = stem(base)

	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		if isIdentRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// stem drops the extension from base. A name made only of leading dots
// plus one word has no extension.
func stem(base string) string {
	ext := filepath.Ext(strings.TrimLeft(base, "."))
	return strings.TrimSuffix(base, ext)
}

func isIdentRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// uniqueIdentifier suffixes ident with _2, _3, ... until taken reports false.
func uniqueIdentifier(ident string, taken func(string) bool) string {
	if !taken(ident) {
		return ident
	}
	for n := 2; ; n++ {
		candidate := ident + "_" + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}
