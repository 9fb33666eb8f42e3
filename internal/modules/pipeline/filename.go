package pipeline

import (
	"strings"
	"unicode"
)

const fallbackFilename = "upload.pdf"

// SecureFilename reduces name to a safe base name: ASCII letters, digits, '_', '-', '.'
// with whitespace runs collapsed to '_' and no leading dots.
func SecureFilename(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)

	fields := strings.FieldsFunc(name, unicode.IsSpace)
	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte('_')
		}
		for _, r := range field {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.') {
				b.WriteRune(r)
			}
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return fallbackFilename
	}
	return out
}
