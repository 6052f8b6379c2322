package files

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SecureFilename turns an uploaded name into something safe to store in a
// flat directory. Path separators become spaces, runs of whitespace become a
// single underscore, and only letters, digits, '_', '.' and '-' survive.
// Leading and trailing dots and underscores are trimmed. Letters from any
// script are kept. The result may be empty.
func SecureFilename(name string) string {
	name = norm.NFKC.String(name)
	name = strings.NewReplacer("/", " ", `\`, " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}
