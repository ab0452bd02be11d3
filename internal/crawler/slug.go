package crawler

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// foldASCII decomposes accented characters and strips the combining
	// marks, so "è" folds to "e".
	foldASCII = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
	slugDashes   = regexp.MustCompile(`[-\s]+`)
)

// Slugify converts an album title into a safe directory name: ASCII-folded,
// lowercase, punctuation removed, whitespace and hyphen runs collapsed to a
// single hyphen.
func Slugify(title string) string {
	folded, _, err := transform.String(foldASCII, title)
	if err != nil {
		folded = title
	}

	// Drop any remaining non-ASCII bytes.
	var b strings.Builder
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}

	s := nonSlugChars.ReplaceAllString(b.String(), "")
	s = strings.ToLower(strings.TrimSpace(s))
	return slugDashes.ReplaceAllString(s, "-")
}
