package identity

import (
	"strings"
	"sync"
	"unicode"

	slug "github.com/goliatone/go-slug"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// charMap is go-slug's transliteration table ("ж" -> "zh", "ß" -> "ss").
var charMap = sync.OnceValue(func() map[string]string {
	mapping, err := slug.GetCharMap()
	if err != nil {
		return nil
	}
	return mapping
})

// Slugify transliterates value, lowercases it, strips diacritics and
// collapses every run of characters outside [a-z0-9] into a single hyphen.
// Leading and trailing hyphens are trimmed. Slugify(Slugify(x)) == Slugify(x).
func Slugify(value string) string {
	folded := foldDiacritics(transliterate(value))

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if isSlugRune(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// IsSlug reports whether value is already in slug form.
func IsSlug(value string) bool {
	return value != "" && Slugify(value) == value
}

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// transliterate rewrites non-ASCII letters through the char map and spells
// out "&". Other ASCII is left for the hyphen pass.
func transliterate(value string) string {
	mapping := charMap()
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r == '&':
			b.WriteString(" and ")
		case r > unicode.MaxASCII:
			if replacement, ok := mapping[string(r)]; ok {
				b.WriteString(replacement)
				continue
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func foldDiacritics(value string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}
