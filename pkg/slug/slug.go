package slug

import (
	"crypto/rand"
	"regexp"
	"strings"
	"unicode"
)

var pattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Valid reports whether s is a well-formed tenant slug: lowercase
// alphanumerics and hyphens with an alphanumeric first character.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// Option configures slug derivation.
type Option func(*config)

type config struct {
	maxLength    int
	suffixLength int
}

// MaxLength truncates the derived slug to at most n runes.
func MaxLength(n int) Option {
	return func(c *config) {
		c.maxLength = n
	}
}

// WithSuffix appends a random alphanumeric suffix of the given length to
// lower the collision odds when deriving slugs from non-unique names.
func WithSuffix(n int) Option {
	return func(c *config) {
		c.suffixLength = n
	}
}

// Make derives a slug from a free-form name: lowercase, common Latin
// diacritics folded to ASCII, every other run of characters collapsed into a
// single hyphen. The result passes Valid unless the input contains no usable
// characters at all, in which case it is empty.
func Make(name string, opts ...Option) string {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false

	for _, r := range name {
		r = unicode.ToLower(r)
		if folded, ok := diacritics[r]; ok {
			r = folded
		}

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	out := b.String()
	if cfg.maxLength > 0 && len(out) > cfg.maxLength {
		out = strings.TrimRight(out[:cfg.maxLength], "-")
	}

	if cfg.suffixLength > 0 {
		suffix := randomSuffix(cfg.suffixLength)
		if out == "" {
			return suffix
		}
		out += "-" + suffix
	}
	return out
}

// diacritics folds the Latin letters that show up in real company names.
// Not exhaustive; anything unmapped becomes a separator.
var diacritics = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a', 'ā': 'a', 'ą': 'a',
	'ç': 'c', 'ć': 'c', 'č': 'c',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e', 'ē': 'e', 'ę': 'e', 'ě': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i', 'ī': 'i',
	'ł': 'l',
	'ñ': 'n', 'ń': 'n', 'ň': 'n',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o', 'ø': 'o', 'ō': 'o',
	'ś': 's', 'š': 's', 'ß': 's',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u', 'ū': 'u',
	'ý': 'y', 'ÿ': 'y',
	'ź': 'z', 'ž': 'z', 'ż': 'z',
}

const suffixCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		for i := range b {
			b[i] = suffixCharset[i%len(suffixCharset)]
		}
		return string(b)
	}
	for i := range b {
		b[i] = suffixCharset[b[i]%byte(len(suffixCharset))]
	}
	return string(b)
}
