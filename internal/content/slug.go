package content

import (
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugBase = 50

// SlugSuffixer derives slug suffixes from generation time. Suffixes are strictly
// increasing within a process, so identical titles never share a slug.
type SlugSuffixer struct {
	mu   sync.Mutex
	last int64
}

// Next returns the base36 suffix for the given generation time.
func (s *SlugSuffixer) Next(at time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := at.UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}
	s.last = ms
	return strconv.FormatInt(ms, 36)
}

// Slugify transliterates the title to lowercase ASCII where possible, keeps Han
// characters and digits, joins words with dashes and caps the base length.
func Slugify(title, suffix string) string {
	base := slugBase(title)
	if base == "" {
		base = "article"
	}
	return base + "-" + suffix
}

func slugBase(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', unicode.Is(unicode.Han, r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			b.WriteRune(' ')
		}
	}

	base := strings.Join(strings.Fields(b.String()), "-")
	base = Truncate(base, maxSlugBase)
	return strings.Trim(base, "-")
}
