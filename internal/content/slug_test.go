package content

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "single letter", title: "X", want: "x-abc"},
		{name: "accents folded", title: "Café Crème Guide", want: "cafe-creme-guide-abc"},
		{name: "punctuation dropped", title: "AI: 10 Tools, Ranked!", want: "ai-10-tools-ranked-abc"},
		{name: "han kept", title: "Python入门教程", want: "python入门教程-abc"},
		{name: "empty base", title: "!!!", want: "article-abc"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Slugify(tc.title, "abc"))
		})
	}
}

func TestSlugifyCapsBase(t *testing.T) {
	t.Parallel()

	slug := Slugify(strings.Repeat("word ", 40), "s")
	base := strings.TrimSuffix(slug, "-s")
	assert.LessOrEqual(t, len([]rune(base)), maxSlugBase)
	assert.False(t, strings.HasSuffix(base, "-"))
}

func TestSlugSuffixerIsStrictlyIncreasing(t *testing.T) {
	t.Parallel()

	var s SlugSuffixer
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first := s.Next(at)
	second := s.Next(at)
	third := s.Next(at.Add(-time.Hour))

	require.NotEqual(t, first, second)
	require.NotEqual(t, second, third)
	assert.NotEqual(t, Slugify("Same Title", first), Slugify("Same  title", second))
}
