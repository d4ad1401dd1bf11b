package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendPress/internal/config"
	"TrendPress/internal/domain"
	"TrendPress/internal/logging"
	"TrendPress/internal/scanner"
)

type stubScanner struct {
	topics []domain.TopicCandidate
	err    error
}

func (s stubScanner) Name() string { return "stub" }

func (s stubScanner) Scan(context.Context, scanner.Request) ([]domain.TopicCandidate, error) {
	return s.topics, s.err
}

func TestScannerSourceFallsBackOnError(t *testing.T) {
	src := NewScannerSource(config.SourceConfig{Name: "zhihu", Scanner: "stub"},
		stubScanner{err: errors.New("connection refused")}, logging.Discard())

	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Fixtures("zhihu"), got)
	assert.Equal(t, "zhihu", src.Name())
}

func TestScannerSourceFallsBackOnEmpty(t *testing.T) {
	src := NewScannerSource(config.SourceConfig{Name: "feeds", Options: map[string]string{"fixture": "toutiao"}},
		stubScanner{}, logging.Discard())

	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "手机摄影技巧", got[0].Title)
}

func TestScannerSourcePassesThrough(t *testing.T) {
	live := []domain.TopicCandidate{{Title: "live"}}
	src := NewScannerSource(config.SourceConfig{Name: "baidu"}, stubScanner{topics: live}, logging.Discard())

	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, live, got)
}

func TestFixturesNeverEmpty(t *testing.T) {
	for _, name := range []string{"baidu", "weibo", "zhihu", "toutiao", "unknown"} {
		got := Fixtures(name)
		assert.NotEmpty(t, got, name)
		for _, c := range got {
			assert.NotNil(t, c.SearchVolume)
		}
	}
}

func TestBuildSourcesKeepsOrder(t *testing.T) {
	reg := DefaultRegistry(nil)
	sources, err := BuildSources(reg, []config.SourceConfig{
		{Name: "zhihu", Scanner: "zhihu"},
		{Name: "weibo", Scanner: "fixture"},
	}, logging.Discard())
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "zhihu", sources[0].Name())
	assert.Equal(t, "weibo", sources[1].Name())

	_, err = BuildSources(reg, []config.SourceConfig{{Name: "x", Scanner: "missing"}}, logging.Discard())
	assert.Error(t, err)
}

func TestRSSScannerScan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title>
<item><title>First story</title><link>https://example.org/1</link><category>golang</category></item>
<item><title>  </title><link>https://example.org/empty</link></item>
<item><title>Second story</title><link>https://example.org/2</link></item>
</channel></rss>`))
	}))
	defer server.Close()

	sc := NewRSSScanner(server.Client())
	topics, err := sc.Scan(context.Background(), scanner.Request{
		Source:  "feeds",
		URL:     server.URL,
		Options: map[string]string{"keyword": "category"},
	})
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "First story", topics[0].Title)
	assert.Equal(t, "golang", topics[0].Keyword)
	assert.Equal(t, "https://example.org/1", topics[0].URL)
	assert.Equal(t, "Second story", topics[1].Keyword)
}
