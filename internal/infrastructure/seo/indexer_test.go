package seo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendPress/internal/config"
	"TrendPress/internal/domain"
)

const sitemapURL = "https://example.com/sitemap.xml"

func TestGoogleSubmitter(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/console/sitemap.xml", r.URL.Path)
		assert.Equal(t, sitemapURL, r.URL.Query().Get("sitemap"))
	}))
	defer server.Close()

	g := NewGoogleSubmitter(server.URL+"/console/", server.Client())
	require.NoError(t, g.Notify(context.Background(), sitemapURL))
}

func TestBaiduSubmitterPostsJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got baiduPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, baiduPayload{Site: "https://example.com", Token: "tok", Sitemap: sitemapURL}, got)
	}))
	defer server.Close()

	b := NewBaiduSubmitter(server.URL, "https://example.com", "tok", server.Client())
	require.NoError(t, b.Notify(context.Background(), sitemapURL))
}

func TestPingerEscapesSitemap(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		assert.Equal(t, sitemapURL, r.URL.Query().Get("sitemap"))
	}))
	defer server.Close()

	p := NewPinger(server.URL+"/ping?sitemap=%s", server.Client())
	require.NoError(t, p.Notify(context.Background(), sitemapURL))
	assert.Contains(t, p.Name(), "ping:127.0.0.1")
}

func TestNotifyFailsOnErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	err := NewPinger(server.URL+"?s=%s", server.Client()).Notify(context.Background(), sitemapURL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "410")
}

func TestIndexersFollowConfig(t *testing.T) {
	t.Parallel()

	none := Indexers(config.SEOConfig{}, nil)
	assert.Empty(t, none)

	all := Indexers(config.SEOConfig{
		SiteURL:         "https://example.com",
		GoogleSubmitURL: "https://console.example",
		BaiduSubmitURL:  "https://data.zz.baidu.com/urls",
		PingURLs:        []string{"http://www.bing.com/ping?siteMap=%s", " "},
	}, nil)
	require.Len(t, all, 3)
	assert.Equal(t, "google-submit", all[0].Name())
	assert.Equal(t, "baidu-submit", all[1].Name())
	assert.Equal(t, "ping:www.bing.com", all[2].Name())
}

func TestMetaAndSchema(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	a := domain.Article{
		Title: "Go tips", Slug: "go-tips-1", Summary: "short", MetaTitle: "Go tips",
		Keywords: []string{"go", "tips"}, Category: domain.CategoryTech,
		PublishedAt: &at, CreatedAt: at, UpdatedAt: at,
	}

	meta := Meta(a, "https://example.com/", "TrendPress")
	assert.Equal(t, "Go tips | TrendPress", meta.Title)
	assert.Equal(t, "short", meta.Description)
	assert.Equal(t, "go,tips", meta.Keywords)
	assert.Equal(t, "https://example.com/article/go-tips-1", meta.Canonical)
	assert.Equal(t, meta.Canonical, meta.OGURL)

	schema := Schema(a, "https://example.com", "TrendPress")
	assert.Equal(t, "Article", schema["@type"])
	assert.Equal(t, "2024-05-01T08:00:00Z", schema["datePublished"])
	assert.NotContains(t, schema, "image")
}
