package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"TrendPress/internal/scanner"
)

const baiduPage = `
<div>
  <div class="category-wrap_iQLoo">
    <a href="https://www.baidu.com/s?wd=go"></a>
    <div class="c-single-text-ellipsis"> Go 1.23 发布 </div>
    <div class="hot-index_1Bl1a">495万</div>
  </div>
  <div class="category-wrap_iQLoo">
    <div class="c-single-text-ellipsis"></div>
  </div>
  <div class="category-wrap_iQLoo">
    <a href="/s?wd=rust"></a>
    <div class="c-single-text-ellipsis">Rust 2024</div>
    <div class="hot-index_1Bl1a">12345</div>
  </div>
  <div class="category-wrap_iQLoo">
    <div class="c-single-text-ellipsis">Third</div>
  </div>
</div>`

func TestParseHotNumber(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"4.5万":    45000,
		"1.2亿热度": 120000000,
		"987":     987,
		"1,024 热度": 1024,
	}
	for in, want := range cases {
		got := parseHotNumber(in)
		if got == nil || *got != want {
			t.Fatalf("parseHotNumber(%q) = %v, want %v", in, got, want)
		}
	}

	if parseHotNumber("") != nil {
		t.Fatalf("expected nil for empty input")
	}
	if parseHotNumber("热") != nil {
		t.Fatalf("expected nil for non numeric input")
	}
}

func TestBoardExtract(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(baiduPage))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	sc := NewBaiduScanner(nil)
	topics := sc.extract(doc, 2)

	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(topics))
	}
	if topics[0].Title != "Go 1.23 发布" {
		t.Fatalf("unexpected title: %q", topics[0].Title)
	}
	if topics[0].SearchVolume == nil || *topics[0].SearchVolume != 4950000 {
		t.Fatalf("unexpected volume: %v", topics[0].SearchVolume)
	}
	if topics[0].URL != "https://www.baidu.com/s?wd=go" {
		t.Fatalf("unexpected url: %s", topics[0].URL)
	}
	if topics[1].URL != "https://top.baidu.com/s?wd=rust" {
		t.Fatalf("relative url not resolved: %s", topics[1].URL)
	}
}

func TestZhihuScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing user agent")
		}
		_, _ = w.Write([]byte(`
		<section class="HotList-item">
		  <a href="/question/1"><h2 class="HotList-title">如何学习编程</h2></a>
		  <div class="HotList-metrics">2800 万热度</div>
		</section>`))
	}))
	defer server.Close()

	sc := NewZhihuScanner(server.Client())
	topics, err := sc.Scan(context.Background(), scanner.Request{Source: "zhihu", URL: server.URL})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(topics))
	}
	if topics[0].URL != "https://zhihu.com/question/1" {
		t.Fatalf("unexpected url: %s", topics[0].URL)
	}
	if *topics[0].SearchVolume != 28000000 {
		t.Fatalf("unexpected volume: %v", *topics[0].SearchVolume)
	}
}

func TestBoardScannerHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewBaiduScanner(server.Client()).Scan(context.Background(), scanner.Request{Source: "baidu", URL: server.URL})
	if err == nil {
		t.Fatalf("expected error on 403")
	}
}
