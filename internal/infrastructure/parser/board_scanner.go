package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"TrendPress/internal/domain"
	"TrendPress/internal/scanner"
)

// boardLayout names the CSS selectors of one hot-list page.
type boardLayout struct {
	item    string
	title   string
	hot     string
	baseURL string
}

var (
	baiduLayout = boardLayout{
		item:    ".category-wrap_iQLoo",
		title:   ".c-single-text-ellipsis",
		hot:     ".hot-index_1Bl1a",
		baseURL: "https://top.baidu.com",
	}
	zhihuLayout = boardLayout{
		item:    ".HotList-item",
		title:   ".HotList-title",
		hot:     ".HotList-metrics",
		baseURL: "https://zhihu.com",
	}
)

// BoardScanner scrapes an HTML hot-list board.
type BoardScanner struct {
	name   string
	layout boardLayout
	client *http.Client
}

var _ scanner.Scanner = (*BoardScanner)(nil)

// NewBaiduScanner scrapes the Baidu realtime board.
func NewBaiduScanner(client *http.Client) *BoardScanner {
	return &BoardScanner{name: "baidu", layout: baiduLayout, client: defaultClient(client)}
}

// NewZhihuScanner scrapes the Zhihu hot list.
func NewZhihuScanner(client *http.Client) *BoardScanner {
	return &BoardScanner{name: "zhihu", layout: zhihuLayout, client: defaultClient(client)}
}

// Name identifies the strategy inside the registry.
func (b *BoardScanner) Name() string {
	return b.name
}

// Scan fetches the board page and returns at most req.Limit candidates in page order.
func (b *BoardScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.TopicCandidate, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no url provided for source %s", req.Source)
	}

	doc, err := fetchDocument(ctx, b.client, req.URL)
	if err != nil {
		return nil, err
	}

	return b.extract(doc, limitOf(req.Limit)), nil
}

func (b *BoardScanner) extract(doc *goquery.Document, limit int) []domain.TopicCandidate {
	var topics []domain.TopicCandidate
	doc.Find(b.layout.item).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		title := strings.TrimSpace(item.Find(b.layout.title).First().Text())
		if title == "" {
			return true
		}
		href, _ := item.Find("a").First().Attr("href")
		topics = append(topics, domain.TopicCandidate{
			Title:        title,
			Keyword:      title,
			SearchVolume: parseHotNumber(item.Find(b.layout.hot).First().Text()),
			URL:          resolveURL(b.layout.baseURL, href),
		})
		return len(topics) < limit
	})
	return topics
}

func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	root, err := url.Parse(base)
	if err != nil {
		return href
	}
	return root.ResolveReference(ref).String()
}
