package seo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TrendPress/internal/config"
	"TrendPress/internal/ports"
)

const defaultTimeout = 10 * time.Second

// GoogleSubmitter submits the sitemap to the search console endpoint.
type GoogleSubmitter struct {
	endpoint string
	client   *http.Client
}

var _ ports.Indexer = (*GoogleSubmitter)(nil)

// NewGoogleSubmitter builds a submitter for the given console base URL.
func NewGoogleSubmitter(endpoint string, client *http.Client) *GoogleSubmitter {
	return &GoogleSubmitter{endpoint: strings.TrimRight(endpoint, "/"), client: orDefault(client)}
}

func (g *GoogleSubmitter) Name() string { return "google-submit" }

// Notify issues GET <endpoint>/sitemap.xml?sitemap=<url>.
func (g *GoogleSubmitter) Notify(ctx context.Context, sitemapURL string) error {
	target := g.endpoint + "/sitemap.xml?" + url.Values{"sitemap": {sitemapURL}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	return do(g.client, req)
}

// BaiduSubmitter posts the sitemap to the Baidu link submission API.
type BaiduSubmitter struct {
	endpoint string
	site     string
	token    string
	client   *http.Client
}

var _ ports.Indexer = (*BaiduSubmitter)(nil)

// NewBaiduSubmitter builds a submitter for the site with its push token.
func NewBaiduSubmitter(endpoint, site, token string, client *http.Client) *BaiduSubmitter {
	return &BaiduSubmitter{endpoint: endpoint, site: site, token: token, client: orDefault(client)}
}

func (b *BaiduSubmitter) Name() string { return "baidu-submit" }

type baiduPayload struct {
	Site    string `json:"site"`
	Token   string `json:"token"`
	Sitemap string `json:"sitemap"`
}

// Notify posts {site, token, sitemap} as JSON.
func (b *BaiduSubmitter) Notify(ctx context.Context, sitemapURL string) error {
	body, err := json.Marshal(baiduPayload{Site: b.site, Token: b.token, Sitemap: sitemapURL})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return do(b.client, req)
}

// Pinger hits a ping URL template whose %s receives the escaped sitemap URL.
type Pinger struct {
	template string
	client   *http.Client
}

var _ ports.Indexer = (*Pinger)(nil)

// NewPinger builds a pinger for one template.
func NewPinger(template string, client *http.Client) *Pinger {
	return &Pinger{template: template, client: orDefault(client)}
}

// Name is the pinged host.
func (p *Pinger) Name() string {
	if u, err := url.Parse(p.template); err == nil && u.Host != "" {
		return "ping:" + u.Host
	}
	return "ping"
}

func (p *Pinger) Notify(ctx context.Context, sitemapURL string) error {
	target := p.template
	if strings.Contains(target, "%s") {
		target = fmt.Sprintf(target, url.QueryEscape(sitemapURL))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	return do(p.client, req)
}

// Indexers builds the configured notification targets: the Google and Baidu
// submitters when their endpoints are set, then every ping template.
func Indexers(cfg config.SEOConfig, client *http.Client) []ports.Indexer {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	var out []ports.Indexer
	if cfg.GoogleSubmitURL != "" {
		out = append(out, NewGoogleSubmitter(cfg.GoogleSubmitURL, client))
	}
	if cfg.BaiduSubmitURL != "" {
		out = append(out, NewBaiduSubmitter(cfg.BaiduSubmitURL, cfg.SiteURL, cfg.BaiduToken, client))
	}
	for _, tpl := range cfg.PingURLs {
		if strings.TrimSpace(tpl) != "" {
			out = append(out, NewPinger(tpl, client))
		}
	}
	return out
}

func do(client *http.Client, req *http.Request) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s", req.Method, req.URL.Host, resp.Status)
	}
	return nil
}

func orDefault(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Timeout: defaultTimeout}
	}
	return client
}
