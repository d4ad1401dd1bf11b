package parser

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultLimit   = 20
	defaultTimeout = 10 * time.Second
)

var nonNumeric = regexp.MustCompile(`[^\d.]`)

func defaultClient(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Timeout: defaultTimeout}
	}
	return client
}

func fetchDocument(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// parseHotNumber turns board heat strings like "4.5万" or "1.2亿热度" into a number.
func parseHotNumber(hot string) *float64 {
	hot = strings.TrimSpace(hot)
	if hot == "" {
		return nil
	}
	num, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(hot, ""), 64)
	if err != nil {
		return nil
	}
	switch {
	case strings.Contains(hot, "万"):
		num *= 1e4
	case strings.Contains(hot, "亿"):
		num *= 1e8
	}
	return &num
}

func limitOf(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}
