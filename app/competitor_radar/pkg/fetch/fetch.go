package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-shiori/go-readability"
)

// DefaultUserAgent 抓取竞品页面时使用的 UA
const DefaultUserAgent = "Mozilla/5.0 (compatible; CompetitorRadar/1.0)"

// maxBodySize 单个页面最多读取 2MB
const maxBodySize = 2 << 20

// Fetcher 抓取单个来源的正文
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Page, error)
}

// Page 抓取到的页面正文
type Page struct {
	URL     string
	Title   string
	Content string
}

// ReadabilityFetcher 通过 HTTP 获取页面并用 readability 提取正文
type ReadabilityFetcher struct {
	client    *http.Client
	userAgent string
}

// NewReadabilityFetcher 创建 readability 抓取器
func NewReadabilityFetcher(client *http.Client, userAgent string) *ReadabilityFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &ReadabilityFetcher{client: client, userAgent: userAgent}
}

var _ Fetcher = (*ReadabilityFetcher)(nil)

// Fetch 实现 Fetcher
func (f *ReadabilityFetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", pageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", pageURL, resp.StatusCode)
	}

	return FromHTML(io.LimitReader(resp.Body, maxBodySize), u)
}

// FromHTML 从 HTML 中提取正文
func FromHTML(r io.Reader, pageURL *url.URL) (*Page, error) {
	article, err := readability.FromReader(r, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract content from %s: %w", pageURL, err)
	}
	return &Page{
		URL:     pageURL.String(),
		Title:   article.Title,
		Content: article.TextContent,
	}, nil
}
