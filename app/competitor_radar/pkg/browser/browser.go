package browser

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/fetch"
)

// Fetcher 使用无头 Chrome 渲染页面后提取正文，适合依赖 JS 渲染的站点
type Fetcher struct {
	chromeBin string
	userAgent string
}

// New 创建浏览器抓取器，chromeBin 为空时自动查找
func New(chromeBin, userAgent string) *Fetcher {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	return &Fetcher{chromeBin: chromeBin, userAgent: userAgent}
}

var _ fetch.Fetcher = (*Fetcher)(nil)

// Fetch 实现 fetch.Fetcher。每次调用启动独立的浏览器实例，调用结束即关闭
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*fetch.Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", pageURL, err)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.allocatorOptions()...)
	defer cancelAlloc()

	// 屏蔽 chromedp 的调试输出
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	var html string
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(u.String()),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", pageURL, err)
	}

	return fetch.FromHTML(strings.NewReader(html), u)
}

func (f *Fetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.userAgent),
	)
	if f.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(f.chromeBin))
	}
	return opts
}

func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	// 交给 chromedp 使用其内置的查找逻辑
	return ""
}
