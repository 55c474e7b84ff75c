package factory

import (
	"fmt"
	"net/http"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/browser"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/config"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/fetch"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/firecrawl"
)

// NewFetcher 根据配置创建正文抓取器
func NewFetcher(cfg *config.Config) (fetch.Fetcher, error) {
	switch cfg.Fetch.Provider {
	case "readability", "":
		return fetch.NewReadabilityFetcher(&http.Client{Timeout: cfg.FetchTimeout()}, cfg.Fetch.UserAgent), nil

	case "firecrawl":
		if cfg.Fetch.Firecrawl.APIKey == "" {
			return nil, fmt.Errorf("firecrawl api key is missing")
		}
		return firecrawl.NewClient(cfg.Fetch.Firecrawl.APIKey, cfg.Fetch.Firecrawl.BaseURL), nil

	case "browser":
		return browser.New(cfg.Fetch.Browser.ChromeBin, cfg.Fetch.UserAgent), nil

	default:
		return nil, fmt.Errorf("unknown fetch provider: %s", cfg.Fetch.Provider)
	}
}
