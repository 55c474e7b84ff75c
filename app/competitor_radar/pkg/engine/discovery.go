package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/search"
)

// Discoverer 发现候选竞品来源
type Discoverer interface {
	Discover(ctx context.Context, req dm.AnalysisRequest) ([]dm.SourceLocator, error)
}

// Discovery 基于搜索服务的竞品发现
type Discovery struct {
	searcher   search.Searcher
	maxResults int
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewDiscovery 创建发现阶段
func NewDiscovery(searcher search.Searcher, maxResults int, timeout time.Duration, limiter *rate.Limiter) *Discovery {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &Discovery{
		searcher:   searcher,
		maxResults: maxResults,
		timeout:    timeout,
		limiter:    limiter,
	}
}

// BuildQuery 组合行业和产品简介作为相关性查询
func BuildQuery(req dm.AnalysisRequest) string {
	return fmt.Sprintf("top competitors in %s similar to %s", req.Industry, req.ProductSummary)
}

// Discover 发起一次搜索，按服务端排序返回前 maxResults 个来源。
// 搜索无结果时返回空切片和 nil。
func (d *Discovery) Discover(ctx context.Context, req dm.AnalysisRequest) ([]dm.SourceLocator, error) {
	if err := wait(ctx, d.limiter); err != nil {
		return nil, fmt.Errorf("search rate limit: %w", err)
	}

	callCtx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.searcher.Search(callCtx, &search.Request{
		Query:      BuildQuery(req),
		Topic:      "general",
		MaxResults: d.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("search competitors: %w", err)
	}
	if resp == nil {
		return []dm.SourceLocator{}, nil
	}

	locators := make([]dm.SourceLocator, 0, d.maxResults)
	for _, r := range resp.Results {
		if len(locators) >= d.maxResults {
			break
		}
		u := strings.TrimSpace(r.URL)
		if u == "" {
			continue
		}
		locators = append(locators, dm.SourceLocator(u))
	}
	return locators, nil
}

func wait(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
