package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/fetch"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/logger"
	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
)

var (
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
	multiSpacePattern   = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// Retriever 抓取每个来源的正文。返回值与输入一一对应、顺序一致
type Retriever interface {
	Retrieve(ctx context.Context, locators []dm.SourceLocator) []dm.RetrievedDocument
}

// Retrieval 逐个抓取来源，单个来源失败只记录不中断
type Retrieval struct {
	fetcher  fetch.Fetcher
	maxChars int
	timeout  time.Duration
	limiter  *rate.Limiter
}

// NewRetrieval 创建抓取阶段
func NewRetrieval(fetcher fetch.Fetcher, maxChars int, timeout time.Duration, limiter *rate.Limiter) *Retrieval {
	if maxChars <= 0 {
		maxChars = 1000
	}
	return &Retrieval{
		fetcher:  fetcher,
		maxChars: maxChars,
		timeout:  timeout,
		limiter:  limiter,
	}
}

// Retrieve 实现 Retriever
func (r *Retrieval) Retrieve(ctx context.Context, locators []dm.SourceLocator) []dm.RetrievedDocument {
	docs := make([]dm.RetrievedDocument, len(locators))
	for i, loc := range locators {
		docs[i] = r.retrieveOne(ctx, loc)
	}
	return docs
}

func (r *Retrieval) retrieveOne(ctx context.Context, loc dm.SourceLocator) (doc dm.RetrievedDocument) {
	entry := logger.Log.WithFields(logrus.Fields{"stage": StageRetrieval, "locator": loc})
	doc = dm.RetrievedDocument{Locator: loc}

	defer func() {
		if p := recover(); p != nil {
			entry.Errorf("抓取来源时发生 panic: %v", p)
			doc = dm.RetrievedDocument{Locator: loc, FetchFailed: true}
		}
	}()

	page, err := r.fetch(ctx, loc)
	if err != nil {
		entry.Warnf("抓取来源失败: %v", err)
		doc.FetchFailed = true
		return doc
	}

	doc.Title = page.Title
	doc.Content = Truncate(Normalize(page.Content), r.maxChars)
	entry.Debugf("抓取来源成功，保留 %d 字符", len([]rune(doc.Content)))
	return doc
}

func (r *Retrieval) fetch(ctx context.Context, loc dm.SourceLocator) (*fetch.Page, error) {
	if err := wait(ctx, r.limiter); err != nil {
		return nil, fmt.Errorf("fetch rate limit: %w", err)
	}

	callCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	page, err := r.fetcher.Fetch(callCtx, string(loc))
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("fetcher returned no page for %s", loc)
	}
	return page, nil
}

// Normalize 折叠多余空白
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = multiSpacePattern.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = multiNewlinePattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Truncate 按字符数截断，不会截断多字节字符
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}
