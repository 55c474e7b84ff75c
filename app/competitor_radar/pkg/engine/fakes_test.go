package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/config"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/fetch"
	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/search"
)

func TestMain(m *testing.M) {
	// genai 依赖的 opencensus 在 init 中启动常驻 worker
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type fakeSearcher struct {
	mu      sync.Mutex
	results []search.Result
	err     error
	calls   int
	lastReq *search.Request
}

func (f *fakeSearcher) Search(_ context.Context, req *search.Request) (*search.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &search.Response{Results: f.results}, nil
}

type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	panics map[string]bool
	calls  []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*fetch.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	if f.panics[url] {
		panic("parser exploded")
	}
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	content, ok := f.pages[url]
	if !ok {
		return nil, errors.New("HTTP 404")
	}
	return &fetch.Page{URL: url, Title: "Title of " + url, Content: content}, nil
}

// blockingFetcher 一直等到调用超时
type blockingFetcher struct{}

func (blockingFetcher) Fetch(ctx context.Context, _ string) (*fetch.Page, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type fakeChatModel struct {
	mu        sync.Mutex
	content   string
	err       error
	calls     int
	lastInput []*schema.Message
	lastOpts  []model.Option
}

var _ model.BaseChatModel = (*fakeChatModel)(nil)

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastInput = input
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.content, nil), nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeChatModel) prompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.lastInput) == 0 {
		return ""
	}
	return f.lastInput[len(f.lastInput)-1].Content
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.LLM.APIKey = "test"
	return cfg
}

func newTestEngine(t *testing.T, s search.Searcher, f fetch.Fetcher, cm model.BaseChatModel) *Engine {
	t.Helper()
	e, err := NewEngine(testConfig(),
		WithSearcher(s),
		WithFetcher(f),
		WithChatModel(cm),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
	)
	require.NoError(t, err)
	return e
}

func validRequest() dm.AnalysisRequest {
	return dm.AnalysisRequest{
		Industry:       "AI coding assistants",
		ProductSummary: "An AI pair programmer that reviews pull requests",
	}
}

func sampleResult() dm.AnalysisResult {
	return dm.AnalysisResult{
		CompetitorSummaries: []dm.CompetitorProfile{
			{
				Name:                   "CodeBot",
				WebsiteURL:             "https://codebot.example",
				Description:            "AI code completion for IDEs",
				KeyFeatures:            []string{"Autocomplete", "Chat"},
				PricingModel:           "$10/month per seat",
				TargetMarket:           "Individual developers",
				Strengths:              []string{"Large user base"},
				Weaknesses:             []string{},
				UniqueValueProposition: "Fast inline suggestions",
				TechnologyStack:        []string{dm.NotSpecified},
				MarketPosition:         "leader",
			},
		},
		ComparisonMatrix: []dm.ComparisonRow{
			{"Feature": "Autocomplete", "Your Product": "✗", "CodeBot": "✓"},
			{"Feature": "PR review", "Your Product": "✓", "CodeBot": "?"},
		},
		StrategicAnalysis: dm.StrategicAnalysis{
			MarketPositioning:          "Review-first assistant",
			CompetitiveAdvantages:      []string{"Focus on review"},
			AreasOfOverlap:             []string{"Chat"},
			GapsAndOpportunities:       []string{"Team analytics"},
			RecommendedDifferentiators: []string{"Security review"},
			GoToMarketStrategy:         "Bottom-up via GitHub marketplace",
			ThreatAssessment:           "Incumbents may add review",
			MarketSizeInsights:         dm.NotSpecified,
			NextSteps:                  []string{"Ship GitHub app"},
		},
	}
}

// threeCompetitorResult 在 sampleResult 基础上补齐三个竞品
func threeCompetitorResult() dm.AnalysisResult {
	r := sampleResult()
	base := r.CompetitorSummaries[0]
	for _, c := range []struct{ name, url string }{
		{"ReviewPal", "https://reviewpal.example"},
		{"ChatDev", "https://chatdev.example"},
	} {
		p := base
		p.Name, p.WebsiteURL = c.name, c.url
		r.CompetitorSummaries = append(r.CompetitorSummaries, p)
	}
	r.ComparisonMatrix = append(r.ComparisonMatrix,
		dm.ComparisonRow{"Feature": "Chat", "Your Product": "✗", "CodeBot": "✓", "ReviewPal": "✗", "ChatDev": "✓"})
	return r
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

// resultDoc 返回可修改的通用 JSON 文档，用于构造不合法输出
func resultDoc(t *testing.T) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustJSON(t, sampleResult())), &doc))
	return doc
}
