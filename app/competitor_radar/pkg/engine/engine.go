package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/config"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/fetch"
	fetchfactory "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/fetch/factory"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/llm"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/logger"
	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/search"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/search/factory"
)

// Status 一次运行的结束状态
type Status string

const (
	StatusCompleted          Status = "completed"
	StatusNoCompetitorsFound Status = "no_competitors_found"
)

// Outcome 一次运行的结果。只有 StatusCompleted 时 Result 非空
type Outcome struct {
	RunID     string                 `json:"run_id"`
	Status    Status                 `json:"status"`
	Request   dm.AnalysisRequest     `json:"request"`
	Locators  []dm.SourceLocator     `json:"locators"`
	Documents []dm.RetrievedDocument `json:"documents,omitempty"`
	Result    *dm.AnalysisResult     `json:"result,omitempty"`
	Duration  time.Duration          `json:"duration"`
}

// FailedFetches 抓取失败的来源数
func (o *Outcome) FailedFetches() int {
	n := 0
	for _, d := range o.Documents {
		if d.FetchFailed {
			n++
		}
	}
	return n
}

// Partial 是否存在部分来源抓取失败 (RetrievalPartial)
func (o *Outcome) Partial() bool {
	return o.FailedFetches() > 0
}

// ProgressFunc 阶段进度回调
type ProgressFunc func(stage Stage, status string)

type options struct {
	searcher    search.Searcher
	fetcher     fetch.Fetcher
	chatModel   model.BaseChatModel
	discoverer  Discoverer
	retriever   Retriever
	synthesizer Synthesizer
	limiter     *rate.Limiter
	progress    ProgressFunc
}

// Option 引擎构造选项
type Option func(*options)

// WithSearcher 使用指定的搜索客户端
func WithSearcher(s search.Searcher) Option {
	return func(o *options) { o.searcher = s }
}

// WithFetcher 使用指定的抓取器
func WithFetcher(f fetch.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithChatModel 使用指定的模型客户端
func WithChatModel(cm model.BaseChatModel) Option {
	return func(o *options) { o.chatModel = cm }
}

// WithDiscoverer 替换发现阶段
func WithDiscoverer(d Discoverer) Option {
	return func(o *options) { o.discoverer = d }
}

// WithRetriever 替换抓取阶段
func WithRetriever(r Retriever) Option {
	return func(o *options) { o.retriever = r }
}

// WithSynthesizer 替换综合分析阶段
func WithSynthesizer(s Synthesizer) Option {
	return func(o *options) { o.synthesizer = s }
}

// WithLimiter 与其他引擎共享限流器
func WithLimiter(l *rate.Limiter) Option {
	return func(o *options) { o.limiter = l }
}

// WithProgress 设置进度回调
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// Engine 流水线控制器：Discovery -> Retrieval -> Synthesis
type Engine struct {
	cfg        *config.Config
	categories []string
	discovery  Discoverer
	retrieval  Retriever
	synthesis  Synthesizer
	progress   ProgressFunc
}

// NewEngine 创建引擎实例。未通过 Option 指定的组件按配置创建
func NewEngine(cfg *config.Config, opts ...Option) (*Engine, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// 初始化限流器
	limiter := o.limiter
	if limiter == nil {
		limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
		burst := cfg.Concurrency.QPS
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(limit, burst)
	}

	discovery := o.discoverer
	if discovery == nil {
		searcher := o.searcher
		if searcher == nil {
			var err error
			searcher, err = factory.NewSearcher(cfg)
			if err != nil {
				return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
			}
		}
		discovery = NewDiscovery(searcher, cfg.Search.MaxResults, cfg.SearchTimeout(), limiter)
	}

	retrieval := o.retriever
	if retrieval == nil {
		fetcher := o.fetcher
		if fetcher == nil {
			var err error
			fetcher, err = fetchfactory.NewFetcher(cfg)
			if err != nil {
				return nil, fmt.Errorf("抓取器初始化失败: %w", err)
			}
		}
		retrieval = NewRetrieval(fetcher, cfg.Fetch.MaxChars, cfg.FetchTimeout(), limiter)
	}

	synthesis := o.synthesizer
	if synthesis == nil {
		cm := o.chatModel
		if cm == nil {
			var err error
			cm, err = llm.NewChatModel(context.Background(), cfg)
			if err != nil {
				return nil, fmt.Errorf("LLM 初始化失败: %w", err)
			}
		}
		synthesis = NewSynthesis(cm, llm.SmartTier(cfg.LLM), cfg.LLMTimeout(), limiter)
	}

	return &Engine{
		cfg:        cfg,
		categories: cfg.Categories,
		discovery:  discovery,
		retrieval:  retrieval,
		synthesis:  synthesis,
		progress:   o.progress,
	}, nil
}

func (e *Engine) report(stage Stage, status string) {
	if e.progress != nil {
		e.progress(stage, status)
	}
}

// Run 执行一次竞品分析。各阶段按顺序各调用一次，任一阶段出错立即返回
// *PipelineError，不会返回部分结果。
func (e *Engine) Run(ctx context.Context, req dm.AnalysisRequest) (*Outcome, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := logger.Log.WithFields(logrus.Fields{"run_id": runID})

	req = req.Normalized()
	if err := req.Validate(e.categories); err != nil {
		log.Warnf("请求参数不合法: %v", err)
		return nil, newPipelineError(StageRequest, err)
	}

	outcome := &Outcome{RunID: runID, Request: req}
	log.Infof("开始竞品分析: industry=%s", req.Industry)

	e.report(StageDiscovery, "searching competitors")
	locators, err := e.discovery.Discover(ctx, req)
	if err != nil {
		log.WithField("stage", StageDiscovery).Errorf("竞品发现失败: %v", err)
		return nil, newPipelineError(StageDiscovery, err)
	}
	outcome.Locators = locators
	if len(locators) == 0 {
		log.Warn("未发现任何竞品来源")
		outcome.Status = StatusNoCompetitorsFound
		outcome.Duration = time.Since(start)
		e.report(StageDiscovery, string(StatusNoCompetitorsFound))
		return outcome, nil
	}
	log.Infof("发现 %d 个竞品来源", len(locators))

	e.report(StageRetrieval, fmt.Sprintf("fetching %d sources", len(locators)))
	docs := e.retrieval.Retrieve(ctx, locators)
	if len(docs) != len(locators) {
		err := fmt.Errorf("retrieved %d documents for %d locators", len(docs), len(locators))
		log.WithField("stage", StageRetrieval).Error(err)
		return nil, newPipelineError(StageRetrieval, err)
	}
	outcome.Documents = docs
	if failed := outcome.FailedFetches(); failed > 0 {
		log.WithField("stage", StageRetrieval).Warnf("部分来源抓取失败: %d/%d", failed, len(docs))
	}

	e.report(StageSynthesis, "analysing competitors")
	result, err := e.synthesis.Synthesize(ctx, req, docs)
	if err != nil {
		log.WithField("stage", StageSynthesis).Errorf("综合分析失败: %v", err)
		return nil, newPipelineError(StageSynthesis, err)
	}

	outcome.Status = StatusCompleted
	outcome.Result = result
	outcome.Duration = time.Since(start)
	log.Infof("竞品分析完成: %d 个竞品, 耗时 %s", len(result.CompetitorSummaries), outcome.Duration.Round(time.Millisecond))
	e.report(StageSynthesis, string(StatusCompleted))
	return outcome, nil
}

// Categories 可选的行业类别
func (e *Engine) Categories() []string {
	return e.categories
}
