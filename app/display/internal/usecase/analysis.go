package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/delivery"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/engine"
	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/report"
)

// ErrNoCompetitors 没有可用来源，无法生成报告
var ErrNoCompetitors = errors.New("no competitors found")

// Runner 执行一次竞品分析
type Runner interface {
	Run(ctx context.Context, req dm.AnalysisRequest) (*engine.Outcome, error)
}

// HeadlineFunc 为分析结果生成标题
type HeadlineFunc func(ctx context.Context, req dm.AnalysisRequest, result *dm.AnalysisResult) string

// DeliveryResult 单个投递目标的结果
type DeliveryResult struct {
	Destination string `json:"destination"`
	Delivered   bool   `json:"delivered"`
	Error       string `json:"error,omitempty"`
}

// ReportResult 报告生成结果
type ReportResult struct {
	Outcome    *engine.Outcome
	Document   *report.Document
	Deliveries []DeliveryResult
}

// AnalysisUseCase 竞品分析业务逻辑
type AnalysisUseCase struct {
	runner     Runner
	headline   HeadlineFunc
	deliverer  delivery.Channel
	categories []string
	log        *log.Helper
}

// NewAnalysisUseCase 创建竞品分析业务逻辑实例，headline 和 deliverer 可为 nil
func NewAnalysisUseCase(runner Runner, headline HeadlineFunc, deliverer delivery.Channel, categories []string, logger log.Logger) *AnalysisUseCase {
	return &AnalysisUseCase{
		runner:     runner,
		headline:   headline,
		deliverer:  deliverer,
		categories: categories,
		log:        log.NewHelper(logger),
	}
}

// Analyze 执行分析并返回原始结果
func (uc *AnalysisUseCase) Analyze(ctx context.Context, req dm.AnalysisRequest) (*engine.Outcome, error) {
	out, err := uc.runner.Run(ctx, req)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("analysis failed: industry=%s err=%v", req.Industry, err)
		return nil, err
	}
	uc.log.WithContext(ctx).Infof("analysis %s finished: status=%s", out.RunID, out.Status)
	return out, nil
}

// Report 执行分析并渲染报告，按需投递到指定目标
func (uc *AnalysisUseCase) Report(ctx context.Context, req dm.AnalysisRequest, destinations []string) (*ReportResult, error) {
	out, err := uc.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	if out.Status != engine.StatusCompleted {
		return &ReportResult{Outcome: out}, ErrNoCompetitors
	}

	title := report.DefaultTitle(out.Request, out.Result)
	if uc.headline != nil {
		title = uc.headline(ctx, out.Request, out.Result)
	}
	doc, err := report.Render(report.Data{
		Title:   title,
		Request: out.Request,
		Result:  out.Result,
		Sources: out.Documents,
	})
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	res := &ReportResult{Outcome: out, Document: doc}
	for _, dest := range destinations {
		res.Deliveries = append(res.Deliveries, uc.deliver(ctx, doc, dest))
	}
	return res, nil
}

func (uc *AnalysisUseCase) deliver(ctx context.Context, doc *report.Document, dest string) DeliveryResult {
	if uc.deliverer == nil {
		return DeliveryResult{Destination: dest, Error: "delivery is not configured"}
	}
	if err := uc.deliverer.Deliver(ctx, doc, dest); err != nil {
		uc.log.WithContext(ctx).Warnf("deliver report to %s failed: %v", dest, err)
		return DeliveryResult{Destination: dest, Error: err.Error()}
	}
	return DeliveryResult{Destination: dest, Delivered: true}
}

// Categories 可选的行业类别
func (uc *AnalysisUseCase) Categories() []string {
	return uc.categories
}
