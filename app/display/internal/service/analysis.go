package service

import (
	"context"
	stderrors "errors"
	"mime"
	nethttp "net/http"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/engine"
	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
	"github.com/iWorld-y/competitor_radar/app/display/internal/usecase"
)

// ReportRequest 生成报告的请求体
type ReportRequest struct {
	dm.AnalysisRequest
	Deliver []string `json:"deliver,omitempty"`
}

// ReportReply JSON 格式的报告响应
type ReportReply struct {
	Title      string                   `json:"title"`
	RunID      string                   `json:"run_id"`
	Markdown   string                   `json:"markdown"`
	HTML       string                   `json:"html"`
	Deliveries []usecase.DeliveryResult `json:"deliveries,omitempty"`
}

// CategoriesReply 行业类别列表
type CategoriesReply struct {
	Categories []string `json:"categories"`
}

const (
	OperationCreateAnalysis = "/competitor_radar.v1.Analysis/CreateAnalysis"
	OperationCreateReport   = "/competitor_radar.v1.Analysis/CreateReport"
)

type AnalysisService struct {
	uc  *usecase.AnalysisUseCase
	log *log.Helper
}

func NewAnalysisService(uc *usecase.AnalysisUseCase, logger log.Logger) *AnalysisService {
	return &AnalysisService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

// CreateAnalysis POST /v1/analyses
func (s *AnalysisService) CreateAnalysis(ctx http.Context) error {
	var req dm.AnalysisRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.BadRequest("INVALID_REQUEST", err.Error())
	}

	http.SetOperation(ctx, OperationCreateAnalysis)
	h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
		out, err := s.uc.Analyze(ctx, *req.(*dm.AnalysisRequest))
		if err != nil {
			return nil, toHTTPError(err)
		}
		return out, nil
	})
	out, err := h(ctx, &req)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, out)
}

// CreateReport POST /v1/reports。Accept 为 application/json 时返回 JSON，否则返回 HTML 文档
func (s *AnalysisService) CreateReport(ctx http.Context) error {
	var req ReportRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.BadRequest("INVALID_REQUEST", err.Error())
	}

	http.SetOperation(ctx, OperationCreateReport)
	h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
		in := req.(*ReportRequest)
		res, err := s.uc.Report(ctx, in.AnalysisRequest, in.Deliver)
		if stderrors.Is(err, usecase.ErrNoCompetitors) {
			return nil, errors.NotFound("NO_COMPETITORS_FOUND", "no competitor sources were found for this product")
		}
		if err != nil {
			return nil, toHTTPError(err)
		}
		return res, nil
	})
	out, err := h(ctx, &req)
	if err != nil {
		return err
	}
	res := out.(*usecase.ReportResult)

	if acceptsJSON(ctx.Header().Values("Accept")) {
		return ctx.JSON(nethttp.StatusOK, &ReportReply{
			Title:      res.Document.Title,
			RunID:      res.Outcome.RunID,
			Markdown:   res.Document.Markdown,
			HTML:       res.Document.HTML,
			Deliveries: res.Deliveries,
		})
	}
	return ctx.Blob(nethttp.StatusOK, "text/html; charset=utf-8", []byte(res.Document.HTML))
}

// ListCategories GET /v1/categories
func (s *AnalysisService) ListCategories(ctx http.Context) error {
	return ctx.JSON(nethttp.StatusOK, &CategoriesReply{Categories: s.uc.Categories()})
}

// acceptsJSON 判断 Accept 中是否列出了 application/json
func acceptsJSON(values []string) bool {
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
			if err == nil && mt == "application/json" {
				return true
			}
		}
	}
	return false
}

// toHTTPError 把流水线错误映射为 HTTP 状态码
func toHTTPError(err error) error {
	md := map[string]string{}
	var pe *engine.PipelineError
	if stderrors.As(err, &pe) {
		md["stage"] = string(pe.Stage)
	}

	var e *errors.Error
	switch engine.KindOf(err) {
	case engine.KindInvalidRequest:
		e = errors.BadRequest(string(engine.KindInvalidRequest), err.Error())
	case engine.KindSynthesisSchemaFailure:
		e = errors.New(nethttp.StatusUnprocessableEntity, string(engine.KindSynthesisSchemaFailure), err.Error())
	case engine.KindDiscoveryFailure, engine.KindRetrievalFailure, engine.KindSynthesisCapabilityFailure:
		e = errors.New(nethttp.StatusBadGateway, string(engine.KindOf(err)), err.Error())
	default:
		e = errors.InternalServer("INTERNAL", err.Error())
	}
	return e.WithMetadata(md).WithCause(err)
}
