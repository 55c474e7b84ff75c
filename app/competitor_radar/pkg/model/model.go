package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// NotSpecified 源数据缺失时的显式占位值
const NotSpecified = "Not specified"

// MaxSummaryLength 产品简介的最大字符数
const MaxSummaryLength = 300

// ErrInvalidRequest 请求参数不合法
var ErrInvalidRequest = errors.New("invalid analysis request")

// AnalysisRequest 单次分析的输入
type AnalysisRequest struct {
	Industry       string `json:"industry"`
	ProductSummary string `json:"product_summary"`
}

// Validate 校验行业是否在允许的类别中，以及简介长度
func (r AnalysisRequest) Validate(categories []string) error {
	industry := strings.TrimSpace(r.Industry)
	if industry == "" {
		return fmt.Errorf("%w: industry is required", ErrInvalidRequest)
	}
	if len(categories) > 0 && !slices.Contains(categories, industry) {
		return fmt.Errorf("%w: unknown industry %q", ErrInvalidRequest, industry)
	}

	summary := strings.TrimSpace(r.ProductSummary)
	if summary == "" {
		return fmt.Errorf("%w: product summary is required", ErrInvalidRequest)
	}
	if n := utf8.RuneCountInString(summary); n > MaxSummaryLength {
		return fmt.Errorf("%w: product summary is %d characters, limit is %d", ErrInvalidRequest, n, MaxSummaryLength)
	}
	return nil
}

// Normalized 返回去除首尾空白后的请求
func (r AnalysisRequest) Normalized() AnalysisRequest {
	return AnalysisRequest{
		Industry:       strings.TrimSpace(r.Industry),
		ProductSummary: strings.TrimSpace(r.ProductSummary),
	}
}

// SourceLocator 竞品来源定位符 (URL)
type SourceLocator string

// RetrievedDocument 单个来源的抓取结果，失败也会保留记录
type RetrievedDocument struct {
	Locator     SourceLocator `json:"locator"`
	Title       string        `json:"title,omitempty"`
	Content     string        `json:"content"`
	FetchFailed bool          `json:"fetch_failed"`
}

// CompetitorProfile 竞品画像
type CompetitorProfile struct {
	Name                   string   `json:"name"`
	WebsiteURL             string   `json:"website_url"`
	Description            string   `json:"company_description"`
	KeyFeatures            []string `json:"key_features"`
	PricingModel           string   `json:"pricing_model"`
	TargetMarket           string   `json:"target_market"`
	Strengths              []string `json:"strengths"`
	Weaknesses             []string `json:"weaknesses"`
	UniqueValueProposition string   `json:"unique_value_proposition"`
	TechnologyStack        []string `json:"technology_stack"`
	MarketPosition         string   `json:"market_position"`
}

// StrategicAnalysis 战略分析
type StrategicAnalysis struct {
	MarketPositioning          string   `json:"market_positioning"`
	CompetitiveAdvantages      []string `json:"competitive_advantages"`
	AreasOfOverlap             []string `json:"areas_of_overlap"`
	GapsAndOpportunities       []string `json:"gaps_and_opportunities"`
	RecommendedDifferentiators []string `json:"recommended_differentiators"`
	GoToMarketStrategy         string   `json:"go_to_market_strategy"`
	ThreatAssessment           string   `json:"threat_assessment"`
	MarketSizeInsights         string   `json:"market_size_insights"`
	NextSteps                  []string `json:"next_steps"`
}

// AnalysisResult 流水线唯一的成功产物
type AnalysisResult struct {
	CompetitorSummaries []CompetitorProfile `json:"competitor_summaries"`
	ComparisonMatrix    []ComparisonRow     `json:"comparison_matrix"`
	StrategicAnalysis   StrategicAnalysis   `json:"strategic_analysis"`
}

// Competitors 返回所有竞品名称
func (r *AnalysisResult) Competitors() []string {
	names := make([]string, 0, len(r.CompetitorSummaries))
	for _, c := range r.CompetitorSummaries {
		names = append(names, c.Name)
	}
	return names
}
