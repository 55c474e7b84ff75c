package report

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/llm"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/logger"
	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
)

const maxHeadlineLength = 100

// DefaultTitle 不依赖模型的确定性标题
func DefaultTitle(req dm.AnalysisRequest, result *dm.AnalysisResult) string {
	n := 0
	if result != nil {
		n = len(result.CompetitorSummaries)
	}
	return fmt.Sprintf("Competitor Analysis: %s (%d competitors)", req.Industry, n)
}

// Headline 用 fast 档位生成一句话标题，失败时回退到 DefaultTitle
func Headline(ctx context.Context, cm model.BaseChatModel, tier llm.Tier, req dm.AnalysisRequest, result *dm.AnalysisResult) string {
	fallback := DefaultTitle(req, result)
	if cm == nil || result == nil {
		return fallback
	}

	prompt := fmt.Sprintf(`Write one headline (at most 12 words) summarising this competitive analysis for an email subject.
Industry: %s
Product: %s
Competitors: %s
Threat assessment: %s
Reply with the headline only.`,
		req.Industry, req.ProductSummary,
		strings.Join(result.Competitors(), ", "),
		result.StrategicAnalysis.ThreatAssessment)

	resp, err := cm.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)}, tier.Options()...)
	if err != nil || resp == nil {
		logger.Log.Warnf("生成报告标题失败，使用默认标题: %v", err)
		return fallback
	}

	headline := cleanHeadline(resp.Content)
	if headline == "" {
		return fallback
	}
	return headline
}

func cleanHeadline(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "\"'`*# ")
	if utf8.RuneCountInString(s) > maxHeadlineLength {
		s = string([]rune(s)[:maxHeadlineLength])
	}
	return strings.TrimSpace(s)
}
