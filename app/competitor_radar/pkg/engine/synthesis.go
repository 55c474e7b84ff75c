package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/llm"
	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
)

// Synthesizer 由抓取内容生成结构化分析
type Synthesizer interface {
	Synthesize(ctx context.Context, req dm.AnalysisRequest, docs []dm.RetrievedDocument) (*dm.AnalysisResult, error)
}

// Synthesis 调用模型生成并校验 AnalysisResult
type Synthesis struct {
	chatModel model.BaseChatModel
	tier      llm.Tier
	timeout   time.Duration
	limiter   *rate.Limiter
}

// NewSynthesis 创建综合分析阶段，tier 决定模型档位
func NewSynthesis(cm model.BaseChatModel, tier llm.Tier, timeout time.Duration, limiter *rate.Limiter) *Synthesis {
	return &Synthesis{
		chatModel: cm,
		tier:      tier,
		timeout:   timeout,
		limiter:   limiter,
	}
}

// Synthesize 实现 Synthesizer。模型调用失败返回普通错误，
// 输出不符合 schema 返回 *SchemaError。
func (s *Synthesis) Synthesize(ctx context.Context, req dm.AnalysisRequest, docs []dm.RetrievedDocument) (*dm.AnalysisResult, error) {
	messages := BuildMessages(req, docs)

	if err := wait(ctx, s.limiter); err != nil {
		return nil, fmt.Errorf("llm rate limit: %w", err)
	}

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	opts := append(s.tier.Options(), llm.WithJSONOutput())
	resp, err := s.chatModel.Generate(callCtx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("invoke %s model: %w", s.tier.Name, err)
	}
	if resp == nil {
		return nil, errors.New("model returned no message")
	}

	return ParseAnalysis(resp.Content)
}
