package llm

import (
	"github.com/cloudwego/eino/components/model"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/config"
)

// Tier 一次模型调用的参数档位，作为显式配置传给调用方
type Tier struct {
	Name        string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Options 转换为 eino 的调用选项
func (t Tier) Options() []model.Option {
	opts := []model.Option{
		model.WithTemperature(t.Temperature),
		model.WithMaxTokens(t.MaxTokens),
	}
	if t.Model != "" {
		opts = append(opts, model.WithModel(t.Model))
	}
	return opts
}

// FastTier 低成本档位，用于核心流程之外的轻量判断
func FastTier(cfg config.LLMConfig) Tier {
	return tierFrom("fast", cfg.Model, cfg.Fast)
}

// SmartTier 高能力档位，用于结构化综合分析
func SmartTier(cfg config.LLMConfig) Tier {
	return tierFrom("smart", cfg.Model, cfg.Smart)
}

func tierFrom(name, defaultModel string, t config.Tier) Tier {
	m := t.Model
	if m == "" {
		m = defaultModel
	}
	return Tier{
		Name:        name,
		Model:       m,
		Temperature: t.Temperature,
		MaxTokens:   t.MaxTokens,
	}
}

type jsonOptions struct {
	JSON bool
}

// WithJSONOutput 要求模型只输出 JSON，由支持该能力的实现读取
func WithJSONOutput() model.Option {
	return model.WrapImplSpecificOptFn(func(o *jsonOptions) {
		o.JSON = true
	})
}

// WantsJSON 判断调用选项中是否要求 JSON 输出
func WantsJSON(opts ...model.Option) bool {
	return model.GetImplSpecificOptions(&jsonOptions{}, opts...).JSON
}
