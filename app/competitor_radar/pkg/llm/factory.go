package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/config"
)

// NewChatModel 根据配置创建模型客户端
func NewChatModel(ctx context.Context, cfg *config.Config) (model.BaseChatModel, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("llm api key is missing")
	}

	switch cfg.LLM.Provider {
	case "openai", "":
		cm, err := NewOpenAIChatModel(ctx, cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLMTimeout())
		if err != nil {
			return nil, err
		}
		return cm, nil

	case "gemini":
		cm, err := NewGeminiChatModel(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			return nil, err
		}
		return cm, nil

	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}
