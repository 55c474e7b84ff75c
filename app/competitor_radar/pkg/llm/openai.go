package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// OpenAIChatModel 包装两个 eino-ext openai 客户端：
// 带 WithJSONOutput 的调用走 json_object 模式，其余调用输出普通文本
type OpenAIChatModel struct {
	text model.BaseChatModel
	json model.BaseChatModel
}

// NewOpenAIChatModel 创建 OpenAI 兼容接口的模型客户端
func NewOpenAIChatModel(ctx context.Context, baseURL, apiKey, modelName string, timeout time.Duration) (*OpenAIChatModel, error) {
	newClient := func(format *openai.ChatCompletionResponseFormat) (*openai.ChatModel, error) {
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:        baseURL,
			APIKey:         apiKey,
			Model:          modelName,
			Timeout:        timeout,
			ResponseFormat: format,
		})
	}

	text, err := newClient(nil)
	if err != nil {
		return nil, fmt.Errorf("init openai chat model: %w", err)
	}
	js, err := newClient(&openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	})
	if err != nil {
		return nil, fmt.Errorf("init openai json chat model: %w", err)
	}
	return &OpenAIChatModel{text: text, json: js}, nil
}

var _ model.BaseChatModel = (*OpenAIChatModel)(nil)

func (o *OpenAIChatModel) pick(opts []model.Option) model.BaseChatModel {
	if WantsJSON(opts...) {
		return o.json
	}
	return o.text
}

// Generate 实现 model.BaseChatModel
func (o *OpenAIChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	return o.pick(opts).Generate(ctx, input, opts...)
}

// Stream 实现 model.BaseChatModel
func (o *OpenAIChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return o.pick(opts).Stream(ctx, input, opts...)
}
