package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiChatModel 把 genai 客户端适配为 eino 的 BaseChatModel
type GeminiChatModel struct {
	client *genai.Client
	model  string
}

// NewGeminiChatModel 创建 Gemini 模型客户端
func NewGeminiChatModel(ctx context.Context, apiKey, modelName string) (*GeminiChatModel, error) {
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiChatModel{client: client, model: modelName}, nil
}

var _ model.BaseChatModel = (*GeminiChatModel)(nil)

// Generate 实现 model.BaseChatModel
func (g *GeminiChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	name := g.model
	common := model.GetCommonOptions(&model.Options{Model: &name}, opts...)

	contents, system := toGenAIContents(input)
	cfg := generateConfig(common, WantsJSON(opts...))
	cfg.SystemInstruction = system

	resp, err := g.client.Models.GenerateContent(ctx, *common.Model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("gemini returned an empty response")
	}
	return schema.AssistantMessage(text, nil), nil
}

// Stream 流水线只使用一次性生成
func (g *GeminiChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("gemini chat model does not support streaming")
}

func generateConfig(o *model.Options, wantJSON bool) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if o.Temperature != nil {
		cfg.Temperature = genai.Ptr(*o.Temperature)
	}
	if o.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*o.MaxTokens)
	}
	if wantJSON {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

// toGenAIContents 拆分 system 消息作为 SystemInstruction，其余按角色转换
func toGenAIContents(input []*schema.Message) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, m := range input {
		switch m.Role {
		case schema.System:
			system = append(system, m.Content)
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
}
