package providers

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// EinoProvider Eino 封装的 LLM 提供者（默认使用）
// 使用 ai/component 封装的 ChatModel（基于 eino-ext 的 ark/openai 模块）
// 实现了 storytools.LLMProvider 接口
type EinoProvider struct {
	chatModel model.ChatModel
}

// NewEinoProvider 创建基于 Eino 的 LLM 提供者
//
// Args:
//   - chatModel: 通过 ai/component.NewChatModel 创建的 ChatModel 实例
//
// Returns:
//   - *EinoProvider: LLM 提供者实例
func NewEinoProvider(chatModel model.ChatModel) *EinoProvider {
	return &EinoProvider{
		chatModel: chatModel,
	}
}

// Generate 根据提示词生成文本（使用 eino ChatModel）
// 实现了 storytools.LLMProvider 接口
func (p *EinoProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.generate(ctx, []*schema.Message{
		schema.UserMessage(prompt),
	})
}

// GenerateWithImages 带图片的多模态生成
// 提示词和图片拼成一条多段用户消息，图片以 data URL 内联
func (p *EinoProvider) GenerateWithImages(ctx context.Context, prompt string, imageDataURLs []string) (string, error) {
	if len(imageDataURLs) == 0 {
		return p.Generate(ctx, prompt)
	}

	parts := make([]schema.ChatMessagePart, 0, len(imageDataURLs)+1)
	parts = append(parts, schema.ChatMessagePart{
		Type: schema.ChatMessagePartTypeText,
		Text: prompt,
	})
	for _, url := range imageDataURLs {
		parts = append(parts, schema.ChatMessagePart{
			Type: schema.ChatMessagePartTypeImageURL,
			ImageURL: &schema.ChatMessageImageURL{
				URL: url,
			},
		})
	}

	return p.generate(ctx, []*schema.Message{
		{
			Role:         schema.User,
			MultiContent: parts,
		},
	})
}

func (p *EinoProvider) generate(ctx context.Context, messages []*schema.Message) (string, error) {
	if p.chatModel == nil {
		return "", fmt.Errorf("chatModel is required")
	}

	response, err := p.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	content := response.Content
	if content == "" {
		return "", fmt.Errorf("empty response from chat model")
	}

	return content, nil
}
