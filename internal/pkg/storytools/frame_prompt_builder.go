package storytools

import (
	"fmt"
	"strings"
)

// FramePromptBuilder 帧图片 prompt 构建器
// 把画面描述、风格标签和参考图约束拼成最终的图片生成提示词
type FramePromptBuilder struct{}

// NewFramePromptBuilder 创建帧图片 prompt 构建器
func NewFramePromptBuilder() *FramePromptBuilder {
	return &FramePromptBuilder{}
}

// FramePromptOptions 帧图片 prompt 的构建选项
type FramePromptOptions struct {
	Style          string // 画面风格标签（可为空）
	HasSource      bool   // 是否携带参考图（图生图）
	KeepClothing   bool   // 保持参考图中的服装
	KeepBackground bool   // 保持参考图中的背景
}

// BuildFramePrompt 构建完整的帧图片 prompt
// 格式：画面描述。风格描述。参考图约束
func (b *FramePromptBuilder) BuildFramePrompt(description string, opts FramePromptOptions) string {
	var parts []string

	parts = append(parts, strings.TrimSpace(description))

	if opts.Style != "" {
		parts = append(parts, fmt.Sprintf("画面风格：%s", opts.Style))
	}

	if opts.HasSource {
		var constraints []string
		constraints = append(constraints, "以参考图中的人物和画面为基础生成")
		if opts.KeepClothing {
			constraints = append(constraints, "保持人物服装与参考图一致")
		}
		if opts.KeepBackground {
			constraints = append(constraints, "保持背景环境与参考图一致")
		}
		parts = append(parts, strings.Join(constraints, "，"))
	}

	return strings.Join(parts, "。")
}
