package storytools

import (
	"context"
	"fmt"
	"strings"

	"mango/internal/model/storyboard"
)

// StoryboardGenerator 分镜文案生成器
//
// 设计原则：
//   - 不负责落库 / 不依赖 HTTP / 不操作资源，只负责组装 prompt 并调用上层注入的 LLM 客户端
//   - 具体的「如何调用大模型」由调用方通过 llmProvider 注入，方便单测和替换实现
type StoryboardGenerator struct {
	llmProvider LLMProvider // 调用大模型的提供者（由上层注入，便于在不同环境下切换实现）
}

// NewStoryboardGenerator 创建分镜文案生成器实例
//
// Args:
//   - llmProvider: 调用大模型的提供者（由上层注入，便于在不同环境下切换实现）
//
// Returns:
//   - *StoryboardGenerator: 生成器实例
func NewStoryboardGenerator(llmProvider LLMProvider) *StoryboardGenerator {
	return &StoryboardGenerator{
		llmProvider: llmProvider,
	}
}

// SummaryRequest 梗概生成请求
type SummaryRequest struct {
	Method          storyboard.InputMethod // 输入方式（想法/脚本/音频）
	Content         string                 // 输入内容；音频输入时为录音的 data URL，由多模态模型理解
	ScriptType      storyboard.ScriptType  // 脚本类型（auto/dialogue/action）
	Language        storyboard.Language    // 输出语言
	Notes           string                 // 用户补充说明
	ReferenceImages []string               // 参考图 data URL，随提示词一起发给多模态模型
}

// GenerateSummary 从用户输入生成剧本梗概
//
// Args:
//   - ctx: 上下文
//   - req: 梗概生成请求
//
// Returns:
//   - *storyboard.ScriptSummary: 解析后的剧本梗概
//   - error: 错误信息
func (g *StoryboardGenerator) GenerateSummary(
	ctx context.Context,
	req *SummaryRequest,
) (*storyboard.ScriptSummary, error) {
	if g.llmProvider == nil {
		return nil, fmt.Errorf("llmProvider is required")
	}
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("input content is empty")
	}

	prompt := buildSummaryPrompt(req, content)
	var response string
	var err error
	if len(req.ReferenceImages) > 0 {
		response, err = g.llmProvider.GenerateWithImages(ctx, prompt, req.ReferenceImages)
	} else {
		response, err = g.llmProvider.Generate(ctx, prompt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	summary, err := ParseSummary(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	return summary, nil
}

// DevelopScenes 基于剧本梗概展开分镜序列
//
// Args:
//   - ctx: 上下文
//   - summary: 剧本梗概
//   - params: 生成参数（分镜数量、风格、补充说明等）
//   - language: 输出语言
//
// Returns:
//   - []*RawScene: 展开的分镜（编号由调用方重排）
//   - error: 错误信息
func (g *StoryboardGenerator) DevelopScenes(
	ctx context.Context,
	summary *storyboard.ScriptSummary,
	params storyboard.GenerationParams,
	language storyboard.Language,
) ([]*RawScene, error) {
	if g.llmProvider == nil {
		return nil, fmt.Errorf("llmProvider is required")
	}
	if summary == nil {
		return nil, fmt.Errorf("summary is required")
	}
	if params.NumberOfScenes <= 0 {
		return nil, fmt.Errorf("invalid scene count: %d", params.NumberOfScenes)
	}

	prompt := buildSceneDevelopmentPrompt(summary, params, language)
	response, err := g.llmProvider.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to develop scenes: %w", err)
	}

	scenes, err := ParseScenes(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenes: %w", err)
	}
	return scenes, nil
}

// GenerateVideoPrompt 为单个分镜生成视频提示词
// 描述首帧到尾帧之间的镜头运动和画面变化
func (g *StoryboardGenerator) GenerateVideoPrompt(
	ctx context.Context,
	scene *storyboard.Scene,
	language storyboard.Language,
) (string, error) {
	if g.llmProvider == nil {
		return "", fmt.Errorf("llmProvider is required")
	}
	if scene == nil {
		return "", fmt.Errorf("scene is required")
	}

	prompt := buildVideoPromptPrompt(scene, language)
	response, err := g.llmProvider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate video prompt: %w", err)
	}
	return ParseText(response)
}

// RefineDescription 按用户指令润色帧画面描述
func (g *StoryboardGenerator) RefineDescription(
	ctx context.Context,
	current, instruction string,
	language storyboard.Language,
) (string, error) {
	if g.llmProvider == nil {
		return "", fmt.Errorf("llmProvider is required")
	}
	current = strings.TrimSpace(current)
	instruction = strings.TrimSpace(instruction)
	if current == "" {
		return "", fmt.Errorf("current description is empty")
	}
	if instruction == "" {
		return "", fmt.Errorf("instruction is empty")
	}

	prompt := buildRefineDescriptionPrompt(current, instruction, language)
	response, err := g.llmProvider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to refine description: %w", err)
	}
	return ParseText(response)
}

// RefineAnimation 按用户指令润色分镜的运动描述
func (g *StoryboardGenerator) RefineAnimation(
	ctx context.Context,
	scene *storyboard.Scene,
	instruction string,
	language storyboard.Language,
) (string, error) {
	if g.llmProvider == nil {
		return "", fmt.Errorf("llmProvider is required")
	}
	if scene == nil {
		return "", fmt.Errorf("scene is required")
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return "", fmt.Errorf("instruction is empty")
	}

	prompt := buildRefineAnimationPrompt(scene, instruction, language)
	response, err := g.llmProvider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to refine animation: %w", err)
	}
	return ParseText(response)
}
