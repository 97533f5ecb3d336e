package storyboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"mango/internal/model/storyboard"
	"mango/internal/pkg/dataurl"
	"mango/internal/pkg/storytools"
)

// GenerateStoryboard 脚本管线
// 输入校验 → 参考图解码 → 梗概 → 分镜展开 → 映射为 idle 分镜 → 一次原子提交。
// 任何一步失败都直接返回错误，已有分镜原样保留，不产生提交。
func (s *storyboardService) GenerateStoryboard(ctx context.Context, draftID string) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	// 在锁内取输入快照，网络调用都在锁外进行
	sess.mu.Lock()
	method := sess.draft.ActiveInput
	content := sess.draft.ActiveContent()
	params := sess.draft.Params()
	language := sess.draft.Language
	scriptType := sess.draft.ScriptType
	references := append([]string(nil), sess.draft.ReferenceImages...)
	sess.mu.Unlock()

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, method)
	}

	// 解码校验参考图，跳过坏图，合法的随梗概请求一起发给多模态模型
	validRefs := make([]string, 0, len(references))
	for i, ref := range references {
		if _, _, err := dataurl.Decode(ref); err != nil {
			log.Warn().Err(err).Int("index", i).Str("draft_id", draftID).Msg("参考图解码失败，已跳过")
			continue
		}
		validRefs = append(validRefs, ref)
	}

	summary, err := s.summarize(ctx, method, content, scriptType, language, params, validRefs)
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	rawScenes, err := s.generator.DevelopScenes(ctx, summary, params, language)
	if err != nil {
		return nil, fmt.Errorf("develop scenes: %w", err)
	}

	// 映射为 idle 分镜：两帧 idle、来源为参考图、视频字段全部未设置
	scenes := make([]storyboard.Scene, 0, len(rawScenes))
	for _, raw := range rawScenes {
		scenes = append(scenes, storyboard.NewScene(
			0,
			raw.StartFrameDescription,
			raw.AnimationDescription,
			raw.EndFrameDescription,
		))
	}
	storyboard.Renumber(scenes)

	// 一次原子提交：整批分镜占一个撤销步
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.draft.Summary = summary
	sess.draft.Scenes = scenes
	sess.commit()

	log.Info().
		Str("draft_id", draftID).
		Int("scenes", len(scenes)).
		Str("input", string(method)).
		Msg("分镜生成完成")

	return sess.snapshot(), nil
}

// summarize 生成剧本梗概
// 超长脚本先按自然边界切段、逐段提炼，再把各段梗概合并提炼一次
func (s *storyboardService) summarize(
	ctx context.Context,
	method storyboard.InputMethod,
	content string,
	scriptType storyboard.ScriptType,
	language storyboard.Language,
	params storyboard.GenerationParams,
	referenceImages []string,
) (*storyboard.ScriptSummary, error) {
	request := &storytools.SummaryRequest{
		Method:          method,
		Content:         content,
		ScriptType:      scriptType,
		Language:        language,
		Notes:           params.Notes,
		ReferenceImages: referenceImages,
	}

	if method != storyboard.InputScript || !s.splitter.NeedsSplit(content) {
		return s.generator.GenerateSummary(ctx, request)
	}

	chunks := s.splitter.Split(content)
	log.Info().Int("chunks", len(chunks)).Msg("脚本超长，分段提炼梗概")

	partials := make([]*storyboard.ScriptSummary, 0, len(chunks))
	for i, chunk := range chunks {
		partial, err := s.generator.GenerateSummary(ctx, &storytools.SummaryRequest{
			Method:     storyboard.InputScript,
			Content:    chunk,
			ScriptType: scriptType,
			Language:   language,
		})
		if err != nil {
			return nil, fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		partials = append(partials, partial)
	}

	if len(partials) == 1 {
		return partials[0], nil
	}

	// 合并各段梗概再提炼一次
	var merged strings.Builder
	for i, partial := range partials {
		fmt.Fprintf(&merged, "第%d段：%s", i+1, partial.Premise)
		if partial.Characters != "" {
			fmt.Fprintf(&merged, "（角色：%s）", partial.Characters)
		}
		merged.WriteString("\n")
	}

	request.Content = merged.String()
	return s.generator.GenerateSummary(ctx, request)
}
