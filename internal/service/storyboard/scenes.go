package storyboard

import (
	"context"
	"fmt"

	"mango/internal/model/storyboard"
)

// sceneByNumber 在持锁状态下按编号取分镜指针
func (s *storyboardService) sceneByNumber(sess *Session, number int) (*storyboard.Scene, error) {
	scene, ok := sess.draft.SceneByNumber(number)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrSceneNotFound, number)
	}
	return scene, nil
}

// commitSceneEdit 对指定分镜执行编辑并提交进历史
func (s *storyboardService) commitSceneEdit(draftID string, number int, edit func(*storyboard.Scene) error) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	scene, err := s.sceneByNumber(sess, number)
	if err != nil {
		return nil, err
	}
	if err := edit(scene); err != nil {
		return nil, err
	}

	sess.commit()
	return sess.snapshot(), nil
}

// UpdateFrameDescription 更新帧画面描述
func (s *storyboardService) UpdateFrameDescription(ctx context.Context, draftID string, sceneNumber int, side storyboard.FrameSide, description string) (*storyboard.Draft, error) {
	return s.commitSceneEdit(draftID, sceneNumber, func(scene *storyboard.Scene) error {
		scene.Frame(side).Description = description
		return nil
	})
}

// UpdateAnimation 更新分镜的运动描述
func (s *storyboardService) UpdateAnimation(ctx context.Context, draftID string, sceneNumber int, animation string) (*storyboard.Draft, error) {
	return s.commitSceneEdit(draftID, sceneNumber, func(scene *storyboard.Scene) error {
		scene.Animation = animation
		return nil
	})
}

// UpdateVideoPrompt 更新分镜的视频提示词
func (s *storyboardService) UpdateVideoPrompt(ctx context.Context, draftID string, sceneNumber int, prompt string) (*storyboard.Draft, error) {
	return s.commitSceneEdit(draftID, sceneNumber, func(scene *storyboard.Scene) error {
		scene.VideoPrompt = prompt
		return nil
	})
}

// SetFrameSource 设置帧图片来源（可移植字符串形式）
func (s *storyboardService) SetFrameSource(ctx context.Context, draftID string, sceneNumber int, side storyboard.FrameSide, source string) (*storyboard.Draft, error) {
	parsed, err := storyboard.ParseImageSource(source)
	if err != nil {
		return nil, err
	}
	return s.commitSceneEdit(draftID, sceneNumber, func(scene *storyboard.Scene) error {
		scene.Frame(side).Source = parsed
		return nil
	})
}

// ClearFrame 显式清除帧：回到 idle，丢弃图片和错误
func (s *storyboardService) ClearFrame(ctx context.Context, draftID string, sceneNumber int, side storyboard.FrameSide) (*storyboard.Draft, error) {
	return s.commitSceneEdit(draftID, sceneNumber, func(scene *storyboard.Scene) error {
		scene.Frame(side).Clear()
		return nil
	})
}

// AddScene 在指定编号后插入空分镜并重排编号
// afterNumber 为 0 时插到最前
func (s *storyboardService) AddScene(ctx context.Context, draftID string, afterNumber int) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	scenes := sess.draft.Scenes
	if afterNumber < 0 || afterNumber > len(scenes) {
		return nil, fmt.Errorf("%w: %d", ErrSceneNotFound, afterNumber)
	}

	fresh := storyboard.NewScene(0, "", "", "")
	updated := make([]storyboard.Scene, 0, len(scenes)+1)
	updated = append(updated, scenes[:afterNumber]...)
	updated = append(updated, fresh)
	updated = append(updated, scenes[afterNumber:]...)
	storyboard.Renumber(updated)
	sess.draft.Scenes = updated

	sess.commit()
	return sess.snapshot(), nil
}

// DeleteScene 删除分镜并重排编号
func (s *storyboardService) DeleteScene(ctx context.Context, draftID string, sceneNumber int) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	scenes := sess.draft.Scenes
	if sceneNumber < 1 || sceneNumber > len(scenes) {
		return nil, fmt.Errorf("%w: %d", ErrSceneNotFound, sceneNumber)
	}

	updated := append(scenes[:sceneNumber-1], scenes[sceneNumber:]...)
	storyboard.Renumber(updated)
	sess.draft.Scenes = updated

	sess.commit()
	return sess.snapshot(), nil
}

// MoveScene 把分镜从 fromNumber 移到 toNumber 并重排编号
func (s *storyboardService) MoveScene(ctx context.Context, draftID string, fromNumber, toNumber int) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	scenes := sess.draft.Scenes
	if fromNumber < 1 || fromNumber > len(scenes) {
		return nil, fmt.Errorf("%w: %d", ErrSceneNotFound, fromNumber)
	}
	if toNumber < 1 || toNumber > len(scenes) {
		return nil, fmt.Errorf("%w: %d", ErrSceneNotFound, toNumber)
	}
	if fromNumber == toNumber {
		return sess.snapshot(), nil
	}

	moved := scenes[fromNumber-1]
	trimmed := append(append([]storyboard.Scene(nil), scenes[:fromNumber-1]...), scenes[fromNumber:]...)
	updated := make([]storyboard.Scene, 0, len(scenes))
	updated = append(updated, trimmed[:toNumber-1]...)
	updated = append(updated, moved)
	updated = append(updated, trimmed[toNumber-1:]...)
	storyboard.Renumber(updated)
	sess.draft.Scenes = updated

	sess.commit()
	return sess.snapshot(), nil
}

// RefineFrameDescription 按用户指令润色帧描述，结果作为一次编辑提交
func (s *storyboardService) RefineFrameDescription(ctx context.Context, draftID string, sceneNumber int, side storyboard.FrameSide, instruction string) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	scene, err := s.sceneByNumber(sess, sceneNumber)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	current := scene.Frame(side).Description
	language := sess.draft.Language
	sess.mu.Unlock()

	refined, err := s.generator.RefineDescription(ctx, current, instruction, language)
	if err != nil {
		return nil, fmt.Errorf("refine frame description: %w", err)
	}

	return s.commitSceneEdit(draftID, sceneNumber, func(scene *storyboard.Scene) error {
		scene.Frame(side).Description = refined
		return nil
	})
}

// RefineAnimation 按用户指令润色运动描述
func (s *storyboardService) RefineAnimation(ctx context.Context, draftID string, sceneNumber int, instruction string) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	scene, err := s.sceneByNumber(sess, sceneNumber)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	sceneCopy := *scene
	language := sess.draft.Language
	sess.mu.Unlock()

	refined, err := s.generator.RefineAnimation(ctx, &sceneCopy, instruction, language)
	if err != nil {
		return nil, fmt.Errorf("refine animation: %w", err)
	}

	return s.commitSceneEdit(draftID, sceneNumber, func(scene *storyboard.Scene) error {
		scene.Animation = refined
		return nil
	})
}

// GenerateVideoPrompt 由首帧/运动/尾帧三段描述生成视频提示词
func (s *storyboardService) GenerateVideoPrompt(ctx context.Context, draftID string, sceneNumber int) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	scene, err := s.sceneByNumber(sess, sceneNumber)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	sceneCopy := *scene
	language := sess.draft.Language
	sess.mu.Unlock()

	prompt, err := s.generator.GenerateVideoPrompt(ctx, &sceneCopy, language)
	if err != nil {
		return nil, fmt.Errorf("generate video prompt: %w", err)
	}

	return s.commitSceneEdit(draftID, sceneNumber, func(scene *storyboard.Scene) error {
		scene.VideoPrompt = prompt
		return nil
	})
}
