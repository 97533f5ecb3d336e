package storyboard

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"mango/internal/model/storyboard"
	"mango/internal/pkg/dataurl"
	"mango/internal/pkg/id"
	"mango/internal/pkg/storytools"
)

// GenerateFrameImage 为单帧生成图片
// pending/error 写入只改活动草稿（stage，不可撤销）；
// 只有成功落图才提交进历史。不同帧的生成相互独立，可并发。
func (s *storyboardService) GenerateFrameImage(ctx context.Context, draftID string, sceneNumber int, side storyboard.FrameSide) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	// stage：乐观置 pending 并清除旧错误，同时在锁内解析生成输入
	sess.mu.Lock()
	scene, err := s.sceneByNumber(sess, sceneNumber)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	frame := scene.Frame(side)
	frame.Status = storyboard.FrameStatusPending
	frame.Error = ""

	sourceImage := resolveSourceImage(sess.draft, frame.Source)
	prompt := s.framePrompts.BuildFramePrompt(frame.Description, storytools.FramePromptOptions{
		Style:          sess.draft.Style,
		HasSource:      sourceImage != "",
		KeepClothing:   sess.draft.KeepClothing,
		KeepBackground: sess.draft.KeepBackground,
	})
	aspectRatio := sess.draft.AspectRatio
	sess.touch()
	sess.mu.Unlock()

	images, genErr := s.imageProvider.GenerateImages(ctx, &storytools.ImageRequest{
		Prompt:      prompt,
		Count:       1,
		AspectRatio: aspectRatio,
		SourceImage: sourceImage,
		Watermark:   false,
	})

	// 回写结果：重新按编号定位活动分镜（生成期间结构可能已变）
	sess.mu.Lock()
	defer sess.mu.Unlock()

	scene, err = s.sceneByNumber(sess, sceneNumber)
	if err != nil {
		return nil, fmt.Errorf("scene changed during generation: %w", err)
	}
	frame = scene.Frame(side)

	if genErr != nil {
		frame.Status = storyboard.FrameStatusError
		frame.Error = genErr.Error()
		sess.touch()
		return nil, fmt.Errorf("generate frame image: %w", genErr)
	}
	if len(images) == 0 || images[0] == "" {
		frame.Status = storyboard.FrameStatusError
		frame.Error = "no image produced"
		sess.touch()
		return nil, fmt.Errorf("no image produced")
	}

	frame.Status = storyboard.FrameStatusDone
	frame.Image = images[0]
	frame.Error = ""
	sess.commit()

	s.recordImageAsset(sess, sceneNumber, side, prompt, images[0])

	return sess.snapshot(), nil
}

// resolveSourceImage 解析帧的图片来源，取不到时返回空串（无源生成）
// 跨分镜引用按「当前活动状态」查找，不读历史快照
func resolveSourceImage(draft *storyboard.Draft, source storyboard.ImageSource) string {
	switch source.Kind {
	case storyboard.SourceInline:
		return source.Data
	case storyboard.SourceCrossRef:
		scene, ok := draft.SceneByNumber(source.Scene)
		if !ok {
			return ""
		}
		if image, ok := scene.Frame(source.Side).ResolvedImage(); ok {
			return image
		}
		return ""
	default:
		if len(draft.ReferenceImages) > 0 {
			return draft.ReferenceImages[0]
		}
		return ""
	}
}

// recordImageAsset 把生成的图片登记进素材库（尽力而为，不影响主流程）
// 必须在持锁状态下调用
func (s *storyboardService) recordImageAsset(sess *Session, sceneNumber int, side storyboard.FrameSide, prompt, imageDataURL string) {
	item := &storyboard.GalleryItem{
		ID:          id.New(),
		DraftID:     sess.draftID,
		UserID:      sess.userID,
		Kind:        storyboard.GalleryItemImage,
		SceneNumber: sceneNumber,
		Side:        side,
		Prompt:      prompt,
		Image:       imageDataURL,
		ContentType: dataurl.MimeType(imageDataURL),
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.galleryRepo.Create(ctx, item); err != nil {
		log.Warn().Err(err).Str("draft_id", sess.draftID).Int("scene", sceneNumber).Msg("素材库登记图片失败")
	}
}
