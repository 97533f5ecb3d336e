package storyboard

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"mango/internal/model/storyboard"
	"mango/internal/pkg/id"
	"mango/internal/pkg/storage"
	"mango/internal/pkg/storytools"
)

// 视频任务轮询的缺省参数
const (
	defaultVideoPollInterval = 5 * time.Second
	defaultVideoPollTimeout  = 30 * time.Minute
)

// GenerateVideo 为分镜生成视频
// 前置条件不满足时立即失败，不改任何状态、不发起任何外部调用。
// pending/任务句柄/错误都只 stage；成功下载并归档后才提交进历史。
func (s *storyboardService) GenerateVideo(ctx context.Context, draftID string, sceneNumber int) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	// 前置校验 + stage pending
	sess.mu.Lock()
	scene, err := s.sceneByNumber(sess, sceneNumber)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}

	startImage, hasImage := scene.StartFrame.ResolvedImage()
	prompt := scene.VideoPrompt
	if !hasImage || prompt == "" {
		sess.mu.Unlock()
		return nil, ErrVideoInputsMissing
	}

	scene.VideoStatus = storyboard.VideoStatusPending
	scene.VideoError = ""
	aspectRatio := sess.draft.AspectRatio
	sess.touch()
	sess.mu.Unlock()

	// 创建任务
	taskID, err := s.videoProvider.CreateTask(ctx, prompt, startImage, videoRatio(aspectRatio))
	if err != nil {
		s.stageVideoError(sess, sceneNumber, fmt.Sprintf("create video task: %v", err))
		return nil, fmt.Errorf("create video task: %w", err)
	}

	// stage 任务句柄，便于崩溃后排查进行中的任务
	sess.mu.Lock()
	if scene, serr := s.sceneByNumber(sess, sceneNumber); serr == nil {
		scene.VideoTaskID = taskID
		sess.touch()
	}
	sess.mu.Unlock()

	log.Info().Str("draft_id", draftID).Int("scene", sceneNumber).Str("task_id", taskID).Msg("视频任务已创建，开始轮询")

	task, err := s.pollVideoTask(ctx, taskID)
	if err != nil {
		s.stageVideoError(sess, sceneNumber, err.Error())
		return nil, fmt.Errorf("video task %s: %w", taskID, err)
	}

	// 下载并归档
	data, err := s.videoProvider.DownloadVideo(ctx, task.VideoURL)
	if err != nil {
		s.stageVideoError(sess, sceneNumber, fmt.Sprintf("download video: %v", err))
		return nil, fmt.Errorf("download video: %w", err)
	}

	itemID := id.New()
	key := storage.SceneVideoKey(draftID, itemID)
	url, err := s.store.Upload(ctx, key, bytes.NewReader(data), "video/mp4")
	if err != nil {
		s.stageVideoError(sess, sceneNumber, fmt.Sprintf("store video: %v", err))
		return nil, fmt.Errorf("store video: %w", err)
	}

	// 成功：落地结果并提交进历史
	sess.mu.Lock()
	defer sess.mu.Unlock()

	scene, err = s.sceneByNumber(sess, sceneNumber)
	if err != nil {
		return nil, fmt.Errorf("scene changed during generation: %w", err)
	}
	scene.VideoStatus = storyboard.VideoStatusDone
	scene.Video = url
	scene.VideoError = ""
	scene.VideoTaskID = ""
	sess.commit()

	s.recordVideoAsset(sess, sceneNumber, prompt, key, url, int64(len(data)))

	log.Info().Str("draft_id", draftID).Int("scene", sceneNumber).Str("url", url).Msg("视频生成完成")

	return sess.snapshot(), nil
}

// pollVideoTask 有界轮询视频任务
// 固定间隔查询，受总超时约束，每个等待点都响应 ctx 取消
func (s *storyboardService) pollVideoTask(ctx context.Context, taskID string) (*storytools.VideoTaskStatus, error) {
	interval := s.cfg.VideoPollInterval
	if interval <= 0 {
		interval = defaultVideoPollInterval
	}
	timeout := s.cfg.VideoPollTimeout
	if timeout <= 0 {
		timeout = defaultVideoPollTimeout
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		task, err := s.videoProvider.GetTask(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("query video task: %w", err)
		}
		if task.Done {
			return task, nil
		}
		if task.Failed {
			return nil, fmt.Errorf("video task failed: %s", task.Status)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("video task timed out after %s", timeout)
		case <-ticker.C:
		}
	}
}

// stageVideoError 把视频错误写进活动草稿（stage，不进历史）
func (s *storyboardService) stageVideoError(sess *Session, sceneNumber int, message string) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	scene, err := s.sceneByNumber(sess, sceneNumber)
	if err != nil {
		return
	}
	scene.VideoStatus = storyboard.VideoStatusError
	scene.VideoError = message
	scene.VideoTaskID = ""
	sess.touch()
}

// videoRatio 画幅比例映射到视频任务的 ratio 参数，未知比例交给服务端自适应
func videoRatio(aspectRatio string) string {
	switch aspectRatio {
	case "16:9", "9:16", "4:3", "3:4", "1:1", "21:9":
		return aspectRatio
	default:
		return "adaptive"
	}
}

// recordVideoAsset 把生成的视频登记进素材库（尽力而为，不影响主流程）
// 必须在持锁状态下调用
func (s *storyboardService) recordVideoAsset(sess *Session, sceneNumber int, prompt, key, url string, size int64) {
	item := &storyboard.GalleryItem{
		ID:          id.New(),
		DraftID:     sess.draftID,
		UserID:      sess.userID,
		Kind:        storyboard.GalleryItemVideo,
		SceneNumber: sceneNumber,
		Prompt:      prompt,
		StorageKey:  key,
		URL:         url,
		ContentType: "video/mp4",
		Size:        size,
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.galleryRepo.Create(ctx, item); err != nil {
		log.Warn().Err(err).Str("draft_id", sess.draftID).Int("scene", sceneNumber).Msg("素材库登记视频失败")
	}
}
