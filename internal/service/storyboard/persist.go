package storyboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"mango/internal/model/storyboard"
	"mango/internal/pkg/cache"
)

// 自动保存的防抖间隔缺省值
const defaultAutosaveDebounce = time.Second

// 落库写入的超时
const saveTimeout = 10 * time.Second

// autosaver 防抖自动保存
// 每次 Touch 重置静默计时；静默期满后执行一次保存。
// 只在会话初次加载完成后创建，加载本身不触发保存。
type autosaver struct {
	quiet time.Duration
	save  func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newAutosaver(quiet time.Duration, save func()) *autosaver {
	if quiet <= 0 {
		quiet = defaultAutosaveDebounce
	}
	return &autosaver{
		quiet: quiet,
		save:  save,
	}
}

// Touch 记一次改动，重置防抖计时
func (a *autosaver) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.quiet, a.save)
}

// Flush 取消待触发的计时并立即保存
func (a *autosaver) Flush() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	stopped := a.stopped
	a.mu.Unlock()

	if !stopped {
		a.save()
	}
}

// Stop 停止自动保存，丢弃待触发的计时
func (a *autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// armAutosave 给会话装上自动保存
// 必须在会话尚未对外发布时调用，此后 saver 字段只读
func (s *storyboardService) armAutosave(sess *Session) {
	sess.saver = newAutosaver(s.cfg.AutosaveDebounce, func() {
		s.saveSession(sess)
	})
}

// saveSession 把会话的活动草稿整体落库，并写透缓存
func (s *storyboardService) saveSession(sess *Session) {
	sess.mu.Lock()
	draft := sess.snapshot()
	sess.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.draftRepo.SaveDraft(ctx, sess.draftID, draft); err != nil {
		log.Error().Err(err).Str("draft_id", sess.draftID).Msg("草稿自动保存失败")
		return
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.DraftCacheKey(sess.draftID), draft, cache.DraftCacheTTL); err != nil {
			log.Warn().Err(err).Str("draft_id", sess.draftID).Msg("草稿缓存写入失败")
		}
	}

	log.Debug().Str("draft_id", sess.draftID).Msg("草稿已自动保存")
}

// dropCache 丢弃草稿缓存
func (s *storyboardService) dropCache(ctx context.Context, draftID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.DraftCacheKey(draftID)); err != nil {
		log.Warn().Err(err).Str("draft_id", draftID).Msg("草稿缓存删除失败")
	}
}

// OpenDraft 打开草稿的编辑会话
// 加载持久化内容、重置撤销历史；自动保存在加载完成后才武装，
// 加载本身不会触发一次回写。
func (s *storyboardService) OpenDraft(ctx context.Context, draftID string) (*storyboard.Draft, error) {
	// 同一草稿重复打开时，先冲刷旧会话还在防抖窗口里的改动，
	// 保证重新加载读到的是用户最后一次编辑
	if old, err := s.sessions.get(draftID); err == nil && old.saver != nil {
		old.saver.Flush()
	}

	record, err := s.draftRepo.FindByID(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("find draft: %w", err)
	}

	draft := record.Draft.Clone()
	storyboard.Renumber(draft.Scenes)

	sess := newSession(record.ID, record.UserID, draft)
	s.armAutosave(sess)
	s.sessions.put(sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// Export 导出可移植快照
func (s *storyboardService) Export(ctx context.Context, draftID string) (string, []byte, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return "", nil, err
	}

	sess.mu.Lock()
	data, err := storyboard.ExportSnapshot(sess.draft)
	sess.mu.Unlock()
	if err != nil {
		return "", nil, err
	}

	return storyboard.ExportFilename(time.Now()), data, nil
}

// Import 导入快照，替换整个草稿并重置撤销历史
// 解析失败或缺少 scenes 数组时草稿保持原样
func (s *storyboardService) Import(ctx context.Context, draftID string, data []byte) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	parsed, err := storyboard.ParseSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.draft = parsed
	sess.history.Reset(parsed.Scenes)
	sess.touch()

	return sess.snapshot(), nil
}

// ResetDraft 清空草稿回到初始状态
// 字段回落到默认值，撤销历史重置，缓存条目丢弃
func (s *storyboardService) ResetDraft(ctx context.Context, draftID string) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	fresh := storyboard.NewDraft(s.cfg.DefaultAspectRatio, s.cfg.DefaultSceneCount)

	sess.mu.Lock()
	sess.draft = fresh
	sess.history.Reset(nil)
	sess.touch()
	snapshot := sess.snapshot()
	sess.mu.Unlock()

	s.dropCache(ctx, draftID)
	return snapshot, nil
}

// Undo 撤销一步，把历史快照恢复为活动分镜列表
// 已在起点时为无操作
func (s *storyboardService) Undo(ctx context.Context, draftID string) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if scenes, ok := sess.history.Undo(); ok {
		sess.draft.Scenes = scenes
		sess.touch()
	}
	return sess.snapshot(), nil
}

// Redo 重做一步
// 已在末尾时为无操作
func (s *storyboardService) Redo(ctx context.Context, draftID string) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if scenes, ok := sess.history.Redo(); ok {
		sess.draft.Scenes = scenes
		sess.touch()
	}
	return sess.snapshot(), nil
}

// Close 冲刷所有会话的未保存改动
func (s *storyboardService) Close(ctx context.Context) error {
	s.sessions.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions.sessions))
	for _, sess := range s.sessions.sessions {
		sessions = append(sessions, sess)
	}
	s.sessions.mu.Unlock()

	for _, sess := range sessions {
		if sess.saver != nil {
			sess.saver.Flush()
		}
	}
	return nil
}
