package storyboard

import (
	"fmt"
	"sync"

	"mango/internal/model/storyboard"
	"mango/internal/pkg/history"
)

// Session 一个草稿的编辑会话
// 持有活动草稿和撤销日志；所有读写都必须在 mu 保护下进行。
// 两条写路径：
//   - stage：只改活动草稿，不进历史（pending/error/任务句柄这类瞬态进度）
//   - commit：改完活动草稿后把分镜列表提交进历史（用户创作内容）
type Session struct {
	draftID string
	userID  string

	mu      sync.Mutex
	draft   *storyboard.Draft
	history *history.Log
	saver   *autosaver // 初次加载完成后注入；nil 表示自动保存未武装
}

// newSession 创建编辑会话，历史重置为加载时的分镜列表
func newSession(draftID, userID string, draft *storyboard.Draft) *Session {
	h := history.New()
	h.Reset(draft.Scenes)
	return &Session{
		draftID: draftID,
		userID:  userID,
		draft:   draft,
		history: h,
	}
}

// touch 记一次改动，触发防抖自动保存
// 必须在持锁状态下调用
func (s *Session) touch() {
	if s.saver != nil {
		s.saver.Touch()
	}
}

// commit 把当前分镜列表提交进历史并触发保存
// 必须在持锁状态下调用
func (s *Session) commit() bool {
	committed := s.history.Commit(s.draft.Scenes)
	s.touch()
	return committed
}

// snapshot 返回活动草稿的深拷贝，供调用方在锁外使用
// 必须在持锁状态下调用
func (s *Session) snapshot() *storyboard.Draft {
	return s.draft.Clone()
}

// sessionManager 进程内的会话表
type sessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newSessionManager() *sessionManager {
	return &sessionManager{
		sessions: make(map[string]*Session),
	}
}

// get 取已打开的会话
func (m *sessionManager) get(draftID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[draftID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotOpen, draftID)
	}
	return sess, nil
}

// put 登记会话，同一草稿重复打开时替换旧会话
func (m *sessionManager) put(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.sessions[sess.draftID]; ok && old.saver != nil {
		old.saver.Stop()
	}
	m.sessions[sess.draftID] = sess
}

// remove 摘除会话
func (m *sessionManager) remove(draftID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[draftID]; ok && sess.saver != nil {
		sess.saver.Stop()
	}
	delete(m.sessions, draftID)
}
