package history

import (
	"mango/internal/model/storyboard"
)

// Log 分镜列表的线性撤销/重做日志
// 每个条目是完整分镜列表的不可变快照；游标指向当前快照。
// 任何撤销之后的新提交都会丢弃重做分支，日志里永远只有一条未来。
//
// Log 自身不做并发控制，由持有它的编辑会话串行访问。
type Log struct {
	snapshots [][]storyboard.Scene
	cursor    int
}

// New 创建日志，初始只有一个空快照
func New() *Log {
	return &Log{
		snapshots: [][]storyboard.Scene{nil},
		cursor:    0,
	}
}

// Commit 提交候选分镜列表
// 与当前快照值相等时不产生新条目（幂等编辑不占撤销步数）；
// 否则截断重做分支、追加快照并前移游标。
// 返回是否产生了新条目。
func (l *Log) Commit(scenes []storyboard.Scene) bool {
	if storyboard.ScenesEqual(scenes, l.snapshots[l.cursor]) {
		return false
	}

	// 丢弃重做分支
	l.snapshots = l.snapshots[:l.cursor+1]
	l.snapshots = append(l.snapshots, storyboard.CloneScenes(scenes))
	l.cursor++
	return true
}

// Undo 游标后退一步，返回新的当前快照
// 已在起点时不动作，返回 ok=false
func (l *Log) Undo() ([]storyboard.Scene, bool) {
	if l.cursor == 0 {
		return nil, false
	}
	l.cursor--
	return l.Current(), true
}

// Redo 游标前进一步，返回新的当前快照
// 已在末尾时不动作，返回 ok=false
func (l *Log) Redo() ([]storyboard.Scene, bool) {
	if l.cursor >= len(l.snapshots)-1 {
		return nil, false
	}
	l.cursor++
	return l.Current(), true
}

// Reset 重置为只包含给定分镜列表的单条日志
// 加载/导入是边界而不是编辑，此前的撤销历史整体作废
func (l *Log) Reset(scenes []storyboard.Scene) {
	l.snapshots = [][]storyboard.Scene{storyboard.CloneScenes(scenes)}
	l.cursor = 0
}

// Current 返回当前快照的深拷贝
func (l *Log) Current() []storyboard.Scene {
	return storyboard.CloneScenes(l.snapshots[l.cursor])
}

// CanUndo 是否可以撤销
func (l *Log) CanUndo() bool {
	return l.cursor > 0
}

// CanRedo 是否可以重做
func (l *Log) CanRedo() bool {
	return l.cursor < len(l.snapshots)-1
}

// Len 快照总数
func (l *Log) Len() int {
	return len(l.snapshots)
}

// Cursor 当前游标位置
func (l *Log) Cursor() int {
	return l.cursor
}
