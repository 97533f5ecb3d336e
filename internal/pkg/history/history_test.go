package history

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"mango/internal/model/storyboard"
)

func sceneList(descs ...string) []storyboard.Scene {
	scenes := make([]storyboard.Scene, len(descs))
	for i, d := range descs {
		scenes[i] = storyboard.NewScene(i+1, d, "", "")
	}
	return scenes
}

func TestLogCommit(t *testing.T) {
	Convey("提交与去重", t, func() {
		l := New()

		Convey("初始状态不可撤销也不可重做", func() {
			So(l.CanUndo(), ShouldBeFalse)
			So(l.CanRedo(), ShouldBeFalse)
			So(l.Current(), ShouldBeEmpty)
		})

		Convey("N 次内容不同的提交后可撤销，撤销 N 次回到初始空快照", func() {
			const n = 5
			for i := 0; i < n; i++ {
				created := l.Commit(sceneList(fmt.Sprintf("scene-%d", i)))
				So(created, ShouldBeTrue)
			}
			So(l.CanUndo(), ShouldBeTrue)
			So(l.Len(), ShouldEqual, n+1)

			for i := 0; i < n; i++ {
				_, ok := l.Undo()
				So(ok, ShouldBeTrue)
			}
			So(l.Current(), ShouldBeEmpty)
			So(l.CanUndo(), ShouldBeFalse)

			_, ok := l.Undo()
			So(ok, ShouldBeFalse)
		})

		Convey("提交值相等的列表不产生新条目，游标不变", func() {
			scenes := sceneList("a", "b")
			So(l.Commit(scenes), ShouldBeTrue)
			cursor := l.Cursor()

			So(l.Commit(storyboard.CloneScenes(scenes)), ShouldBeFalse)
			So(l.Cursor(), ShouldEqual, cursor)
			So(l.Len(), ShouldEqual, 2)
		})

		Convey("提交后修改调用方的列表不影响快照", func() {
			scenes := sceneList("a")
			l.Commit(scenes)
			scenes[0].StartFrame.Description = "mutated"
			So(l.Current()[0].StartFrame.Description, ShouldEqual, "a")
		})
	})
}

func TestLogUndoRedo(t *testing.T) {
	Convey("撤销与重做", t, func() {
		l := New()
		first := sceneList("first")
		second := sceneList("first", "second")
		l.Commit(first)
		l.Commit(second)

		Convey("撤销后重做回到原快照", func() {
			cur, ok := l.Undo()
			So(ok, ShouldBeTrue)
			So(storyboard.ScenesEqual(cur, first), ShouldBeTrue)
			So(l.CanRedo(), ShouldBeTrue)

			cur, ok = l.Redo()
			So(ok, ShouldBeTrue)
			So(storyboard.ScenesEqual(cur, second), ShouldBeTrue)
			So(l.CanRedo(), ShouldBeFalse)
		})

		Convey("末尾重做是空操作", func() {
			_, ok := l.Redo()
			So(ok, ShouldBeFalse)
		})

		Convey("撤销后的新提交丢弃重做分支", func() {
			l.Undo()
			So(l.CanRedo(), ShouldBeTrue)

			l.Commit(sceneList("first", "branch"))
			So(l.CanRedo(), ShouldBeFalse)

			_, ok := l.Redo()
			So(ok, ShouldBeFalse)
			So(l.Len(), ShouldEqual, 3)
		})
	})
}

func TestLogReset(t *testing.T) {
	Convey("加载边界的 Reset", t, func() {
		l := New()
		l.Commit(sceneList("a"))
		l.Commit(sceneList("a", "b"))

		loaded := sceneList("x", "y", "z")
		l.Reset(loaded)

		So(l.Len(), ShouldEqual, 1)
		So(l.Cursor(), ShouldEqual, 0)
		So(l.CanUndo(), ShouldBeFalse)
		So(l.CanRedo(), ShouldBeFalse)
		So(storyboard.ScenesEqual(l.Current(), loaded), ShouldBeTrue)
	})
}
