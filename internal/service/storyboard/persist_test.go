package storyboard

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"mango/internal/model/storyboard"
)

func TestAutosave(t *testing.T) {
	Convey("防抖自动保存", t, func() {
		ctx := context.Background()

		Convey("编辑后静默期满自动落库", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			_, err := env.svc.UpdateAnimation(ctx, draftID, 1, "镜头快速摇过")
			So(err, ShouldBeNil)

			// 防抖 10ms，等足静默期
			time.Sleep(100 * time.Millisecond)
			So(env.draftRepo.saveCount(), ShouldBeGreaterThan, 0)

			saved := env.draftRepo.savedDraft(draftID)
			So(saved, ShouldNotBeNil)
			So(saved.Scenes[0].Animation, ShouldEqual, "镜头快速摇过")
		})

		Convey("打开草稿本身不触发回写", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)

			_, err := env.svc.OpenDraft(ctx, draftID)
			So(err, ShouldBeNil)

			time.Sleep(50 * time.Millisecond)
			So(env.draftRepo.saveCount(), ShouldEqual, 0)
		})

		Convey("Close 立即冲刷未保存的改动", func() {
			env := newTestEnv()
			env.svc.cfg.AutosaveDebounce = time.Hour // 防抖不会自然到期
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			So(env.draftRepo.saveCount(), ShouldEqual, 0)
			So(env.svc.Close(ctx), ShouldBeNil)
			So(env.draftRepo.saveCount(), ShouldEqual, 1)

			saved := env.draftRepo.savedDraft(draftID)
			So(len(saved.Scenes), ShouldEqual, 3)
		})
	})
}

func TestOpenDraft(t *testing.T) {
	Convey("打开草稿会话", t, func() {
		ctx := context.Background()

		Convey("重新打开时加载持久化内容并重置撤销历史", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)
			So(env.svc.Close(ctx), ShouldBeNil)

			draft, err := env.svc.OpenDraft(ctx, draftID)
			So(err, ShouldBeNil)
			So(len(draft.Scenes), ShouldEqual, 3)

			// 加载前的编辑不可撤销
			draft, err = env.svc.Undo(ctx, draftID)
			So(err, ShouldBeNil)
			So(len(draft.Scenes), ShouldEqual, 3)
		})

		Convey("重新打开前冲刷防抖窗口里的改动", func() {
			env := newTestEnv()
			env.svc.cfg.AutosaveDebounce = time.Hour // 防抖不会自行触发
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			_, err := env.svc.UpdateFrameDescription(ctx, draftID, 1, storyboard.FrameStart, "黄昏的山谷")
			So(err, ShouldBeNil)

			// 改动还在防抖窗口里，重新打开也要读到它
			draft, err := env.svc.OpenDraft(ctx, draftID)
			So(err, ShouldBeNil)
			So(draft.Scenes[0].StartFrame.Description, ShouldEqual, "黄昏的山谷")
			So(env.draftRepo.saveCount(), ShouldBeGreaterThan, 0)
		})

		Convey("未打开会话的草稿操作报错", func() {
			env := newTestEnv()
			_, err := env.svc.GetDraft(ctx, "no-such-draft")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "draft session not opened")
		})

		Convey("删除草稿后会话关闭", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)

			So(env.svc.DeleteDraft(ctx, draftID), ShouldBeNil)

			_, err := env.svc.GetDraft(ctx, draftID)
			So(err, ShouldNotBeNil)

			_, err = env.draftRepo.FindByID(ctx, draftID)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestExportImport(t *testing.T) {
	Convey("导出与导入", t, func() {
		ctx := context.Background()

		Convey("导出快照省略音频，往返保持分镜", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			audio := storyboard.AudioAttachment{Name: "voice.webm", Type: "audio/webm", DataURL: "data:audio/webm;base64,YQ=="}
			_, err := env.svc.UpdateInputs(ctx, draftID, &InputsUpdate{Audio: &audio})
			So(err, ShouldBeNil)

			filename, data, err := env.svc.Export(ctx, draftID)
			So(err, ShouldBeNil)
			So(filename, ShouldStartWith, "storyboard-")
			So(filename, ShouldEndWith, ".json")

			var snapshot map[string]json.RawMessage
			So(json.Unmarshal(data, &snapshot), ShouldBeNil)
			_, hasAudio := snapshot["audioData"]
			So(hasAudio, ShouldBeFalse)

			// 导入到另一个草稿
			otherID := env.createDraft(t)
			imported, err := env.svc.Import(ctx, otherID, data)
			So(err, ShouldBeNil)
			So(len(imported.Scenes), ShouldEqual, 3)
			So(imported.Scenes[0].StartFrame.Description, ShouldEqual, "山谷清晨")
			So(imported.Audio, ShouldBeNil)
		})

		Convey("缺少 scenes 字段的快照被拒绝，草稿保持原样", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			_, err := env.svc.Import(ctx, draftID, []byte(`{"idea": "别的故事"}`))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "scenes")

			draft, err := env.svc.GetDraft(ctx, draftID)
			So(err, ShouldBeNil)
			So(len(draft.Scenes), ShouldEqual, 3)
			So(draft.Idea, ShouldNotEqual, "别的故事")
		})

		Convey("导入后撤销历史重置", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			_, data, err := env.svc.Export(ctx, draftID)
			So(err, ShouldBeNil)

			_, err = env.svc.Import(ctx, draftID, data)
			So(err, ShouldBeNil)

			// 导入前的生成不可撤销
			draft, err := env.svc.Undo(ctx, draftID)
			So(err, ShouldBeNil)
			So(len(draft.Scenes), ShouldEqual, 3)
		})

		Convey("导入的快照重排分镜编号", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)

			snapshot := `{
				"scenes": [
					{"scene": 7, "startFrame": {"description": "a", "status": "idle", "imageSource": "reference"}, "endFrame": {"description": "b", "status": "idle", "imageSource": "reference"}, "animationDescription": "", "videoPrompt": "", "videoStatus": "idle"},
					{"scene": 2, "startFrame": {"description": "c", "status": "idle", "imageSource": "reference"}, "endFrame": {"description": "d", "status": "idle", "imageSource": "reference"}, "animationDescription": "", "videoPrompt": "", "videoStatus": "idle"}
				]
			}`
			draft, err := env.svc.Import(ctx, draftID, []byte(snapshot))
			So(err, ShouldBeNil)
			So(draft.Scenes[0].Number, ShouldEqual, 1)
			So(draft.Scenes[1].Number, ShouldEqual, 2)
		})
	})
}

func TestResetDraft(t *testing.T) {
	Convey("清空草稿", t, func() {
		ctx := context.Background()
		env := newTestEnv()
		draftID := env.createDraft(t)
		env.generateScenes(t, draftID)

		draft, err := env.svc.ResetDraft(ctx, draftID)
		So(err, ShouldBeNil)
		So(len(draft.Scenes), ShouldEqual, 0)
		So(draft.Idea, ShouldBeEmpty)
		So(draft.Summary, ShouldBeNil)
		So(draft.AspectRatio, ShouldEqual, "16:9")
		So(draft.NumberOfScenes, ShouldEqual, 3)

		// 清空后不可撤销回去
		draft, err = env.svc.Undo(ctx, draftID)
		So(err, ShouldBeNil)
		So(len(draft.Scenes), ShouldEqual, 0)
	})
}
