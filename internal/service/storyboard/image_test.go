package storyboard

import (
	"context"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"mango/internal/model/storyboard"
)

func TestGenerateFrameImage(t *testing.T) {
	Convey("帧图片生成", t, func() {
		ctx := context.Background()

		Convey("成功生成：帧置 done 并提交进历史", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			env.images.images = []string{testImage}
			draft, err := env.svc.GenerateFrameImage(ctx, draftID, 1, storyboard.FrameStart)
			So(err, ShouldBeNil)

			frame := draft.Scenes[0].StartFrame
			So(frame.Status, ShouldEqual, storyboard.FrameStatusDone)
			So(frame.Image, ShouldEqual, testImage)
			So(frame.Error, ShouldBeEmpty)

			// 提示词包含帧描述
			So(env.images.callCount(), ShouldEqual, 1)
			So(env.images.requests[0].Prompt, ShouldContainSubstring, "山谷清晨")
			So(env.images.requests[0].Count, ShouldEqual, 1)

			// 成功结果占一个撤销步
			draft, err = env.svc.Undo(ctx, draftID)
			So(err, ShouldBeNil)
			So(draft.Scenes[0].StartFrame.Status, ShouldEqual, storyboard.FrameStatusIdle)
			So(draft.Scenes[0].StartFrame.Image, ShouldBeEmpty)

			// 素材库登记了一条图片
			So(env.gallery.count(), ShouldEqual, 1)
		})

		Convey("提供者失败：帧置 error，错误不进历史", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			env.images.err = fmt.Errorf("model overloaded")
			_, err := env.svc.GenerateFrameImage(ctx, draftID, 1, storyboard.FrameStart)
			So(err, ShouldNotBeNil)

			draft, err := env.svc.GetDraft(ctx, draftID)
			So(err, ShouldBeNil)
			So(draft.Scenes[0].StartFrame.Status, ShouldEqual, storyboard.FrameStatusError)
			So(draft.Scenes[0].StartFrame.Error, ShouldContainSubstring, "model overloaded")

			// 历史里的快照仍是 idle：撤销再重做后错误消失
			_, err = env.svc.Undo(ctx, draftID)
			So(err, ShouldBeNil)
			draft, err = env.svc.Redo(ctx, draftID)
			So(err, ShouldBeNil)
			So(draft.Scenes[0].StartFrame.Status, ShouldEqual, storyboard.FrameStatusIdle)
			So(draft.Scenes[0].StartFrame.Error, ShouldBeEmpty)

			So(env.gallery.count(), ShouldEqual, 0)
		})

		Convey("提供者返回空结果：视为错误", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			env.images.images = nil
			_, err := env.svc.GenerateFrameImage(ctx, draftID, 2, storyboard.FrameEnd)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "no image produced")

			draft, err := env.svc.GetDraft(ctx, draftID)
			So(err, ShouldBeNil)
			So(draft.Scenes[1].EndFrame.Status, ShouldEqual, storyboard.FrameStatusError)
			So(draft.Scenes[1].EndFrame.Error, ShouldEqual, "no image produced")
		})

		Convey("内嵌来源的图片作为生成源图传给提供者", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			_, err := env.svc.SetFrameSource(ctx, draftID, 1, storyboard.FrameStart, testImage)
			So(err, ShouldBeNil)

			env.images.images = []string{testImage}
			_, err = env.svc.GenerateFrameImage(ctx, draftID, 1, storyboard.FrameStart)
			So(err, ShouldBeNil)
			So(env.images.requests[0].SourceImage, ShouldEqual, testImage)
		})

		Convey("跨分镜引用按当前活动状态解析", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			// 先给 1 号分镜的尾帧出图
			env.images.images = []string{testImage}
			_, err := env.svc.GenerateFrameImage(ctx, draftID, 1, storyboard.FrameEnd)
			So(err, ShouldBeNil)

			// 2 号分镜首帧引用 1 号尾帧
			_, err = env.svc.SetFrameSource(ctx, draftID, 2, storyboard.FrameStart, "1-end")
			So(err, ShouldBeNil)

			_, err = env.svc.GenerateFrameImage(ctx, draftID, 2, storyboard.FrameStart)
			So(err, ShouldBeNil)

			So(env.images.callCount(), ShouldEqual, 2)
			So(env.images.requests[1].SourceImage, ShouldEqual, testImage)
		})

		Convey("被引用的帧尚未出图时退化为无源生成", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			_, err := env.svc.SetFrameSource(ctx, draftID, 2, storyboard.FrameStart, "3-start")
			So(err, ShouldBeNil)

			env.images.images = []string{testImage}
			_, err = env.svc.GenerateFrameImage(ctx, draftID, 2, storyboard.FrameStart)
			So(err, ShouldBeNil)
			So(env.images.requests[0].SourceImage, ShouldBeEmpty)
		})

		Convey("默认来源使用第一张参考图", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			_, err := env.svc.AddReferenceImage(ctx, draftID, testImage)
			So(err, ShouldBeNil)

			env.images.images = []string{testImage}
			_, err = env.svc.GenerateFrameImage(ctx, draftID, 1, storyboard.FrameStart)
			So(err, ShouldBeNil)
			So(env.images.requests[0].SourceImage, ShouldEqual, testImage)
		})

		Convey("分镜不存在时报错", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			_, err := env.svc.GenerateFrameImage(ctx, draftID, 8, storyboard.FrameStart)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "scene not found")
			So(env.images.callCount(), ShouldEqual, 0)
		})
	})
}
