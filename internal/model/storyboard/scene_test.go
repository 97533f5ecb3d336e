package storyboard

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestImageSource(t *testing.T) {
	Convey("ImageSource 可移植字符串形式", t, func() {
		Convey("reference 与空字符串都解析为参考图来源", func() {
			src, err := ParseImageSource("reference")
			So(err, ShouldBeNil)
			So(src.Kind, ShouldEqual, SourceReference)

			src, err = ParseImageSource("")
			So(err, ShouldBeNil)
			So(src.Kind, ShouldEqual, SourceReference)
			So(src.Encode(), ShouldEqual, "reference")
		})

		Convey("data URL 解析为内嵌图片", func() {
			src, err := ParseImageSource("data:image/png;base64,AAAA")
			So(err, ShouldBeNil)
			So(src.Kind, ShouldEqual, SourceInline)
			So(src.Encode(), ShouldEqual, "data:image/png;base64,AAAA")
		})

		Convey("scene-side 形式解析为跨分镜引用", func() {
			src, err := ParseImageSource("3-end")
			So(err, ShouldBeNil)
			So(src.Kind, ShouldEqual, SourceCrossRef)
			So(src.Scene, ShouldEqual, 3)
			So(src.Side, ShouldEqual, FrameEnd)
			So(src.Encode(), ShouldEqual, "3-end")
		})

		Convey("非法形式应报错", func() {
			for _, bad := range []string{"abc", "-start", "0-start", "2-middle", "x-end"} {
				_, err := ParseImageSource(bad)
				So(err, ShouldNotBeNil)
			}
		})

		Convey("JSON 序列化往返", func() {
			frame := NewFrame("一只猫在窗台上")
			frame.Source = CrossRefSource(2, FrameStart)

			data, err := json.Marshal(frame)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, `"imageSource":"2-start"`)

			var decoded Frame
			So(json.Unmarshal(data, &decoded), ShouldBeNil)
			So(decoded.Equal(frame), ShouldBeTrue)
		})
	})
}

func TestSceneInvariants(t *testing.T) {
	Convey("分镜列表结构不变式", t, func() {
		scenes := []Scene{
			NewScene(1, "a", "b", "c"),
			NewScene(2, "d", "e", "f"),
			NewScene(3, "g", "h", "i"),
		}

		Convey("Renumber 保证编号为 1..N 且与位置一致", func() {
			// 删除中间一个分镜
			scenes = append(scenes[:1], scenes[2:]...)
			Renumber(scenes)
			So(len(scenes), ShouldEqual, 2)
			So(scenes[0].Number, ShouldEqual, 1)
			So(scenes[1].Number, ShouldEqual, 2)
			So(scenes[1].StartFrame.Description, ShouldEqual, "g")
		})

		Convey("交换位置后重排编号", func() {
			scenes[0], scenes[1] = scenes[1], scenes[0]
			Renumber(scenes)
			for i, s := range scenes {
				So(s.Number, ShouldEqual, i+1)
			}
		})

		Convey("CloneScenes 与原列表相互独立", func() {
			cloned := CloneScenes(scenes)
			So(ScenesEqual(cloned, scenes), ShouldBeTrue)

			cloned[0].StartFrame.Status = FrameStatusPending
			cloned[0].StartFrame.Image = "data:image/png;base64,AAAA"
			So(scenes[0].StartFrame.Status, ShouldEqual, FrameStatusIdle)
			So(ScenesEqual(cloned, scenes), ShouldBeFalse)
		})
	})
}

func TestFrame(t *testing.T) {
	Convey("帧状态", t, func() {
		frame := NewFrame("desc")

		Convey("ResolvedImage 仅在 done 时有值", func() {
			frame.Image = "data:image/png;base64,AAAA"
			frame.Status = FrameStatusPending
			_, ok := frame.ResolvedImage()
			So(ok, ShouldBeFalse)

			frame.Status = FrameStatusDone
			img, ok := frame.ResolvedImage()
			So(ok, ShouldBeTrue)
			So(img, ShouldEqual, "data:image/png;base64,AAAA")
		})

		Convey("Clear 回到 idle 并丢弃结果", func() {
			frame.Status = FrameStatusError
			frame.Error = "boom"
			frame.Image = "data:image/png;base64,AAAA"
			frame.Clear()
			So(frame.Status, ShouldEqual, FrameStatusIdle)
			So(frame.Image, ShouldBeEmpty)
			So(frame.Error, ShouldBeEmpty)
		})
	})
}
