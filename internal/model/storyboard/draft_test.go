package storyboard

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDraft_SceneByNumber(t *testing.T) {
	Convey("SceneByNumber 按编号取分镜指针", t, func() {
		draft := NewDraft("16:9", 3)
		draft.Scenes = []Scene{
			NewScene(1, "山谷清晨", "镜头推进", "木屋门口"),
			NewScene(2, "木屋门口", "镜头摇移", "山路远景"),
		}

		Convey("编号在范围内时返回指针和 true", func() {
			scene, ok := draft.SceneByNumber(2)
			So(ok, ShouldBeTrue)
			So(scene.Number, ShouldEqual, 2)

			// 返回的是活动草稿里的指针，改动直接生效
			scene.Animation = "镜头拉远"
			So(draft.Scenes[1].Animation, ShouldEqual, "镜头拉远")
		})

		Convey("编号越界时返回 false", func() {
			for _, number := range []int{0, -1, 3} {
				scene, ok := draft.SceneByNumber(number)
				So(ok, ShouldBeFalse)
				So(scene, ShouldBeNil)
			}
		})
	})
}
