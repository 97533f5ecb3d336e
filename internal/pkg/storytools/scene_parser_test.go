package storytools

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCleanJSONContent(t *testing.T) {
	Convey("CleanJSONContent 能清理 LLM 返回的 JSON 内容", t, func() {
		Convey("裸 JSON 原样返回", func() {
			result := CleanJSONContent(`{"scenes": []}`)
			So(result, ShouldEqual, `{"scenes": []}`)
		})

		Convey("移除 ```json 代码块标记", func() {
			content := "```json\n{\"scenes\": []}\n```"
			result := CleanJSONContent(content)
			So(result, ShouldEqual, `{"scenes": []}`)
		})

		Convey("移除无语言标记的代码块", func() {
			content := "```\n{\"scenes\": []}\n```"
			result := CleanJSONContent(content)
			So(result, ShouldEqual, `{"scenes": []}`)
		})

		Convey("移除首尾空白", func() {
			result := CleanJSONContent("  \n{\"a\": 1}\n  ")
			So(result, ShouldEqual, `{"a": 1}`)
		})
	})
}

func TestParseScenes(t *testing.T) {
	Convey("ParseScenes 能解析 LLM 返回的分镜列表", t, func() {
		Convey("正常解析", func() {
			content := `{
				"scenes": [
					{
						"scene_number": 1,
						"start_frame_description": "黎明的山谷，薄雾笼罩",
						"animation_description": "镜头缓缓推进",
						"end_frame_description": "山谷深处出现一座木屋"
					},
					{
						"scene_number": 2,
						"start_frame_description": "木屋门口，少年推门而出",
						"end_frame_description": "少年走向远方的小路"
					}
				]
			}`

			scenes, err := ParseScenes(content)
			So(err, ShouldBeNil)
			So(len(scenes), ShouldEqual, 2)
			So(scenes[0].SceneNumber, ShouldEqual, 1)
			So(scenes[0].StartFrameDescription, ShouldContainSubstring, "黎明的山谷")
			So(scenes[0].AnimationDescription, ShouldContainSubstring, "推进")
			So(scenes[1].AnimationDescription, ShouldBeEmpty)
		})

		Convey("带 markdown 代码块也能解析", func() {
			content := "```json\n{\"scenes\": [{\"scene_number\": 1, \"start_frame_description\": \"a\", \"end_frame_description\": \"b\"}]}\n```"
			scenes, err := ParseScenes(content)
			So(err, ShouldBeNil)
			So(len(scenes), ShouldEqual, 1)
		})

		Convey("空内容报错", func() {
			_, err := ParseScenes("")
			So(err, ShouldNotBeNil)
		})

		Convey("非法 JSON 报错", func() {
			_, err := ParseScenes("这不是 JSON")
			So(err, ShouldNotBeNil)
		})

		Convey("缺少 scenes 字段报错", func() {
			_, err := ParseScenes(`{"title": "故事"}`)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "scenes field is missing or empty")
		})

		Convey("首帧描述为空报错", func() {
			content := `{"scenes": [{"scene_number": 1, "start_frame_description": "", "end_frame_description": "b"}]}`
			_, err := ParseScenes(content)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "start_frame_description is empty")
		})
	})
}

func TestParseSummary(t *testing.T) {
	Convey("ParseSummary 能解析 LLM 返回的剧本梗概", t, func() {
		Convey("正常解析", func() {
			content := `{
				"title": "山谷少年",
				"premise": "一个山村少年踏上寻找失踪父亲的旅程",
				"setting": "架空的东方古代山村",
				"characters": "少年阿岩，铁匠师傅",
				"genre": "冒险",
				"tone": "温暖而坚定"
			}`

			summary, err := ParseSummary(content)
			So(err, ShouldBeNil)
			So(summary.Title, ShouldEqual, "山谷少年")
			So(summary.Premise, ShouldContainSubstring, "寻找失踪父亲")
			So(summary.Tone, ShouldEqual, "温暖而坚定")
		})

		Convey("缺少 premise 报错", func() {
			_, err := ParseSummary(`{"title": "山谷少年"}`)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "premise")
		})

		Convey("非法 JSON 报错", func() {
			_, err := ParseSummary("```\nnot json\n```")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseText(t *testing.T) {
	Convey("ParseText 能解析 LLM 返回的纯文本", t, func() {
		Convey("去掉代码块和引号", func() {
			result, err := ParseText("```\n\"镜头缓缓推进\"\n```")
			So(err, ShouldBeNil)
			So(result, ShouldEqual, "镜头缓缓推进")
		})

		Convey("空结果报错", func() {
			_, err := ParseText("   ")
			So(err, ShouldNotBeNil)
		})
	})
}
