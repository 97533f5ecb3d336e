package storytools

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestScriptSplitter_Split(t *testing.T) {
	Convey("ScriptSplitter.Split 能切分超长脚本", t, func() {
		Convey("空内容应返回 nil", func() {
			splitter := NewScriptSplitter(100)
			So(splitter.Split(""), ShouldBeNil)
			So(splitter.Split("  \n  "), ShouldBeNil)
		})

		Convey("未超长的文本整段返回", func() {
			splitter := NewScriptSplitter(100)
			result := splitter.Split("一段很短的脚本。")
			So(len(result), ShouldEqual, 1)
			So(result[0], ShouldEqual, "一段很短的脚本。")
		})

		Convey("超长文本在句子边界切分", func() {
			splitter := NewScriptSplitter(20)
			text := "第一句话在这里结束。第二句话稍微长一点也结束了。第三句话收尾。"
			result := splitter.Split(text)
			So(len(result), ShouldBeGreaterThan, 1)
			// 每段不超过限长
			for _, chunk := range result {
				So(len([]rune(chunk)), ShouldBeLessThanOrEqualTo, 20)
			}
			// 内容无丢失
			So(strings.Join(result, ""), ShouldEqual, text)
		})

		Convey("单句超长时按词边界切分", func() {
			splitter := NewScriptSplitter(10)
			text := "这是一个完全没有任何标点符号的超长句子它的长度远远超过了限制"
			result := splitter.Split(text)
			So(len(result), ShouldBeGreaterThan, 1)
			for _, chunk := range result {
				So(len([]rune(chunk)), ShouldBeLessThanOrEqualTo, 10)
			}
			So(strings.Join(result, ""), ShouldEqual, text)
		})
	})
}

func TestScriptSplitter_NeedsSplit(t *testing.T) {
	Convey("NeedsSplit 按 rune 数判断", t, func() {
		splitter := NewScriptSplitter(5)
		So(splitter.NeedsSplit("一二三四五"), ShouldBeFalse)
		So(splitter.NeedsSplit("一二三四五六"), ShouldBeTrue)
	})
}
