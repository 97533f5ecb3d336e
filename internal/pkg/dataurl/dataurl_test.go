package dataurl

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDataURL(t *testing.T) {
	Convey("data URL 编解码", t, func() {
		Convey("Encode 后 Decode 应还原数据和 MIME 类型", func() {
			data := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}
			url := Encode(data, "image/jpeg")
			So(url, ShouldStartWith, "data:image/jpeg;base64,")

			decoded, mime, err := Decode(url)
			So(err, ShouldBeNil)
			So(mime, ShouldEqual, "image/jpeg")
			So(decoded, ShouldResemble, data)
		})

		Convey("非 data URL 应报错", func() {
			_, _, err := Decode("https://example.com/a.png")
			So(err, ShouldNotBeNil)
		})

		Convey("缺少逗号应报错", func() {
			_, _, err := Decode("data:image/png;base64")
			So(err, ShouldNotBeNil)
		})

		Convey("非 base64 编码应报错", func() {
			_, _, err := Decode("data:text/plain,hello")
			So(err, ShouldNotBeNil)
		})

		Convey("损坏的 base64 负载应报错", func() {
			_, _, err := Decode("data:image/png;base64,!!!!")
			So(err, ShouldNotBeNil)
		})

		Convey("IsDataURL 与 MimeType", func() {
			So(IsDataURL("data:image/png;base64,AAAA"), ShouldBeTrue)
			So(IsDataURL("reference"), ShouldBeFalse)
			So(MimeType("data:audio/mpeg;base64,AAAA"), ShouldEqual, "audio/mpeg")
			So(MimeType("nope"), ShouldEqual, "")
		})
	})
}
