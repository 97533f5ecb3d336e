package storyboard

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"mango/internal/pkg/dataurl"
)

// ImageSourceKind 帧图片来源类型
type ImageSourceKind string

const (
	SourceReference ImageSourceKind = "reference" // 使用草稿的参考图
	SourceInline    ImageSourceKind = "inline"    // 内嵌图片（data URL）
	SourceCrossRef  ImageSourceKind = "crossref"  // 引用其他分镜的某一帧
)

// ImageSource 帧图片来源
// 三种取值：参考图 / 内嵌图片 / 指向其他分镜某一帧的引用。
// 序列化时采用可移植的字符串形式：
//
//	"reference"            参考图
//	"data:image/...;..."   内嵌图片
//	"<scene>-<start|end>"  跨分镜引用（scene 为 1 起始的分镜编号）
type ImageSource struct {
	Kind  ImageSourceKind
	Data  string    // Kind == SourceInline 时的 data URL
	Scene int       // Kind == SourceCrossRef 时引用的分镜编号（1 起始）
	Side  FrameSide // Kind == SourceCrossRef 时引用的帧位置
}

// ReferenceSource 参考图来源
func ReferenceSource() ImageSource {
	return ImageSource{Kind: SourceReference}
}

// InlineSource 内嵌图片来源
func InlineSource(dataURL string) ImageSource {
	return ImageSource{Kind: SourceInline, Data: dataURL}
}

// CrossRefSource 跨分镜引用来源
func CrossRefSource(scene int, side FrameSide) ImageSource {
	return ImageSource{Kind: SourceCrossRef, Scene: scene, Side: side}
}

// ParseImageSource 解析可移植字符串形式的图片来源
func ParseImageSource(s string) (ImageSource, error) {
	switch {
	case s == "" || s == string(SourceReference):
		return ReferenceSource(), nil
	case dataurl.IsDataURL(s):
		return InlineSource(s), nil
	}

	// "<scene>-<start|end>"
	idx := strings.LastIndexByte(s, '-')
	if idx <= 0 {
		return ImageSource{}, fmt.Errorf("invalid image source: %q", s)
	}
	num, err := strconv.Atoi(s[:idx])
	if err != nil || num < 1 {
		return ImageSource{}, fmt.Errorf("invalid image source scene number: %q", s)
	}
	side := FrameSide(s[idx+1:])
	if !side.IsValid() {
		return ImageSource{}, fmt.Errorf("invalid image source frame side: %q", s)
	}
	return CrossRefSource(num, side), nil
}

// Encode 返回可移植的字符串形式
func (s ImageSource) Encode() string {
	switch s.Kind {
	case SourceInline:
		return s.Data
	case SourceCrossRef:
		return fmt.Sprintf("%d-%s", s.Scene, s.Side)
	default:
		return string(SourceReference)
	}
}

// Equal 值相等比较
func (s ImageSource) Equal(other ImageSource) bool {
	return s == other
}

// MarshalJSON 序列化为可移植字符串
func (s ImageSource) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Encode())
}

// UnmarshalJSON 从可移植字符串反序列化
func (s *ImageSource) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseImageSource(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalBSONValue BSON 序列化，与 JSON 一致使用字符串形式
func (s ImageSource) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(s.Encode())
}

// UnmarshalBSONValue BSON 反序列化
func (s *ImageSource) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var raw string
	rv := bson.RawValue{Type: t, Value: data}
	if err := rv.Unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseImageSource(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Frame 分镜中的一帧（起始帧或结束帧）
type Frame struct {
	Description string      `bson:"description" json:"description"`                         // 画面描述
	Status      FrameStatus `bson:"status" json:"status"`                                   // 生成状态
	Source      ImageSource `bson:"image_source" json:"imageSource"`                        // 图片来源
	Image       string      `bson:"image,omitempty" json:"image,omitempty"`                 // 生成结果（data URL，仅 status=done 时有意义）
	Error       string      `bson:"error_message,omitempty" json:"errorMessage,omitempty"` // 错误信息（失败时）
}

// NewFrame 创建初始帧
func NewFrame(description string) Frame {
	return Frame{
		Description: description,
		Status:      FrameStatusIdle,
		Source:      ReferenceSource(),
	}
}

// ResolvedImage 返回已生成的图片；仅当 status=done 时有值
func (f Frame) ResolvedImage() (string, bool) {
	if f.Status == FrameStatusDone && f.Image != "" {
		return f.Image, true
	}
	return "", false
}

// Clear 显式清除：回到 idle，丢弃图片和错误
func (f *Frame) Clear() {
	f.Status = FrameStatusIdle
	f.Image = ""
	f.Error = ""
}

// Equal 值相等比较
func (f Frame) Equal(other Frame) bool {
	return f.Description == other.Description &&
		f.Status == other.Status &&
		f.Source.Equal(other.Source) &&
		f.Image == other.Image &&
		f.Error == other.Error
}

// Scene 一个分镜：起始帧、结束帧、动画描述和视频生成字段
type Scene struct {
	Number      int         `bson:"scene" json:"scene"`                                      // 分镜编号（1 起始，连续）
	StartFrame  Frame       `bson:"start_frame" json:"startFrame"`                           // 起始帧
	EndFrame    Frame       `bson:"end_frame" json:"endFrame"`                               // 结束帧
	Animation   string      `bson:"animation_description" json:"animationDescription"`      // 起始帧到结束帧的动画描述
	VideoPrompt string      `bson:"video_prompt" json:"videoPrompt"`                         // 视频生成提示词
	VideoStatus VideoStatus `bson:"video_status" json:"videoStatus"`                         // 视频生成状态
	Video       string      `bson:"video,omitempty" json:"video,omitempty"`                  // 生成的视频地址
	VideoError  string      `bson:"video_error,omitempty" json:"videoError,omitempty"`      // 视频错误信息
	VideoTaskID string      `bson:"video_task_id,omitempty" json:"videoTaskId,omitempty"` // 进行中的视频任务句柄
}

// NewScene 创建初始分镜，两帧均为 idle、来源为参考图
func NewScene(number int, startDesc, animation, endDesc string) Scene {
	return Scene{
		Number:      number,
		StartFrame:  NewFrame(startDesc),
		EndFrame:    NewFrame(endDesc),
		Animation:   animation,
		VideoStatus: VideoStatusIdle,
	}
}

// Frame 按位置取帧指针
func (s *Scene) Frame(side FrameSide) *Frame {
	if side == FrameEnd {
		return &s.EndFrame
	}
	return &s.StartFrame
}

// Equal 值相等比较
func (s Scene) Equal(other Scene) bool {
	return s.Number == other.Number &&
		s.StartFrame.Equal(other.StartFrame) &&
		s.EndFrame.Equal(other.EndFrame) &&
		s.Animation == other.Animation &&
		s.VideoPrompt == other.VideoPrompt &&
		s.VideoStatus == other.VideoStatus &&
		s.Video == other.Video &&
		s.VideoError == other.VideoError &&
		s.VideoTaskID == other.VideoTaskID
}

// ScenesEqual 分镜列表值相等比较
func ScenesEqual(a, b []Scene) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// CloneScenes 深拷贝分镜列表
// Scene 内部全部是值类型和不可变字符串，逐元素复制即为深拷贝
func CloneScenes(scenes []Scene) []Scene {
	if scenes == nil {
		return nil
	}
	cloned := make([]Scene, len(scenes))
	copy(cloned, scenes)
	return cloned
}

// Renumber 重排分镜编号，保证编号为 1..N 且与位置一致
// 任何插入/删除/移动之后都必须调用
func Renumber(scenes []Scene) {
	for i := range scenes {
		scenes[i].Number = i + 1
	}
}
