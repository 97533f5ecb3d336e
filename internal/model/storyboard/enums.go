package storyboard

// InputMethod 草稿的输入方式
type InputMethod string

const (
	InputIdea   InputMethod = "idea"   // 一句话想法
	InputScript InputMethod = "script" // 完整脚本文本
	InputAudio  InputMethod = "audio"  // 音频录音
)

// IsValid 判断输入方式是否合法
func (m InputMethod) IsValid() bool {
	switch m {
	case InputIdea, InputScript, InputAudio:
		return true
	}
	return false
}

// FrameStatus 帧图片生成状态
// 状态只能沿 idle → pending → done/error 前进，
// done/error 只能通过显式的清除操作回到 idle
type FrameStatus string

const (
	FrameStatusIdle    FrameStatus = "idle"    // 未生成
	FrameStatusPending FrameStatus = "pending" // 生成中
	FrameStatusDone    FrameStatus = "done"    // 已生成
	FrameStatusError   FrameStatus = "error"   // 生成失败
)

// String 返回状态的字符串表示
func (s FrameStatus) String() string {
	return string(s)
}

// VideoStatus 分镜视频生成状态
type VideoStatus string

const (
	VideoStatusIdle    VideoStatus = "idle"    // 未生成
	VideoStatusPending VideoStatus = "pending" // 生成中
	VideoStatusDone    VideoStatus = "done"    // 已生成
	VideoStatusError   VideoStatus = "error"   // 生成失败
)

// String 返回状态的字符串表示
func (s VideoStatus) String() string {
	return string(s)
}

// FrameSide 帧位置（起始帧/结束帧）
type FrameSide string

const (
	FrameStart FrameSide = "start"
	FrameEnd   FrameSide = "end"
)

// IsValid 判断帧位置是否合法
func (s FrameSide) IsValid() bool {
	return s == FrameStart || s == FrameEnd
}

// ScriptType 脚本类型
type ScriptType string

const (
	ScriptTypeAuto     ScriptType = "auto"     // 自动判断
	ScriptTypeDialogue ScriptType = "dialogue" // 对白为主
	ScriptTypeAction   ScriptType = "action"   // 动作为主
)

// IsValid 判断脚本类型是否合法
func (t ScriptType) IsValid() bool {
	switch t {
	case ScriptTypeAuto, ScriptTypeDialogue, ScriptTypeAction:
		return true
	}
	return false
}

// Language 分镜输出语言（固定集合）
type Language string

const (
	LanguageChinese  Language = "zh"
	LanguageEnglish  Language = "en"
	LanguageJapanese Language = "ja"
	LanguageKorean   Language = "ko"
	LanguageFrench   Language = "fr"
	LanguageSpanish  Language = "es"
	LanguageGerman   Language = "de"
)

// SupportedLanguages 支持的输出语言列表
var SupportedLanguages = []Language{
	LanguageChinese,
	LanguageEnglish,
	LanguageJapanese,
	LanguageKorean,
	LanguageFrench,
	LanguageSpanish,
	LanguageGerman,
}

// IsValid 判断语言是否在支持集合内
func (l Language) IsValid() bool {
	for _, s := range SupportedLanguages {
		if l == s {
			return true
		}
	}
	return false
}

// GalleryItemKind 素材库条目类型
type GalleryItemKind string

const (
	GalleryItemImage GalleryItemKind = "image"
	GalleryItemVideo GalleryItemKind = "video"
)
