package storyboard

// MaxReferenceImages 参考图数量上限
const MaxReferenceImages = 4

// AudioAttachment 音频输入附件
// 以 data URL 形式存储，加载时可还原为文件对象
type AudioAttachment struct {
	Name    string `bson:"name" json:"name"`        // 原始文件名
	Type    string `bson:"type" json:"type"`        // MIME 类型
	DataURL string `bson:"data_url" json:"dataUrl"` // data:<mime>;base64,<payload>
}

// GenerationParams 生成参数，作为整体传给摘要服务
type GenerationParams struct {
	Style          string `json:"style"`          // 画面风格标签
	NumberOfScenes int    `json:"numberOfScenes"` // 目标分镜数量
	AspectRatio    string `json:"aspectRatio"`    // 画幅比例
	Notes          string `json:"notes"`          // 补充说明
	KeepClothing   bool   `json:"keepClothing"`   // 保持服装一致
	KeepBackground bool   `json:"keepBackground"` // 保持背景一致
}

// Draft 分镜草稿，一次编辑会话独占的根聚合
// JSON 标签即导入/导出快照的可移植格式
type Draft struct {
	ActiveInput     InputMethod      `bson:"active_input" json:"activeInput"`                        // 当前输入方式
	Idea            string           `bson:"idea" json:"idea"`                                       // 想法输入
	ScriptText      string           `bson:"script_text" json:"scriptText"`                          // 脚本输入
	Audio           *AudioAttachment `bson:"audio,omitempty" json:"audioData,omitempty"`             // 音频输入（导出时省略）
	ReferenceImages []string         `bson:"reference_images" json:"referenceImages"`                // 参考图（data URL，有序，上限 4）
	Summary         *ScriptSummary   `bson:"script_summary,omitempty" json:"scriptSummary,omitempty"` // 剧本梗概
	Scenes          []Scene          `bson:"scenes" json:"scenes"`                                   // 分镜序列
	Style           string           `bson:"style" json:"style"`                                     // 风格标签
	NumberOfScenes  int              `bson:"number_of_scenes" json:"numberOfScenes"`                 // 目标分镜数量
	AspectRatio     string           `bson:"aspect_ratio" json:"aspectRatio"`                        // 画幅比例
	Notes           string           `bson:"notes" json:"notes"`                                     // 补充说明
	Language        Language         `bson:"storyboard_language" json:"storyboardLanguage"`          // 输出语言
	ScriptType      ScriptType       `bson:"script_type" json:"scriptType"`                          // 脚本类型
	KeepClothing    bool             `bson:"keep_clothing" json:"keepClothing"`                      // 保持服装一致
	KeepBackground  bool             `bson:"keep_background" json:"keepBackground"`                  // 保持背景一致
}

// NewDraft 创建空草稿
func NewDraft(aspectRatio string, sceneCount int) *Draft {
	return &Draft{
		ActiveInput:    InputIdea,
		AspectRatio:    aspectRatio,
		NumberOfScenes: sceneCount,
		Language:       LanguageChinese,
		ScriptType:     ScriptTypeAuto,
	}
}

// Params 取出生成参数
func (d *Draft) Params() GenerationParams {
	return GenerationParams{
		Style:          d.Style,
		NumberOfScenes: d.NumberOfScenes,
		AspectRatio:    d.AspectRatio,
		Notes:          d.Notes,
		KeepClothing:   d.KeepClothing,
		KeepBackground: d.KeepBackground,
	}
}

// ActiveContent 返回当前输入方式对应的内容，空字符串表示缺失
func (d *Draft) ActiveContent() string {
	switch d.ActiveInput {
	case InputScript:
		return d.ScriptText
	case InputAudio:
		if d.Audio != nil {
			return d.Audio.DataURL
		}
		return ""
	default:
		return d.Idea
	}
}

// SceneByNumber 按分镜编号取分镜指针；编号与数组位置一致
func (d *Draft) SceneByNumber(number int) (*Scene, bool) {
	if number < 1 || number > len(d.Scenes) {
		return nil, false
	}
	return &d.Scenes[number-1], true
}

// Clone 深拷贝草稿
func (d *Draft) Clone() *Draft {
	cloned := *d
	cloned.Scenes = CloneScenes(d.Scenes)
	cloned.ReferenceImages = append([]string(nil), d.ReferenceImages...)
	if d.Audio != nil {
		audio := *d.Audio
		cloned.Audio = &audio
	}
	if d.Summary != nil {
		summary := *d.Summary
		cloned.Summary = &summary
	}
	return &cloned
}
