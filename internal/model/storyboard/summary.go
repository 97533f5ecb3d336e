package storyboard

// ScriptSummary 剧本梗概
// 由摘要服务生成，生成后用户可以继续修改
type ScriptSummary struct {
	Title      string `bson:"title" json:"title"`                               // 标题
	Premise    string `bson:"premise" json:"premise"`                           // 故事前提/一句话梗概
	Setting    string `bson:"setting,omitempty" json:"setting,omitempty"`       // 时空背景
	Characters string `bson:"characters,omitempty" json:"characters,omitempty"` // 主要角色
	Genre      string `bson:"genre,omitempty" json:"genre,omitempty"`           // 题材类型
	Tone       string `bson:"tone,omitempty" json:"tone,omitempty"`             // 整体基调
}

// Equal 值相等比较
func (s ScriptSummary) Equal(other ScriptSummary) bool {
	return s == other
}
