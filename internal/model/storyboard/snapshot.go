package storyboard

import (
	"encoding/json"
	"fmt"
	"time"
)

// 导入/导出使用草稿的可移植 JSON 快照。
// 导出时省略体积巨大的音频附件；导入时 scenes 字段必须存在且为数组。

// ExportSnapshot 序列化草稿为可下载的快照
func ExportSnapshot(d *Draft) ([]byte, error) {
	cloned := d.Clone()
	cloned.Audio = nil
	data, err := json.MarshalIndent(cloned, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal draft snapshot: %w", err)
	}
	return data, nil
}

// ExportFilename 生成带时间戳的快照文件名
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("storyboard-%s.json", now.Format("20060102-150405"))
}

// ParseSnapshot 解析上传的快照
// scenes 字段缺失或不是数组时报错，调用方必须保证此时草稿不被改动
func ParseSnapshot(data []byte) (*Draft, error) {
	var probe struct {
		Scenes *json.RawMessage `json:"scenes"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if probe.Scenes == nil {
		return nil, fmt.Errorf("snapshot has no scenes field")
	}

	var scenes []Scene
	if err := json.Unmarshal(*probe.Scenes, &scenes); err != nil {
		return nil, fmt.Errorf("snapshot scenes is not a scene array: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("parse snapshot draft: %w", err)
	}

	draft.Scenes = scenes
	Renumber(draft.Scenes)

	// 尽力修复：非法枚举值回落到默认值
	if !draft.ActiveInput.IsValid() {
		draft.ActiveInput = InputIdea
	}
	if !draft.Language.IsValid() {
		draft.Language = LanguageChinese
	}
	if !draft.ScriptType.IsValid() {
		draft.ScriptType = ScriptTypeAuto
	}
	if len(draft.ReferenceImages) > MaxReferenceImages {
		draft.ReferenceImages = draft.ReferenceImages[:MaxReferenceImages]
	}

	return &draft, nil
}
