package storytools

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"mango/internal/model/storyboard"
)

// CleanJSONContent 清理 LLM 返回的 JSON 内容
// 移除 markdown 代码块标记，修复常见的格式问题
func CleanJSONContent(content string) string {
	// 移除首尾空白
	content = strings.TrimSpace(content)

	// 移除 markdown 代码块标记（```json ... ``` 或 ``` ... ```）
	markdownPattern := regexp.MustCompile(`(?s)^\s*` + "```" + `(?:json)?\s*\n(.*?)\n\s*` + "```" + `\s*$`)
	if matches := markdownPattern.FindStringSubmatch(content); len(matches) > 1 {
		content = matches[1]
	}

	// 移除可能残留的其他 markdown 标记
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	return content
}

// RawScene 临时分镜结构体，用于解析 LLM 返回的 JSON（不保存到数据库）
// 解析后会转换为 storyboard.Scene 实体
type RawScene struct {
	SceneNumber           int    `json:"scene_number"`                    // 分镜编号（从 1 开始）
	StartFrameDescription string `json:"start_frame_description"`         // 首帧画面描述
	AnimationDescription  string `json:"animation_description,omitempty"` // 首尾帧之间的运动描述
	EndFrameDescription   string `json:"end_frame_description"`           // 尾帧画面描述
}

// rawSceneList 临时结构体，用于解析 LLM 返回的分镜列表
type rawSceneList struct {
	Scenes []*RawScene `json:"scenes"`
}

// ParseScenes 解析 LLM 返回的分镜列表 JSON
// 分镜数量以实际返回为准，编号由调用方重排
func ParseScenes(content string) ([]*RawScene, error) {
	content = CleanJSONContent(content)
	if content == "" {
		return nil, fmt.Errorf("scene content is empty")
	}

	var list rawSceneList
	if err := json.Unmarshal([]byte(content), &list); err != nil {
		return nil, fmt.Errorf("failed to parse scenes JSON: %w", err)
	}

	if len(list.Scenes) == 0 {
		return nil, fmt.Errorf("scenes field is missing or empty")
	}

	// 过滤空项并验证必填字段
	scenes := make([]*RawScene, 0, len(list.Scenes))
	for i, scene := range list.Scenes {
		if scene == nil {
			continue
		}
		if strings.TrimSpace(scene.StartFrameDescription) == "" {
			return nil, fmt.Errorf("scene %d: start_frame_description is empty", i+1)
		}
		if strings.TrimSpace(scene.EndFrameDescription) == "" {
			return nil, fmt.Errorf("scene %d: end_frame_description is empty", i+1)
		}
		scenes = append(scenes, scene)
	}

	if len(scenes) == 0 {
		return nil, fmt.Errorf("no valid scenes found in content")
	}

	return scenes, nil
}

// ParseSummary 解析 LLM 返回的剧本梗概 JSON
func ParseSummary(content string) (*storyboard.ScriptSummary, error) {
	content = CleanJSONContent(content)
	if content == "" {
		return nil, fmt.Errorf("summary content is empty")
	}

	var summary storyboard.ScriptSummary
	if err := json.Unmarshal([]byte(content), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary JSON: %w", err)
	}

	if strings.TrimSpace(summary.Premise) == "" {
		return nil, fmt.Errorf("premise field is missing or empty")
	}

	return &summary, nil
}

// ParseText 解析 LLM 返回的纯文本结果
// 去掉可能包裹的代码块和首尾引号
func ParseText(content string) (string, error) {
	content = CleanJSONContent(content)
	content = strings.Trim(content, "\"")
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("text content is empty")
	}
	return content, nil
}
