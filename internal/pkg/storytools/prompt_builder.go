package storytools

import (
	"fmt"
	"strings"

	"mango/internal/model/storyboard"
)

// languageName 输出语言的中文名，用于拼入提示词
func languageName(language storyboard.Language) string {
	switch language {
	case storyboard.LanguageEnglish:
		return "英文"
	case storyboard.LanguageJapanese:
		return "日文"
	case storyboard.LanguageKorean:
		return "韩文"
	case storyboard.LanguageFrench:
		return "法文"
	case storyboard.LanguageSpanish:
		return "西班牙文"
	case storyboard.LanguageGerman:
		return "德文"
	default:
		return "中文"
	}
}

// scriptTypeHint 脚本类型对应的提示词片段
func scriptTypeHint(scriptType storyboard.ScriptType) string {
	switch scriptType {
	case storyboard.ScriptTypeDialogue:
		return "这是一个以对白为主的脚本，提炼梗概时注意保留关键对话的戏剧冲突。"
	case storyboard.ScriptTypeAction:
		return "这是一个以动作为主的脚本，提炼梗概时注意保留关键动作场面的节奏。"
	default:
		return "请自行判断脚本类型（对白为主或动作为主），按其特点提炼梗概。"
	}
}

// writeJSONFormatRules 输出 JSON 格式要求（所有结构化提示词共用）
func writeJSONFormatRules(b *strings.Builder) {
	b.WriteString("【输出格式要求 - 必须严格遵守】\n")
	b.WriteString("1. 你的输出必须是一个有效的 JSON 对象，可以直接被 json.Unmarshal() 解析\n")
	b.WriteString("2. 不要使用 markdown 代码块标记（绝对不要使用 ```json 或 ```）\n")
	b.WriteString("3. 不要添加任何解释、说明、注释或额外文字，只输出 JSON\n")
	b.WriteString("4. 所有键名和字符串值必须使用双引号包裹\n")
	b.WriteString("5. 绝对禁止在数组或对象的最后一个元素后添加逗号\n")
	b.WriteString("6. 确保字符串中的特殊字符都已正确转义\n\n")
}

// buildSummaryPrompt 构造剧本梗概的提示词
func buildSummaryPrompt(req *SummaryRequest, content string) string {
	var b strings.Builder
	b.WriteString("你是一名专业的影视分镜脚本策划。\n")

	switch req.Method {
	case storyboard.InputScript:
		b.WriteString("请基于下面给出的完整脚本文本，提炼出一份结构化的剧本梗概。\n")
		b.WriteString(scriptTypeHint(req.ScriptType))
		b.WriteString("\n\n")
	case storyboard.InputAudio:
		b.WriteString("下面是一段用户录音的内容，请先理解其中讲述的故事，再提炼出一份结构化的剧本梗概。\n\n")
	default:
		b.WriteString("请基于下面给出的一句话想法，扩写并提炼出一份结构化的剧本梗概。\n\n")
	}

	writeJSONFormatRules(&b)

	b.WriteString("【输出字段】\n")
	b.WriteString("{\n")
	b.WriteString("  \"title\": \"故事标题\",\n")
	b.WriteString("  \"premise\": \"一句话故事前提（必填）\",\n")
	b.WriteString("  \"setting\": \"时空背景\",\n")
	b.WriteString("  \"characters\": \"主要角色及其关系\",\n")
	b.WriteString("  \"genre\": \"题材类型\",\n")
	b.WriteString("  \"tone\": \"整体基调\"\n")
	b.WriteString("}\n\n")

	if req.Notes != "" || len(req.ReferenceImages) > 0 {
		b.WriteString("【补充信息】\n")
		if req.Notes != "" {
			fmt.Fprintf(&b, "用户补充说明：%s\n", req.Notes)
		}
		if n := len(req.ReferenceImages); n > 0 {
			fmt.Fprintf(&b, "随本条消息附上了%d张人物/场景参考图，故事的角色和场景设定要与参考图中的形象兼容\n", n)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "【语言要求】\n所有字段内容使用%s撰写。\n\n", languageName(req.Language))

	b.WriteString("【输入内容】\n")
	b.WriteString(content)

	return b.String()
}

// buildSceneDevelopmentPrompt 构造分镜展开的提示词
// 每个分镜要求首帧描述、运动描述、尾帧描述三段
func buildSceneDevelopmentPrompt(
	summary *storyboard.ScriptSummary,
	params storyboard.GenerationParams,
	language storyboard.Language,
) string {
	var b strings.Builder
	b.WriteString("你是一名专业的影视分镜脚本策划。\n")
	fmt.Fprintf(&b, "请基于下面的剧本梗概，展开为%d个连贯的分镜。\n\n", params.NumberOfScenes)

	writeJSONFormatRules(&b)

	b.WriteString("【输出字段】\n")
	b.WriteString("{\n")
	b.WriteString("  \"scenes\": [\n")
	b.WriteString("    {\n")
	b.WriteString("      \"scene_number\": 1,\n")
	b.WriteString("      \"start_frame_description\": \"首帧画面描述，一张静态画面能表达的内容\",\n")
	b.WriteString("      \"animation_description\": \"首帧到尾帧之间的镜头运动和画面变化\",\n")
	b.WriteString("      \"end_frame_description\": \"尾帧画面描述\"\n")
	b.WriteString("    }\n")
	b.WriteString("  ]\n")
	b.WriteString("}\n\n")

	b.WriteString("【内容要求】\n")
	fmt.Fprintf(&b, "1. 必须生成%d个分镜，scene_number 从 1 开始连续编号\n", params.NumberOfScenes)
	b.WriteString("2. 每个画面描述必须具体可画：包含主体、环境、构图和光线\n")
	b.WriteString("3. 相邻分镜之间的画面要有叙事上的连续性\n")
	b.WriteString("4. 首帧和尾帧的描述差异要能用一段镜头运动自然衔接\n")
	if params.Style != "" {
		fmt.Fprintf(&b, "5. 画面风格统一为：%s\n", params.Style)
	}
	if params.Notes != "" {
		fmt.Fprintf(&b, "补充说明：%s\n", params.Notes)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "【语言要求】\n所有描述使用%s撰写。\n\n", languageName(language))

	b.WriteString("【剧本梗概】\n")
	writeSummary(&b, summary)

	return b.String()
}

// writeSummary 把剧本梗概拼入提示词
func writeSummary(b *strings.Builder, summary *storyboard.ScriptSummary) {
	if summary.Title != "" {
		fmt.Fprintf(b, "标题：%s\n", summary.Title)
	}
	fmt.Fprintf(b, "前提：%s\n", summary.Premise)
	if summary.Setting != "" {
		fmt.Fprintf(b, "背景：%s\n", summary.Setting)
	}
	if summary.Characters != "" {
		fmt.Fprintf(b, "角色：%s\n", summary.Characters)
	}
	if summary.Genre != "" {
		fmt.Fprintf(b, "题材：%s\n", summary.Genre)
	}
	if summary.Tone != "" {
		fmt.Fprintf(b, "基调：%s\n", summary.Tone)
	}
}

// buildVideoPromptPrompt 构造视频提示词生成的提示词
func buildVideoPromptPrompt(scene *storyboard.Scene, language storyboard.Language) string {
	var b strings.Builder
	b.WriteString("你是一名专业的视频生成提示词工程师。\n")
	b.WriteString("请基于下面分镜的首帧、尾帧和运动描述，撰写一段用于图生视频模型的提示词。\n\n")

	b.WriteString("【要求】\n")
	b.WriteString("1. 只输出提示词本身，不要解释，不要使用 markdown 标记\n")
	b.WriteString("2. 明确描述镜头运动方式（推拉摇移跟等）\n")
	b.WriteString("3. 描述画面主体的动作变化，确保尾帧状态可达\n")
	fmt.Fprintf(&b, "4. 使用%s撰写\n\n", languageName(language))

	b.WriteString("【分镜信息】\n")
	fmt.Fprintf(&b, "首帧：%s\n", scene.StartFrame.Description)
	if scene.Animation != "" {
		fmt.Fprintf(&b, "运动：%s\n", scene.Animation)
	}
	fmt.Fprintf(&b, "尾帧：%s\n", scene.EndFrame.Description)

	return b.String()
}

// buildRefineDescriptionPrompt 构造帧描述润色的提示词
func buildRefineDescriptionPrompt(current, instruction string, language storyboard.Language) string {
	var b strings.Builder
	b.WriteString("你是一名专业的影视分镜脚本策划。\n")
	b.WriteString("请按照用户指令修改下面的画面描述。\n\n")

	b.WriteString("【要求】\n")
	b.WriteString("1. 只输出修改后的画面描述本身，不要解释，不要使用 markdown 标记\n")
	b.WriteString("2. 保持描述具体可画：包含主体、环境、构图和光线\n")
	b.WriteString("3. 未被指令涉及的部分尽量保持原样\n")
	fmt.Fprintf(&b, "4. 使用%s撰写\n\n", languageName(language))

	fmt.Fprintf(&b, "【当前描述】\n%s\n\n", current)
	fmt.Fprintf(&b, "【用户指令】\n%s\n", instruction)

	return b.String()
}

// buildRefineAnimationPrompt 构造运动描述润色的提示词
func buildRefineAnimationPrompt(scene *storyboard.Scene, instruction string, language storyboard.Language) string {
	var b strings.Builder
	b.WriteString("你是一名专业的影视分镜脚本策划。\n")
	b.WriteString("请按照用户指令修改下面分镜的运动描述，使其仍能衔接首帧和尾帧。\n\n")

	b.WriteString("【要求】\n")
	b.WriteString("1. 只输出修改后的运动描述本身，不要解释，不要使用 markdown 标记\n")
	b.WriteString("2. 运动描述必须从首帧画面自然过渡到尾帧画面\n")
	fmt.Fprintf(&b, "3. 使用%s撰写\n\n", languageName(language))

	b.WriteString("【分镜信息】\n")
	fmt.Fprintf(&b, "首帧：%s\n", scene.StartFrame.Description)
	if scene.Animation != "" {
		fmt.Fprintf(&b, "当前运动描述：%s\n", scene.Animation)
	}
	fmt.Fprintf(&b, "尾帧：%s\n\n", scene.EndFrame.Description)

	fmt.Fprintf(&b, "【用户指令】\n%s\n", instruction)

	return b.String()
}
