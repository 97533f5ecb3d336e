package storytools

import (
	"strings"

	"github.com/go-ego/gse"
)

// ScriptSplitter 脚本文本分割器
// 超长脚本超出单次模型上下文时，按自然句子边界切成多段逐段摘要
type ScriptSplitter struct {
	maxChunkSize int            // 每段最大字符数（按 rune 计）
	segmenter    *gse.Segmenter // gse 分词器
}

// DefaultChunkSize 默认分段长度
const DefaultChunkSize = 4000

// NewScriptSplitter 创建脚本文本分割器实例
func NewScriptSplitter(maxChunkSize int) *ScriptSplitter {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultChunkSize
	}

	// 初始化 gse 分词器，失败时降级到字符分割
	var segmenter *gse.Segmenter
	if seg, err := gse.New(); err == nil {
		segmenter = &seg
	}

	return &ScriptSplitter{
		maxChunkSize: maxChunkSize,
		segmenter:    segmenter,
	}
}

// NeedsSplit 判断脚本是否超出单段长度
func (ss *ScriptSplitter) NeedsSplit(text string) bool {
	return len([]rune(text)) > ss.maxChunkSize
}

// Split 把脚本文本切成若干段，每段不超过 maxChunkSize 个字符
// 优先在句子边界断开，单句过长时用 gse 分词按词边界断开
func (ss *ScriptSplitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !ss.NeedsSplit(text) {
		return []string{text}
	}

	sentences := splitSentences(text)

	chunks := []string{}
	current := ""
	for _, sentence := range sentences {
		if len([]rune(sentence)) > ss.maxChunkSize {
			// 单句超长，先落盘当前段，再按词边界切
			if current != "" {
				chunks = append(chunks, current)
				current = ""
			}
			chunks = append(chunks, ss.splitLongSentence(sentence)...)
			continue
		}

		if len([]rune(current))+len([]rune(sentence)) > ss.maxChunkSize && current != "" {
			chunks = append(chunks, current)
			current = ""
		}
		current += sentence
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}

// splitSentences 按句子结束符切分文本，结束符保留在句尾
func splitSentences(text string) []string {
	endings := map[rune]bool{
		'。': true, '！': true, '？': true, '；': true, '…': true,
		'.': true, '!': true, '?': true, ';': true, '\n': true,
	}

	sentences := []string{}
	current := ""
	for _, char := range text {
		current += string(char)
		if endings[char] {
			if strings.TrimSpace(current) != "" {
				sentences = append(sentences, current)
			}
			current = ""
		}
	}
	if strings.TrimSpace(current) != "" {
		sentences = append(sentences, current)
	}
	return sentences
}

// splitLongSentence 按词边界切分过长的句子
// 使用 gse 分词获取词汇边界，避免词组被裁断
func (ss *ScriptSplitter) splitLongSentence(sentence string) []string {
	var words []string
	if ss.segmenter != nil {
		words = ss.segmenter.Cut(sentence, false)
	} else {
		// 降级：没有分词器时按字符分割
		for _, char := range sentence {
			words = append(words, string(char))
		}
	}

	chunks := []string{}
	current := ""
	for _, word := range words {
		if len([]rune(current))+len([]rune(word)) > ss.maxChunkSize && current != "" {
			chunks = append(chunks, current)
			current = ""
		}
		current += word
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
