package dataurl

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// 图片和音频数据在系统边界上都以 data URL 形式传递：
// data:<mimeType>;base64,<payload>

const prefix = "data:"

// Encode 将二进制数据编码为 data URL
func Encode(data []byte, mimeType string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// Decode 解析 data URL，返回二进制数据和 MIME 类型
func Decode(s string) ([]byte, string, error) {
	if !strings.HasPrefix(s, prefix) {
		return nil, "", fmt.Errorf("not a data URL")
	}

	rest := s[len(prefix):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, "", fmt.Errorf("malformed data URL: missing comma")
	}

	meta := rest[:comma]
	payload := rest[comma+1:]

	mimeType := meta
	if semi := strings.IndexByte(meta, ';'); semi >= 0 {
		encoding := meta[semi+1:]
		if encoding != "base64" {
			return nil, "", fmt.Errorf("unsupported data URL encoding: %s", encoding)
		}
		mimeType = meta[:semi]
	} else {
		return nil, "", fmt.Errorf("unsupported data URL encoding: plain text")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode base64 payload: %w", err)
	}

	return data, mimeType, nil
}

// IsDataURL 判断字符串是否为 data URL
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, prefix)
}

// MimeType 只提取 MIME 类型，不解码数据
func MimeType(s string) string {
	if !strings.HasPrefix(s, prefix) {
		return ""
	}
	rest := s[len(prefix):]
	end := strings.IndexAny(rest, ";,")
	if end < 0 {
		return ""
	}
	return rest[:end]
}
