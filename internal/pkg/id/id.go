package id

import (
	"github.com/google/uuid"
)

// New 生成新的UUID字符串，用作草稿、素材等实体ID
func New() string {
	return uuid.NewString()
}

// IsValid 验证ID是否为合法UUID
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
