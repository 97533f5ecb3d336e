package storyboard

import (
	storyboardsvc "mango/internal/service/storyboard"
)

// Handler 分镜编辑处理器
// 所有分镜草稿相关的 Handler 方法都通过这个结构体访问 Service
type Handler struct {
	svc storyboardsvc.StoryboardService
}

// NewHandler 创建分镜编辑处理器
func NewHandler(svc storyboardsvc.StoryboardService) *Handler {
	return &Handler{
		svc: svc,
	}
}
