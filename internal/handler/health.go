package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadyCheck 就绪检查函数（按依赖命名，如 mongo、redis）
type ReadyCheck func(ctx context.Context) error

// HealthHandler 健康检查处理器
type HealthHandler struct {
	checks map[string]ReadyCheck
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(checks map[string]ReadyCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health 健康检查
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready 就绪检查，逐个探测依赖，任一失败返回 503
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	failed := make(map[string]string)
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"failed": failed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
