package middleware

import (
	"github.com/gin-gonic/gin"

	"mango/internal/pkg/id"
)

// 请求ID的透传头
const RequestIDHeader = "X-Request-ID"

// RequestID 请求ID中间件
// 客户端带了 X-Request-ID 就沿用，否则生成一个；同时写回响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = id.New()
		}

		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}
