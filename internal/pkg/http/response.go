package http

// ErrorResponse 统一错误响应
// RequestID 来自请求中间件，便于日志关联排查
type ErrorResponse struct {
	Code      int    `json:"code"`                 // 错误码（非0表示错误）
	Message   string `json:"message"`              // 错误消息
	Detail    string `json:"detail,omitempty"`     // 错误详情（可选）
	RequestID string `json:"request_id,omitempty"` // 请求ID（可选）
}

// SuccessResponse 统一成功响应
type SuccessResponse struct {
	Code    int         `json:"code"`           // 状态码（0表示成功）
	Message string      `json:"message"`        // 响应消息
	Data    interface{} `json:"data,omitempty"` // 响应数据（可选）
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(message string, data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Code:    0,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string, detail ...string) *ErrorResponse {
	resp := &ErrorResponse{
		Code:    code,
		Message: message,
	}
	if len(detail) > 0 && detail[0] != "" {
		resp.Detail = detail[0]
	}
	return resp
}
