package storyboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UpdateFrameDescriptionRequest 更新帧描述请求
type UpdateFrameDescriptionRequest struct {
	Description string `json:"description"` // 画面描述
}

// UpdateFrameDescription 更新帧画面描述
// @Summary      更新帧描述
// @Description  更新分镜起始帧或结束帧的画面描述，占一个撤销步
// @Tags         分镜编辑
// @Accept       json
// @Produce      json
// @Param        draft_id  path      string                         true  "草稿ID"
// @Param        scene     path      int                            true  "分镜编号（1 起始）"
// @Param        side      path      string                         true  "帧位置（start/end）"
// @Param        request   body      UpdateFrameDescriptionRequest  true  "请求体"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      404       {object}  ErrorResponse  "分镜不存在"
// @Router       /api/v1/drafts/{draft_id}/scenes/{scene}/frames/{side}/description [put]
func (h *Handler) UpdateFrameDescription(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}
	number, ok := sceneNumber(c)
	if !ok {
		return
	}
	side, ok := frameSide(c)
	if !ok {
		return
	}

	var req UpdateFrameDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	draft, err := h.svc.UpdateFrameDescription(c.Request.Context(), id, number, side, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// UpdateAnimationRequest 更新运动描述请求
type UpdateAnimationRequest struct {
	Animation string `json:"animation"` // 起始帧到结束帧的运动描述
}

// UpdateAnimation 更新分镜运动描述
// @Summary      更新运动描述
// @Description  更新分镜的运动描述，占一个撤销步
// @Tags         分镜编辑
// @Accept       json
// @Produce      json
// @Param        draft_id  path      string                  true  "草稿ID"
// @Param        scene     path      int                     true  "分镜编号（1 起始）"
// @Param        request   body      UpdateAnimationRequest  true  "请求体"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      404       {object}  ErrorResponse  "分镜不存在"
// @Router       /api/v1/drafts/{draft_id}/scenes/{scene}/animation [put]
func (h *Handler) UpdateAnimation(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}
	number, ok := sceneNumber(c)
	if !ok {
		return
	}

	var req UpdateAnimationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	draft, err := h.svc.UpdateAnimation(c.Request.Context(), id, number, req.Animation)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// UpdateVideoPromptRequest 更新视频提示词请求
type UpdateVideoPromptRequest struct {
	Prompt string `json:"prompt"` // 视频生成提示词
}

// UpdateVideoPrompt 更新视频提示词
// @Summary      更新视频提示词
// @Description  更新分镜的视频生成提示词，占一个撤销步
// @Tags         分镜编辑
// @Accept       json
// @Produce      json
// @Param        draft_id  path      string                    true  "草稿ID"
// @Param        scene     path      int                       true  "分镜编号（1 起始）"
// @Param        request   body      UpdateVideoPromptRequest  true  "请求体"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      404       {object}  ErrorResponse  "分镜不存在"
// @Router       /api/v1/drafts/{draft_id}/scenes/{scene}/video-prompt [put]
func (h *Handler) UpdateVideoPrompt(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}
	number, ok := sceneNumber(c)
	if !ok {
		return
	}

	var req UpdateVideoPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	draft, err := h.svc.UpdateVideoPrompt(c.Request.Context(), id, number, req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// SetFrameSourceRequest 设置帧来源请求
type SetFrameSourceRequest struct {
	// 来源的可移植字符串形式：
	// "reference" / data URL / "<scene>-<start|end>"
	Source string `json:"source"`
}

// SetFrameSource 设置帧图片来源
// @Summary      设置帧图片来源
// @Description  设置帧生成时使用的源图：参考图、内嵌图片或其他分镜的帧
// @Tags         分镜编辑
// @Accept       json
// @Produce      json
// @Param        draft_id  path      string                 true  "草稿ID"
// @Param        scene     path      int                    true  "分镜编号（1 起始）"
// @Param        side      path      string                 true  "帧位置（start/end）"
// @Param        request   body      SetFrameSourceRequest  true  "请求体"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      400       {object}  ErrorResponse  "来源格式非法"
// @Router       /api/v1/drafts/{draft_id}/scenes/{scene}/frames/{side}/source [put]
func (h *Handler) SetFrameSource(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}
	number, ok := sceneNumber(c)
	if !ok {
		return
	}
	side, ok := frameSide(c)
	if !ok {
		return
	}

	var req SetFrameSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	draft, err := h.svc.SetFrameSource(c.Request.Context(), id, number, side, req.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// ClearFrame 清除帧
// @Summary      清除帧
// @Description  把帧重置为未生成状态，丢弃已生成的图片和错误信息
// @Tags         分镜编辑
// @Produce      json
// @Param        draft_id  path      string  true  "草稿ID"
// @Param        scene     path      int     true  "分镜编号（1 起始）"
// @Param        side      path      string  true  "帧位置（start/end）"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      404       {object}  ErrorResponse  "分镜不存在"
// @Router       /api/v1/drafts/{draft_id}/scenes/{scene}/frames/{side}/clear [post]
func (h *Handler) ClearFrame(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}
	number, ok := sceneNumber(c)
	if !ok {
		return
	}
	side, ok := frameSide(c)
	if !ok {
		return
	}

	draft, err := h.svc.ClearFrame(c.Request.Context(), id, number, side)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// AddSceneRequest 插入分镜请求
type AddSceneRequest struct {
	After int `json:"after"` // 插入位置：在该编号之后，0 表示插到最前
}

// AddScene 插入空分镜
// @Summary      插入分镜
// @Description  在指定编号后插入一个空分镜，后续分镜编号自动重排
// @Tags         分镜编辑
// @Accept       json
// @Produce      json
// @Param        draft_id  path      string           true  "草稿ID"
// @Param        request   body      AddSceneRequest  true  "请求体"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      404       {object}  ErrorResponse  "插入位置越界"
// @Router       /api/v1/drafts/{draft_id}/scenes [post]
func (h *Handler) AddScene(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	var req AddSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	draft, err := h.svc.AddScene(c.Request.Context(), id, req.After)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// DeleteScene 删除分镜
// @Summary      删除分镜
// @Description  删除指定分镜，后续分镜编号自动重排
// @Tags         分镜编辑
// @Produce      json
// @Param        draft_id  path      string  true  "草稿ID"
// @Param        scene     path      int     true  "分镜编号（1 起始）"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      404       {object}  ErrorResponse  "分镜不存在"
// @Router       /api/v1/drafts/{draft_id}/scenes/{scene} [delete]
func (h *Handler) DeleteScene(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}
	number, ok := sceneNumber(c)
	if !ok {
		return
	}

	draft, err := h.svc.DeleteScene(c.Request.Context(), id, number)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// MoveSceneRequest 移动分镜请求
type MoveSceneRequest struct {
	To int `json:"to" binding:"required"` // 目标位置（1 起始）
}

// MoveScene 移动分镜
// @Summary      移动分镜
// @Description  把分镜移动到目标位置，编号自动重排
// @Tags         分镜编辑
// @Accept       json
// @Produce      json
// @Param        draft_id  path      string            true  "草稿ID"
// @Param        scene     path      int               true  "分镜编号（1 起始）"
// @Param        request   body      MoveSceneRequest  true  "请求体"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      404       {object}  ErrorResponse  "位置越界"
// @Router       /api/v1/drafts/{draft_id}/scenes/{scene}/move [post]
func (h *Handler) MoveScene(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}
	number, ok := sceneNumber(c)
	if !ok {
		return
	}

	var req MoveSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	draft, err := h.svc.MoveScene(c.Request.Context(), id, number, req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}
