package storyboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GenerateStoryboard 生成分镜
// @Summary      生成分镜
// @Description  根据当前输入（想法/脚本/音频）生成剧本梗概和分镜序列，整批替换现有分镜并占一个撤销步
// @Tags         生成
// @Produce      json
// @Param        draft_id  path      string  true  "草稿ID"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      400       {object}  ErrorResponse  "当前输入为空"
// @Failure      500       {object}  ErrorResponse  "生成失败"
// @Router       /api/v1/drafts/{draft_id}/generate [post]
func (h *Handler) GenerateStoryboard(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	draft, err := h.svc.GenerateStoryboard(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// RefineRequest 润色请求
type RefineRequest struct {
	Instruction string `json:"instruction" binding:"required"` // 用户的润色指令
}

// RefineFrameDescription 润色帧描述
// @Summary      润色帧描述
// @Description  按用户指令调用 LLM 改写帧画面描述，结果作为一次编辑提交
// @Tags         生成
// @Accept       json
// @Produce      json
// @Param        draft_id  path      string         true  "草稿ID"
// @Param        scene     path      int            true  "分镜编号（1 起始）"
// @Param        side      path      string         true  "帧位置（start/end）"
// @Param        request   body      RefineRequest  true  "请求体"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      500       {object}  ErrorResponse  "生成失败"
// @Router       /api/v1/drafts/{draft_id}/scenes/{scene}/frames/{side}/refine [post]
func (h *Handler) RefineFrameDescription(c *gin.Context) {
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

	var req RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	draft, err := h.svc.RefineFrameDescription(c.Request.Context(), id, number, side, req.Instruction)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// RefineAnimation 润色运动描述
// @Summary      润色运动描述
// @Description  按用户指令调用 LLM 改写分镜的运动描述，结果作为一次编辑提交
// @Tags         生成
// @Accept       json
// @Produce      json
// @Param        draft_id  path      string         true  "草稿ID"
// @Param        scene     path      int            true  "分镜编号（1 起始）"
// @Param        request   body      RefineRequest  true  "请求体"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      500       {object}  ErrorResponse  "生成失败"
// @Router       /api/v1/drafts/{draft_id}/scenes/{scene}/animation/refine [post]
func (h *Handler) RefineAnimation(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}
	number, ok := sceneNumber(c)
	if !ok {
		return
	}

	var req RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	draft, err := h.svc.RefineAnimation(c.Request.Context(), id, number, req.Instruction)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// GenerateVideoPrompt 生成视频提示词
// @Summary      生成视频提示词
// @Description  由首帧描述、运动描述和尾帧描述生成视频提示词，结果作为一次编辑提交
// @Tags         生成
// @Produce      json
// @Param        draft_id  path      string  true  "草稿ID"
// @Param        scene     path      int     true  "分镜编号（1 起始）"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      500       {object}  ErrorResponse  "生成失败"
// @Router       /api/v1/drafts/{draft_id}/scenes/{scene}/video-prompt/generate [post]
func (h *Handler) GenerateVideoPrompt(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}
	number, ok := sceneNumber(c)
	if !ok {
		return
	}

	draft, err := h.svc.GenerateVideoPrompt(c.Request.Context(), id, number)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// GenerateFrameImage 生成帧图片
// @Summary      生成帧图片
// @Description  按帧描述和来源图生成图片；失败时错误只写进活动草稿，不占撤销步
// @Tags         生成
// @Produce      json
// @Param        draft_id  path      string  true  "草稿ID"
// @Param        scene     path      int     true  "分镜编号（1 起始）"
// @Param        side      path      string  true  "帧位置（start/end）"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      500       {object}  ErrorResponse  "生成失败"
// @Router       /api/v1/drafts/{draft_id}/scenes/{scene}/frames/{side}/generate-image [post]
func (h *Handler) GenerateFrameImage(c *gin.Context) {
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

	draft, err := h.svc.GenerateFrameImage(c.Request.Context(), id, number, side)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// GenerateVideo 生成分镜视频
// @Summary      生成分镜视频
// @Description  以首帧图片和视频提示词创建视频任务并轮询至完成；前置条件不满足时立即失败
// @Tags         生成
// @Produce      json
// @Param        draft_id  path      string  true  "草稿ID"
// @Param        scene     path      int     true  "分镜编号（1 起始）"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      400       {object}  ErrorResponse  "缺少首帧图片或视频提示词"
// @Failure      500       {object}  ErrorResponse  "生成失败"
// @Router       /api/v1/drafts/{draft_id}/scenes/{scene}/generate-video [post]
func (h *Handler) GenerateVideo(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}
	number, ok := sceneNumber(c)
	if !ok {
		return
	}

	draft, err := h.svc.GenerateVideo(c.Request.Context(), id, number)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}
