package storyboard

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mango/internal/model/storyboard"
	storyboardsvc "mango/internal/service/storyboard"
)

// CreateDraftRequest 创建草稿请求
type CreateDraftRequest struct {
	UserID string `json:"user_id" binding:"required"` // 用户ID（必填）
}

// CreateDraft 创建草稿
// @Summary      创建草稿
// @Description  创建一个空的分镜草稿并打开编辑会话，返回草稿ID
// @Tags         草稿管理
// @Accept       json
// @Produce      json
// @Param        request  body      CreateDraftRequest  true  "创建草稿请求"
// @Success      201      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/drafts [post]
func (h *Handler) CreateDraft(c *gin.Context) {
	var req CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	record, err := h.svc.CreateDraft(c.Request.Context(), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "草稿创建成功",
		"data": gin.H{
			"draft_id": record.ID,
		},
	})
}

// OpenDraft 打开草稿编辑会话
// @Summary      打开草稿
// @Description  加载持久化的草稿内容并打开编辑会话；撤销历史从加载点重新开始
// @Tags         草稿管理
// @Produce      json
// @Param        draft_id  path      string  true  "草稿ID"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      404       {object}  ErrorResponse  "草稿不存在"
// @Router       /api/v1/drafts/{draft_id}/open [post]
func (h *Handler) OpenDraft(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	draft, err := h.svc.OpenDraft(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    40401,
			Message: err.Error(),
		})
		return
	}
	respondDraft(c, draft)
}

// GetDraft 获取草稿当前状态
// @Summary      获取草稿
// @Description  返回编辑会话中活动草稿的当前状态
// @Tags         草稿管理
// @Produce      json
// @Param        draft_id  path      string  true  "草稿ID"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      404       {object}  ErrorResponse  "会话未打开"
// @Router       /api/v1/drafts/{draft_id} [get]
func (h *Handler) GetDraft(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	draft, err := h.svc.GetDraft(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// ListDrafts 列出用户的草稿
// @Summary      草稿列表
// @Description  按更新时间倒序列出用户的草稿
// @Tags         草稿管理
// @Produce      json
// @Param        user_id  query     string  true   "用户ID"
// @Param        limit    query     int     false  "数量上限"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Router       /api/v1/drafts [get]
func (h *Handler) ListDrafts(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "user_id is required",
		})
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	records, err := h.svc.ListDrafts(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"drafts": toDraftRecordInfoList(records),
			"total":  len(records),
		},
	})
}

// DeleteDraft 删除草稿
// @Summary      删除草稿
// @Description  关闭编辑会话并软删除草稿
// @Tags         草稿管理
// @Produce      json
// @Param        draft_id  path      string  true  "草稿ID"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      500       {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/drafts/{draft_id} [delete]
func (h *Handler) DeleteDraft(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteDraft(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"draft_id": id,
		},
	})
}

// ResetDraft 清空草稿
// @Summary      清空草稿
// @Description  把草稿重置为初始状态（"新建"语义），撤销历史同时清空
// @Tags         草稿管理
// @Produce      json
// @Param        draft_id  path      string  true  "草稿ID"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      404       {object}  ErrorResponse  "会话未打开"
// @Router       /api/v1/drafts/{draft_id}/reset [post]
func (h *Handler) ResetDraft(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	draft, err := h.svc.ResetDraft(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// UpdateInputsRequest 更新输入区请求
type UpdateInputsRequest struct {
	ActiveInput *string `json:"active_input,omitempty"` // 输入方式：idea, script, audio
	Idea        *string `json:"idea,omitempty"`         // 想法输入
	ScriptText  *string `json:"script_text,omitempty"`  // 脚本输入
	Audio       *struct {
		Name    string `json:"name"`
		Type    string `json:"type"`
		DataURL string `json:"data_url"`
	} `json:"audio,omitempty"` // 音频输入
	ClearAudio bool `json:"clear_audio,omitempty"` // 清除音频
}

// UpdateInputs 更新输入区
// @Summary      更新输入区
// @Description  更新输入方式、想法、脚本或音频；只更新给出的字段
// @Tags         草稿编辑
// @Accept       json
// @Produce      json
// @Param        draft_id  path      string               true  "草稿ID"
// @Param        request   body      UpdateInputsRequest  true  "请求体"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      400       {object}  ErrorResponse  "请求参数错误"
// @Router       /api/v1/drafts/{draft_id}/inputs [put]
func (h *Handler) UpdateInputs(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	var req UpdateInputsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	update := &storyboardsvc.InputsUpdate{
		Idea:       req.Idea,
		ScriptText: req.ScriptText,
		ClearAudio: req.ClearAudio,
	}
	if req.ActiveInput != nil {
		method := storyboard.InputMethod(*req.ActiveInput)
		update.ActiveInput = &method
	}
	if req.Audio != nil {
		update.Audio = &storyboard.AudioAttachment{
			Name:    req.Audio.Name,
			Type:    req.Audio.Type,
			DataURL: req.Audio.DataURL,
		}
	}

	draft, err := h.svc.UpdateInputs(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// UpdateParamsRequest 更新生成参数请求
type UpdateParamsRequest struct {
	Style          *string `json:"style,omitempty"`            // 画面风格
	NumberOfScenes *int    `json:"number_of_scenes,omitempty"` // 目标分镜数量
	AspectRatio    *string `json:"aspect_ratio,omitempty"`     // 画幅比例
	Notes          *string `json:"notes,omitempty"`            // 补充说明
	Language       *string `json:"language,omitempty"`         // 输出语言
	ScriptType     *string `json:"script_type,omitempty"`      // 脚本类型
	KeepClothing   *bool   `json:"keep_clothing,omitempty"`    // 保持服装一致
	KeepBackground *bool   `json:"keep_background,omitempty"`  // 保持背景一致
}

// UpdateParams 更新生成参数
// @Summary      更新生成参数
// @Description  更新风格、分镜数量、画幅比例等生成参数；只更新给出的字段
// @Tags         草稿编辑
// @Accept       json
// @Produce      json
// @Param        draft_id  path      string               true  "草稿ID"
// @Param        request   body      UpdateParamsRequest  true  "请求体"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      400       {object}  ErrorResponse  "请求参数错误"
// @Router       /api/v1/drafts/{draft_id}/params [put]
func (h *Handler) UpdateParams(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	var req UpdateParamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	update := &storyboardsvc.ParamsUpdate{
		Style:          req.Style,
		NumberOfScenes: req.NumberOfScenes,
		AspectRatio:    req.AspectRatio,
		Notes:          req.Notes,
		KeepClothing:   req.KeepClothing,
		KeepBackground: req.KeepBackground,
	}
	if req.Language != nil {
		language := storyboard.Language(*req.Language)
		update.Language = &language
	}
	if req.ScriptType != nil {
		scriptType := storyboard.ScriptType(*req.ScriptType)
		update.ScriptType = &scriptType
	}

	draft, err := h.svc.UpdateParams(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// UpdateSummaryRequest 更新剧本梗概请求
type UpdateSummaryRequest struct {
	Summary *storyboard.ScriptSummary `json:"summary"` // 梗概内容，null 表示清除
}

// UpdateSummary 更新剧本梗概
// @Summary      更新剧本梗概
// @Description  覆盖生成的剧本梗概；传 null 清除
// @Tags         草稿编辑
// @Accept       json
// @Produce      json
// @Param        draft_id  path      string                true  "草稿ID"
// @Param        request   body      UpdateSummaryRequest  true  "请求体"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      400       {object}  ErrorResponse  "请求参数错误"
// @Router       /api/v1/drafts/{draft_id}/summary [put]
func (h *Handler) UpdateSummary(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	var req UpdateSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	draft, err := h.svc.UpdateSummary(c.Request.Context(), id, req.Summary)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// AddReferenceImageRequest 追加参考图请求
type AddReferenceImageRequest struct {
	Image string `json:"image" binding:"required"` // 图片内容（data URL）
}

// AddReferenceImage 追加参考图
// @Summary      追加参考图
// @Description  追加一张人物/场景参考图（data URL），超出上限时拒绝
// @Tags         草稿编辑
// @Accept       json
// @Produce      json
// @Param        draft_id  path      string                    true  "草稿ID"
// @Param        request   body      AddReferenceImageRequest  true  "请求体"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      400       {object}  ErrorResponse  "超出数量上限"
// @Router       /api/v1/drafts/{draft_id}/reference-images [post]
func (h *Handler) AddReferenceImage(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	var req AddReferenceImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	draft, err := h.svc.AddReferenceImage(c.Request.Context(), id, req.Image)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// RemoveReferenceImage 移除参考图
// @Summary      移除参考图
// @Description  按序号（0 起始）移除参考图
// @Tags         草稿编辑
// @Produce      json
// @Param        draft_id  path      string  true  "草稿ID"
// @Param        index     path      int     true  "参考图序号"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      400       {object}  ErrorResponse  "序号越界"
// @Router       /api/v1/drafts/{draft_id}/reference-images/{index} [delete]
func (h *Handler) RemoveReferenceImage(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "invalid reference image index",
		})
		return
	}

	draft, err := h.svc.RemoveReferenceImage(c.Request.Context(), id, index)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}
