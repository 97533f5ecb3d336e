package storyboard

import (
	"github.com/gin-gonic/gin"
)

// Undo 撤销一步
// @Summary      撤销
// @Description  把分镜列表回退到上一个快照；已在起点时不动作，返回当前状态
// @Tags         历史
// @Produce      json
// @Param        draft_id  path      string  true  "草稿ID"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      404       {object}  ErrorResponse  "会话未打开"
// @Router       /api/v1/drafts/{draft_id}/undo [post]
func (h *Handler) Undo(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	draft, err := h.svc.Undo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// Redo 重做一步
// @Summary      重做
// @Description  把分镜列表前进到下一个快照；已在末尾时不动作，返回当前状态
// @Tags         历史
// @Produce      json
// @Param        draft_id  path      string  true  "草稿ID"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      404       {object}  ErrorResponse  "会话未打开"
// @Router       /api/v1/drafts/{draft_id}/redo [post]
func (h *Handler) Redo(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	draft, err := h.svc.Redo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}
