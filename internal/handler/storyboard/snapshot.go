package storyboard

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 导入快照的体积上限
const maxSnapshotSize = 64 << 20 // 64 MB

// Export 导出草稿快照
// @Summary      导出草稿
// @Description  导出草稿的可移植 JSON 快照（省略音频附件），以附件形式下载
// @Tags         导入导出
// @Produce      application/json
// @Param        draft_id  path      string  true  "草稿ID"
// @Success      200       {file}    file    "快照文件"
// @Failure      404       {object}  ErrorResponse  "会话未打开"
// @Router       /api/v1/drafts/{draft_id}/export [get]
func (h *Handler) Export(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	filename, data, err := h.svc.Export(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", data)
}

// Import 导入草稿快照
// @Summary      导入草稿
// @Description  用上传的快照整体替换草稿内容并重置撤销历史；快照非法时草稿保持原样
// @Tags         导入导出
// @Accept       json
// @Produce      json
// @Param        draft_id  path      string  true  "草稿ID"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      400       {object}  ErrorResponse  "快照格式非法"
// @Router       /api/v1/drafts/{draft_id}/import [post]
func (h *Handler) Import(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSnapshotSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "failed to read snapshot body",
			Detail:  err.Error(),
		})
		return
	}

	draft, err := h.svc.Import(c.Request.Context(), id, data)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40002,
			Message: err.Error(),
		})
		return
	}
	respondDraft(c, draft)
}
