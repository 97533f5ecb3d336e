package storyboard

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mango/internal/model/storyboard"
)

// ListGallery 列出素材库条目
// @Summary      素材库列表
// @Description  按创建时间倒序列出草稿生成过的图片和视频素材
// @Tags         素材库
// @Produce      json
// @Param        draft_id  path      string  true   "草稿ID"
// @Param        kind      query     string  false  "类型过滤（image/video）"
// @Param        limit     query     int     false  "数量上限"
// @Success      200       {object}  map[string]interface{}  "成功响应"
// @Failure      500       {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/drafts/{draft_id}/gallery [get]
func (h *Handler) ListGallery(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	kind := storyboard.GalleryItemKind(c.Query("kind"))
	if kind != "" && kind != storyboard.GalleryItemImage && kind != storyboard.GalleryItemVideo {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "invalid gallery kind, must be image or video",
		})
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	items, err := h.svc.ListGallery(c.Request.Context(), id, kind, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"items": toGalleryItemInfoList(items),
			"total": len(items),
		},
	})
}
