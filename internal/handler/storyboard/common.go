package storyboard

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mango/internal/model/storyboard"
	httputil "mango/internal/pkg/http"
	"mango/internal/pkg/id"
	storyboardsvc "mango/internal/service/storyboard"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// DraftRecordInfo 草稿记录 DTO
type DraftRecordInfo struct {
	ID        string `json:"id"`         // 草稿ID
	UserID    string `json:"user_id"`    // 用户ID
	Scenes    int    `json:"scenes"`     // 分镜数量
	CreatedAt string `json:"created_at"` // 创建时间
	UpdatedAt string `json:"updated_at"` // 更新时间
}

// toDraftRecordInfo 将 DraftRecord 实体转换为 DraftRecordInfo DTO
func toDraftRecordInfo(record *storyboard.DraftRecord) DraftRecordInfo {
	return DraftRecordInfo{
		ID:        record.ID,
		UserID:    record.UserID,
		Scenes:    len(record.Draft.Scenes),
		CreatedAt: record.CreatedAt.Format(time.RFC3339),
		UpdatedAt: record.UpdatedAt.Format(time.RFC3339),
	}
}

// toDraftRecordInfoList 将 DraftRecord 列表转换为 DTO 列表
func toDraftRecordInfoList(records []*storyboard.DraftRecord) []DraftRecordInfo {
	list := make([]DraftRecordInfo, len(records))
	for i, record := range records {
		list[i] = toDraftRecordInfo(record)
	}
	return list
}

// GalleryItemInfo 素材库条目 DTO
type GalleryItemInfo struct {
	ID          string `json:"id"`              // 条目ID
	DraftID     string `json:"draft_id"`        // 草稿ID
	Kind        string `json:"kind"`            // 类型：image, video
	SceneNumber int    `json:"scene_number"`    // 生成时的分镜编号
	Side        string `json:"side,omitempty"`  // 帧位置（仅图片）
	Prompt      string `json:"prompt"`          // 生成提示词
	Image       string `json:"image,omitempty"` // 图片内容（data URL，仅图片）
	URL         string `json:"url,omitempty"`   // 素材地址（仅视频）
	CreatedAt   string `json:"created_at"`      // 创建时间
}

// toGalleryItemInfo 将 GalleryItem 实体转换为 GalleryItemInfo DTO
func toGalleryItemInfo(item *storyboard.GalleryItem) GalleryItemInfo {
	return GalleryItemInfo{
		ID:          item.ID,
		DraftID:     item.DraftID,
		Kind:        string(item.Kind),
		SceneNumber: item.SceneNumber,
		Side:        string(item.Side),
		Prompt:      item.Prompt,
		Image:       item.Image,
		URL:         item.URL,
		CreatedAt:   item.CreatedAt.Format(time.RFC3339),
	}
}

// toGalleryItemInfoList 将 GalleryItem 列表转换为 DTO 列表
func toGalleryItemInfoList(items []*storyboard.GalleryItem) []GalleryItemInfo {
	list := make([]GalleryItemInfo, len(items))
	for i, item := range items {
		list[i] = toGalleryItemInfo(item)
	}
	return list
}

// respondDraft 返回草稿当前状态
// Draft 的 JSON 标签就是对外的可移植格式，无需再转 DTO
func respondDraft(c *gin.Context, draft *storyboard.Draft) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"draft": draft,
		},
	})
}

// respondError 把 Service 层错误映射为统一错误响应
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := 50001

	switch {
	case errors.Is(err, storyboardsvc.ErrSessionNotOpen):
		status = http.StatusNotFound
		code = 40401
	case errors.Is(err, storyboardsvc.ErrSceneNotFound):
		status = http.StatusNotFound
		code = 40402
	case errors.Is(err, storyboardsvc.ErrMissingInput):
		status = http.StatusBadRequest
		code = 40005
	case errors.Is(err, storyboardsvc.ErrVideoInputsMissing):
		status = http.StatusBadRequest
		code = 40006
	case errors.Is(err, storyboardsvc.ErrTooManyReferenceImages):
		status = http.StatusBadRequest
		code = 40007
	}

	c.JSON(status, ErrorResponse{
		Code:      code,
		Message:   err.Error(),
		RequestID: c.GetString("request_id"),
	})
}

// draftID 取路径里的草稿ID，格式非法时写入错误响应
func draftID(c *gin.Context) (string, bool) {
	draftID := c.Param("draft_id")
	if !id.IsValid(draftID) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "invalid draft_id",
			Detail:  draftID,
		})
		return "", false
	}
	return draftID, true
}

// sceneNumber 取路径里的分镜编号（1 起始）
func sceneNumber(c *gin.Context) (int, bool) {
	raw := c.Param("scene")
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "invalid scene number",
			Detail:  raw,
		})
		return 0, false
	}
	return number, true
}

// frameSide 取路径里的帧位置（start/end）
func frameSide(c *gin.Context) (storyboard.FrameSide, bool) {
	side := storyboard.FrameSide(c.Param("side"))
	if !side.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "invalid frame side, must be start or end",
		})
		return "", false
	}
	return side, true
}
