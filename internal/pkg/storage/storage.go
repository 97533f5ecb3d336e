package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Storage 素材存储接口
// 存放生成的帧图片和分镜视频，草稿本身走 MongoDB
type Storage interface {
	// Upload 上传素材，返回可访问的 URL
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Download 下载素材
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetPresignedDownloadURL 获取限时下载 URL
	GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// Delete 删除素材
	Delete(ctx context.Context, key string) error

	// Exists 检查素材是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// GetStorageType 获取存储类型
	GetStorageType() string
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeLocal StorageType = "local" // 本地文件系统
	StorageTypeOSS   StorageType = "oss"   // 阿里云OSS
)

// FrameImageKey 帧图片的存储路径
// 按草稿分目录，素材 ID 保证唯一
func FrameImageKey(draftID, itemID string) string {
	return fmt.Sprintf("drafts/%s/frames/%s.jpg", draftID, itemID)
}

// SceneVideoKey 分镜视频的存储路径
func SceneVideoKey(draftID, itemID string) string {
	return fmt.Sprintf("drafts/%s/videos/%s.mp4", draftID, itemID)
}
