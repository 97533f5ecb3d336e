package storytools

import (
	"context"
)

// LLMProvider 文本生成能力
// 梗概、分镜展开、提示词生成、润色都通过它完成
type LLMProvider interface {
	// Generate 根据提示词生成文本
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateWithImages 带图片的多模态生成，图片以 data URL 传入
	GenerateWithImages(ctx context.Context, prompt string, imageDataURLs []string) (string, error)
}

// ImageRequest 图片生成请求
type ImageRequest struct {
	Prompt      string // 提示词
	Count       int    // 生成张数
	AspectRatio string // 画幅比例，如 "16:9"
	SourceImage string // 参考图 data URL（可选）
	Watermark   bool   // 是否加水印
}

// ImageProvider 图片生成能力
type ImageProvider interface {
	// GenerateImages 生成图片，返回每张图片的 data URL
	GenerateImages(ctx context.Context, req *ImageRequest) ([]string, error)
}

// VideoTaskStatus 视频任务的一次轮询结果
type VideoTaskStatus struct {
	Status   string // 服务端原始状态
	Done     bool   // 已成功
	Failed   bool   // 已失败/取消
	VideoURL string // 成功后的下载地址
}

// VideoTaskProvider 异步视频生成能力
// 任务创建和状态查询分离，轮询循环由调用方掌控
type VideoTaskProvider interface {
	// CreateTask 提交图生视频任务，返回不透明的任务句柄
	CreateTask(ctx context.Context, prompt, imageDataURL, ratio string) (string, error)

	// GetTask 查询任务当前状态
	GetTask(ctx context.Context, taskID string) (*VideoTaskStatus, error)

	// DownloadVideo 下载任务产出的视频
	DownloadVideo(ctx context.Context, videoURL string) ([]byte, error)
}
