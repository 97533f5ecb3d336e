package providers

import (
	"context"
	"fmt"

	"mango/internal/pkg/ark"
	"mango/internal/pkg/storytools"
)

// ArkVideoProvider Ark 视频任务提供者
// 适配层，调用 ark.VideoClient
type ArkVideoProvider struct {
	client *ark.VideoClient
}

// NewArkVideoProvider 创建 Ark 视频任务提供者
// 从环境变量读取配置，创建 ark.VideoClient
func NewArkVideoProvider() (storytools.VideoTaskProvider, error) {
	config := ark.VideoConfigFromEnv()
	client, err := ark.NewVideoClient(config)
	if err != nil {
		return nil, fmt.Errorf("create Ark Video client: %w", err)
	}

	return &ArkVideoProvider{
		client: client,
	}, nil
}

// CreateTask 提交图生视频任务
func (p *ArkVideoProvider) CreateTask(ctx context.Context, prompt, imageDataURL, ratio string) (string, error) {
	return p.client.CreateTask(ctx, prompt, imageDataURL, ratio)
}

// GetTask 查询任务当前状态
func (p *ArkVideoProvider) GetTask(ctx context.Context, taskID string) (*storytools.VideoTaskStatus, error) {
	task, err := p.client.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &storytools.VideoTaskStatus{
		Status:   task.Status,
		Done:     task.Done(),
		Failed:   task.Failed(),
		VideoURL: task.VideoURL,
	}, nil
}

// DownloadVideo 下载任务产出的视频
func (p *ArkVideoProvider) DownloadVideo(ctx context.Context, videoURL string) ([]byte, error) {
	return p.client.DownloadVideo(ctx, videoURL)
}
