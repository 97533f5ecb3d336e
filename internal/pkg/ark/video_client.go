package ark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// VideoConfig Ark 视频生成配置
type VideoConfig struct {
	APIKey  string // API Key（必需）
	BaseURL string // API 基础 URL（可选，默认: https://ark.cn-beijing.volces.com/api/v3）
	Model   string // 模型名称（可选，默认: doubao-seedance-1-0-lite-i2v-250428）
}

// VideoConfigFromEnv 从环境变量创建 Ark 视频生成配置
// 支持的环境变量：
//   - ARK_API_KEY: API Key（必需）
//   - ARK_VIDEO_MODEL: 视频生成模型名称（可选）
//   - ARK_BASE_URL: API 基础 URL（可选）
func VideoConfigFromEnv() *VideoConfig {
	apiKey := os.Getenv("ARK_API_KEY")
	model := os.Getenv("ARK_VIDEO_MODEL")
	baseURL := os.Getenv("ARK_BASE_URL")

	if model == "" {
		model = "doubao-seedance-1-0-lite-i2v-250428"
	}
	if baseURL == "" {
		baseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}

	return &VideoConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   model,
	}
}

// 任务状态取值（Ark 任务 API）
const (
	TaskStatusQueued    = "queued"
	TaskStatusRunning   = "running"
	TaskStatusSucceeded = "succeeded"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
	TaskStatusCancelled = "cancelled"
)

// VideoTask 视频任务的当前状态
type VideoTask struct {
	ID       string // 任务ID
	Status   string // 任务状态
	VideoURL string // 任务成功后的视频下载地址
}

// Done 任务是否已到达终态（成功）
func (t *VideoTask) Done() bool {
	return t.Status == TaskStatusSucceeded || t.Status == TaskStatusCompleted
}

// Failed 任务是否已到达终态（失败/取消）
func (t *VideoTask) Failed() bool {
	return t.Status == TaskStatusFailed || t.Status == TaskStatusCancelled
}

// VideoClient Ark 图生视频客户端
// 调用火山引擎 Ark 的内容生成任务 API（image-to-video）。
// Go SDK 没有 content_generation.tasks 的封装，直接使用 HTTP 请求。
// 任务创建和状态查询拆成两个方法，轮询循环由调用方掌控。
type VideoClient struct {
	model   string
	baseURL string
	apiKey  string
}

// NewVideoClient 创建 Ark 视频生成客户端
func NewVideoClient(config *VideoConfig) (*VideoClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("ARK_API_KEY is required")
	}

	return &VideoClient{
		model:   config.Model,
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
	}, nil
}

// CreateTask 提交视频生成任务，返回任务ID
// 参考官方文档: https://www.volcengine.com/docs/82379/1520757
func (c *VideoClient) CreateTask(ctx context.Context, prompt, imageDataURL, ratio string) (string, error) {
	if ratio == "" {
		ratio = "adaptive"
	}

	requestBody := map[string]interface{}{
		"model": c.model,
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": prompt,
			},
			{
				"type": "image_url",
				"image_url": map[string]interface{}{
					"url": imageDataURL,
				},
			},
		},
		"ratio":     ratio,
		"watermark": false,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("marshal request body: %w", err)
	}

	baseURL := strings.TrimSuffix(c.baseURL, "/")
	apiURL := fmt.Sprintf("%s/contents/generations/tasks", baseURL)

	log.Debug().
		Str("api_url", apiURL).
		Str("model", c.model).
		Str("ratio", ratio).
		Int("prompt_len", len(prompt)).
		Msg("创建视频生成任务")

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	// 服务器要处理 base64 图片数据，图片较大时耗时较长
	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error().
			Int("status_code", resp.StatusCode).
			Str("url", apiURL).
			Str("response_body", string(body)).
			Msg("API 请求失败")
		return "", fmt.Errorf("API request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if apiResp.ID == "" {
		return "", fmt.Errorf("task ID is empty in response")
	}

	return apiResp.ID, nil
}

// GetTask 查询任务当前状态
// 参考官方文档: https://www.volcengine.com/docs/82379/1521309
func (c *VideoClient) GetTask(ctx context.Context, taskID string) (*VideoTask, error) {
	baseURL := strings.TrimSuffix(c.baseURL, "/")
	apiURL := fmt.Sprintf("%s/contents/generations/tasks/%s", baseURL, taskID)

	log.Debug().
		Str("api_url", apiURL).
		Str("task_id", taskID).
		Msg("查询视频生成任务状态")

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error().
			Int("status_code", resp.StatusCode).
			Str("url", apiURL).
			Str("task_id", taskID).
			Str("response_body", string(body)).
			Msg("查询任务状态失败")
		return nil, fmt.Errorf("API request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Status  string `json:"status"`
		Content struct {
			VideoURL string `json:"video_url"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &VideoTask{
		ID:       taskID,
		Status:   apiResp.Status,
		VideoURL: apiResp.Content.VideoURL,
	}, nil
}

// DownloadVideo 下载任务产出的视频
func (c *VideoClient) DownloadVideo(ctx context.Context, videoURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", videoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{
		Timeout: 5 * time.Minute,
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download video: status code %d", resp.StatusCode)
	}

	videoData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read video data: %w", err)
	}

	return videoData, nil
}
