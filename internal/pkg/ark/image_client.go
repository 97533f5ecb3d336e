package ark

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
)

// ImageConfig Ark 图片生成配置
type ImageConfig struct {
	APIKey  string // API Key（必需）
	BaseURL string // API 基础 URL（可选，默认: https://ark.cn-beijing.volces.com/api/v3）
	Model   string // 模型名称（可选，默认: doubao-seedream-3-0-t2i-250415）
}

// ImageConfigFromEnv 从环境变量创建 Ark 图片生成配置
// 支持的环境变量：
//   - ARK_API_KEY: API Key（必需）
//   - ARK_IMAGE_MODEL: 图片生成模型名称（可选）
//   - ARK_BASE_URL: API 基础 URL（可选）
func ImageConfigFromEnv() *ImageConfig {
	apiKey := os.Getenv("ARK_API_KEY")
	model := os.Getenv("ARK_IMAGE_MODEL")
	baseURL := os.Getenv("ARK_BASE_URL")

	if model == "" {
		model = "doubao-seedream-3-0-t2i-250415"
	}
	if baseURL == "" {
		baseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}

	return &ImageConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   model,
	}
}

// ImageClient Ark 图片生成客户端
// 文生图走官方 Go SDK；带参考图的图生图 SDK 没有对应 API，
// 直接用 HTTP 调用 /images/generations
type ImageClient struct {
	client  *arkruntime.Client
	model   string
	baseURL string
	apiKey  string
}

// NewImageClient 创建 Ark 图片生成客户端
func NewImageClient(config *ImageConfig) (*ImageClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("ARK_API_KEY is required")
	}

	var opts []arkruntime.ConfigOption
	if config.BaseURL != "" {
		opts = append(opts, arkruntime.WithBaseUrl(config.BaseURL))
	}

	arkClient := arkruntime.NewClientWithApiKey(config.APIKey, opts...)

	return &ImageClient{
		client:  arkClient,
		model:   config.Model,
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
	}, nil
}

// ImageRequest 单次图片生成请求
type ImageRequest struct {
	Prompt      string // 提示词
	Count       int    // 生成张数（<=0 视为 1）
	AspectRatio string // 画幅比例，如 "16:9"
	SourceImage string // 参考图 data URL（可选）
	Watermark   bool   // 是否加水印
}

// sizeForAspectRatio 画幅比例到像素尺寸的映射
func sizeForAspectRatio(ratio string) string {
	switch ratio {
	case "9:16":
		return "720x1280"
	case "1:1":
		return "1024x1024"
	case "4:3":
		return "1152x864"
	case "3:4":
		return "864x1152"
	case "16:9", "":
		return "1280x720"
	default:
		return "1280x720"
	}
}

// GenerateImages 生成图片，返回每张图片的原始数据
func (c *ImageClient) GenerateImages(ctx context.Context, req *ImageRequest) ([][]byte, error) {
	count := req.Count
	if count <= 0 {
		count = 1
	}

	images := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		var (
			data []byte
			err  error
		)
		if req.SourceImage != "" {
			data, err = c.generateWithSource(ctx, req)
		} else {
			data, err = c.generateTextToImage(ctx, req)
		}
		if err != nil {
			return nil, err
		}
		images = append(images, data)
	}
	return images, nil
}

// generateTextToImage 文生图（官方 SDK）
func (c *ImageClient) generateTextToImage(ctx context.Context, req *ImageRequest) ([]byte, error) {
	size := sizeForAspectRatio(req.AspectRatio)
	responseFormat := "b64_json"
	watermark := req.Watermark

	input := model.GenerateImagesRequest{
		Model:          c.model,
		Prompt:         req.Prompt,
		Size:           &size,
		ResponseFormat: &responseFormat,
		Watermark:      &watermark,
	}

	output, err := c.client.GenerateImages(ctx, input)
	if err != nil {
		log.Error().Err(err).Msg("failed to call Ark GenerateImages API")
		return nil, fmt.Errorf("Ark GenerateImages API call failed: %w", err)
	}

	if len(output.Data) == 0 {
		return nil, fmt.Errorf("no image data in response")
	}

	firstImage := output.Data[0]
	if firstImage.B64Json == nil {
		return nil, fmt.Errorf("no b64_json in response data")
	}

	imageData, err := base64.StdEncoding.DecodeString(*firstImage.B64Json)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image data: %w", err)
	}

	return imageData, nil
}

// generateWithSource 带参考图的图生图（HTTP 直调）
func (c *ImageClient) generateWithSource(ctx context.Context, req *ImageRequest) ([]byte, error) {
	requestBody := map[string]interface{}{
		"model":           c.model,
		"prompt":          req.Prompt,
		"image":           req.SourceImage,
		"size":            sizeForAspectRatio(req.AspectRatio),
		"response_format": "b64_json",
		"watermark":       req.Watermark,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	baseURL := strings.TrimSuffix(c.baseURL, "/")
	apiURL := fmt.Sprintf("%s/images/generations", baseURL)

	log.Debug().
		Str("api_url", apiURL).
		Str("model", c.model).
		Int("prompt_len", len(req.Prompt)).
		Msg("带参考图生成图片")

	httpReq, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error().
			Int("status_code", resp.StatusCode).
			Str("url", apiURL).
			Str("response_body", string(body)).
			Msg("API 请求失败")
		return nil, fmt.Errorf("API request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Data []struct {
			B64Json string `json:"b64_json"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Data) == 0 || apiResp.Data[0].B64Json == "" {
		return nil, fmt.Errorf("no image data in response")
	}

	imageData, err := base64.StdEncoding.DecodeString(apiResp.Data[0].B64Json)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image data: %w", err)
	}

	return imageData, nil
}
