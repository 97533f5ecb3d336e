package providers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"mango/internal/pkg/ark"
	"mango/internal/pkg/dataurl"
	"mango/internal/pkg/storytools"
)

// ArkImageProvider Ark 图片生成提供者
// 适配层，调用 ark.ImageClient，结果转为 data URL
type ArkImageProvider struct {
	client *ark.ImageClient
}

// NewArkImageProvider 创建 Ark 图片生成提供者
// 从环境变量读取配置，创建 ark.ImageClient
func NewArkImageProvider() (storytools.ImageProvider, error) {
	config := ark.ImageConfigFromEnv()
	client, err := ark.NewImageClient(config)
	if err != nil {
		return nil, fmt.Errorf("create Ark Image client: %w", err)
	}

	return &ArkImageProvider{
		client: client,
	}, nil
}

// GenerateImages 生成图片，返回每张图片的 data URL
func (p *ArkImageProvider) GenerateImages(ctx context.Context, req *storytools.ImageRequest) ([]string, error) {
	images, err := p.client.GenerateImages(ctx, &ark.ImageRequest{
		Prompt:      req.Prompt,
		Count:       req.Count,
		AspectRatio: req.AspectRatio,
		SourceImage: req.SourceImage,
		Watermark:   req.Watermark,
	})
	if err != nil {
		return nil, fmt.Errorf("Ark generate image: %w", err)
	}

	urls := make([]string, len(images))
	for i, data := range images {
		urls[i] = dataurl.Encode(data, "image/jpeg")
	}

	log.Info().
		Int("count", len(urls)).
		Str("aspect_ratio", req.AspectRatio).
		Msg("Ark 图片生成成功")

	return urls, nil
}
