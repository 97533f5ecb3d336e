package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "mango/docs" // swagger 文档注册
	"mango/internal/ai/component"
	"mango/internal/config"
	"mango/internal/handler"
	storyboardHandler "mango/internal/handler/storyboard"
	"mango/internal/pkg/cache"
	"mango/internal/pkg/mongodb"
	"mango/internal/pkg/storagefactory"
	"mango/internal/server/middleware"
	storyboardsvc "mango/internal/service/storyboard"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache

	storyboardSvc storyboardsvc.StoryboardService
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()

	// 初始化 MongoDB（草稿和素材库的持久层，必需）
	mongoClient, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// 初始化 Redis (可选)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	// 初始化素材存储
	store, err := storagefactory.NewStorage(context.Background(), &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info().Str("type", store.GetStorageType()).Msg("initialized storage")

	// 初始化 ChatModel
	chatModel, err := component.NewChatModel(context.Background(), &cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat model: %w", err)
	}
	log.Info().Str("provider", cfg.AI.Provider).Str("model", cfg.AI.Model).Msg("initialized chat model")

	// 初始化 StoryboardService
	// 注意 nil 的 *RedisCache 不能直接塞进接口，会变成非 nil 接口
	var draftCache storyboardsvc.DraftCache
	if redisCache != nil {
		draftCache = redisCache
	}

	storyboardSvc, err := storyboardsvc.NewStoryboardService(
		mongoClient.Database(),
		store,
		draftCache,
		chatModel,
		&cfg.Storyboard,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storyboard service: %w", err)
	}

	srv := &Server{
		cfg:           cfg,
		engine:        engine,
		mongo:         mongoClient,
		redis:         redisCache,
		storyboardSvc: storyboardSvc,
	}

	// 设置路由
	srv.setupRoutes()

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	checks := map[string]handler.ReadyCheck{
		"mongo": s.mongo.Ping,
	}
	if s.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return s.redis.Client().Ping(ctx).Err()
		}
	}
	healthHandler := handler.NewHealthHandler(checks)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 本地存储时直接静态托管生成的素材
	if s.cfg.Storage.Type == "local" && s.cfg.Storage.Local != nil {
		s.engine.Static("/static", s.cfg.Storage.Local.BasePath)
	}

	sbHdl := storyboardHandler.NewHandler(s.storyboardSvc)

	// API v1
	v1 := s.engine.Group("/api/v1")
	{
		// 草稿生命周期
		v1.POST("/drafts", sbHdl.CreateDraft)
		v1.GET("/drafts", sbHdl.ListDrafts)
		v1.GET("/drafts/:draft_id", sbHdl.GetDraft)
		v1.DELETE("/drafts/:draft_id", sbHdl.DeleteDraft)
		v1.POST("/drafts/:draft_id/open", sbHdl.OpenDraft)
		v1.POST("/drafts/:draft_id/reset", sbHdl.ResetDraft)

		// 输入区与生成参数
		v1.PUT("/drafts/:draft_id/inputs", sbHdl.UpdateInputs)
		v1.PUT("/drafts/:draft_id/params", sbHdl.UpdateParams)
		v1.PUT("/drafts/:draft_id/summary", sbHdl.UpdateSummary)
		v1.POST("/drafts/:draft_id/reference-images", sbHdl.AddReferenceImage)
		v1.DELETE("/drafts/:draft_id/reference-images/:index", sbHdl.RemoveReferenceImage)

		// 分镜结构编辑
		v1.POST("/drafts/:draft_id/scenes", sbHdl.AddScene)
		v1.DELETE("/drafts/:draft_id/scenes/:scene", sbHdl.DeleteScene)
		v1.POST("/drafts/:draft_id/scenes/:scene/move", sbHdl.MoveScene)

		// 分镜内容编辑
		v1.PUT("/drafts/:draft_id/scenes/:scene/animation", sbHdl.UpdateAnimation)
		v1.PUT("/drafts/:draft_id/scenes/:scene/video-prompt", sbHdl.UpdateVideoPrompt)
		v1.PUT("/drafts/:draft_id/scenes/:scene/frames/:side/description", sbHdl.UpdateFrameDescription)
		v1.PUT("/drafts/:draft_id/scenes/:scene/frames/:side/source", sbHdl.SetFrameSource)
		v1.POST("/drafts/:draft_id/scenes/:scene/frames/:side/clear", sbHdl.ClearFrame)

		// 生成
		v1.POST("/drafts/:draft_id/generate", sbHdl.GenerateStoryboard)
		v1.POST("/drafts/:draft_id/scenes/:scene/frames/:side/refine", sbHdl.RefineFrameDescription)
		v1.POST("/drafts/:draft_id/scenes/:scene/animation/refine", sbHdl.RefineAnimation)
		v1.POST("/drafts/:draft_id/scenes/:scene/video-prompt/generate", sbHdl.GenerateVideoPrompt)
		v1.POST("/drafts/:draft_id/scenes/:scene/frames/:side/generate-image", sbHdl.GenerateFrameImage)
		v1.POST("/drafts/:draft_id/scenes/:scene/generate-video", sbHdl.GenerateVideo)

		// 历史
		v1.POST("/drafts/:draft_id/undo", sbHdl.Undo)
		v1.POST("/drafts/:draft_id/redo", sbHdl.Redo)

		// 导入导出
		v1.GET("/drafts/:draft_id/export", sbHdl.Export)
		v1.POST("/drafts/:draft_id/import", sbHdl.Import)

		// 素材库
		v1.GET("/drafts/:draft_id/gallery", sbHdl.ListGallery)
	}
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		// 冲刷未保存的草稿
		if err := s.storyboardSvc.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to flush storyboard sessions")
		}

		// 关闭连接
		if err := s.mongo.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close MongoDB connection")
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
