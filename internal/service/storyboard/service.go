package storyboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"go.mongodb.org/mongo-driver/mongo"

	"mango/internal/config"
	"mango/internal/model/storyboard"
	"mango/internal/pkg/id"
	"mango/internal/pkg/storage"
	"mango/internal/pkg/storytools"
	"mango/internal/pkg/storytools/providers"
	storyboardrepo "mango/internal/repository/storyboard"
)

// 服务层错误
var (
	// ErrMissingInput 当前输入方式的内容为空
	ErrMissingInput = errors.New("active input is empty")

	// ErrVideoInputsMissing 视频生成前置条件不满足（缺少首帧图片或视频提示词）
	ErrVideoInputsMissing = errors.New("inputs missing: start frame image and video prompt are required")

	// ErrSceneNotFound 分镜编号越界
	ErrSceneNotFound = errors.New("scene not found")

	// ErrTooManyReferenceImages 参考图数量超出上限
	ErrTooManyReferenceImages = errors.New("reference image limit reached")

	// ErrSessionNotOpen 草稿的编辑会话尚未打开
	ErrSessionNotOpen = errors.New("draft session not opened")
)

// DraftCache 草稿缓存能力，*cache.RedisCache 满足该接口；nil 表示不启用
type DraftCache interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Get(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, keys ...string) error
}

// InputsUpdate 输入区更新；nil 字段表示不改动
type InputsUpdate struct {
	ActiveInput *storyboard.InputMethod
	Idea        *string
	ScriptText  *string
	Audio       *storyboard.AudioAttachment // 指向零值附件表示清除
	ClearAudio  bool
}

// ParamsUpdate 生成参数更新；nil 字段表示不改动
type ParamsUpdate struct {
	Style          *string
	NumberOfScenes *int
	AspectRatio    *string
	Notes          *string
	Language       *storyboard.Language
	ScriptType     *storyboard.ScriptType
	KeepClothing   *bool
	KeepBackground *bool
}

// StoryboardService 分镜编辑服务接口
// 每个草稿对应一个服务端编辑会话：活动草稿、撤销日志、生成管线和自动保存
type StoryboardService interface {
	// CreateDraft 创建空草稿并打开编辑会话
	CreateDraft(ctx context.Context, userID string) (*storyboard.DraftRecord, error)

	// OpenDraft 打开（或重新打开）草稿的编辑会话，加载持久化内容并重置撤销历史
	OpenDraft(ctx context.Context, draftID string) (*storyboard.Draft, error)

	// GetDraft 获取活动草稿的当前状态
	GetDraft(ctx context.Context, draftID string) (*storyboard.Draft, error)

	// ListDrafts 列出用户的草稿
	ListDrafts(ctx context.Context, userID string, limit int64) ([]*storyboard.DraftRecord, error)

	// DeleteDraft 关闭会话并软删除草稿
	DeleteDraft(ctx context.Context, draftID string) error

	// ResetDraft 清空草稿回到初始状态（"新建"语义）
	ResetDraft(ctx context.Context, draftID string) (*storyboard.Draft, error)

	// UpdateInputs 更新输入区（输入方式、想法、脚本、音频）
	UpdateInputs(ctx context.Context, draftID string, update *InputsUpdate) (*storyboard.Draft, error)

	// UpdateParams 更新生成参数
	UpdateParams(ctx context.Context, draftID string, update *ParamsUpdate) (*storyboard.Draft, error)

	// UpdateSummary 更新剧本梗概（生成后用户可改）
	UpdateSummary(ctx context.Context, draftID string, summary *storyboard.ScriptSummary) (*storyboard.Draft, error)

	// AddReferenceImage 追加参考图（data URL），上限 4 张
	AddReferenceImage(ctx context.Context, draftID, imageDataURL string) (*storyboard.Draft, error)

	// RemoveReferenceImage 按序号移除参考图
	RemoveReferenceImage(ctx context.Context, draftID string, index int) (*storyboard.Draft, error)

	// GenerateStoryboard 脚本管线：梗概 + 分镜展开，一次原子提交
	GenerateStoryboard(ctx context.Context, draftID string) (*storyboard.Draft, error)

	// UpdateFrameDescription 更新帧画面描述
	UpdateFrameDescription(ctx context.Context, draftID string, sceneNumber int, side storyboard.FrameSide, description string) (*storyboard.Draft, error)

	// UpdateAnimation 更新分镜的运动描述
	UpdateAnimation(ctx context.Context, draftID string, sceneNumber int, animation string) (*storyboard.Draft, error)

	// UpdateVideoPrompt 更新分镜的视频提示词
	UpdateVideoPrompt(ctx context.Context, draftID string, sceneNumber int, prompt string) (*storyboard.Draft, error)

	// SetFrameSource 设置帧图片来源（可移植字符串形式）
	SetFrameSource(ctx context.Context, draftID string, sceneNumber int, side storyboard.FrameSide, source string) (*storyboard.Draft, error)

	// ClearFrame 显式清除帧：回到 idle，丢弃图片和错误
	ClearFrame(ctx context.Context, draftID string, sceneNumber int, side storyboard.FrameSide) (*storyboard.Draft, error)

	// AddScene 在指定编号后插入空分镜（afterNumber=0 表示插到最前）
	AddScene(ctx context.Context, draftID string, afterNumber int) (*storyboard.Draft, error)

	// DeleteScene 删除分镜并重排编号
	DeleteScene(ctx context.Context, draftID string, sceneNumber int) (*storyboard.Draft, error)

	// MoveScene 移动分镜并重排编号
	MoveScene(ctx context.Context, draftID string, fromNumber, toNumber int) (*storyboard.Draft, error)

	// RefineFrameDescription 按用户指令润色帧描述
	RefineFrameDescription(ctx context.Context, draftID string, sceneNumber int, side storyboard.FrameSide, instruction string) (*storyboard.Draft, error)

	// RefineAnimation 按用户指令润色运动描述
	RefineAnimation(ctx context.Context, draftID string, sceneNumber int, instruction string) (*storyboard.Draft, error)

	// GenerateVideoPrompt 由三段描述生成视频提示词
	GenerateVideoPrompt(ctx context.Context, draftID string, sceneNumber int) (*storyboard.Draft, error)

	// GenerateFrameImage 为单帧生成图片
	GenerateFrameImage(ctx context.Context, draftID string, sceneNumber int, side storyboard.FrameSide) (*storyboard.Draft, error)

	// GenerateVideo 为分镜生成视频（创建任务 + 有界轮询）
	GenerateVideo(ctx context.Context, draftID string, sceneNumber int) (*storyboard.Draft, error)

	// Undo 撤销一步
	Undo(ctx context.Context, draftID string) (*storyboard.Draft, error)

	// Redo 重做一步
	Redo(ctx context.Context, draftID string) (*storyboard.Draft, error)

	// Export 导出可移植快照（省略音频），返回带时间戳的文件名和内容
	Export(ctx context.Context, draftID string) (string, []byte, error)

	// Import 导入快照；快照缺少 scenes 数组时草稿保持原样
	Import(ctx context.Context, draftID string, data []byte) (*storyboard.Draft, error)

	// ListGallery 列出草稿的素材库条目
	ListGallery(ctx context.Context, draftID string, kind storyboard.GalleryItemKind, limit int64) ([]*storyboard.GalleryItem, error)

	// Close 冲刷所有会话的未保存改动（进程退出时调用）
	Close(ctx context.Context) error
}

// storyboardService 分镜编辑服务实现
type storyboardService struct {
	cfg config.StoryboardConfig

	draftRepo   storyboardrepo.DraftRepository
	galleryRepo storyboardrepo.GalleryRepository
	store       storage.Storage
	cache       DraftCache

	generator     *storytools.StoryboardGenerator
	imageProvider storytools.ImageProvider
	videoProvider storytools.VideoTaskProvider
	framePrompts  *storytools.FramePromptBuilder
	splitter      *storytools.ScriptSplitter

	sessions *sessionManager
}

// NewStoryboardService 创建分镜编辑服务
// repository 和 Ark provider 在内部创建，LLM 通过注入的 ChatModel 提供
func NewStoryboardService(
	db *mongo.Database,
	store storage.Storage,
	cache DraftCache,
	chatModel model.ChatModel,
	cfg *config.StoryboardConfig,
) (StoryboardService, error) {
	imageProvider, err := providers.NewArkImageProvider()
	if err != nil {
		return nil, fmt.Errorf("初始化 Image Provider 失败: %w", err)
	}

	videoProvider, err := providers.NewArkVideoProvider()
	if err != nil {
		return nil, fmt.Errorf("初始化 Video Provider 失败: %w", err)
	}

	return &storyboardService{
		cfg:           *cfg,
		draftRepo:     storyboardrepo.NewDraftRepo(db),
		galleryRepo:   storyboardrepo.NewGalleryRepo(db),
		store:         store,
		cache:         cache,
		generator:     storytools.NewStoryboardGenerator(providers.NewEinoProvider(chatModel)),
		imageProvider: imageProvider,
		videoProvider: videoProvider,
		framePrompts:  storytools.NewFramePromptBuilder(),
		splitter:      storytools.NewScriptSplitter(0),
		sessions:      newSessionManager(),
	}, nil
}

// CreateDraft 创建空草稿并打开编辑会话
func (s *storyboardService) CreateDraft(ctx context.Context, userID string) (*storyboard.DraftRecord, error) {
	draft := storyboard.NewDraft(s.cfg.DefaultAspectRatio, s.cfg.DefaultSceneCount)
	record := &storyboard.DraftRecord{
		ID:     id.New(),
		UserID: userID,
		Draft:  *draft,
	}

	if err := s.draftRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create draft record: %w", err)
	}

	sess := newSession(record.ID, userID, draft)
	s.armAutosave(sess)
	s.sessions.put(sess)

	return record, nil
}

// GetDraft 获取活动草稿的当前状态
func (s *storyboardService) GetDraft(ctx context.Context, draftID string) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// ListDrafts 列出用户的草稿
func (s *storyboardService) ListDrafts(ctx context.Context, userID string, limit int64) ([]*storyboard.DraftRecord, error) {
	return s.draftRepo.ListByUser(ctx, userID, limit)
}

// DeleteDraft 关闭会话并软删除草稿
func (s *storyboardService) DeleteDraft(ctx context.Context, draftID string) error {
	s.sessions.remove(draftID)
	s.dropCache(ctx, draftID)
	if err := s.draftRepo.Delete(ctx, draftID); err != nil {
		return fmt.Errorf("delete draft record: %w", err)
	}
	return nil
}

// ListGallery 列出草稿的素材库条目
func (s *storyboardService) ListGallery(ctx context.Context, draftID string, kind storyboard.GalleryItemKind, limit int64) ([]*storyboard.GalleryItem, error) {
	return s.galleryRepo.ListByDraft(ctx, draftID, kind, limit)
}

// UpdateInputs 更新输入区
// 输入区不进撤销历史（历史只覆盖分镜列表）
func (s *storyboardService) UpdateInputs(ctx context.Context, draftID string, update *InputsUpdate) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if update.ActiveInput != nil {
		if !update.ActiveInput.IsValid() {
			return nil, fmt.Errorf("invalid input method: %s", *update.ActiveInput)
		}
		sess.draft.ActiveInput = *update.ActiveInput
	}
	if update.Idea != nil {
		sess.draft.Idea = *update.Idea
	}
	if update.ScriptText != nil {
		sess.draft.ScriptText = *update.ScriptText
	}
	if update.ClearAudio {
		sess.draft.Audio = nil
	} else if update.Audio != nil {
		audio := *update.Audio
		sess.draft.Audio = &audio
	}

	sess.touch()
	return sess.snapshot(), nil
}

// UpdateParams 更新生成参数
func (s *storyboardService) UpdateParams(ctx context.Context, draftID string, update *ParamsUpdate) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if update.Style != nil {
		sess.draft.Style = *update.Style
	}
	if update.NumberOfScenes != nil {
		if *update.NumberOfScenes < 1 {
			return nil, fmt.Errorf("invalid scene count: %d", *update.NumberOfScenes)
		}
		sess.draft.NumberOfScenes = *update.NumberOfScenes
	}
	if update.AspectRatio != nil {
		sess.draft.AspectRatio = *update.AspectRatio
	}
	if update.Notes != nil {
		sess.draft.Notes = *update.Notes
	}
	if update.Language != nil {
		if !update.Language.IsValid() {
			return nil, fmt.Errorf("unsupported storyboard language: %s", *update.Language)
		}
		sess.draft.Language = *update.Language
	}
	if update.ScriptType != nil {
		if !update.ScriptType.IsValid() {
			return nil, fmt.Errorf("invalid script type: %s", *update.ScriptType)
		}
		sess.draft.ScriptType = *update.ScriptType
	}
	if update.KeepClothing != nil {
		sess.draft.KeepClothing = *update.KeepClothing
	}
	if update.KeepBackground != nil {
		sess.draft.KeepBackground = *update.KeepBackground
	}

	sess.touch()
	return sess.snapshot(), nil
}

// UpdateSummary 更新剧本梗概
func (s *storyboardService) UpdateSummary(ctx context.Context, draftID string, summary *storyboard.ScriptSummary) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if summary == nil {
		sess.draft.Summary = nil
	} else {
		cloned := *summary
		sess.draft.Summary = &cloned
	}

	sess.touch()
	return sess.snapshot(), nil
}

// AddReferenceImage 追加参考图，上限之外的追加被拒绝
func (s *storyboardService) AddReferenceImage(ctx context.Context, draftID, imageDataURL string) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	max := s.maxReferenceImages()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(sess.draft.ReferenceImages) >= max {
		return nil, fmt.Errorf("%w: max %d", ErrTooManyReferenceImages, max)
	}
	sess.draft.ReferenceImages = append(sess.draft.ReferenceImages, imageDataURL)

	sess.touch()
	return sess.snapshot(), nil
}

// RemoveReferenceImage 按序号移除参考图（0 起始）
func (s *storyboardService) RemoveReferenceImage(ctx context.Context, draftID string, index int) (*storyboard.Draft, error) {
	sess, err := s.sessions.get(draftID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	refs := sess.draft.ReferenceImages
	if index < 0 || index >= len(refs) {
		return nil, fmt.Errorf("reference image index out of range: %d", index)
	}
	sess.draft.ReferenceImages = append(refs[:index], refs[index+1:]...)

	sess.touch()
	return sess.snapshot(), nil
}

// maxReferenceImages 参考图上限，配置缺省时用模型层常量
func (s *storyboardService) maxReferenceImages() int {
	if s.cfg.MaxReferenceImages > 0 {
		return s.cfg.MaxReferenceImages
	}
	return storyboard.MaxReferenceImages
}
