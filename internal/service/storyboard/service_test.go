package storyboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/mongo"

	"mango/internal/config"
	"mango/internal/model/storyboard"
	"mango/internal/pkg/storytools"
)

// ---- 测试替身 ----

// scriptedLLM 按脚本顺序返回响应的 LLM
// 记录每次调用的提示词和随行图片
type scriptedLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
	images    [][]string
}

func (f *scriptedLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return f.GenerateWithImages(ctx, prompt, nil)
}

func (f *scriptedLLM) GenerateWithImages(_ context.Context, prompt string, imageDataURLs []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.images = append(f.images, imageDataURLs)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", fmt.Errorf("no scripted response")
	}
	response := f.responses[0]
	f.responses = f.responses[1:]
	return response, nil
}

func (f *scriptedLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// imagesAt 第i次调用随行的图片
func (f *scriptedLLM) imagesAt(i int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= len(f.images) {
		return nil
	}
	return f.images[i]
}

// promptAt 第i次调用的提示词
func (f *scriptedLLM) promptAt(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= len(f.prompts) {
		return ""
	}
	return f.prompts[i]
}

// fakeImageProvider 记录请求并返回固定结果的图片提供者
type fakeImageProvider struct {
	mu       sync.Mutex
	images   []string
	err      error
	requests []*storytools.ImageRequest
}

func (f *fakeImageProvider) GenerateImages(_ context.Context, req *storytools.ImageRequest) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.images, nil
}

func (f *fakeImageProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// fakeVideoProvider 按脚本顺序返回任务状态的视频提供者
type fakeVideoProvider struct {
	mu          sync.Mutex
	taskID      string
	createErr   error
	statuses    []*storytools.VideoTaskStatus // 逐次消费，最后一个状态重复返回
	getErr      error
	video       []byte
	createCalls int
	getCalls    int
}

func (f *fakeVideoProvider) CreateTask(_ context.Context, prompt, imageDataURL, ratio string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.taskID, nil
}

func (f *fakeVideoProvider) GetTask(_ context.Context, taskID string) (*storytools.VideoTaskStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if len(f.statuses) == 0 {
		return &storytools.VideoTaskStatus{Status: "running"}, nil
	}
	status := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return status, nil
}

func (f *fakeVideoProvider) DownloadVideo(_ context.Context, videoURL string) ([]byte, error) {
	return f.video, nil
}

// memDraftRepo 内存草稿仓库
type memDraftRepo struct {
	mu      sync.Mutex
	records map[string]*storyboard.DraftRecord
	saves   int
}

func newMemDraftRepo() *memDraftRepo {
	return &memDraftRepo{records: make(map[string]*storyboard.DraftRecord)}
}

func (r *memDraftRepo) Create(_ context.Context, record *storyboard.DraftRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	cloned := *record
	r.records[record.ID] = &cloned
	return nil
}

func (r *memDraftRepo) FindByID(_ context.Context, id string) (*storyboard.DraftRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok || record.DeletedAt != nil {
		return nil, mongo.ErrNoDocuments
	}
	cloned := *record
	return &cloned, nil
}

func (r *memDraftRepo) FindLatestByUser(_ context.Context, userID string) (*storyboard.DraftRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *storyboard.DraftRecord
	for _, record := range r.records {
		if record.UserID != userID || record.DeletedAt != nil {
			continue
		}
		if latest == nil || record.UpdatedAt.After(latest.UpdatedAt) {
			latest = record
		}
	}
	if latest == nil {
		return nil, mongo.ErrNoDocuments
	}
	cloned := *latest
	return &cloned, nil
}

func (r *memDraftRepo) ListByUser(_ context.Context, userID string, limit int64) ([]*storyboard.DraftRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var records []*storyboard.DraftRecord
	for _, record := range r.records {
		if record.UserID == userID && record.DeletedAt == nil {
			cloned := *record
			records = append(records, &cloned)
		}
	}
	return records, nil
}

func (r *memDraftRepo) SaveDraft(_ context.Context, id string, draft *storyboard.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	record.Draft = *draft.Clone()
	record.UpdatedAt = time.Now()
	r.saves++
	return nil
}

func (r *memDraftRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.records[id]; ok {
		now := time.Now()
		record.DeletedAt = &now
	}
	return nil
}

func (r *memDraftRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *memDraftRepo) savedDraft(id string) *storyboard.Draft {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.records[id]; ok {
		return record.Draft.Clone()
	}
	return nil
}

// memGalleryRepo 内存素材库仓库
type memGalleryRepo struct {
	mu    sync.Mutex
	items []*storyboard.GalleryItem
}

func (r *memGalleryRepo) Create(_ context.Context, item *storyboard.GalleryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.CreatedAt = time.Now()
	cloned := *item
	r.items = append(r.items, &cloned)
	return nil
}

func (r *memGalleryRepo) FindByID(_ context.Context, id string) (*storyboard.GalleryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id {
			cloned := *item
			return &cloned, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memGalleryRepo) ListByDraft(_ context.Context, draftID string, kind storyboard.GalleryItemKind, limit int64) ([]*storyboard.GalleryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*storyboard.GalleryItem
	for _, item := range r.items {
		if item.DraftID != draftID {
			continue
		}
		if kind != "" && item.Kind != kind {
			continue
		}
		cloned := *item
		items = append(items, &cloned)
	}
	return items, nil
}

func (r *memGalleryRepo) Delete(_ context.Context, id string) error {
	return nil
}

func (r *memGalleryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// memStorage 内存素材存储
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (s *memStorage) Upload(_ context.Context, key string, data io.Reader, contentType string) (string, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf
	return "mem://" + key, nil
}

func (s *memStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStorage) GetPresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "mem://" + key, nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStorage) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *memStorage) GetStorageType() string {
	return "memory"
}

func (s *memStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// ---- 组装 ----

const (
	summaryJSON = `{"title": "山谷少年", "premise": "少年寻父"}`
	scenesJSON  = `{
		"scenes": [
			{"scene_number": 1, "start_frame_description": "山谷清晨", "animation_description": "镜头推进", "end_frame_description": "木屋出现"},
			{"scene_number": 2, "start_frame_description": "木屋门口", "animation_description": "少年走出", "end_frame_description": "少年上路"},
			{"scene_number": 3, "start_frame_description": "山路远景", "animation_description": "镜头拉远", "end_frame_description": "山路尽头"}
		]
	}`
	testImage = "data:image/jpeg;base64,aW1n"
)

type testEnv struct {
	svc       *storyboardService
	llm       *scriptedLLM
	images    *fakeImageProvider
	videos    *fakeVideoProvider
	draftRepo *memDraftRepo
	gallery   *memGalleryRepo
	store     *memStorage
}

func newTestEnv() *testEnv {
	llm := &scriptedLLM{}
	images := &fakeImageProvider{}
	videos := &fakeVideoProvider{taskID: "task-1", video: []byte("mp4")}
	draftRepo := newMemDraftRepo()
	gallery := &memGalleryRepo{}
	store := newMemStorage()

	svc := &storyboardService{
		cfg: config.StoryboardConfig{
			AutosaveDebounce:   10 * time.Millisecond,
			VideoPollInterval:  time.Millisecond,
			VideoPollTimeout:   time.Second,
			MaxReferenceImages: 4,
			DefaultAspectRatio: "16:9",
			DefaultSceneCount:  3,
		},
		draftRepo:     draftRepo,
		galleryRepo:   gallery,
		store:         store,
		generator:     storytools.NewStoryboardGenerator(llm),
		imageProvider: images,
		videoProvider: videos,
		framePrompts:  storytools.NewFramePromptBuilder(),
		splitter:      storytools.NewScriptSplitter(0),
		sessions:      newSessionManager(),
	}

	return &testEnv{
		svc:       svc,
		llm:       llm,
		images:    images,
		videos:    videos,
		draftRepo: draftRepo,
		gallery:   gallery,
		store:     store,
	}
}

// createDraft 创建草稿并返回 ID
func (e *testEnv) createDraft(t *testing.T) string {
	record, err := e.svc.CreateDraft(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	return record.ID
}

// generateScenes 跑一遍脚本管线生成 3 个分镜
func (e *testEnv) generateScenes(t *testing.T, draftID string) *storyboard.Draft {
	ctx := context.Background()
	idea := "一个山村少年寻找失踪的父亲"
	if _, err := e.svc.UpdateInputs(ctx, draftID, &InputsUpdate{Idea: &idea}); err != nil {
		t.Fatalf("UpdateInputs: %v", err)
	}
	e.llm.responses = append(e.llm.responses, summaryJSON, scenesJSON)
	draft, err := e.svc.GenerateStoryboard(ctx, draftID)
	if err != nil {
		t.Fatalf("GenerateStoryboard: %v", err)
	}
	return draft
}

// ---- 用例 ----

func TestGenerateStoryboard(t *testing.T) {
	Convey("脚本管线", t, func() {
		ctx := context.Background()

		Convey("空想法输入同步失败，零外部调用，无历史提交", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)

			_, err := env.svc.GenerateStoryboard(ctx, draftID)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "active input is empty")
			So(err.Error(), ShouldContainSubstring, "idea")
			So(env.llm.calls(), ShouldEqual, 0)

			// 没有可撤销的步骤
			draft, err := env.svc.Undo(ctx, draftID)
			So(err, ShouldBeNil)
			So(len(draft.Scenes), ShouldEqual, 0)
		})

		Convey("想法输入生成 3 个分镜，整批占一个撤销步", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)

			draft := env.generateScenes(t, draftID)

			// 梗概一次 + 分镜展开一次
			So(env.llm.calls(), ShouldEqual, 2)

			So(len(draft.Scenes), ShouldEqual, 3)
			for i, scene := range draft.Scenes {
				So(scene.Number, ShouldEqual, i+1)
				So(scene.StartFrame.Status, ShouldEqual, storyboard.FrameStatusIdle)
				So(scene.EndFrame.Status, ShouldEqual, storyboard.FrameStatusIdle)
				So(scene.VideoStatus, ShouldEqual, storyboard.VideoStatusIdle)
			}
			So(draft.Summary, ShouldNotBeNil)
			So(draft.Summary.Premise, ShouldEqual, "少年寻父")

			// 一次撤销回到空列表
			draft, err := env.svc.Undo(ctx, draftID)
			So(err, ShouldBeNil)
			So(len(draft.Scenes), ShouldEqual, 0)

			// 再撤销是无操作
			draft, err = env.svc.Undo(ctx, draftID)
			So(err, ShouldBeNil)
			So(len(draft.Scenes), ShouldEqual, 0)

			// 重做恢复整批
			draft, err = env.svc.Redo(ctx, draftID)
			So(err, ShouldBeNil)
			So(len(draft.Scenes), ShouldEqual, 3)
		})

		Convey("参考图原样到达梗概调用", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)

			idea := "山村少年寻父"
			_, err := env.svc.UpdateInputs(ctx, draftID, &InputsUpdate{Idea: &idea})
			So(err, ShouldBeNil)
			_, err = env.svc.AddReferenceImage(ctx, draftID, testImage)
			So(err, ShouldBeNil)

			env.llm.responses = []string{summaryJSON, scenesJSON}
			_, err = env.svc.GenerateStoryboard(ctx, draftID)
			So(err, ShouldBeNil)

			// 第一次调用是梗概：图片数据随行，提示词里说明了参考图数量
			So(env.llm.imagesAt(0), ShouldResemble, []string{testImage})
			So(env.llm.promptAt(0), ShouldContainSubstring, "1张")
			// 分镜展开不带图
			So(env.llm.imagesAt(1), ShouldBeNil)
		})

		Convey("坏参考图不进入梗概调用", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)

			idea := "山村少年寻父"
			_, err := env.svc.UpdateInputs(ctx, draftID, &InputsUpdate{Idea: &idea})
			So(err, ShouldBeNil)
			_, err = env.svc.AddReferenceImage(ctx, draftID, "not-a-data-url")
			So(err, ShouldBeNil)
			_, err = env.svc.AddReferenceImage(ctx, draftID, testImage)
			So(err, ShouldBeNil)

			env.llm.responses = []string{summaryJSON, scenesJSON}
			_, err = env.svc.GenerateStoryboard(ctx, draftID)
			So(err, ShouldBeNil)

			So(env.llm.imagesAt(0), ShouldResemble, []string{testImage})
		})

		Convey("梗概失败时已有分镜原样保留", func() {
			env := newTestEnv()
			draftID := env.createDraft(t)
			env.generateScenes(t, draftID)

			env.llm.err = fmt.Errorf("model unavailable")
			_, err := env.svc.GenerateStoryboard(ctx, draftID)
			So(err, ShouldNotBeNil)

			draft, err := env.svc.GetDraft(ctx, draftID)
			So(err, ShouldBeNil)
			So(len(draft.Scenes), ShouldEqual, 3)
		})
	})
}

func TestSceneEdits(t *testing.T) {
	Convey("分镜编辑", t, func() {
		ctx := context.Background()
		env := newTestEnv()
		draftID := env.createDraft(t)
		env.generateScenes(t, draftID)

		Convey("删除分镜后编号保持 1..N 连续", func() {
			draft, err := env.svc.DeleteScene(ctx, draftID, 2)
			So(err, ShouldBeNil)
			So(len(draft.Scenes), ShouldEqual, 2)
			So(draft.Scenes[0].Number, ShouldEqual, 1)
			So(draft.Scenes[1].Number, ShouldEqual, 2)
			So(draft.Scenes[1].StartFrame.Description, ShouldEqual, "山路远景")
		})

		Convey("移动分镜后编号重排", func() {
			draft, err := env.svc.MoveScene(ctx, draftID, 1, 3)
			So(err, ShouldBeNil)
			So(draft.Scenes[0].StartFrame.Description, ShouldEqual, "木屋门口")
			So(draft.Scenes[2].StartFrame.Description, ShouldEqual, "山谷清晨")
			for i, scene := range draft.Scenes {
				So(scene.Number, ShouldEqual, i+1)
			}
		})

		Convey("插入空分镜", func() {
			draft, err := env.svc.AddScene(ctx, draftID, 1)
			So(err, ShouldBeNil)
			So(len(draft.Scenes), ShouldEqual, 4)
			So(draft.Scenes[1].StartFrame.Description, ShouldBeEmpty)
			for i, scene := range draft.Scenes {
				So(scene.Number, ShouldEqual, i+1)
			}
		})

		Convey("编辑描述是一个撤销步", func() {
			_, err := env.svc.UpdateFrameDescription(ctx, draftID, 1, storyboard.FrameStart, "黄昏的山谷")
			So(err, ShouldBeNil)

			draft, err := env.svc.Undo(ctx, draftID)
			So(err, ShouldBeNil)
			So(draft.Scenes[0].StartFrame.Description, ShouldEqual, "山谷清晨")
		})

		Convey("相同内容的编辑不占撤销步", func() {
			_, err := env.svc.UpdateAnimation(ctx, draftID, 1, "镜头推进")
			So(err, ShouldBeNil)

			// 撤销应回到生成前的空列表，而不是停在重复编辑上
			draft, err := env.svc.Undo(ctx, draftID)
			So(err, ShouldBeNil)
			So(len(draft.Scenes), ShouldEqual, 0)
		})

		Convey("越界编号报错", func() {
			_, err := env.svc.DeleteScene(ctx, draftID, 9)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "scene not found")
		})

		Convey("设置帧来源与清除帧", func() {
			_, err := env.svc.SetFrameSource(ctx, draftID, 2, storyboard.FrameStart, "1-end")
			So(err, ShouldBeNil)

			draft, err := env.svc.GetDraft(ctx, draftID)
			So(err, ShouldBeNil)
			So(draft.Scenes[1].StartFrame.Source.Kind, ShouldEqual, storyboard.SourceCrossRef)
			So(draft.Scenes[1].StartFrame.Source.Scene, ShouldEqual, 1)

			draft, err = env.svc.ClearFrame(ctx, draftID, 2, storyboard.FrameStart)
			So(err, ShouldBeNil)
			So(draft.Scenes[1].StartFrame.Status, ShouldEqual, storyboard.FrameStatusIdle)
			So(draft.Scenes[1].StartFrame.Image, ShouldBeEmpty)
		})
	})
}

func TestReferenceImages(t *testing.T) {
	Convey("参考图上限", t, func() {
		ctx := context.Background()
		env := newTestEnv()
		draftID := env.createDraft(t)

		for i := 0; i < 4; i++ {
			_, err := env.svc.AddReferenceImage(ctx, draftID, testImage)
			So(err, ShouldBeNil)
		}

		// 第 5 张被拒绝
		_, err := env.svc.AddReferenceImage(ctx, draftID, testImage)
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "reference image limit")

		draft, err := env.svc.GetDraft(ctx, draftID)
		So(err, ShouldBeNil)
		So(len(draft.ReferenceImages), ShouldEqual, 4)

		// 移除后可以再加
		_, err = env.svc.RemoveReferenceImage(ctx, draftID, 0)
		So(err, ShouldBeNil)
		_, err = env.svc.AddReferenceImage(ctx, draftID, testImage)
		So(err, ShouldBeNil)
	})
}
