package storyboard

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mango/internal/model/storyboard"
)

// DraftRepository 草稿仓库接口
type DraftRepository interface {
	Create(ctx context.Context, record *storyboard.DraftRecord) error
	FindByID(ctx context.Context, id string) (*storyboard.DraftRecord, error)
	FindLatestByUser(ctx context.Context, userID string) (*storyboard.DraftRecord, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]*storyboard.DraftRecord, error)
	SaveDraft(ctx context.Context, id string, draft *storyboard.Draft) error
	Delete(ctx context.Context, id string) error
}

// DraftRepo 草稿仓库实现
type DraftRepo struct {
	coll *mongo.Collection
}

// NewDraftRepo 创建草稿仓库
func NewDraftRepo(db *mongo.Database) *DraftRepo {
	var r storyboard.DraftRecord
	return &DraftRepo{coll: db.Collection(r.Collection())}
}

// Create 创建草稿记录
func (r *DraftRepo) Create(ctx context.Context, record *storyboard.DraftRecord) error {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, record)
	return err
}

// FindByID 根据ID查询草稿
func (r *DraftRepo) FindByID(ctx context.Context, id string) (*storyboard.DraftRecord, error) {
	var record storyboard.DraftRecord
	if err := r.coll.FindOne(ctx, bson.M{"id": id, "deleted_at": nil}).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

// FindLatestByUser 查询用户最近更新的草稿
func (r *DraftRepo) FindLatestByUser(ctx context.Context, userID string) (*storyboard.DraftRecord, error) {
	var record storyboard.DraftRecord
	filter := bson.M{"user_id": userID, "deleted_at": nil}
	opts := options.FindOne().SetSort(bson.M{"updated_at": -1})
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByUser 查询用户的草稿列表，按更新时间倒序
func (r *DraftRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]*storyboard.DraftRecord, error) {
	filter := bson.M{"user_id": userID, "deleted_at": nil}
	opts := options.Find().SetSort(bson.M{"updated_at": -1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*storyboard.DraftRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveDraft 整体覆盖草稿内容（自动保存走这里）
func (r *DraftRepo) SaveDraft(ctx context.Context, id string, draft *storyboard.Draft) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"draft":      draft,
			"updated_at": time.Now(),
		}},
	)
	return err
}

// Delete 软删除草稿
func (r *DraftRepo) Delete(ctx context.Context, id string) error {
	now := time.Now()
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"deleted_at": now,
			"updated_at": now,
		}},
	)
	return err
}
