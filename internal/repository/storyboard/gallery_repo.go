package storyboard

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mango/internal/model/storyboard"
)

// GalleryRepository 素材库仓库接口
type GalleryRepository interface {
	Create(ctx context.Context, item *storyboard.GalleryItem) error
	FindByID(ctx context.Context, id string) (*storyboard.GalleryItem, error)
	ListByDraft(ctx context.Context, draftID string, kind storyboard.GalleryItemKind, limit int64) ([]*storyboard.GalleryItem, error)
	Delete(ctx context.Context, id string) error
}

// GalleryRepo 素材库仓库实现
type GalleryRepo struct {
	coll *mongo.Collection
}

// NewGalleryRepo 创建素材库仓库
func NewGalleryRepo(db *mongo.Database) *GalleryRepo {
	var g storyboard.GalleryItem
	return &GalleryRepo{coll: db.Collection(g.Collection())}
}

// Create 创建素材条目
func (r *GalleryRepo) Create(ctx context.Context, item *storyboard.GalleryItem) error {
	item.CreatedAt = time.Now()
	_, err := r.coll.InsertOne(ctx, item)
	return err
}

// FindByID 根据ID查询素材条目
func (r *GalleryRepo) FindByID(ctx context.Context, id string) (*storyboard.GalleryItem, error) {
	var item storyboard.GalleryItem
	if err := r.coll.FindOne(ctx, bson.M{"id": id, "deleted_at": nil}).Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByDraft 查询草稿的素材列表，按创建时间倒序
// kind 为空时不过滤类型
func (r *GalleryRepo) ListByDraft(ctx context.Context, draftID string, kind storyboard.GalleryItemKind, limit int64) ([]*storyboard.GalleryItem, error) {
	filter := bson.M{"draft_id": draftID, "deleted_at": nil}
	if kind != "" {
		filter["kind"] = kind
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*storyboard.GalleryItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete 软删除素材条目
func (r *GalleryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"deleted_at": time.Now()}},
	)
	return err
}
