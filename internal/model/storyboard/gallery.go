package storyboard

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GalleryItem 素材库条目
// 每次成功的图片/视频生成都会在素材库中留一条记录
type GalleryItem struct {
	ID          string          `bson:"id" json:"id"`                                     // 条目ID（UUID）
	DraftID     string          `bson:"draft_id" json:"draft_id"`                         // 来源草稿ID
	UserID      string          `bson:"user_id" json:"user_id"`                           // 用户ID
	Kind        GalleryItemKind `bson:"kind" json:"kind"`                                 // image / video
	SceneNumber int             `bson:"scene_number" json:"scene_number"`                 // 来源分镜编号
	Side        FrameSide       `bson:"side,omitempty" json:"side,omitempty"`             // 图片条目的帧位置
	Prompt      string          `bson:"prompt,omitempty" json:"prompt,omitempty"`         // 生成时使用的提示词
	StorageKey  string          `bson:"storage_key,omitempty" json:"storage_key,omitempty"` // 存储层的对象 key（视频）
	URL         string          `bson:"url,omitempty" json:"url,omitempty"`               // 可访问地址（视频）
	Image       string          `bson:"image,omitempty" json:"image,omitempty"`           // 图片内容（data URL）
	ContentType string          `bson:"content_type,omitempty" json:"content_type,omitempty"`
	Size        int64           `bson:"size,omitempty" json:"size,omitempty"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
	DeletedAt   *time.Time      `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// Collection 返回集合名称
func (g *GalleryItem) Collection() string {
	return "gallery_items"
}

// EnsureIndexes 创建和维护索引
func (g *GalleryItem) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(g.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "draft_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_draft_created"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{{Key: "kind", Value: 1}},
			Options: options.Index().SetName("idx_kind"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
