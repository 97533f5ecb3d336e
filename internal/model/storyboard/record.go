package storyboard

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DraftRecord 持久化的草稿实体
// 每个草稿一条记录，自动保存时整体覆盖
type DraftRecord struct {
	ID        string     `bson:"id" json:"id"`           // 草稿ID（UUID）
	UserID    string     `bson:"user_id" json:"user_id"` // 用户ID
	Draft     Draft      `bson:"draft" json:"draft"`     // 草稿内容
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// Collection 返回集合名称
func (r *DraftRecord) Collection() string {
	return "drafts"
}

// EnsureIndexes 创建和维护索引
func (r *DraftRecord) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(r.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_user_updated"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
