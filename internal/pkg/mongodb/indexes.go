package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"mango/internal/model/storyboard"
)

// indexedEntity 需要维护索引的实体
type indexedEntity interface {
	Collection() string
	EnsureIndexes(ctx context.Context, db *mongo.Database) error
}

// EnsureIndexes 为所有实体创建索引
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entities := []indexedEntity{
		&storyboard.DraftRecord{},
		&storyboard.GalleryItem{},
	}

	for _, e := range entities {
		if err := e.EnsureIndexes(ctx, db); err != nil {
			return err
		}
	}
	return nil
}
