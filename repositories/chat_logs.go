package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chat-relay/models"
)

type ChatLogRepository struct {
	col *mongo.Collection
}

func NewChatLogRepository(db *mongo.Database) *ChatLogRepository {
	return &ChatLogRepository{col: db.Collection("chat_logs")}
}

func (r *ChatLogRepository) Insert(ctx context.Context, log models.ChatLog) (*mongo.InsertOneResult, error) {
	if log.RequestedAt.IsZero() {
		log.RequestedAt = time.Now()
	}
	return r.col.InsertOne(ctx, log)
}

// ListRecent 는 최근 요청 로그를 내림차순으로 조회한다. limit 기본값은 50.
func (r *ChatLogRepository) ListRecent(ctx context.Context, limit int64) ([]models.ChatLog, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "requested_at", Value: -1}}).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ChatLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
