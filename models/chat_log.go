package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatLog stores one relay request/response record (system monitoring purpose)
// Collection: chat_logs
type ChatLog struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID        string             `bson:"request_id" json:"request_id"`
	ModelID          string             `bson:"model_id" json:"model_id"`
	Provider         string             `bson:"provider" json:"provider"`
	MessageCount     int                `bson:"message_count" json:"message_count"`
	PromptTokens     int64              `bson:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int64              `bson:"completion_tokens" json:"completion_tokens"`
	TotalTokens      int64              `bson:"total_tokens" json:"total_tokens"`
	DurationMs       int64              `bson:"duration_ms" json:"duration_ms"`
	Success          bool               `bson:"success" json:"success"`
	ErrorCategory    string             `bson:"error_category,omitempty" json:"error_category,omitempty"`
	ResponseExcerpt  string             `bson:"response_excerpt" json:"response_excerpt"`
	RequestedAt      time.Time          `bson:"requested_at" json:"requested_at"`
	CompletedAt      time.Time          `bson:"completed_at" json:"completed_at"`
}
