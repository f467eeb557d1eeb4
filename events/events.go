package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	ChatCompleted EventType = "chat.completed"
	ChatFailed    EventType = "chat.failed"
)

// TopicChatEvents 는 릴레이가 사용량 이벤트를 발행하는 토픽이다.
const TopicChatEvents = "chat_events"

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// ChatCompletedEvent 릴레이 호출 성공 이벤트
type ChatCompletedEvent struct {
	BaseEvent
	RequestID    string `json:"request_id"`
	ModelID      string `json:"model_id"`
	Provider     string `json:"provider"`
	MessageCount int    `json:"message_count"`
	TotalTokens  int64  `json:"total_tokens"`
	DurationMs   int64  `json:"duration_ms"`
}

// ChatFailedEvent 릴레이 호출 실패 이벤트
type ChatFailedEvent struct {
	BaseEvent
	RequestID     string `json:"request_id"`
	ModelID       string `json:"model_id"`
	Provider      string `json:"provider"`
	MessageCount  int    `json:"message_count"`
	ErrorCategory string `json:"error_category"`
	DurationMs    int64  `json:"duration_ms"`
}

func newBase(t EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now(),
		Source:    "chat-relay",
		Version:   "1",
	}
}

// NewChatCompletedEvent 성공 이벤트를 생성한다.
func NewChatCompletedEvent(requestID, modelID, provider string, messageCount int, totalTokens, durationMs int64) ChatCompletedEvent {
	return ChatCompletedEvent{
		BaseEvent:    newBase(ChatCompleted),
		RequestID:    requestID,
		ModelID:      modelID,
		Provider:     provider,
		MessageCount: messageCount,
		TotalTokens:  totalTokens,
		DurationMs:   durationMs,
	}
}

// NewChatFailedEvent 실패 이벤트를 생성한다.
func NewChatFailedEvent(requestID, modelID, provider string, messageCount int, errorCategory string, durationMs int64) ChatFailedEvent {
	return ChatFailedEvent{
		BaseEvent:     newBase(ChatFailed),
		RequestID:     requestID,
		ModelID:       modelID,
		Provider:      provider,
		MessageCount:  messageCount,
		ErrorCategory: errorCategory,
		DurationMs:    durationMs,
	}
}
