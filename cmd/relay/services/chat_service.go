package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chat-relay/internal/logger"
	"chat-relay/cmd/relay/clients/completion"
	"chat-relay/cmd/relay/clients/openaiclient"
	"chat-relay/cmd/relay/quota"
	"chat-relay/config"
	"chat-relay/eventbus"
	"chat-relay/events"
	"chat-relay/models"
	"chat-relay/relayerr"
	"chat-relay/repositories"
	"chat-relay/trace"
)

// UpstreamClient 는 provider 별 업스트림 호출 계약이다.
type UpstreamClient interface {
	CreateChatCompletion(ctx context.Context, model string, turns []models.Turn) (*completion.Result, error)
}

// ChatInput 은 핸들러에서 넘어오는 검증 전 입력이다.
type ChatInput struct {
	Messages []models.Turn
	ModelID  string
}

// ChatError 는 릴레이가 클라이언트에 돌려줄 실패 응답을 나타낸다.
// Message/Details 는 안전한 요약만 담고, 업스트림 원문은 서버 로그에만 남는다.
type ChatError struct {
	StatusCode int
	Category   relayerr.Category
	Message    string
	Details    string
	Cause      error
}

func (e *ChatError) Error() string {
	if e == nil {
		return "chat_failed"
	}
	return e.Message
}

// ChatService 는 릴레이의 요청 처리 파이프라인을 담당한다:
// received → validated → credential-checked → forwarded → (succeeded|failed) → responded.
// 요청당 업스트림 시도는 정확히 한 번이며 내부 재시도는 없다.
type ChatService struct {
	cfg     config.AppConfig
	clients map[string]UpstreamClient
	limiter *quota.UpstreamQuotaLimiter
	logs    *repositories.ChatLogRepository
	bus     eventbus.EventBus
}

// NewChatService 는 provider 별 클라이언트 맵으로 서비스를 생성한다.
// 자격 증명이 설정되지 않은 provider 는 맵에 없고, 해당 모델 요청은 500 으로 실패한다.
// logs 는 nil 일 수 있으며(Mongo 미설정), 그 경우 요청 로그 저장은 생략된다.
func NewChatService(
	cfg config.AppConfig,
	clients map[string]UpstreamClient,
	limiter *quota.UpstreamQuotaLimiter,
	logs *repositories.ChatLogRepository,
	bus eventbus.EventBus,
) *ChatService {
	if bus == nil {
		bus = eventbus.NoopEventBus{}
	}
	return &ChatService{cfg: cfg, clients: clients, limiter: limiter, logs: logs, bus: bus}
}

// Complete 은 대화를 업스트림에 전달하고 응답 바디를 그대로 반환한다.
// 모든 실패 경로는 정확히 하나의 ChatError 로 끝난다.
func (s *ChatService) Complete(ctx context.Context, in ChatInput) ([]byte, *ChatError) {
	if len(in.Messages) == 0 {
		return nil, &ChatError{
			StatusCode: http.StatusBadRequest,
			Category:   relayerr.CategoryBadRequest,
			Message:    "Valid messages array is required",
		}
	}

	model := s.cfg.ResolveModel(in.ModelID)
	provider := model.Provider
	if provider == "" {
		provider = "openai"
	}

	client, ok := s.clients[provider]
	if !ok {
		// 자격 증명 미설정: 업스트림 호출 없이 즉시 실패한다.
		return nil, &ChatError{
			StatusCode: http.StatusInternalServerError,
			Category:   relayerr.CategoryUpstreamUnavailable,
			Message:    "API key not configured",
			Details:    "The " + provider + " API key is missing from the relay environment",
		}
	}

	if s.limiter != nil {
		allowed, err := s.limiter.WaitAndReserve(ctx)
		if err != nil {
			return nil, &ChatError{
				StatusCode: http.StatusInternalServerError,
				Category:   relayerr.CategoryUnknown,
				Message:    safeSummary(relayerr.CategoryUnknown),
				Cause:      err,
			}
		}
		if !allowed {
			return nil, &ChatError{
				StatusCode: http.StatusTooManyRequests,
				Category:   relayerr.CategoryRateLimit,
				Message:    safeSummary(relayerr.CategoryRateLimit),
				Details:    "The relay's upstream quota for today is exhausted",
			}
		}
	}

	requestID := trace.RequestIDFromContext(ctx)
	start := time.Now()

	result, err := client.CreateChatCompletion(ctx, model.ID, in.Messages)
	duration := time.Since(start)

	if err != nil {
		chatErr := s.classifyUpstreamError(err, requestID, model)
		s.record(requestID, model, len(in.Messages), nil, chatErr, duration)
		return nil, chatErr
	}

	s.record(requestID, model, len(in.Messages), result, nil, duration)
	return result.Raw, nil
}

// classifyUpstreamError 는 업스트림 실패를 RelayError 분류로 정규화한다.
// 업스트림 원문 바디는 여기서 서버 로그로만 남긴다.
func (s *ChatService) classifyUpstreamError(err error, requestID string, model config.ModelOption) *ChatError {
	var httpErr *openaiclient.HTTPError
	if errors.As(err, &httpErr) {
		status, category := relayerr.NormalizeUpstreamStatus(httpErr.StatusCode)
		logger.ErrorWithFields("upstream completion call failed", logger.Fields{
			"request_id":      requestID,
			"model_id":        model.ID,
			"upstream_status": httpErr.StatusCode,
			"upstream_body":   truncate(httpErr.Body, 1024),
		})
		return &ChatError{
			StatusCode: status,
			Category:   category,
			Message:    safeSummary(category),
			Details:    "Check server logs for more information",
			Cause:      err,
		}
	}

	// 응답 자체를 받지 못한 경우 (연결 실패, 타임아웃, provider SDK 오류)
	logger.ErrorWithFields("upstream completion call failed", logger.Fields{
		"request_id": requestID,
		"model_id":   model.ID,
		"error":      err.Error(),
	})
	return &ChatError{
		StatusCode: http.StatusServiceUnavailable,
		Category:   relayerr.CategoryUpstreamUnavailable,
		Message:    safeSummary(relayerr.CategoryUpstreamUnavailable),
		Details:    "Check server logs for more information",
		Cause:      err,
	}
}

// record 는 요청 로그 저장과 사용량 이벤트 발행을 best-effort 로 수행한다.
// 둘 다 실패해도 요청 처리 결과에는 영향을 주지 않는다.
func (s *ChatService) record(
	requestID string,
	model config.ModelOption,
	messageCount int,
	result *completion.Result,
	chatErr *ChatError,
	duration time.Duration,
) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	provider := model.Provider
	if provider == "" {
		provider = "openai"
	}
	durationMs := duration.Milliseconds()

	if s.logs != nil {
		log := models.ChatLog{
			RequestID:    requestID,
			ModelID:      model.ID,
			Provider:     provider,
			MessageCount: messageCount,
			DurationMs:   durationMs,
			RequestedAt:  time.Now().Add(-duration),
			CompletedAt:  time.Now(),
		}
		if result != nil {
			log.Success = true
			log.PromptTokens = result.Usage.PromptTokens
			log.CompletionTokens = result.Usage.CompletionTokens
			log.TotalTokens = result.Usage.TotalTokens
			log.ResponseExcerpt = truncate(string(result.Raw), 200)
		} else if chatErr != nil {
			log.ErrorCategory = string(chatErr.Category)
		}
		if _, err := s.logs.Insert(ctx, log); err != nil {
			logger.Log.Warnf("failed to insert chat log: %v", err)
		}
	}

	var payload any
	var key string
	if result != nil {
		ev := events.NewChatCompletedEvent(requestID, model.ID, provider, messageCount, result.Usage.TotalTokens, durationMs)
		payload, key = ev, ev.ID
	} else if chatErr != nil {
		ev := events.NewChatFailedEvent(requestID, model.ID, provider, messageCount, string(chatErr.Category), durationMs)
		payload, key = ev, ev.ID
	}
	if payload != nil {
		if err := s.bus.Publish(ctx, events.TopicChatEvents, key, payload); err != nil {
			logger.Log.Warnf("failed to publish chat event: %v", err)
		}
	}
}

// safeSummary 는 분류별로 클라이언트에 돌려줄 안전한 요약 문구를 반환한다.
func safeSummary(category relayerr.Category) string {
	switch category {
	case relayerr.CategoryAuth:
		return "Authentication error: Invalid API key or unauthorized access"
	case relayerr.CategoryRateLimit:
		return "Rate limit exceeded: Too many requests"
	case relayerr.CategoryBadRequest:
		return "Upstream rejected the request"
	default:
		return "Failed to get a response from the model service"
	}
}

// truncate returns s truncated to max runes.
func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
