package openaiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"chat-relay/internal/logger"
	"chat-relay/cmd/relay/clients/completion"
	"chat-relay/config"
	"chat-relay/httpclient"
	"chat-relay/models"
)

const completionsPath = "/v1/chat/completions"

const maxBodySize = 5 * 1024 * 1024

// Client 는 OpenAI 호환 chat-completions API 클라이언트이다.
type Client struct {
	base        *httpclient.BaseClient
	apiKey      string
	temperature float64
	maxTokens   int
}

// CompletionRequest 는 업스트림에 제출하는 요청 바디이다.
type CompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []models.Turn `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// HTTPError 는 업스트림이 2xx 외의 상태로 응답했음을 뜻한다.
// Body 는 서버 쪽 로그 전용이며 클라이언트로 그대로 전달되지 않는다.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream completion request failed: status=%d", e.StatusCode)
}

// New 는 릴레이 설정과 API 키로 클라이언트를 생성한다.
func New(cfg config.RelayConfig, apiKey string) *Client {
	baseURL := cfg.UpstreamBaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	timeout := time.Duration(cfg.UpstreamTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	temperature := 0.7
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	hc := httpclient.New(httpclient.Config{Timeout: timeout})
	return &Client{
		base:        httpclient.NewBaseClientWithClient(hc, baseURL),
		apiKey:      apiKey,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// completionEnvelope 는 로그/이벤트용 메타데이터만 추출하기 위한 최소 형태이다.
type completionEnvelope struct {
	Model string           `json:"model"`
	Usage completion.Usage `json:"usage"`
}

// CreateChatCompletion 은 검증된 메시지 시퀀스를 업스트림에 전달한다.
// 성공 시 응답 바디를 그대로 Result.Raw 에 담아 반환한다. 내부 재시도는 없다.
func (c *Client) CreateChatCompletion(ctx context.Context, model string, turns []models.Turn) (*completion.Result, error) {
	payload := CompletionRequest{
		Model:       model,
		Messages:    turns,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := c.base.NewRequest(ctx, http.MethodPost, completionsPath, nil, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, readErr := httpclient.ReadBody(resp, maxBodySize)
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	result := &completion.Result{Raw: body, Model: model}
	var env completionEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		// 메타데이터 추출 실패는 치명적이지 않다. 바디는 그대로 전달한다.
		logger.Log.Warnf("openaiclient: failed to parse completion metadata: %v", err)
		return result, nil
	}
	if env.Model != "" {
		result.Model = env.Model
	}
	result.Usage = env.Usage
	return result, nil
}
