package geminiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"chat-relay/cmd/relay/clients/completion"
	"chat-relay/config"
	"chat-relay/models"
)

// Client 는 Google Gemini 를 업스트림 provider 로 사용하는 클라이언트이다.
// 응답은 chat-completions 형태로 변환되어 반환되므로,
// 클라이언트 쪽 계약은 provider 와 무관하게 하나로 유지된다.
type Client struct {
	apiKey      string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// New 는 릴레이 설정과 API 키로 클라이언트를 생성한다.
func New(cfg config.RelayConfig, apiKey string) *Client {
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
	return &Client{apiKey: apiKey, temperature: temperature, maxTokens: maxTokens, timeout: timeout}
}

// adaptedResponse 는 Gemini 응답을 chat-completions 형태로 감싼 것이다.
type adaptedResponse struct {
	ID      string           `json:"id"`
	Object  string           `json:"object"`
	Created int64            `json:"created"`
	Model   string           `json:"model"`
	Choices []adaptedChoice  `json:"choices"`
	Usage   completion.Usage `json:"usage"`
}

type adaptedChoice struct {
	Index        int         `json:"index"`
	Message      models.Turn `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// CreateChatCompletion 은 메시지 시퀀스를 Gemini 에 전달하고
// chat-completions 형태로 변환한 결과를 반환한다.
func (c *Client) CreateChatCompletion(ctx context.Context, model string, turns []models.Turn) (*completion.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: c.apiKey,
	})
	if err != nil {
		return nil, err
	}

	// system 턴은 SystemInstruction 으로, user/assistant 턴은 대화 내용으로 옮긴다.
	var systemText string
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case models.RoleSystem:
			if systemText == "" {
				systemText = t.Content
			}
		case models.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: t.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: t.Content}},
			})
		}
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("no user content to submit")
	}

	temperature := float32(c.temperature)
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(c.maxTokens),
	}
	if systemText != "" {
		genCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemText}}}
	}

	result, err := client.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		return nil, err
	}

	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini returned an empty completion")
	}

	var usage completion.Usage
	if result.UsageMetadata != nil {
		usage = completion.Usage{
			PromptTokens:     int64(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int64(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int64(result.UsageMetadata.TotalTokenCount),
		}
	}

	adapted := adaptedResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []adaptedChoice{
			{
				Index:        0,
				Message:      models.Turn{Role: models.RoleAssistant, Content: text},
				FinishReason: "stop",
			},
		},
		Usage: usage,
	}
	raw, err := json.Marshal(adapted)
	if err != nil {
		return nil, err
	}

	return &completion.Result{Raw: raw, Model: model, Usage: usage}, nil
}
