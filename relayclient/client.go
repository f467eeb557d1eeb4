// Package relayclient 는 브라우저 클라이언트에 해당하는, 릴레이 엔드포인트 호출부이다.
// 모든 호출 경로는 잘 형성된 응답 또는 RelayError 중 정확히 하나로 귀결된다.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"chat-relay/httpclient"
	"chat-relay/models"
	"chat-relay/relayerr"
)

// DefaultTimeout 은 클라이언트 쪽 고정 타임아웃이다.
const DefaultTimeout = 60 * time.Second

const chatPath = "/api/chat"

const maxResponseBytes = 5 * 1024 * 1024

// AssistantReply 는 성공 응답에서 추출한 어시스턴트 턴이다.
type AssistantReply struct {
	Content string
	ModelID string
}

// Client 는 릴레이 서비스 호출 클라이언트이다. 재시도는 하지 않는다.
type Client struct {
	base *httpclient.BaseClient
}

// New 는 주어진 릴레이 베이스 URL 로 클라이언트를 생성한다.
func New(baseURL string) *Client {
	hc := httpclient.New(httpclient.Config{Timeout: DefaultTimeout})
	return &Client{base: httpclient.NewBaseClientWithClient(hc, baseURL)}
}

// NewWithTimeout 은 타임아웃을 지정해 클라이언트를 생성한다. 테스트용.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	hc := httpclient.New(httpclient.Config{Timeout: timeout})
	return &Client{base: httpclient.NewBaseClientWithClient(hc, baseURL)}
}

type chatRequest struct {
	Messages []models.Turn `json:"messages"`
	ModelID  string        `json:"modelId,omitempty"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Send 는 메시지 시퀀스를 릴레이에 제출한다.
// 반환값 중 정확히 하나만 non-nil 이며, 패닉이나 가공되지 않은 에러는 밖으로 나가지 않는다.
func (c *Client) Send(ctx context.Context, messages []models.Message, modelID string) (*AssistantReply, *relayerr.RelayError) {
	payload := chatRequest{Messages: models.ToTurns(messages), ModelID: modelID}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, relayerr.New(relayerr.CategoryUnknown, "")
	}

	req, err := c.base.NewRequest(ctx, http.MethodPost, chatPath, nil, bytes.NewReader(buf))
	if err != nil {
		return nil, relayerr.New(relayerr.CategoryUnknown, "")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		// 타임아웃 포함, 응답을 받지 못한 모든 전송 실패는 network 로 분류한다.
		e := relayerr.New(relayerr.CategoryNetwork, "")
		e.Details = err.Error()
		return nil, e
	}
	defer resp.Body.Close()

	body, readErr := httpclient.ReadBody(resp, maxResponseBytes)
	if readErr != nil {
		e := relayerr.New(relayerr.CategoryNetwork, "")
		e.Details = readErr.Error()
		return nil, e
	}

	if resp.StatusCode != http.StatusOK {
		category := relayerr.CategoryFromStatus(resp.StatusCode)
		e := relayerr.NewWithStatus(category, "", resp.StatusCode)
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			e.Details = eb.Error
		}
		return nil, e
	}

	reply, extractErr := extractAssistantReply(body)
	if extractErr != nil {
		return nil, extractErr
	}
	return reply, nil
}

// completionResponse 는 클라이언트가 수용하는 유일한 성공 응답 형태이다.
// 다른 형태로의 동적 폴백은 하지 않는다.
type completionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// extractAssistantReply 는 chat-completions 형태에서 어시스턴트 텍스트를 추출한다.
// 형태가 맞지 않으면 upstream_unavailable 로 실패한다.
func extractAssistantReply(body []byte) (*AssistantReply, *relayerr.RelayError) {
	var cr completionResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		e := relayerr.New(relayerr.CategoryUpstreamUnavailable, "")
		e.Details = "malformed completion response"
		return nil, e
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		e := relayerr.New(relayerr.CategoryUpstreamUnavailable, "")
		e.Details = "completion response contains no assistant message"
		return nil, e
	}
	return &AssistantReply{Content: cr.Choices[0].Message.Content, ModelID: cr.Model}, nil
}
