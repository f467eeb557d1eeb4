package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-relay/cmd/relay/clients/completion"
	"chat-relay/cmd/relay/clients/openaiclient"
	"chat-relay/cmd/relay/quota"
	"chat-relay/config"
	"chat-relay/models"
	"chat-relay/relayerr"
)

type stubUpstream struct {
	calls     int
	lastModel string
	lastTurns []models.Turn

	result *completion.Result
	err    error
}

func (s *stubUpstream) CreateChatCompletion(ctx context.Context, model string, turns []models.Turn) (*completion.Result, error) {
	s.calls++
	s.lastModel = model
	s.lastTurns = turns
	return s.result, s.err
}

func testConfig() config.AppConfig {
	return config.AppConfig{
		Models: []config.ModelOption{
			{ID: "gpt-4o", Name: "GPT-4o", Provider: "openai", Default: true},
			{ID: "o3", Name: "o3", Provider: "openai"},
			{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", Provider: "google"},
		},
	}
}

func helloInput() ChatInput {
	return ChatInput{
		Messages: []models.Turn{{Role: models.RoleUser, Content: "hello"}},
		ModelID:  "gpt-4o",
	}
}

func newService(upstream UpstreamClient) *ChatService {
	clients := map[string]UpstreamClient{"openai": upstream}
	return NewChatService(testConfig(), clients, nil, nil, nil)
}

func TestCompleteRejectsEmptyMessages(t *testing.T) {
	upstream := &stubUpstream{}
	svc := newService(upstream)

	_, chatErr := svc.Complete(context.Background(), ChatInput{ModelID: "gpt-4o"})

	require.NotNil(t, chatErr)
	assert.Equal(t, http.StatusBadRequest, chatErr.StatusCode)
	assert.Equal(t, "Valid messages array is required", chatErr.Message)
	assert.Zero(t, upstream.calls)
}

func TestCompleteMissingCredential(t *testing.T) {
	svc := NewChatService(testConfig(), map[string]UpstreamClient{}, nil, nil, nil)

	_, chatErr := svc.Complete(context.Background(), helloInput())

	require.NotNil(t, chatErr)
	assert.Equal(t, http.StatusInternalServerError, chatErr.StatusCode)
	assert.Equal(t, "API key not configured", chatErr.Message)
}

func TestCompletePassesBodyThroughVerbatim(t *testing.T) {
	raw := []byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[{"message":{"role":"assistant","content":"hi"}}],"vendor_extra":{"nested":true}}`)
	upstream := &stubUpstream{result: &completion.Result{Raw: raw, Model: "gpt-4o"}}
	svc := newService(upstream)

	got, chatErr := svc.Complete(context.Background(), helloInput())

	require.Nil(t, chatErr)
	assert.Equal(t, raw, got)
	assert.Equal(t, "gpt-4o", upstream.lastModel)
	require.Len(t, upstream.lastTurns, 1)
	assert.Equal(t, "hello", upstream.lastTurns[0].Content)
}

func TestCompleteUnknownModelFallsBackToDefault(t *testing.T) {
	upstream := &stubUpstream{result: &completion.Result{Raw: []byte(`{}`)}}
	svc := newService(upstream)

	in := helloInput()
	in.ModelID = "does-not-exist"
	_, chatErr := svc.Complete(context.Background(), in)

	require.Nil(t, chatErr)
	assert.Equal(t, "gpt-4o", upstream.lastModel)
}

func TestCompleteRoutesByProvider(t *testing.T) {
	openai := &stubUpstream{result: &completion.Result{Raw: []byte(`{}`)}}
	google := &stubUpstream{result: &completion.Result{Raw: []byte(`{}`)}}
	svc := NewChatService(testConfig(), map[string]UpstreamClient{
		"openai": openai,
		"google": google,
	}, nil, nil, nil)

	in := helloInput()
	in.ModelID = "gemini-2.0-flash"
	_, chatErr := svc.Complete(context.Background(), in)

	require.Nil(t, chatErr)
	assert.Zero(t, openai.calls)
	assert.Equal(t, 1, google.calls)
	assert.Equal(t, "gemini-2.0-flash", google.lastModel)
}

func TestCompleteNormalizesUpstreamStatuses(t *testing.T) {
	cases := []struct {
		name         string
		upstream     int
		wantStatus   int
		wantCategory relayerr.Category
	}{
		{"auth", http.StatusUnauthorized, http.StatusUnauthorized, relayerr.CategoryAuth},
		{"rate limit", http.StatusTooManyRequests, http.StatusTooManyRequests, relayerr.CategoryRateLimit},
		{"bad request", http.StatusBadRequest, http.StatusBadRequest, relayerr.CategoryBadRequest},
		{"unprocessable", http.StatusUnprocessableEntity, http.StatusBadRequest, relayerr.CategoryBadRequest},
		{"server error", http.StatusInternalServerError, http.StatusServiceUnavailable, relayerr.CategoryUpstreamUnavailable},
		{"other", http.StatusForbidden, http.StatusInternalServerError, relayerr.CategoryUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			upstream := &stubUpstream{err: &openaiclient.HTTPError{
				StatusCode: tc.upstream,
				Body:       `{"error":{"message":"secret upstream detail"}}`,
			}}
			svc := newService(upstream)

			_, chatErr := svc.Complete(context.Background(), helloInput())

			require.NotNil(t, chatErr)
			assert.Equal(t, tc.wantStatus, chatErr.StatusCode)
			assert.Equal(t, tc.wantCategory, chatErr.Category)
			// 업스트림 원문이 클라이언트로 새지 않아야 한다.
			assert.NotContains(t, chatErr.Message, "secret upstream detail")
			assert.NotContains(t, chatErr.Details, "secret upstream detail")
		})
	}
}

func TestCompleteTransportFailureIsServiceUnavailable(t *testing.T) {
	upstream := &stubUpstream{err: errors.New("dial tcp: connection refused")}
	svc := newService(upstream)

	_, chatErr := svc.Complete(context.Background(), helloInput())

	require.NotNil(t, chatErr)
	assert.Equal(t, http.StatusServiceUnavailable, chatErr.StatusCode)
	assert.Equal(t, relayerr.CategoryUpstreamUnavailable, chatErr.Category)
	assert.NotContains(t, chatErr.Message, "dial tcp")
}

func TestCompleteHonorsUpstreamQuota(t *testing.T) {
	upstream := &stubUpstream{result: &completion.Result{Raw: []byte(`{}`)}}
	limiter := quota.New(0, 1)
	svc := NewChatService(testConfig(), map[string]UpstreamClient{"openai": upstream}, limiter, nil, nil)

	_, chatErr := svc.Complete(context.Background(), helloInput())
	require.Nil(t, chatErr)

	_, chatErr = svc.Complete(context.Background(), helloInput())
	require.NotNil(t, chatErr)
	assert.Equal(t, http.StatusTooManyRequests, chatErr.StatusCode)
	assert.Equal(t, relayerr.CategoryRateLimit, chatErr.Category)
	assert.Equal(t, 1, upstream.calls)
}
