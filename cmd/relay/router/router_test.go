package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-relay/cmd/relay/clients/openaiclient"
	"chat-relay/cmd/relay/services"
	"chat-relay/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func routerConfig() config.AppConfig {
	return config.AppConfig{
		Models: []config.ModelOption{
			{ID: "gpt-4o", Name: "GPT-4o", Provider: "openai", Default: true},
			{ID: "o3", Name: "o3", Provider: "openai"},
		},
	}
}

// newRelay 는 가짜 업스트림 completion API 를 등록한 라우터를 만든다.
func newRelay(t *testing.T, upstream http.HandlerFunc) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := routerConfig()
	clients := map[string]services.UpstreamClient{
		"openai": openaiclient.New(config.RelayConfig{UpstreamBaseURL: srv.URL}, "sk-test"),
	}
	svc := services.NewChatService(cfg, clients, nil, nil, nil)
	return New(cfg, svc)
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatPassesUpstreamBodyThrough(t *testing.T) {
	upstreamBody := `{"id":"chatcmpl-1","model":"gpt-4o","choices":[{"message":{"role":"assistant","content":"hi"}}],"usage":{"total_tokens":9}}`
	r := newRelay(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(upstreamBody))
	})

	w := perform(r, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hello"}],"modelId":"gpt-4o"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, upstreamBody, w.Body.String())
}

func TestChatRejectsMissingMessages(t *testing.T) {
	r := newRelay(t, func(w http.ResponseWriter, req *http.Request) {
		t.Error("upstream must not be called")
	})

	cases := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"empty array", `{"messages":[]}`},
		{"malformed json", `{"messages":`},
		{"wrong type", `{"messages":"nope"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := perform(r, http.MethodPost, "/api/chat", tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "Valid messages array is required", resp["error"])
		})
	}
}

func TestChatTranslatesUpstreamFailures(t *testing.T) {
	cases := []struct {
		name         string
		upstream     int
		wantStatus   int
		wantContains string
	}{
		{"auth", http.StatusUnauthorized, http.StatusUnauthorized, "Authentication error"},
		{"rate limit", http.StatusTooManyRequests, http.StatusTooManyRequests, "Rate limit exceeded"},
		{"server error", http.StatusInternalServerError, http.StatusServiceUnavailable, "Failed to get a response"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRelay(t, func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(tc.upstream)
				w.Write([]byte(`{"error":{"message":"super secret upstream detail"}}`))
			})

			w := perform(r, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hello"}]}`)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantContains)
			assert.NotContains(t, w.Body.String(), "super secret upstream detail")
		})
	}
}

func TestChatMissingCredentialIs500(t *testing.T) {
	cfg := routerConfig()
	svc := services.NewChatService(cfg, map[string]services.UpstreamClient{}, nil, nil, nil)
	r := New(cfg, svc)

	w := perform(r, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hello"}]}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "API key not configured")
}

func TestWrongMethodIs405(t *testing.T) {
	r := newRelay(t, func(w http.ResponseWriter, req *http.Request) {})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := perform(r, method, "/api/chat", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Contains(t, w.Body.String(), "Method not allowed")
	}
}

func TestPreflightReturns200WithCORSHeaders(t *testing.T) {
	r := newRelay(t, func(w http.ResponseWriter, req *http.Request) {})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	// 브라우저는 Fetch 표준에 따라 요청 헤더 목록을 소문자로 보낸다.
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "content-type")
}

func TestActualRequestCarriesCORSOrigin(t *testing.T) {
	r := newRelay(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestListModels(t *testing.T) {
	r := newRelay(t, func(w http.ResponseWriter, req *http.Request) {})

	w := perform(r, http.MethodGet, "/api/models", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got []config.ModelOption
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)

	defaults := 0
	for _, m := range got {
		if m.Default {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestHealth(t *testing.T) {
	r := newRelay(t, func(w http.ResponseWriter, req *http.Request) {})

	w := perform(r, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}
