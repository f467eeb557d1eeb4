package relayerr

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryFromStatus(t *testing.T) {
	cases := []struct {
		status int
		want   Category
	}{
		{http.StatusUnauthorized, CategoryAuth},
		{http.StatusTooManyRequests, CategoryRateLimit},
		{http.StatusBadRequest, CategoryBadRequest},
		{http.StatusInternalServerError, CategoryUpstreamUnavailable},
		{http.StatusBadGateway, CategoryUpstreamUnavailable},
		{http.StatusServiceUnavailable, CategoryUpstreamUnavailable},
		{http.StatusNotFound, CategoryUnknown},
		{http.StatusForbidden, CategoryUnknown},
		{http.StatusTeapot, CategoryUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CategoryFromStatus(tc.status), "status %d", tc.status)
	}
}

func TestNormalizeUpstreamStatus(t *testing.T) {
	cases := []struct {
		upstream     int
		wantStatus   int
		wantCategory Category
	}{
		{http.StatusUnauthorized, http.StatusUnauthorized, CategoryAuth},
		{http.StatusTooManyRequests, http.StatusTooManyRequests, CategoryRateLimit},
		{http.StatusBadRequest, http.StatusBadRequest, CategoryBadRequest},
		{http.StatusUnprocessableEntity, http.StatusBadRequest, CategoryBadRequest},
		{http.StatusInternalServerError, http.StatusServiceUnavailable, CategoryUpstreamUnavailable},
		{http.StatusGatewayTimeout, http.StatusServiceUnavailable, CategoryUpstreamUnavailable},
		{http.StatusForbidden, http.StatusInternalServerError, CategoryUnknown},
		{http.StatusConflict, http.StatusInternalServerError, CategoryUnknown},
	}
	for _, tc := range cases {
		gotStatus, gotCategory := NormalizeUpstreamStatus(tc.upstream)
		assert.Equal(t, tc.wantStatus, gotStatus, "upstream %d", tc.upstream)
		assert.Equal(t, tc.wantCategory, gotCategory, "upstream %d", tc.upstream)
	}
}

func TestUserMessagesAreFixedPerCategory(t *testing.T) {
	categories := []Category{
		CategoryAuth, CategoryRateLimit, CategoryBadRequest,
		CategoryUpstreamUnavailable, CategoryNetwork, CategoryUnknown,
	}
	seen := map[string]Category{}
	for _, c := range categories {
		msg := c.UserMessage()
		assert.NotEmpty(t, msg)
		if prev, dup := seen[msg]; dup {
			t.Errorf("categories %s and %s share message %q", prev, c, msg)
		}
		seen[msg] = c
	}
}

func TestNewFallsBackToUserMessage(t *testing.T) {
	e := New(CategoryAuth, "")
	assert.Equal(t, CategoryAuth.UserMessage(), e.Message)

	e = New(CategoryAuth, "custom")
	assert.Equal(t, "custom", e.Message)
}

func TestErrorStringIncludesStatus(t *testing.T) {
	e := NewWithStatus(CategoryRateLimit, "slow down", http.StatusTooManyRequests)
	assert.Contains(t, e.Error(), "rate_limit")
	assert.Contains(t, e.Error(), "429")
}
