// Package relayerr 는 릴레이와 클라이언트가 공유하는 실패 분류 체계를 정의한다.
// 모든 실패 경로는 정확히 하나의 RelayError 로 번역되어 호출자에게 전달된다.
package relayerr

import (
	"fmt"
	"net/http"
)

// Category 는 사용자에게 노출되는 실패 분류이다.
type Category string

const (
	CategoryAuth                Category = "auth"
	CategoryRateLimit           Category = "rate_limit"
	CategoryBadRequest          Category = "bad_request"
	CategoryUpstreamUnavailable Category = "upstream_unavailable"
	CategoryNetwork             Category = "network"
	CategoryUnknown             Category = "unknown"
)

// RelayError 는 분류된 실패를 나타낸다.
// HTTPStatus 는 원본 상태 코드를 알 수 있는 경우에만 채워진다.
type RelayError struct {
	Category   Category
	Message    string
	HTTPStatus int
	Details    string
}

func (e *RelayError) Error() string {
	if e == nil {
		return string(CategoryUnknown)
	}
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s (status=%d): %s", e.Category, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// New 는 주어진 분류와 메시지로 RelayError 를 생성한다.
// 메시지가 비어 있으면 분류별 기본 사용자 메시지를 사용한다.
func New(category Category, message string) *RelayError {
	if message == "" {
		message = category.UserMessage()
	}
	return &RelayError{Category: category, Message: message}
}

// NewWithStatus 는 원본 HTTP 상태 코드를 포함한 RelayError 를 생성한다.
func NewWithStatus(category Category, message string, status int) *RelayError {
	e := New(category, message)
	e.HTTPStatus = status
	return e
}

// CategoryFromStatus 는 클라이언트가 받은 HTTP 상태 코드를 분류로 매핑한다.
// (전송 실패와 타임아웃은 호출자가 직접 network 로 분류한다.)
func CategoryFromStatus(status int) Category {
	switch {
	case status == http.StatusUnauthorized:
		return CategoryAuth
	case status == http.StatusTooManyRequests:
		return CategoryRateLimit
	case status == http.StatusBadRequest:
		return CategoryBadRequest
	case status >= 500 && status <= 599:
		return CategoryUpstreamUnavailable
	default:
		return CategoryUnknown
	}
}

// UserMessage 는 분류별로 고정된 사용자 안내 문구를 반환한다.
// 업스트림의 원문 에러는 절대 이 문구에 섞이지 않는다.
func (c Category) UserMessage() string {
	switch c {
	case CategoryAuth:
		return "Authentication failed. Check the relay's API key configuration."
	case CategoryRateLimit:
		return "Rate limit exceeded. Please try again later."
	case CategoryBadRequest:
		return "The request was rejected. Please rephrase your message and try again."
	case CategoryUpstreamUnavailable:
		return "The model service is temporarily unavailable. Please try again later."
	case CategoryNetwork:
		return "Network error. Please check your connection and try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// NormalizeUpstreamStatus 는 업스트림 completion API 의 응답 상태를
// 릴레이가 클라이언트에 돌려줄 (상태 코드, 분류) 쌍으로 정규화한다.
func NormalizeUpstreamStatus(statusCode int) (normalizedStatus int, category Category) {
	switch {
	case statusCode == http.StatusUnauthorized:
		return http.StatusUnauthorized, CategoryAuth
	case statusCode == http.StatusTooManyRequests:
		return http.StatusTooManyRequests, CategoryRateLimit
	case statusCode == http.StatusBadRequest || statusCode == http.StatusUnprocessableEntity:
		return http.StatusBadRequest, CategoryBadRequest
	case statusCode >= 500 && statusCode <= 599:
		return http.StatusServiceUnavailable, CategoryUpstreamUnavailable
	default:
		return http.StatusInternalServerError, CategoryUnknown
	}
}
