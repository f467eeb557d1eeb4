package dto

import "chat-relay/models"

// ChatRequestDTO 는 클라이언트가 제출하는 대화 요청 바디이다.
type ChatRequestDTO struct {
	Messages []models.Turn `json:"messages"`
	ModelID  string        `json:"modelId"`
}

// ErrorResponseDTO 는 모든 실패 응답의 공통 형태이다.
type ErrorResponseDTO struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
