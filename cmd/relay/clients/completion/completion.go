// Package completion 은 업스트림 클라이언트들이 공유하는 응답 타입을 정의한다.
package completion

// Usage 는 업스트림이 보고한 토큰 사용량이다. 보고하지 않으면 0 으로 남는다.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Result 는 업스트림 호출 성공 결과이다.
// Raw 는 클라이언트에 그대로 전달되는 chat-completions 형태의 응답 바디이며,
// Model/Usage 는 로그와 이벤트를 위한 부가 정보이다.
type Result struct {
	Raw   []byte
	Model string
	Usage Usage
}
