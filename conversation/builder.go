// Package conversation 은 릴레이에 제출할 메시지 시퀀스를 조립한다.
package conversation

import (
	"errors"
	"strings"

	"chat-relay/models"
)

// DefaultSystemPrompt 는 호출자가 시스템 턴을 제공하지 않았을 때 합성되는
// 고정 기본 지시문이다.
const DefaultSystemPrompt = "You are a helpful assistant."

// ErrEmptyMessage 는 사용자 입력이 비어 있거나 공백뿐일 때 반환된다.
// 이 경우 호출자는 Relay Client 를 호출해서는 안 된다.
var ErrEmptyMessage = errors.New("message is empty")

// BuildRequest 는 이전 턴들과 새 사용자 입력으로 제출용 메시지 시퀀스를 만든다.
// 순수 함수: 입력을 변경하지 않고 새 슬라이스를 반환한다.
// 이전 시퀀스가 시스템 턴으로 시작하지 않으면 기본 시스템 턴을 정확히 하나 앞에 붙인다.
func BuildRequest(prior []models.Message, newUserText string) ([]models.Message, error) {
	text := strings.TrimSpace(newUserText)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	needSystem := len(prior) == 0 || prior[0].Role != models.RoleSystem

	out := make([]models.Message, 0, len(prior)+2)
	if needSystem {
		out = append(out, models.Message{Role: models.RoleSystem, Content: DefaultSystemPrompt})
	}
	out = append(out, prior...)
	out = append(out, models.Message{Role: models.RoleUser, Content: text})
	return out, nil
}
