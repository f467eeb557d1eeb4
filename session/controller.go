// Package session 은 대화 트랜스크립트와 전송 상태를 소유하는 Session Controller 이다.
// Usage Gate 통과 → 요청 조립 → 낙관적 트랜스크립트 갱신 → Relay Client 호출 →
// 자리표시 턴 치환까지의 흐름을 책임진다.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"chat-relay/config"
	"chat-relay/conversation"
	"chat-relay/models"
	"chat-relay/relayclient"
	"chat-relay/relayerr"
	"chat-relay/usagegate"
)

// ErrLimitReached 는 일일 한도에 도달해 전송이 로컬에서 거부되었음을 뜻한다.
var ErrLimitReached = errors.New("daily usage limit reached")

// ErrSendInFlight 는 이미 진행 중인 전송이 있을 때 반환된다.
// 동일 세션에서 동시 전송은 구조적으로 허용하지 않는다.
var ErrSendInFlight = errors.New("a send is already in flight")

// Sender 는 Relay Client 의 호출 계약이다. 테스트에서 스텁으로 대체한다.
type Sender interface {
	Send(ctx context.Context, messages []models.Message, modelID string) (*relayclient.AssistantReply, *relayerr.RelayError)
}

// Controller 는 한 세션의 메시지 목록과 로딩 상태를 보유한다.
type Controller struct {
	mu sync.Mutex

	gate   *usagegate.Gate
	client Sender
	model  config.ModelOption

	transcript []models.Message
	sending    bool
}

// New 는 컨트롤러를 생성하고 트랜스크립트를 기본 시스템 턴 하나로 시작한다.
func New(gate *usagegate.Gate, client Sender, model config.ModelOption) *Controller {
	c := &Controller{gate: gate, client: client, model: model}
	c.transcript = []models.Message{newMessage(models.RoleSystem, conversation.DefaultSystemPrompt)}
	return c
}

func newMessage(role models.Role, content string) models.Message {
	return models.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Model 은 현재 선택된 모델을 반환한다.
func (c *Controller) Model() config.ModelOption {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// SelectModel 은 전송에 사용할 모델을 교체한다. 메시지 구조에는 영향이 없다.
func (c *Controller) SelectModel(model config.ModelOption) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// Transcript 는 현재 트랜스크립트의 복사본을 반환한다.
func (c *Controller) Transcript() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Loading 은 진행 중인 전송이 있는지 보고한다.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Gate 는 이 세션의 Usage Gate 를 노출한다. (남은 횟수 표시용)
func (c *Controller) Gate() *usagegate.Gate { return c.gate }

// SendUserMessage 는 사용자 입력 하나를 전송하고 최종 어시스턴트 턴을 반환한다.
//
// 처리 순서:
//  1. Usage Gate 확인. 한도 도달 시 네트워크 호출 없이 ErrLimitReached.
//  2. 요청 조립. 빈 입력이면 conversation.ErrEmptyMessage.
//  3. 사용자 턴과 로딩 자리표시 턴을 즉시 트랜스크립트에 추가.
//  4. Gate 증가 (Relay Client 에 실제로 도달하는 전송만 카운트).
//  5. Relay Client 호출. 성공이면 자리표시 턴을 실제 응답으로,
//     실패면 isError 턴으로 치환. 어떤 경우에도 로딩 상태는 해제된다.
//
// 자리표시 턴은 최종 턴이 차지할 위치를 그대로 차지하므로 순서는 항상 안정적이다.
func (c *Controller) SendUserMessage(ctx context.Context, text string) (models.Message, error) {
	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return models.Message{}, ErrSendInFlight
	}
	if c.gate.HasReachedLimit() {
		c.mu.Unlock()
		return models.Message{}, ErrLimitReached
	}

	prior := make([]models.Message, len(c.transcript))
	copy(prior, c.transcript)

	request, err := conversation.BuildRequest(prior, text)
	if err != nil {
		c.mu.Unlock()
		return models.Message{}, err
	}

	// 낙관적 갱신: 사용자 턴과 로딩 자리표시 턴을 먼저 붙인다.
	userMsg := request[len(request)-1]
	userMsg.ID = uuid.NewString()
	userMsg.Timestamp = time.Now()

	placeholder := newMessage(models.RoleAssistant, "")
	placeholder.IsLoading = true

	c.transcript = append(c.transcript, userMsg, placeholder)
	placeholderIdx := len(c.transcript) - 1
	modelID := c.model.ID
	c.sending = true
	c.mu.Unlock()

	c.gate.Increment()

	var final models.Message
	defer func() {
		// 전송 결과와 무관하게 로딩 상태를 해제하고 자리표시 턴을 정리한다.
		c.mu.Lock()
		if c.transcript[placeholderIdx].IsLoading {
			if final.ID == "" {
				final = newMessage(models.RoleAssistant, relayerr.CategoryUnknown.UserMessage())
				final.IsError = true
			}
			c.transcript[placeholderIdx] = final
		}
		c.sending = false
		c.mu.Unlock()
	}()

	reply, relayErr := c.client.Send(ctx, request, modelID)
	if relayErr != nil {
		final = newMessage(models.RoleAssistant, relayErr.Category.UserMessage())
		final.IsError = true
		return final, nil
	}

	final = newMessage(models.RoleAssistant, reply.Content)
	return final, nil
}
