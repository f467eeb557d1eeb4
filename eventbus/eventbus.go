package eventbus

import "context"

// EventBus 인터페이스는 사용량 이벤트 발행의 추상화를 정의한다.
// 이 시스템은 발행만 하고 소비하지 않으므로 Publish/Close 만 노출한다.
type EventBus interface {
	Publish(ctx context.Context, topic string, key string, payload any) error
	Close()
}

// NoopEventBus 는 브로커가 설정되지 않았을 때 사용하는 무동작 구현체이다.
type NoopEventBus struct{}

func (NoopEventBus) Publish(ctx context.Context, topic string, key string, payload any) error {
	return nil
}

func (NoopEventBus) Close() {}
