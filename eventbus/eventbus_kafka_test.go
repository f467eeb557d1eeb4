package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "chat_events"

// newMockBus 는 librdkafka 내장 모의 클러스터 위에서 동작하는 버스를 만든다.
// 실제 브로커 없이 전달 보고서까지 받아 볼 수 있다.
func newMockBus(t *testing.T, extra kafka.ConfigMap) *KafkaEventBus {
	t.Helper()
	cfg := kafka.ConfigMap{"test.mock.num.brokers": 1}
	for k, v := range extra {
		cfg[k] = v
	}
	p, err := kafka.NewProducer(&cfg)
	require.NoError(t, err)

	bus := &KafkaEventBus{Producer: p, Brokers: "mock"}
	t.Cleanup(bus.Close)
	return bus
}

func TestPublishDelivers(t *testing.T) {
	bus := newMockBus(t, nil)

	err := bus.Publish(context.Background(), testTopic, "k1", map[string]string{"hello": "world"})
	assert.NoError(t, err)
}

func TestPublishSurvivesLateDeliveryAfterContextExpiry(t *testing.T) {
	// linger 로 전달 보고서를 컨텍스트 만료보다 확실히 늦게 만든다.
	bus := newMockBus(t, kafka.ConfigMap{"linger.ms": 500})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(ctx, testTopic, "k2", map[string]string{"hello": "world"})
	assert.ErrorIs(t, err, context.Canceled)

	// 늦게 도착한 전달 보고서가 버퍼 채널로 패닉 없이 흡수되어야 한다.
	time.Sleep(700 * time.Millisecond)
}

func TestNoopPublish(t *testing.T) {
	var bus EventBus = NoopEventBus{}
	assert.NoError(t, bus.Publish(context.Background(), testTopic, "k", nil))
	bus.Close()
}

