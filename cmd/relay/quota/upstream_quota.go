package quota

import (
	"context"
	"sync"
	"time"

	"chat-relay/config"
)

// UpstreamQuotaLimiter 는 업스트림 completion API 호출에 대한 분당/일일 한도를 관리한다.
// 릴레이 인스턴스가 하나라는 전제를 두고 인메모리로 동작하며,
// 애플리케이션이 재시작되면 카운터가 초기화된다.
// (실제 운영에서는 영속 스토리지 기반으로 확장할 수 있도록 설계 여지를 남긴다.)
type UpstreamQuotaLimiter struct {
	mu sync.Mutex

	dailyLimit int
	usedToday  int
	dayKey     string

	interval time.Duration
	lastCall time.Time
}

// New 는 분당/일일 요청 한도로 리미터를 생성한다. 0 이하는 제한 없음이다.
func New(requestsPerMinute, requestsPerDay int) *UpstreamQuotaLimiter {
	if requestsPerDay < 0 {
		requestsPerDay = 0
	}
	if requestsPerMinute < 0 {
		requestsPerMinute = 0
	}

	var interval time.Duration
	if requestsPerMinute > 0 {
		interval = time.Minute / time.Duration(requestsPerMinute)
	}

	return &UpstreamQuotaLimiter{
		dailyLimit: requestsPerDay,
		interval:   interval,
	}
}

// NewFromConfig 는 config.yaml 의 upstream_quota 설정을 기반으로 리미터를 생성한다.
func NewFromConfig(cfg config.AppConfig) *UpstreamQuotaLimiter {
	q := cfg.UpstreamQuota
	return New(q.RequestsPerMinute, q.RequestsPerDay)
}

// WaitAndReserve 는 업스트림 호출 전에 분당/일일 한도를 적용한다.
// - 일일 한도를 초과한 경우: (false, nil) 을 반환하고 호출자는 업스트림 호출을 스킵해야 한다.
// - 컨텍스트 취소 등 시스템 예외 발생 시: (false, error)를 반환하여 상위에서 처리를 판단하게 한다.
func (l *UpstreamQuotaLimiter) WaitAndReserve(ctx context.Context) (bool, error) {
	for {
		l.mu.Lock()

		now := time.Now().UTC()
		todayKey := now.Format("2006-01-02")
		if l.dayKey != todayKey {
			l.dayKey = todayKey
			l.usedToday = 0
		}

		if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
			// 일일 한도 소진: 이번 호출은 업스트림으로 나가지 않는다.
			l.mu.Unlock()
			return false, nil
		}

		var delay time.Duration
		if l.interval > 0 && !l.lastCall.IsZero() {
			nextAllowed := l.lastCall.Add(l.interval)
			delay = time.Until(nextAllowed)
		}

		if delay <= 0 {
			// 즉시 호출 가능
			l.usedToday++
			l.lastCall = now
			l.mu.Unlock()
			return true, nil
		}

		// 잠시 대기해야 하는 경우: 락을 풀고 대기 후 다시 루프를 반복한다.
		l.mu.Unlock()
		select {
		case <-time.After(delay):
			// 다시 루프를 돌며 상태를 재평가한다.
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
