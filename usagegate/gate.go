// Package usagegate 는 하루 단위 사용자 전송 횟수를 제한하는 게이트이다.
// 카운터는 세션 간에 영속화되며, 로컬 날짜가 바뀌면 0 으로 리셋된다.
package usagegate

import (
	"sync"
	"time"

	"chat-relay/internal/logger"
)

// DefaultDailyLimit 는 설정이 없을 때 적용되는 하루 전송 한도이다.
const DefaultDailyLimit = 25

const dayFormat = "2006-01-02"

// Gate 는 일일 사용량 카운터이다.
// 스토리지가 깨져 있으면 세션 동안 인메모리로만 동작한다(fail open).
type Gate struct {
	mu sync.Mutex

	store   Store
	limit   int
	counter Counter
	memOnly bool

	now func() time.Time
}

// New 는 주어진 스토어와 한도로 게이트를 생성하고,
// 저장된 날짜가 오늘과 다르면 즉시 리셋한다.
func New(store Store, limit int) *Gate {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	g := &Gate{store: store, limit: limit, now: time.Now}

	c, err := store.Load()
	if err != nil {
		logger.Log.Warnf("usage gate: failed to load counter, falling back to in-memory: %v", err)
		g.memOnly = true
		c = Counter{}
	}
	g.counter = c
	g.CheckAndMaybeReset()
	return g
}

// CheckAndMaybeReset 은 저장된 날짜가 오늘과 다르면 카운터를 리셋한다.
// 같은 날 여러 번 호출해도 두 번째부터는 아무 변화가 없다.
func (g *Gate) CheckAndMaybeReset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetIfNewDayLocked()
}

func (g *Gate) resetIfNewDayLocked() {
	today := g.now().Format(dayFormat)
	if g.counter.LastResetDate == today {
		return
	}
	g.counter = Counter{Count: 0, LastResetDate: today}
	g.persistLocked()
}

// HasReachedLimit 은 오늘의 전송 횟수가 한도에 도달했는지 보고한다.
func (g *Gate) HasReachedLimit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetIfNewDayLocked()
	return g.counter.Count >= g.limit
}

// Remaining 은 오늘 남은 전송 횟수를 반환한다. 음수가 되지는 않는다.
func (g *Gate) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetIfNewDayLocked()
	if r := g.limit - g.counter.Count; r > 0 {
		return r
	}
	return 0
}

// Limit 는 설정된 일일 한도를 반환한다.
func (g *Gate) Limit() int { return g.limit }

// Count 는 오늘 사용한 전송 횟수를 반환한다.
func (g *Gate) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetIfNewDayLocked()
	return g.counter.Count
}

// Increment 는 카운터를 1 증가시키고 영속화한다.
// 게이트를 이미 통과해 Relay Client 까지 도달하는 전송에 대해서만 호출해야 한다.
func (g *Gate) Increment() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetIfNewDayLocked()
	g.counter.Count++
	g.persistLocked()
}

func (g *Gate) persistLocked() {
	if g.memOnly {
		return
	}
	if err := g.store.Save(g.counter); err != nil {
		// 저장 실패 시 세션을 막지 않고 인메모리로 전환한다.
		logger.Log.Warnf("usage gate: failed to persist counter, continuing in-memory: %v", err)
		g.memOnly = true
	}
}
