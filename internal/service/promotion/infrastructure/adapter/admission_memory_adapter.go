// internal/service/promotion/infrastructure/adapter/admission_memory_adapter.go
package adapter

import (
	"context"
	"sync"

	"promo/internal/service/promotion/domain/port"
)

// AdmissionMemoryAdapter 是 port.AdmissionStore 的进程内实现，
// 用于测试和不带 Redis 的本地运行。语义与 Redis 实现保持一致：
// 每个操作原子，操作序列整体不原子。
type AdmissionMemoryAdapter struct {
	mu         sync.Mutex
	promotions map[string]*memoryPromotionState
}

type memoryPromotionState struct {
	queue     []port.AdmissionEntry
	joined    map[string]struct{}
	winnerSeq int64
}

func NewAdmissionMemoryAdapter() *AdmissionMemoryAdapter {
	return &AdmissionMemoryAdapter{promotions: make(map[string]*memoryPromotionState)}
}

// state 必须在持有 mu 的情况下调用。
func (a *AdmissionMemoryAdapter) state(promotionID string) *memoryPromotionState {
	s, ok := a.promotions[promotionID]
	if !ok {
		s = &memoryPromotionState{joined: make(map[string]struct{})}
		a.promotions[promotionID] = s
	}
	return s
}

func (a *AdmissionMemoryAdapter) TryAdmit(_ context.Context, promotionID, userID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.state(promotionID)
	if _, exists := s.joined[userID]; exists {
		return false, nil
	}
	s.joined[userID] = struct{}{}
	return true, nil
}

func (a *AdmissionMemoryAdapter) Withdraw(_ context.Context, promotionID, userID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.state(promotionID).joined, userID)
	return nil
}

func (a *AdmissionMemoryAdapter) Enqueue(_ context.Context, promotionID string, entry port.AdmissionEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.state(promotionID)
	s.queue = append(s.queue, entry)
	return nil
}

func (a *AdmissionMemoryAdapter) QueueLength(_ context.Context, promotionID string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int64(len(a.state(promotionID).queue)), nil
}

func (a *AdmissionMemoryAdapter) Dequeue(_ context.Context, promotionID string) (*port.AdmissionEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.state(promotionID)
	if len(s.queue) == 0 {
		return nil, nil
	}
	entry := s.queue[0]
	s.queue = s.queue[1:]
	return &entry, nil
}

func (a *AdmissionMemoryAdapter) IncrementWinnerSequence(_ context.Context, promotionID string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.state(promotionID)
	s.winnerSeq++
	return s.winnerSeq, nil
}

func (a *AdmissionMemoryAdapter) WinnerSequence(_ context.Context, promotionID string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state(promotionID).winnerSeq, nil
}

func (a *AdmissionMemoryAdapter) AdmittedCount(_ context.Context, promotionID string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int64(len(a.state(promotionID).joined)), nil
}
