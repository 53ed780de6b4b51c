package application

import (
	"context"
	"sync"
	"time"

	"promo/internal/service/promotion/domain"
	"promo/internal/service/promotion/domain/port"
)

// 应用层测试共用的 fake 依赖。准入存储用内存实现（adapter 包），
// 这里只补 repository、cache、notifier 三个端口。

type fakePromotionRepo struct {
	mu         sync.Mutex
	promotions map[string]*domain.Promotion
}

func newFakePromotionRepo(promotions ...*domain.Promotion) *fakePromotionRepo {
	r := &fakePromotionRepo{promotions: make(map[string]*domain.Promotion)}
	for _, p := range promotions {
		r.promotions[p.ID] = p
	}
	return r
}

func (r *fakePromotionRepo) Save(_ context.Context, p *domain.Promotion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.promotions[p.ID] = &cp
	return nil
}

func (r *fakePromotionRepo) FindByID(_ context.Context, id string) (*domain.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.promotions[id]
	if !ok {
		return nil, domain.ErrPromotionNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePromotionRepo) FindByStatus(_ context.Context, status domain.Status) ([]*domain.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Promotion
	for _, p := range r.promotions {
		if p.Status == status {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeCache 直接代理一个 repo，并记录收到的失效调用。
type fakeCache struct {
	repo    *fakePromotionRepo
	mu      sync.Mutex
	evicted []string
}

func newFakeCache(repo *fakePromotionRepo) *fakeCache {
	return &fakeCache{repo: repo}
}

func (c *fakeCache) GetPromotion(ctx context.Context, promotionID string) (*domain.Promotion, error) {
	return c.repo.FindByID(ctx, promotionID)
}

func (c *fakeCache) GetActivePromotionIDs(ctx context.Context) ([]string, error) {
	active, err := c.repo.FindByStatus(ctx, domain.StatusActive)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(active))
	for i, p := range active {
		ids[i] = p.ID
	}
	return ids, nil
}

func (c *fakeCache) Evict(_ context.Context, promotionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted = append(c.evicted, promotionID)
	return nil
}

type fakeParticipationRepo struct {
	mu       sync.Mutex
	records  []*domain.PromotionParticipation
	failNext bool
}

func (r *fakeParticipationRepo) SaveBatch(_ context.Context, batch []*domain.PromotionParticipation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return errContext("simulated bulk insert failure")
	}
	r.records = append(r.records, batch...)
	return nil
}

func (r *fakeParticipationRepo) FindByPromotionAndUser(_ context.Context, promotionID, userID string) (*domain.PromotionParticipation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.records {
		if p.PromotionID == promotionID && p.UserID == userID {
			return p, nil
		}
	}
	return nil, domain.ErrParticipationNotFound
}

func (r *fakeParticipationRepo) FindWinners(_ context.Context, promotionID string) ([]*domain.PromotionParticipation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var winners []*domain.PromotionParticipation
	for _, p := range r.records {
		if p.PromotionID == promotionID && p.IsWinner() {
			winners = append(winners, p)
		}
	}
	return winners, nil
}

func (r *fakeParticipationRepo) all() []*domain.PromotionParticipation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.PromotionParticipation(nil), r.records...)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []*domain.WinnerEvent
}

func (n *fakeNotifier) PublishWinner(_ context.Context, event *domain.WinnerEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *fakeNotifier) published() []*domain.WinnerEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*domain.WinnerEvent(nil), n.events...)
}

type errContext string

func (e errContext) Error() string { return string(e) }

func entryFor(userID string) port.AdmissionEntry {
	return port.AdmissionEntry{
		UserID:    userID,
		IPAddress: "10.0.0.1",
		UserAgent: "test-agent",
		JoinedAt:  time.Now(),
	}
}

// newActivePromotion 构造一个此刻可参与的活动。
func newActivePromotion(name string, totalStock int) *domain.Promotion {
	p, err := domain.NewPromotion(name, time.Now().Add(-time.Hour), time.Now().Add(time.Hour), totalStock, 1000)
	if err != nil {
		panic(err)
	}
	if err := p.Start(); err != nil {
		panic(err)
	}
	return p
}
