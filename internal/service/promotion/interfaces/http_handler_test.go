package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"promo/internal/service/promotion/application"
	"promo/internal/service/promotion/domain"
	"promo/internal/service/promotion/infrastructure/adapter"
)

// stubPromotionRepo 是 map 实现的活动仓储，够 handler 测试用。
type stubPromotionRepo struct {
	mu         sync.Mutex
	promotions map[string]*domain.Promotion
}

func newStubPromotionRepo() *stubPromotionRepo {
	return &stubPromotionRepo{promotions: make(map[string]*domain.Promotion)}
}

func (r *stubPromotionRepo) Save(_ context.Context, p *domain.Promotion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.promotions[p.ID] = &cp
	return nil
}

func (r *stubPromotionRepo) FindByID(_ context.Context, id string) (*domain.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.promotions[id]
	if !ok {
		return nil, domain.ErrPromotionNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubPromotionRepo) FindByStatus(_ context.Context, status domain.Status) ([]*domain.Promotion, error) {
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

// stubCache 直接透传仓储，handler 测试不关心缓存行为。
type stubCache struct {
	repo *stubPromotionRepo
}

func (c *stubCache) GetPromotion(ctx context.Context, id string) (*domain.Promotion, error) {
	return c.repo.FindByID(ctx, id)
}

func (c *stubCache) GetActivePromotionIDs(ctx context.Context) ([]string, error) {
	active, err := c.repo.FindByStatus(ctx, domain.StatusActive)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(active))
	for _, p := range active {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (c *stubCache) Evict(context.Context, string) error { return nil }

type stubParticipationRepo struct{}

func (stubParticipationRepo) SaveBatch(context.Context, []*domain.PromotionParticipation) error {
	return nil
}

func (stubParticipationRepo) FindByPromotionAndUser(context.Context, string, string) (*domain.PromotionParticipation, error) {
	return nil, domain.ErrParticipationNotFound
}

func (stubParticipationRepo) FindWinners(context.Context, string) ([]*domain.PromotionParticipation, error) {
	return nil, nil
}

func newTestMux(t *testing.T) (*http.ServeMux, *stubPromotionRepo) {
	t.Helper()

	repo := newStubPromotionRepo()
	cache := &stubCache{repo: repo}
	store := adapter.NewAdmissionMemoryAdapter()

	handler := NewPromotionHandler(
		application.NewPromotionService(repo, store, cache),
		application.NewParticipationService(cache, store, application.DefaultQueueSizeMultiplier),
		application.NewParticipationQueryService(repo, stubParticipationRepo{}),
		NewPerIPLimiter(1000, 1000),
	)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux, repo
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.1:50000"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func createActivePromotion(t *testing.T, mux *http.ServeMux, stock int) string {
	t.Helper()

	now := time.Now()
	rec := doJSON(t, mux, http.MethodPost, "/promotions", application.CreatePromotionRequest{
		Name:         "launch giveaway",
		StartTime:    now.Add(-time.Minute),
		EndTime:      now.Add(time.Hour),
		TotalStock:   stock,
		RewardAmount: 1000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create promotion: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp application.PromotionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	if rec := doJSON(t, mux, http.MethodPost, "/promotions/"+resp.ID+"/start", nil); rec.Code != http.StatusOK {
		t.Fatalf("start promotion: got %d, body %s", rec.Code, rec.Body.String())
	}
	return resp.ID
}

func TestPromotionHandler(t *testing.T) {
	t.Run("create then get round trip", func(t *testing.T) {
		mux, _ := newTestMux(t)
		id := createActivePromotion(t, mux, 10)

		rec := doJSON(t, mux, http.MethodGet, "/promotions/"+id, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("get promotion: got %d", rec.Code)
		}
		var resp application.PromotionResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Status != domain.StatusActive || resp.TotalStock != 10 {
			t.Errorf("got status=%s stock=%d, want ACTIVE/10", resp.Status, resp.TotalStock)
		}
	})

	t.Run("join returns queue position", func(t *testing.T) {
		mux, _ := newTestMux(t)
		id := createActivePromotion(t, mux, 10)

		rec := doJSON(t, mux, http.MethodPost, "/promotions/"+id+"/join", joinRequest{UserID: "user-1"})
		if rec.Code != http.StatusOK {
			t.Fatalf("join: got %d, body %s", rec.Code, rec.Body.String())
		}
		var resp joinResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !resp.Success || resp.QueuePosition != 1 {
			t.Errorf("got success=%v position=%d, want true/1", resp.Success, resp.QueuePosition)
		}
	})

	t.Run("duplicate join conflicts", func(t *testing.T) {
		mux, _ := newTestMux(t)
		id := createActivePromotion(t, mux, 10)

		doJSON(t, mux, http.MethodPost, "/promotions/"+id+"/join", joinRequest{UserID: "user-1"})
		rec := doJSON(t, mux, http.MethodPost, "/promotions/"+id+"/join", joinRequest{UserID: "user-1"})
		if rec.Code != http.StatusConflict {
			t.Errorf("duplicate join: got %d, want 409", rec.Code)
		}
	})

	t.Run("full queue rejects with 429", func(t *testing.T) {
		mux, _ := newTestMux(t)
		id := createActivePromotion(t, mux, 1) // 队列上限 1*5=5

		for i := 0; i < 5; i++ {
			rec := doJSON(t, mux, http.MethodPost, "/promotions/"+id+"/join", joinRequest{UserID: fmt.Sprintf("user-%d", i)})
			if rec.Code != http.StatusOK {
				t.Fatalf("join %d: got %d", i, rec.Code)
			}
		}
		rec := doJSON(t, mux, http.MethodPost, "/promotions/"+id+"/join", joinRequest{UserID: "user-late"})
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("join over capacity: got %d, want 429", rec.Code)
		}
	})

	t.Run("unknown promotion is 404", func(t *testing.T) {
		mux, _ := newTestMux(t)

		rec := doJSON(t, mux, http.MethodPost, "/promotions/no-such/join", joinRequest{UserID: "user-1"})
		if rec.Code != http.StatusNotFound {
			t.Errorf("join unknown: got %d, want 404", rec.Code)
		}
		if rec := doJSON(t, mux, http.MethodGet, "/promotions/no-such", nil); rec.Code != http.StatusNotFound {
			t.Errorf("get unknown: got %d, want 404", rec.Code)
		}
	})

	t.Run("joining before start is 400", func(t *testing.T) {
		mux, _ := newTestMux(t)

		now := time.Now()
		rec := doJSON(t, mux, http.MethodPost, "/promotions", application.CreatePromotionRequest{
			Name:         "not started",
			StartTime:    now.Add(time.Hour),
			EndTime:      now.Add(2 * time.Hour),
			TotalStock:   10,
			RewardAmount: 1000,
		})
		var resp application.PromotionResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}

		join := doJSON(t, mux, http.MethodPost, "/promotions/"+resp.ID+"/join", joinRequest{UserID: "user-1"})
		if join.Code != http.StatusBadRequest {
			t.Errorf("join scheduled: got %d, want 400", join.Code)
		}
	})

	t.Run("ending a scheduled promotion is 400", func(t *testing.T) {
		mux, repo := newTestMux(t)

		now := time.Now()
		p, err := domain.NewPromotion("scheduled", now.Add(time.Hour), now.Add(2*time.Hour), 5, 100)
		if err != nil {
			t.Fatal(err)
		}
		if err := repo.Save(context.Background(), p); err != nil {
			t.Fatal(err)
		}

		rec := doJSON(t, mux, http.MethodPost, "/promotions/"+p.ID+"/end", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("end scheduled: got %d, want 400", rec.Code)
		}
	})

	t.Run("malformed join body is 400", func(t *testing.T) {
		mux, _ := newTestMux(t)
		id := createActivePromotion(t, mux, 10)

		req := httptest.NewRequest(http.MethodPost, "/promotions/"+id+"/join", bytes.NewBufferString("{not json"))
		req.RemoteAddr = "192.0.2.1:50000"
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("malformed body: got %d, want 400", rec.Code)
		}
	})
}
