// internal/service/promotion/application/worker.go
package application

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"promo/internal/pkg/logger"
	"promo/internal/service/promotion/domain"
	"promo/internal/service/promotion/domain/port"
)

const (
	// DefaultWorkerInterval 是两次排空之间的间隔。
	DefaultWorkerInterval = time.Second
	// DefaultBatchSize 是每个活动每轮最多处理的条数。
	// 每轮只排空有限批次，积压会传导为 Join 侧的 QueueFull 背压。
	DefaultBatchSize = 100

	notifyTimeout = 5 * time.Second
)

var (
	resolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promo_worker_resolved_total",
		Help: "Participations resolved by the worker, by final status.",
	}, []string{"status"})

	persistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promo_worker_persist_failures_total",
		Help: "Batches that failed to persist durably.",
	})

	batchSizeObserved = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "promo_worker_batch_size",
		Help:    "Entries drained per promotion per tick.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8),
	})
)

// LeaderGate 是跨实例互斥的抽象，多实例部署时保证只有一个 worker 在排空。
// 为 nil 时只依赖进程内的互斥。
type LeaderGate interface {
	TryAcquire() (bool, error)
	Release() error
}

// ResolutionWorker 周期性地排空等待队列，把排队条目判定为 WON/LOST
// 并批量落库。它是参与记录的唯一写入方。
type ResolutionWorker struct {
	cache          port.PromotionCache
	participations domain.ParticipationRepository
	store          port.AdmissionStore
	notifier       port.WinnerNotifier

	interval  time.Duration
	batchSize int
	gate      LeaderGate
	tracer    trace.Tracer

	mu       sync.Mutex // 禁止 tick 重入
	cancel   context.CancelFunc
	done     chan struct{}
	notifyWG sync.WaitGroup
}

func NewResolutionWorker(
	cache port.PromotionCache,
	participations domain.ParticipationRepository,
	store port.AdmissionStore,
	notifier port.WinnerNotifier,
	interval time.Duration,
	batchSize int,
	gate LeaderGate,
) *ResolutionWorker {
	if interval <= 0 {
		interval = DefaultWorkerInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ResolutionWorker{
		cache:          cache,
		participations: participations,
		store:          store,
		notifier:       notifier,
		interval:       interval,
		batchSize:      batchSize,
		gate:           gate,
		tracer:         otel.Tracer("resolution-worker"),
	}
}

// Start 启动 worker 的定时循环。
func (w *ResolutionWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		logger.L().Info().Dur("interval", w.interval).Int("batch_size", w.batchSize).Msg("resolution worker started")
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.tick(ctx)
			}
		}
	}()
}

// Stop 停止循环并等待在途的通知发完。
func (w *ResolutionWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
	w.notifyWG.Wait()
	if w.gate != nil {
		if err := w.gate.Release(); err != nil {
			return err
		}
	}
	logger.L().Info().Msg("resolution worker stopped")
	return nil
}

// tick 处理一轮排空。TryLock 保证上一轮没结束时直接跳过，
// 同一个活动的队列绝不会被两个排空方并发消费。
func (w *ResolutionWorker) tick(ctx context.Context) {
	if !w.mu.TryLock() {
		return
	}
	defer w.mu.Unlock()

	if w.gate != nil {
		acquired, err := w.gate.TryAcquire()
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("leader gate check failed, skipping tick")
			return
		}
		if !acquired {
			return
		}
	}

	// 轮询读取 ACTIVE 活动，而不是事件订阅：判定不要求即时。
	// 活动列表走缓存，缓存失效由状态变更方负责。
	ids, err := w.cache.GetActivePromotionIDs(ctx)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to list active promotions")
		return
	}

	for _, id := range ids {
		promotion, err := w.cache.GetPromotion(ctx, id)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("promotion_id", id).Msg("failed to load promotion for resolution")
			continue
		}
		w.resolvePromotion(ctx, promotion)
	}
}

// resolvePromotion 排空单个活动的一个批次并落库。
func (w *ResolutionWorker) resolvePromotion(ctx context.Context, promotion *domain.Promotion) {
	ctx, span := w.tracer.Start(ctx, "worker.ResolvePromotion")
	defer span.End()
	span.SetAttributes(attribute.String("promotion.id", promotion.ID))

	batch := make([]*domain.PromotionParticipation, 0, w.batchSize)

	for i := 0; i < w.batchSize; i++ {
		entry, err := w.store.Dequeue(ctx, promotion.ID)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("promotion_id", promotion.ID).
				Msg("dequeue failed, aborting batch")
			break
		}
		if entry == nil {
			break // 队列已空
		}

		// 中签序号是名额的唯一裁决：按出队顺序原子递增，
		// 序号一旦发出绝不回收，后续轮次也不会复用。
		rank, err := w.store.IncrementWinnerSequence(ctx, promotion.ID)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("promotion_id", promotion.ID).
				Str("user_id", entry.UserID).
				Msg("winner sequence increment failed, entry dropped")
			break
		}

		var participation *domain.PromotionParticipation
		if rank <= int64(promotion.TotalStock) {
			participation = domain.NewWinner(promotion.ID, entry.UserID, entry.IPAddress, entry.UserAgent, entry.JoinedAt, rank)
			logger.Ctx(ctx).Info().
				Str("promotion_id", promotion.ID).
				Str("user_id", entry.UserID).
				Int64("position", rank).
				Msg("participation won")
		} else {
			participation = domain.NewLoser(promotion.ID, entry.UserID, entry.IPAddress, entry.UserAgent, entry.JoinedAt)
		}
		batch = append(batch, participation)
	}

	if len(batch) == 0 {
		return
	}
	batchSizeObserved.Observe(float64(len(batch)))

	// 序号已经消耗，落库失败不原地重试：重试无法撤销序号，
	// 丢的是审计记录而不是名额正确性。下一轮处理新批次。
	if err := w.participations.SaveBatch(ctx, batch); err != nil {
		persistFailures.Inc()
		logger.Ctx(ctx).Error().Err(err).
			Str("promotion_id", promotion.ID).
			Int("batch_size", len(batch)).
			Msg("failed to persist participation batch, entries lost")
		return
	}

	for _, p := range batch {
		resolvedTotal.WithLabelValues(string(p.Status)).Inc()
	}
	logger.Ctx(ctx).Info().
		Str("promotion_id", promotion.ID).
		Int("batch_size", len(batch)).
		Msg("participation batch persisted")

	w.notifyWinners(promotion, batch)
}

// notifyWinners 在批次落库之后异步发布中签事件。
// 发布失败不影响已落库的记录，由下游对账补偿。
func (w *ResolutionWorker) notifyWinners(promotion *domain.Promotion, batch []*domain.PromotionParticipation) {
	for _, p := range batch {
		if !p.IsWinner() {
			continue
		}
		event := domain.NewWinnerEvent(promotion, p)

		w.notifyWG.Add(1)
		go func() {
			defer w.notifyWG.Done()
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()

			if err := w.notifier.PublishWinner(ctx, event); err != nil {
				logger.Ctx(ctx).Error().Err(err).
					Str("promotion_id", event.PromotionID).
					Str("user_id", event.UserID).
					Int64("position", event.QueuePosition).
					Msg("failed to publish winner event")
				return
			}
			logger.Ctx(ctx).Info().
				Str("promotion_id", event.PromotionID).
				Str("user_id", event.UserID).
				Int64("position", event.QueuePosition).
				Msg("winner event published")
		}()
	}
}
