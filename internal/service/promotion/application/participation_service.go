// internal/service/promotion/application/participation_service.go
package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"promo/internal/pkg/logger"
	"promo/internal/service/promotion/domain"
	"promo/internal/service/promotion/domain/port"
)

// DefaultQueueSizeMultiplier 是队列上限相对名额的放大倍数。
// 故意多放人进队列，抵消下游被拒绝的请求，避免 worker 饿死。
const DefaultQueueSizeMultiplier = 5

// ParticipationService 处理参与请求的同步准入，是延迟敏感路径。
type ParticipationService struct {
	cache      port.PromotionCache
	store      port.AdmissionStore
	multiplier int
	tracer     trace.Tracer
	now        func() time.Time
}

func NewParticipationService(cache port.PromotionCache, store port.AdmissionStore, multiplier int) *ParticipationService {
	if multiplier <= 0 {
		multiplier = DefaultQueueSizeMultiplier
	}
	return &ParticipationService{
		cache:      cache,
		store:      store,
		multiplier: multiplier,
		tracer:     otel.Tracer("participation-service"),
		now:        time.Now,
	}
}

// Join 执行一次参与准入。
//
// 多个存储调用组成的序列整体不是原子的：并发请求下队列深度可能短暂
// 超过上限一个小的余量。名额不会因此超发，最终当选由中签序号裁决。
func (s *ParticipationService) Join(ctx context.Context, promotionID, userID, ipAddress, userAgent string) (*JoinResult, error) {
	ctx, span := s.tracer.Start(ctx, "participation.Join")
	defer span.End()
	span.SetAttributes(
		attribute.String("promotion.id", promotionID),
		attribute.String("user.id", userID),
	)

	// 1. 活动校验（走缓存）
	promotion, err := s.cache.GetPromotion(ctx, promotionID)
	if err != nil {
		return nil, err
	}
	if !promotion.CanParticipate(s.now()) {
		return nil, domain.ErrPromotionNotAvailable
	}

	// 2. 去重：同一个用户只有一次成功准入
	admitted, err := s.store.TryAdmit(ctx, promotionID, userID)
	if err != nil {
		return nil, err
	}
	if !admitted {
		return nil, domain.ErrAlreadyJoined
	}

	// 3. 背压：队列深度达到 totalStock * multiplier 时拒绝
	queueLength, err := s.store.QueueLength(ctx, promotionID)
	if err != nil {
		// 准入标记已写入，补偿后再失败，避免用户被永久卡在已报名集合里
		s.compensate(ctx, promotionID, userID)
		return nil, err
	}

	maxQueueDepth := int64(promotion.TotalStock) * int64(s.multiplier)
	if queueLength >= maxQueueDepth {
		s.compensate(ctx, promotionID, userID)
		span.AddEvent("queue full, admission withdrawn")
		return nil, domain.ErrQueueFull
	}

	// 4. 入队
	entry := port.AdmissionEntry{
		UserID:    userID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		JoinedAt:  s.now(),
	}
	if err := s.store.Enqueue(ctx, promotionID, entry); err != nil {
		s.compensate(ctx, promotionID, userID)
		return nil, err
	}

	position := queueLength + 1
	logger.Ctx(ctx).Info().
		Str("promotion_id", promotionID).
		Str("user_id", userID).
		Int64("position", position).
		Msg("participation admitted")

	return &JoinResult{QueuePosition: position}, nil
}

// compensate 回滚 TryAdmit 留下的准入标记。回滚失败只能记日志：
// 用户会收到拒绝但留在已报名集合里，这是已接受的局限。
func (s *ParticipationService) compensate(ctx context.Context, promotionID, userID string) {
	if err := s.store.Withdraw(ctx, promotionID, userID); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("promotion_id", promotionID).
			Str("user_id", userID).
			Msg("failed to withdraw admission after rejection")
	}
}
