// internal/service/promotion/application/promotion_service.go
package application

import (
	"context"

	"promo/internal/pkg/logger"
	"promo/internal/service/promotion/domain"
	"promo/internal/service/promotion/domain/port"
)

// PromotionService 处理活动的管理指令和现状查询。
type PromotionService struct {
	repo  domain.PromotionRepository
	store port.AdmissionStore
	cache port.PromotionCache
}

func NewPromotionService(repo domain.PromotionRepository, store port.AdmissionStore, cache port.PromotionCache) *PromotionService {
	return &PromotionService{repo: repo, store: store, cache: cache}
}

// CreatePromotion 创建一个 SCHEDULED 状态的活动。
func (s *PromotionService) CreatePromotion(ctx context.Context, req *CreatePromotionRequest) (*PromotionResponse, error) {
	promotion, err := domain.NewPromotion(req.Name, req.StartTime, req.EndTime, req.TotalStock, req.RewardAmount)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, promotion); err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("promotion_id", promotion.ID).
		Str("name", promotion.Name).
		Int("total_stock", promotion.TotalStock).
		Msg("promotion created")
	return toPromotionResponse(promotion), nil
}

// GetPromotion 查询单个活动。
func (s *PromotionService) GetPromotion(ctx context.Context, promotionID string) (*PromotionResponse, error) {
	promotion, err := s.repo.FindByID(ctx, promotionID)
	if err != nil {
		return nil, err
	}
	return toPromotionResponse(promotion), nil
}

// StartPromotion 开始活动，并使缓存失效。
func (s *PromotionService) StartPromotion(ctx context.Context, promotionID string) (*PromotionResponse, error) {
	return s.transition(ctx, promotionID, (*domain.Promotion).Start, "promotion started")
}

// EndPromotion 结束活动，并使缓存失效。
func (s *PromotionService) EndPromotion(ctx context.Context, promotionID string) (*PromotionResponse, error) {
	return s.transition(ctx, promotionID, (*domain.Promotion).End, "promotion ended")
}

func (s *PromotionService) transition(ctx context.Context, promotionID string, op func(*domain.Promotion) error, msg string) (*PromotionResponse, error) {
	promotion, err := s.repo.FindByID(ctx, promotionID)
	if err != nil {
		return nil, err
	}
	if err := op(promotion); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, promotion); err != nil {
		return nil, err
	}

	// 状态变了，旧缓存必须立刻失效
	if err := s.cache.Evict(ctx, promotionID); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("promotion_id", promotionID).
			Msg("failed to evict promotion cache")
	}

	logger.Ctx(ctx).Info().
		Str("promotion_id", promotion.ID).
		Str("name", promotion.Name).
		Msg(msg)
	return toPromotionResponse(promotion), nil
}

// GetPromotionStatus 汇总活动的实时参与情况。
func (s *PromotionService) GetPromotionStatus(ctx context.Context, promotionID string) (*PromotionStatusResponse, error) {
	promotion, err := s.repo.FindByID(ctx, promotionID)
	if err != nil {
		return nil, err
	}

	queueLength, err := s.store.QueueLength(ctx, promotionID)
	if err != nil {
		return nil, err
	}
	participantCount, err := s.store.AdmittedCount(ctx, promotionID)
	if err != nil {
		return nil, err
	}
	winnerSequence, err := s.store.WinnerSequence(ctx, promotionID)
	if err != nil {
		return nil, err
	}

	// 计数器包含落选的递增，实际中签数以 totalStock 封顶
	winnerCount := winnerSequence
	if winnerCount > int64(promotion.TotalStock) {
		winnerCount = int64(promotion.TotalStock)
	}

	remaining := promotion.TotalStock - int(winnerCount)
	if remaining < 0 {
		remaining = 0
	}

	return &PromotionStatusResponse{
		QueueLength:      queueLength,
		ParticipantCount: participantCount,
		WinnerCount:      winnerCount,
		TotalStock:       promotion.TotalStock,
		RemainingStock:   remaining,
	}, nil
}
