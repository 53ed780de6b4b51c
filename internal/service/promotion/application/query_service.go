// internal/service/promotion/application/query_service.go
package application

import (
	"context"

	"promo/internal/service/promotion/domain"
)

// ParticipationQueryService 是参与记录的查询侧，只读持久化存储。
type ParticipationQueryService struct {
	promotions     domain.PromotionRepository
	participations domain.ParticipationRepository
}

func NewParticipationQueryService(promotions domain.PromotionRepository, participations domain.ParticipationRepository) *ParticipationQueryService {
	return &ParticipationQueryService{promotions: promotions, participations: participations}
}

// GetParticipationResult 查询单个用户的参与结果。
func (s *ParticipationQueryService) GetParticipationResult(ctx context.Context, promotionID, userID string) (*ParticipationResultResponse, error) {
	if _, err := s.promotions.FindByID(ctx, promotionID); err != nil {
		return nil, err
	}

	participation, err := s.participations.FindByPromotionAndUser(ctx, promotionID, userID)
	if err != nil {
		return nil, err
	}

	return &ParticipationResultResponse{
		PromotionID:    participation.PromotionID,
		UserID:         participation.UserID,
		Status:         participation.Status,
		QueuePosition:  participation.QueuePosition,
		ParticipatedAt: participation.ParticipatedAt,
	}, nil
}

// GetWinners 按中签序号升序返回中签名单。
func (s *ParticipationQueryService) GetWinners(ctx context.Context, promotionID string) ([]*WinnerResponse, error) {
	if _, err := s.promotions.FindByID(ctx, promotionID); err != nil {
		return nil, err
	}

	winners, err := s.participations.FindWinners(ctx, promotionID)
	if err != nil {
		return nil, err
	}

	out := make([]*WinnerResponse, 0, len(winners))
	for _, w := range winners {
		out = append(out, &WinnerResponse{
			UserID:        w.UserID,
			QueuePosition: w.QueuePosition,
			WonAt:         w.ParticipatedAt,
		})
	}
	return out, nil
}
