// internal/service/promotion/infrastructure/mapper.go
package infrastructure

import (
	"database/sql"

	"promo/internal/service/promotion/domain"
)

// --- 数据库模型与领域模型之间的转换 ---

func toPromotionModel(p *domain.Promotion) *PromotionModel {
	return &PromotionModel{
		ID:           p.ID,
		Name:         p.Name,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		TotalStock:   p.TotalStock,
		RewardAmount: p.RewardAmount,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toDomainPromotion(m *PromotionModel) *domain.Promotion {
	return &domain.Promotion{
		ID:           m.ID,
		Name:         m.Name,
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		TotalStock:   m.TotalStock,
		RewardAmount: m.RewardAmount,
		Status:       domain.Status(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toParticipationModel(p *domain.PromotionParticipation) *ParticipationModel {
	queuePosition := sql.NullInt64{}
	if p.IsWinner() {
		queuePosition = sql.NullInt64{Int64: p.QueuePosition, Valid: true}
	}
	return &ParticipationModel{
		ID:             p.ID,
		PromotionID:    p.PromotionID,
		UserID:         p.UserID,
		ParticipatedAt: p.ParticipatedAt,
		Status:         string(p.Status),
		QueuePosition:  queuePosition,
		IPAddress:      p.IPAddress,
		UserAgent:      p.UserAgent,
	}
}

func toDomainParticipation(m *ParticipationModel) *domain.PromotionParticipation {
	return &domain.PromotionParticipation{
		ID:             m.ID,
		PromotionID:    m.PromotionID,
		UserID:         m.UserID,
		ParticipatedAt: m.ParticipatedAt,
		Status:         domain.ParticipationStatus(m.Status),
		QueuePosition:  m.QueuePosition.Int64,
		IPAddress:      m.IPAddress,
		UserAgent:      m.UserAgent,
	}
}
