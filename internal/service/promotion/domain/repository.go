// internal/service/promotion/domain/repository.go
package domain

import "context"

// PromotionRepository 定义了活动聚合的持久化接口。
// 它位于领域层，由基础设施层实现。
type PromotionRepository interface {
	Save(ctx context.Context, promotion *Promotion) error

	// FindByID 找不到时返回 ErrPromotionNotFound。
	FindByID(ctx context.Context, id string) (*Promotion, error)

	FindByStatus(ctx context.Context, status Status) ([]*Promotion, error)
}

// ParticipationRepository 定义了参与记录的持久化接口。
// resolution worker 是唯一的写入方。
type ParticipationRepository interface {
	// SaveBatch 在一次持久化写入中落库整个批次。
	SaveBatch(ctx context.Context, batch []*PromotionParticipation) error

	// FindByPromotionAndUser 找不到时返回 ErrParticipationNotFound。
	FindByPromotionAndUser(ctx context.Context, promotionID, userID string) (*PromotionParticipation, error)

	// FindWinners 按中签序号升序返回某个活动的全部中签记录。
	FindWinners(ctx context.Context, promotionID string) ([]*PromotionParticipation, error)
}
