// internal/service/promotion/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"promo/internal/service/promotion/domain"
)

// GormPromotionRepository 是 domain.PromotionRepository 的 GORM 实现。
type GormPromotionRepository struct {
	db *gorm.DB
}

func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

func (r *GormPromotionRepository) Save(ctx context.Context, promotion *domain.Promotion) error {
	model := toPromotionModel(promotion)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return errors.Wrapf(err, "failed to save promotion %s", promotion.ID)
	}
	return nil
}

func (r *GormPromotionRepository) FindByID(ctx context.Context, id string) (*domain.Promotion, error) {
	var model PromotionModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPromotionNotFound
		}
		return nil, errors.Wrapf(err, "failed to find promotion %s", id)
	}
	return toDomainPromotion(&model), nil
}

func (r *GormPromotionRepository) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Promotion, error) {
	var models []*PromotionModel
	if err := r.db.WithContext(ctx).Where("status = ?", string(status)).Find(&models).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to find promotions with status %s", status)
	}

	promotions := make([]*domain.Promotion, len(models))
	for i, m := range models {
		promotions[i] = toDomainPromotion(m)
	}
	return promotions, nil
}

// GormParticipationRepository 是 domain.ParticipationRepository 的 GORM 实现。
type GormParticipationRepository struct {
	db *gorm.DB
}

func NewGormParticipationRepository(db *gorm.DB) *GormParticipationRepository {
	return &GormParticipationRepository{db: db}
}

// SaveBatch 用批量插入一次写入整个批次。
func (r *GormParticipationRepository) SaveBatch(ctx context.Context, batch []*domain.PromotionParticipation) error {
	if len(batch) == 0 {
		return nil
	}
	models := make([]*ParticipationModel, len(batch))
	for i, p := range batch {
		models[i] = toParticipationModel(p)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, len(models)).Error; err != nil {
		return errors.Wrapf(err, "failed to bulk-insert %d participations", len(models))
	}
	return nil
}

func (r *GormParticipationRepository) FindByPromotionAndUser(ctx context.Context, promotionID, userID string) (*domain.PromotionParticipation, error) {
	var model ParticipationModel
	err := r.db.WithContext(ctx).
		Where("promotion_id = ? AND user_id = ?", promotionID, userID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrParticipationNotFound
		}
		return nil, errors.Wrapf(err, "failed to find participation for user %s in promotion %s", userID, promotionID)
	}
	return toDomainParticipation(&model), nil
}

func (r *GormParticipationRepository) FindWinners(ctx context.Context, promotionID string) ([]*domain.PromotionParticipation, error) {
	var models []*ParticipationModel
	err := r.db.WithContext(ctx).
		Where("promotion_id = ? AND status = ?", promotionID, string(domain.ParticipationWon)).
		Order("queue_position ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find winners for promotion %s", promotionID)
	}

	winners := make([]*domain.PromotionParticipation, len(models))
	for i, m := range models {
		winners[i] = toDomainParticipation(m)
	}
	return winners, nil
}
