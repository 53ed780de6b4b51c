// internal/service/promotion/domain/port/cache.go
package port

import (
	"context"

	"promo/internal/service/promotion/domain"
)

// PromotionCache 是活动元数据的读穿缓存端口。
// 调用方必须容忍 TTL 以内的过期数据，资格校验还有时间窗口兜底。
type PromotionCache interface {
	// GetPromotion 找不到时返回 domain.ErrPromotionNotFound。
	GetPromotion(ctx context.Context, promotionID string) (*domain.Promotion, error)

	// GetActivePromotionIDs 返回 ACTIVE 状态活动的 ID 列表。
	GetActivePromotionIDs(ctx context.Context) ([]string, error)

	// Evict 删除单个活动的缓存和活动列表缓存，状态变更时必须调用。
	Evict(ctx context.Context, promotionID string) error
}
