// internal/service/promotion/domain/event.go
package domain

import "time"

// WinnerEvent 是中签后发布给下游发奖服务的事件。
// 至少一次投递，下游按 (promotionId, userId) 幂等消费。
type WinnerEvent struct {
	PromotionID   string    `json:"promotionId"`
	PromotionName string    `json:"promotionName"`
	UserID        string    `json:"userId"`
	RewardAmount  int64     `json:"rewardAmount"`
	QueuePosition int64     `json:"queuePosition"`
	WonAt         time.Time `json:"wonAt"`
}

// NewWinnerEvent 由一条中签记录构造事件。
func NewWinnerEvent(promotion *Promotion, participation *PromotionParticipation) *WinnerEvent {
	return &WinnerEvent{
		PromotionID:   promotion.ID,
		PromotionName: promotion.Name,
		UserID:        participation.UserID,
		RewardAmount:  promotion.RewardAmount,
		QueuePosition: participation.QueuePosition,
		WonAt:         time.Now(),
	}
}
