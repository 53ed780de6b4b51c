// internal/service/promotion/application/dto.go
package application

import (
	"time"

	"promo/internal/service/promotion/domain"
)

// CreatePromotionRequest 是创建活动的入参。
type CreatePromotionRequest struct {
	Name         string    `json:"name"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	TotalStock   int       `json:"totalStock"`
	RewardAmount int64     `json:"rewardAmount"`
}

// PromotionResponse 是活动信息的出参。
type PromotionResponse struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	StartTime    time.Time     `json:"startTime"`
	EndTime      time.Time     `json:"endTime"`
	TotalStock   int           `json:"totalStock"`
	RewardAmount int64         `json:"rewardAmount"`
	Status       domain.Status `json:"status"`
}

func toPromotionResponse(p *domain.Promotion) *PromotionResponse {
	return &PromotionResponse{
		ID:           p.ID,
		Name:         p.Name,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		TotalStock:   p.TotalStock,
		RewardAmount: p.RewardAmount,
		Status:       p.Status,
	}
}

// JoinResult 是参与成功的应答。QueuePosition 是入队时的估算排位，
// 最终名次由 worker 判定，可能与估算不同。
type JoinResult struct {
	QueuePosition int64 `json:"queuePosition"`
}

// PromotionStatusResponse 汇总一个活动的实时参与情况。
type PromotionStatusResponse struct {
	QueueLength      int64 `json:"queueLength"`
	ParticipantCount int64 `json:"participantCount"`
	WinnerCount      int64 `json:"winnerCount"`
	TotalStock       int   `json:"totalStock"`
	RemainingStock   int   `json:"remainingStock"`
}

// ParticipationResultResponse 是单个用户的参与结果。
type ParticipationResultResponse struct {
	PromotionID    string                     `json:"promotionId"`
	UserID         string                     `json:"userId"`
	Status         domain.ParticipationStatus `json:"status"`
	QueuePosition  int64                      `json:"queuePosition,omitempty"`
	ParticipatedAt time.Time                  `json:"participatedAt"`
}

// WinnerResponse 是中签名单里的一条。
type WinnerResponse struct {
	UserID        string    `json:"userId"`
	QueuePosition int64     `json:"queuePosition"`
	WonAt         time.Time `json:"wonAt"`
}
