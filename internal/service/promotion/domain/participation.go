// internal/service/promotion/domain/participation.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PromotionParticipation 是一次参与的持久化记录。
// 只由 resolution worker 创建，创建后不再修改。
type PromotionParticipation struct {
	ID             string
	PromotionID    string
	UserID         string
	ParticipatedAt time.Time
	Status         ParticipationStatus
	QueuePosition  int64 // 只有 WON 记录有值，等于判定时的中签序号
	IPAddress      string
	UserAgent      string
}

// NewWinner 创建一条中签记录。
func NewWinner(promotionID, userID, ipAddress, userAgent string, participatedAt time.Time, position int64) *PromotionParticipation {
	return &PromotionParticipation{
		ID:             uuid.NewString(),
		PromotionID:    promotionID,
		UserID:         userID,
		ParticipatedAt: participatedAt,
		Status:         ParticipationWon,
		QueuePosition:  position,
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
	}
}

// NewLoser 创建一条未中签记录。
func NewLoser(promotionID, userID, ipAddress, userAgent string, participatedAt time.Time) *PromotionParticipation {
	return &PromotionParticipation{
		ID:             uuid.NewString(),
		PromotionID:    promotionID,
		UserID:         userID,
		ParticipatedAt: participatedAt,
		Status:         ParticipationLost,
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
	}
}

func (p *PromotionParticipation) IsWinner() bool {
	return p.Status == ParticipationWon
}
