// internal/service/promotion/domain/promotion.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Promotion 是先到先得活动的聚合根。
// 状态只能由管理指令推进，时间窗口是参与资格的附加条件，不驱动状态机。
type Promotion struct {
	ID           string
	Name         string
	StartTime    time.Time
	EndTime      time.Time
	TotalStock   int   // 先到先得名额，创建后不可变
	RewardAmount int64 // 中签发放的奖励额度
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewPromotion 创建一个新的 SCHEDULED 状态的活动。
func NewPromotion(name string, startTime, endTime time.Time, totalStock int, rewardAmount int64) (*Promotion, error) {
	if name == "" {
		return nil, ErrInvalidPromotion
	}
	if totalStock < 1 {
		return nil, ErrInvalidPromotion
	}
	if !endTime.After(startTime) {
		return nil, ErrInvalidPromotion
	}

	now := time.Now()
	return &Promotion{
		ID:           uuid.NewString(),
		Name:         name,
		StartTime:    startTime,
		EndTime:      endTime,
		TotalStock:   totalStock,
		RewardAmount: rewardAmount,
		Status:       StatusScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsActive 判断活动此刻是否在进行中：状态为 ACTIVE 且 now 落在 [start, end) 内。
func (p *Promotion) IsActive(now time.Time) bool {
	return p.Status == StatusActive &&
		!now.Before(p.StartTime) &&
		now.Before(p.EndTime)
}

// CanParticipate 判断此刻是否可以参与。
func (p *Promotion) CanParticipate(now time.Time) bool {
	return p.IsActive(now) && p.TotalStock > 0
}

// Start 将活动从 SCHEDULED 推进到 ACTIVE。
func (p *Promotion) Start() error {
	if p.Status != StatusScheduled {
		return ErrInvalidStateTransition
	}
	p.Status = StatusActive
	p.UpdatedAt = time.Now()
	return nil
}

// End 将活动从 ACTIVE 推进到 ENDED。
func (p *Promotion) End() error {
	if p.Status != StatusActive {
		return ErrInvalidStateTransition
	}
	p.Status = StatusEnded
	p.UpdatedAt = time.Now()
	return nil
}
