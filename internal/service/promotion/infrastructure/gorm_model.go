// internal/service/promotion/infrastructure/gorm_model.go
package infrastructure

import (
	"database/sql"
	"time"
)

// PromotionModel 对应数据库中的 p_promotion 表
type PromotionModel struct {
	ID           string `gorm:"type:char(36);primaryKey"`
	Name         string `gorm:"type:varchar(255);not null"`
	StartTime    time.Time
	EndTime      time.Time
	TotalStock   int
	RewardAmount int64
	Status       string `gorm:"type:varchar(16);index;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName 指定 GORM 应该使用的表名
func (PromotionModel) TableName() string {
	return "p_promotion"
}

// ParticipationModel 对应数据库中的 p_promotion_participation 表
type ParticipationModel struct {
	ID             string `gorm:"type:char(36);primaryKey"`
	PromotionID    string `gorm:"type:char(36);uniqueIndex:uk_promotion_user;not null"`
	UserID         string `gorm:"type:varchar(64);uniqueIndex:uk_promotion_user;not null"`
	ParticipatedAt time.Time
	Status         string `gorm:"type:varchar(8);index;not null"`
	QueuePosition  sql.NullInt64
	IPAddress      string `gorm:"type:varchar(45)"`
	UserAgent      string `gorm:"type:varchar(500)"`
	CreatedAt      time.Time
}

// TableName 指定 GORM 应该使用的表名
func (ParticipationModel) TableName() string {
	return "p_promotion_participation"
}
