// internal/service/promotion/domain/status.go
package domain

// Status 定义了活动的生命周期状态
type Status string

const (
	StatusScheduled Status = "SCHEDULED" // 已创建，未开始
	StatusActive    Status = "ACTIVE"    // 进行中，可参与
	StatusEnded     Status = "ENDED"     // 已结束
)

// ParticipationStatus 是参与记录的最终结果
type ParticipationStatus string

const (
	ParticipationWon  ParticipationStatus = "WON"
	ParticipationLost ParticipationStatus = "LOST"
)
