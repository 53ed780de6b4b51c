// internal/service/promotion/domain/errors.go
package domain

import "errors"

// 参与流程向调用方暴露的预期内结果，不是缺陷。
var (
	ErrPromotionNotFound     = errors.New("promotion not found")
	ErrPromotionNotAvailable = errors.New("promotion is not available for participation")
	ErrAlreadyJoined         = errors.New("user has already joined this promotion")
	ErrQueueFull             = errors.New("promotion queue is full")
	ErrParticipationNotFound = errors.New("participation record not found")
)

var (
	ErrInvalidPromotion       = errors.New("invalid promotion definition")
	ErrInvalidStateTransition = errors.New("invalid promotion state transition")
)
