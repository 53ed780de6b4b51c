// internal/service/promotion/domain/port/notifier.go
package port

import (
	"context"

	"promo/internal/service/promotion/domain"
)

// WinnerNotifier 向下游发奖服务发布中签事件。
// 尽力而为：发布失败只记日志，不回滚已落库的参与记录。
type WinnerNotifier interface {
	PublishWinner(ctx context.Context, event *domain.WinnerEvent) error
}
