// internal/service/promotion/domain/port/admission.go
package port

import (
	"context"
	"time"
)

// AdmissionEntry 是进入等待队列的一条报名数据。
type AdmissionEntry struct {
	UserID    string    `json:"userId"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// AdmissionStore 是参与准入的出站端口：每个活动一条 FIFO 等待队列、
// 一个已报名用户集合和一个中签序号计数器。
//
// 每个方法单独保证原子性；Join 流程中多个调用组成的序列整体上不是原子的，
// 队列深度可能短暂超出上限，这是刻意的取舍——名额的正确性由中签序号保证，
// 队列上限只是软性的背压阀。
type AdmissionStore interface {
	// TryAdmit 原子地把 userID 加入已报名集合，首次加入返回 true。
	TryAdmit(ctx context.Context, promotionID, userID string) (bool, error)

	// Withdraw 把 userID 从已报名集合移除，仅用于补偿被拒绝的入队。
	// 对不存在的 userID 调用是安全的。
	Withdraw(ctx context.Context, promotionID, userID string) error

	// Enqueue 追加到等待队列尾部。
	Enqueue(ctx context.Context, promotionID string, entry AdmissionEntry) error

	// QueueLength 返回当前队列深度；只是参考值，读完即可能过期。
	QueueLength(ctx context.Context, promotionID string) (int64, error)

	// Dequeue 原子地弹出队头，队列为空时返回 (nil, nil)。
	Dequeue(ctx context.Context, promotionID string) (*AdmissionEntry, error)

	// IncrementWinnerSequence 原子地递增并返回中签序号计数器。
	// 返回值在该活动的所有递增中全局唯一且严格递增。
	IncrementWinnerSequence(ctx context.Context, promotionID string) (int64, error)

	// WinnerSequence 返回计数器当前值，从未递增过时为 0。
	WinnerSequence(ctx context.Context, promotionID string) (int64, error)

	// AdmittedCount 返回已报名集合的大小。
	AdmittedCount(ctx context.Context, promotionID string) (int64, error)
}
