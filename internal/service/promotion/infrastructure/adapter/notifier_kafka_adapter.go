// internal/service/promotion/infrastructure/adapter/notifier_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"promo/internal/pkg/mq"
	"promo/internal/service/promotion/domain"
)

// WinnerKafkaAdapter 是 port.WinnerNotifier 的 Kafka 实现。
// 消息以活动 ID 作为 key，保证同一个活动的事件落在同一个分区。
type WinnerKafkaAdapter struct {
	writer *kafka.Writer
	tracer trace.Tracer
}

func NewWinnerKafkaAdapter(writer *kafka.Writer) *WinnerKafkaAdapter {
	return &WinnerKafkaAdapter{writer: writer, tracer: otel.Tracer("winner-notifier")}
}

func (a *WinnerKafkaAdapter) PublishWinner(ctx context.Context, event *domain.WinnerEvent) error {
	ctx, span := a.tracer.Start(ctx, "notifier.PublishWinner")
	defer span.End()
	span.SetAttributes(
		attribute.String("promotion.id", event.PromotionID),
		attribute.String("user.id", event.UserID),
	)

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal winner event")
	}
	if err := mq.ProduceMessage(ctx, a.writer, []byte(event.PromotionID), payload); err != nil {
		return errors.Wrap(err, "failed to produce winner event")
	}
	return nil
}
