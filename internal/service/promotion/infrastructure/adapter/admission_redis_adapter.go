// internal/service/promotion/infrastructure/adapter/admission_redis_adapter.go
package adapter

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"promo/internal/pkg/logger"
	"promo/internal/pkg/redis"
	"promo/internal/service/promotion/domain/port"
)

// AdmissionRedisAdapter 是 port.AdmissionStore 的 Redis 实现。
// 队列是每个活动一个 list，去重集合是一个 set，中签序号是一个 INCR 计数器，
// 原子性完全委托给 Redis 的单命令语义，进程内不加锁。
type AdmissionRedisAdapter struct {
	redisClient *redis.Client
}

func NewAdmissionRedisAdapter(redisClient *redis.Client) *AdmissionRedisAdapter {
	return &AdmissionRedisAdapter{redisClient: redisClient}
}

func (a *AdmissionRedisAdapter) TryAdmit(ctx context.Context, promotionID, userID string) (bool, error) {
	added, err := a.redisClient.GetClient().SAdd(ctx, joinedKey(promotionID), userID).Result()
	if err != nil {
		return false, errors.Wrap(err, "admission store: SADD failed")
	}
	return added == 1, nil
}

func (a *AdmissionRedisAdapter) Withdraw(ctx context.Context, promotionID, userID string) error {
	if err := a.redisClient.GetClient().SRem(ctx, joinedKey(promotionID), userID).Err(); err != nil {
		return errors.Wrap(err, "admission store: SREM failed")
	}
	return nil
}

func (a *AdmissionRedisAdapter) Enqueue(ctx context.Context, promotionID string, entry port.AdmissionEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "admission store: marshal entry failed")
	}
	if err := a.redisClient.GetClient().RPush(ctx, queueKey(promotionID), payload).Err(); err != nil {
		return errors.Wrap(err, "admission store: RPUSH failed")
	}
	return nil
}

func (a *AdmissionRedisAdapter) QueueLength(ctx context.Context, promotionID string) (int64, error) {
	length, err := a.redisClient.GetClient().LLen(ctx, queueKey(promotionID)).Result()
	if err != nil {
		return 0, errors.Wrap(err, "admission store: LLEN failed")
	}
	return length, nil
}

// Dequeue 弹出队头。反序列化失败的脏数据记日志后跳过，继续弹下一条，
// 不让一条坏数据卡死整个队列。
func (a *AdmissionRedisAdapter) Dequeue(ctx context.Context, promotionID string) (*port.AdmissionEntry, error) {
	for {
		payload, err := a.redisClient.GetClient().LPop(ctx, queueKey(promotionID)).Bytes()
		if err == goredis.Nil {
			return nil, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "admission store: LPOP failed")
		}

		var entry port.AdmissionEntry
		if err := json.Unmarshal(payload, &entry); err != nil {
			logger.Ctx(ctx).Warn().
				Str("promotion_id", promotionID).
				Str("payload", string(payload)).
				Msg("malformed queue entry skipped")
			continue
		}
		return &entry, nil
	}
}

func (a *AdmissionRedisAdapter) IncrementWinnerSequence(ctx context.Context, promotionID string) (int64, error) {
	seq, err := a.redisClient.GetClient().Incr(ctx, winnerSeqKey(promotionID)).Result()
	if err != nil {
		return 0, errors.Wrap(err, "admission store: INCR failed")
	}
	return seq, nil
}

func (a *AdmissionRedisAdapter) WinnerSequence(ctx context.Context, promotionID string) (int64, error) {
	seq, err := a.redisClient.GetClient().Get(ctx, winnerSeqKey(promotionID)).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "admission store: GET winner sequence failed")
	}
	return seq, nil
}

func (a *AdmissionRedisAdapter) AdmittedCount(ctx context.Context, promotionID string) (int64, error) {
	count, err := a.redisClient.GetClient().SCard(ctx, joinedKey(promotionID)).Result()
	if err != nil {
		return 0, errors.Wrap(err, "admission store: SCARD failed")
	}
	return count, nil
}
