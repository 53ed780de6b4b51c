// internal/service/promotion/infrastructure/adapter/cache_redis_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"promo/internal/pkg/logger"
	"promo/internal/pkg/redis"
	"promo/internal/service/promotion/domain"
)

// DefaultCacheTTL 是活动元数据缓存的存活时间。
// 调用方必须容忍这个量级的过期，时间窗口校验提供第二道独立兜底。
const DefaultCacheTTL = 5 * time.Minute

// PromotionCacheAdapter 是 port.PromotionCache 的 Redis 读穿实现，
// 未命中时回源 repository 并回填，singleflight 合并并发的回源。
type PromotionCacheAdapter struct {
	redisClient *redis.Client
	repo        domain.PromotionRepository
	ttl         time.Duration
	group       singleflight.Group
}

func NewPromotionCacheAdapter(redisClient *redis.Client, repo domain.PromotionRepository, ttl time.Duration) *PromotionCacheAdapter {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &PromotionCacheAdapter{redisClient: redisClient, repo: repo, ttl: ttl}
}

func (a *PromotionCacheAdapter) GetPromotion(ctx context.Context, promotionID string) (*domain.Promotion, error) {
	key := cacheKey(promotionID)

	payload, err := a.redisClient.GetClient().Get(ctx, key).Bytes()
	if err == nil {
		var promotion domain.Promotion
		if err := json.Unmarshal(payload, &promotion); err == nil {
			return &promotion, nil
		}
		// 脏缓存当作未命中处理
		logger.Ctx(ctx).Warn().Str("key", key).Msg("corrupt promotion cache entry, reloading")
	} else if err != goredis.Nil {
		return nil, errors.Wrap(err, "promotion cache: GET failed")
	}

	// 缓存未命中 - 回源 DB，singleflight 防止击穿
	v, err, _ := a.group.Do("promotion:"+promotionID, func() (interface{}, error) {
		promotion, err := a.repo.FindByID(ctx, promotionID)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(promotion); err == nil {
			if err := a.redisClient.GetClient().Set(ctx, key, data, a.ttl).Err(); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to populate promotion cache")
			}
		}
		return promotion, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Promotion), nil
}

// activeListEmptyMarker 表示"数据库里没有 ACTIVE 活动"这个事实本身也被缓存。
// 没有它的话，空闲期间每个 worker tick 都会穿透到数据库。
// 状态变更会主动失效列表缓存，标记不会挡住新开始的活动。
const activeListEmptyMarker = "__empty__"

func (a *PromotionCacheAdapter) GetActivePromotionIDs(ctx context.Context) ([]string, error) {
	ids, err := a.redisClient.GetClient().LRange(ctx, activeListKey, 0, -1).Result()
	if err != nil && err != goredis.Nil {
		return nil, errors.Wrap(err, "promotion cache: LRANGE failed")
	}
	if len(ids) == 1 && ids[0] == activeListEmptyMarker {
		return nil, nil
	}
	if len(ids) > 0 {
		return ids, nil
	}

	v, err, _ := a.group.Do("active-list", func() (interface{}, error) {
		active, err := a.repo.FindByStatus(ctx, domain.StatusActive)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(active))
		for i, p := range active {
			ids[i] = p.ID
		}

		payload := toInterfaceSlice(ids)
		if len(payload) == 0 {
			payload = []interface{}{activeListEmptyMarker}
		}
		pipe := a.redisClient.GetClient().Pipeline()
		pipe.RPush(ctx, activeListKey, payload...)
		pipe.Expire(ctx, activeListKey, a.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("failed to populate active promotion list cache")
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Evict 删除单活动缓存和活动列表缓存，活动状态变更时必须调用。
func (a *PromotionCacheAdapter) Evict(ctx context.Context, promotionID string) error {
	if err := a.redisClient.GetClient().Del(ctx, cacheKey(promotionID), activeListKey).Err(); err != nil {
		return errors.Wrap(err, "promotion cache: DEL failed")
	}
	logger.Ctx(ctx).Info().Str("promotion_id", promotionID).Msg("promotion cache evicted")
	return nil
}

func toInterfaceSlice(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
