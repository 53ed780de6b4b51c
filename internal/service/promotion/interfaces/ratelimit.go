// internal/service/promotion/interfaces/ratelimit.go
package interfaces

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"promo/internal/pkg/logger"
)

// 超过这个时长没有请求的 IP，其令牌桶会在下一次清扫时被回收，
// 防止大量一次性客户端把 map 撑爆。
const limiterIdleTTL = 3 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PerIPLimiter 按客户端 IP 维护令牌桶，保护参与接口不被单个客户端打爆。
type PerIPLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewPerIPLimiter(perSecond float64, burst int) *PerIPLimiter {
	return &PerIPLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		idleTTL:  limiterIdleTTL,
		now:      time.Now,
	}
}

// Allow 判定某个 IP 的一次请求是否放行。
func (l *PerIPLimiter) Allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweepLocked(now)
	}
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	return entry.limiter.Allow()
}

// sweepLocked 回收闲置的令牌桶。必须在持有 mu 的情况下调用。
func (l *PerIPLimiter) sweepLocked(now time.Time) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.idleTTL {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

// Middleware 包装一个 handler，超限时返回 429。
func (l *PerIPLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.Allow(ip) {
			logger.Ctx(r.Context()).Warn().Str("ip", ip).Msg("rate limit exceeded")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
