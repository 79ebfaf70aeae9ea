package common

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/homequest/backend/pkg/xcontext"
	"github.com/homequest/backend/pkg/xredis"

	"github.com/puzpuzpuz/xsync"
)

type RateLimiter interface {
	// Allow reports whether the request identified by key is still in its
	// quota of the current window.
	Allow(ctx context.Context, key string) bool
}

type window struct {
	mutex sync.Mutex
	start time.Time
	count int
}

type rateLimiter struct {
	prefix      string
	limit       int
	duration    time.Duration
	redisClient xredis.Client

	// windows is used when redis is not configured or not reachable.
	windows *xsync.MapOf[string, *window]
	now     func() time.Time

	sweepMutex sync.Mutex
	lastSweep  time.Time
}

// NewRateLimiter counts requests in fixed windows. If redisClient is nil, the
// counters are kept in memory of this process.
func NewRateLimiter(prefix string, limit int, duration time.Duration, redisClient xredis.Client) *rateLimiter {
	return &rateLimiter{
		prefix:      prefix,
		limit:       limit,
		duration:    duration,
		redisClient: redisClient,
		windows:     xsync.NewMapOf[*window](),
		now:         time.Now,
	}
}

func (r *rateLimiter) Allow(ctx context.Context, key string) bool {
	if r.limit <= 0 {
		return true
	}

	if r.redisClient != nil {
		count, err := r.redisClient.IncrWithTTL(ctx, r.redisKey(key), r.duration)
		if err == nil {
			return count <= int64(r.limit)
		}

		xcontext.Logger(ctx).Warnf("Cannot increase rate limit counter, fallback to memory: %v", err)
	}

	return r.allowInMemory(key)
}

func (r *rateLimiter) allowInMemory(key string) bool {
	r.sweep()

	w, _ := r.windows.LoadOrStore(key, &window{start: r.now()})

	w.mutex.Lock()
	defer w.mutex.Unlock()

	now := r.now()
	if now.Sub(w.start) >= r.duration {
		w.start = now
		w.count = 0
	}

	w.count++
	return w.count <= r.limit
}

// sweep drops expired windows at most once per window duration, so clients
// which stopped sending requests do not stay in memory.
func (r *rateLimiter) sweep() {
	r.sweepMutex.Lock()
	defer r.sweepMutex.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) < r.duration {
		return
	}
	r.lastSweep = now

	r.windows.Range(func(key string, w *window) bool {
		w.mutex.Lock()
		expired := now.Sub(w.start) >= r.duration
		w.mutex.Unlock()

		if expired {
			r.windows.Delete(key)
		}
		return true
	})
}

func (r *rateLimiter) redisKey(key string) string {
	return fmt.Sprintf("ratelimit:%s:%s", r.prefix, key)
}
