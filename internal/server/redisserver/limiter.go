package redisserver

import (
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/time/rate"
)

// ipLimiter applies a token bucket per client IP.
type ipLimiter struct {
	limiters *xsync.MapOf[string, *limiterEntry]
	rps      rate.Limit
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

func newIPLimiter(rps float64, burst int) *ipLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ipLimiter{
		limiters: xsync.NewMapOf[string, *limiterEntry](),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// allow reports whether ip may run one more command now.
func (l *ipLimiter) allow(ip string) bool {
	now := l.now()
	e, _ := l.limiters.LoadOrCompute(ip, func() *limiterEntry {
		return &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
	})
	e.lastSeen.Store(now.UnixNano())
	return e.limiter.AllowN(now, 1)
}

// sweep drops limiters of IPs idle for longer than idle and returns how
// many were removed.
func (l *ipLimiter) sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle).UnixNano()
	removed := 0
	l.limiters.Range(func(ip string, e *limiterEntry) bool {
		if e.lastSeen.Load() < cutoff {
			l.limiters.Delete(ip)
			removed++
		}
		return true
	})
	return removed
}

// size returns the number of tracked IPs.
func (l *ipLimiter) size() int {
	return l.limiters.Size()
}
