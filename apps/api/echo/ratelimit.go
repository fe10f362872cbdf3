package echoapi

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// limiters unused for this long are dropped
const limiterIdleTTL = 10 * time.Minute

var rateNowFunc = time.Now // mockable

type ipLimiter struct {
	*rate.Limiter
	lastSeen time.Time
}

// keyRateLimiter throttles registration-key access per client IP.
type keyRateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	limiters  map[string]*ipLimiter // {ip: limiter}
	lastSweep time.Time
}

// newKeyRateLimiter returns a limiter allowing `perMin` requests per minute per IP. perMin <= 0 disables it.
func newKeyRateLimiter(perMin int) *keyRateLimiter {
	if perMin <= 0 {
		return &keyRateLimiter{limit: rate.Inf}
	}
	return &keyRateLimiter{
		limit:     rate.Every(time.Minute / time.Duration(perMin)),
		burst:     perMin,
		limiters:  make(map[string]*ipLimiter),
		lastSweep: rateNowFunc(),
	}
}

func (l *keyRateLimiter) allow(ip string) bool {
	if l.limit == rate.Inf {
		return true
	}
	now := rateNowFunc()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= limiterIdleTTL {
		l.sweep(now)
	}
	lim, ok := l.limiters[ip]
	if !ok {
		lim = &ipLimiter{Limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = lim
	}
	lim.lastSeen = now
	l.mu.Unlock()

	return lim.AllowN(now, 1)
}

// sweep must be called with l.mu held.
func (l *keyRateLimiter) sweep(now time.Time) {
	for ip, lim := range l.limiters {
		if now.Sub(lim.lastSeen) >= limiterIdleTTL {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

func (l *keyRateLimiter) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if ctx.QueryParam(regKeyParam) != "" && !l.allow(ctx.RealIP()) {
				return errTooManyRequests
			}
			return next(ctx)
		}
	}
}
