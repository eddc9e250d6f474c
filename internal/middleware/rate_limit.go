package middleware

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// userLimiters hands out one token bucket per user ID
type userLimiters struct {
	mu       sync.Mutex
	limiters map[uint]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newUserLimiters(limit rate.Limit, burst int) *userLimiters {
	return &userLimiters{
		limiters: make(map[uint]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (l *userLimiters) get(userID uint) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = limiter
	}
	return limiter
}

// PerUserRateLimiter throttles an endpoint per authenticated user. It must
// run after JWTAuthMiddleware, which puts the user ID in the context.
func PerUserRateLimiter(limit rate.Limit, burst int) echo.MiddlewareFunc {
	limiters := newUserLimiters(limit, burst)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get("userID").(uint)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}
			if !limiters.get(userID).Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many confessions created, please try again later")
			}
			return next(c)
		}
	}
}
