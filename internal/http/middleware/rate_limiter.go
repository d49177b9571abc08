package middleware

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"project-service/internal/auth"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRetryAfter         = "Retry-After"

	msgRateLimitExceeded = "rate limit exceeded"

	writeRateLimitRPS   = 2
	writeRateLimitBurst = 10
)

// RateLimiter implements token bucket rate limiting per identity
type RateLimiter struct {
	limiters sync.Map // key -> *rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		rate:  rate.Limit(requestsPerSecond),
		burst: burst,
	}
}

// NewWriteRateLimiter is the tighter limiter for multipart submissions,
// which are the expensive requests.
func NewWriteRateLimiter() *RateLimiter {
	return NewRateLimiter(writeRateLimitRPS, writeRateLimitBurst)
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	limiter, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.rate, rl.burst))
	return limiter.(*rate.Limiter)
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Middleware keys on the admin identity when auth has already run, and on
// the client IP otherwise.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if adminID, err := auth.GetAdminID(c); err == nil {
				key = "admin:" + adminID
			}

			limiter := rl.getLimiter(key)
			c.Response().Header().Set(headerRateLimitLimit, strconv.Itoa(rl.burst))

			if !limiter.Allow() {
				c.Response().Header().Set(headerRateLimitRemaining, "0")
				c.Response().Header().Set(headerRetryAfter, "1")
				return echo.NewHTTPError(http.StatusTooManyRequests, msgRateLimitExceeded)
			}

			c.Response().Header().Set(headerRateLimitRemaining, strconv.Itoa(int(limiter.Tokens())))

			return next(c)
		}
	}
}
