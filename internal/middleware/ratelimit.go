package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pdfsummarizer/core/internal/pkg/response"
	"go.uber.org/zap"
)

const rateLimitWindow = time.Minute

// Counter is a fixed-window counter, normally pkg/redis.Client.
type Counter interface {
	CountInWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit allows at most perMinute requests per client IP in each one-minute window.
// A counter error lets the request through.
func RateLimit(counter Counter, perMinute int, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if counter == nil || perMinute <= 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		now := time.Now()
		window := now.Unix() / int64(rateLimitWindow.Seconds())
		key := fmt.Sprintf("docsum:rate_limit:%s:%d", ip, window)

		count, err := counter.CountInWindow(c.Request.Context(), key, rateLimitWindow)
		if err != nil {
			log.Warn("rate limit counter unavailable", zap.Error(err))
			c.Next()
			return
		}

		if count > int64(perMinute) {
			retryAfter := int(rateLimitWindow.Seconds()) - int(now.Unix()%int64(rateLimitWindow.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.TooManyRequests(c, "Too many uploads, please slow down")
			return
		}

		c.Next()
	}
}
