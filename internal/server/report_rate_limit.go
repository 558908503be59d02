package server

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/sevadesk/internal/observability/logger"
	"github.com/smallbiznis/sevadesk/internal/ratelimit"
	"go.uber.org/zap"
)

type reportLimiter interface {
	Allow(ctx context.Context, client string) (*ratelimit.RateLimitResult, error)
}

// ReportRateLimit guards the routes that build a workbook on demand.
func (s *Server) ReportRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.reportLimiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		res, err := s.reportLimiter.Allow(ctx, c.ClientIP())
		if err != nil {
			logger.FromContext(ctx).Warn("report rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !res.Allowed {
			logger.FromContext(ctx).Warn("report rate limit exceeded",
				zap.String("endpoint", normalizeRateLimitEndpoint(c)),
				zap.Duration("retry_after", res.RetryAfter),
			)
			retryAfter := int(res.RetryAfter.Seconds() + 0.999)
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
