package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	apperrors "carteira/internal/errors"
	"carteira/internal/logger"
)

// NewIPLimiter builds an in-memory limiter from a formatted rate such as "20-M".
func NewIPLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", formatted, err)
	}
	return limiter.New(memory.NewStore(), rate), nil
}

// RateLimit rejects clients that exceed the limiter's rate, keyed by IP.
func RateLimit(limiterInstance *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		context, err := limiterInstance.Get(c.Request.Context(), ip)
		if err != nil {
			logger.Get().Errorw("rate limit lookup failed", "ip", ip, "error", err)
			abortWithError(c, apperrors.ErrInternalServer)
			return
		}

		if context.Reached {
			logger.Get().Warnw("rate limit exceeded",
				"ip", ip,
				"limit", context.Limit,
				"path", c.Request.URL.Path,
			)
			abortWithError(c, apperrors.ErrRateLimited)
			return
		}

		c.Next()
	}
}
