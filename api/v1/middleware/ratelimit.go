package middleware

import (
	"strconv"

	"budgeter/internal/httpx"
	"budgeter/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimit limits requests per client IP. Limiter errors let the request
// through.
func RateLimit(limiter ratelimit.Limiter, logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			logger.WithError(err).WithField("remote_ip", ip).Warn("Rate limiter unavailable")
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(ratelimit.RetryAfterSeconds(retryAfter)))
			httpx.AbortErr(c, httpx.ErrTooManyRequests("too many attempts, please try again later"))
			return
		}
		c.Next()
	}
}
