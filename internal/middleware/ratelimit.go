package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"skripta.hr/forum/pkg/ratelimiter"
	"skripta.hr/forum/pkg/response"
)

// GlobalRateLimit throttles every write action per user, on top of the
// per-content-type cooldowns the services apply.
func GlobalRateLimit(rdb *redis.Client, limit time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := response.GetUserID(c)
		if err != nil {
			// unauthenticated requests are rejected later by RequireAuth
			c.Next()
			return
		}

		allowed, err := ratelimiter.CheckAndSetRateLimit(c.Request.Context(), rdb, userID, ratelimiter.ScopeGlobal, limit)
		if err != nil {
			response.ResponseError(c, err)
			c.Abort()
			return
		}

		if !allowed {
			ttl, _ := ratelimiter.GetRateLimitTTL(c.Request.Context(), rdb, userID, ratelimiter.ScopeGlobal)
			response.ResponseError(c, &ratelimiter.RateLimitError{
				Message:    "prebrzo šaljete zahtjeve, usporite",
				RetryAfter: ttl,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
