package middlewares

import (
	"fmt"
	"gawlo/src/lib"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	rateLimitWindow = 15 * time.Minute
	rateLimitMax    = 100
)

// RateLimiter caps each client IP to rateLimitMax requests per window, with
// a Redis fixed-window counter. When Redis is down the request goes through;
// throttling is protection, not a dependency.
func RateLimiter(ctx *gin.Context) {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	key := fmt.Sprintf("ratelimit:%s", ctx.ClientIP())
	count, err := rd.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("[ratelimit] error incrementing counter: %s\n", err.Error())
		return
	}
	if count == 1 {
		rd.Expire(ctx, key, rateLimitWindow)
	}
	if count > rateLimitMax {
		ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"message": "Trop de requêtes envoyées depuis cette IP. Veuillez réessayer plus tard.",
		})
	}
}
