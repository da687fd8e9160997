package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiter limits requests per client IP. With a redis client the counters are
// shared across instances, otherwise they live in process memory.
func RateLimiter(perMinute int64, client *redis.Client, log zerolog.Logger) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = 100
	}
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  perMinute,
	}

	var store limiter.Store = memory.NewStore()
	if client != nil {
		redisStore, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   "invitation_limiter",
			MaxRetry: 3,
		})
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ redis limiter store unavailable, using memory store")
		} else {
			store = redisStore
		}
	}

	return ginlimiter.NewMiddleware(limiter.New(store, rate))
}
