package flags

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/simsonbaroi/OrionAiTesting/pkg/cache"
	"github.com/simsonbaroi/OrionAiTesting/pkg/cache/compressed"
	"github.com/simsonbaroi/OrionAiTesting/pkg/cache/redis"
)

// CacheFlags holds caching configuration.
type CacheFlags struct {
	RedisURL string
}

func NewCacheFlags() *CacheFlags {
	return &CacheFlags{}
}

func (f *CacheFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.RedisURL,
		"redis-url",
		os.Getenv("REDIS_URL"),
		"Redis URL for caching API responses")
}

// GetCacheClient returns a compressed redis cache, or nil when no redis URL
// is configured; callers treat a nil cache as "skip caching".
func (f *CacheFlags) GetCacheClient() (cache.Cache, error) {
	if f.RedisURL != "" {
		redisCache, err := redis.NewRedisCache(f.RedisURL)
		if err != nil {
			return nil, err
		}
		return compressed.NewCompressedCache(redisCache), nil
	}

	return nil, nil
}
