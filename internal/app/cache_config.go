package app

import (
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/charlesng35/memberhub/internal/cache"
)

// RedisClientConfig maps the cache section onto cache.RedisConfig. The
// address may be a plain host:port or a redis:// / rediss:// URL as handed out
// by managed providers; URL credentials and db fill only the fields left unset.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	cfg := cache.RedisConfig{
		Address:  strings.TrimSpace(c.Redis.Address),
		Username: strings.TrimSpace(c.Redis.Username),
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
	}

	if !strings.HasPrefix(cfg.Address, "redis://") && !strings.HasPrefix(cfg.Address, "rediss://") {
		return cfg
	}

	opts, err := redis.ParseURL(cfg.Address)
	if err != nil {
		// left as-is; the dial fails and bootstrap falls back to the database store
		return cfg
	}

	cfg.Address = opts.Addr
	if cfg.Username == "" {
		cfg.Username = opts.Username
	}
	if cfg.Password == "" {
		cfg.Password = opts.Password
	}
	if cfg.DB == 0 {
		cfg.DB = opts.DB
	}
	if opts.TLSConfig != nil {
		cfg.TLS = true
	}
	return cfg
}
