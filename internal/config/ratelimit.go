package config

import "time"

// RateLimitConfig drives the Redis token bucket in front of the API.  Each
// key starts with Capacity tokens and regains RefillTokens every
// RefillInterval.  KeyStrategy picks which of ip, user and route form the
// bucket key.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
    rl := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "trip-rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    return rl.normalized()
}

// normalized clamps nonsensical values; the TTL must outlive a few refills
// or idle buckets would reset to full.
func (rl RateLimitConfig) normalized() RateLimitConfig {
    if rl.Capacity < 1 {
        rl.Capacity = 1
    }
    if rl.RefillTokens < 1 {
        rl.RefillTokens = 1
    }
    if rl.RefillInterval <= 0 {
        rl.RefillInterval = time.Second
    }
    if minTTL := 5 * rl.RefillInterval; rl.TTL < minTTL {
        rl.TTL = minTTL
    }
    return rl
}
