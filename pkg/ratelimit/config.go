package ratelimit

import "time"

// Config holds rate limiter settings, loaded from the environment. Per-tier
// limits live in the tier table; only the window length is global.
type Config struct {
	WindowMillis int `env:"RATE_LIMIT_WINDOW_MS" envDefault:"60000"`
}

// Window returns the sliding window length.
func (c Config) Window() time.Duration {
	return time.Duration(c.WindowMillis) * time.Millisecond
}
