package ratelimit

import (
	"fmt"

	"github.com/mediocregopher/radix/v3"
)

// Limiter counts requests per client identity in a fixed redis window.
// Counters are shared between instances, a restart does not reset them.
type Limiter struct {
	pool       *radix.Pool
	requests   int
	windowSecs int
}

// Init constructor
func Init(pool *radix.Pool, requests, windowSecs int) *Limiter {
	return &Limiter{pool: pool, requests: requests, windowSecs: windowSecs}
}

// Allow increments the counter for the identity and reports whether the
// request fits in the current window. Fails open when redis is unavailable.
func (limiter *Limiter) Allow(identity string) bool {
	if limiter == nil || limiter.pool == nil {
		return true
	}
	key := fmt.Sprintf("ratelimit:%s", identity)
	var count int
	if err := limiter.pool.Do(radix.Cmd(&count, "INCR", key)); err != nil {
		return true
	}
	if count == 1 {
		_ = limiter.pool.Do(radix.FlatCmd(nil, "EXPIRE", key, limiter.windowSecs))
	}
	return count <= limiter.requests
}
