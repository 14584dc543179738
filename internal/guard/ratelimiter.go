// Package guard contains the in-memory abuse-prevention state machines
// applied to every inbound command: rate limiting, spam detection with
// timed mutes, and per-command cooldowns. All state is process-lifetime
// and resets on restart.
package guard

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// RateLimiter enforces a minimum interval between accepted commands per user.
type RateLimiter struct {
	mu           sync.Mutex
	interval     time.Duration
	lastAccepted map[snowflake.ID]time.Time
}

// NewRateLimiter creates a rate limiter with the given minimum interval.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		interval:     interval,
		lastAccepted: make(map[snowflake.ID]time.Time),
	}
}

// Check reports whether the user may run a command at the given time.
// On allow it records the attempt; a rejected attempt never resets the
// window, so a user cannot push their own limit forward by spamming.
func (r *RateLimiter) Check(userID snowflake.ID, now time.Time) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	last, ok := r.lastAccepted[userID]
	if ok {
		if elapsed := now.Sub(last); elapsed < r.interval {
			return false, r.interval - elapsed
		}
	}

	r.lastAccepted[userID] = now
	return true, 0
}
