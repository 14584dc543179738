package guard

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// SpamGuard tracks per-user message frequency over a sliding window and
// holds timed mutes for users that exceed the threshold. Mute entries are
// evicted lazily on the next check once expired; there is no background
// sweep goroutine.
type SpamGuard struct {
	mu           sync.Mutex
	window       time.Duration
	maxMessages  int
	muteDuration time.Duration
	messages     map[snowflake.ID][]time.Time
	mutedUntil   map[snowflake.ID]time.Time
}

// NewSpamGuard creates a spam guard. A user is classified as spamming once
// more than maxMessages of their messages fall within the trailing window.
func NewSpamGuard(window time.Duration, maxMessages int, muteDuration time.Duration) *SpamGuard {
	return &SpamGuard{
		window:       window,
		maxMessages:  maxMessages,
		muteDuration: muteDuration,
		messages:     make(map[snowflake.ID][]time.Time),
		mutedUntil:   make(map[snowflake.ID]time.Time),
	}
}

// Record appends a message timestamp to the user's window, prunes entries
// that fell out of the window, and reports whether the user is now spamming.
// Mutes are not applied here; the caller decides and calls Mute.
func (g *SpamGuard) Record(userID snowflake.ID, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	window := append(g.messages[userID], now)

	cutoff := now.Add(-g.window)
	kept := window[:0]
	for _, t := range window {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	g.messages[userID] = kept

	return len(kept) > g.maxMessages
}

// Mute suppresses the user's messages until now plus the configured mute
// duration and returns the expiry.
func (g *SpamGuard) Mute(userID snowflake.ID, now time.Time) time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()

	until := now.Add(g.muteDuration)
	g.mutedUntil[userID] = until
	return until
}

// IsMuted reports whether the user has an active mute. Expired entries are
// deleted on the way out.
func (g *SpamGuard) IsMuted(userID snowflake.ID, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	until, ok := g.mutedUntil[userID]
	if !ok {
		return false
	}
	if !now.Before(until) {
		delete(g.mutedUntil, userID)
		return false
	}
	return true
}
