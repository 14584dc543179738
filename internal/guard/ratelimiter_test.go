package guard

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	interval := 3 * time.Second
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	user := snowflake.ID(100)

	t.Run("first command is allowed", func(t *testing.T) {
		r := NewRateLimiter(interval)
		allowed, retryAfter := r.Check(user, base)
		assert.True(t, allowed)
		assert.Zero(t, retryAfter)
	})

	t.Run("second command within interval is rejected with remaining wait", func(t *testing.T) {
		r := NewRateLimiter(interval)
		r.Check(user, base)

		allowed, retryAfter := r.Check(user, base.Add(1*time.Second))
		assert.False(t, allowed)
		assert.Equal(t, 2*time.Second, retryAfter)
	})

	t.Run("command after interval is allowed", func(t *testing.T) {
		r := NewRateLimiter(interval)
		r.Check(user, base)

		allowed, _ := r.Check(user, base.Add(interval))
		assert.True(t, allowed)
	})

	t.Run("rejection does not reset the window", func(t *testing.T) {
		r := NewRateLimiter(interval)
		r.Check(user, base)

		// Hammering during the window must not push the expiry forward.
		r.Check(user, base.Add(1*time.Second))
		r.Check(user, base.Add(2*time.Second))

		allowed, _ := r.Check(user, base.Add(interval))
		assert.True(t, allowed)
	})

	t.Run("users are limited independently", func(t *testing.T) {
		r := NewRateLimiter(interval)
		r.Check(user, base)

		allowed, _ := r.Check(snowflake.ID(200), base.Add(time.Second))
		assert.True(t, allowed)
	})
}
