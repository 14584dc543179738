package guard

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
)

func TestCooldownRegistry(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	user := snowflake.ID(100)

	t.Run("first invocation is allowed", func(t *testing.T) {
		c := NewCooldownRegistry()
		allowed, retryAfter := c.Check(user, "roastme", time.Minute, base)
		assert.True(t, allowed)
		assert.Zero(t, retryAfter)
	})

	t.Run("invocation during cooldown is rejected", func(t *testing.T) {
		c := NewCooldownRegistry()
		c.Check(user, "roastme", time.Minute, base)

		allowed, retryAfter := c.Check(user, "roastme", time.Minute, base.Add(20*time.Second))
		assert.False(t, allowed)
		assert.Equal(t, 40*time.Second, retryAfter)
	})

	t.Run("cooldowns are independent per command", func(t *testing.T) {
		c := NewCooldownRegistry()
		c.Check(user, "nuke", 5*time.Minute, base)

		allowed, _ := c.Check(user, "roastme", time.Minute, base.Add(time.Second))
		assert.True(t, allowed)
	})

	t.Run("cooldowns are independent per user", func(t *testing.T) {
		c := NewCooldownRegistry()
		c.Check(user, "roastme", time.Minute, base)

		allowed, _ := c.Check(snowflake.ID(200), "roastme", time.Minute, base)
		assert.True(t, allowed)
	})

	t.Run("invocation after cooldown is allowed", func(t *testing.T) {
		c := NewCooldownRegistry()
		c.Check(user, "roastme", time.Minute, base)

		allowed, _ := c.Check(user, "roastme", time.Minute, base.Add(time.Minute))
		assert.True(t, allowed)
	})

	t.Run("rejection does not extend the cooldown", func(t *testing.T) {
		c := NewCooldownRegistry()
		c.Check(user, "roastme", time.Minute, base)
		c.Check(user, "roastme", time.Minute, base.Add(30*time.Second))

		allowed, _ := c.Check(user, "roastme", time.Minute, base.Add(time.Minute))
		assert.True(t, allowed)
	})
}
