package guard

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
)

func TestSpamGuard(t *testing.T) {
	window := 60 * time.Second
	muteDuration := 60 * time.Second
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	user := snowflake.ID(100)

	t.Run("ten messages in a minute is not spam", func(t *testing.T) {
		g := NewSpamGuard(window, 10, muteDuration)
		for i := range 10 {
			spamming := g.Record(user, base.Add(time.Duration(i)*time.Second))
			assert.False(t, spamming, "message %d should not be spam", i+1)
		}
	})

	t.Run("eleventh message in a minute is spam", func(t *testing.T) {
		g := NewSpamGuard(window, 10, muteDuration)
		for i := range 10 {
			g.Record(user, base.Add(time.Duration(i)*time.Second))
		}
		assert.True(t, g.Record(user, base.Add(10*time.Second)))
	})

	t.Run("messages outside the window are pruned", func(t *testing.T) {
		g := NewSpamGuard(window, 10, muteDuration)
		for i := range 10 {
			g.Record(user, base.Add(time.Duration(i)*time.Second))
		}

		// The first few messages have aged out by now, so this is fine.
		assert.False(t, g.Record(user, base.Add(65*time.Second)))
	})

	t.Run("mute expiry boundaries", func(t *testing.T) {
		g := NewSpamGuard(window, 10, muteDuration)
		g.Mute(user, base)

		assert.True(t, g.IsMuted(user, base.Add(59*time.Second)))
		assert.False(t, g.IsMuted(user, base.Add(61*time.Second)))
	})

	t.Run("expired mute entry is evicted lazily", func(t *testing.T) {
		g := NewSpamGuard(window, 10, muteDuration)
		g.Mute(user, base)

		assert.False(t, g.IsMuted(user, base.Add(2*time.Minute)))
		assert.Empty(t, g.mutedUntil)
	})

	t.Run("mute returns the expiry time", func(t *testing.T) {
		g := NewSpamGuard(window, 10, muteDuration)
		until := g.Mute(user, base)
		assert.Equal(t, base.Add(muteDuration), until)
	})

	t.Run("users are tracked independently", func(t *testing.T) {
		g := NewSpamGuard(window, 10, muteDuration)
		for i := range 11 {
			g.Record(user, base.Add(time.Duration(i)*time.Second))
		}
		assert.False(t, g.Record(snowflake.ID(200), base))
	})
}
