package guard

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

type cooldownKey struct {
	userID  snowflake.ID
	command string
}

// CooldownRegistry tracks the last invocation of each expensive command per
// user. Cooldowns are independent per command name, so being on cooldown for
// one command never blocks another.
type CooldownRegistry struct {
	mu             sync.Mutex
	lastInvocation map[cooldownKey]time.Time
}

// NewCooldownRegistry creates an empty cooldown registry.
func NewCooldownRegistry() *CooldownRegistry {
	return &CooldownRegistry{
		lastInvocation: make(map[cooldownKey]time.Time),
	}
}

// Check reports whether the user may invoke the named command given its
// cooldown duration. On allow it records the invocation; rejection leaves
// the recorded time untouched.
func (c *CooldownRegistry) Check(
	userID snowflake.ID, command string, cooldown time.Duration, now time.Time,
) (bool, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cooldownKey{userID: userID, command: command}
	if last, ok := c.lastInvocation[key]; ok {
		if elapsed := now.Sub(last); elapsed < cooldown {
			return false, cooldown - elapsed
		}
	}

	c.lastInvocation[key] = now
	return true, 0
}
