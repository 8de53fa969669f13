package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps lookup events. Tests freeze it with SetClock.
var clock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the time source. Pass nil to go back to wall time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}

// Now reports the current time according to the package clock.
func Now() time.Time {
	return clock.Now()
}

// Since reports the time elapsed on the package clock since t.
func Since(t time.Time) time.Duration {
	return clock.Since(t)
}
