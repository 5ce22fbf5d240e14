package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps decisions so tests can freeze time via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for decisions. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

func now() time.Time {
	return clock.Now().UTC()
}
