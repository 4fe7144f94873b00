package raffle

import (
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
)

// Clock tells the raffle what time it is.
type Clock interface {
	Now() time.Time
}

type anchoredClock struct {
	mono  mclock.Clock
	start mclock.AbsTime
	base  time.Time
}

// NewClock maps the monotonic clock c onto wall time, with base corresponding
// to c's current reading. Passing an mclock.Simulated lets tests drive the
// raffle and the keeper from one clock.
func NewClock(c mclock.Clock, base time.Time) Clock {
	return &anchoredClock{mono: c, start: c.Now(), base: base}
}

// SystemClock is the wall clock.
func SystemClock() Clock {
	return NewClock(mclock.System{}, time.Now())
}

func (c *anchoredClock) Now() time.Time {
	return c.base.Add(time.Duration(c.mono.Now() - c.start))
}
