package viewer

import "time"

// Clock measures frame time and holds the loop to a frame rate.
type Clock struct {
	period time.Duration
	start  time.Time
	last   time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewClock returns a clock limiting to fps frames per second; fps <= 0 means no limit.
func NewClock(fps int) *Clock {
	return newClock(fps, time.Now, time.Sleep)
}

func newClock(fps int, now func() time.Time, sleep func(time.Duration)) *Clock {
	c := &Clock{now: now, sleep: sleep}
	if fps > 0 {
		c.period = time.Second / time.Duration(fps)
	}
	c.start = now()
	c.last = c.start
	return c
}

// Tick waits out the rest of the frame period and returns the seconds since
// the previous tick, including the wait.
func (c *Clock) Tick() float32 {
	elapsed := c.now().Sub(c.last)
	if elapsed < c.period {
		c.sleep(c.period - elapsed)
	}
	now := c.now()
	dt := now.Sub(c.last)
	c.last = now
	return float32(dt.Seconds())
}

// Elapsed returns seconds since the clock was created, as of the last tick.
func (c *Clock) Elapsed() float32 {
	return float32(c.last.Sub(c.start).Seconds())
}

// Period returns the frame period, zero when unlimited.
func (c *Clock) Period() time.Duration {
	return c.period
}
