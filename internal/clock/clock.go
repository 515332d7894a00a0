// Package clock converts elapsed real time into simulated game time and
// derives calendar facts (hour, day, time-of-day band) from it.
package clock

import (
	"math"
	"time"
)

const (
	// DefaultMinutesPerSecond is how many game minutes pass per real second.
	DefaultMinutesPerSecond = 2.0

	// DefaultStartMinutes starts new worlds at 08:00 on day one.
	DefaultStartMinutes = 480.0

	minutesPerDay = 1440
)

// TimeOfDay is a named band of the game day.
type TimeOfDay string

const (
	Dawn      TimeOfDay = "dawn"
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Dusk      TimeOfDay = "dusk"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

// Clock accumulates simulated minutes since world creation. It has no
// relationship to the wall clock beyond the rate at which Advance is fed
// real deltas.
type Clock struct {
	minutes          float64
	minutesPerSecond float64
}

type Opt func(*Clock)

// WithRate sets how many game minutes pass per real second.
func WithRate(minutesPerSecond float64) Opt {
	return func(c *Clock) {
		c.minutesPerSecond = minutesPerSecond
	}
}

// WithStartMinutes sets the initial accumulator, in game minutes.
func WithStartMinutes(minutes float64) Opt {
	return func(c *Clock) {
		c.minutes = minutes
	}
}

func New(opts ...Opt) *Clock {
	c := &Clock{
		minutes:          DefaultStartMinutes,
		minutesPerSecond: DefaultMinutesPerSecond,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Advance adds realMillis worth of game time to the accumulator. Fractional
// minutes accumulate; nothing is rounded until a read.
func (c *Clock) Advance(realMillis float64) {
	c.minutes += realMillis / 1000 * c.minutesPerSecond
}

// GameTime returns total game minutes since world creation.
func (c *Clock) GameTime() float64 {
	return c.minutes
}

// Duration returns the accumulator as a time.Duration of game time, for
// callers that compare against duration-typed thresholds.
func (c *Clock) Duration() time.Duration {
	return time.Duration(c.minutes * float64(time.Minute))
}

// SetGameTime overrides the accumulator directly. Used when restoring a
// saved world.
func (c *Clock) SetGameTime(minutes float64) {
	c.minutes = minutes
}

// Hour returns the hour of the current game day, 0-23.
func (c *Clock) Hour() int {
	return int(math.Floor(math.Mod(c.minutes, minutesPerDay) / 60))
}

// Minute returns the minute of the current game hour, 0-59.
func (c *Clock) Minute() int {
	return int(math.Floor(math.Mod(c.minutes, 60)))
}

// DayNumber returns the 1-based game day.
func (c *Clock) DayNumber() int {
	return int(math.Floor(c.minutes/minutesPerDay)) + 1
}

// TimeOfDay maps the current hour onto its band.
func (c *Clock) TimeOfDay() TimeOfDay {
	hour := c.Hour()
	switch {
	case hour >= 5 && hour < 7:
		return Dawn
	case hour >= 7 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 19:
		return Dusk
	case hour >= 19 && hour < 22:
		return Evening
	default:
		return Night
	}
}
