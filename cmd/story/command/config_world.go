package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

// WorldConfig names the world to resume, or the seed to start it from when
// no save exists yet.
type WorldConfig struct {
	ID   string `json:"id"`
	Seed string `json:"seed"`

	// GenSeed drives deterministic terrain; defaults to the world id.
	GenSeed string `json:"gen_seed"`

	// Tuning is an optional path to a terrain tuning file.
	Tuning string `json:"tuning"`

	// MinutesPerSecond overrides the game clock rate when positive.
	MinutesPerSecond float64 `json:"minutes_per_second"`

	// EventInterval is how much game time passes between generated world
	// ticks.
	EventInterval string `json:"event_interval"`
}

func (c *WorldConfig) Validate() error {
	el := errors.NewErrorList()

	if c.ID == "" {
		el.Add(fmt.Errorf("world id is required"))
	}
	if c.Seed == "" {
		el.Add(fmt.Errorf("world seed is required"))
	}
	if c.MinutesPerSecond < 0 {
		el.Add(fmt.Errorf("minutes_per_second must not be negative"))
	}
	if c.EventInterval != "" {
		_, err := time.ParseDuration(c.EventInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing event_interval: %w", err))
		}
	}

	return el.Err()
}
