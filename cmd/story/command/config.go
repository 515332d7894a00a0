package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval string        `json:"tick_interval"`
	Nats         NatsConfig    `json:"nats"`
	AI           AIConfig      `json:"ai"`
	Storage      StorageConfig `json:"storage"`
	Save         SaveConfig    `json:"save"`
	World        WorldConfig   `json:"world"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < time.Second {
			el.Add(fmt.Errorf("tick_interval must be at least 1 second"))
		}
	}

	el.Add(c.Nats.Validate())
	el.Add(c.AI.Validate())
	el.Add(c.Storage.Validate())
	el.Add(c.Save.Validate())
	el.Add(c.World.Validate())

	return el.Err()
}
