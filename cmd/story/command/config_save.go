package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

// SaveConfig controls the checkpoint database and the optional archive of
// compressed-out chronicle entries.
type SaveConfig struct {
	Path       string `json:"path"`
	ArchiveDir string `json:"archive_dir"`
	Interval   string `json:"interval"`
}

func (c *SaveConfig) Validate() error {
	el := errors.NewErrorList()

	if c.Path == "" {
		el.Add(fmt.Errorf("save path is required"))
	}
	if c.Interval != "" {
		_, err := time.ParseDuration(c.Interval)
		if err != nil {
			el.Add(fmt.Errorf("parsing save interval: %w", err))
		}
	}

	return el.Err()
}
