package command

import (
	"log/slog"
	"os"

	"github.com/pixil98/go-story/internal/ai"
)

// AIConfig selects the model backing the generation providers. An empty
// api_key (and an unset ANTHROPIC_API_KEY) leaves them disabled; the world
// still runs, it just never invents anything.
type AIConfig struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

func (c *AIConfig) Validate() error {
	return nil
}

func (c *AIConfig) buildClient(logger *slog.Logger) *ai.Client {
	key := c.APIKey
	if key == "" {
		key = os.Getenv("ANTHROPIC_API_KEY")
	}
	return ai.NewClient(key, c.Model, logger)
}
