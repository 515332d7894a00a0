package chronicle

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CompressionInterval is how much game time must pass between compressions,
// and how far back the cutoff reaches: entries older than the interval are
// folded into the recent summary.
const CompressionInterval = 30 * time.Minute

// CompressionProvider turns a block of formatted old entries into a short
// prose summary. The existing recent summary is passed along so the provider
// can write a continuation rather than a restart.
type CompressionProvider interface {
	Compress(ctx context.Context, formattedEntries, recentSummary string) (string, error)
}

// NeedsCompression reports whether enough game time has passed since the
// last compression.
func (c *Chronicle) NeedsCompression(gameTime time.Duration) bool {
	return gameTime-c.lastCompression >= CompressionInterval
}

// Compress folds entries older than the cutoff into the recent summary,
// rotating the previous recent summary into the historical one, and removes
// the folded entries from the ledger. The removed entries are returned so a
// persistence layer can archive them.
//
// When no entries predate the cutoff this is a no-op and the provider is not
// called. On provider failure nothing is mutated, so the next eligible
// interval can retry without losing or double-counting entries.
func (c *Chronicle) Compress(ctx context.Context, provider CompressionProvider, gameTime time.Duration) ([]Entry, error) {
	cutoff := gameTime - CompressionInterval

	var old, kept []Entry
	for _, e := range c.entries {
		if e.GameTime < cutoff {
			old = append(old, e)
		} else {
			kept = append(kept, e)
		}
	}

	if len(old) == 0 {
		return nil, nil
	}

	var lines []string
	for _, e := range old {
		lines = append(lines, formatEntry(e))
	}

	summary, err := provider.Compress(ctx, strings.Join(lines, "\n"), c.RecentSummary)
	if err != nil {
		return nil, fmt.Errorf("compressing %d chronicle entries: %w", len(old), err)
	}

	if c.RecentSummary != "" {
		if c.HistoricalSummary != "" {
			c.HistoricalSummary += "\n\n" + c.RecentSummary
		} else {
			c.HistoricalSummary = c.RecentSummary
		}
	}
	c.RecentSummary = summary
	c.entries = kept
	c.lastCompression = gameTime

	return old, nil
}

// LastCompression returns the game time of the most recent successful
// compression.
func (c *Chronicle) LastCompression() time.Duration {
	return c.lastCompression
}

// SetLastCompression restores the compression watermark when loading a
// saved world.
func (c *Chronicle) SetLastCompression(gameTime time.Duration) {
	c.lastCompression = gameTime
}
