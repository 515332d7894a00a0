// Package chronicle is the append-only narrative ledger of a world: every
// event that happens is recorded as an entry, older entries are periodically
// folded into rolling prose summaries, and ongoing storylines are tracked as
// tension-scored narrative threads.
package chronicle

import (
	"fmt"
	"strings"
	"time"
)

// EntryType tags what kind of happening an entry records.
type EntryType string

const (
	EntryConversation EntryType = "conversation"
	EntryEvent        EntryType = "event"
	EntryPlayerAction EntryType = "player_action"
	EntryWorldChange  EntryType = "world_change"
	EntryNarration    EntryType = "narration"
)

// Entry is one record in the ledger.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	GameTime  time.Duration `json:"game_time"`
	Type      EntryType     `json:"type"`
	Zone      string        `json:"zone"`
	Summary   string        `json:"summary"`
	Details   string        `json:"details,omitempty"`

	// Characters involved, if any.
	Characters []string `json:"characters,omitempty"`

	// Threads this entry belongs to. References to unknown threads are
	// silently ignored on append.
	Threads []string `json:"threads,omitempty"`
}

// Chronicle holds the ledger, its rolling summaries, and the thread index.
// It assumes a single-writer owner; see the concurrency notes on the driver.
type Chronicle struct {
	entries []Entry

	// unsaved is the suffix of entries not yet handed to persistence.
	unsaved []Entry

	RecentSummary     string
	HistoricalSummary string

	threads []*Thread

	lastCompression time.Duration
}

func New() *Chronicle {
	return &Chronicle{}
}

// Append pushes an entry onto the ledger and the unsaved suffix, and links
// the entry into any existing threads it references.
func (c *Chronicle) Append(entry Entry) {
	c.entries = append(c.entries, entry)
	c.unsaved = append(c.unsaved, entry)

	for _, threadID := range entry.Threads {
		if t := c.Thread(threadID); t != nil {
			t.Entries = append(t.Entries, entry.ID)
		}
	}
}

// Entries returns the full ledger in append order.
func (c *Chronicle) Entries() []Entry {
	return c.entries
}

// RecentEntries returns up to n of the most recent entries, oldest first.
func (c *Chronicle) RecentEntries(n int) []Entry {
	if n >= len(c.entries) {
		return c.entries
	}
	return c.entries[len(c.entries)-n:]
}

// EntriesByType returns all entries with the given type tag, in order.
func (c *Chronicle) EntriesByType(t EntryType) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// EntriesByZone returns all entries recorded in the given zone, in order.
func (c *Chronicle) EntriesByZone(zone string) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Zone == zone {
			out = append(out, e)
		}
	}
	return out
}

// RecentPlayerActions returns up to n of the most recent player_action
// entries, oldest first.
func (c *Chronicle) RecentPlayerActions(n int) []Entry {
	actions := c.EntriesByType(EntryPlayerAction)
	if n >= len(actions) {
		return actions
	}
	return actions[len(actions)-n:]
}

// RestoreEntries replaces the ledger wholesale without touching the
// unsaved suffix. Used when loading a world from persistence.
func (c *Chronicle) RestoreEntries(entries []Entry) {
	c.entries = entries
}

// UnsavedEntries returns the entries appended since the last drain without
// clearing them. Persistence reads this, writes, and drains only once the
// write is durable, so a failed write leaves the suffix intact for the
// next attempt.
func (c *Chronicle) UnsavedEntries() []Entry {
	return c.unsaved
}

// DrainUnsaved returns the entries appended since the last drain and clears
// the unsaved suffix. The ledger itself is untouched; this is the hand-off
// point for incremental persistence.
func (c *Chronicle) DrainUnsaved() []Entry {
	unsaved := c.unsaved
	c.unsaved = nil
	return unsaved
}

// DefaultWindowBudget is the character budget callers use when they have
// no tighter constraint.
const DefaultWindowBudget = 2000

// ContextWindow formats the chronicle for inclusion in a generation prompt:
// historical summary, recent summary, then as many of the newest entries as
// fit the character budget, followed by the active threads. Sections with no
// content are omitted.
func (c *Chronicle) ContextWindow(budget int) string {
	var b strings.Builder

	if c.HistoricalSummary != "" {
		fmt.Fprintf(&b, "## World History\n%s\n\n", c.HistoricalSummary)
	}
	if c.RecentSummary != "" {
		fmt.Fprintf(&b, "## Recent Events\n%s\n\n", c.RecentSummary)
	}

	// Walk newest to oldest, keeping whatever fits, then emit in
	// chronological order so the newest entries survive the budget.
	used := b.Len()
	var keep []string
	for i := len(c.entries) - 1; i >= 0; i-- {
		line := formatEntry(c.entries[i])
		if used+len(line) > budget {
			break
		}
		used += len(line) + 1
		keep = append(keep, line)
	}
	for i := len(keep) - 1; i >= 0; i-- {
		b.WriteString(keep[i])
		b.WriteByte('\n')
	}

	if active := c.ActiveThreads(); len(active) > 0 {
		b.WriteString("## Active Threads\n")
		for _, t := range active {
			fmt.Fprintf(&b, "- %s (tension: %d/10)\n", t.Summary, t.Tension)
		}
	}

	return b.String()
}

func formatEntry(e Entry) string {
	if len(e.Characters) > 0 {
		return fmt.Sprintf("[%s] %s [%s]", e.Type, e.Summary, strings.Join(e.Characters, ", "))
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Summary)
}
