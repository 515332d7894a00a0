package chronicle

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-testutil"
)

func makeEntry(overrides func(*Entry)) Entry {
	e := Entry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		GameTime:  time.Second,
		Type:      EntryEvent,
		Zone:      "zone-0-0",
		Summary:   "Something happened",
	}
	if overrides != nil {
		overrides(&e)
	}
	return e
}

func TestAppendAndQuery(t *testing.T) {
	c := New()
	c.Append(makeEntry(func(e *Entry) { e.Summary = "The hero arrived" }))

	testutil.AssertEqual(t, "entry count", len(c.Entries()), 1)
	testutil.AssertEqual(t, "summary", c.Entries()[0].Summary, "The hero arrived")
}

func TestRecentEntriesInOrder(t *testing.T) {
	c := New()
	c.Append(makeEntry(func(e *Entry) { e.Summary = "First" }))
	c.Append(makeEntry(func(e *Entry) { e.Summary = "Second" }))
	c.Append(makeEntry(func(e *Entry) { e.Summary = "Third" }))

	recent := c.RecentEntries(2)
	testutil.AssertEqual(t, "recent count", len(recent), 2)
	testutil.AssertEqual(t, "first", recent[0].Summary, "Second")
	testutil.AssertEqual(t, "second", recent[1].Summary, "Third")
}

func TestDrainUnsaved(t *testing.T) {
	c := New()
	c.Append(makeEntry(nil))
	c.Append(makeEntry(nil))

	testutil.AssertEqual(t, "first drain", len(c.DrainUnsaved()), 2)
	testutil.AssertEqual(t, "second drain", len(c.DrainUnsaved()), 0)

	// The ledger itself is untouched
	testutil.AssertEqual(t, "entries", len(c.Entries()), 2)
}

func TestEntriesByType(t *testing.T) {
	c := New()
	c.Append(makeEntry(func(e *Entry) { e.Type = EntryConversation; e.Summary = "Talked to guard" }))
	c.Append(makeEntry(func(e *Entry) { e.Type = EntryEvent; e.Summary = "Storm began" }))
	c.Append(makeEntry(func(e *Entry) { e.Type = EntryPlayerAction; e.Summary = "Opened door" }))
	c.Append(makeEntry(func(e *Entry) { e.Type = EntryConversation; e.Summary = "Talked to merchant" }))

	testutil.AssertEqual(t, "conversations", len(c.EntriesByType(EntryConversation)), 2)
}

func TestEntriesByZone(t *testing.T) {
	c := New()
	c.Append(makeEntry(func(e *Entry) { e.Zone = "zone-0-0" }))
	c.Append(makeEntry(func(e *Entry) { e.Zone = "zone-1-0" }))
	c.Append(makeEntry(func(e *Entry) { e.Zone = "zone-0-0" }))

	testutil.AssertEqual(t, "village entries", len(c.EntriesByZone("zone-0-0")), 2)
}

func TestRecentPlayerActions(t *testing.T) {
	c := New()
	c.Append(makeEntry(func(e *Entry) { e.Type = EntryPlayerAction; e.Summary = "Walked north" }))
	c.Append(makeEntry(func(e *Entry) { e.Type = EntryEvent; e.Summary = "Rain started" }))
	c.Append(makeEntry(func(e *Entry) { e.Type = EntryPlayerAction; e.Summary = "Opened chest" }))
	c.Append(makeEntry(func(e *Entry) { e.Type = EntryPlayerAction; e.Summary = "Talked to NPC" }))

	actions := c.RecentPlayerActions(2)
	testutil.AssertEqual(t, "action count", len(actions), 2)
	testutil.AssertEqual(t, "first", actions[0].Summary, "Opened chest")
	testutil.AssertEqual(t, "second", actions[1].Summary, "Talked to NPC")
}

func TestContextWindow(t *testing.T) {
	c := New()
	c.HistoricalSummary = "Long ago, the kingdom fell."
	c.RecentSummary = "A stranger arrived at dawn."
	c.Append(makeEntry(func(e *Entry) { e.Summary = "The tavern door creaked open" }))

	ctx := c.ContextWindow(2000)
	for _, want := range []string{
		"## World History",
		"Long ago, the kingdom fell.",
		"## Recent Events",
		"A stranger arrived at dawn.",
		"The tavern door creaked open",
	} {
		if !strings.Contains(ctx, want) {
			t.Errorf("context window missing %q:\n%s", want, ctx)
		}
	}
}

func TestContextWindowThreads(t *testing.T) {
	c := New()
	c.AddThread("mystery", "Who stole the crown?", 7)
	c.AddThread("romance", "The innkeeper's daughter", DefaultTension)

	ctx := c.ContextWindow(2000)
	if !strings.Contains(ctx, "## Active Threads") {
		t.Fatalf("missing threads section:\n%s", ctx)
	}
	if !strings.Contains(ctx, "Who stole the crown? (tension: 7/10)") {
		t.Errorf("missing mystery thread:\n%s", ctx)
	}
	if !strings.Contains(ctx, "The innkeeper's daughter (tension: 3/10)") {
		t.Errorf("missing romance thread:\n%s", ctx)
	}
}

func TestContextWindowBudget(t *testing.T) {
	c := New()
	for i := 0; i < 100; i++ {
		n := i
		c.Append(makeEntry(func(e *Entry) {
			e.Summary = fmt.Sprintf("Event number %d with a long description that takes up space", n)
		}))
	}

	small := c.ContextWindow(200)
	large := c.ContextWindow(5000)
	if len(small) >= len(large) {
		t.Errorf("small budget (%d chars) not smaller than large (%d chars)", len(small), len(large))
	}

	// The newest entry survives the budget squeeze
	if !strings.Contains(small, "Event number 99") {
		t.Errorf("newest entry missing from tight window:\n%s", small)
	}
}

func TestContextWindowOmitsEmptySections(t *testing.T) {
	c := New()
	ctx := c.ContextWindow(2000)

	for _, header := range []string{"## World History", "## Recent Events", "## Active Threads"} {
		if strings.Contains(ctx, header) {
			t.Errorf("empty section %q should be omitted:\n%s", header, ctx)
		}
	}
}

func TestThreadLifecycle(t *testing.T) {
	c := New()
	thread := c.AddThread("mystery", "Who is the masked stranger?", DefaultTension)

	testutil.AssertEqual(t, "id", thread.ID, "mystery")
	testutil.AssertEqual(t, "summary", thread.Summary, "Who is the masked stranger?")
	testutil.AssertEqual(t, "active", thread.Active, true)
	testutil.AssertEqual(t, "tension", thread.Tension, 3)
	testutil.AssertEqual(t, "entries", len(thread.Entries), 0)
}

func TestAddThreadFirstWriteWins(t *testing.T) {
	c := New()
	first := c.AddThread("mystery", "Original summary", DefaultTension)
	second := c.AddThread("mystery", "Different summary", 9)

	if first != second {
		t.Fatal("duplicate add should return existing thread")
	}
	testutil.AssertEqual(t, "summary", second.Summary, "Original summary")
	testutil.AssertEqual(t, "active threads", len(c.ActiveThreads()), 1)
}

func TestThreadTensionClamped(t *testing.T) {
	c := New()
	c.AddThread("crisis", "The dam is breaking!", 5)

	c.UpdateThreadTension("crisis", 3)
	testutil.AssertEqual(t, "raised", c.Thread("crisis").Tension, 8)

	c.UpdateThreadTension("crisis", 5)
	testutil.AssertEqual(t, "clamped high", c.Thread("crisis").Tension, 10)

	c.UpdateThreadTension("crisis", -15)
	testutil.AssertEqual(t, "clamped low", c.Thread("crisis").Tension, 0)

	// Creation clamps too
	c.AddThread("over", "Too hot", 14)
	testutil.AssertEqual(t, "clamped on create", c.Thread("over").Tension, 10)
}

func TestResolvedThreadStaysAtZero(t *testing.T) {
	c := New()
	c.AddThread("quest", "Find the lost sword", 7)
	c.ResolveThread("quest")

	thread := c.Thread("quest")
	testutil.AssertEqual(t, "active", thread.Active, false)
	testutil.AssertEqual(t, "tension", thread.Tension, 0)
	testutil.AssertEqual(t, "active threads", len(c.ActiveThreads()), 0)

	c.UpdateThreadTension("quest", 3)
	testutil.AssertEqual(t, "tension after update", thread.Tension, 0)
}

func TestUpdateThreadSummary(t *testing.T) {
	c := New()
	c.AddThread("evolving", "Initial mystery", DefaultTension)
	c.UpdateThreadSummary("evolving", "The mystery deepens")

	testutil.AssertEqual(t, "summary", c.Thread("evolving").Summary, "The mystery deepens")
}

func TestAppendLinksEntriesToThreads(t *testing.T) {
	c := New()
	c.AddThread("mystery", "The missing ring", DefaultTension)

	c.Append(makeEntry(func(e *Entry) {
		e.ID = "entry-1"
		e.Summary = "Found a clue"
		e.Threads = []string{"mystery"}
	}))

	thread := c.Thread("mystery")
	testutil.AssertEqual(t, "linked entries", len(thread.Entries), 1)
	testutil.AssertEqual(t, "entry id", thread.Entries[0], "entry-1")
}

func TestAppendIgnoresUnknownThreads(t *testing.T) {
	c := New()
	c.Append(makeEntry(func(e *Entry) { e.Threads = []string{"nonexistent"} }))

	testutil.AssertEqual(t, "entries", len(c.Entries()), 1)
	testutil.AssertEqual(t, "threads", len(c.Threads()), 0)
}
