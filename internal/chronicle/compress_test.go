package chronicle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

// fakeCompressor records calls and returns a canned summary or error.
type fakeCompressor struct {
	summary string
	err     error

	calls          int
	lastFormatted  string
	lastRecentText string
}

func (f *fakeCompressor) Compress(_ context.Context, formatted, recent string) (string, error) {
	f.calls++
	f.lastFormatted = formatted
	f.lastRecentText = recent
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

func TestNeedsCompression(t *testing.T) {
	c := New()

	testutil.AssertEqual(t, "at zero", c.NeedsCompression(0), false)
	testutil.AssertEqual(t, "at interval", c.NeedsCompression(CompressionInterval), true)
	testutil.AssertEqual(t, "past interval", c.NeedsCompression(CompressionInterval+time.Second), true)
}

func TestCompressFoldsOldEntries(t *testing.T) {
	c := New()
	provider := &fakeCompressor{summary: "A hero journeyed through the village."}

	c.Append(makeEntry(func(e *Entry) { e.GameTime = time.Minute; e.Summary = "Arrived at village" }))
	c.Append(makeEntry(func(e *Entry) { e.GameTime = 2 * time.Minute; e.Summary = "Met the blacksmith" }))

	now := CompressionInterval + 10*time.Minute
	c.Append(makeEntry(func(e *Entry) { e.GameTime = now; e.Summary = "Still exploring" }))

	removed, err := c.Compress(context.Background(), provider, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "removed count", len(removed), 2)
	testutil.AssertEqual(t, "remaining count", len(c.Entries()), 1)
	testutil.AssertEqual(t, "remaining summary", c.Entries()[0].Summary, "Still exploring")
	testutil.AssertEqual(t, "recent summary", c.RecentSummary, "A hero journeyed through the village.")
	testutil.AssertEqual(t, "provider calls", provider.calls, 1)
}

func TestCompressRotatesSummaries(t *testing.T) {
	c := New()
	c.RecentSummary = "Previous recent summary"
	c.HistoricalSummary = "Ancient history"
	provider := &fakeCompressor{summary: "New summary from compression"}

	c.Append(makeEntry(func(e *Entry) { e.GameTime = time.Minute; e.Summary = "Old event" }))

	now := CompressionInterval + 10*time.Minute
	if _, err := c.Compress(context.Background(), provider, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "recent", c.RecentSummary, "New summary from compression")
	testutil.AssertEqual(t, "historical", c.HistoricalSummary, "Ancient history\n\nPrevious recent summary")
	testutil.AssertEqual(t, "recent passed to provider", provider.lastRecentText, "Previous recent summary")
}

func TestCompressNoOldEntriesIsNoop(t *testing.T) {
	c := New()
	c.RecentSummary = "Untouched"
	provider := &fakeCompressor{summary: "Should not be called"}

	// One entry at game time zero, well inside the interval
	c.Append(makeEntry(func(e *Entry) { e.GameTime = 0; e.Summary = "Recent" }))

	removed, err := c.Compress(context.Background(), provider, 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "removed", len(removed), 0)
	testutil.AssertEqual(t, "provider calls", provider.calls, 0)
	testutil.AssertEqual(t, "recent summary", c.RecentSummary, "Untouched")
	testutil.AssertEqual(t, "entries", len(c.Entries()), 1)
}

func TestCompressProviderFailureMutatesNothing(t *testing.T) {
	c := New()
	c.RecentSummary = "Recent before"
	c.HistoricalSummary = "History before"
	provider := &fakeCompressor{err: errors.New("model unavailable")}

	c.Append(makeEntry(func(e *Entry) { e.GameTime = time.Minute; e.Summary = "Old event" }))

	now := CompressionInterval + 10*time.Minute
	_, err := c.Compress(context.Background(), provider, now)
	if err == nil {
		t.Fatal("expected error from failed provider")
	}

	testutil.AssertEqual(t, "entries kept", len(c.Entries()), 1)
	testutil.AssertEqual(t, "recent unchanged", c.RecentSummary, "Recent before")
	testutil.AssertEqual(t, "historical unchanged", c.HistoricalSummary, "History before")

	// A retry at the next interval is still eligible
	testutil.AssertEqual(t, "still needs compression", c.NeedsCompression(now), true)
}

func TestCompressUpdatesWatermark(t *testing.T) {
	c := New()
	provider := &fakeCompressor{summary: "Compressed"}

	c.Append(makeEntry(func(e *Entry) { e.GameTime = time.Minute }))
	now := CompressionInterval + 5*time.Minute

	testutil.AssertEqual(t, "before", c.NeedsCompression(now), true)
	if _, err := c.Compress(context.Background(), provider, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "after", c.NeedsCompression(now), false)
	testutil.AssertEqual(t, "next interval", c.NeedsCompression(now+CompressionInterval), true)
}
