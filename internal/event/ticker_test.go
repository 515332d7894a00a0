package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-story/internal/chronicle"
	"github.com/pixil98/go-story/internal/world"
)

type fakeProvider struct {
	events []GameEvent
	err    error
	calls  int

	// onTick, when set, runs inside the provider call. Lets tests poke the
	// ticker while a tick is in flight.
	onTick func()
}

func (f *fakeProvider) TickEvents(_ context.Context, _ TickContext) ([]GameEvent, error) {
	f.calls++
	if f.onTick != nil {
		f.onTick()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTickerFiresAtInterval(t *testing.T) {
	provider := &fakeProvider{events: []GameEvent{{ID: "e1"}}}
	ticker := NewTicker(provider, 10*time.Minute, discardLogger())

	events, err := ticker.Update(context.Background(), 9*time.Minute, TickContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "before interval", len(events), 0)
	testutil.AssertEqual(t, "provider not called", provider.calls, 0)

	events, err = ticker.Update(context.Background(), time.Minute, TickContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "at interval", len(events), 1)
	testutil.AssertEqual(t, "provider called", provider.calls, 1)
	testutil.AssertEqual(t, "timer reset", ticker.Remaining(), 10*time.Minute)
}

func TestTickerRejectsReentrantUpdate(t *testing.T) {
	provider := &fakeProvider{events: []GameEvent{{ID: "outer"}}}
	ticker := NewTicker(provider, 10*time.Minute, discardLogger())

	var innerEvents []GameEvent
	provider.onTick = func() {
		// A reentrant update is rejected and its delta dropped.
		innerEvents, _ = ticker.Update(context.Background(), time.Hour, TickContext{})
	}

	events, err := ticker.Update(context.Background(), 10*time.Minute, TickContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "outer events", len(events), 1)
	testutil.AssertEqual(t, "inner events", len(innerEvents), 0)
	testutil.AssertEqual(t, "provider calls", provider.calls, 1)
	// The rejected call neither reset nor decremented the countdown.
	testutil.AssertEqual(t, "remaining", ticker.Remaining(), 10*time.Minute)
}

func TestTickerProviderFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("model unavailable")}
	ticker := NewTicker(provider, 10*time.Minute, discardLogger())

	events, err := ticker.Update(context.Background(), 10*time.Minute, TickContext{})
	if err == nil {
		t.Fatal("expected error")
	}
	testutil.AssertEqual(t, "events", len(events), 0)

	// The guard is released and the timer reset, so the next interval
	// retries normally.
	provider.err = nil
	provider.events = []GameEvent{{ID: "recovered"}}
	events, err = ticker.Update(context.Background(), 10*time.Minute, TickContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "recovered events", len(events), 1)
}

func TestTickerZeroIntervalGetsDefault(t *testing.T) {
	ticker := NewTicker(&fakeProvider{}, 0, discardLogger())
	testutil.AssertEqual(t, "default", ticker.Remaining(), DefaultTickInterval)
}

func newProcessFixture() (*world.State, *chronicle.Chronicle, *Bus) {
	s := world.NewState("world-1", nil, discardLogger())
	s.RegisterZone(&world.Zone{ID: "zone-0-0"})
	s.RegisterCharacter(&world.Character{
		ID:    "guard",
		State: world.CharacterState{CurrentZone: "zone-0-0"},
	})
	s.ClearDirty()
	return s, chronicle.New(), NewBus()
}

func TestProcessTickEventsAppliesAndAnnounces(t *testing.T) {
	state, chron, bus := newProcessFixture()
	ticker := NewTicker(&fakeProvider{}, 10*time.Minute, discardLogger())

	var recorded []chronicle.Entry
	var triggered []GameEvent
	var ticks int
	Subscribe(bus, func(m EntryRecorded) { recorded = append(recorded, m.Entry) })
	Subscribe(bus, func(m EventTriggered) { triggered = append(triggered, m.Event) })
	Subscribe(bus, func(WorldTicked) { ticks++ })

	mood := "uneasy"
	events := []GameEvent{
		{
			ID:           "e1",
			Significance: SignificanceMinor,
			Description:  "The guard shifts nervously.",
			Effects: []world.Effect{
				world.CharacterStateChange{CharacterID: "guard", Changes: world.StatePatch{Mood: &mood}},
			},
			ChronicleEntry: &chronicle.Entry{ID: "c1", Type: chronicle.EntryEvent, Summary: "Guard grew uneasy"},
		},
		{
			ID:           "e2",
			Significance: SignificanceAmbient,
			Description:  "Leaves rustle in the wind.",
		},
	}

	ticker.ProcessTickEvents(events, state, chron, bus, 45*time.Minute)

	testutil.AssertEqual(t, "effect applied", state.Character("guard").State.Mood, "uneasy")
	testutil.AssertEqual(t, "chronicle entries", len(chron.Entries()), 2)
	testutil.AssertEqual(t, "entries recorded", len(recorded), 2)
	testutil.AssertEqual(t, "events triggered", len(triggered), 2)
	testutil.AssertEqual(t, "world ticks", ticks, 1)
}

func TestProcessTickEventsSynthesizesEntry(t *testing.T) {
	state, chron, bus := newProcessFixture()
	ticker := NewTicker(&fakeProvider{}, 10*time.Minute, discardLogger())

	var recorded []chronicle.Entry
	Subscribe(bus, func(m EntryRecorded) { recorded = append(recorded, m.Entry) })

	// An event carrying no prepared entry is still chronicled, with its
	// description as the summary.
	ticker.ProcessTickEvents([]GameEvent{
		{ID: "e1", Significance: SignificanceAmbient, Description: "Leaves rustle."},
	}, state, chron, bus, 45*time.Minute)

	entries := chron.Entries()
	testutil.AssertEqual(t, "entry count", len(entries), 1)
	testutil.AssertEqual(t, "summary", entries[0].Summary, "Leaves rustle.")
	testutil.AssertEqual(t, "type", entries[0].Type, chronicle.EntryEvent)
	testutil.AssertEqual(t, "game time", entries[0].GameTime, 45*time.Minute)
	testutil.AssertEqual(t, "recorded", len(recorded), 1)
	if entries[0].ID == "" {
		t.Error("synthesized entry has no id")
	}
}

func TestProcessTickEventsEmptySummaryFallsBack(t *testing.T) {
	state, chron, bus := newProcessFixture()
	ticker := NewTicker(&fakeProvider{}, 10*time.Minute, discardLogger())

	ticker.ProcessTickEvents([]GameEvent{{
		ID:             "e1",
		Description:    "A dog barks in the distance.",
		ChronicleEntry: &chronicle.Entry{ID: "c1", Type: chronicle.EntryEvent},
	}}, state, chron, bus, time.Hour)

	testutil.AssertEqual(t, "summary fallback", chron.Entries()[0].Summary, "A dog barks in the distance.")
}

func TestProcessTickEventsEmptyBatchIsSilent(t *testing.T) {
	state, chron, bus := newProcessFixture()
	ticker := NewTicker(&fakeProvider{}, 10*time.Minute, discardLogger())

	var ticks int
	Subscribe(bus, func(WorldTicked) { ticks++ })

	ticker.ProcessTickEvents(nil, state, chron, bus, time.Hour)
	testutil.AssertEqual(t, "no tick announcement", ticks, 0)
}
