package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-story/internal/chronicle"
	"github.com/pixil98/go-story/internal/clock"
	"github.com/pixil98/go-story/internal/world"
)

// DefaultTickInterval is how much game time passes between provider
// consultations.
const DefaultTickInterval = 10 * time.Minute

// TickContext is the world snapshot handed to the provider when a tick
// fires.
type TickContext struct {
	GameTime   time.Duration
	TimeOfDay  clock.TimeOfDay
	Weather    string
	PlayerZone string
	Nearby     []string
	Window     string
}

// TickEventProvider decides what happens in the world when a tick fires.
type TickEventProvider interface {
	TickEvents(ctx context.Context, tc TickContext) ([]GameEvent, error)
}

// Ticker counts down game time and consults the provider each time the
// interval elapses. A tick in flight blocks further ticks: calls arriving
// while one runs are rejected outright and their delta is not banked, so a
// slow provider cannot build up a backlog of overdue ticks.
type Ticker struct {
	interval  time.Duration
	remaining time.Duration
	ticking   bool

	provider TickEventProvider
	logger   *slog.Logger
}

// NewTicker builds a ticker around a provider. A zero interval gets the
// default.
func NewTicker(provider TickEventProvider, interval time.Duration, logger *slog.Logger) *Ticker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ticker{
		interval:  interval,
		remaining: interval,
		provider:  provider,
		logger:    logger,
	}
}

// Remaining reports how much game time is left before the next tick.
func (t *Ticker) Remaining() time.Duration {
	return t.remaining
}

// Update advances the countdown by delta game time. When the countdown
// reaches zero it resets the timer and asks the provider for events. Only
// the call that initiates a tick resets the timer; a provider failure
// yields no events but still releases the guard so the next interval can
// retry.
func (t *Ticker) Update(ctx context.Context, delta time.Duration, tc TickContext) ([]GameEvent, error) {
	if t.ticking {
		return nil, nil
	}

	t.remaining -= delta
	if t.remaining > 0 {
		return nil, nil
	}

	t.ticking = true
	defer func() { t.ticking = false }()
	t.remaining = t.interval

	if t.provider == nil {
		return nil, nil
	}

	events, err := t.provider.TickEvents(ctx, tc)
	if err != nil {
		return nil, fmt.Errorf("generating tick events: %w", err)
	}
	return events, nil
}

// ProcessTickEvents applies a batch of events to the world: effects first,
// then the chronicle record, then the bus announcements. Every event is
// recorded; one without a prepared entry gets a synthesized one whose
// summary is the event's description. A non-empty batch ends with exactly
// one WorldTicked.
func (t *Ticker) ProcessTickEvents(events []GameEvent, state *world.State, chron *chronicle.Chronicle, bus *Bus, gameTime time.Duration) {
	for _, e := range events {
		for _, effect := range e.Effects {
			state.ApplyEffect(effect)
		}

		entry := e.ChronicleEntry
		if entry == nil {
			entry = &chronicle.Entry{
				ID:        uuid.New().String(),
				Timestamp: time.Now(),
				GameTime:  gameTime,
				Type:      chronicle.EntryEvent,
			}
		}
		if entry.Summary == "" {
			entry.Summary = e.Description
		}
		chron.Append(*entry)
		Publish(bus, EntryRecorded{Entry: *entry})

		Publish(bus, EventTriggered{Event: e})
		t.logger.Debug("tick event", "significance", e.Significance, "description", e.Description)
	}

	if len(events) > 0 {
		Publish(bus, WorldTicked{Events: events, GameTime: gameTime})
	}
}
