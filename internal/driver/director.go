package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-story/internal/chronicle"
	"github.com/pixil98/go-story/internal/clock"
	"github.com/pixil98/go-story/internal/consequence"
	"github.com/pixil98/go-story/internal/event"
	"github.com/pixil98/go-story/internal/save"
	"github.com/pixil98/go-story/internal/world"
	"github.com/pixil98/go-story/internal/worldgen"
)

const (
	// DefaultSaveInterval is how often a checkpoint is written, in real
	// time.
	DefaultSaveInterval = 30 * time.Second

	// nearbyRadius bounds which characters a tick prompt mentions.
	nearbyRadius = 8
)

// ConditionChecker judges whether a deferred event's trigger condition
// holds.
type ConditionChecker interface {
	Check(ctx context.Context, condition string, tc event.TickContext) (bool, error)
}

// Director is the manager that moves the world: it advances the clock,
// runs the ticker, applies queued events, folds the chronicle, and
// checkpoints state. One Director owns one world; all of its collaborators
// are touched only from the driver goroutine, which is what lets the
// chronicle and world state stay lock-free.
type Director struct {
	clock *clock.Clock
	state *world.State
	chron *chronicle.Chronicle
	queue *event.Queue
	bus   *event.Bus

	ticker    *event.Ticker
	evaluator *consequence.Evaluator

	compressor chronicle.CompressionProvider
	checker    ConditionChecker
	builder    *worldgen.Builder
	store      *save.Store
	archive    *save.Archive

	saveInterval time.Duration
	lastSave     time.Time
	lastTick     time.Time

	// lastConditionCheck is in game time; deferred conditions are
	// re-judged at most once per tick interval.
	lastConditionCheck time.Duration

	logger *slog.Logger
}

// DirectorOpt configures optional collaborators.
type DirectorOpt func(*Director)

// WithCompressor enables chronicle compression.
func WithCompressor(p chronicle.CompressionProvider) DirectorOpt {
	return func(d *Director) { d.compressor = p }
}

// WithConditionChecker enables deferred event triggering.
func WithConditionChecker(c ConditionChecker) DirectorOpt {
	return func(d *Director) { d.checker = c }
}

// WithZoneBuilder enables on-demand zone generation.
func WithZoneBuilder(b *worldgen.Builder) DirectorOpt {
	return func(d *Director) { d.builder = b }
}

// WithStore enables periodic checkpoints.
func WithStore(s *save.Store) DirectorOpt {
	return func(d *Director) { d.store = s }
}

// WithArchive preserves compressed-out chronicle entries.
func WithArchive(a *save.Archive) DirectorOpt {
	return func(d *Director) { d.archive = a }
}

// WithSaveInterval overrides the checkpoint cadence.
func WithSaveInterval(interval time.Duration) DirectorOpt {
	return func(d *Director) { d.saveInterval = interval }
}

// NewDirector wires a director and subscribes it to the bus messages it
// reacts to.
func NewDirector(
	clk *clock.Clock,
	state *world.State,
	chron *chronicle.Chronicle,
	queue *event.Queue,
	bus *event.Bus,
	ticker *event.Ticker,
	evaluator *consequence.Evaluator,
	logger *slog.Logger,
	opts ...DirectorOpt,
) *Director {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Director{
		clock:        clk,
		state:        state,
		chron:        chron,
		queue:        queue,
		bus:          bus,
		ticker:       ticker,
		evaluator:    evaluator,
		saveInterval: DefaultSaveInterval,
		logger:       logger,
	}

	for _, opt := range opts {
		opt(d)
	}

	event.Subscribe(bus, d.onDialogueEnded)
	event.Subscribe(bus, d.onZoneEntered)

	return d
}

// Tick implements Manager. The first call only establishes the baseline
// for real-time deltas.
func (d *Director) Tick(ctx context.Context) error {
	now := time.Now()
	if d.lastTick.IsZero() {
		d.lastTick = now
		d.lastSave = now
		return nil
	}

	delta := now.Sub(d.lastTick)
	d.lastTick = now

	before := d.clock.Duration()
	d.clock.Advance(float64(delta.Milliseconds()))
	gameTime := d.clock.Duration()
	gameDelta := gameTime - before

	d.state.AddPlayTime(gameDelta)

	tc := d.tickContext(gameTime)

	events, err := d.ticker.Update(ctx, gameDelta, tc)
	if err != nil {
		// A failed generation skips this tick; the world keeps moving.
		d.logger.Warn("tick generation failed", "error", err)
	}

	batch := append(events, d.queue.Drain()...)
	batch = append(batch, d.readyDeferred(ctx, gameTime, tc)...)

	d.ticker.ProcessTickEvents(batch, d.state, d.chron, d.bus, gameTime)

	if d.compressor != nil && d.chron.NeedsCompression(gameTime) {
		d.compress(ctx, gameTime)
	}

	if d.store != nil && now.Sub(d.lastSave) >= d.saveInterval {
		d.checkpoint(gameTime)
		d.lastSave = now
	}

	return nil
}

func (d *Director) tickContext(gameTime time.Duration) event.TickContext {
	var nearby []string
	for _, c := range d.state.NearbyCharacters(nearbyRadius) {
		nearby = append(nearby, fmt.Sprintf("%s (%s)", c.Identity.Name, c.ID))
	}

	return event.TickContext{
		GameTime:   gameTime,
		TimeOfDay:  d.clock.TimeOfDay(),
		Weather:    d.state.Weather.Current,
		PlayerZone: d.state.Player.Zone,
		Nearby:     nearby,
		Window:     d.chron.ContextWindow(chronicle.DefaultWindowBudget),
	}
}

// readyDeferred re-judges shelved events at most once per tick interval
// and promotes the ones whose conditions hold.
func (d *Director) readyDeferred(ctx context.Context, gameTime time.Duration, tc event.TickContext) []event.GameEvent {
	if d.checker == nil || len(d.queue.Deferred()) == 0 {
		return nil
	}
	if gameTime-d.lastConditionCheck < event.DefaultTickInterval {
		return nil
	}
	d.lastConditionCheck = gameTime

	ready := d.queue.TakeReady(func(de event.DeferredEvent) bool {
		holds, err := d.checker.Check(ctx, de.Condition, tc)
		if err != nil {
			d.logger.Warn("condition check failed", "condition", de.Condition, "error", err)
			return false
		}
		return holds
	})

	var out []event.GameEvent
	for _, de := range ready {
		d.logger.Info("deferred event triggered", "condition", de.Condition)
		out = append(out, de.Event)
	}
	return out
}

func (d *Director) compress(ctx context.Context, gameTime time.Duration) {
	removed, err := d.chron.Compress(ctx, d.compressor, gameTime)
	if err != nil {
		d.logger.Warn("chronicle compression failed", "error", err)
		return
	}
	if len(removed) == 0 {
		return
	}

	d.logger.Info("chronicle compressed", "folded", len(removed))
	if d.archive != nil {
		if err := d.archive.Write(d.state.ID, removed); err != nil {
			d.logger.Warn("archiving folded entries failed", "error", err)
		}
	}
}

func (d *Director) checkpoint(gameTime time.Duration) {
	event.Publish(d.bus, event.SaveStarted{WorldID: d.state.ID})
	err := d.store.Checkpoint(d.state, d.chron, gameTime)
	if err != nil {
		d.logger.Error("checkpoint failed", "world", d.state.ID, "error", err)
	}
	event.Publish(d.bus, event.SaveCompleted{WorldID: d.state.ID, Err: err})
}

// Shutdown writes a final full save.
func (d *Director) Shutdown() error {
	if d.store == nil {
		return nil
	}
	return d.store.SaveAll(d.state, d.chron, d.clock.Duration())
}

func (d *Director) onDialogueEnded(m event.DialogueEnded) {
	d.state.ActiveConversation = nil
	if conv := m.Conversation; conv != nil {
		if c := d.state.Character(conv.CharacterID); c != nil && m.Summary != "" {
			c.Memory.AddConversation(m.Summary, "", 0.5)
			d.state.MarkCharacterDirty(c.ID)
		}
		if result := d.evaluator.Evaluate(context.Background(), conv, d.clock.Duration()); result != nil {
			d.logger.Debug("conversation consequences applied", "character", conv.CharacterID, "summary", result.Summary)
		}
	}
	d.state.Player.Stats.ConversationsHad++
}

func (d *Director) onZoneEntered(m event.ZoneEntered) {
	z := d.state.Zone(m.ZoneID)
	if z == nil && d.builder != nil {
		var coords world.Point
		if _, err := fmt.Sscanf(m.ZoneID, "zone-%d-%d", &coords.X, &coords.Y); err != nil {
			d.logger.Warn("unparseable zone id", "zone", m.ZoneID)
			return
		}
		z = d.builder.Build(coords)
		d.state.RegisterZone(z)
		d.logger.Info("zone generated", "zone", z.ID, "biome", z.Biome)
	}
	if z == nil {
		return
	}

	z.LastVisited = time.Now()
	d.state.ActiveZoneID = z.ID
	d.state.MarkZoneDirty(z.ID)

	if m.FirstVisit {
		d.state.Player.Stats.ZonesExplored++
		d.state.Player.Journal.DiscoveredZones = append(d.state.Player.Journal.DiscoveredZones, z.ID)
	}
}
