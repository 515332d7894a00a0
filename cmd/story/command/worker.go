package command

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-story/internal/ai"
	"github.com/pixil98/go-story/internal/chronicle"
	"github.com/pixil98/go-story/internal/clock"
	"github.com/pixil98/go-story/internal/consequence"
	"github.com/pixil98/go-story/internal/driver"
	"github.com/pixil98/go-story/internal/event"
	"github.com/pixil98/go-story/internal/messaging"
	"github.com/pixil98/go-story/internal/save"
	"github.com/pixil98/go-story/internal/storage"
	"github.com/pixil98/go-story/internal/world"
	"github.com/pixil98/go-story/internal/worldgen"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	logger := slog.Default()

	// Create the nats server
	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Load authored assets
	characters, err := cfg.Storage.Characters.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating character store: %w", err)
	}
	seeds, err := cfg.Storage.Seeds.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating seed store: %w", err)
	}

	// Open the save database
	store, err := save.Open(cfg.Save.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("opening save store: %w", err)
	}

	// Terrain generation
	tuning := worldgen.DefaultTuning()
	if cfg.World.Tuning != "" {
		tuning, err = worldgen.LoadTuning(cfg.World.Tuning)
		if err != nil {
			return nil, fmt.Errorf("loading terrain tuning: %w", err)
		}
	}
	genSeed := cfg.World.GenSeed
	if genSeed == "" {
		genSeed = cfg.World.ID
	}
	builder := worldgen.NewBuilder(genSeed, tuning)

	// Resume the world if it has been saved before, otherwise start it from
	// its seed.
	state, chron, clk, err := loadOrCreateWorld(cfg, store, builder, characters, seeds, logger)
	if err != nil {
		return nil, err
	}

	// Model-backed providers; a disabled client leaves them unwired and the
	// world static but playable.
	client := cfg.AI.buildClient(logger)

	var tickProvider event.TickEventProvider
	var judge consequence.Provider
	var opts []driver.DirectorOpt
	if client.Enabled() {
		tickProvider = ai.NewTickProvider(client, logger)
		judge = ai.NewConsequenceProvider(client, state)
		opts = append(opts,
			driver.WithCompressor(ai.NewCompressor(client)),
			driver.WithConditionChecker(ai.NewConditionChecker(client)),
		)
	} else {
		logger.Warn("no api key configured, world generation disabled")
	}

	opts = append(opts,
		driver.WithZoneBuilder(builder),
		driver.WithStore(store),
	)
	if cfg.Save.ArchiveDir != "" {
		opts = append(opts, driver.WithArchive(save.NewArchive(cfg.Save.ArchiveDir)))
	}
	if cfg.Save.Interval != "" {
		d, err := time.ParseDuration(cfg.Save.Interval)
		if err != nil {
			return nil, fmt.Errorf("parsing save interval: %w", err)
		}
		opts = append(opts, driver.WithSaveInterval(d))
	}

	var eventInterval time.Duration
	if cfg.World.EventInterval != "" {
		eventInterval, err = time.ParseDuration(cfg.World.EventInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing event_interval: %w", err)
		}
	}

	bus := event.NewBus()
	queue := event.NewQueue()
	ticker := event.NewTicker(tickProvider, eventInterval, logger)
	evaluator := consequence.NewEvaluator(state, chron, queue, bus, judge, logger)

	director := driver.NewDirector(clk, state, chron, queue, bus, ticker, evaluator, logger, opts...)

	// Mirror bus traffic onto nats for external watchers
	messaging.NewBridge(natsServer, logger).Attach(bus)

	// Setup the story driver
	var driverOpts []driver.StoryDriverOpt
	if cfg.TickInterval != "" {
		d, err := time.ParseDuration(cfg.TickInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing tick_interval: %w", err)
		}
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}
	storyDriver := driver.NewStoryDriver([]driver.Manager{director}, driverOpts...)

	// Create a worker list
	return service.WorkerList{
		"nats":   natsServer,
		"driver": storyDriver,
	}, nil
}

func loadOrCreateWorld(
	cfg *Config,
	store *save.Store,
	builder *worldgen.Builder,
	characters *storage.FileStore[*world.CharacterDef],
	seeds *storage.FileStore[*world.Seed],
	logger *slog.Logger,
) (*world.State, *chronicle.Chronicle, *clock.Clock, error) {
	var clockOpts []clock.Opt
	if cfg.World.MinutesPerSecond > 0 {
		clockOpts = append(clockOpts, clock.WithRate(cfg.World.MinutesPerSecond))
	}

	saved, err := store.ListWorlds()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing saved worlds: %w", err)
	}
	for _, w := range saved {
		if w.ID != cfg.World.ID {
			continue
		}

		loaded, err := store.LoadWorld(cfg.World.ID, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("resuming world %s: %w", cfg.World.ID, err)
		}
		clockOpts = append(clockOpts, clock.WithStartMinutes(loaded.GameTime.Minutes()))
		logger.Info("world resumed", "world", cfg.World.ID, "play_time", loaded.State.PlayTime)
		return loaded.State, loaded.Chronicle, clock.New(clockOpts...), nil
	}

	seed := seeds.Get(cfg.World.Seed)
	if seed == nil {
		return nil, nil, nil, fmt.Errorf("unknown world seed %q", cfg.World.Seed)
	}

	state := world.NewState(cfg.World.ID, seed, logger)
	start := builder.Build(world.Point{})
	state.RegisterZone(start)
	state.ActiveZoneID = start.ID
	state.Player.Zone = start.ID
	state.Player.Journal.DiscoveredZones = []string{start.ID}

	for _, def := range characters.GetAll() {
		state.ApplyEffect(world.CharacterSpawn{Zone: start.ID, Def: def})
	}

	logger.Info("world created", "world", cfg.World.ID, "seed", cfg.World.Seed)
	return state, chronicle.New(), clock.New(clockOpts...), nil
}
