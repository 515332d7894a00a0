// Package save persists worlds to SQLite. Checkpoints are incremental:
// only dirty zones and characters and unsaved chronicle entries hit the
// database, so a checkpoint during play stays cheap.
package save

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pixil98/go-story/internal/chronicle"
	"github.com/pixil98/go-story/internal/world"
)

// Store wraps the SQLite connection for world persistence.
type Store struct {
	conn   *sqlx.DB
	logger *slog.Logger
}

// Open opens or creates the database at path and runs migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{conn: conn, logger: logger}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS worlds (
		id TEXT PRIMARY KEY,
		seed_json TEXT NOT NULL,
		play_time INTEGER NOT NULL,
		game_time INTEGER NOT NULL,
		active_zone TEXT NOT NULL DEFAULT '',
		weather_json TEXT NOT NULL DEFAULT '{}',
		recent_summary TEXT NOT NULL DEFAULT '',
		historical_summary TEXT NOT NULL DEFAULT '',
		last_compression INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS zones (
		world_id TEXT NOT NULL,
		id TEXT NOT NULL,
		data_json TEXT NOT NULL,
		PRIMARY KEY (world_id, id)
	);

	CREATE TABLE IF NOT EXISTS characters (
		world_id TEXT NOT NULL,
		id TEXT NOT NULL,
		data_json TEXT NOT NULL,
		PRIMARY KEY (world_id, id)
	);

	CREATE TABLE IF NOT EXISTS chronicle_entries (
		world_id TEXT NOT NULL,
		id TEXT NOT NULL,
		game_time INTEGER NOT NULL,
		type TEXT NOT NULL,
		zone TEXT NOT NULL DEFAULT '',
		data_json TEXT NOT NULL,
		PRIMARY KEY (world_id, id)
	);

	CREATE TABLE IF NOT EXISTS threads (
		world_id TEXT NOT NULL,
		id TEXT NOT NULL,
		data_json TEXT NOT NULL,
		PRIMARY KEY (world_id, id)
	);

	CREATE TABLE IF NOT EXISTS player_state (
		world_id TEXT PRIMARY KEY,
		data_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chronicle_time ON chronicle_entries(world_id, game_time);
	CREATE INDEX IF NOT EXISTS idx_chronicle_type ON chronicle_entries(world_id, type);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Checkpoint writes everything that changed since the last checkpoint:
// the world row, dirty zones and characters, unsaved chronicle entries,
// threads, and the player. Dirty tracking is cleared only after the
// transaction commits.
func (s *Store) Checkpoint(state *world.State, chron *chronicle.Chronicle, gameTime time.Duration) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.writeWorldRow(tx, state, chron, gameTime); err != nil {
		return err
	}

	dirtyZones := state.DirtyZones()
	for _, z := range dirtyZones {
		if err := upsertJSON(tx, "zones", state.ID, z.ID, z); err != nil {
			return fmt.Errorf("saving zone %s: %w", z.ID, err)
		}
	}

	dirtyChars := state.DirtyCharacters()
	for _, c := range dirtyChars {
		if err := upsertJSON(tx, "characters", state.ID, c.ID, c); err != nil {
			return fmt.Errorf("saving character %s: %w", c.ID, err)
		}
	}

	// Read without draining; the suffix is cleared only after commit so a
	// failed checkpoint keeps it for the next attempt.
	entries := chron.UnsavedEntries()
	for _, e := range entries {
		if err := s.insertEntry(tx, state.ID, e); err != nil {
			return fmt.Errorf("saving chronicle entry %s: %w", e.ID, err)
		}
	}

	for _, t := range chron.Threads() {
		if err := upsertJSON(tx, "threads", state.ID, t.ID, t); err != nil {
			return fmt.Errorf("saving thread %s: %w", t.ID, err)
		}
	}

	if err := s.writePlayer(tx, state); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	chron.DrainUnsaved()
	state.ClearDirty()
	s.logger.Debug("checkpoint",
		"world", state.ID,
		"zones", len(dirtyZones),
		"characters", len(dirtyChars),
		"entries", len(entries),
	)
	return nil
}

// SaveAll writes the complete world regardless of dirty tracking. Used on
// shutdown and after generation.
func (s *Store) SaveAll(state *world.State, chron *chronicle.Chronicle, gameTime time.Duration) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.writeWorldRow(tx, state, chron, gameTime); err != nil {
		return err
	}

	for _, z := range state.Zones() {
		if err := upsertJSON(tx, "zones", state.ID, z.ID, z); err != nil {
			return fmt.Errorf("saving zone %s: %w", z.ID, err)
		}
	}
	for _, c := range state.Characters() {
		if err := upsertJSON(tx, "characters", state.ID, c.ID, c); err != nil {
			return fmt.Errorf("saving character %s: %w", c.ID, err)
		}
	}
	for _, e := range chron.Entries() {
		if err := s.insertEntry(tx, state.ID, e); err != nil {
			return fmt.Errorf("saving chronicle entry %s: %w", e.ID, err)
		}
	}

	for _, t := range chron.Threads() {
		if err := upsertJSON(tx, "threads", state.ID, t.ID, t); err != nil {
			return fmt.Errorf("saving thread %s: %w", t.ID, err)
		}
	}
	if err := s.writePlayer(tx, state); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	chron.DrainUnsaved()
	state.ClearDirty()
	return nil
}

func (s *Store) writeWorldRow(tx *sqlx.Tx, state *world.State, chron *chronicle.Chronicle, gameTime time.Duration) error {
	seedJSON, err := json.Marshal(state.Seed)
	if err != nil {
		return fmt.Errorf("marshaling seed: %w", err)
	}
	weatherJSON, err := json.Marshal(state.Weather)
	if err != nil {
		return fmt.Errorf("marshaling weather: %w", err)
	}

	now := time.Now().Unix()
	_, err = tx.Exec(`INSERT INTO worlds
		(id, seed_json, play_time, game_time, active_zone, weather_json,
		 recent_summary, historical_summary, last_compression, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 play_time = excluded.play_time,
		 game_time = excluded.game_time,
		 active_zone = excluded.active_zone,
		 weather_json = excluded.weather_json,
		 recent_summary = excluded.recent_summary,
		 historical_summary = excluded.historical_summary,
		 last_compression = excluded.last_compression,
		 updated_at = excluded.updated_at`,
		state.ID, string(seedJSON), int64(state.PlayTime), int64(gameTime),
		state.ActiveZoneID, string(weatherJSON),
		chron.RecentSummary, chron.HistoricalSummary, int64(chron.LastCompression()),
		now, now,
	)
	return err
}

func (s *Store) writePlayer(tx *sqlx.Tx, state *world.State) error {
	playerJSON, err := json.Marshal(state.Player)
	if err != nil {
		return fmt.Errorf("marshaling player: %w", err)
	}
	_, err = tx.Exec(`INSERT INTO player_state (world_id, data_json) VALUES (?, ?)
		ON CONFLICT(world_id) DO UPDATE SET data_json = excluded.data_json`,
		state.ID, string(playerJSON))
	return err
}

func (s *Store) insertEntry(tx *sqlx.Tx, worldID string, e chronicle.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT INTO chronicle_entries (world_id, id, game_time, type, zone, data_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(world_id, id) DO UPDATE SET data_json = excluded.data_json`,
		worldID, e.ID, int64(e.GameTime), string(e.Type), e.Zone, string(data))
	return err
}

func upsertJSON(tx *sqlx.Tx, table, worldID, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		fmt.Sprintf(`INSERT INTO %s (world_id, id, data_json) VALUES (?, ?, ?)
			ON CONFLICT(world_id, id) DO UPDATE SET data_json = excluded.data_json`, table),
		worldID, id, string(data))
	return err
}

// LoadedWorld is everything a resumed session needs.
type LoadedWorld struct {
	State     *world.State
	Chronicle *chronicle.Chronicle
	GameTime  time.Duration
}

// LoadWorld reconstructs a saved world.
func (s *Store) LoadWorld(id string, logger *slog.Logger) (*LoadedWorld, error) {
	var row struct {
		SeedJSON          string `db:"seed_json"`
		PlayTime          int64  `db:"play_time"`
		GameTime          int64  `db:"game_time"`
		ActiveZone        string `db:"active_zone"`
		WeatherJSON       string `db:"weather_json"`
		RecentSummary     string `db:"recent_summary"`
		HistoricalSummary string `db:"historical_summary"`
		LastCompression   int64  `db:"last_compression"`
	}
	err := s.conn.Get(&row, `SELECT seed_json, play_time, game_time, active_zone, weather_json,
		recent_summary, historical_summary, last_compression FROM worlds WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("loading world %s: %w", id, err)
	}

	var seed world.Seed
	if err := json.Unmarshal([]byte(row.SeedJSON), &seed); err != nil {
		return nil, fmt.Errorf("decoding seed: %w", err)
	}

	state := world.NewState(id, &seed, logger)
	state.PlayTime = time.Duration(row.PlayTime)
	state.ActiveZoneID = row.ActiveZone
	if err := json.Unmarshal([]byte(row.WeatherJSON), &state.Weather); err != nil {
		return nil, fmt.Errorf("decoding weather: %w", err)
	}

	if err := loadJSONRows(s.conn, "zones", id, func(z *world.Zone) {
		state.RegisterZone(z)
	}); err != nil {
		return nil, err
	}
	if err := loadJSONRows(s.conn, "characters", id, func(c *world.Character) {
		state.RegisterCharacter(c)
	}); err != nil {
		return nil, err
	}

	var playerJSON string
	err = s.conn.Get(&playerJSON, "SELECT data_json FROM player_state WHERE world_id = ?", id)
	if err == nil {
		if err := json.Unmarshal([]byte(playerJSON), state.Player); err != nil {
			return nil, fmt.Errorf("decoding player: %w", err)
		}
	}

	chron := chronicle.New()
	chron.RecentSummary = row.RecentSummary
	chron.HistoricalSummary = row.HistoricalSummary
	chron.SetLastCompression(time.Duration(row.LastCompression))

	var entryRows []string
	if err := s.conn.Select(&entryRows,
		"SELECT data_json FROM chronicle_entries WHERE world_id = ? ORDER BY game_time, id", id); err != nil {
		return nil, fmt.Errorf("loading chronicle: %w", err)
	}
	entries := make([]chronicle.Entry, 0, len(entryRows))
	for _, raw := range entryRows {
		var e chronicle.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decoding chronicle entry: %w", err)
		}
		entries = append(entries, e)
	}
	chron.RestoreEntries(entries)

	if err := loadJSONRows(s.conn, "threads", id, func(t *chronicle.Thread) {
		chron.RestoreThread(t)
	}); err != nil {
		return nil, err
	}

	state.ClearDirty()
	return &LoadedWorld{
		State:     state,
		Chronicle: chron,
		GameTime:  time.Duration(row.GameTime),
	}, nil
}

func loadJSONRows[T any](conn *sqlx.DB, table, worldID string, add func(*T)) error {
	var rows []string
	if err := conn.Select(&rows,
		fmt.Sprintf("SELECT data_json FROM %s WHERE world_id = ?", table), worldID); err != nil {
		return fmt.Errorf("loading %s: %w", table, err)
	}
	for _, raw := range rows {
		v := new(T)
		if err := json.Unmarshal([]byte(raw), v); err != nil {
			return fmt.Errorf("decoding %s row: %w", table, err)
		}
		add(v)
	}
	return nil
}

// WorldInfo is a row in the world list.
type WorldInfo struct {
	ID        string
	Name      string
	PlayTime  time.Duration
	UpdatedAt time.Time
}

// ListWorlds returns every saved world, most recently played first.
func (s *Store) ListWorlds() ([]WorldInfo, error) {
	var rows []struct {
		ID        string `db:"id"`
		SeedJSON  string `db:"seed_json"`
		PlayTime  int64  `db:"play_time"`
		UpdatedAt int64  `db:"updated_at"`
	}
	if err := s.conn.Select(&rows,
		"SELECT id, seed_json, play_time, updated_at FROM worlds ORDER BY updated_at DESC"); err != nil {
		return nil, fmt.Errorf("listing worlds: %w", err)
	}

	out := make([]WorldInfo, 0, len(rows))
	for _, r := range rows {
		var seed world.Seed
		_ = json.Unmarshal([]byte(r.SeedJSON), &seed)
		out = append(out, WorldInfo{
			ID:        r.ID,
			Name:      seed.Setting.Name,
			PlayTime:  time.Duration(r.PlayTime),
			UpdatedAt: time.Unix(r.UpdatedAt, 0),
		})
	}
	return out, nil
}

// DeleteWorld removes a world and all of its rows.
func (s *Store) DeleteWorld(id string) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"zones", "characters", "chronicle_entries", "threads"} {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE world_id = ?", table), id); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("DELETE FROM player_state WHERE world_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM worlds WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}
