// Package world owns the authoritative mutable state of a simulated world:
// zones, characters, the player, weather, and the active conversation. All
// mutation flows through a single typed-effect entry point so that
// persistence can track exactly what changed.
package world

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

// Point is a tile coordinate within a zone.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Direction is a facing or exit direction.
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Weather is the world's current weather condition.
type Weather struct {
	Current   string        `json:"current"`
	Intensity float64       `json:"intensity"`
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"started_at"`
}

// TileCell is one renderable cell in a tile layer.
type TileCell struct {
	Char     string   `json:"char"`
	FG       string   `json:"fg"`
	BG       string   `json:"bg,omitempty"`
	Bold     bool     `json:"bold,omitempty"`
	Animated bool     `json:"animated,omitempty"`
	Frames   []string `json:"frames,omitempty"`
}

// TileLayer is a named grid of cells. Layers stack: ground, objects,
// overlay, collision.
type TileLayer struct {
	Name   string     `json:"name"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Cells  []TileCell `json:"cells"`
}

// Building is a structure placed in a zone.
type Building struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Position Point   `json:"position"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Style    string  `json:"style"`
	Door     *Point  `json:"door,omitempty"`
	Features []string `json:"features,omitempty"`
}

// WorldObject is an interactable or decorative object in a zone.
type WorldObject struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Position     Point  `json:"position"`
	Char         string `json:"char"`
	FG           string `json:"fg"`
	Collision    bool   `json:"collision,omitempty"`
	Interactable bool   `json:"interactable,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Exit connects the edge of one zone to a position in another.
type Exit struct {
	Direction      Direction `json:"direction"`
	TargetZone     string    `json:"target_zone"`
	TargetPosition Point     `json:"target_position"`
}

// ZoneMetadata is the narrative-facing description of a zone.
type ZoneMetadata struct {
	Name          string `json:"name,omitempty"`
	Description   string `json:"description"`
	NarrativeRole string `json:"narrative_role,omitempty"`
}

// Zone is one region of the world. Zones are built by an external
// zone-builder collaborator and registered with the world state.
type Zone struct {
	ID             string         `json:"id"`
	Coords         Point          `json:"coords"`
	Biome          string         `json:"biome"`
	Tiles          []TileLayer    `json:"tiles"`
	Characters     []string       `json:"characters"`
	Buildings      []Building     `json:"buildings"`
	Objects        []*WorldObject `json:"objects"`
	Exits          []Exit         `json:"exits"`
	Generated      bool           `json:"generated"`
	GenerationSeed string         `json:"generation_seed"`
	LastVisited    time.Time      `json:"last_visited"`
	Metadata       ZoneMetadata   `json:"metadata"`
}

// HasCharacter reports whether the zone's membership list contains id.
func (z *Zone) HasCharacter(id string) bool {
	for _, c := range z.Characters {
		if c == id {
			return true
		}
	}
	return false
}

func (z *Zone) removeCharacter(id string) bool {
	for i, c := range z.Characters {
		if c == id {
			z.Characters = append(z.Characters[:i], z.Characters[i+1:]...)
			return true
		}
	}
	return false
}

// ZoneChanges is the payload of a zone_modify effect: a partial metadata
// merge plus object and character membership edits.
type ZoneChanges struct {
	Metadata         *ZoneMetadataPatch `json:"metadata,omitempty"`
	AddObjects       []*WorldObject     `json:"add_objects,omitempty"`
	RemoveObjectIDs  []string           `json:"remove_object_ids,omitempty"`
	AddCharacters    []string           `json:"add_characters,omitempty"`
	RemoveCharacters []string           `json:"remove_characters,omitempty"`
}

// ZoneMetadataPatch merges non-nil fields into a zone's metadata.
type ZoneMetadataPatch struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	NarrativeRole *string `json:"narrative_role,omitempty"`
}

// InventoryItem is something the player carries.
type InventoryItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// JournalEntry is one note in the player's journal.
type JournalEntry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	GameTime  time.Duration `json:"game_time"`
	Text      string        `json:"text"`
}

// Journal is the player's record of what they have seen and whom they have
// met.
type Journal struct {
	Entries         []JournalEntry `json:"entries"`
	KnownCharacters []string       `json:"known_characters"`
	DiscoveredZones []string       `json:"discovered_zones"`
	ActiveQuests    []string       `json:"active_quests"`
}

// Stats is the player's running play statistics.
type Stats struct {
	TotalPlayTime    time.Duration `json:"total_play_time"`
	ConversationsHad int           `json:"conversations_had"`
	ZonesExplored    int           `json:"zones_explored"`
	DaysSurvived     int           `json:"days_survived"`
}

// Player is the single player-controlled record.
type Player struct {
	Zone      string          `json:"zone"`
	Position  Point           `json:"position"`
	Facing    Direction       `json:"facing"`
	Inventory []InventoryItem `json:"inventory"`
	Journal   Journal         `json:"journal"`
	Stats     Stats           `json:"stats"`
}

// ConversationTurn is one utterance in a conversation.
type ConversationTurn struct {
	Speaker   string    `json:"speaker"` // "player" or "character"
	Text      string    `json:"text"`
	Kind      string    `json:"kind"` // "dialogue", "action", "narration"
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a dialogue between the player and one character.
type Conversation struct {
	CharacterID string             `json:"character_id"`
	Turns       []ConversationTurn `json:"turns"`
	StartedAt   time.Time          `json:"started_at"`
	Mood        string             `json:"mood"`
	Topics      []string           `json:"topics"`
	Active      bool               `json:"active"`
}

// Setting names the world's fictional premise.
type Setting struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Era         string `json:"era"`
	Tone        string `json:"tone"`
	Description string `json:"description"`
}

// Rules are the world's standing facts, fed into generation prompts.
type Rules struct {
	HasMagic  bool     `json:"has_magic"`
	TechLevel string   `json:"tech_level"`
	Economy   string   `json:"economy"`
	Dangers   []string `json:"dangers,omitempty"`
	Customs   []string `json:"customs,omitempty"`
}

// Seed is the immutable creation input of a world.
type Seed struct {
	Prompt      string   `json:"prompt"`
	Setting     Setting  `json:"setting"`
	Hooks       []string `json:"hooks,omitempty"`
	MainTension string   `json:"main_tension"`
	Atmosphere  string   `json:"atmosphere"`
	Rules       Rules    `json:"rules"`
}

// Validate satisfies storage.ValidatingSpec so seeds can be loaded as
// file assets.
func (s *Seed) Validate() error {
	el := errors.NewErrorList()

	if s.Setting.Name == "" {
		el.Add(fmt.Errorf("setting.name is required"))
	}
	if s.Setting.Description == "" {
		el.Add(fmt.Errorf("setting.description is required"))
	}

	return el.Err()
}
