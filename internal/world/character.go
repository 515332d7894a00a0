package world

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-story/internal/clock"
)

// Identity is who a character is, as far as narration cares.
type Identity struct {
	Name          string   `json:"name"`
	Age           string   `json:"age"`
	Role          string   `json:"role"`
	Personality   []string `json:"personality"`
	Backstory     string   `json:"backstory"`
	SpeechPattern string   `json:"speech_pattern"`
	Secrets       []string `json:"secrets,omitempty"`
}

// Visual is how a character renders.
type Visual struct {
	Char      string `json:"char"`
	FG        string `json:"fg"`
	BG        string `json:"bg,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
	Nameplate string `json:"nameplate"`
}

// CharacterState is the mutable slice of a character. Its CurrentZone must
// always match the zone whose membership list carries the character; effect
// application is the only place that keeps the two in sync.
type CharacterState struct {
	CurrentZone string    `json:"current_zone"`
	Position    Point     `json:"position"`
	Facing      Direction `json:"facing"`
	Mood        string    `json:"mood"`
	Activity    string    `json:"activity"`
	Health      string    `json:"health"`
	Goals       []string  `json:"goals"`
}

// StatePatch is a shallow merge into CharacterState: nil fields are left
// alone, set fields overwrite.
type StatePatch struct {
	CurrentZone *string    `json:"current_zone,omitempty"`
	Position    *Point     `json:"position,omitempty"`
	Facing      *Direction `json:"facing,omitempty"`
	Mood        *string    `json:"mood,omitempty"`
	Activity    *string    `json:"activity,omitempty"`
	Health      *string    `json:"health,omitempty"`
	Goals       *[]string  `json:"goals,omitempty"`
}

func (s *CharacterState) merge(p StatePatch) {
	if p.CurrentZone != nil {
		s.CurrentZone = *p.CurrentZone
	}
	if p.Position != nil {
		s.Position = *p.Position
	}
	if p.Facing != nil {
		s.Facing = *p.Facing
	}
	if p.Mood != nil {
		s.Mood = *p.Mood
	}
	if p.Activity != nil {
		s.Activity = *p.Activity
	}
	if p.Health != nil {
		s.Health = *p.Health
	}
	if p.Goals != nil {
		s.Goals = *p.Goals
	}
}

// BehaviorKind is the closed set of movement behaviors.
type BehaviorKind string

const (
	BehaviorStationary  BehaviorKind = "stationary"
	BehaviorPatrol      BehaviorKind = "patrol"
	BehaviorWander      BehaviorKind = "wander"
	BehaviorFollowPath  BehaviorKind = "follow_path"
	BehaviorIdleActions BehaviorKind = "idle_actions"
)

// Behavior describes how a character moves and idles. A behavior may carry
// a schedule of time-of-day-keyed child behaviors; children are pointers so
// the tree can nest without recursive value types.
type Behavior struct {
	Kind         BehaviorKind `json:"kind"`
	PatrolPoints []Point      `json:"patrol_points,omitempty"`
	WanderRadius int          `json:"wander_radius,omitempty"`
	Path         []Point      `json:"path,omitempty"`
	IdleActions  []string     `json:"idle_actions,omitempty"`
	Schedule     *Schedule    `json:"schedule,omitempty"`
}

// Schedule holds the four time-of-day slots of a scheduled behavior.
type Schedule struct {
	Morning   *Behavior `json:"morning,omitempty"`
	Afternoon *Behavior `json:"afternoon,omitempty"`
	Evening   *Behavior `json:"evening,omitempty"`
	Night     *Behavior `json:"night,omitempty"`
}

// At resolves the behavior in force at the given time of day. Dawn shares
// the morning slot and dusk the evening slot; an empty slot or a missing
// schedule falls back to the behavior itself.
func (b *Behavior) At(tod clock.TimeOfDay) *Behavior {
	if b == nil || b.Schedule == nil {
		return b
	}

	var child *Behavior
	switch tod {
	case clock.Dawn, clock.Morning:
		child = b.Schedule.Morning
	case clock.Afternoon:
		child = b.Schedule.Afternoon
	case clock.Dusk, clock.Evening:
		child = b.Schedule.Evening
	case clock.Night:
		child = b.Schedule.Night
	}

	if child == nil {
		return b
	}
	return child.At(tod)
}

func (b *Behavior) validate() error {
	el := errors.NewErrorList()

	switch b.Kind {
	case BehaviorStationary, BehaviorPatrol, BehaviorWander, BehaviorFollowPath, BehaviorIdleActions:
	case "":
		el.Add(fmt.Errorf("behavior kind is required"))
	default:
		el.Add(fmt.Errorf("invalid behavior kind: %s", b.Kind))
	}

	if b.Schedule != nil {
		for slot, child := range map[string]*Behavior{
			"morning":   b.Schedule.Morning,
			"afternoon": b.Schedule.Afternoon,
			"evening":   b.Schedule.Evening,
			"night":     b.Schedule.Night,
		} {
			if child == nil {
				continue
			}
			if err := child.validate(); err != nil {
				el.Add(fmt.Errorf("schedule %s: %w", slot, err))
			}
		}
	}

	return el.Err()
}

// MemoryEntry is one remembered experience or rumor.
type MemoryEntry struct {
	Type            string    `json:"type"`
	Summary         string    `json:"summary"`
	Timestamp       time.Time `json:"timestamp"`
	EmotionalWeight float64   `json:"emotional_weight"`
}

// PlayerRelationship tracks how a character feels about the player.
type PlayerRelationship struct {
	Trust           int      `json:"trust"`
	Familiarity     int      `json:"familiarity"`
	LastInteraction string   `json:"last_interaction,omitempty"`
	Impressions     []string `json:"impressions"`
}

// Memory is what a character has personally lived through or heard.
type Memory struct {
	PersonalExperiences []MemoryEntry      `json:"personal_experiences"`
	HeardRumors         []MemoryEntry      `json:"heard_rumors"`
	PlayerRelationship  PlayerRelationship `json:"player_relationship"`
}

// AddExperience records a first-hand memory. Weight is clamped to [0,1].
func (m *Memory) AddExperience(kind, summary string, weight float64) {
	m.PersonalExperiences = append(m.PersonalExperiences, MemoryEntry{
		Type:            kind,
		Summary:         summary,
		Timestamp:       time.Now(),
		EmotionalWeight: clampWeight(weight),
	})
}

// AddRumor records something the character heard second-hand.
func (m *Memory) AddRumor(kind, summary string, weight float64) {
	m.HeardRumors = append(m.HeardRumors, MemoryEntry{
		Type:            kind,
		Summary:         summary,
		Timestamp:       time.Now(),
		EmotionalWeight: clampWeight(weight),
	})
}

// AddConversation records a finished conversation and the impression it
// left.
func (m *Memory) AddConversation(summary, impression string, weight float64) {
	m.AddExperience("conversation", summary, weight)
	m.PlayerRelationship.Impressions = append(m.PlayerRelationship.Impressions, impression)
	m.PlayerRelationship.LastInteraction = summary
}

func clampWeight(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// Relationship is a character's standing with another character.
type Relationship struct {
	Type        string `json:"type"`
	Trust       int    `json:"trust"`
	Familiarity int    `json:"familiarity"`
	History     string `json:"history,omitempty"`
}

// Character is a non-player inhabitant of the world.
type Character struct {
	ID            string                  `json:"id"`
	WorldID       string                  `json:"world_id"`
	Identity      Identity                `json:"identity"`
	Visual        Visual                  `json:"visual"`
	State         CharacterState          `json:"state"`
	Behavior      *Behavior               `json:"behavior"`
	Memory        Memory                  `json:"memory"`
	Relationships map[string]Relationship `json:"relationships"`
}

// CharacterDef is the definition a spawn effect builds a Character from:
// everything but the id, zone, memory, and relationships, which are filled
// in at spawn time.
type CharacterDef struct {
	Identity Identity       `json:"identity"`
	Visual   Visual         `json:"visual"`
	State    CharacterState `json:"state"`
	Behavior *Behavior      `json:"behavior"`
}

// Validate satisfies storage.ValidatingSpec so definitions can be loaded as
// file assets.
func (d *CharacterDef) Validate() error {
	el := errors.NewErrorList()

	if d.Identity.Name == "" {
		el.Add(fmt.Errorf("identity.name is required"))
	}
	if d.Visual.Char == "" {
		el.Add(fmt.Errorf("visual.char is required"))
	}
	if d.Behavior == nil {
		el.Add(fmt.Errorf("behavior is required"))
	} else {
		el.Add(d.Behavior.validate())
	}

	return el.Err()
}
