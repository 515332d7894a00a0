package world

import "time"

// Effect is one atomic mutation of world state. The set of variants is
// closed: each names exactly the state it touches and has exactly one
// application rule in State.ApplyEffect. New mutation capabilities get a
// new variant, never an overload of an existing one.
type Effect interface {
	isEffect()
}

// CharacterMove relocates a character to a position in a (possibly
// different) zone, keeping zone membership lists in sync.
type CharacterMove struct {
	CharacterID string `json:"character_id"`
	TargetZone  string `json:"target_zone"`
	TargetPos   Point  `json:"target_pos"`
}

// CharacterSpawn creates a character from a definition and places it in a
// zone. The id is synthesized at application time.
type CharacterSpawn struct {
	Zone string        `json:"zone"`
	Def  *CharacterDef `json:"def"`
}

// CharacterRemove deletes a character from the world entirely.
type CharacterRemove struct {
	CharacterID string `json:"character_id"`
	Reason      string `json:"reason,omitempty"`
}

// CharacterStateChange shallow-merges a patch into a character's mutable
// state.
type CharacterStateChange struct {
	CharacterID string     `json:"character_id"`
	Changes     StatePatch `json:"changes"`
}

// WeatherChange replaces the world's weather wholesale.
type WeatherChange struct {
	Weather  string        `json:"weather"`
	Duration time.Duration `json:"duration"`
}

// LightingChange signals a lighting shift in the active zone. No stored
// field changes; the zone is marked dirty so renderers re-read it.
type LightingChange struct {
	Lighting   string        `json:"lighting"`
	Transition time.Duration `json:"transition"`
}

// ObjectSpawn adds an object to a zone.
type ObjectSpawn struct {
	Zone   string       `json:"zone"`
	Object *WorldObject `json:"object"`
}

// ObjectRemove removes an object from a zone by id.
type ObjectRemove struct {
	Zone     string `json:"zone"`
	ObjectID string `json:"object_id"`
}

// Narration is a pure side-channel: text for the UI, no state mutation.
type Narration struct {
	Text string `json:"text"`
}

// ZoneModify merges metadata and edits object/character membership on a
// zone.
type ZoneModify struct {
	Zone    string      `json:"zone"`
	Changes ZoneChanges `json:"changes"`
}

func (CharacterMove) isEffect()        {}
func (CharacterSpawn) isEffect()       {}
func (CharacterRemove) isEffect()      {}
func (CharacterStateChange) isEffect() {}
func (WeatherChange) isEffect()        {}
func (LightingChange) isEffect()       {}
func (ObjectSpawn) isEffect()          {}
func (ObjectRemove) isEffect()         {}
func (Narration) isEffect()            {}
func (ZoneModify) isEffect()           {}
