package world

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// State is the authoritative world: every zone, every character, the
// player, and the ambient conditions. Mutation happens only through
// ApplyEffect; reads are free. Dirty sets accumulate ids touched since the
// last checkpoint so the save layer can write only what changed.
type State struct {
	ID      string
	Seed    *Seed
	Setting Setting

	zones      map[string]*Zone
	characters map[string]*Character

	Player             *Player
	Weather            Weather
	ActiveZoneID       string
	ActiveConversation *Conversation

	// PlayTime is total simulated time elapsed in this world, across
	// sessions.
	PlayTime time.Duration

	dirtyZones      map[string]struct{}
	dirtyCharacters map[string]struct{}

	logger *slog.Logger
}

// NewState builds an empty world around a seed. Zones and characters are
// registered afterwards by the generator or the save loader.
func NewState(id string, seed *Seed, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	s := &State{
		ID:              id,
		Seed:            seed,
		zones:           map[string]*Zone{},
		characters:      map[string]*Character{},
		Player:          &Player{Facing: DirDown},
		dirtyZones:      map[string]struct{}{},
		dirtyCharacters: map[string]struct{}{},
		logger:          logger,
	}
	if seed != nil {
		s.Setting = seed.Setting
	}
	return s
}

// Zone returns the zone with the given id, or nil.
func (s *State) Zone(id string) *Zone {
	return s.zones[id]
}

// Zones returns every registered zone, keyed by id. The map is the live
// index; callers must not add or remove entries.
func (s *State) Zones() map[string]*Zone {
	return s.zones
}

// Character returns the character with the given id, or nil.
func (s *State) Character(id string) *Character {
	return s.characters[id]
}

// Characters returns every living character, keyed by id.
func (s *State) Characters() map[string]*Character {
	return s.characters
}

// CharactersInZone returns the characters whose state places them in the
// given zone.
func (s *State) CharactersInZone(zoneID string) []*Character {
	var out []*Character
	for _, c := range s.characters {
		if c.State.CurrentZone == zoneID {
			out = append(out, c)
		}
	}
	return out
}

// NearbyCharacters returns characters in the player's zone within the
// given tile radius (Chebyshev distance).
func (s *State) NearbyCharacters(radius int) []*Character {
	var out []*Character
	for _, c := range s.characters {
		if c.State.CurrentZone != s.Player.Zone {
			continue
		}
		dx := abs(c.State.Position.X - s.Player.Position.X)
		dy := abs(c.State.Position.Y - s.Player.Position.Y)
		if dx <= radius && dy <= radius {
			out = append(out, c)
		}
	}
	return out
}

// RegisterZone adds or replaces a zone and marks it dirty.
func (s *State) RegisterZone(z *Zone) {
	s.zones[z.ID] = z
	s.markZone(z.ID)
}

// RegisterCharacter adds or replaces a character, keeps its zone's
// membership list in sync, and marks both dirty.
func (s *State) RegisterCharacter(c *Character) {
	s.characters[c.ID] = c
	if z := s.zones[c.State.CurrentZone]; z != nil && !z.HasCharacter(c.ID) {
		z.Characters = append(z.Characters, c.ID)
		s.markZone(z.ID)
	}
	s.markCharacter(c.ID)
}

// AddPlayTime advances the world's cumulative simulated time.
func (s *State) AddPlayTime(d time.Duration) {
	s.PlayTime += d
	s.Player.Stats.TotalPlayTime += d
}

// ApplyEffect is the sole mutation entry point. Effects referencing
// unknown zones or characters are logged and dropped rather than failing
// the batch.
func (s *State) ApplyEffect(effect Effect) {
	switch e := effect.(type) {
	case CharacterMove:
		s.applyCharacterMove(e)
	case CharacterSpawn:
		s.applyCharacterSpawn(e)
	case CharacterRemove:
		s.applyCharacterRemove(e)
	case CharacterStateChange:
		s.applyCharacterStateChange(e)
	case WeatherChange:
		s.Weather = Weather{
			Current:   e.Weather,
			Intensity: 1,
			Duration:  e.Duration,
			StartedAt: time.Now(),
		}
	case LightingChange:
		if s.ActiveZoneID != "" {
			s.markZone(s.ActiveZoneID)
		}
	case ObjectSpawn:
		z := s.zones[e.Zone]
		if z == nil || e.Object == nil {
			s.logger.Warn("object spawn into unknown zone", "zone", e.Zone)
			return
		}
		if e.Object.ID == "" {
			e.Object.ID = uuid.New().String()
		}
		z.Objects = append(z.Objects, e.Object)
		s.markZone(z.ID)
	case ObjectRemove:
		z := s.zones[e.Zone]
		if z == nil {
			s.logger.Warn("object remove from unknown zone", "zone", e.Zone)
			return
		}
		for i, o := range z.Objects {
			if o.ID == e.ObjectID {
				z.Objects = append(z.Objects[:i], z.Objects[i+1:]...)
				s.markZone(z.ID)
				return
			}
		}
	case Narration:
		// Display-only, nothing stored here.
	case ZoneModify:
		s.applyZoneModify(e)
	default:
		s.logger.Warn("unhandled effect", "type", e)
	}
}

func (s *State) applyCharacterMove(e CharacterMove) {
	c := s.characters[e.CharacterID]
	if c == nil {
		s.logger.Warn("move for unknown character", "character", e.CharacterID)
		return
	}

	from := c.State.CurrentZone
	if z := s.zones[from]; z != nil && from != e.TargetZone {
		if z.removeCharacter(c.ID) {
			s.markZone(z.ID)
		}
	}

	c.State.CurrentZone = e.TargetZone
	c.State.Position = e.TargetPos

	if z := s.zones[e.TargetZone]; z != nil {
		if !z.HasCharacter(c.ID) {
			z.Characters = append(z.Characters, c.ID)
		}
		s.markZone(z.ID)
	} else {
		s.logger.Warn("move into unregistered zone", "character", c.ID, "zone", e.TargetZone)
	}

	s.markCharacter(c.ID)
}

func (s *State) applyCharacterSpawn(e CharacterSpawn) {
	if e.Def == nil {
		s.logger.Warn("spawn with no definition", "zone", e.Zone)
		return
	}
	z := s.zones[e.Zone]
	if z == nil {
		// Inserting the character anyway would leave CurrentZone pointing
		// at nothing, breaking zone-membership consistency.
		s.logger.Warn("spawn into unknown zone", "zone", e.Zone)
		return
	}

	c := &Character{
		ID:            uuid.New().String(),
		WorldID:       s.ID,
		Identity:      e.Def.Identity,
		Visual:        e.Def.Visual,
		State:         e.Def.State,
		Behavior:      e.Def.Behavior,
		Relationships: map[string]Relationship{},
	}
	c.State.CurrentZone = e.Zone

	s.characters[c.ID] = c
	z.Characters = append(z.Characters, c.ID)
	s.markZone(z.ID)
	s.markCharacter(c.ID)
}

func (s *State) applyCharacterRemove(e CharacterRemove) {
	c := s.characters[e.CharacterID]
	if c == nil {
		return
	}

	if z := s.zones[c.State.CurrentZone]; z != nil {
		if z.removeCharacter(c.ID) {
			s.markZone(z.ID)
		}
	}

	delete(s.characters, e.CharacterID)
	// A deleted character has no row to rewrite.
	delete(s.dirtyCharacters, e.CharacterID)

	s.logger.Info("character removed", "character", e.CharacterID, "reason", e.Reason)
}

func (s *State) applyCharacterStateChange(e CharacterStateChange) {
	c := s.characters[e.CharacterID]
	if c == nil {
		s.logger.Warn("state change for unknown character", "character", e.CharacterID)
		return
	}

	prevZone := c.State.CurrentZone
	c.State.merge(e.Changes)

	if c.State.CurrentZone != prevZone {
		if z := s.zones[prevZone]; z != nil && z.removeCharacter(c.ID) {
			s.markZone(z.ID)
		}
		if z := s.zones[c.State.CurrentZone]; z != nil {
			if !z.HasCharacter(c.ID) {
				z.Characters = append(z.Characters, c.ID)
			}
			s.markZone(z.ID)
		}
	}

	s.markCharacter(c.ID)
}

func (s *State) applyZoneModify(e ZoneModify) {
	z := s.zones[e.Zone]
	if z == nil {
		s.logger.Warn("modify of unknown zone", "zone", e.Zone)
		return
	}

	if m := e.Changes.Metadata; m != nil {
		if m.Name != nil {
			z.Metadata.Name = *m.Name
		}
		if m.Description != nil {
			z.Metadata.Description = *m.Description
		}
		if m.NarrativeRole != nil {
			z.Metadata.NarrativeRole = *m.NarrativeRole
		}
	}

	for _, o := range e.Changes.AddObjects {
		if o.ID == "" {
			o.ID = uuid.New().String()
		}
		z.Objects = append(z.Objects, o)
	}
	for _, id := range e.Changes.RemoveObjectIDs {
		for i, o := range z.Objects {
			if o.ID == id {
				z.Objects = append(z.Objects[:i], z.Objects[i+1:]...)
				break
			}
		}
	}

	for _, id := range e.Changes.AddCharacters {
		if !z.HasCharacter(id) {
			z.Characters = append(z.Characters, id)
		}
	}
	for _, id := range e.Changes.RemoveCharacters {
		z.removeCharacter(id)
	}

	s.markZone(z.ID)
}

// MarkZoneDirty flags a zone for the next checkpoint. Used by
// collaborators that mutate zone fields the effect set does not cover,
// such as visit timestamps.
func (s *State) MarkZoneDirty(id string) {
	if _, ok := s.zones[id]; ok {
		s.markZone(id)
	}
}

// MarkCharacterDirty flags a character for the next checkpoint.
func (s *State) MarkCharacterDirty(id string) {
	if _, ok := s.characters[id]; ok {
		s.markCharacter(id)
	}
}

// DirtyZones resolves the dirty zone ids to their current records. Ids
// whose zones have since vanished are skipped.
func (s *State) DirtyZones() []*Zone {
	out := make([]*Zone, 0, len(s.dirtyZones))
	for id := range s.dirtyZones {
		if z := s.zones[id]; z != nil {
			out = append(out, z)
		}
	}
	return out
}

// DirtyCharacters resolves the dirty character ids to their current
// records.
func (s *State) DirtyCharacters() []*Character {
	out := make([]*Character, 0, len(s.dirtyCharacters))
	for id := range s.dirtyCharacters {
		if c := s.characters[id]; c != nil {
			out = append(out, c)
		}
	}
	return out
}

// ClearDirty resets both dirty sets after a successful checkpoint.
func (s *State) ClearDirty() {
	s.dirtyZones = map[string]struct{}{}
	s.dirtyCharacters = map[string]struct{}{}
}

func (s *State) markZone(id string)      { s.dirtyZones[id] = struct{}{} }
func (s *State) markCharacter(id string) { s.dirtyCharacters[id] = struct{}{} }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
