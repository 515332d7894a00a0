// Package event carries the simulation's pulse: the typed message bus the
// subsystems talk over, the queue of pending world events, and the ticker
// that periodically asks a provider what happens next.
package event

import (
	"time"

	"github.com/pixil98/go-story/internal/chronicle"
	"github.com/pixil98/go-story/internal/world"
)

// Significance grades how much a game event matters to the story.
type Significance string

const (
	SignificanceAmbient  Significance = "ambient"
	SignificanceMinor    Significance = "minor"
	SignificanceModerate Significance = "moderate"
	SignificanceMajor    Significance = "major"
	SignificanceDramatic Significance = "dramatic"
)

// GameEvent is one thing that happens in the world: a description for the
// player, effects to apply, and optionally a chronicle entry recording it.
type GameEvent struct {
	ID             string
	Significance   Significance
	Description    string
	Effects        []world.Effect
	ChronicleEntry *chronicle.Entry
}

// DeferredEvent is a game event held back until a condition holds. The
// condition is free text judged by an external checker; CreatedAt stamps
// the play time at which the event was shelved.
type DeferredEvent struct {
	Event     GameEvent
	Condition string
	CreatedAt time.Duration
}
