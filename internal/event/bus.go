package event

import (
	"reflect"
	"sync"
	"time"

	"github.com/pixil98/go-story/internal/chronicle"
	"github.com/pixil98/go-story/internal/world"
)

// Message is the closed set of notifications the bus carries. Each message
// type gets its own subscriber list; publishing a type only the other
// types subscribe to is a silent no-op.
type Message interface {
	isMessage()
}

// EntryRecorded announces a new chronicle entry.
type EntryRecorded struct {
	Entry chronicle.Entry
}

// EventTriggered announces one game event whose effects were just applied.
type EventTriggered struct {
	Event GameEvent
}

// WorldTicked announces that a tick produced at least one event.
type WorldTicked struct {
	Events   []GameEvent
	GameTime time.Duration
}

// ZoneEntered announces the player crossing into a zone.
type ZoneEntered struct {
	ZoneID     string
	FirstVisit bool
}

// PlayerMoved announces a player position change within a zone.
type PlayerMoved struct {
	Zone     string
	Position world.Point
	Facing   world.Direction
}

// DialogueStarted announces the opening of a conversation.
type DialogueStarted struct {
	CharacterID string
}

// DialogueEnded carries a finished conversation for consequence
// evaluation.
type DialogueEnded struct {
	Conversation *world.Conversation
	Summary      string
}

// SaveStarted announces a checkpoint beginning.
type SaveStarted struct {
	WorldID string
}

// SaveCompleted announces a checkpoint finishing, successfully or not.
type SaveCompleted struct {
	WorldID string
	Err     error
}

// ModeChanged announces an interaction mode switch, such as exploration to
// dialogue.
type ModeChanged struct {
	From string
	To   string
}

func (EntryRecorded) isMessage()  {}
func (EventTriggered) isMessage() {}
func (WorldTicked) isMessage()    {}
func (ZoneEntered) isMessage()    {}
func (PlayerMoved) isMessage()    {}
func (DialogueStarted) isMessage() {}
func (DialogueEnded) isMessage()  {}
func (SaveStarted) isMessage()    {}
func (SaveCompleted) isMessage()  {}
func (ModeChanged) isMessage()    {}

// Bus dispatches messages synchronously to subscribers of the concrete
// message type. Handlers run on the publisher's goroutine; the handler
// list is snapshotted before dispatch so a handler may subscribe or
// publish without deadlocking.
type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]any
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: map[reflect.Type][]any{}}
}

// Subscribe registers fn for messages of type T.
func Subscribe[T Message](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := reflect.TypeOf(*new(T))
	b.handlers[key] = append(b.handlers[key], fn)
}

// Publish delivers msg to every subscriber of T, in subscription order.
func Publish[T Message](b *Bus, msg T) {
	b.mu.RLock()
	snapshot := make([]any, len(b.handlers[reflect.TypeOf(msg)]))
	copy(snapshot, b.handlers[reflect.TypeOf(msg)])
	b.mu.RUnlock()

	for _, h := range snapshot {
		h.(func(T))(msg)
	}
}
