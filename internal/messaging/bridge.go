package messaging

import (
	"encoding/json"
	"log/slog"

	"github.com/pixil98/go-story/internal/chronicle"
	"github.com/pixil98/go-story/internal/event"
)

// Subjects the bridge publishes on.
const (
	SubjectChronicleEntry = "story.chronicle.entry"
	SubjectEventTriggered = "story.event.triggered"
	SubjectWorldTick      = "story.tick"
	SubjectSaveStarted    = "story.save.started"
	SubjectSaveCompleted  = "story.save.completed"
	SubjectModeChanged    = "story.mode"
)

// Publisher is the slice of NatsServer the bridge needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Bridge forwards bus messages onto NATS subjects as JSON. Forwarding is
// best effort: a failed publish is logged, never propagated back into the
// simulation.
type Bridge struct {
	pub    Publisher
	logger *slog.Logger
}

func NewBridge(pub Publisher, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{pub: pub, logger: logger}
}

// entryPayload is the wire form of a chronicle entry.
type entryPayload struct {
	ID         string   `json:"id"`
	GameTime   int64    `json:"game_time_ms"`
	Type       string   `json:"type"`
	Zone       string   `json:"zone,omitempty"`
	Summary    string   `json:"summary"`
	Characters []string `json:"characters,omitempty"`
	Threads    []string `json:"threads,omitempty"`
}

type eventPayload struct {
	ID           string `json:"id"`
	Significance string `json:"significance"`
	Description  string `json:"description"`
}

type tickPayload struct {
	GameTime   int64 `json:"game_time_ms"`
	EventCount int   `json:"event_count"`
}

type savePayload struct {
	WorldID string `json:"world_id"`
	Error   string `json:"error,omitempty"`
}

type modePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Attach subscribes the bridge to everything it forwards.
func (b *Bridge) Attach(bus *event.Bus) {
	event.Subscribe(bus, func(m event.EntryRecorded) {
		b.send(SubjectChronicleEntry, encodeEntry(m.Entry))
	})
	event.Subscribe(bus, func(m event.EventTriggered) {
		b.send(SubjectEventTriggered, eventPayload{
			ID:           m.Event.ID,
			Significance: string(m.Event.Significance),
			Description:  m.Event.Description,
		})
	})
	event.Subscribe(bus, func(m event.WorldTicked) {
		b.send(SubjectWorldTick, tickPayload{
			GameTime:   m.GameTime.Milliseconds(),
			EventCount: len(m.Events),
		})
	})
	event.Subscribe(bus, func(m event.SaveStarted) {
		b.send(SubjectSaveStarted, savePayload{WorldID: m.WorldID})
	})
	event.Subscribe(bus, func(m event.SaveCompleted) {
		p := savePayload{WorldID: m.WorldID}
		if m.Err != nil {
			p.Error = m.Err.Error()
		}
		b.send(SubjectSaveCompleted, p)
	})
	event.Subscribe(bus, func(m event.ModeChanged) {
		b.send(SubjectModeChanged, modePayload{From: m.From, To: m.To})
	})
}

func encodeEntry(e chronicle.Entry) entryPayload {
	return entryPayload{
		ID:         e.ID,
		GameTime:   e.GameTime.Milliseconds(),
		Type:       string(e.Type),
		Zone:       e.Zone,
		Summary:    e.Summary,
		Characters: e.Characters,
		Threads:    e.Threads,
	}
}

func (b *Bridge) send(subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Warn("marshaling bridge payload", "subject", subject, "error", err)
		return
	}
	if err := b.pub.Publish(subject, data); err != nil {
		b.logger.Warn("publishing bridge payload", "subject", subject, "error", err)
	}
}
