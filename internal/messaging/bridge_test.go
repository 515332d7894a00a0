package messaging

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-story/internal/chronicle"
	"github.com/pixil98/go-story/internal/event"
)

type capturePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *capturePublisher) Publish(subject string, data []byte) error {
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return p.err
}

func newTestBridge(pub *capturePublisher) (*Bridge, *event.Bus) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := event.NewBus()
	bridge := NewBridge(pub, logger)
	bridge.Attach(bus)
	return bridge, bus
}

func TestBridgeForwardsChronicleEntries(t *testing.T) {
	pub := &capturePublisher{}
	_, bus := newTestBridge(pub)

	event.Publish(bus, event.EntryRecorded{Entry: chronicle.Entry{
		ID:       "e1",
		GameTime: 90 * time.Second,
		Type:     chronicle.EntryEvent,
		Zone:     "zone-0-0",
		Summary:  "The bell rang",
		Threads:  []string{"mystery"},
	}})

	testutil.AssertEqual(t, "publish count", len(pub.subjects), 1)
	testutil.AssertEqual(t, "subject", pub.subjects[0], SubjectChronicleEntry)

	var p entryPayload
	if err := json.Unmarshal(pub.payloads[0], &p); err != nil {
		t.Fatalf("payload does not parse: %v", err)
	}
	testutil.AssertEqual(t, "id", p.ID, "e1")
	testutil.AssertEqual(t, "game time", p.GameTime, int64(90000))
	testutil.AssertEqual(t, "type", p.Type, "event")
	testutil.AssertEqual(t, "summary", p.Summary, "The bell rang")
}

func TestBridgeForwardsTicksAndEvents(t *testing.T) {
	pub := &capturePublisher{}
	_, bus := newTestBridge(pub)

	ge := event.GameEvent{ID: "g1", Significance: event.SignificanceModerate, Description: "A storm rolls in"}
	event.Publish(bus, event.EventTriggered{Event: ge})
	event.Publish(bus, event.WorldTicked{Events: []event.GameEvent{ge}, GameTime: time.Hour})

	testutil.AssertEqual(t, "publish count", len(pub.subjects), 2)
	testutil.AssertEqual(t, "event subject", pub.subjects[0], SubjectEventTriggered)
	testutil.AssertEqual(t, "tick subject", pub.subjects[1], SubjectWorldTick)

	var tick tickPayload
	if err := json.Unmarshal(pub.payloads[1], &tick); err != nil {
		t.Fatalf("tick payload does not parse: %v", err)
	}
	testutil.AssertEqual(t, "event count", tick.EventCount, 1)
	testutil.AssertEqual(t, "game time", tick.GameTime, int64(3600000))
}

func TestBridgeForwardsSaveLifecycle(t *testing.T) {
	pub := &capturePublisher{}
	_, bus := newTestBridge(pub)

	event.Publish(bus, event.SaveStarted{WorldID: "world-1"})
	event.Publish(bus, event.SaveCompleted{WorldID: "world-1", Err: errors.New("disk full")})

	testutil.AssertEqual(t, "publish count", len(pub.subjects), 2)

	var done savePayload
	if err := json.Unmarshal(pub.payloads[1], &done); err != nil {
		t.Fatalf("save payload does not parse: %v", err)
	}
	testutil.AssertEqual(t, "world", done.WorldID, "world-1")
	testutil.AssertEqual(t, "error", done.Error, "disk full")
}

func TestBridgePublishFailureDoesNotPanic(t *testing.T) {
	pub := &capturePublisher{err: errors.New("not connected")}
	_, bus := newTestBridge(pub)

	event.Publish(bus, event.ModeChanged{From: "exploration", To: "dialogue"})
	testutil.AssertEqual(t, "attempted", len(pub.subjects), 1)
}
