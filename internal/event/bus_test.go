package event

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestBusDeliversToTypeSubscribers(t *testing.T) {
	bus := NewBus()

	var got []string
	Subscribe(bus, func(m ZoneEntered) {
		got = append(got, m.ZoneID)
	})
	Subscribe(bus, func(m DialogueStarted) {
		t.Errorf("unexpected dialogue message: %v", m)
	})

	Publish(bus, ZoneEntered{ZoneID: "zone-0-0"})
	Publish(bus, ZoneEntered{ZoneID: "zone-1-0", FirstVisit: true})

	testutil.AssertEqual(t, "deliveries", len(got), 2)
	testutil.AssertEqual(t, "first", got[0], "zone-0-0")
	testutil.AssertEqual(t, "second", got[1], "zone-1-0")
}

func TestBusNoSubscribersIsNoop(t *testing.T) {
	bus := NewBus()
	Publish(bus, ModeChanged{From: "exploration", To: "dialogue"})
}

func TestBusSubscriptionOrder(t *testing.T) {
	bus := NewBus()

	var order []int
	Subscribe(bus, func(SaveStarted) { order = append(order, 1) })
	Subscribe(bus, func(SaveStarted) { order = append(order, 2) })
	Subscribe(bus, func(SaveStarted) { order = append(order, 3) })

	Publish(bus, SaveStarted{WorldID: "world-1"})

	testutil.AssertEqual(t, "order", len(order), 3)
	for i, n := range order {
		testutil.AssertEqual(t, "position", n, i+1)
	}
}

func TestBusHandlerMaySubscribe(t *testing.T) {
	bus := NewBus()

	var lateCalls int
	Subscribe(bus, func(WorldTicked) {
		Subscribe(bus, func(WorldTicked) { lateCalls++ })
	})

	Publish(bus, WorldTicked{})
	testutil.AssertEqual(t, "first publish", lateCalls, 0)

	Publish(bus, WorldTicked{})
	testutil.AssertEqual(t, "second publish", lateCalls, 1)
}

func TestBusHandlerMayPublish(t *testing.T) {
	bus := NewBus()

	var entered int
	Subscribe(bus, func(ZoneEntered) { entered++ })
	Subscribe(bus, func(m ModeChanged) {
		Publish(bus, ZoneEntered{ZoneID: "zone-0-0"})
	})

	Publish(bus, ModeChanged{From: "menu", To: "exploration"})
	testutil.AssertEqual(t, "nested publish delivered", entered, 1)
}
