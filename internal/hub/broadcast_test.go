package hub

import (
	"testing"

	"github.com/soar/joyd/internal/joystick"
)

type emptySnapshots struct{}

func (emptySnapshots) Snapshot() []DeviceSnapshot { return nil }

func TestBroadcasterPostNeverBlocks(t *testing.T) {
	b := NewBroadcaster(NewHub(), emptySnapshots{})

	ev := joystick.Event{Type: joystick.EventAxisMotion, Timestamp: 1, Instance: 1}
	for i := 0; i < eventBuffer; i++ {
		if !b.Post(ev) {
			t.Fatalf("Post dropped event %d with buffer space left", i)
		}
	}

	// Nothing is draining the channel, so the next post must drop
	// instead of stalling the caller.
	if b.Post(ev) {
		t.Error("Post accepted an event into a full buffer")
	}
}
