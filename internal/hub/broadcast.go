package hub

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/soar/joyd/internal/joystick"
)

const (
	fullSyncInterval = 5 * time.Second
	eventBuffer      = 256
)

// Broadcaster receives the registry's event stream and fans it out to the
// hub, interleaving periodic full device syncs. It is the registry's event
// sink: Post never blocks the update loop, events are dropped when the
// buffer is full.
type Broadcaster struct {
	hub       *Hub
	snapshots Snapshotter
	events    chan joystick.Event
	seq       int64
}

func NewBroadcaster(h *Hub, snapshots Snapshotter) *Broadcaster {
	return &Broadcaster{
		hub:       h,
		snapshots: snapshots,
		events:    make(chan joystick.Event, eventBuffer),
	}
}

// Post implements joystick.Sink.
func (b *Broadcaster) Post(ev joystick.Event) bool {
	select {
	case b.events <- ev:
		return true
	default:
		// Drop rather than stall the update cycle
		return false
	}
}

// Run starts the broadcaster loop. Should be run in a goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-b.events:
			b.seq++
			b.send(NewEventMessage(b.seq, ev))

			// Device topology changes also refresh the full list.
			if ev.Type == joystick.EventDeviceAdded || ev.Type == joystick.EventDeviceRemoved {
				b.seq++
				b.send(NewDevicesMessage(b.seq, b.snapshots.Snapshot()))
			}

		case <-ticker.C:
			b.seq++
			b.send(NewDevicesMessage(b.seq, b.snapshots.Snapshot()))
		}
	}
}

// SendInitialState sends the current device list to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	msg := NewDevicesMessage(0, b.snapshots.Snapshot())
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling initial state: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (b *Broadcaster) send(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", msg.Type, err)
		return
	}
	b.hub.Broadcast(data)
}
