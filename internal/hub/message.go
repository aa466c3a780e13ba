package hub

import (
	"time"

	"github.com/soar/joyd/internal/joystick"
)

// DeviceSnapshot is the wire form of one tracked device.
type DeviceSnapshot struct {
	Instance    joystick.InstanceID `json:"instance"`
	Name        string              `json:"name"`
	GUID        string              `json:"guid"`
	Type        string              `json:"type"`
	PlayerIndex int                 `json:"playerIndex"`
	Attached    bool                `json:"attached"`
	IsGamepad   bool                `json:"isGamepad"`
	Axes        int                 `json:"axes"`
	Hats        int                 `json:"hats"`
	Buttons     int                 `json:"buttons"`
	Power       string              `json:"power"`
}

// Snapshotter provides the current device list for full syncs.
type Snapshotter interface {
	Snapshot() []DeviceSnapshot
}

// Controller is the subset of registry operations clients may invoke.
type Controller interface {
	Rumble(id joystick.InstanceID, lowFrequency, highFrequency uint16, durationMS uint32) error
	SetPlayerIndex(id joystick.InstanceID, playerIndex int) error
}

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string `json:"type"`      // Message type: "event", "devices", "player_selected"
	Seq       int64  `json:"seq"`       // Sequence number for ordering
	Timestamp int64  `json:"timestamp"` // Unix timestamp in milliseconds

	Event       *joystick.Event     `json:"event,omitempty"`
	Devices     []DeviceSnapshot    `json:"devices,omitempty"`
	Instance    joystick.InstanceID `json:"instance,omitempty"`
	PlayerIndex int                 `json:"playerIndex,omitempty"`
}

// NewEventMessage wraps one joystick event for delivery.
func NewEventMessage(seq int64, ev joystick.Event) *WSMessage {
	return &WSMessage{
		Type:      "event",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Event:     &ev,
	}
}

// NewDevicesMessage creates a "devices" full-sync message.
func NewDevicesMessage(seq int64, devices []DeviceSnapshot) *WSMessage {
	return &WSMessage{
		Type:      "devices",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Devices:   devices,
	}
}

// NewPlayerSelectedMessage creates a "player_selected" confirmation message.
func NewPlayerSelectedMessage(id joystick.InstanceID, playerIndex int) *WSMessage {
	return &WSMessage{
		Type:        "player_selected",
		Timestamp:   time.Now().UnixMilli(),
		Instance:    id,
		PlayerIndex: playerIndex,
	}
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type        string              `json:"type"`
	Instance    joystick.InstanceID `json:"instance,omitempty"`
	PlayerIndex int                 `json:"playerIndex,omitempty"`
	Low         uint16              `json:"low,omitempty"`
	High        uint16              `json:"high,omitempty"`
	DurationMS  uint32              `json:"durationMs,omitempty"`
}
