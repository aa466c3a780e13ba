package joystick

import "github.com/soar/joyd/internal/sensor"

// EventType tags a normalized state-change notification.
type EventType int

const (
	EventDeviceAdded EventType = iota
	EventDeviceRemoved
	EventAxisMotion
	EventHatMotion
	EventButtonDown
	EventButtonUp
	EventTouchpadDown
	EventTouchpadMotion
	EventTouchpadUp
	EventSensorUpdate
	EventBatteryUpdated
	EventUpdateComplete
)

var eventTypeNames = map[EventType]string{
	EventDeviceAdded:    "device_added",
	EventDeviceRemoved:  "device_removed",
	EventAxisMotion:     "axis_motion",
	EventHatMotion:      "hat_motion",
	EventButtonDown:     "button_down",
	EventButtonUp:       "button_up",
	EventTouchpadDown:   "touchpad_down",
	EventTouchpadMotion: "touchpad_motion",
	EventTouchpadUp:     "touchpad_up",
	EventSensorUpdate:   "sensor_update",
	EventBatteryUpdated: "battery_updated",
	EventUpdateComplete: "update_complete",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Event is one notification record. Timestamp is a non-zero monotonic
// nanosecond stamp; payload fields beyond Instance depend on Type.
type Event struct {
	Type      EventType  `json:"type"`
	Timestamp uint64     `json:"timestamp"`
	Instance  InstanceID `json:"instance"`

	Axis  int   `json:"axis,omitempty"`
	Value int16 `json:"value,omitempty"`

	Hat      int   `json:"hat,omitempty"`
	HatValue uint8 `json:"hatValue,omitempty"`

	Button  int  `json:"button,omitempty"`
	Pressed bool `json:"pressed,omitempty"`

	Touchpad int     `json:"touchpad,omitempty"`
	Finger   int     `json:"finger,omitempty"`
	X        float32 `json:"x,omitempty"`
	Y        float32 `json:"y,omitempty"`
	Pressure float32 `json:"pressure,omitempty"`

	Sensor          sensor.Type `json:"sensor,omitempty"`
	Data            [3]float32  `json:"data,omitempty"`
	SensorTimestamp uint64      `json:"sensorTimestamp,omitempty"`

	Level PowerLevel `json:"level,omitempty"`
}

// Sink receives the normalized event stream. Post must never block; it
// returns false when the event was dropped, which the registry treats as
// non-fatal.
type Sink interface {
	Post(Event) bool
}
