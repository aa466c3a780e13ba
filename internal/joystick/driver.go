package joystick

import "github.com/soar/joyd/internal/guid"

// Driver is the contract every platform backend implements. Backend-local
// device indices are 0..Count()-1 and may change across Detect calls;
// instance IDs are stable for the lifetime of an attachment session.
//
// All methods are invoked with the registry lock held. Detect must not block
// on other backends; hot-plug changes observed elsewhere (OS callbacks) must
// be queued and reported from Detect.
type Driver interface {
	// Name identifies the backend in logs.
	Name() string

	Init(owner *Registry) error
	Quit()
	Detect()

	Count() int
	InstanceID(index int) InstanceID
	DeviceName(index int) string
	DevicePath(index int) string
	DeviceGUID(index int) guid.GUID
	DevicePlayerIndex(index int) int
	SetDevicePlayerIndex(index, playerIndex int)
	GamepadMapping(index int) (string, bool)

	Open(h *Handle, index int) error
	Update(h *Handle)
	Close(h *Handle)

	Rumble(h *Handle, lowFrequency, highFrequency uint16) error
	RumbleTriggers(h *Handle, left, right uint16) error
	SetLED(h *Handle, red, green, blue uint8) error
	SendEffect(h *Handle, data []byte) error
	Capabilities(h *Handle) Capability
}

// GamepadLayer is the higher-level mapping layer's view into the registry.
// All callbacks run with the registry lock held.
type GamepadLayer interface {
	// IsGamepad reports whether a device should be treated as a gamepad.
	IsGamepad(name string, g guid.GUID) bool
	// Added and Removed are invoked on hot-plug transitions. Removed fires
	// for every device, gamepad or not.
	Added(id InstanceID)
	Removed(id InstanceID)
	// HandleDelayedGuideButton services a guide-button press a driver chose
	// to defer past its press/release pair.
	HandleDelayedGuideButton(h *Handle)
}
