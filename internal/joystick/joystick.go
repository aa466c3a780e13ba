// Package joystick is the device-independent core of the input subsystem:
// it tracks devices exposed by platform backends, normalizes their state
// changes into a single event stream, and manages player slots, rumble/LED
// timing and sensor fusion for open handles.
package joystick

import (
	"errors"
	"sync/atomic"
	"time"
)

// InstanceID names one device attachment session. IDs are process-lifetime
// unique, monotonically assigned and never zero.
type InstanceID uint32

var lastInstanceID atomic.Uint32

// NextInstanceID allocates a fresh instance ID. Drivers call this once per
// detected device session.
func NextInstanceID() InstanceID {
	return InstanceID(lastInstanceID.Add(1))
}

// Axis value range reported by drivers.
const (
	AxisMax int16 = 32767
	AxisMin int16 = -32768
)

// Hat positions, expressed as a bitmask of directions.
const (
	HatCentered  uint8 = 0x00
	HatUp        uint8 = 0x01
	HatRight     uint8 = 0x02
	HatDown      uint8 = 0x04
	HatLeft      uint8 = 0x08
	HatRightUp         = HatRight | HatUp
	HatRightDown       = HatRight | HatDown
	HatLeftUp          = HatLeft | HatUp
	HatLeftDown        = HatLeft | HatDown
)

// Capability flags reported by drivers for an open handle.
type Capability uint32

const (
	CapMonoLED Capability = 1 << iota
	CapRGBLED
	CapPlayerLED
	CapRumble
	CapTriggerRumble
)

// PowerLevel is a coarse battery level report.
type PowerLevel int

const (
	PowerUnknown PowerLevel = iota - 1
	PowerEmpty
	PowerLow
	PowerMedium
	PowerFull
	PowerWired
)

func (p PowerLevel) String() string {
	switch p {
	case PowerEmpty:
		return "empty"
	case PowerLow:
		return "low"
	case PowerMedium:
		return "medium"
	case PowerFull:
		return "full"
	case PowerWired:
		return "wired"
	}
	return "unknown"
}

// Errors returned by registry and handle operations.
var (
	ErrNotFound      = errors.New("joystick: device not found")
	ErrInvalidHandle = errors.New("joystick: invalid handle")
	ErrUnsupported   = errors.New("joystick: not supported")
	ErrOutOfRange    = errors.New("joystick: index out of range")
)

// Effect timing, in milliseconds of the registry clock.
const (
	maxRumbleDurationMS    = 30000
	rumbleResendIntervalMS = 4000
	ledMinRepeatMS         = 5000
)

var clockStart = time.Now()

// TicksNS returns a non-zero monotonic timestamp in nanoseconds. Drivers
// stamp every state change with it; zero is reserved for "unset".
func TicksNS() uint64 {
	return uint64(time.Since(clockStart)) + 1
}

func ticksMS() uint64 {
	return uint64(time.Since(clockStart)/time.Millisecond) + 1
}
