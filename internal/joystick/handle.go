package joystick

import (
	"fmt"

	"github.com/soar/joyd/internal/guid"
	"github.com/soar/joyd/internal/sensor"
	"github.com/soar/joyd/internal/vidpid"
)

// handleMagic anchors handle identity: a valid handle's magic pointer refers
// to it, and closing a handle clears the pointer so stale handles fail
// validation forever after.
var handleMagic byte

type axisState struct {
	value        int16
	zero         int16
	initialValue int16

	hasInitialValue     bool
	hasSecondValue      bool
	sentInitialValue    bool
	sendingInitialValue bool
}

// Finger is the state of one touchpad contact point.
type Finger struct {
	Down     bool
	X        float32
	Y        float32
	Pressure float32
}

type touchpadState struct {
	fingers []Finger
}

type sensorSlot struct {
	kind      sensor.Type
	rate      float32
	enabled   bool
	data      [3]float32
	timestamp uint64
}

// Handle is an open device. Exactly one handle exists per open instance ID;
// repeated opens return the same handle with an incremented reference count.
// A handle outlives device removal: it stays valid, detached, until the last
// holder closes it.
type Handle struct {
	reg    *Registry
	magic  *byte
	driver Driver

	instanceID InstanceID
	name       string
	path       string
	serial     string
	guid       guid.GUID
	firmware   uint16

	attached  bool
	refCount  int
	isGamepad bool

	axes      []axisState
	hats      []uint8
	buttons   []bool
	touchpads []touchpadState
	sensors   []sensorSlot

	// updateComplete holds the timestamp of the latest state change this
	// cycle; zero means nothing changed since the last update-complete
	// notification.
	updateComplete uint64

	lowFrequencyRumble  uint16
	highFrequencyRumble uint16
	rumbleExpiration    uint64
	rumbleResend        uint64

	leftTriggerRumble       uint16
	rightTriggerRumble      uint16
	triggerRumbleExpiration uint64

	ledRed        uint8
	ledGreen      uint8
	ledBlue       uint8
	ledExpiration uint64

	delayedGuideButton bool

	accel           sensor.Device
	gyro            sensor.Device
	sensorTransform [3][3]float32

	powerLevel PowerLevel
	props      map[string]any
	hwdata     any
}

func (h *Handle) valid() bool {
	return h != nil && h.magic == &handleMagic
}

// lock validates the handle and acquires its registry's lock. The caller
// must call h.reg.Unlock() when it returns nil.
func (h *Handle) lock() error {
	if h == nil || h.reg == nil {
		return ErrInvalidHandle
	}
	h.reg.Lock()
	if !h.valid() {
		h.reg.Unlock()
		return ErrInvalidHandle
	}
	return nil
}

// Close releases one reference to the handle. The device is torn down when
// the last reference is released.
func (h *Handle) Close() error {
	if err := h.lock(); err != nil {
		return err
	}
	defer h.reg.Unlock()
	h.reg.closeLocked(h)
	return nil
}

// InstanceID returns the instance ID the handle was opened with. Valid even
// after the device detaches.
func (h *Handle) InstanceID() InstanceID {
	if err := h.lock(); err != nil {
		return 0
	}
	defer h.reg.Unlock()
	return h.instanceID
}

// Name returns the device name.
func (h *Handle) Name() string {
	if err := h.lock(); err != nil {
		return ""
	}
	defer h.reg.Unlock()
	return h.name
}

// Path returns the backend device path, if the backend reports one.
func (h *Handle) Path() (string, error) {
	if err := h.lock(); err != nil {
		return "", err
	}
	defer h.reg.Unlock()
	if h.path == "" {
		return "", ErrUnsupported
	}
	return h.path, nil
}

// Serial returns the device serial number, or "" if unknown.
func (h *Handle) Serial() string {
	if err := h.lock(); err != nil {
		return ""
	}
	defer h.reg.Unlock()
	return h.serial
}

// FirmwareVersion returns the device firmware revision, or 0 if unknown.
func (h *Handle) FirmwareVersion() uint16 {
	if err := h.lock(); err != nil {
		return 0
	}
	defer h.reg.Unlock()
	return h.firmware
}

// GUID returns the device identity blob.
func (h *Handle) GUID() guid.GUID {
	if err := h.lock(); err != nil {
		return guid.GUID{}
	}
	defer h.reg.Unlock()
	return h.guid
}

// Attached reports whether the physical device is still connected.
func (h *Handle) Attached() bool {
	if err := h.lock(); err != nil {
		return false
	}
	defer h.reg.Unlock()
	return h.attached
}

// IsGamepad reports whether the device was classified as a gamepad at open.
func (h *Handle) IsGamepad() bool {
	if err := h.lock(); err != nil {
		return false
	}
	defer h.reg.Unlock()
	return h.isGamepad
}

// Type classifies the device from its identity blob.
func (h *Handle) Type() vidpid.Type {
	if err := h.lock(); err != nil {
		return vidpid.TypeUnknown
	}
	defer h.reg.Unlock()
	return vidpid.TypeFromGUID(h.guid)
}

// PowerLevel returns the most recent battery report.
func (h *Handle) PowerLevel() PowerLevel {
	if err := h.lock(); err != nil {
		return PowerUnknown
	}
	defer h.reg.Unlock()
	return h.powerLevel
}

func (h *Handle) NumAxes() int {
	if err := h.lock(); err != nil {
		return 0
	}
	defer h.reg.Unlock()
	return len(h.axes)
}

func (h *Handle) NumHats() int {
	if err := h.lock(); err != nil {
		return 0
	}
	defer h.reg.Unlock()
	return len(h.hats)
}

func (h *Handle) NumButtons() int {
	if err := h.lock(); err != nil {
		return 0
	}
	defer h.reg.Unlock()
	return len(h.buttons)
}

func (h *Handle) NumTouchpads() int {
	if err := h.lock(); err != nil {
		return 0
	}
	defer h.reg.Unlock()
	return len(h.touchpads)
}

func (h *Handle) NumSensors() int {
	if err := h.lock(); err != nil {
		return 0
	}
	defer h.reg.Unlock()
	return len(h.sensors)
}

// Axis returns the current value of an axis.
func (h *Handle) Axis(axis int) (int16, error) {
	if err := h.lock(); err != nil {
		return 0, err
	}
	defer h.reg.Unlock()
	if axis < 0 || axis >= len(h.axes) {
		return 0, fmt.Errorf("%w: axis %d", ErrOutOfRange, axis)
	}
	return h.axes[axis].value, nil
}

// AxisInitialState returns an axis's initial value and whether one has been
// established yet.
func (h *Handle) AxisInitialState(axis int) (int16, bool, error) {
	if err := h.lock(); err != nil {
		return 0, false, err
	}
	defer h.reg.Unlock()
	if axis < 0 || axis >= len(h.axes) {
		return 0, false, fmt.Errorf("%w: axis %d", ErrOutOfRange, axis)
	}
	a := h.axes[axis]
	return a.initialValue, a.hasInitialValue, nil
}

// Hat returns the current position of a hat.
func (h *Handle) Hat(hat int) (uint8, error) {
	if err := h.lock(); err != nil {
		return HatCentered, err
	}
	defer h.reg.Unlock()
	if hat < 0 || hat >= len(h.hats) {
		return HatCentered, fmt.Errorf("%w: hat %d", ErrOutOfRange, hat)
	}
	return h.hats[hat], nil
}

// Button reports whether a button is pressed.
func (h *Handle) Button(button int) (bool, error) {
	if err := h.lock(); err != nil {
		return false, err
	}
	defer h.reg.Unlock()
	if button < 0 || button >= len(h.buttons) {
		return false, fmt.Errorf("%w: button %d", ErrOutOfRange, button)
	}
	return h.buttons[button], nil
}

// TouchpadFinger returns the state of one touchpad contact.
func (h *Handle) TouchpadFinger(touchpad, finger int) (Finger, error) {
	if err := h.lock(); err != nil {
		return Finger{}, err
	}
	defer h.reg.Unlock()
	if touchpad < 0 || touchpad >= len(h.touchpads) {
		return Finger{}, fmt.Errorf("%w: touchpad %d", ErrOutOfRange, touchpad)
	}
	pad := &h.touchpads[touchpad]
	if finger < 0 || finger >= len(pad.fingers) {
		return Finger{}, fmt.Errorf("%w: finger %d", ErrOutOfRange, finger)
	}
	return pad.fingers[finger], nil
}

// SensorEnabled reports whether sampling is enabled for a sensor type.
func (h *Handle) SensorEnabled(kind sensor.Type) bool {
	if err := h.lock(); err != nil {
		return false
	}
	defer h.reg.Unlock()
	for i := range h.sensors {
		if h.sensors[i].kind == kind {
			return h.sensors[i].enabled
		}
	}
	return false
}

// EnableSensor turns sampling for a sensor type on or off.
func (h *Handle) EnableSensor(kind sensor.Type, enabled bool) error {
	if err := h.lock(); err != nil {
		return err
	}
	defer h.reg.Unlock()
	for i := range h.sensors {
		if h.sensors[i].kind == kind {
			h.sensors[i].enabled = enabled
			return nil
		}
	}
	return fmt.Errorf("%w: no %s", ErrUnsupported, kind)
}

// SensorData returns the latest sample for a sensor type.
func (h *Handle) SensorData(kind sensor.Type) ([3]float32, error) {
	if err := h.lock(); err != nil {
		return [3]float32{}, err
	}
	defer h.reg.Unlock()
	for i := range h.sensors {
		if h.sensors[i].kind == kind {
			return h.sensors[i].data, nil
		}
	}
	return [3]float32{}, fmt.Errorf("%w: no %s", ErrUnsupported, kind)
}

// Property returns a value from the handle's property bag.
func (h *Handle) Property(key string) (any, bool) {
	if err := h.lock(); err != nil {
		return nil, false
	}
	defer h.reg.Unlock()
	v, ok := h.props[key]
	return v, ok
}

// SetProperty stores a value in the handle's property bag. The bag is
// created on first use and released when the handle closes.
func (h *Handle) SetProperty(key string, value any) error {
	if err := h.lock(); err != nil {
		return err
	}
	defer h.reg.Unlock()
	if h.props == nil {
		h.props = make(map[string]any)
	}
	h.props[key] = value
	return nil
}

// Driver-facing setup, called from inside Driver.Open with the lock held.

// SetCounts allocates the axis/hat/button state arrays. Counts are fixed
// for the life of the handle.
func (h *Handle) SetCounts(axes, hats, buttons int) {
	h.axes = make([]axisState, axes)
	h.hats = make([]uint8, hats)
	h.buttons = make([]bool, buttons)
}

// AddTouchpad registers a touchpad with the given number of finger slots.
func (h *Handle) AddTouchpad(fingers int) {
	h.touchpads = append(h.touchpads, touchpadState{fingers: make([]Finger, fingers)})
}

// AddSensor registers a built-in sensor reporting at the given rate in Hz.
func (h *Handle) AddSensor(kind sensor.Type, rate float32) error {
	for i := range h.sensors {
		if h.sensors[i].kind == kind {
			return fmt.Errorf("joystick: duplicate %s", kind)
		}
	}
	h.sensors = append(h.sensors, sensorSlot{kind: kind, rate: rate})
	return nil
}

// SetSerial records the device serial number.
func (h *Handle) SetSerial(serial string) { h.serial = serial }

// SetFirmwareVersion records the device firmware revision.
func (h *Handle) SetFirmwareVersion(version uint16) { h.firmware = version }

// SetPowerLevel records the battery level observed at open, before the
// handle is registered. Later changes go through SendBatteryLevel.
func (h *Handle) SetPowerLevel(level PowerLevel) { h.powerLevel = level }

// SetDelayedGuideButton marks a guide-button press for deferred servicing
// during the next update cycle.
func (h *Handle) SetDelayedGuideButton(delayed bool) { h.delayedGuideButton = delayed }

// SetHardwareData attaches the driver's private per-device state.
func (h *Handle) SetHardwareData(data any) { h.hwdata = data }

// HardwareData returns the driver's private per-device state.
func (h *Handle) HardwareData() any { return h.hwdata }
