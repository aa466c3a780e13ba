package joystick

import "github.com/soar/joyd/internal/sensor"

// State-change entrypoints called by drivers from inside Update (and Open),
// with the registry lock held. Each one decides ignore vs. apply vs.
// apply-and-notify, returning whether an event was produced. The timestamp
// must be non-zero; zero is reserved for "unset".

// SendAxis reports a new raw axis reading.
//
// The first readings from an axis establish its resting value, which also
// serves as its centering target. Until a value has actually been delivered,
// movements within 1/80 of full range are swallowed as jitter so devices
// resting slightly off center stay silent; virtual devices are exempt since
// their values are intentional. Once real motion is seen, the resting value
// is delivered first so consumers observe the full trajectory. A reading
// that was saturated near an extreme and then snaps well inside a quarter
// of full range is treated as a mis-centered trigger and re-zeroed.
func (h *Handle) SendAxis(timestamp uint64, axis int, value int16) bool {
	if axis < 0 || axis >= len(h.axes) {
		return false
	}
	info := &h.axes[axis]

	if !info.hasInitialValue ||
		(!info.hasSecondValue &&
			(info.initialValue <= -AxisMax || info.initialValue == AxisMax) &&
			abs16(value) < int(AxisMax)/4) {
		info.initialValue = value
		info.value = value
		info.zero = value
		info.hasInitialValue = true
	} else if value == info.value && !info.sendingInitialValue {
		return false
	} else {
		info.hasSecondValue = true
	}

	if !info.sentInitialValue {
		const maxJitter = int(AxisMax) / 80
		if delta16(value, info.value) <= maxJitter && !h.guid.IsVirtual() {
			return false
		}
		info.sentInitialValue = true
		info.sendingInitialValue = true
		h.SendAxis(timestamp, axis, info.initialValue)
		info.sendingInitialValue = false
	}

	// Unfocused applications only see movement toward center.
	if h.reg.shouldIgnoreEvent() {
		if info.sendingInitialValue ||
			(value > info.zero && value >= info.value) ||
			(value < info.zero && value <= info.value) {
			return false
		}
	}

	info.value = value
	h.updateComplete = timestamp
	h.reg.post(Event{
		Type:      EventAxisMotion,
		Timestamp: timestamp,
		Instance:  h.instanceID,
		Axis:      axis,
		Value:     value,
	})
	return true
}

// SendHat reports a new hat position.
func (h *Handle) SendHat(timestamp uint64, hat int, value uint8) bool {
	if hat < 0 || hat >= len(h.hats) {
		return false
	}
	if value == h.hats[hat] {
		return false
	}
	if h.reg.shouldIgnoreEvent() && value != HatCentered {
		return false
	}

	h.hats[hat] = value
	h.updateComplete = timestamp
	h.reg.post(Event{
		Type:      EventHatMotion,
		Timestamp: timestamp,
		Instance:  h.instanceID,
		Hat:       hat,
		HatValue:  value,
	})
	return true
}

// SendButton reports a button transition.
func (h *Handle) SendButton(timestamp uint64, button int, pressed bool) bool {
	if button < 0 || button >= len(h.buttons) {
		return false
	}
	if pressed == h.buttons[button] {
		return false
	}
	// Releases always pass so consumers never see a button stuck down.
	if h.reg.shouldIgnoreEvent() && pressed {
		return false
	}

	h.buttons[button] = pressed
	h.updateComplete = timestamp
	eventType := EventButtonUp
	if pressed {
		eventType = EventButtonDown
	}
	h.reg.post(Event{
		Type:      eventType,
		Timestamp: timestamp,
		Instance:  h.instanceID,
		Button:    button,
		Pressed:   pressed,
	})
	return true
}

// SendTouchpad reports a touchpad contact change. Coordinates and pressure
// are clamped to [0,1]; a release with negative coordinates keeps the last
// known position.
func (h *Handle) SendTouchpad(timestamp uint64, touchpad, finger int, down bool, x, y, pressure float32) bool {
	if touchpad < 0 || touchpad >= len(h.touchpads) {
		return false
	}
	pad := &h.touchpads[touchpad]
	if finger < 0 || finger >= len(pad.fingers) {
		return false
	}
	info := &pad.fingers[finger]

	if down == info.Down {
		if !down || (x == info.X && y == info.Y && pressure == info.Pressure) {
			return false
		}
	}

	var eventType EventType
	switch {
	case down && info.Down:
		eventType = EventTouchpadMotion
	case down:
		eventType = EventTouchpadDown
	default:
		eventType = EventTouchpadUp
	}

	if !down {
		if x < 0 || y < 0 {
			x = info.X
			y = info.Y
		}
		pressure = 0
	}
	x = clamp01(x)
	y = clamp01(y)
	pressure = clamp01(pressure)

	if h.reg.shouldIgnoreEvent() && eventType != EventTouchpadUp {
		return false
	}

	info.Down = down
	info.X = x
	info.Y = y
	info.Pressure = pressure
	h.updateComplete = timestamp
	h.reg.post(Event{
		Type:      eventType,
		Timestamp: timestamp,
		Instance:  h.instanceID,
		Touchpad:  touchpad,
		Finger:    finger,
		X:         x,
		Y:         y,
		Pressure:  pressure,
	})
	return true
}

// SendSensor reports a motion sensor sample. The sample is copied into the
// matching sensor slot and delivered only if a consumer enabled that sensor.
func (h *Handle) SendSensor(timestamp uint64, kind sensor.Type, sensorTimestamp uint64, data []float32) bool {
	if h.reg.shouldIgnoreEvent() {
		return false
	}
	for i := range h.sensors {
		slot := &h.sensors[i]
		if slot.kind != kind {
			continue
		}
		if !slot.enabled {
			break
		}
		n := len(data)
		if n > len(slot.data) {
			n = len(slot.data)
		}
		copy(slot.data[:n], data[:n])
		slot.timestamp = sensorTimestamp

		h.updateComplete = timestamp
		h.reg.post(Event{
			Type:            EventSensorUpdate,
			Timestamp:       timestamp,
			Instance:        h.instanceID,
			Sensor:          kind,
			Data:            slot.data,
			SensorTimestamp: sensorTimestamp,
		})
		return true
	}
	return false
}

// SendBatteryLevel reports a battery level change.
func (h *Handle) SendBatteryLevel(level PowerLevel) {
	if level == h.powerLevel {
		return
	}
	h.powerLevel = level
	h.reg.post(Event{
		Type:      EventBatteryUpdated,
		Timestamp: TicksNS(),
		Instance:  h.instanceID,
		Level:     level,
	})
}

// forceRecentering synthesizes released/centered transitions for every
// control so consumers never see a device vanish mid-gesture.
func (h *Handle) forceRecentering(timestamp uint64) {
	for i := range h.axes {
		if h.axes[i].hasInitialValue {
			h.SendAxis(timestamp, i, h.axes[i].zero)
		}
	}
	for i := range h.buttons {
		h.SendButton(timestamp, i, false)
	}
	for i := range h.hats {
		h.SendHat(timestamp, i, HatCentered)
	}
	for i := range h.touchpads {
		for j := range h.touchpads[i].fingers {
			h.SendTouchpad(timestamp, i, j, false, 0, 0, 0)
		}
	}
}

func abs16(v int16) int {
	if v < 0 {
		return -int(v)
	}
	return int(v)
}

func delta16(a, b int16) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
