package joystick

// Rumble plays a low/high-frequency rumble effect for durationMS
// milliseconds, capped at 30 seconds. Zero magnitudes or a zero duration
// stop the effect. Repeating the currently playing magnitudes succeeds
// without a driver round-trip and just extends the expiration.
func (h *Handle) Rumble(lowFrequency, highFrequency uint16, durationMS uint32) error {
	if err := h.lock(); err != nil {
		return err
	}
	defer h.reg.Unlock()
	return h.reg.rumbleLocked(h, lowFrequency, highFrequency, durationMS)
}

// RumbleTriggers plays a trigger rumble effect, with the same duration
// semantics as Rumble but no periodic refresh.
func (h *Handle) RumbleTriggers(left, right uint16, durationMS uint32) error {
	if err := h.lock(); err != nil {
		return err
	}
	defer h.reg.Unlock()
	return h.reg.rumbleTriggersLocked(h, left, right, durationMS)
}

// SetLED sets the device LED color. Rewrites of the current color are
// throttled to once per cooldown interval to avoid saturating slow
// transports; the suppressed write still counts as a success.
func (h *Handle) SetLED(red, green, blue uint8) error {
	if err := h.lock(); err != nil {
		return err
	}
	defer h.reg.Unlock()
	return h.reg.setLEDLocked(h, red, green, blue)
}

// SendEffect passes a driver-specific effect packet through to the device.
func (h *Handle) SendEffect(data []byte) error {
	if err := h.lock(); err != nil {
		return err
	}
	defer h.reg.Unlock()
	return h.driver.SendEffect(h, data)
}

// Capabilities returns the driver-reported capability flags.
func (h *Handle) Capabilities() Capability {
	if err := h.lock(); err != nil {
		return 0
	}
	defer h.reg.Unlock()
	return h.driver.Capabilities(h)
}

// HasLED reports whether the device has a controllable LED.
func (h *Handle) HasLED() bool {
	return h.Capabilities()&(CapMonoLED|CapRGBLED) != 0
}

// HasRumble reports whether the device supports rumble.
func (h *Handle) HasRumble() bool {
	return h.Capabilities()&CapRumble != 0
}

// HasRumbleTriggers reports whether the device supports trigger rumble.
func (h *Handle) HasRumbleTriggers() bool {
	return h.Capabilities()&CapTriggerRumble != 0
}

func (r *Registry) rumbleLocked(h *Handle, lowFrequency, highFrequency uint16, durationMS uint32) error {
	if lowFrequency == h.lowFrequencyRumble && highFrequency == h.highFrequencyRumble {
		// Already playing at the requested magnitudes.
	} else {
		if err := h.driver.Rumble(h, lowFrequency, highFrequency); err != nil {
			return err
		}
		// Some protocols need the effect refreshed periodically or it
		// times out on the device.
		h.rumbleResend = r.now() + rumbleResendIntervalMS
		if h.rumbleResend == 0 {
			h.rumbleResend = 1
		}
	}

	h.lowFrequencyRumble = lowFrequency
	h.highFrequencyRumble = highFrequency

	if (lowFrequency != 0 || highFrequency != 0) && durationMS != 0 {
		if durationMS > maxRumbleDurationMS {
			durationMS = maxRumbleDurationMS
		}
		h.rumbleExpiration = r.now() + uint64(durationMS)
		if h.rumbleExpiration == 0 {
			h.rumbleExpiration = 1
		}
	} else {
		h.rumbleExpiration = 0
		h.rumbleResend = 0
	}
	return nil
}

func (r *Registry) rumbleTriggersLocked(h *Handle, left, right uint16, durationMS uint32) error {
	if left == h.leftTriggerRumble && right == h.rightTriggerRumble {
		// Already playing at the requested magnitudes.
	} else if err := h.driver.RumbleTriggers(h, left, right); err != nil {
		return err
	}

	h.leftTriggerRumble = left
	h.rightTriggerRumble = right

	if (left != 0 || right != 0) && durationMS != 0 {
		if durationMS > maxRumbleDurationMS {
			durationMS = maxRumbleDurationMS
		}
		h.triggerRumbleExpiration = r.now() + uint64(durationMS)
		if h.triggerRumbleExpiration == 0 {
			h.triggerRumbleExpiration = 1
		}
	} else {
		h.triggerRumbleExpiration = 0
	}
	return nil
}

func (r *Registry) setLEDLocked(h *Handle, red, green, blue uint8) error {
	fresh := red != h.ledRed || green != h.ledGreen || blue != h.ledBlue
	now := r.now()

	if fresh || now >= h.ledExpiration {
		if err := h.driver.SetLED(h, red, green, blue); err != nil {
			return err
		}
		h.ledExpiration = now + ledMinRepeatMS
	}

	h.ledRed = red
	h.ledGreen = green
	h.ledBlue = blue
	return nil
}
