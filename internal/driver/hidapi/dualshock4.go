package hidapi

import (
	"fmt"

	"github.com/sstallion/go-hid"

	"github.com/soar/joyd/internal/joystick"
)

const (
	sonyVendor   = 0x054c
	ds4Product   = 0x05c4
	ds4V2Product = 0x09cc
)

// DualShock4 interprets the USB input report of Sony DualShock 4 pads
// (report ID 0x01). Bluetooth uses a different framing with a CRC trailer
// and is not handled; those pads enumerate over the sdl3 backend instead.
type DualShock4 struct{}

func NewDualShock4() *DualShock4 { return &DualShock4{} }

func (*DualShock4) Match(info *hid.DeviceInfo) bool {
	if info.BusType != hid.BusUSB {
		return false
	}
	return info.VendorID == sonyVendor &&
		(info.ProductID == ds4Product || info.ProductID == ds4V2Product)
}

// Axes: LX, LY, RX, RY, L2, R2. Buttons: square, cross, circle, triangle,
// L1, R1, share, options, L3, R3, PS, touchpad click.
func (*DualShock4) Layout() (axes, hats, buttons int) { return 6, 1, 12 }

func (*DualShock4) Capabilities() joystick.Capability {
	return joystick.CapRumble | joystick.CapRGBLED
}

// ds4HatMap translates the d-pad nibble (clockwise from north) into hat
// direction bits. Values past 7 mean released.
var ds4HatMap = [8]uint8{
	joystick.HatUp,
	joystick.HatRightUp,
	joystick.HatRight,
	joystick.HatRightDown,
	joystick.HatDown,
	joystick.HatLeftDown,
	joystick.HatLeft,
	joystick.HatLeftUp,
}

func (*DualShock4) HandleReport(h *joystick.Handle, report []byte, timestamp uint64) {
	if len(report) < 10 || report[0] != 0x01 {
		return
	}

	sticks := [...]byte{report[1], report[2], report[3], report[4], report[8], report[9]}
	for i, b := range sticks {
		h.SendAxis(timestamp, i, axisFromByte(b))
	}

	hat := joystick.HatCentered
	if nibble := report[5] & 0x0f; int(nibble) < len(ds4HatMap) {
		hat = ds4HatMap[nibble]
	}
	h.SendHat(timestamp, 0, hat)

	h.SendButton(timestamp, 0, report[5]&0x10 != 0)  // square
	h.SendButton(timestamp, 1, report[5]&0x20 != 0)  // cross
	h.SendButton(timestamp, 2, report[5]&0x40 != 0)  // circle
	h.SendButton(timestamp, 3, report[5]&0x80 != 0)  // triangle
	h.SendButton(timestamp, 4, report[6]&0x01 != 0)  // L1
	h.SendButton(timestamp, 5, report[6]&0x02 != 0)  // R1
	h.SendButton(timestamp, 6, report[6]&0x10 != 0)  // share
	h.SendButton(timestamp, 7, report[6]&0x20 != 0)  // options
	h.SendButton(timestamp, 8, report[6]&0x40 != 0)  // L3
	h.SendButton(timestamp, 9, report[6]&0x80 != 0)  // R3
	h.SendButton(timestamp, 10, report[7]&0x01 != 0) // PS
	h.SendButton(timestamp, 11, report[7]&0x02 != 0) // touchpad click
}

// axisFromByte spreads an unsigned 8-bit reading across the full axis range.
func axisFromByte(b byte) int16 {
	return int16(int(b)*257 - 32768)
}

func (d *DualShock4) Rumble(w ReportWriter, lowFrequency, highFrequency uint16) error {
	// Low frequency drives the large (left) motor, high the small (right).
	return d.writeOutput(w, 0x01, byte(highFrequency>>8), byte(lowFrequency>>8), 0, 0, 0)
}

func (d *DualShock4) SetLED(w ReportWriter, red, green, blue uint8) error {
	return d.writeOutput(w, 0x02, 0, 0, red, green, blue)
}

// writeOutput builds the 32-byte USB output report (ID 0x05). The flags
// byte selects which effect fields the pad applies, so a rumble write
// leaves the light bar alone and vice versa.
func (*DualShock4) writeOutput(w ReportWriter, flags, small, large, red, green, blue byte) error {
	var report [32]byte
	report[0] = 0x05
	report[1] = flags
	report[4] = small
	report[5] = large
	report[6] = red
	report[7] = green
	report[8] = blue
	if _, err := w.Write(report[:]); err != nil {
		return fmt.Errorf("hidapi: dualshock4 output report: %w", err)
	}
	return nil
}
