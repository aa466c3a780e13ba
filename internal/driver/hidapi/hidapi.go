// Package hidapi is a joystick backend over raw HID devices. It owns
// enumeration, hot-plug detection and device identity; interpreting a
// device family's report protocol is delegated to a registered Protocol.
package hidapi

import (
	"fmt"
	"log"

	"github.com/sstallion/go-hid"

	"github.com/soar/joyd/internal/guid"
	"github.com/soar/joyd/internal/joystick"
	"github.com/soar/joyd/internal/vidpid"
)

// ReportWriter accepts HID output reports. *hid.Device satisfies it; tests
// substitute a recorder.
type ReportWriter interface {
	Write(p []byte) (int, error)
}

// Protocol interprets one device family's HID reports. Implementations are
// registered on the driver; a device without a matching protocol is not
// exposed.
type Protocol interface {
	// Match reports whether this protocol drives the enumerated device.
	Match(info *hid.DeviceInfo) bool
	// Layout returns the control counts the devices expose.
	Layout() (axes, hats, buttons int)
	Capabilities() joystick.Capability
	// HandleReport feeds one input report into the handle's state.
	HandleReport(h *joystick.Handle, report []byte, timestamp uint64)
	// Rumble and SetLED translate effect requests into output reports.
	// Protocols without the capability return joystick.ErrUnsupported.
	Rumble(w ReportWriter, lowFrequency, highFrequency uint16) error
	SetLED(w ReportWriter, red, green, blue uint8) error
}

type deviceEntry struct {
	id          joystick.InstanceID
	path        string
	name        string
	serial      string
	version     uint16
	guid        guid.GUID
	protocol    Protocol
	playerIndex int
}

type hardware struct {
	dev   *hid.Device
	entry *deviceEntry
	buf   [256]byte
}

// Driver is the HID backend. Detect re-enumerates and diffs against the
// known device set, so hot-plug needs no OS callbacks.
type Driver struct {
	owner     *joystick.Registry
	protocols []Protocol
	devices   []*deviceEntry
}

// New creates the backend with the given report protocols. With no
// arguments the backend ships its built-in protocol set.
func New(protocols ...Protocol) *Driver {
	if len(protocols) == 0 {
		protocols = []Protocol{NewDualShock4()}
	}
	return &Driver{protocols: protocols}
}

func (d *Driver) Name() string { return "hidapi" }

func (d *Driver) Init(owner *joystick.Registry) error {
	if err := hid.Init(); err != nil {
		return fmt.Errorf("hidapi: init: %w", err)
	}
	d.owner = owner
	d.Detect()
	return nil
}

func (d *Driver) Quit() {
	d.devices = nil
	hid.Exit()
}

func (d *Driver) Detect() {
	seen := make(map[string]bool, len(d.devices))

	hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		seen[info.Path] = true
		if d.byPath(info.Path) != nil {
			return nil
		}
		protocol := d.match(info)
		if protocol == nil {
			return nil
		}

		name := vidpid.CreateName(info.VendorID, info.ProductID, info.MfrStr, info.ProductStr)
		g := guid.New(busFor(info), info.VendorID, info.ProductID, info.ReleaseNbr,
			name, guid.SigHIDAPI, 0)
		if vidpid.ShouldIgnore(name, g) {
			return nil
		}

		entry := &deviceEntry{
			id:          joystick.NextInstanceID(),
			path:        info.Path,
			name:        name,
			serial:      info.SerialNbr,
			version:     info.ReleaseNbr,
			guid:        g,
			protocol:    protocol,
			playerIndex: -1,
		}
		d.devices = append(d.devices, entry)
		log.Printf("hidapi: %s attached (%04x:%04x)", name, info.VendorID, info.ProductID)
		d.owner.JoystickAdded(entry.id)
		return nil
	})

	for i := len(d.devices) - 1; i >= 0; i-- {
		if seen[d.devices[i].path] {
			continue
		}
		entry := d.devices[i]
		d.devices = append(d.devices[:i], d.devices[i+1:]...)
		log.Printf("hidapi: %s detached", entry.name)
		d.owner.JoystickRemoved(entry.id)
	}
}

func (d *Driver) byPath(path string) *deviceEntry {
	for _, entry := range d.devices {
		if entry.path == path {
			return entry
		}
	}
	return nil
}

func (d *Driver) match(info *hid.DeviceInfo) Protocol {
	for _, p := range d.protocols {
		if p.Match(info) {
			return p
		}
	}
	return nil
}

func busFor(info *hid.DeviceInfo) uint16 {
	if info.BusType == hid.BusBluetooth {
		return guid.BusBluetooth
	}
	return guid.BusUSB
}

func (d *Driver) Count() int { return len(d.devices) }

func (d *Driver) InstanceID(index int) joystick.InstanceID { return d.devices[index].id }
func (d *Driver) DeviceName(index int) string              { return d.devices[index].name }
func (d *Driver) DevicePath(index int) string              { return d.devices[index].path }
func (d *Driver) DeviceGUID(index int) guid.GUID           { return d.devices[index].guid }
func (d *Driver) DevicePlayerIndex(index int) int          { return d.devices[index].playerIndex }

func (d *Driver) SetDevicePlayerIndex(index, playerIndex int) {
	// HID has no player assignment protocol of its own; remember it so the
	// registry sees a consistent answer.
	d.devices[index].playerIndex = playerIndex
}

func (d *Driver) GamepadMapping(index int) (string, bool) { return "", false }

func (d *Driver) Open(h *joystick.Handle, index int) error {
	entry := d.devices[index]
	dev, err := hid.OpenPath(entry.path)
	if err != nil {
		return fmt.Errorf("hidapi: open %s: %w", entry.path, err)
	}
	if err := dev.SetNonblock(true); err != nil {
		dev.Close()
		return fmt.Errorf("hidapi: %s: %w", entry.path, err)
	}

	axes, hats, buttons := entry.protocol.Layout()
	h.SetCounts(axes, hats, buttons)
	h.SetSerial(entry.serial)
	h.SetFirmwareVersion(entry.version)
	h.SetHardwareData(&hardware{dev: dev, entry: entry})
	return nil
}

func (d *Driver) Update(h *joystick.Handle) {
	hw, ok := h.HardwareData().(*hardware)
	if !ok {
		return
	}
	for {
		n, err := hw.dev.Read(hw.buf[:])
		if err != nil || n <= 0 {
			return
		}
		hw.entry.protocol.HandleReport(h, hw.buf[:n], joystick.TicksNS())
	}
}

func (d *Driver) Close(h *joystick.Handle) {
	if hw, ok := h.HardwareData().(*hardware); ok {
		hw.dev.Close()
	}
}

func (d *Driver) Rumble(h *joystick.Handle, lowFrequency, highFrequency uint16) error {
	hw, ok := h.HardwareData().(*hardware)
	if !ok {
		return joystick.ErrInvalidHandle
	}
	return hw.entry.protocol.Rumble(hw.dev, lowFrequency, highFrequency)
}

func (d *Driver) RumbleTriggers(h *joystick.Handle, left, right uint16) error {
	return joystick.ErrUnsupported
}

func (d *Driver) SetLED(h *joystick.Handle, red, green, blue uint8) error {
	hw, ok := h.HardwareData().(*hardware)
	if !ok {
		return joystick.ErrInvalidHandle
	}
	return hw.entry.protocol.SetLED(hw.dev, red, green, blue)
}

func (d *Driver) SendEffect(h *joystick.Handle, data []byte) error {
	hw, ok := h.HardwareData().(*hardware)
	if !ok {
		return joystick.ErrInvalidHandle
	}
	if _, err := hw.dev.Write(data); err != nil {
		return fmt.Errorf("hidapi: send effect: %w", err)
	}
	return nil
}

func (d *Driver) Capabilities(h *joystick.Handle) joystick.Capability {
	hw, ok := h.HardwareData().(*hardware)
	if !ok {
		return 0
	}
	return hw.entry.protocol.Capabilities()
}
