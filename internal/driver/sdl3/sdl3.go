// Package sdl3 is a joystick backend bridging the SDL3 joystick API, giving
// the registry access to every device SDL's own platform backends support.
// SDL wants its event pump on one OS thread: call Registry.Init and Update
// from a goroutine locked with runtime.LockOSThread.
package sdl3

import (
	"fmt"
	"log"

	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/soar/joyd/internal/guid"
	"github.com/soar/joyd/internal/joystick"
)

type device struct {
	id          joystick.InstanceID
	sdlID       sdl.JoystickID
	js          *sdl.Joystick
	name        string
	guid        guid.GUID
	playerIndex int
}

// Driver is the SDL3 bridge backend. SDL joystick handles are owned by the
// driver's device table: opened when SDL reports the device, closed when it
// goes away.
type Driver struct {
	owner   *joystick.Registry
	devices []*device
}

func New() *Driver { return &Driver{} }

func (d *Driver) Name() string { return "sdl3" }

func (d *Driver) Init(owner *joystick.Registry) error {
	if !sdl.Init(sdl.InitJoystick) {
		return fmt.Errorf("sdl3: init: %s", sdl.GetError())
	}
	d.owner = owner

	for _, sdlID := range sdl.GetJoysticks() {
		d.addDevice(sdlID)
	}
	return nil
}

func (d *Driver) Quit() {
	for _, dev := range d.devices {
		sdl.CloseJoystick(dev.js)
	}
	d.devices = nil
	sdl.Quit()
}

func (d *Driver) Detect() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			d.addDevice(event.JDevice().Which)
		case sdl.EventJoystickRemoved:
			d.removeDevice(event.JDevice().Which)
		}
	}
}

func (d *Driver) addDevice(sdlID sdl.JoystickID) {
	if d.bySDLID(sdlID) != nil {
		return
	}
	js := sdl.OpenJoystick(sdlID)
	if js == nil {
		log.Printf("sdl3: open joystick %d: %s", sdlID, sdl.GetError())
		return
	}

	name := sdl.GetJoystickName(js)
	vendor := sdl.GetJoystickVendor(js)
	product := sdl.GetJoystickProduct(js)

	dev := &device{
		id:          joystick.NextInstanceID(),
		sdlID:       sdl.GetJoystickID(js),
		js:          js,
		name:        name,
		guid:        guid.New(guid.BusUSB, vendor, product, 0, name, 0, 0),
		playerIndex: -1,
	}
	d.devices = append(d.devices, dev)
	log.Printf("sdl3: %s attached (%04x:%04x)", name, vendor, product)
	d.owner.JoystickAdded(dev.id)
}

func (d *Driver) removeDevice(sdlID sdl.JoystickID) {
	for i, dev := range d.devices {
		if dev.sdlID != sdlID {
			continue
		}
		sdl.CloseJoystick(dev.js)
		d.devices = append(d.devices[:i], d.devices[i+1:]...)
		log.Printf("sdl3: %s detached", dev.name)
		d.owner.JoystickRemoved(dev.id)
		return
	}
}

func (d *Driver) bySDLID(sdlID sdl.JoystickID) *device {
	for _, dev := range d.devices {
		if dev.sdlID == sdlID {
			return dev
		}
	}
	return nil
}

func (d *Driver) Count() int { return len(d.devices) }

func (d *Driver) InstanceID(index int) joystick.InstanceID { return d.devices[index].id }
func (d *Driver) DeviceName(index int) string              { return d.devices[index].name }
func (d *Driver) DevicePath(index int) string              { return "" }
func (d *Driver) DeviceGUID(index int) guid.GUID           { return d.devices[index].guid }
func (d *Driver) DevicePlayerIndex(index int) int          { return d.devices[index].playerIndex }

func (d *Driver) SetDevicePlayerIndex(index, playerIndex int) {
	d.devices[index].playerIndex = playerIndex
}

func (d *Driver) GamepadMapping(index int) (string, bool) { return "", false }

func (d *Driver) Open(h *joystick.Handle, index int) error {
	dev := d.devices[index]
	h.SetCounts(
		int(sdl.GetNumJoystickAxes(dev.js)),
		int(sdl.GetNumJoystickHats(dev.js)),
		int(sdl.GetNumJoystickButtons(dev.js)),
	)
	h.SetHardwareData(dev)
	return nil
}

// Update snapshots SDL's view of the device into the handle; the debounce
// layer turns the raw snapshot into change events.
func (d *Driver) Update(h *joystick.Handle) {
	dev, ok := h.HardwareData().(*device)
	if !ok || !sdl.JoystickConnected(dev.js) {
		return
	}
	ts := joystick.TicksNS()
	for i := int32(0); i < sdl.GetNumJoystickAxes(dev.js); i++ {
		h.SendAxis(ts, int(i), sdl.GetJoystickAxis(dev.js, i))
	}
	for i := int32(0); i < sdl.GetNumJoystickButtons(dev.js); i++ {
		h.SendButton(ts, int(i), sdl.GetJoystickButton(dev.js, i))
	}
	for i := int32(0); i < sdl.GetNumJoystickHats(dev.js); i++ {
		h.SendHat(ts, int(i), sdl.GetJoystickHat(dev.js, i))
	}
}

func (d *Driver) Close(h *joystick.Handle) {
	// The SDL handle belongs to the device table; it closes on removal.
	h.SetHardwareData(nil)
}

// rumbleWindowMS is the duration passed to SDL per rumble write. The
// registry refreshes active rumble well inside it and zeroes it explicitly,
// so the window only has to outlive the resend cadence.
const rumbleWindowMS = 10000

func (d *Driver) Rumble(h *joystick.Handle, lowFrequency, highFrequency uint16) error {
	dev, ok := h.HardwareData().(*device)
	if !ok {
		return joystick.ErrInvalidHandle
	}
	if !sdl.RumbleJoystick(dev.js, lowFrequency, highFrequency, rumbleWindowMS) {
		return fmt.Errorf("sdl3: rumble: %s", sdl.GetError())
	}
	return nil
}

func (d *Driver) RumbleTriggers(h *joystick.Handle, left, right uint16) error {
	return joystick.ErrUnsupported
}

func (d *Driver) SetLED(h *joystick.Handle, red, green, blue uint8) error {
	return joystick.ErrUnsupported
}

func (d *Driver) SendEffect(h *joystick.Handle, data []byte) error {
	return joystick.ErrUnsupported
}

func (d *Driver) Capabilities(h *joystick.Handle) joystick.Capability {
	return joystick.CapRumble
}
