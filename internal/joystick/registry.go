package joystick

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/soar/joyd/internal/guid"
	"github.com/soar/joyd/internal/hints"
	"github.com/soar/joyd/internal/sensor"
	"github.com/soar/joyd/internal/vidpid"
)

// Registry owns the device list, the player-index table and the lock
// serializing every mutation. All public operations acquire the lock for
// their full duration; the registry never spawns goroutines of its own —
// callers drive it by calling Update at a steady cadence.
type Registry struct {
	mu sync.Mutex
	// pending counts callers blocked on mu, so teardown can observe that
	// no acquirer is in flight before the registry reinitializes.
	pending atomic.Int32

	drivers []Driver
	active  []Driver

	// handles is ordered newest-first.
	handles []*Handle
	players []InstanceID

	initialized bool
	quitting    bool
	beingAdded  bool

	allowBackgroundEvents bool

	sink     Sink
	focus    func() bool
	gamepads GamepadLayer
	sensors  *sensor.Subsystem

	orientation Orientation

	// now is the millisecond effect-timer clock, replaceable in tests.
	now func() uint64
}

// New creates a registry over an ordered list of backend drivers. Call Init
// before use.
func New(drivers ...Driver) *Registry {
	r := &Registry{
		drivers: drivers,
		sensors: sensor.NewSubsystem(nil),
		now:     ticksMS,
	}
	hints.AddCallback(hints.AllowBackgroundEvents, func(_, _, value string) {
		r.Lock()
		r.allowBackgroundEvents = hints.ParseBoolean(value, false)
		r.Unlock()
	})
	return r
}

// Lock acquires the registry lock. Public operations take it internally;
// external callers use it to group several calls into one atomic section or
// to call driver-facing handle methods themselves.
func (r *Registry) Lock() {
	r.pending.Add(1)
	r.mu.Lock()
	r.pending.Add(-1)
}

// Unlock releases the registry lock.
func (r *Registry) Unlock() {
	r.mu.Unlock()
}

// Pending returns the number of callers currently blocked acquiring the
// registry lock. Teardown code polls it to observe acquirers in flight.
func (r *Registry) Pending() int32 {
	return r.pending.Load()
}

// SetSink installs the event sink receiving the normalized event stream.
func (r *Registry) SetSink(s Sink) {
	r.Lock()
	defer r.Unlock()
	r.sink = s
}

// SetFocusFunc installs the application-focus probe used for background
// event suppression. With no probe the application counts as focused.
func (r *Registry) SetFocusFunc(focused func() bool) {
	r.Lock()
	defer r.Unlock()
	r.focus = focused
}

// SetGamepadLayer installs the higher-level mapping layer.
func (r *Registry) SetGamepadLayer(layer GamepadLayer) {
	r.Lock()
	defer r.Unlock()
	r.gamepads = layer
}

// SetSensorSubsystem installs the system sensor source used for fusion.
func (r *Registry) SetSensorSubsystem(s *sensor.Subsystem) {
	r.Lock()
	defer r.Unlock()
	if s != nil {
		r.sensors = s
	}
}

// SetNaturalOrientation records the device's natural display orientation,
// which selects the sensor fusion transform.
func (r *Registry) SetNaturalOrientation(o Orientation) {
	r.Lock()
	defer r.Unlock()
	r.orientation = o
}

// Init initializes every driver. It fails only when drivers were configured
// and none of them came up; a partial failure logs and continues.
func (r *Registry) Init() error {
	r.Lock()
	defer r.Unlock()
	if r.initialized {
		return nil
	}

	r.active = r.active[:0]
	for _, d := range r.drivers {
		if err := d.Init(r); err != nil {
			log.Printf("joystick: driver %s failed to initialize: %v", d.Name(), err)
			continue
		}
		r.active = append(r.active, d)
	}
	if len(r.drivers) > 0 && len(r.active) == 0 {
		return fmt.Errorf("joystick: no driver available")
	}
	r.initialized = true
	return nil
}

// Quit notifies removal for every device, tears down any handles still open
// and shuts the drivers down in reverse order. The registry can be
// re-initialized afterwards.
func (r *Registry) Quit() {
	r.Lock()
	defer r.Unlock()
	if !r.initialized {
		return
	}
	r.quitting = true

	for _, id := range r.instancesLocked() {
		r.JoystickRemoved(id)
	}
	for len(r.handles) > 0 {
		h := r.handles[0]
		h.refCount = 1
		r.closeLocked(h)
	}

	for i := len(r.active) - 1; i >= 0; i-- {
		r.active[i].Quit()
	}
	r.active = nil
	r.players = nil
	r.quitting = false
	r.initialized = false
}

// Instances lists every currently attached device, in driver order.
func (r *Registry) Instances() []InstanceID {
	r.Lock()
	defer r.Unlock()
	return r.instancesLocked()
}

func (r *Registry) instancesLocked() []InstanceID {
	var ids []InstanceID
	for _, d := range r.active {
		n := d.Count()
		for i := 0; i < n; i++ {
			ids = append(ids, d.InstanceID(i))
		}
	}
	return ids
}

// resolveLocked maps an instance ID to its driver and backend-local index.
// Devices are not sorted, so this is a linear scan.
func (r *Registry) resolveLocked(id InstanceID) (Driver, int, bool) {
	for _, d := range r.active {
		n := d.Count()
		for i := 0; i < n; i++ {
			if d.InstanceID(i) == id {
				return d, i, true
			}
		}
	}
	return nil, -1, false
}

// NameFor returns the name of an attached device.
func (r *Registry) NameFor(id InstanceID) (string, error) {
	r.Lock()
	defer r.Unlock()
	d, index, ok := r.resolveLocked(id)
	if !ok {
		return "", fmt.Errorf("%w: instance %d", ErrNotFound, id)
	}
	return d.DeviceName(index), nil
}

// PathFor returns the backend path of an attached device.
func (r *Registry) PathFor(id InstanceID) (string, error) {
	r.Lock()
	defer r.Unlock()
	d, index, ok := r.resolveLocked(id)
	if !ok {
		return "", fmt.Errorf("%w: instance %d", ErrNotFound, id)
	}
	path := d.DevicePath(index)
	if path == "" {
		return "", ErrUnsupported
	}
	return path, nil
}

// GUIDFor returns the identity blob of an attached device.
func (r *Registry) GUIDFor(id InstanceID) (guid.GUID, error) {
	r.Lock()
	defer r.Unlock()
	d, index, ok := r.resolveLocked(id)
	if !ok {
		return guid.GUID{}, fmt.Errorf("%w: instance %d", ErrNotFound, id)
	}
	return d.DeviceGUID(index), nil
}

// IsGamepad reports whether an attached device classifies as a gamepad.
func (r *Registry) IsGamepad(id InstanceID) bool {
	r.Lock()
	defer r.Unlock()
	d, index, ok := r.resolveLocked(id)
	if !ok {
		return false
	}
	return r.isGamepadLocked(d.DeviceName(index), d.DeviceGUID(index))
}

func (r *Registry) isGamepadLocked(name string, g guid.GUID) bool {
	if r.gamepads != nil {
		return r.gamepads.IsGamepad(name, g)
	}
	if vidpid.IsKnownController(g.Vendor(), g.Product()) {
		return true
	}
	return vidpid.TypeFromGUID(g) == vidpid.TypeGamepad
}

// Open opens a device by instance ID. Opening an already-open device
// returns the existing handle with its reference count incremented.
func (r *Registry) Open(id InstanceID) (*Handle, error) {
	r.Lock()
	defer r.Unlock()
	return r.openLocked(id)
}

func (r *Registry) openLocked(id InstanceID) (*Handle, error) {
	d, index, ok := r.resolveLocked(id)
	if !ok {
		return nil, fmt.Errorf("%w: instance %d", ErrNotFound, id)
	}

	if h := r.handleFromInstanceLocked(id); h != nil {
		h.refCount++
		return h, nil
	}

	h := &Handle{
		reg:        r,
		magic:      &handleMagic,
		driver:     d,
		instanceID: id,
		refCount:   1,
		attached:   true,
		powerLevel: PowerUnknown,
	}
	h.name = d.DeviceName(index)
	h.path = d.DevicePath(index)
	h.guid = d.DeviceGUID(index)

	if err := d.Open(h, index); err != nil {
		h.magic = nil
		return nil, fmt.Errorf("joystick: open instance %d: %w", id, err)
	}

	// Devices with exactly two axes follow the stick convention of resting
	// at center, as do a few adapters that never report a true centered
	// reading; either way the axes start with a known zero.
	if len(h.axes) == 2 || vidpid.ZeroCentered(h.guid.Vendor(), h.guid.Product()) {
		for i := range h.axes {
			h.axes[i].hasInitialValue = true
		}
	}

	h.isGamepad = r.isGamepadLocked(h.name, h.guid)

	if attempt, invert := r.shouldAttemptSensorFusion(h); attempt {
		r.attemptSensorFusion(h, invert)
	}

	r.handles = append([]*Handle{h}, r.handles...)

	// Deliver the battery level the driver observed during open now that
	// the handle is registered.
	initial := h.powerLevel
	h.powerLevel = PowerUnknown
	h.SendBatteryLevel(initial)

	d.Update(h)
	return h, nil
}

func (r *Registry) closeLocked(h *Handle) {
	if !h.valid() {
		return
	}
	h.refCount--
	if h.refCount > 0 {
		return
	}

	h.props = nil
	if h.rumbleExpiration != 0 {
		r.rumbleLocked(h, 0, 0, 0)
	}
	if h.triggerRumbleExpiration != 0 {
		r.rumbleTriggersLocked(h, 0, 0, 0)
	}
	r.cleanupSensorFusion(h)
	h.driver.Close(h)
	h.magic = nil

	for i, other := range r.handles {
		if other == h {
			r.handles = append(r.handles[:i], r.handles[i+1:]...)
			break
		}
	}

	h.axes = nil
	h.hats = nil
	h.buttons = nil
	h.touchpads = nil
	h.sensors = nil
	h.name = ""
	h.path = ""
	h.serial = ""
	h.hwdata = nil
}

// HandleFromInstanceID returns the open handle for an instance ID, or nil.
func (r *Registry) HandleFromInstanceID(id InstanceID) *Handle {
	r.Lock()
	defer r.Unlock()
	return r.handleFromInstanceLocked(id)
}

func (r *Registry) handleFromInstanceLocked(id InstanceID) *Handle {
	for _, h := range r.handles {
		if h.instanceID == id {
			return h
		}
	}
	return nil
}

// Handles returns the open handles, newest first.
func (r *Registry) Handles() []*Handle {
	r.Lock()
	defer r.Unlock()
	return append([]*Handle(nil), r.handles...)
}

// JoystickAdded is called by a driver when Detect notices a new device. The
// registry lock is already held on this path.
func (r *Registry) JoystickAdded(id InstanceID) {
	if r.quitting {
		return
	}
	d, index, ok := r.resolveLocked(id)
	if !ok {
		return
	}

	r.beingAdded = true

	isGamepad := r.isGamepadLocked(d.DeviceName(index), d.DeviceGUID(index))
	playerIndex := d.DevicePlayerIndex(index)
	if playerIndex < 0 && isGamepad {
		playerIndex = r.freePlayerSlotLocked()
	}
	if playerIndex >= 0 {
		r.setPlayerIndexLocked(playerIndex, id)
	}

	r.post(Event{Type: EventDeviceAdded, Timestamp: TicksNS(), Instance: id})

	r.beingAdded = false

	if isGamepad && r.gamepads != nil {
		r.gamepads.Added(id)
	}
}

// BeingAdded reports whether a device-added notification is in flight, so
// collaborating code invoked from inside it can tell.
func (r *Registry) BeingAdded() bool {
	return r.beingAdded
}

// JoystickRemoved is called by a driver when Detect notices a device went
// away. Open handles stay valid but detach; every control is recentered
// first so consumers never see a device vanish mid-gesture.
func (r *Registry) JoystickRemoved(id InstanceID) {
	if h := r.handleFromInstanceLocked(id); h != nil && h.attached {
		h.forceRecentering(TicksNS())
		h.attached = false
	}

	// The device is gone, so whether it was a gamepad can no longer be
	// determined; notify the gamepad layer regardless.
	if r.gamepads != nil {
		r.gamepads.Removed(id)
	}

	r.post(Event{Type: EventDeviceRemoved, Timestamp: TicksNS(), Instance: id})

	for i := range r.players {
		if r.players[i] == id {
			r.players[i] = 0
			break
		}
	}
}

// Update polls every open device, services effect timers, flushes
// update-complete notifications and finally lets drivers detect hot-plug
// changes. Detect runs last so resources freed by a removal are not touched
// by the same cycle's per-handle loop.
func (r *Registry) Update() {
	r.Lock()
	defer r.Unlock()
	if !r.initialized {
		return
	}

	for _, h := range r.handles {
		if h.attached {
			h.driver.Update(h)
			r.updateSensorFusion(h)

			if h.delayedGuideButton && r.gamepads != nil {
				r.gamepads.HandleDelayedGuideButton(h)
			}
		}

		now := r.now()
		if h.rumbleExpiration != 0 && now >= h.rumbleExpiration {
			r.rumbleLocked(h, 0, 0, 0)
		} else if h.rumbleResend != 0 && now >= h.rumbleResend {
			h.driver.Rumble(h, h.lowFrequencyRumble, h.highFrequencyRumble)
			h.rumbleResend = now + rumbleResendIntervalMS
		}
		if h.triggerRumbleExpiration != 0 && now >= h.triggerRumbleExpiration {
			r.rumbleTriggersLocked(h, 0, 0, 0)
		}
	}

	for _, h := range r.handles {
		if h.updateComplete != 0 {
			r.post(Event{
				Type:      EventUpdateComplete,
				Timestamp: h.updateComplete,
				Instance:  h.instanceID,
			})
			h.updateComplete = 0
		}
	}

	for _, d := range r.active {
		d.Detect()
	}
}

func (r *Registry) shouldIgnoreEvent() bool {
	if r.allowBackgroundEvents {
		return false
	}
	if r.focus != nil {
		return !r.focus()
	}
	return false
}

func (r *Registry) post(ev Event) {
	if r.sink != nil {
		r.sink.Post(ev)
	}
}
