package joystick

import (
	"testing"

	"github.com/soar/joyd/internal/guid"
)

func openTestHandle(t *testing.T, dev *fakeDevice) (*Registry, *recorder, *Handle) {
	t.Helper()
	drv := &fakeDriver{devices: []*fakeDevice{dev}}
	r, rec := newTestRegistry(t, drv)
	h, err := r.Open(dev.id)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { h.Close() })
	return r, rec, h
}

func TestAxisJitterSuppression(t *testing.T) {
	r, rec, h := openTestHandle(t, newFakeDevice("Pad", 0x1234, 0x5678))
	ts := TicksNS()

	r.Lock()
	first := h.SendAxis(ts, 0, 100)
	second := h.SendAxis(ts, 0, 90)
	third := h.SendAxis(ts, 0, 5000)
	r.Unlock()

	if first || second {
		t.Error("sub-jitter readings were delivered")
	}
	if !third {
		t.Fatal("real motion was suppressed")
	}

	axes := rec.ofType(EventAxisMotion)
	if len(axes) != 2 {
		t.Fatalf("axis events = %d, want 2 (initial value then motion)", len(axes))
	}
	if axes[0].Value != 100 || axes[1].Value != 5000 {
		t.Errorf("axis values = %d, %d, want 100, 5000", axes[0].Value, axes[1].Value)
	}
}

func TestAxisSaturatedRezero(t *testing.T) {
	r, _, h := openTestHandle(t, newFakeDevice("Pad", 0x1234, 0x5678))
	ts := TicksNS()

	// A trigger that wakes up reporting full deflection, then snaps back
	// well inside quarter range, re-establishes its resting value there.
	r.Lock()
	h.SendAxis(ts, 1, AxisMax)
	h.SendAxis(ts, 1, 50)
	r.Unlock()

	initial, has, err := h.AxisInitialState(1)
	if err != nil {
		t.Fatal(err)
	}
	if !has || initial != 50 {
		t.Errorf("initial = %d (has %v), want re-zeroed to 50", initial, has)
	}
}

func TestVirtualAxisSkipsJitterFilter(t *testing.T) {
	dev := newFakeDevice("Virtual Pad", 0, 0)
	dev.guid = guid.New(guid.BusVirtual, 0, 0, 0, "Virtual Pad", guid.SigVirtual, 0)
	r, rec, h := openTestHandle(t, dev)

	r.Lock()
	delivered := h.SendAxis(TicksNS(), 0, 100)
	r.Unlock()

	if !delivered {
		t.Fatal("virtual device reading suppressed as jitter")
	}
	if len(rec.ofType(EventAxisMotion)) == 0 {
		t.Error("no axis event for virtual device")
	}
}

func TestHatDuplicateSuppression(t *testing.T) {
	r, rec, h := openTestHandle(t, newFakeDevice("Pad", 0x1234, 0x5678))
	ts := TicksNS()

	r.Lock()
	first := h.SendHat(ts, 0, HatUp)
	second := h.SendHat(ts, 0, HatUp)
	r.Unlock()

	if !first {
		t.Fatal("hat change suppressed")
	}
	if second {
		t.Error("duplicate hat value delivered")
	}
	if got := len(rec.ofType(EventHatMotion)); got != 1 {
		t.Errorf("hat events = %d, want 1", got)
	}
}

func TestFocusSuppression(t *testing.T) {
	r, _, h := openTestHandle(t, newFakeDevice("Pad", 0x1234, 0x5678))

	focused := true
	r.SetFocusFunc(func() bool { return focused })

	ts := TicksNS()

	// Establish axis 0 at rest 0, moved to 5000, and press a button.
	r.Lock()
	h.SendAxis(ts, 0, 0)
	h.SendAxis(ts, 0, 5000)
	h.SendButton(ts, 0, true)
	h.SendHat(ts, 0, HatUp)
	r.Unlock()

	focused = false
	ts = TicksNS()

	r.Lock()
	awayDelivered := h.SendAxis(ts, 0, 6000)
	towardDelivered := h.SendAxis(ts, 0, 2000)
	pressDelivered := h.SendButton(ts, 1, true)
	releaseDelivered := h.SendButton(ts, 0, false)
	hatHeld := h.SendHat(ts, 0, HatDown)
	hatCentered := h.SendHat(ts, 0, HatCentered)
	r.Unlock()

	if awayDelivered {
		t.Error("unfocused motion away from center delivered")
	}
	if !towardDelivered {
		t.Error("unfocused motion toward center suppressed")
	}
	if pressDelivered {
		t.Error("unfocused press delivered")
	}
	if !releaseDelivered {
		t.Error("unfocused release suppressed")
	}
	if hatHeld {
		t.Error("unfocused hat deflection delivered")
	}
	if !hatCentered {
		t.Error("unfocused hat centering suppressed")
	}
}

func TestTouchpadTransitions(t *testing.T) {
	dev := newFakeDevice("Pad", 0x1234, 0x5678)
	dev.ntouchpads = 1
	r, rec, h := openTestHandle(t, dev)
	ts := TicksNS()

	r.Lock()
	h.SendTouchpad(ts, 0, 0, true, 0.25, 0.5, 1.0)
	h.SendTouchpad(ts, 0, 0, true, 0.25, 0.5, 1.0) // no-op repeat
	h.SendTouchpad(ts, 0, 0, true, 0.5, 0.5, 1.0)
	h.SendTouchpad(ts, 0, 0, false, -1, -1, 0)
	r.Unlock()

	if got := len(rec.ofType(EventTouchpadDown)); got != 1 {
		t.Errorf("down events = %d, want 1", got)
	}
	if got := len(rec.ofType(EventTouchpadMotion)); got != 1 {
		t.Errorf("motion events = %d, want 1", got)
	}
	ups := rec.ofType(EventTouchpadUp)
	if len(ups) != 1 {
		t.Fatalf("up events = %d, want 1", len(ups))
	}
	// Release without coordinates holds the last position, pressure drops.
	if ups[0].X != 0.5 || ups[0].Y != 0.5 || ups[0].Pressure != 0 {
		t.Errorf("up at (%v,%v,%v), want (0.5,0.5,0)", ups[0].X, ups[0].Y, ups[0].Pressure)
	}

	finger, err := h.TouchpadFinger(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if finger.Down {
		t.Error("finger still down after release")
	}
}

func TestTouchpadClamping(t *testing.T) {
	dev := newFakeDevice("Pad", 0x1234, 0x5678)
	dev.ntouchpads = 1
	r, rec, h := openTestHandle(t, dev)

	r.Lock()
	h.SendTouchpad(TicksNS(), 0, 0, true, -0.5, 1.5, 2.0)
	r.Unlock()

	downs := rec.ofType(EventTouchpadDown)
	if len(downs) != 1 {
		t.Fatal("no down event")
	}
	if downs[0].X != 0 || downs[0].Y != 1 || downs[0].Pressure != 1 {
		t.Errorf("clamped to (%v,%v,%v), want (0,1,1)", downs[0].X, downs[0].Y, downs[0].Pressure)
	}
}

func TestTwoAxisDevicePreCentered(t *testing.T) {
	dev := newFakeDevice("Stick", 0x1234, 0x5678)
	dev.naxes = 2
	_, _, h := openTestHandle(t, dev)

	for i := 0; i < 2; i++ {
		_, has, err := h.AxisInitialState(i)
		if err != nil {
			t.Fatal(err)
		}
		if !has {
			t.Errorf("axis %d of two-axis device lacks initial value", i)
		}
	}
}
