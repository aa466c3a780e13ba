package joystick

import (
	"testing"

	"github.com/soar/joyd/internal/hints"
	"github.com/soar/joyd/internal/sensor"
)

type fusionDevice struct {
	reading sensor.Reading
	fresh   bool
	closed  bool
}

func (d *fusionDevice) Poll() (sensor.Reading, bool) {
	if !d.fresh {
		return d.reading, false
	}
	d.fresh = false
	return d.reading, true
}

func (d *fusionDevice) Close() error {
	d.closed = true
	return nil
}

type fusionProvider struct {
	infos   []sensor.Info
	devices map[sensor.ID]*fusionDevice
}

func newFusionProvider(accelName, gyroName string) *fusionProvider {
	return &fusionProvider{
		infos: []sensor.Info{
			{ID: 1, Name: accelName, Type: sensor.TypeAccel},
			{ID: 2, Name: gyroName, Type: sensor.TypeGyro},
		},
		devices: map[sensor.ID]*fusionDevice{
			1: {},
			2: {},
		},
	}
}

func (p *fusionProvider) Init() error     { return nil }
func (p *fusionProvider) Quit()           {}
func (p *fusionProvider) Sensors() []sensor.Info { return p.infos }

func (p *fusionProvider) Open(id sensor.ID) (sensor.Device, error) {
	d, ok := p.devices[id]
	if !ok {
		return nil, sensor.ErrNotFound
	}
	return d, nil
}

func TestFusionTransform(t *testing.T) {
	landscape := fusionTransform(OrientationLandscape, false)
	if landscape[0][0] != 1 || landscape[1][2] != 1 || landscape[2][1] != -1 {
		t.Errorf("landscape transform = %v", landscape)
	}

	portrait := fusionTransform(OrientationPortrait, false)
	if portrait[0][1] != -1 || portrait[1][2] != 1 || portrait[2][0] != -1 {
		t.Errorf("portrait transform = %v", portrait)
	}

	inverted := fusionTransform(OrientationLandscape, true)
	for i := range inverted {
		for j := range inverted[i] {
			if inverted[i][j] != -landscape[i][j] {
				t.Fatalf("inverted[%d][%d] = %v, want %v", i, j, inverted[i][j], -landscape[i][j])
			}
		}
	}
}

func TestSensorFusionBorrowAndRelease(t *testing.T) {
	defer hints.Reset(hints.SensorFusion)
	hints.Set(hints.SensorFusion, "1")

	provider := newFusionProvider("Accelerometer", "Gyroscope")
	subsystem := sensor.NewSubsystem(provider)

	dev := newFakeDevice("Kishi-less Pad", 0x1234, 0x5678)
	drv := &fakeDriver{devices: []*fakeDevice{dev}}
	r, rec := newTestRegistry(t, drv)
	r.SetGamepadLayer(&fakeGamepadLayer{})
	r.SetSensorSubsystem(subsystem)

	h, err := r.Open(dev.id)
	if err != nil {
		t.Fatal(err)
	}

	if h.NumSensors() != 2 {
		t.Fatalf("virtual sensor slots = %d, want 2", h.NumSensors())
	}
	if got := subsystem.Refs(); got != 2 {
		t.Fatalf("subsystem refs while fused = %d, want 2 (one per borrowed sensor)", got)
	}

	if err := h.EnableSensor(sensor.TypeAccel, true); err != nil {
		t.Fatal(err)
	}
	provider.devices[1].reading = sensor.Reading{Data: [3]float32{1, 2, 3}, Timestamp: 99}
	provider.devices[1].fresh = true

	r.Update()

	samples := rec.ofType(EventSensorUpdate)
	if len(samples) != 1 {
		t.Fatalf("sensor events = %d, want 1", len(samples))
	}
	// Landscape transform: x, z, -y.
	want := [3]float32{1, 3, -2}
	if samples[0].Data != want {
		t.Errorf("fused sample = %v, want %v", samples[0].Data, want)
	}
	if samples[0].SensorTimestamp != 99 {
		t.Errorf("sensor timestamp = %d, want 99", samples[0].SensorTimestamp)
	}

	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if got := subsystem.Refs(); got != 0 {
		t.Errorf("subsystem refs after close = %d, want 0", got)
	}
	if !provider.devices[1].closed || !provider.devices[2].closed {
		t.Error("borrowed sensors not closed")
	}
}

func TestSensorFusionDisabledSensorStaysSilent(t *testing.T) {
	defer hints.Reset(hints.SensorFusion)
	hints.Set(hints.SensorFusion, "1")

	provider := newFusionProvider("Accelerometer", "Gyroscope")

	dev := newFakeDevice("Pad", 0x1234, 0x5678)
	drv := &fakeDriver{devices: []*fakeDevice{dev}}
	r, rec := newTestRegistry(t, drv)
	r.SetGamepadLayer(&fakeGamepadLayer{})
	r.SetSensorSubsystem(sensor.NewSubsystem(provider))

	h, err := r.Open(dev.id)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	provider.devices[1].reading = sensor.Reading{Data: [3]float32{1, 2, 3}, Timestamp: 99}
	provider.devices[1].fresh = true
	r.Update()

	if got := len(rec.ofType(EventSensorUpdate)); got != 0 {
		t.Errorf("sensor events without subscription = %d, want 0", got)
	}
}

func TestSensorFusionVIDPIDAllowList(t *testing.T) {
	defer hints.Reset(hints.SensorFusion)
	hints.Set(hints.SensorFusion, "0x1234/0x5678")

	provider := newFusionProvider("Accelerometer", "Gyroscope")

	listed := newFakeDevice("Listed", 0x1234, 0x5678)
	other := newFakeDevice("Other", 0x1111, 0x2222)
	drv := &fakeDriver{devices: []*fakeDevice{listed, other}}
	r, _ := newTestRegistry(t, drv)
	r.SetGamepadLayer(&fakeGamepadLayer{})
	r.SetSensorSubsystem(sensor.NewSubsystem(provider))

	h1, err := r.Open(listed.id)
	if err != nil {
		t.Fatal(err)
	}
	defer h1.Close()
	if h1.NumSensors() != 2 {
		t.Errorf("listed device sensors = %d, want 2", h1.NumSensors())
	}

	h2, err := r.Open(other.id)
	if err != nil {
		t.Fatal(err)
	}
	defer h2.Close()
	if h2.NumSensors() != 0 {
		t.Errorf("unlisted device sensors = %d, want 0", h2.NumSensors())
	}
}

func TestSensorFusionSpoofedPadQuirk(t *testing.T) {
	hints.Reset(hints.SensorFusion)

	// A handheld spoofing a wired Xbox 360 pad, detectable by its IMU
	// showing up among the system sensors; all axes read inverted.
	provider := newFusionProvider("Sensor BMI320 Acc", "Sensor BMI320 Gyr")

	dev := newFakeDevice("Xbox 360 Controller", 0x045e, 0x028e)
	drv := &fakeDriver{devices: []*fakeDevice{dev}}
	r, _ := newTestRegistry(t, drv)
	r.SetSensorSubsystem(sensor.NewSubsystem(provider))

	h, err := r.Open(dev.id)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if h.NumSensors() != 2 {
		t.Fatalf("sensors = %d, want 2", h.NumSensors())
	}
	want := fusionTransform(OrientationLandscape, true)
	if h.sensorTransform != want {
		t.Errorf("transform = %v, want inverted landscape %v", h.sensorTransform, want)
	}
}

func TestNoFusionForDeviceWithOwnSensors(t *testing.T) {
	defer hints.Reset(hints.SensorFusion)
	hints.Set(hints.SensorFusion, "1")

	dev := newFakeDevice("Pad", 0x1234, 0x5678)
	drv := &fakeDriver{devices: []*fakeDevice{dev}}
	r, _ := newTestRegistry(t, drv)
	r.SetGamepadLayer(&fakeGamepadLayer{})
	r.SetSensorSubsystem(sensor.NewSubsystem(newFusionProvider("Accelerometer", "Gyroscope")))

	r.Lock()
	h := &Handle{reg: r, isGamepad: true}
	h.AddSensor(sensor.TypeGyro, 250)
	attempt, _ := r.shouldAttemptSensorFusion(h)
	r.Unlock()

	if attempt {
		t.Error("fusion attempted for a device with built-in sensors")
	}
}
