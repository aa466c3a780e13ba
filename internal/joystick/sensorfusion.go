package joystick

import (
	"log"
	"strings"

	"github.com/soar/joyd/internal/hints"
	"github.com/soar/joyd/internal/sensor"
)

// Sensor fusion substitutes the host system's accelerometer and gyroscope
// for a gamepad that reports none of its own — phone-clamp controllers and
// handhelds where the IMU lives in the device the controller is attached to.

// Orientation is the device's natural display orientation, which determines
// how system sensor axes map onto controller axes.
type Orientation int

const (
	OrientationLandscape Orientation = iota
	OrientationPortrait
)

// Controllers that physically clamp onto the host device.
var fusionNameAllowList = []string{
	"Backbone One",
	"Kishi",
}

// shouldAttemptSensorFusion reports whether the handle should borrow system
// sensors, and whether all sensor axes must be sign-inverted.
func (r *Registry) shouldAttemptSensorFusion(h *Handle) (attempt, invert bool) {
	if !h.isGamepad || len(h.sensors) > 0 {
		return false, false
	}

	if hint := hints.Get(hints.SensorFusion); hint != "" {
		if strings.Contains(hint, "0x") {
			list := hints.ParseVIDPIDList(hint)
			return hints.VIDPIDInList(h.guid.Vendor(), h.guid.Product(), list), false
		}
		return hints.ParseBoolean(hint, false), false
	}

	for _, name := range fusionNameAllowList {
		if strings.Contains(h.name, name) {
			return true, false
		}
	}

	// The ROG Ally controller spoofs a wired Xbox 360 pad; it is
	// recognizable by the handheld's own IMU showing up as a system
	// sensor, and its sensor axes all read inverted.
	if h.guid.Vendor() == 0x045e && h.guid.Product() == 0x028e {
		if r.systemSensorsLookInverted() {
			return true, true
		}
	}
	return false, false
}

func (r *Registry) systemSensorsLookInverted() bool {
	if err := r.sensors.Init(); err != nil {
		return false
	}
	defer r.sensors.Quit()

	for _, info := range r.sensors.Sensors() {
		if strings.HasPrefix(info.Name, "Sensor BMI") {
			return true
		}
	}
	return false
}

// attemptSensorFusion borrows the first system accelerometer and gyroscope,
// registering a virtual sensor slot for each. Every borrowed sensor holds
// one reference on the sensor subsystem until the handle closes.
func (r *Registry) attemptSensorFusion(h *Handle, invert bool) {
	if err := r.sensors.Init(); err != nil {
		log.Printf("joystick: sensor fusion unavailable: %v", err)
		return
	}
	defer r.sensors.Quit()

	for _, info := range r.sensors.Sensors() {
		switch info.Type {
		case sensor.TypeAccel:
			if h.accel != nil {
				break
			}
			dev, err := r.sensors.Open(info.ID)
			if err != nil {
				log.Printf("joystick: open system accelerometer: %v", err)
				break
			}
			h.accel = dev
			r.sensors.Init()
			h.AddSensor(sensor.TypeAccel, 0)
		case sensor.TypeGyro:
			if h.gyro != nil {
				break
			}
			dev, err := r.sensors.Open(info.ID)
			if err != nil {
				log.Printf("joystick: open system gyroscope: %v", err)
				break
			}
			h.gyro = dev
			r.sensors.Init()
			h.AddSensor(sensor.TypeGyro, 0)
		}
	}

	if h.accel == nil && h.gyro == nil {
		return
	}
	h.sensorTransform = fusionTransform(r.orientation, invert)
}

// fusionTransform builds the 3x3 axis-remap matrix taking system sensor
// axes to controller axes for the given natural orientation.
func fusionTransform(o Orientation, invert bool) [3][3]float32 {
	var m [3][3]float32
	if o == OrientationPortrait {
		m[0][1] = -1
		m[1][2] = 1
		m[2][0] = -1
	} else {
		m[0][0] = 1
		m[1][2] = 1
		m[2][1] = -1
	}
	if invert {
		for i := range m {
			for j := range m[i] {
				m[i][j] = -m[i][j]
			}
		}
	}
	return m
}

// updateSensorFusion pumps fresh samples from the borrowed system sensors
// through the orientation transform into the handle's sensor slots.
func (r *Registry) updateSensorFusion(h *Handle) {
	if h.accel != nil {
		if reading, ok := h.accel.Poll(); ok {
			h.SendSensor(TicksNS(), sensor.TypeAccel, reading.Timestamp,
				applyTransform(h.sensorTransform, reading.Data))
		}
	}
	if h.gyro != nil {
		if reading, ok := h.gyro.Poll(); ok {
			h.SendSensor(TicksNS(), sensor.TypeGyro, reading.Timestamp,
				applyTransform(h.sensorTransform, reading.Data))
		}
	}
}

func applyTransform(m [3][3]float32, v [3]float32) []float32 {
	return []float32{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// cleanupSensorFusion returns borrowed sensors to the system subsystem,
// dropping one subsystem reference per sensor actually borrowed.
func (r *Registry) cleanupSensorFusion(h *Handle) {
	if h.accel != nil {
		h.accel.Close()
		h.accel = nil
		r.sensors.Quit()
	}
	if h.gyro != nil {
		h.gyro.Close()
		h.gyro = nil
		r.sensors.Quit()
	}
}
