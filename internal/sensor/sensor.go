// Package sensor exposes the host system's motion sensors (accelerometer,
// gyroscope) behind a refcounted subsystem. The joystick core borrows these
// for gamepads that lack built-in sensors.
package sensor

import (
	"errors"
	"fmt"
	"sync"
)

// Type identifies a kind of motion sensor.
type Type int

const (
	TypeInvalid Type = iota - 1
	TypeUnknown
	TypeAccel
	TypeGyro
)

func (t Type) String() string {
	switch t {
	case TypeAccel:
		return "accelerometer"
	case TypeGyro:
		return "gyroscope"
	case TypeUnknown:
		return "unknown"
	}
	return "invalid"
}

// ID names one sensor exposed by the provider. Zero is never a valid ID.
type ID uint32

// Info describes an available sensor.
type Info struct {
	ID   ID
	Name string
	Type Type
}

// Reading is one sample from an open sensor.
type Reading struct {
	Data      [3]float32
	Timestamp uint64 // nanoseconds, non-zero
}

// Device is an open sensor delivering samples.
type Device interface {
	// Poll returns the most recent sample and whether a new one arrived
	// since the previous call.
	Poll() (Reading, bool)
	Close() error
}

// Provider is the platform integration enumerating and opening sensors.
type Provider interface {
	Init() error
	Quit()
	Sensors() []Info
	Open(id ID) (Device, error)
}

// ErrNotFound is returned when opening an unknown sensor ID.
var ErrNotFound = errors.New("sensor: not found")

// Subsystem wraps a Provider with reference counting so independent
// borrowers (one per borrowed sensor) can share initialization.
type Subsystem struct {
	mu       sync.Mutex
	provider Provider
	refs     int
}

// NewSubsystem wraps the given provider. A nil provider yields a subsystem
// that initializes successfully but exposes no sensors.
func NewSubsystem(p Provider) *Subsystem {
	if p == nil {
		p = stubProvider{}
	}
	return &Subsystem{provider: p}
}

// Init increments the subsystem reference count, initializing the provider
// on the first reference.
func (s *Subsystem) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs == 0 {
		if err := s.provider.Init(); err != nil {
			return fmt.Errorf("sensor: init: %w", err)
		}
	}
	s.refs++
	return nil
}

// Quit decrements the reference count, shutting the provider down when the
// last reference is released. Extra calls are ignored.
func (s *Subsystem) Quit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs == 0 {
		return
	}
	s.refs--
	if s.refs == 0 {
		s.provider.Quit()
	}
}

// Refs returns the current reference count. Intended for tests.
func (s *Subsystem) Refs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs
}

// Sensors enumerates the available sensors.
func (s *Subsystem) Sensors() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs == 0 {
		return nil
	}
	return s.provider.Sensors()
}

// Open opens one sensor for sampling.
func (s *Subsystem) Open(id ID) (Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs == 0 {
		return nil, errors.New("sensor: subsystem not initialized")
	}
	return s.provider.Open(id)
}

type stubProvider struct{}

func (stubProvider) Init() error            { return nil }
func (stubProvider) Quit()                  {}
func (stubProvider) Sensors() []Info        { return nil }
func (stubProvider) Open(ID) (Device, error) { return nil, ErrNotFound }
