package sensor

import "testing"

type fakeProvider struct {
	inits, quits int
	sensors      []Info
}

func (p *fakeProvider) Init() error { p.inits++; return nil }
func (p *fakeProvider) Quit()       { p.quits++ }
func (p *fakeProvider) Sensors() []Info {
	return p.sensors
}
func (p *fakeProvider) Open(id ID) (Device, error) {
	for _, info := range p.sensors {
		if info.ID == id {
			return fakeDevice{}, nil
		}
	}
	return nil, ErrNotFound
}

type fakeDevice struct{}

func (fakeDevice) Poll() (Reading, bool) { return Reading{}, false }
func (fakeDevice) Close() error          { return nil }

func TestSubsystemRefcount(t *testing.T) {
	p := &fakeProvider{sensors: []Info{{ID: 1, Name: "Accel", Type: TypeAccel}}}
	s := NewSubsystem(p)

	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if p.inits != 1 {
		t.Errorf("provider inits = %d, want 1", p.inits)
	}

	s.Quit()
	if p.quits != 0 {
		t.Error("provider quit before last reference released")
	}
	s.Quit()
	if p.quits != 1 {
		t.Errorf("provider quits = %d, want 1", p.quits)
	}

	s.Quit() // extra quit is a no-op
	if p.quits != 1 {
		t.Errorf("provider quits after extra Quit = %d, want 1", p.quits)
	}
}

func TestSubsystemOpenRequiresInit(t *testing.T) {
	p := &fakeProvider{sensors: []Info{{ID: 1, Name: "Accel", Type: TypeAccel}}}
	s := NewSubsystem(p)

	if _, err := s.Open(1); err == nil {
		t.Error("Open succeeded without Init")
	}

	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	defer s.Quit()

	if _, err := s.Open(1); err != nil {
		t.Errorf("Open(1) = %v", err)
	}
	if _, err := s.Open(42); err == nil {
		t.Error("Open(42) succeeded for unknown ID")
	}
}
