package guid

import "testing"

func TestRoundTripKnownVIDPID(t *testing.T) {
	tests := []struct {
		bus, vendor, product, version uint16
		name                          string
		sig, data                     byte
	}{
		{BusUSB, 0x045e, 0x028e, 0x0114, "Xbox 360 Controller", SigHIDAPI, 1},
		{BusBluetooth, 0x054c, 0x0ce6, 0x0100, "DualSense Wireless Controller", SigHIDAPI, 0},
		{BusUSB, 0x057e, 0x2009, 0x0200, "Pro Controller", SigXInput, 1},
	}

	for _, tt := range tests {
		g := New(tt.bus, tt.vendor, tt.product, tt.version, tt.name, tt.sig, tt.data)

		if g.Bus() != tt.bus {
			t.Errorf("%s: bus = %#x, want %#x", tt.name, g.Bus(), tt.bus)
		}
		vendor, product, version, crc := g.Info()
		if vendor != tt.vendor || product != tt.product || version != tt.version {
			t.Errorf("%s: info = (%#x, %#x, %#x), want (%#x, %#x, %#x)",
				tt.name, vendor, product, version, tt.vendor, tt.product, tt.version)
		}
		if want := CRC16([]byte(tt.name)); crc != want {
			t.Errorf("%s: crc = %#x, want %#x", tt.name, crc, want)
		}
		if g.Signature() != tt.sig {
			t.Errorf("%s: signature = %q, want %q", tt.name, g.Signature(), tt.sig)
		}
	}
}

func TestRoundTripUnknownVIDPID(t *testing.T) {
	name := "Generic   USB  Joystick  "
	g := New(BusUnknown, 0, 0, 0, name, 0, 0)

	vendor, product, version, crc := g.Info()
	if vendor != 0 || product != 0 || version != 0 {
		t.Errorf("info = (%#x, %#x, %#x), want all zero", vendor, product, version)
	}
	if want := CRC16([]byte(name)); crc != want {
		t.Errorf("crc = %#x, want %#x", crc, want)
	}

	// the name is preserved up to the available space
	if got := string(g[4:4+7]); got != name[:7] {
		t.Errorf("embedded name prefix = %q, want %q", got, name[:7])
	}
}

func TestUnknownFormWithSignatureKeepsTrailingBytes(t *testing.T) {
	g := New(BusUnknown, 0, 0, 0, "A very long joystick name", SigVirtual, 3)

	if !g.IsVirtual() {
		t.Error("IsVirtual() = false, want true")
	}
	if g[15] != 3 {
		t.Errorf("driver data = %d, want 3", g[15])
	}
	// the name must not spill into the signature bytes
	if got := string(g[4:13]); got != "A very lo" {
		t.Errorf("embedded name = %q, want %q", got, "A very lo")
	}
	if g[13] != 0 {
		t.Errorf("terminator byte = %#x, want 0", g[13])
	}
}

func TestStringRoundTrip(t *testing.T) {
	g := New(BusUSB, 0x046d, 0xc294, 0x0111, "Logitech wheel", SigHIDAPI, 0)

	s := g.String()
	if len(s) != 32 {
		t.Fatalf("len(String()) = %d, want 32", len(s))
	}

	back, err := FromString(s)
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	if back != g {
		t.Errorf("round trip mismatch: %s != %s", back, g)
	}
}

func TestFromStringRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "zz", "030000005e040000", "0300xx005e0400008e02000014010000"} {
		if _, err := FromString(s); err == nil {
			t.Errorf("FromString(%q): expected error", s)
		}
	}
}

func TestUsesVersion(t *testing.T) {
	std := New(BusUSB, 0x045e, 0x028e, 0x0114, "pad", SigHIDAPI, 0)
	if !std.UsesVersion() {
		t.Error("standard GUID should use version")
	}

	mfi := New(BusBluetooth, 0x05ac, 0x0001, 0x00ff, "pad", SigMFI, 0)
	if mfi.UsesVersion() {
		t.Error("MFI GUID should not use version")
	}

	unnamed := NewForName("pad")
	if unnamed.UsesVersion() {
		t.Error("name-only GUID should not use version")
	}
}

func TestCRC16KnownValue(t *testing.T) {
	// CRC-16/ARC check value for "123456789"
	if got := CRC16([]byte("123456789")); got != 0xBB3D {
		t.Errorf("CRC16 = %#x, want 0xbb3d", got)
	}
}
