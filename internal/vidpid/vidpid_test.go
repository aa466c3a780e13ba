package vidpid

import (
	"testing"

	"github.com/soar/joyd/internal/guid"
	"github.com/soar/joyd/internal/hints"
)

func TestTypeOf(t *testing.T) {
	tests := []struct {
		vendor, product uint16
		want            Type
	}{
		{0x046d, 0xc294, TypeWheel},
		{0x1532, 0x0a00, TypeArcadeStick},
		{0x044f, 0x0402, TypeFlightStick},
		{0x044f, 0x0404, TypeThrottle},
		{0x045e, 0x028e, TypeGamepad},
		{0xdead, 0xbeef, TypeUnknown},
	}
	for _, tt := range tests {
		if got := TypeOf(tt.vendor, tt.product); got != tt.want {
			t.Errorf("TypeOf(%#x, %#x) = %v, want %v", tt.vendor, tt.product, got, tt.want)
		}
	}
}

func TestTypeFromGUIDXInputSubtype(t *testing.T) {
	g := guid.New(guid.BusUSB, 0x045e, 0x028e, 0, "pad", guid.SigXInput, 0x02)
	if got := TypeFromGUID(g); got != TypeWheel {
		t.Errorf("TypeFromGUID(xinput wheel) = %v, want %v", got, TypeWheel)
	}

	g = guid.New(guid.BusUSB, 0x045e, 0x028e, 0, "pad", guid.SigXInput, 0x08)
	if got := TypeFromGUID(g); got != TypeDrumKit {
		t.Errorf("TypeFromGUID(xinput drumkit) = %v, want %v", got, TypeDrumKit)
	}
}

func TestTypeFromGUIDFallsBackToVIDPID(t *testing.T) {
	g := guid.New(guid.BusUSB, 0x046d, 0xc294, 0x0100, "wheel", guid.SigHIDAPI, 0)
	if got := TypeFromGUID(g); got != TypeWheel {
		t.Errorf("TypeFromGUID(hidapi wheel) = %v, want %v", got, TypeWheel)
	}
}

func TestShouldIgnoreBlacklist(t *testing.T) {
	g := guid.New(guid.BusUSB, 0x045e, 0x0750, 0, "Wired Keyboard 600", guid.SigHIDAPI, 0)
	if !ShouldIgnore("Wired Keyboard 600", g) {
		t.Error("blacklisted keyboard not ignored")
	}

	pad := guid.New(guid.BusUSB, 0x045e, 0x028e, 0, "Xbox 360 Controller", guid.SigHIDAPI, 0)
	if ShouldIgnore("Xbox 360 Controller", pad) {
		t.Error("gamepad wrongly ignored")
	}
}

func TestShouldIgnoreChakramHint(t *testing.T) {
	defer hints.Reset(hints.ROGChakram)

	g := guid.New(guid.BusUSB, 0x0b05, 0x18e3, 0, "ROG Chakram", guid.SigHIDAPI, 0)

	hints.Reset(hints.ROGChakram)
	if !ShouldIgnore("ROG Chakram", g) {
		t.Error("Chakram not ignored by default")
	}

	hints.Set(hints.ROGChakram, "1")
	if ShouldIgnore("ROG Chakram", g) {
		t.Error("Chakram ignored despite opt-in hint")
	}
}

func TestShouldIgnoreHintList(t *testing.T) {
	defer hints.Reset(hints.IgnoreDevices)

	g := guid.New(guid.BusUSB, 0x1234, 0x5678, 0, "pad", guid.SigHIDAPI, 0)
	if ShouldIgnore("pad", g) {
		t.Fatal("device ignored before hint set")
	}

	hints.Set(hints.IgnoreDevices, "0x1234/0x5678")
	if !ShouldIgnore("pad", g) {
		t.Error("device not ignored via hint list")
	}
}

func TestZeroCentered(t *testing.T) {
	if !ZeroCentered(0x0e8f, 0x3013) {
		t.Error("HuiJia adapter should be zero centered")
	}
	if ZeroCentered(0x045e, 0x028e) {
		t.Error("Xbox 360 pad should not be zero centered")
	}
}

func TestCreateName(t *testing.T) {
	tests := []struct {
		vendor, product          uint16
		vendorName, productName string
		want                     string
	}{
		{0x054c, 0x0ce6, "Sony", "DualSense Wireless Controller", "Sony DualSense Wireless Controller"},
		{0, 0, "", "  Pro   Controller ", "Pro Controller"},
		{0x1bad, 0xf502, "HORI CO.,LTD", "Real Arcade Pro", "HORI Real Arcade Pro"},
		{0x1532, 0x0a00, "", "Razer Razer Atrox", "Razer Atrox"},
		{0x1234, 0x5678, "", "", "0x1234/0x5678"},
		{0, 0, "", "", "Controller"},
	}
	for _, tt := range tests {
		got := CreateName(tt.vendor, tt.product, tt.vendorName, tt.productName)
		if got != tt.want {
			t.Errorf("CreateName(%q, %q) = %q, want %q", tt.vendorName, tt.productName, got, tt.want)
		}
	}
}
