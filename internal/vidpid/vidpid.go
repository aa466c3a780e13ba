// Package vidpid classifies joystick devices by their USB vendor/product
// identity: device subtype (wheel, arcade stick, flight stick, throttle),
// devices to ignore outright, devices whose axes are known to rest at zero,
// and display-name synthesis for devices with poor descriptor strings.
//
// The tables are static reference data; only the lookup logic is interesting.
package vidpid

import (
	"strings"

	"github.com/soar/joyd/internal/guid"
	"github.com/soar/joyd/internal/hints"
)

// Type is a coarse joystick device subtype.
type Type int

const (
	TypeUnknown Type = iota
	TypeGamepad
	TypeWheel
	TypeArcadeStick
	TypeFlightStick
	TypeDancePad
	TypeGuitar
	TypeDrumKit
	TypeArcadePad
	TypeThrottle
)

func (t Type) String() string {
	switch t {
	case TypeGamepad:
		return "gamepad"
	case TypeWheel:
		return "wheel"
	case TypeArcadeStick:
		return "arcadestick"
	case TypeFlightStick:
		return "flightstick"
	case TypeDancePad:
		return "dancepad"
	case TypeGuitar:
		return "guitar"
	case TypeDrumKit:
		return "drumkit"
	case TypeArcadePad:
		return "arcadepad"
	case TypeThrottle:
		return "throttle"
	}
	return "unknown"
}

func pair(vendor, product uint16) hints.VIDPID {
	return hints.MakeVIDPID(vendor, product)
}

var wheels = map[hints.VIDPID]bool{
	pair(0x0079, 0x1864): true, // DragonRise wired wheel (active mode)
	pair(0x046d, 0xc294): true, // Logitech generic wheel
	pair(0x046d, 0xc295): true, // Logitech Momo Force
	pair(0x046d, 0xc298): true, // Logitech Driving Force Pro
	pair(0x046d, 0xc299): true, // Logitech G25
	pair(0x046d, 0xc29a): true, // Logitech Driving Force GT
	pair(0x046d, 0xc29b): true, // Logitech G27
	pair(0x046d, 0xc24f): true, // Logitech G29 (PS3)
	pair(0x046d, 0xc260): true, // Logitech G29 (PS4)
	pair(0x046d, 0xc261): true, // Logitech G920 (initial mode)
	pair(0x046d, 0xc262): true, // Logitech G920 (active mode)
	pair(0x046d, 0xc26e): true, // Logitech G923
	pair(0x046d, 0xca03): true, // Logitech Momo Racing
	pair(0x044f, 0xb65d): true, // Thrustmaster Wheel FFB
	pair(0x044f, 0xb677): true, // Thrustmaster T150
	pair(0x044f, 0xb696): true, // Thrustmaster T248
	pair(0x044f, 0xb66e): true, // Thrustmaster T300RS
	pair(0x044f, 0xb65e): true, // Thrustmaster T500RS
	pair(0x0eb7, 0x0001): true, // Fanatec ClubSport Wheel Base V2
	pair(0x0eb7, 0x0004): true, // Fanatec ClubSport Wheel Base V2.5
	pair(0x0eb7, 0x0020): true, // Fanatec CSL DD
	pair(0x11ff, 0x0511): true, // DragonRise wired wheel (initial mode)
}

var arcadeSticks = map[hints.VIDPID]bool{
	pair(0x0079, 0x181a): true, // Venom Arcade Stick
	pair(0x0c12, 0x0ef6): true, // Hitbox Arcade Stick
	pair(0x0f0d, 0x0016): true, // Hori Real Arcade Pro.EX
	pair(0x0f0d, 0x006a): true, // Real Arcade Pro 4
	pair(0x0f0d, 0x011c): true, // Hori Fighting Stick alpha (PS4 mode)
	pair(0x146b, 0x0604): true, // NACON Daija Arcade Stick
	pair(0x1532, 0x0a00): true, // Razer Atrox Arcade Stick
	pair(0x1bad, 0xf502): true, // Hori Real Arcade Pro.VX SA
	pair(0x20d6, 0xa715): true, // PowerA Fusion Arcade Stick
	pair(0x24c6, 0x5000): true, // Razer Atrox Arcade Stick
	pair(0x2c22, 0x2300): true, // Qanba Obsidian (PS4 mode)
	pair(0x2c22, 0x2503): true, // Qanba Dragon (PC mode)
}

var flightSticks = map[hints.VIDPID]bool{
	pair(0x044f, 0x0402): true, // HOTAS Warthog Joystick
	pair(0x0738, 0x2221): true, // Saitek Pro Flight X-56 Rhino Stick
	pair(0x044f, 0xb10a): true, // Thrustmaster T.16000M
	pair(0x046d, 0xc215): true, // Logitech Extreme 3D
	pair(0x231d, 0x0126): true, // Gunfighter Mk.III (right)
	pair(0x231d, 0x0127): true, // Gunfighter Mk.III (left)
}

var throttles = map[hints.VIDPID]bool{
	pair(0x044f, 0x0404): true, // HOTAS Warthog Throttle
	pair(0x0738, 0xa221): true, // Saitek Pro Flight X-56 Rhino Throttle
}

// knownControllers is a trimmed table of vendor/product pairs known to be
// standard gamepads. The full classification database lives outside the core.
var knownControllers = map[hints.VIDPID]bool{
	pair(0x045e, 0x028e): true, // Xbox 360 Controller
	pair(0x045e, 0x02d1): true, // Xbox One Controller
	pair(0x045e, 0x02ea): true, // Xbox One S Controller
	pair(0x045e, 0x0b12): true, // Xbox Series X Controller
	pair(0x054c, 0x0268): true, // DualShock 3
	pair(0x054c, 0x05c4): true, // DualShock 4 v1
	pair(0x054c, 0x09cc): true, // DualShock 4 v2
	pair(0x054c, 0x0ce6): true, // DualSense
	pair(0x054c, 0x0df2): true, // DualSense Edge
	pair(0x057e, 0x2009): true, // Switch Pro Controller
	pair(0x057e, 0x2017): true, // Switch SNES Controller
	pair(0x0955, 0x7214): true, // NVIDIA SHIELD Controller
	pair(0x18d1, 0x9400): true, // Google Stadia Controller
	pair(0x1949, 0x0419): true, // Amazon Luna Controller
	pair(0x28de, 0x1102): true, // Steam Controller
	pair(0x28de, 0x1205): true, // Steam Deck
	pair(0x2dc8, 0x6001): true, // 8BitDo SN30 Pro
	pair(0x0e8f, 0x3013): true, // HuiJia SNES adapter
	pair(0x05a0, 0x3232): true, // 8Bitdo Zero Gamepad
}

// joystickBlacklist lists devices that expose a joystick interface but are
// not joysticks (keyboards, mice, tablets, LED controllers).
var joystickBlacklist = map[hints.VIDPID]bool{
	pair(0x045e, 0x009d): true, // Microsoft Wireless Optical Desktop 2.10
	pair(0x045e, 0x00b0): true, // Microsoft Digital Media Pro Keyboard
	pair(0x045e, 0x00b4): true, // Microsoft Digital Media Keyboard
	pair(0x045e, 0x0730): true, // Microsoft Digital Media Keyboard 3000
	pair(0x045e, 0x0745): true, // Microsoft 2.4GHz Transceiver
	pair(0x045e, 0x0748): true, // Microsoft SideWinder Transceiver
	pair(0x045e, 0x0750): true, // Microsoft Wired Keyboard 600
	pair(0x045e, 0x0768): true, // Microsoft Sidewinder X4 keyboard
	pair(0x045e, 0x0773): true, // Microsoft Arc Touch Mouse Transceiver
	pair(0x045e, 0x07a5): true, // Microsoft 2.4GHz Transceiver v9.0
	pair(0x045e, 0x07b2): true, // Microsoft Nano Transceiver v1.0
	pair(0x045e, 0x0800): true, // Microsoft Nano Transceiver v2.0
	pair(0x046d, 0xc30a): true, // Logitech iTouch Composite keyboard
	pair(0x04d9, 0xa0df): true, // Tek Syndicate Mouse
	pair(0x056a, 0x0010): true, // Wacom ET-0405 Graphire
	pair(0x056a, 0x0011): true, // Wacom Graphire2 (4x5)
	pair(0x056a, 0x0013): true, // Wacom Graphire3 (4x5)
	pair(0x056a, 0x00d1): true, // Wacom Bamboo Pen and Touch
	pair(0x09da, 0x054f): true, // A4 Tech G7 750 mouse
	pair(0x09da, 0x3043): true, // A4 Tech Bloody R8A Gaming Mouse
	pair(0x09da, 0x9066): true, // A4 Tech Sharkoon Fireglider Optical
	pair(0x1b1c, 0x1b3c): true, // Corsair Harpoon RGB gaming mouse
	pair(0x1d57, 0xad03): true, // T3 2.4GHz air mouse remote
	pair(0x1e7d, 0x2e4a): true, // Roccat Tyon Mouse
	pair(0x20a0, 0x422d): true, // Winkeyless.kr keyboards
	pair(0x2516, 0x001f): true, // Cooler Master Storm Mizar Mouse
	pair(0x2516, 0x0028): true, // Cooler Master Storm Alcor Mouse
	pair(0x1532, 0x0266): true, // Razer Huntsman V2 Analog (non-functional DInput)
	pair(0x26ce, 0x01a2): true, // ASRock LED Controller
	pair(0x20d6, 0x0002): true, // PowerA Switch controller (charging port only)
}

// rogChakram lists ASUS ROG Chakram mice, ignored unless the user opts in via
// hint (the mouse exposes a joystick interface for its thumb stick).
var rogChakram = map[hints.VIDPID]bool{
	pair(0x0b05, 0x1906): true, // ROG Pugio II
	pair(0x0b05, 0x1958): true, // ROG Chakram Core
	pair(0x0b05, 0x18e3): true, // ROG Chakram (wired)
	pair(0x0b05, 0x18e5): true, // ROG Chakram (wireless)
	pair(0x0b05, 0x1a18): true, // ROG Chakram X (wired)
	pair(0x0b05, 0x1a1a): true, // ROG Chakram X (wireless)
	pair(0x0b05, 0x1a1c): true, // ROG Chakram X (Bluetooth)
}

// zeroCentered lists devices that never emit a true centered reading, so
// their axes are pre-marked as resting at zero.
var zeroCentered = map[hints.VIDPID]bool{
	pair(0x0e8f, 0x3013): true, // HuiJia SNES USB adapter
	pair(0x05a0, 0x3232): true, // 8Bitdo Zero Gamepad
}

// TypeOf classifies a vendor/product pair into a device subtype.
func TypeOf(vendor, product uint16) Type {
	id := pair(vendor, product)
	switch {
	case wheels[id]:
		return TypeWheel
	case arcadeSticks[id]:
		return TypeArcadeStick
	case flightSticks[id]:
		return TypeFlightStick
	case throttles[id]:
		return TypeThrottle
	case knownControllers[id]:
		return TypeGamepad
	}
	return TypeUnknown
}

// TypeFromGUID classifies a device from its GUID. XInput, WGI and virtual
// GUIDs carry the subtype in the trailing driver-data byte; everything else
// falls back to the VID/PID tables.
func TypeFromGUID(g guid.GUID) Type {
	if g.IsXInput() {
		// XINPUT_DEVSUBTYPE values
		switch g[15] {
		case 0x01:
			return TypeGamepad
		case 0x02:
			return TypeWheel
		case 0x03:
			return TypeArcadeStick
		case 0x04:
			return TypeFlightStick
		case 0x05:
			return TypeDancePad
		case 0x06, 0x07, 0x0b:
			return TypeGuitar
		case 0x08:
			return TypeDrumKit
		case 0x13:
			return TypeArcadePad
		default:
			return TypeUnknown
		}
	}
	if g.IsWGI() || g.IsVirtual() {
		return Type(g[15])
	}

	vendor, product, _, _ := g.Info()
	return TypeOf(vendor, product)
}

// IsKnownController reports whether the vendor/product pair is in the known
// gamepad table.
func IsKnownController(vendor, product uint16) bool {
	return knownControllers[pair(vendor, product)]
}

// ZeroCentered reports whether a device's axes are known to rest at zero.
func ZeroCentered(vendor, product uint16) bool {
	return zeroCentered[pair(vendor, product)]
}

// ShouldIgnore reports whether a device should never be exposed as a
// joystick: hard blacklist, ROG Chakram mice without the opt-in hint, or an
// entry in the user's ignore-devices hint list.
func ShouldIgnore(name string, g guid.GUID) bool {
	vendor, product, _, _ := g.Info()
	id := pair(vendor, product)

	if joystickBlacklist[id] {
		return true
	}
	if rogChakram[id] && !hints.GetBoolean(hints.ROGChakram, false) {
		return true
	}
	if ignored := hints.Get(hints.IgnoreDevices); ignored != "" {
		if hints.VIDPIDInList(vendor, product, hints.ParseVIDPIDList(ignored)) {
			return true
		}
	}
	return false
}

// vendor prefixes shortened when synthesizing display names
var nameReplacements = []struct{ prefix, replacement string }{
	{"ASTRO Gaming", "ASTRO"},
	{"Bensussen Deutsch & Associates,Inc.(BDA)", "BDA"},
	{"HORI CO.,LTD", "HORI"},
	{"HORI CO.,LTD.", "HORI"},
	{"Mad Catz Inc.", "Mad Catz"},
	{"Nintendo Co., Ltd.", "Nintendo"},
	{"NVIDIA Corporation ", ""},
	{"Performance Designed Products", "PDP"},
	{"QANBA USA, LLC", "Qanba"},
	{"QANBA USA,LLC", "Qanba"},
	{"Unknown ", ""},
}

// CreateName synthesizes a friendly display name from USB descriptor
// strings, compressing whitespace, shortening verbose manufacturer names and
// dropping a manufacturer prefix repeated in the product string.
func CreateName(vendor, product uint16, vendorName, productName string) string {
	vendorName = strings.TrimSpace(vendorName)
	productName = strings.TrimSpace(productName)

	var name string
	switch {
	case vendorName != "" && productName != "":
		name = vendorName + " " + productName
	case productName != "":
		name = productName
	case vendor != 0 || product != 0:
		name = fmtVIDPID(vendor, product)
	default:
		name = "Controller"
	}

	name = strings.Join(strings.Fields(name), " ")

	for _, r := range nameReplacements {
		if len(name) >= len(r.prefix) && strings.EqualFold(name[:len(r.prefix)], r.prefix) {
			name = strings.TrimSpace(r.replacement + name[len(r.prefix):])
			break
		}
	}

	// Remove a duplicated manufacturer, e.g. "Razer Razer Raiju"
	if i := strings.Index(name, " "); i > 0 {
		maker := name[:i]
		rest := name[i+1:]
		if len(rest) > len(maker) && strings.EqualFold(rest[:len(maker)], maker) &&
			(rest[len(maker)] == ' ' || rest[len(maker)] == '-') {
			name = rest
		}
	}

	return name
}

func fmtVIDPID(vendor, product uint16) string {
	const hex = "0123456789abcdef"
	b := make([]byte, 0, 13)
	for _, v := range []uint16{vendor, product} {
		b = append(b, '0', 'x',
			hex[v>>12&0xf], hex[v>>8&0xf], hex[v>>4&0xf], hex[v&0xf])
		b = append(b, '/')
	}
	return string(b[:len(b)-1])
}
