// Package hints is the named string-valued configuration surface consumed by
// the joystick core. Hints are process-wide; subsystems register callbacks to
// pick up changes without polling.
package hints

import (
	"strconv"
	"strings"
	"sync"
)

// Hint names understood by the joystick subsystem.
const (
	AllowBackgroundEvents = "joystick_allow_background_events"
	SensorFusion          = "gamecontroller_sensor_fusion"
	ROGChakram            = "joystick_rog_chakram"
	IgnoreDevices         = "joystick_ignore_devices"
)

// Callback is invoked after a hint value changes, with the hint name, the
// previous value and the new value.
type Callback func(name, oldValue, newValue string)

type registration struct {
	token int
	cb    Callback
}

type registry struct {
	mu        sync.RWMutex
	values    map[string]string
	callbacks map[string][]registration
	nextToken int
}

var hints = &registry{
	values:    make(map[string]string),
	callbacks: make(map[string][]registration),
}

// Set stores a hint value and notifies registered callbacks.
func Set(name, value string) {
	hints.mu.Lock()
	old := hints.values[name]
	hints.values[name] = value
	regs := append([]registration(nil), hints.callbacks[name]...)
	hints.mu.Unlock()

	if old == value {
		return
	}
	for _, r := range regs {
		r.cb(name, old, value)
	}
}

// Get returns the raw value of a hint, or "" if unset.
func Get(name string) string {
	hints.mu.RLock()
	defer hints.mu.RUnlock()
	return hints.values[name]
}

// Reset removes a hint value without notifying callbacks. Intended for tests.
func Reset(name string) {
	hints.mu.Lock()
	delete(hints.values, name)
	hints.mu.Unlock()
}

// AddCallback registers a callback for a hint and immediately invokes it with
// the current value, mirroring how subsystems pick up pre-set hints at init.
// The returned token removes the registration via RemoveCallback.
func AddCallback(name string, cb Callback) int {
	hints.mu.Lock()
	hints.nextToken++
	token := hints.nextToken
	hints.callbacks[name] = append(hints.callbacks[name], registration{token, cb})
	value := hints.values[name]
	hints.mu.Unlock()

	cb(name, "", value)
	return token
}

// RemoveCallback unregisters a callback previously added for the hint.
func RemoveCallback(name string, token int) {
	hints.mu.Lock()
	defer hints.mu.Unlock()
	regs := hints.callbacks[name]
	for i := range regs {
		if regs[i].token == token {
			hints.callbacks[name] = append(regs[:i], regs[i+1:]...)
			return
		}
	}
}

// GetBoolean interprets a hint as a boolean, returning def when unset.
func GetBoolean(name string, def bool) bool {
	return ParseBoolean(Get(name), def)
}

// ParseBoolean interprets a hint value string as a boolean.
func ParseBoolean(value string, def bool) bool {
	if value == "" {
		return def
	}
	switch strings.ToLower(value) {
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	}
	return def
}

// ParseInteger interprets a hint value string as an integer, returning def
// for unset or non-numeric values.
func ParseInteger(value string, def int) int {
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return n
}

// VIDPID is a packed vendor/product pair.
type VIDPID uint32

// MakeVIDPID packs a vendor and product ID into a single comparable value.
func MakeVIDPID(vendor, product uint16) VIDPID {
	return VIDPID(uint32(vendor)<<16 | uint32(product))
}

// ParseVIDPIDList parses a hint of the form "0xVVVV/0xPPPP,0xVVVV/0xPPPP,...".
// Separators other than "0x"-prefixed numbers are skipped, matching the
// tolerant format accepted for device lists.
func ParseVIDPIDList(value string) []VIDPID {
	var list []VIDPID

	rest := value
	for {
		i := strings.Index(rest, "0x")
		if i < 0 {
			break
		}
		rest = rest[i:]
		vendor, n := parseHex(rest)
		if n == 0 {
			break
		}
		rest = rest[n:]

		i = strings.Index(rest, "0x")
		if i < 0 {
			break
		}
		rest = rest[i:]
		product, n := parseHex(rest)
		if n == 0 {
			break
		}
		rest = rest[n:]

		list = append(list, MakeVIDPID(vendor, product))
	}
	return list
}

// VIDPIDInList reports whether a vendor/product pair appears in a parsed list.
func VIDPIDInList(vendor, product uint16, list []VIDPID) bool {
	id := MakeVIDPID(vendor, product)
	for _, entry := range list {
		if entry == id {
			return true
		}
	}
	return false
}

func parseHex(s string) (uint16, int) {
	if !strings.HasPrefix(s, "0x") {
		return 0, 0
	}
	n := 2
	for n < len(s) && isHexDigit(s[n]) {
		n++
	}
	if n == 2 {
		return 0, 0
	}
	v, err := strconv.ParseUint(s[2:n], 16, 32)
	if err != nil {
		return 0, 0
	}
	return uint16(v), n
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
