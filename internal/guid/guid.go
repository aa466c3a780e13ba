// Package guid implements the 128-bit joystick device identity blob.
//
// The layout is fixed little-endian regardless of host byte order so that a
// device gets the same GUID on every machine. Two forms exist: the standard
// form carries bus/vendor/product/version plus a driver signature, the
// unknown-VID/PID form carries as much of the device name as fits.
package guid

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Size is the number of bytes in a GUID.
const Size = 16

// Hardware bus types stored in the first 16 bits of a GUID.
const (
	BusUnknown   uint16 = 0x00
	BusUSB       uint16 = 0x03
	BusBluetooth uint16 = 0x05
	BusVirtual   uint16 = 0xFF
)

// Driver signature bytes stored at offset 14 of a standard-form GUID.
const (
	SigHIDAPI   byte = 'h'
	SigXInput   byte = 'x'
	SigWGI      byte = 'w'
	SigMFI      byte = 'm'
	SigRawInput byte = 'r'
	SigVirtual  byte = 'v'
)

// GUID is an opaque 128-bit device identity.
type GUID [Size]byte

// Zero is the all-zero GUID, used when a device cannot be resolved.
var Zero GUID

// New packs a GUID in the standard form when both vendor and product are
// non-zero, otherwise in the unknown-VID/PID form carrying the device name.
func New(bus, vendor, product, version uint16, name string, signature, data byte) GUID {
	var g GUID

	binary.LittleEndian.PutUint16(g[0:], bus)
	binary.LittleEndian.PutUint16(g[2:], CRC16([]byte(name)))

	if vendor != 0 && product != 0 {
		binary.LittleEndian.PutUint16(g[4:], vendor)
		binary.LittleEndian.PutUint16(g[8:], product)
		binary.LittleEndian.PutUint16(g[12:], version)
		g[14] = signature
		g[15] = data
	} else {
		available := Size - 4
		if signature != 0 {
			available -= 2
			g[14] = signature
			g[15] = data
		}
		// leave room for the NUL terminator the C layout carries
		if len(name) > available-1 {
			name = name[:available-1]
		}
		copy(g[4:], name)
	}
	return g
}

// NewForName packs an unknown-bus GUID carrying only the device name.
func NewForName(name string) GUID {
	return New(BusUnknown, 0, 0, 0, name, 0, 0)
}

// Bus returns the hardware bus type field.
func (g GUID) Bus() uint16 {
	return binary.LittleEndian.Uint16(g[0:])
}

// standard reports whether the GUID fits the standard bus/vendor/product
// form: a recognised bus value and zero padding words after vendor and
// product.
func (g GUID) standard() bool {
	bus := g.Bus()
	if bus >= ' ' && bus != BusVirtual {
		return false
	}
	return g[6] == 0 && g[7] == 0 && g[10] == 0 && g[11] == 0
}

// Info unpacks the vendor, product, version and name-CRC fields. Fields not
// present in the GUID's form are returned as zero.
func (g GUID) Info() (vendor, product, version, crc16 uint16) {
	bus := g.Bus()
	switch {
	case g.standard():
		vendor = binary.LittleEndian.Uint16(g[4:])
		product = binary.LittleEndian.Uint16(g[8:])
		version = binary.LittleEndian.Uint16(g[12:])
		crc16 = binary.LittleEndian.Uint16(g[2:])
	case bus < ' ' || bus == BusVirtual:
		crc16 = binary.LittleEndian.Uint16(g[2:])
	}
	return
}

// Vendor returns the vendor ID, or zero for non-standard forms.
func (g GUID) Vendor() uint16 {
	v, _, _, _ := g.Info()
	return v
}

// Product returns the product ID, or zero for non-standard forms.
func (g GUID) Product() uint16 {
	_, p, _, _ := g.Info()
	return p
}

// Version returns the product version, or zero for non-standard forms.
func (g GUID) Version() uint16 {
	_, _, v, _ := g.Info()
	return v
}

// CRC returns the CRC-16 of the device name the GUID was built from.
func (g GUID) CRC() uint16 {
	_, _, _, c := g.Info()
	return c
}

// Signature returns the driver signature byte.
func (g GUID) Signature() byte { return g[14] }

// IsHIDAPI reports whether the GUID was produced by a HIDAPI driver.
func (g GUID) IsHIDAPI() bool { return g[14] == SigHIDAPI }

// IsXInput reports whether the GUID was produced by an XInput driver.
func (g GUID) IsXInput() bool { return g[14] == SigXInput }

// IsWGI reports whether the GUID was produced by a WGI driver.
func (g GUID) IsWGI() bool { return g[14] == SigWGI }

// IsMFI reports whether the GUID was produced by an MFI driver.
func (g GUID) IsMFI() bool { return g[14] == SigMFI }

// IsRawInput reports whether the GUID was produced by a raw-input driver.
func (g GUID) IsRawInput() bool { return g[14] == SigRawInput }

// IsVirtual reports whether the GUID belongs to a virtual device.
func (g GUID) IsVirtual() bool { return g[14] == SigVirtual }

// UsesVersion reports whether the version field holds a real product
// version. MFI GUIDs reuse those bits as a button capability mask.
func (g GUID) UsesVersion() bool {
	if g.IsMFI() {
		return false
	}
	vendor, product, _, _ := g.Info()
	return vendor != 0 && product != 0
}

// SetVendor overwrites the vendor field in place.
func (g *GUID) SetVendor(vendor uint16) {
	binary.LittleEndian.PutUint16(g[4:], vendor)
}

// SetProduct overwrites the product field in place.
func (g *GUID) SetProduct(product uint16) {
	binary.LittleEndian.PutUint16(g[8:], product)
}

// SetVersion overwrites the version field in place.
func (g *GUID) SetVersion(version uint16) {
	binary.LittleEndian.PutUint16(g[12:], version)
}

// SetCRC overwrites the name-CRC field in place.
func (g *GUID) SetCRC(crc uint16) {
	binary.LittleEndian.PutUint16(g[2:], crc)
}

// String returns the 32-digit lowercase hexadecimal form.
func (g GUID) String() string {
	return fmt.Sprintf("%x", g[:])
}

// ErrMalformed is returned by FromString for input that is not 32 hex digits.
var ErrMalformed = errors.New("guid: malformed string")

// FromString parses the textual form produced by String.
func FromString(s string) (GUID, error) {
	var g GUID
	if len(s) != 2*Size {
		return Zero, ErrMalformed
	}
	for i := 0; i < Size; i++ {
		hi, ok1 := nibble(s[2*i])
		lo, ok2 := nibble(s[2*i+1])
		if !ok1 || !ok2 {
			return Zero, ErrMalformed
		}
		g[i] = hi<<4 | lo
	}
	return g, nil
}

func nibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// CRC16 computes the CRC-16/ARC checksum used for the name field.
func CRC16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
