package tray

import _ "embed"

// icon.ico is a generated placeholder; swap it for real artwork before a
// public release.
//
//go:embed icon.ico
var icon []byte

// Icon returns the embedded tray icon.
func Icon() []byte {
	return icon
}
