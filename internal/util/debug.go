package util

// IsDebug toggles verbose logging across the binary.
var IsDebug bool

// SetDebugMode sets the debug flag before the logger is initialized.
func SetDebugMode(debug bool) {
	IsDebug = debug
}
