package filename

import (
	"path/filepath"
	"strings"
)

// Characters rejected on Windows and awkward everywhere else
const illegalFilenameChars = `<>:"/\|?*`

// Windows reserved device names, matched case-insensitively against the
// name without its extension
var reservedDeviceNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// IsValidFilename reports whether a filename is legal on common filesystems.
// It rejects empty names, names with reserved characters, Windows device
// names, names longer than 255 characters and names ending in a dot or
// a space.
func IsValidFilename(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}

	if strings.ContainsAny(name, illegalFilenameChars) {
		return false
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if _, reserved := reservedDeviceNames[strings.ToUpper(stem)]; reserved {
		return false
	}

	if len(name) > 255 {
		return false
	}

	if strings.HasSuffix(name, ".") || strings.HasSuffix(name, " ") {
		return false
	}

	return true
}
