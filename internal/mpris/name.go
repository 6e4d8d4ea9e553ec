package mpris

import "strings"

const defaultBusName = "wavesconnect"

// BusName turns a device name into the last element of the player's bus
// name, org.mpris.MediaPlayer2.<element>. Anything but ASCII letters,
// digits and underscores becomes an underscore, and the element never
// starts with a digit.
func BusName(device string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(device) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if b.Len() == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return defaultBusName
	}
	return b.String()
}
