// Package icons selects the glyphs the interface uses for device state.
package icons

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for the current style.
type Icons struct {
	Play       string
	Pause      string
	Stop       string
	Volume     string
	VolumeMute string
	Device     string
	Token      string
}

var (
	nerdIcons = Icons{
		Play:       "\uf04b",     // nf-fa-play
		Pause:      "\uf04c",     // nf-fa-pause
		Stop:       "\uf04d",     // nf-fa-stop
		Volume:     "\U000f057e", // nf-md-volume_high
		VolumeMute: "\U000f0581", // nf-md-volume_off
		Device:     "\U000f04c3", // nf-md-speaker
		Token:      "\uf084",     // nf-fa-key
	}

	unicodeIcons = Icons{
		Play:       "▶",
		Pause:      "⏸",
		Stop:       "⏹",
		Volume:     "🔊",
		VolumeMute: "🔇",
		Device:     "🔈",
		Token:      "🔑",
	}

	noneIcons = Icons{
		Play:       ">",
		Pause:      "||",
		Stop:       "[]",
		Volume:     "vol",
		VolumeMute: "mute",
		Device:     "dev",
		Token:      "token",
	}

	// current holds the active icon set
	current = noneIcons
)

// Init initializes the icons based on the style.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleUnicode:
		current = unicodeIcons
	case StyleNone:
		current = noneIcons
	default:
		current = noneIcons
	}
}

func Play() string { return current.Play }

func Pause() string { return current.Pause }

func Stop() string { return current.Stop }

// Volume returns the volume icon, or the mute icon at zero volume.
func Volume(muted bool) string {
	if muted {
		return current.VolumeMute
	}
	return current.Volume
}

func Device() string { return current.Device }

func Token() string { return current.Token }
