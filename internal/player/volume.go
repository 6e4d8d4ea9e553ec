package player

import "math"

// MaxVolume is the raw device volume at 100%.
const MaxVolume uint16 = math.MaxUint16

// PercentToRaw maps a 0-100 percentage onto the raw device range.
// Values outside 0-100 are clamped; NaN maps to 0.
func PercentToRaw(percent float64) uint16 {
	if math.IsNaN(percent) || percent <= 0 {
		return 0
	}
	if percent >= 100 {
		return MaxVolume
	}
	return uint16(math.Round(percent / 100 * float64(MaxVolume)))
}

// RawToPercent maps a raw device volume onto 0-100.
func RawToPercent(raw uint16) float64 {
	return float64(raw) / float64(MaxVolume) * 100
}
