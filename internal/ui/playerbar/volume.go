package playerbar

import (
	"fmt"
	"math"

	"github.com/llehouerou/wavesconnect/internal/icons"
	"github.com/llehouerou/wavesconnect/internal/player"
)

// RenderVolume renders the volume indicator.
// Format: "vol  50%", or the mute icon at zero.
func RenderVolume(volume uint16) string {
	pct := int(math.Round(player.RawToPercent(volume)))
	return progressTimeStyle().Render(fmt.Sprintf("%s %3d%%", icons.Volume(volume == 0), pct))
}
