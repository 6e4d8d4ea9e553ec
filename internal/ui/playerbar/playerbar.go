// Package playerbar renders the device status bar: play state, current
// track, position, volume and the device identity.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/wavesconnect/internal/connect"
	"github.com/llehouerou/wavesconnect/internal/icons"
	"github.com/llehouerou/wavesconnect/internal/player"
	"github.com/llehouerou/wavesconnect/internal/ui/render"
	"github.com/llehouerou/wavesconnect/internal/ui/styles"
)

// State holds everything needed to render the player bar.
type State struct {
	DeviceName string
	DeviceID   string
	Connected  bool
	Playback   player.State
	TrackID    string
	Position   time.Duration
	Volume     uint16

	// TokenExpiry is zero when no token has been fetched.
	TokenExpiry time.Time
	Now         time.Time
}

// Height returns the total height of the player bar.
func Height() int {
	return 4 // 2 content rows + 2 border rows
}

// NewState builds a State from a device status snapshot.
func NewState(st connect.Status, name string) State {
	return State{
		DeviceName: name,
		DeviceID:   st.DeviceID,
		Connected:  st.Initialized,
		Playback:   st.State,
		TrackID:    st.TrackID,
		Position:   time.Duration(st.PositionMs) * time.Millisecond,
		Volume:     st.Volume,
	}
}

// Render returns the player bar string for the given width.
func Render(s State, width int) string {
	innerWidth := max(width-6, 10) // border and padding

	top := render.Row(
		render.TruncateEllipsis(statusLine(s), innerWidth/2),
		progressTimeStyle().Render(formatDuration(s.Position))+"   "+RenderVolume(s.Volume),
		innerWidth,
	)
	bottom := render.Row(
		render.TruncateEllipsis(deviceLine(s), innerWidth/2),
		tokenLine(s),
		innerWidth,
	)

	return barStyle().Padding(0, 2).Width(width - 2).Render(top + "\n" + bottom)
}

func statusLine(s State) string {
	if !s.Connected {
		return metaStyle().Render("Connecting...")
	}

	var icon string
	switch s.Playback {
	case player.Playing:
		icon = styles.T().S().Playing.Render(icons.Play())
	case player.Paused:
		icon = styles.T().S().Paused.Render(icons.Pause())
	case player.Stopped:
		icon = metaStyle().Render(icons.Stop())
	}

	track := s.TrackID
	if track == "" {
		return icon + "  " + metaStyle().Render("Waiting for a remote client")
	}
	return icon + "  " + titleStyle().Render(render.Sanitize(track))
}

func deviceLine(s State) string {
	var parts []string
	parts = append(parts, icons.Device()+" "+render.Sanitize(s.DeviceName))
	if s.DeviceID != "" {
		parts = append(parts, shortID(s.DeviceID))
	}
	return metaStyle().Render(strings.Join(parts, " · "))
}

func tokenLine(s State) string {
	if s.TokenExpiry.IsZero() {
		return ""
	}
	label := icons.Token() + " "
	if !s.Now.Before(s.TokenExpiry) {
		return styles.T().S().Warning.Render(label + "expired")
	}
	return metaStyle().Render(label + "expires " + humanize.RelTime(s.TokenExpiry, s.Now, "ago", "from now"))
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
