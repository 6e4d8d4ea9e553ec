package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavesconnect/internal/ui/playerbar"
	"github.com/llehouerou/wavesconnect/internal/ui/render"
	"github.com/llehouerou/wavesconnect/internal/ui/styles"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}
	s := styles.T().S()

	header := styles.T().Header(" " + m.DeviceName)

	bar := playerbar.NewState(m.Device.Status(), m.DeviceName)
	bar.TokenExpiry = m.Feed.TokenExpiry
	bar.Now = m.Now()
	player := playerbar.Render(bar, m.Width)

	var footer []string
	if m.Inputting {
		footer = append(footer, s.Title.Render("Open track"), m.Input.View())
	}
	if m.Feed.Err != "" {
		footer = append(footer, s.Error.Render(render.TruncateEllipsis(m.Feed.Err, m.Width)))
	}
	if m.ShowHelp {
		footer = append(footer, m.helpView())
	} else {
		footer = append(footer, s.Subtle.Render("? help  q quit"))
	}
	bottom := strings.Join(footer, "\n")

	logHeight := m.Height - lipgloss.Height(header) - playerbar.Height() - lipgloss.Height(bottom) - 2
	log := m.logView(max(logHeight, 0))

	return lipgloss.JoinVertical(lipgloss.Left, header, player, log, bottom)
}

// logView renders the newest lines of the feed that fit in height.
func (m Model) logView(height int) string {
	lines := m.Feed.Lines()
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	width := max(m.Width-4, 1)
	out := make([]string, 0, height)
	for _, l := range lines {
		out = append(out, render.Pad(render.TruncateEllipsis(render.Sanitize(l), width), width))
	}
	for len(out) < height {
		out = append(out, "")
	}
	return styles.PanelStyle(false).Width(m.Width - 2).Render(strings.Join(out, "\n"))
}

func (m Model) helpView() string {
	s := styles.T().S()
	var rows []string
	for _, e := range m.Keys.Help("playback", "device", "global") {
		rows = append(rows, s.Title.Render(render.Pad(e.Keys, 14))+s.Muted.Render(e.Description))
	}
	return strings.Join(rows, "\n")
}
