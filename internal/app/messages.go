// Package app contains the terminal front end: a bubbletea model that
// hosts a connect.Device and drives it from the keyboard.
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent every second to refresh relative times.
type TickMsg time.Time

// TickCmd returns a command that sends a TickMsg after one second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// connectMsg starts the device connection from within Update.
type connectMsg struct{}
