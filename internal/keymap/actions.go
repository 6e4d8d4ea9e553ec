// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"
	ActionHelp Action = "help"

	// Playback actions
	ActionPlayPause   Action = "play_pause"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"
	ActionVolumeUp    Action = "volume_up"
	ActionVolumeDown  Action = "volume_down"

	// Device actions
	ActionOpenURI    Action = "open_uri"
	ActionFetchToken Action = "fetch_token"
)

// Binding maps keys to an action.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "device"
}

// Bindings contains every key binding of the player view.
var Bindings = []Binding{
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionHelp, []string{"?"}, "Toggle help", "global"},

	{ActionPlayPause, []string{" ", "p"}, "Play/pause", "playback"},
	{ActionSeekForward, []string{"right", "l"}, "Seek +10s", "playback"},
	{ActionSeekBack, []string{"left", "h"}, "Seek -10s", "playback"},
	{ActionVolumeUp, []string{"up", "k", "+"}, "Volume +5%", "playback"},
	{ActionVolumeDown, []string{"down", "j", "-"}, "Volume -5%", "playback"},

	{ActionOpenURI, []string{"o"}, "Open track URI", "device"},
	{ActionFetchToken, []string{"t"}, "Fetch access token", "device"},
}
