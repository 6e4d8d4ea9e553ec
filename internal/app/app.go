package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavesconnect/internal/connect"
	"github.com/llehouerou/wavesconnect/internal/keymap"
	"github.com/llehouerou/wavesconnect/internal/player"
)

const (
	seekStep   = 10 * time.Second
	volumeStep = 5.0
)

// Options configures the application model.
type Options struct {
	Device       *connect.Device
	PlayerConfig player.Config
	DeviceName   string
	// Listeners are registered for every device event before connecting.
	Listeners []func(connect.Event)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Model is the root application model.
type Model struct {
	Device       *connect.Device
	PlayerConfig player.Config
	DeviceName   string
	Feed         *Feed
	Listeners    []func(connect.Event)
	Keys         *keymap.Resolver
	Input        textinput.Model
	Inputting    bool
	ShowHelp     bool
	Now          func() time.Time
	Width        int
	Height       int

	ctx context.Context
}

// New creates the model. The device must be created with the dispatcher
// that feeds this model's program, and must not be connected yet.
func New(ctx context.Context, opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ti := textinput.New()
	ti.Placeholder = "spotify:track:... or https://open.spotify.com/track/..."
	ti.Prompt = "> "
	ti.CharLimit = 256

	return Model{
		Device:       opts.Device,
		PlayerConfig: opts.PlayerConfig,
		DeviceName:   opts.DeviceName,
		Feed:         NewFeed(0, now),
		Listeners:    opts.Listeners,
		Keys:         keymap.NewResolver(keymap.Bindings),
		Input:        ti,
		Now:          now,
		ctx:          ctx,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return connectMsg{} },
		TickCmd(),
	)
}
