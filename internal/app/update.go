package app

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavesconnect/internal/connect"
	"github.com/llehouerou/wavesconnect/internal/errmsg"
	"github.com/llehouerou/wavesconnect/internal/host"
	"github.com/llehouerou/wavesconnect/internal/keymap"
	"github.com/llehouerou/wavesconnect/internal/playback"
	"github.com/llehouerou/wavesconnect/internal/player"
)

var errNoToken = errors.New("no token returned")

// Update handles messages and returns the updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case host.TaskMsg:
		msg.Run()
		return m, nil

	case connectMsg:
		return m.handleConnect()

	case TickMsg:
		return m, TickCmd()

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Input.Width = max(msg.Width-8, 10)
		return m, nil

	case tea.KeyMsg:
		if m.Inputting {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleConnect() (tea.Model, tea.Cmd) {
	m.Device.On(connect.AnyEvent, m.Feed.Record)
	for _, fn := range m.Listeners {
		m.Device.On(connect.AnyEvent, fn)
	}
	m.Feed.Add("connecting as %q", m.DeviceName)
	m.Device.Connect(m.ctx, m.PlayerConfig).Then(func(_ string, err error) {
		if err != nil {
			m.Feed.Fail(errmsg.OpConnect, err)
		}
	})
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Keys.Resolve(msg.String()) {
	case keymap.ActionQuit:
		if err := m.Device.Close(); err != nil && !errors.Is(err, connect.ErrNotInitialized) {
			m.Feed.Fail(errmsg.OpClose, err)
		}
		return m, tea.Quit

	case keymap.ActionHelp:
		m.ShowHelp = !m.ShowHelp

	case keymap.ActionPlayPause:
		op := errmsg.OpPlay
		if m.Device.Status().State == player.Playing {
			op = errmsg.OpPause
		}
		m.Device.TogglePlay().Then(report[struct{}](m.Feed, op))

	case keymap.ActionSeekForward:
		m.seekBy(int64(seekStep.Milliseconds()))

	case keymap.ActionSeekBack:
		m.seekBy(-int64(seekStep.Milliseconds()))

	case keymap.ActionVolumeUp:
		m.volumeBy(volumeStep)

	case keymap.ActionVolumeDown:
		m.volumeBy(-volumeStep)

	case keymap.ActionOpenURI:
		m.Input.Reset()
		m.Inputting = true
		return m, m.Input.Focus()

	case keymap.ActionFetchToken:
		m.fetchToken()
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Inputting = false
		m.Input.Blur()
		return m, nil
	case "enter":
		m.Inputting = false
		m.Input.Blur()
		if uri := strings.TrimSpace(m.Input.Value()); uri != "" {
			m.load(uri)
		}
		return m, nil
	case "ctrl+c":
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m Model) seekBy(offsetMs int64) {
	target := max(int64(m.Device.Position())+offsetMs, 0)
	m.Device.Seek(target).Then(report[struct{}](m.Feed, errmsg.OpSeek))
}

func (m Model) volumeBy(delta float64) {
	target := min(max(m.Device.Volume(false)+delta, 0), 100)
	m.Device.SetVolume(target, false).Then(report[struct{}](m.Feed, errmsg.OpSetVolume))
}

func (m Model) load(uri string) {
	feed := m.Feed
	m.Device.Load(uri, true).Then(func(_ playback.LoadResult, err error) {
		if err != nil {
			feed.Err = errmsg.FormatWith(errmsg.OpLoad, uri, err)
			return
		}
		feed.Add("loaded %s", uri)
	})
}

func (m Model) fetchToken() {
	feed := m.Feed
	m.Device.Token().Then(func(tok *player.Token, err error) {
		switch {
		case err != nil:
			feed.Fail(errmsg.OpToken, err)
		case tok == nil:
			feed.Fail(errmsg.OpToken, errNoToken)
		default:
			feed.TokenExpiry = tok.Expiry()
			feed.Add("token for %s", strings.Join(tok.Scopes, " "))
		}
	})
}
