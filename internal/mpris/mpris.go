//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/wavesconnect/internal/player"
)

// Adapter exposes a device as an MPRIS2 player over D-Bus.
type Adapter struct {
	server *server.Server
}

// New starts serving remote as org.mpris.MediaPlayer2.<BusName(name)>.
// Listen errors are reported to the remote's logger.
func New(name string, remote *Remote) (*Adapter, error) {
	a := &Adapter{
		server: server.NewServer(BusName(name), &rootAdapter{}, &playerAdapter{remote: remote}),
	}

	go func() {
		if err := a.server.Listen(); err != nil {
			remote.logger.Warn("mpris_listen_failed", "error", err)
		}
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Waves Connect", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"spotify", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	remote *Remote
}

func (p *playerAdapter) Next() error {
	return nil // Track list is owned by the remote client
}

func (p *playerAdapter) Previous() error {
	return nil
}

func (p *playerAdapter) Pause() error {
	return p.remote.Pause()
}

func (p *playerAdapter) PlayPause() error {
	return p.remote.Toggle()
}

func (p *playerAdapter) Stop() error {
	return p.remote.Pause()
}

func (p *playerAdapter) Play() error {
	return p.remote.Play()
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	return p.remote.SeekBy(time.Duration(offset) * time.Microsecond)
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.remote.SeekTo(time.Duration(position) * time.Microsecond)
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(uri string) error {
	return p.remote.Open(uri)
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	st, err := p.remote.Status()
	if err != nil {
		return types.PlaybackStatusStopped, err
	}
	return playbackStatus(st.State), nil
}

func playbackStatus(s player.State) types.PlaybackStatus {
	switch s {
	case player.Playing:
		return types.PlaybackStatusPlaying
	case player.Paused:
		return types.PlaybackStatusPaused
	case player.Stopped:
		return types.PlaybackStatusStopped
	}
	return types.PlaybackStatusStopped
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	st, err := p.remote.Status()
	if err != nil || st.TrackID == "" {
		return types.Metadata{}, err
	}
	return types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(st.TrackID)),
		Title:   st.TrackID,
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	st, err := p.remote.Status()
	if err != nil {
		return 0, err
	}
	return float64(st.Volume) / float64(player.MaxVolume), nil
}

func (p *playerAdapter) SetVolume(volume float64) error {
	return p.remote.SetVolume(volume)
}

func (p *playerAdapter) Position() (int64, error) {
	st, err := p.remote.Status()
	if err != nil {
		return 0, err
	}
	return (time.Duration(st.PositionMs) * time.Millisecond).Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.initialized()
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.initialized()
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.initialized()
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func (p *playerAdapter) initialized() (bool, error) {
	st, err := p.remote.Status()
	return err == nil && st.Initialized, err
}

// formatTrackID maps a track id to a valid D-Bus object path.
func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
