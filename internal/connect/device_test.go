package connect

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavesconnect/internal/host"
	"github.com/llehouerou/wavesconnect/internal/playback"
	"github.com/llehouerou/wavesconnect/internal/player"
	"github.com/llehouerou/wavesconnect/internal/state"
)

func TestConnect_EmitsPlayerInitialized(t *testing.T) {
	f := newFixture(t, Options{})

	id := f.connect(t)

	assert.Equal(t, "dev", id)
	f.next(t, EventPlayerInitialized)
	st := f.status(t)
	assert.True(t, st.Initialized)
	assert.Equal(t, "dev", st.DeviceID)
	assert.Equal(t, player.Stopped, st.State)
}

func TestConnect_FailureEmitsInitializationError(t *testing.T) {
	f := newFixture(t, Options{})
	f.factory.SetError(errors.New("bad credentials"))

	var out *playback.Deferred[string]
	f.onHost(t, func() { out = f.dev.Connect(context.Background(), player.Config{}) })
	_, err := await(t, out)

	require.ErrorIs(t, err, playback.ErrSetupFailed)
	e := f.next(t, EventInitializationError)
	assert.Contains(t, e.Error, "bad credentials")
	waitClosed(t, f.dev.Done())
	assert.False(t, f.status(t).Initialized)
}

func TestConnect_Twice(t *testing.T) {
	f := newFixture(t, Options{})
	f.connect(t)

	var out *playback.Deferred[string]
	f.onHost(t, func() { out = f.dev.Connect(context.Background(), player.Config{}) })
	_, err := await(t, out)

	assert.ErrorIs(t, err, ErrAlreadyConnected)
	assert.Len(t, f.factory.Configs(), 1)
}

func TestCommands_BeforeConnect(t *testing.T) {
	f := newFixture(t, Options{})

	var (
		play     *playback.Deferred[struct{}]
		load     *playback.Deferred[playback.LoadResult]
		tok      *playback.Deferred[*player.Token]
		closeErr error
	)
	f.onHost(t, func() {
		play = f.dev.Play()
		load = f.dev.Load("spotify:track:6rqhFgbbKwnb9MLmUQDhG6", true)
		tok = f.dev.Token()
		closeErr = f.dev.Close()
	})

	_, err := await(t, play)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = await(t, load)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = await(t, tok)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, closeErr, ErrNotInitialized)
	assert.Empty(t, f.mock.Calls())
}

func TestVolume_TrackedAndPersisted(t *testing.T) {
	store := state.NewMock()
	f := newFixture(t, Options{Volumes: store})
	f.connect(t)

	require.NoError(t, f.mock.Emit(player.VolumeChangedEvent{Volume: 32768}))
	f.next(t, string(player.KindVolumeChanged))

	var raw, percent float64
	f.onHost(t, func() {
		raw = f.dev.Volume(true)
		percent = f.dev.Volume(false)
	})
	assert.Equal(t, float64(32768), raw)
	assert.InDelta(t, 50.0, percent, 0.01)

	assert.Eventually(t, func() bool {
		st, _ := store.GetDeviceState(context.Background())
		return st != nil && st.Volume != nil && *st.Volume == 32768 && st.DeviceID == "dev"
	}, testTimeout, 5*time.Millisecond)
}

// slowVolumeStore takes a while to save the first volume it sees.
type slowVolumeStore struct {
	mu    sync.Mutex
	saved []uint16
	slow  uint16
}

func (s *slowVolumeStore) SaveDeviceVolume(_ context.Context, _ string, volume uint16) error {
	if volume == s.slow {
		time.Sleep(100 * time.Millisecond)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, volume)
	return nil
}

func (s *slowVolumeStore) values() []uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint16(nil), s.saved...)
}

func TestVolume_PersistedInReportedOrder(t *testing.T) {
	store := &slowVolumeStore{slow: 100}
	f := newFixture(t, Options{Volumes: store})
	f.connect(t)

	require.NoError(t, f.mock.Emit(player.VolumeChangedEvent{Volume: 100}))
	require.NoError(t, f.mock.Emit(player.VolumeChangedEvent{Volume: 200}))
	f.next(t, string(player.KindVolumeChanged))
	f.next(t, string(player.KindVolumeChanged))

	var closeErr error
	f.onHost(t, func() { closeErr = f.dev.Close() })
	require.NoError(t, closeErr)
	waitClosed(t, f.dev.Done())

	assert.Equal(t, []uint16{100, 200}, store.values())
}

func TestConnect_DispatchFailureClosesDone(t *testing.T) {
	mock := player.NewMock("dev")
	stopped := host.DispatcherFunc(func(func()) error { return host.ErrStopped })
	dev := New(Options{Factory: player.NewMockFactory(mock), Dispatcher: stopped})

	dev.Connect(context.Background(), player.Config{})

	waitClosed(t, dev.Done())
	assert.True(t, mock.Closed())
}

func TestInitialVolume_AppliedOnSessionConnected(t *testing.T) {
	initial := uint16(1000)
	f := newFixture(t, Options{InitialVolume: &initial})

	// Emitted while connecting, before the facade holds the session.
	require.NoError(t, f.mock.Emit(player.SessionConnectedEvent{ConnectionID: "c1", UserName: "u"}))
	f.connect(t)
	assert.Eventually(t, func() bool { return len(f.callsOf(player.OpSetVolume)) == 1 },
		testTimeout, 5*time.Millisecond)

	require.NoError(t, f.mock.Emit(player.SessionConnectedEvent{ConnectionID: "c2", UserName: "u"}))
	assert.Eventually(t, func() bool { return len(f.callsOf(player.OpSetVolume)) == 2 },
		testTimeout, 5*time.Millisecond)

	for _, c := range f.callsOf(player.OpSetVolume) {
		assert.Equal(t, initial, c.Volume)
	}
}

func TestInitialVolume_NotConfigured(t *testing.T) {
	f := newFixture(t, Options{})
	f.connect(t)

	require.NoError(t, f.mock.Emit(player.SessionConnectedEvent{ConnectionID: "c", UserName: "u"}))
	f.next(t, string(player.KindSessionConnected))

	assert.Empty(t, f.callsOf(player.OpSetVolume))
}

func TestSetVolume(t *testing.T) {
	tests := []struct {
		name   string
		volume float64
		raw    bool
		want   uint16
	}{
		{"percent", 50, false, 32768},
		{"percent above range", 150, false, 65535},
		{"percent below range", -10, false, 0},
		{"raw", 1000, true, 1000},
		{"raw above range", 70000, true, 65535},
		{"raw negative", -5, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{})
			f.connect(t)

			var out *playback.Deferred[struct{}]
			f.onHost(t, func() { out = f.dev.SetVolume(tt.volume, tt.raw) })
			_, err := await(t, out)

			require.NoError(t, err)
			calls := f.callsOf(player.OpSetVolume)
			require.Len(t, calls, 1)
			assert.Equal(t, tt.want, calls[0].Volume)
		})
	}
}

func TestLoad_CanonicalizesURI(t *testing.T) {
	f := newFixture(t, Options{})
	f.connect(t)

	var out *playback.Deferred[playback.LoadResult]
	f.onHost(t, func() {
		out = f.dev.Load("https://open.spotify.com/track/6rqhFgbbKwnb9MLmUQDhG6?si=abc", true)
	})
	res, err := await(t, out)

	require.NoError(t, err)
	assert.Equal(t, "spotify:track:6rqhFgbbKwnb9MLmUQDhG6", res.URI)
	assert.True(t, res.AutoPlay)
	calls := f.callsOf(player.OpLoad)
	require.Len(t, calls, 1)
	assert.Equal(t, "spotify:track:6rqhFgbbKwnb9MLmUQDhG6", calls[0].URI)
}

func TestLoad_InvalidURI(t *testing.T) {
	f := newFixture(t, Options{})
	f.connect(t)

	var out *playback.Deferred[playback.LoadResult]
	f.onHost(t, func() { out = f.dev.Load("track:123", true) })
	_, err := await(t, out)

	require.ErrorIs(t, err, playback.ErrInvalidArgument)
	require.ErrorIs(t, err, player.ErrInvalidURI)
	assert.Empty(t, f.callsOf(player.OpLoad))
}

func TestPlayPauseSeek_ReachController(t *testing.T) {
	f := newFixture(t, Options{})
	f.connect(t)

	var results []*playback.Deferred[struct{}]
	f.onHost(t, func() {
		results = append(results, f.dev.TogglePlay(), f.dev.Pause(), f.dev.Seek(1500))
	})
	for _, r := range results {
		_, err := await(t, r)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{player.OpPlay, player.OpPause, player.OpSeek}, f.mock.Ops())
	assert.Equal(t, uint32(1500), f.callsOf(player.OpSeek)[0].PositionMs)
}

func TestEvents_TrackStateAndPosition(t *testing.T) {
	f := newFixture(t, Options{PositionInterval: 10 * time.Millisecond})
	f.connect(t)
	ref := player.TrackRef{PlayRequestID: 1, TrackID: "t1"}

	require.NoError(t, f.mock.Emit(player.PlayingEvent{TrackRef: ref, PositionMs: 5000}))
	f.next(t, string(player.KindPlaying))
	e := f.next(t, EventTimeUpdated)
	require.NotNil(t, e.PositionMs)
	assert.GreaterOrEqual(t, *e.PositionMs, uint32(5000))
	st := f.status(t)
	assert.Equal(t, player.Playing, st.State)
	assert.Equal(t, "t1", st.TrackID)

	require.NoError(t, f.mock.Emit(player.PausedEvent{TrackRef: ref, PositionMs: 7000}))
	f.next(t, string(player.KindPaused))
	st = f.status(t)
	assert.Equal(t, player.Paused, st.State)
	assert.Equal(t, uint32(7000), st.PositionMs)

	require.NoError(t, f.mock.Emit(player.SeekedEvent{TrackRef: ref, PositionMs: 9000}))
	f.next(t, string(player.KindSeeked))
	assert.Equal(t, uint32(9000), f.status(t).PositionMs)

	require.NoError(t, f.mock.Emit(player.StoppedEvent{TrackRef: ref}))
	f.next(t, string(player.KindStopped))
	st = f.status(t)
	assert.Equal(t, player.Stopped, st.State)
	assert.Equal(t, uint32(0), st.PositionMs)
}

func TestEvents_TrackChangedResetsPosition(t *testing.T) {
	f := newFixture(t, Options{})
	f.connect(t)

	require.NoError(t, f.mock.Emit(player.PausedEvent{PositionMs: 4000}))
	require.NoError(t, f.mock.Emit(player.TrackChangedEvent{AudioItem: "spotify:track:6rqhFgbbKwnb9MLmUQDhG6"}))
	f.next(t, string(player.KindTrackChanged))

	st := f.status(t)
	assert.Equal(t, uint32(0), st.PositionMs)
	assert.Equal(t, "spotify:track:6rqhFgbbKwnb9MLmUQDhG6", st.TrackID)
}

func TestToken_CacheHit(t *testing.T) {
	store := state.NewMock()
	cached := player.NewToken("cached", 3600, []string{"streaming"}, testNow)
	require.NoError(t, store.SaveToken(context.Background(), cached))
	f := newFixture(t, Options{Tokens: store})
	f.connect(t)

	var out *playback.Deferred[*player.Token]
	f.onHost(t, func() { out = f.dev.Token("streaming") })
	tok, err := await(t, out)

	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "cached", tok.AccessToken)
	assert.Empty(t, f.callsOf(player.OpToken))
}

func TestToken_MissFetchesAndSaves(t *testing.T) {
	store := state.NewMock()
	f := newFixture(t, Options{Tokens: store, SaveTokens: true})
	f.mock.SetToken(player.NewToken("fresh", 3600, player.DefaultScopes, testNow))
	f.connect(t)

	var out *playback.Deferred[*player.Token]
	f.onHost(t, func() { out = f.dev.Token() })
	tok, err := await(t, out)

	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "fresh", tok.AccessToken)
	calls := f.callsOf(player.OpToken)
	require.Len(t, calls, 1)
	assert.Equal(t, player.DefaultScopes, calls[0].Scopes)
	require.Len(t, store.Tokens(), 1)
	assert.Equal(t, "fresh", store.Tokens()[0].AccessToken)
}

func TestToken_NotSavedByDefault(t *testing.T) {
	store := state.NewMock()
	f := newFixture(t, Options{Tokens: store})
	f.mock.SetToken(player.NewToken("fresh", 3600, []string{"streaming"}, testNow))
	f.connect(t)

	var out *playback.Deferred[*player.Token]
	f.onHost(t, func() { out = f.dev.Token("streaming") })
	tok, err := await(t, out)

	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Empty(t, store.Tokens())
}

func TestToken_FailureResolvesNil(t *testing.T) {
	f := newFixture(t, Options{})
	f.mock.SetError(player.OpToken, errors.New("no token"))
	f.connect(t)

	var out *playback.Deferred[*player.Token]
	f.onHost(t, func() { out = f.dev.Token("streaming") })
	tok, err := await(t, out)

	require.NoError(t, err)
	assert.Nil(t, tok)
}

func TestClose_StopsDeviceAndListeners(t *testing.T) {
	f := newFixture(t, Options{})
	f.connect(t)
	f.next(t, EventPlayerInitialized)

	var closeErr, again error
	var play *playback.Deferred[struct{}]
	f.onHost(t, func() {
		closeErr = f.dev.Close()
		again = f.dev.Close()
		play = f.dev.Play()
	})

	require.NoError(t, closeErr)
	assert.ErrorIs(t, again, ErrNotInitialized)
	_, err := await(t, play)
	assert.ErrorIs(t, err, ErrNotInitialized)
	waitClosed(t, f.dev.Done())
	assert.True(t, f.mock.Closed())
	assert.False(t, f.status(t).Initialized)
	assert.Empty(t, f.events, "listeners are removed on close")
}

func TestOnce_AndOff(t *testing.T) {
	f := newFixture(t, Options{})
	f.connect(t)

	onceCount := 0
	onCount := 0
	var id ListenerID
	f.onHost(t, func() {
		f.dev.Once(string(player.KindVolumeChanged), func(Event) { onceCount++ })
		id = f.dev.On(string(player.KindVolumeChanged), func(Event) { onCount++ })
	})

	require.NoError(t, f.mock.Emit(player.VolumeChangedEvent{Volume: 1}))
	require.NoError(t, f.mock.Emit(player.VolumeChangedEvent{Volume: 2}))
	f.next(t, string(player.KindVolumeChanged))
	f.next(t, string(player.KindVolumeChanged))

	var removed bool
	f.onHost(t, func() { removed = f.dev.Off(string(player.KindVolumeChanged), id) })
	require.NoError(t, f.mock.Emit(player.VolumeChangedEvent{Volume: 3}))
	f.next(t, string(player.KindVolumeChanged))

	f.onHost(t, func() {
		assert.Equal(t, 1, onceCount)
		assert.Equal(t, 2, onCount)
	})
	assert.True(t, removed)
}

func TestRemoveAll_KeepsTracking(t *testing.T) {
	f := newFixture(t, Options{})
	f.connect(t)

	f.onHost(t, func() { f.dev.RemoveAll() })
	require.NoError(t, f.mock.Emit(player.VolumeChangedEvent{Volume: 1234}))

	deadline := time.Now().Add(testTimeout)
	var v float64
	for time.Now().Before(deadline) {
		f.onHost(t, func() { v = f.dev.Volume(true) })
		if v == 1234 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.InDelta(t, 1234, v, 0)
	for len(f.events) > 0 {
		e := <-f.events
		assert.NotEqual(t, string(player.KindVolumeChanged), e.Event)
	}
}
