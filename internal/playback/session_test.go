package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavesconnect/internal/player"
)

func TestOpen_ReturnsDeviceID(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev-1")
	s := openSession(t, m, loop)

	assert.Equal(t, "dev-1", s.DeviceID())
}

func TestOpen_PassesConfigToFactory(t *testing.T) {
	loop := startLoop(t)
	f := player.NewMockFactory(player.NewMock("dev"))
	cfg := player.Config{
		Credentials:          player.Credentials{Username: "u", Password: "p", AuthType: player.AuthSpotifyToken},
		Backend:              "pipe",
		Normalization:        true,
		NormalizationPregain: 3.5,
	}

	s, err := Open(context.Background(), cfg, Options{Factory: f, Dispatcher: loop})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	waitDone(t, s)

	assert.Equal(t, []player.Config{cfg}, f.Configs())
}

func TestOpen_ConnectFailure(t *testing.T) {
	loop := startLoop(t)
	errAuth := errors.New("bad credentials")
	f := player.NewMockFactory(player.NewMock("dev"))
	f.SetError(errAuth)

	s, err := Open(context.Background(), player.Config{}, Options{Factory: f, Dispatcher: loop})

	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrSetupFailed)
	assert.ErrorIs(t, err, errAuth)
}

func TestOpen_ContextCancelled(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	f := player.NewMockFactory(m)
	f.SetGate(make(chan struct{}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Open(ctx, player.Config{}, Options{Factory: f, Dispatcher: loop})

	assert.ErrorIs(t, err, ErrSetupFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOpen_AbandonedSessionDeliversNothing(t *testing.T) {
	h := newManualHost()
	m := player.NewMock("dev")
	require.NoError(t, m.Emit(player.SessionConnectedEvent{ConnectionID: "c"}))

	// A factory that finishes connecting even though ctx has ended.
	release := make(chan struct{})
	factory := player.FactoryFunc(func(context.Context, player.Config) (player.Controller, error) {
		<-release
		return m, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	var delivered []EventObject
	_, err := Open(ctx, player.Config{}, Options{
		Factory:    factory,
		Dispatcher: h,
		OnEvent:    func(o EventObject) { delivered = append(delivered, o) },
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)

	// SessionConnected, then StreamClosed once the worker discards the controller.
	h.runOne(t)
	h.runOne(t)

	assert.True(t, m.Closed())
	assert.Empty(t, delivered)
}

func TestOpen_RequiresFactoryAndDispatcher(t *testing.T) {
	_, err := Open(context.Background(), player.Config{}, Options{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Open(context.Background(), player.Config{}, Options{Dispatcher: newManualHost()})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSession_CommandsRunInSendOrder(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	s := openSession(t, m, loop)

	const n = 200
	var want []player.Call
	var pending []*Deferred[struct{}]
	for i := range n {
		switch i % 3 {
		case 0:
			pending = append(pending, s.Seek(int64(i)))
			want = append(want, player.Call{Op: player.OpSeek, PositionMs: uint32(i)})
		case 1:
			pending = append(pending, s.SetVolumeRaw(uint16(i)))
			want = append(want, player.Call{Op: player.OpSetVolume, Volume: uint16(i)})
		default:
			pending = append(pending, s.Play())
			want = append(want, player.Call{Op: player.OpPlay})
		}
	}
	for _, d := range pending {
		_, err := await(t, d)
		require.NoError(t, err)
	}

	assert.Equal(t, want, m.Calls())
}

func TestSession_LoadTrack(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	s := openSession(t, m, loop)

	res, err := await(t, s.LoadTrack("track:123", true))

	require.NoError(t, err)
	assert.Equal(t, LoadResult{URI: "track:123", AutoPlay: true}, res)
	assert.Equal(t, []player.Call{{Op: player.OpLoad, URI: "track:123", AutoPlay: true}}, m.Calls())
}

func TestSession_LoadTrackAtAndSend(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	s := openSession(t, m, loop)

	res, err := await(t, s.LoadTrackAt("spotify:track:a", false, 1500))
	require.NoError(t, err)
	assert.Equal(t, uint32(1500), res.StartMs)

	v, err := await(t, s.Send(LoadTrack{URI: "spotify:track:b", AutoPlay: true}))
	require.NoError(t, err)
	assert.Equal(t, LoadResult{URI: "spotify:track:b", AutoPlay: true}, v)
}

func TestSession_LoadTrackEmptyURIRejected(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	s := openSession(t, m, loop)

	_, err := await(t, s.LoadTrack("", true))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = await(t, s.Play())
	require.NoError(t, err)
	assert.Equal(t, []string{player.OpPlay}, m.Ops())
}

func TestSession_SetVolumeClamps(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	s := openSession(t, m, loop)

	tests := []struct {
		percent float64
		want    uint16
	}{
		{150, 65535},
		{100, 65535},
		{50, 32768},
		{0, 0},
		{-10, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.percent), func(t *testing.T) {
			_, err := await(t, s.SetVolume(tt.percent))
			require.NoError(t, err)
			calls := m.Calls()
			assert.Equal(t, tt.want, calls[len(calls)-1].Volume)
		})
	}
}

func TestSession_SeekOutOfRangeRejected(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	s := openSession(t, m, loop)

	_, err := await(t, s.Seek(-1))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = await(t, s.Seek(math.MaxUint32+1))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = await(t, s.Seek(math.MaxUint32))
	require.NoError(t, err)
	assert.Equal(t, []player.Call{{Op: player.OpSeek, PositionMs: math.MaxUint32}}, m.Calls())
}

func TestSession_ControllerErrorRejectsAndWorkerContinues(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	errBadSeek := errors.New("position beyond track")
	m.SetError(player.OpSeek, errBadSeek)
	s := openSession(t, m, loop)

	seek := s.Seek(99999)
	play := s.Play()

	_, err := await(t, seek)
	assert.ErrorIs(t, err, errBadSeek)
	_, err = await(t, play)
	assert.NoError(t, err)
}

func TestSession_TokenIsBestEffort(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	s := openSession(t, m, loop)

	m.SetError(player.OpToken, errors.New("login expired"))
	tok, err := await(t, s.Token("streaming"))
	require.NoError(t, err)
	assert.Nil(t, tok)

	m.SetError(player.OpToken, nil)
	m.SetToken(&player.Token{AccessToken: "abc"})
	tok, err = await(t, s.Token())
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "abc", tok.AccessToken)

	calls := m.Calls()
	assert.Equal(t, []string{"streaming"}, calls[0].Scopes)
	assert.Equal(t, player.DefaultScopes, calls[1].Scopes)
}

func TestSession_DoubleClose(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	s := openSession(t, m, loop)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), ErrClosed)

	waitDone(t, s)
	assert.ErrorIs(t, s.Close(), ErrClosed)
	assert.True(t, m.Closed())
}

func TestSession_QueuedCommandsRunBeforeClose(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	s := openSession(t, m, loop)

	play := s.Play()
	pause := s.Pause()
	require.NoError(t, s.Close())

	_, err := await(t, play)
	require.NoError(t, err)
	_, err = await(t, pause)
	require.NoError(t, err)
	waitDone(t, s)

	assert.Equal(t, []string{player.OpPlay, player.OpPause, player.OpClose}, m.Ops())
}

func TestSession_SendAfterCloseRejected(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	s := openSession(t, m, loop)

	require.NoError(t, s.Close())
	_, err := await(t, s.Play())
	assert.ErrorIs(t, err, ErrWorkerUnavailable)

	waitDone(t, s)
	_, err = await(t, s.Pause())
	assert.ErrorIs(t, err, ErrWorkerUnavailable)

	assert.Equal(t, []string{player.OpClose}, m.Ops())
}

func TestSession_PanicRejectsCommandAndStopsWorker(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	gate := make(chan struct{})
	m.SetHook(player.OpPlay, func() { <-gate })
	m.SetHook(player.OpPause, func() { panic("controller corrupted") })
	s := openSession(t, m, loop)

	play := s.Play()
	pause := s.Pause()
	seek := s.Seek(10)
	close(gate)

	_, err := await(t, play)
	assert.NoError(t, err)
	_, err = await(t, pause)
	assert.ErrorIs(t, err, ErrCommandPanicked)
	_, err = await(t, seek)
	assert.ErrorIs(t, err, ErrWorkerUnavailable)

	waitDone(t, s)
	assert.Equal(t, []string{player.OpPlay, player.OpPause, player.OpClose}, m.Ops())

	_, err = await(t, s.Play())
	assert.ErrorIs(t, err, ErrWorkerUnavailable)
	assert.ErrorIs(t, s.Close(), ErrClosed)
}

func TestSession_ResultsSettleOnHost(t *testing.T) {
	h := newManualHost()
	m := player.NewMock("dev")
	s := openSession(t, m, h)

	d := s.Play()
	var calls int
	d.Then(func(struct{}, error) { calls++ })

	h.runOne(t)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, h.pending())
}

func TestSession_EventsBeforeCallbackDropped(t *testing.T) {
	h := newManualHost()
	m := player.NewMock("dev")
	s := openSession(t, m, h)

	require.NoError(t, m.Emit(player.ShuffleChangedEvent{Shuffle: true}))
	h.runOne(t)

	var got []EventObject
	s.OnEvent(func(o EventObject) { got = append(got, o) })

	require.NoError(t, m.Emit(player.VolumeChangedEvent{Volume: 1000}))
	h.runOne(t)

	require.Len(t, got, 1)
	assert.Equal(t, "VolumeChanged", got[0].Event)
	assert.Equal(t, uint16(1000), *got[0].Volume)
}

func TestSession_OnEventReplacesAndClears(t *testing.T) {
	h := newManualHost()
	m := player.NewMock("dev")
	s := openSession(t, m, h)

	var first, second int
	s.OnEvent(func(EventObject) { first++ })
	s.OnEvent(func(EventObject) { second++ })
	require.NoError(t, m.Emit(player.RepeatChangedEvent{Repeat: true}))
	h.runOne(t)

	s.OnEvent(nil)
	require.NoError(t, m.Emit(player.RepeatChangedEvent{Repeat: false}))
	h.runOne(t)

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestSession_EventsKeepEmissionOrder(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	s := openSession(t, m, loop)
	events := collectEvents(s)

	for i := range 50 {
		require.NoError(t, m.Emit(player.VolumeChangedEvent{Volume: uint16(i)}))
	}
	for i := range 50 {
		o := nextEvent(t, events)
		assert.Equal(t, uint16(i), *o.Volume)
	}
}

func TestSession_EventsFlowWhileCommandBlocks(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	gate := make(chan struct{})
	m.SetHook(player.OpLoad, func() { <-gate })
	s := openSession(t, m, loop)
	events := collectEvents(s)

	load := s.LoadTrack("spotify:track:x", true)
	require.NoError(t, m.Emit(player.AutoPlayChangedEvent{AutoPlay: true}))

	o := nextEvent(t, events)
	assert.Equal(t, "AutoPlayChanged", o.Event)
	assert.False(t, load.Settled())

	close(gate)
	_, err := await(t, load)
	assert.NoError(t, err)
}

func TestSession_StreamClosedIsLastEvent(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	s := openSession(t, m, loop)
	events := collectEvents(s)

	require.NoError(t, m.Emit(player.EndOfTrackEvent{}))
	require.NoError(t, s.Close())

	assert.Equal(t, "EndOfTrack", nextEvent(t, events).Event)
	assert.Equal(t, EventStreamClosed, nextEvent(t, events).Event)
}

func TestSession_CallbacksArePerSession(t *testing.T) {
	loop := startLoop(t)
	m1 := player.NewMock("one")
	m2 := player.NewMock("two")
	s1 := openSession(t, m1, loop)
	s2 := openSession(t, m2, loop)
	ev1 := collectEvents(s1)
	ev2 := collectEvents(s2)

	require.NoError(t, m1.Emit(player.ShuffleChangedEvent{Shuffle: true}))
	require.NoError(t, m2.Emit(player.RepeatChangedEvent{Repeat: true}))

	assert.Equal(t, "ShuffleChanged", nextEvent(t, ev1).Event)
	assert.Equal(t, "RepeatChanged", nextEvent(t, ev2).Event)
	assert.Empty(t, ev1)
	assert.Empty(t, ev2)
}

func TestSession_StoppedHostDropsEvents(t *testing.T) {
	h := newManualHost()
	m := player.NewMock("dev")
	s := openSession(t, m, h)
	s.OnEvent(func(EventObject) { t.Error("event delivered to stopped host") })

	h.stopped.Store(true)
	require.NoError(t, m.Emit(player.ShuffleChangedEvent{}))

	// The result still settles even though it cannot reach the host.
	_, err := await(t, s.Play())
	assert.NoError(t, err)
}

func TestOpen_OnEventOptionSeesConnectEvents(t *testing.T) {
	loop := startLoop(t)
	m := player.NewMock("dev")
	require.NoError(t, m.Emit(player.SessionConnectedEvent{ConnectionID: "c", UserName: "u"}))

	events := make(chan EventObject, 8)
	s, err := Open(context.Background(), player.Config{}, Options{
		Factory:    player.NewMockFactory(m),
		Dispatcher: loop,
		OnEvent:    func(o EventObject) { events <- o },
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
		waitDone(t, s)
	})

	o := nextEvent(t, events)
	assert.Equal(t, "SessionConnected", o.Event)
	assert.Equal(t, "u", *o.UserName)
}
