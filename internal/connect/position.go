package connect

import (
	"math"
	"time"

	"github.com/llehouerou/wavesconnect/internal/host"
)

const defaultPositionInterval = 500 * time.Millisecond

// PositionHolder extrapolates the playback position between controller
// events and reports it at a fixed interval while running.
//
// Its methods must be called from the host. The ticker goroutine only
// dispatches; every read and write of the position happens in host tasks.
type PositionHolder struct {
	dispatcher host.Dispatcher
	interval   time.Duration
	onTick     func(positionMs uint32)

	positionMs uint32
	since      time.Time
	// stop is non-nil while running and identifies the current ticker.
	stop chan struct{}
}

// NewPositionHolder returns a stopped holder at position 0. onTick runs on
// the host once per interval while the holder is running.
func NewPositionHolder(d host.Dispatcher, interval time.Duration, onTick func(positionMs uint32)) *PositionHolder {
	if interval <= 0 {
		interval = defaultPositionInterval
	}
	return &PositionHolder{
		dispatcher: d,
		interval:   interval,
		onTick:     onTick,
	}
}

// Set moves the position to positionMs.
func (h *PositionHolder) Set(positionMs uint32) {
	h.positionMs = positionMs
	h.since = time.Now()
}

// Position returns the current position, advanced by the time spent
// running since the last Set.
func (h *PositionHolder) Position() uint32 {
	if h.stop == nil {
		return h.positionMs
	}
	pos := int64(h.positionMs) + time.Since(h.since).Milliseconds()
	return uint32(min(max(pos, 0), math.MaxUint32))
}

// Running reports whether the position is advancing.
func (h *PositionHolder) Running() bool {
	return h.stop != nil
}

// Start lets the position advance and starts the ticker. It is a no-op if
// already running.
func (h *PositionHolder) Start() {
	if h.stop != nil {
		return
	}
	h.since = time.Now()
	stop := make(chan struct{})
	h.stop = stop
	go h.tick(stop)
}

// Stop freezes the position and stops the ticker.
func (h *PositionHolder) Stop() {
	if h.stop == nil {
		return
	}
	h.positionMs = h.Position()
	close(h.stop)
	h.stop = nil
}

func (h *PositionHolder) tick(stop chan struct{}) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			err := h.dispatcher.Dispatch(func() {
				// A tick queued before Stop (or a restart) is stale.
				if h.stop != stop || h.onTick == nil {
					return
				}
				h.onTick(h.Position())
			})
			if err != nil {
				return
			}
		}
	}
}
