package notify

import (
	"log/slog"

	"github.com/llehouerou/wavesconnect/internal/connect"
	"github.com/llehouerou/wavesconnect/internal/fifo"
	"github.com/llehouerou/wavesconnect/internal/player"
)

const defaultTimeout = 5000

// Watcher turns device events into notifications. Handle runs on the
// device's host and never blocks; notifications are sent in order by a
// background goroutine, each one replacing the previous.
type Watcher struct {
	notifier Notifier
	logger   *slog.Logger
	queue    *fifo.Queue[Notification]
	done     chan struct{}
}

// NewWatcher starts a watcher sending through n.
func NewWatcher(n Notifier, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &Watcher{
		notifier: n,
		logger:   logger,
		queue:    fifo.New[Notification](),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Handle is a connect.Device listener.
func (w *Watcher) Handle(e connect.Event) {
	n, ok := Build(e)
	if !ok {
		return
	}
	if err := w.queue.Push(n); err != nil {
		w.logger.Debug("notification_dropped", "event", e.Event)
	}
}

// Close sends the notifications already queued, then stops.
func (w *Watcher) Close() {
	_ = w.queue.Close()
	<-w.done
}

func (w *Watcher) run() {
	defer close(w.done)
	var lastID uint32
	for {
		n, ok := w.queue.Pop()
		if !ok {
			return
		}
		n.ReplacesID = lastID
		id, err := w.notifier.Notify(n)
		if err != nil {
			w.logger.Warn("notification_failed", "title", n.Title, "error", err)
			continue
		}
		if id != 0 {
			lastID = id
		}
	}
}

// Build returns the notification for e, if it warrants one.
func Build(e connect.Event) (Notification, bool) {
	n := Notification{Timeout: defaultTimeout, Urgency: UrgencyLow}
	switch e.Event {
	case string(player.KindTrackChanged):
		if e.AudioItem == nil {
			return Notification{}, false
		}
		n.Title = "Now playing"
		n.Body = *e.AudioItem
	case string(player.KindSessionConnected):
		n.Title = "Remote session connected"
		if e.UserName != nil {
			n.Body = *e.UserName
		}
		n.Category = "network.connected"
		n.Urgency = UrgencyNormal
	case string(player.KindSessionDisconnected):
		n.Title = "Remote session disconnected"
		if e.UserName != nil {
			n.Body = *e.UserName
		}
		n.Category = "network.disconnected"
	case string(player.KindUnavailable):
		n.Title = "Track unavailable"
		if e.TrackID != nil {
			n.Body = *e.TrackID
		}
		n.Urgency = UrgencyNormal
	case connect.EventInitializationError:
		n.Title = "Device failed to start"
		n.Body = e.Error
		n.Category = "device.error"
		n.Urgency = UrgencyCritical
		n.Timeout = 0
	default:
		return Notification{}, false
	}
	return n, true
}
