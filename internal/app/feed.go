package app

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/llehouerou/wavesconnect/internal/connect"
	"github.com/llehouerou/wavesconnect/internal/errmsg"
	"github.com/llehouerou/wavesconnect/internal/player"
)

const defaultFeedLimit = 200

// Feed is the part of the model that device listeners write to. The
// model holds it by pointer so listeners registered on one copy of the
// model are seen by the next.
type Feed struct {
	lines []string
	limit int
	now   func() time.Time

	// TokenExpiry is zero until a token has been fetched.
	TokenExpiry time.Time
	// Err is the last error shown in the status line.
	Err string
}

// NewFeed creates an empty feed keeping at most limit lines.
func NewFeed(limit int, now func() time.Time) *Feed {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if now == nil {
		now = time.Now
	}
	return &Feed{limit: limit, now: now}
}

// Lines returns the recorded lines, oldest first.
func (f *Feed) Lines() []string {
	return f.lines
}

// Add appends a timestamped line.
func (f *Feed) Add(format string, args ...any) {
	line := f.now().Format("15:04:05") + "  " + fmt.Sprintf(format, args...)
	f.lines = append(f.lines, line)
	if len(f.lines) > f.limit {
		f.lines = f.lines[len(f.lines)-f.limit:]
	}
}

// Fail records err as the current error.
func (f *Feed) Fail(op errmsg.Op, err error) {
	f.Err = errmsg.Format(op, err)
}

// Record is a device listener. TimeUpdated is skipped; the player bar
// already shows the position.
func (f *Feed) Record(e connect.Event) {
	if e.Event == connect.EventTimeUpdated {
		return
	}
	if e.Event == connect.EventInitializationError {
		f.Err = errmsg.Format(errmsg.OpConnect, errors.New(e.Error))
	}
	if detail := describe(e); detail != "" {
		f.Add("%s  %s", e.Event, detail)
		return
	}
	f.Add("%s", e.Event)
}

// report returns a result callback that records a failed command.
func report[T any](f *Feed, op errmsg.Op) func(T, error) {
	return func(_ T, err error) {
		if err != nil {
			f.Fail(op, err)
		}
	}
}

func describe(e connect.Event) string {
	var parts []string
	if e.AudioItem != nil {
		parts = append(parts, *e.AudioItem)
	}
	if e.TrackID != nil {
		parts = append(parts, "track "+*e.TrackID)
	}
	if e.PositionMs != nil {
		parts = append(parts, "at "+formatMs(*e.PositionMs))
	}
	if e.Volume != nil {
		parts = append(parts, fmt.Sprintf("volume %d%%", int(math.Round(player.RawToPercent(*e.Volume)))))
	}
	if e.UserName != nil {
		parts = append(parts, "user "+*e.UserName)
	}
	if e.ClientName != nil {
		parts = append(parts, "client "+*e.ClientName)
	}
	for _, flag := range []struct {
		name string
		v    *bool
	}{
		{"shuffle", e.Shuffle},
		{"repeat", e.Repeat},
		{"autoplay", e.AutoPlay},
		{"filter", e.Filter},
	} {
		if flag.v != nil {
			parts = append(parts, fmt.Sprintf("%s %t", flag.name, *flag.v))
		}
	}
	if e.Error != "" {
		parts = append(parts, e.Error)
	}
	return strings.Join(parts, ", ")
}

func formatMs(ms uint32) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
