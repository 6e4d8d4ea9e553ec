//go:build linux

package notify

import (
	"github.com/godbus/dbus/v5"
)

const (
	busName   = "org.freedesktop.Notifications"
	busPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	busMethod = busName + ".Notify"
	busClose  = busName + ".CloseNotification"
)

type dbusNotifier struct {
	appName string
	obj     dbus.BusObject
}

// New returns a Notifier on the session bus, sending as appName. Without
// a session bus it returns Nop.
func New(appName string) (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return Nop{}, nil //nolint:nilerr // notifications are optional
	}
	return &dbusNotifier{appName: appName, obj: conn.Object(busName, busPath)}, nil
}

func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	var id uint32
	err := n.obj.Call(busMethod, 0,
		n.appName,
		notif.ReplacesID,
		"", // icon
		notif.Title,
		notif.Body,
		[]string{}, // actions
		hints(notif),
		notif.Timeout,
	).Store(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (n *dbusNotifier) Close(id uint32) error {
	return n.obj.Call(busClose, 0, id).Err
}

func hints(n Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant("wavesconnect"),
	}
	if n.Category != "" {
		h["category"] = dbus.MakeVariant(n.Category)
	}
	if n.Urgency == UrgencyLow {
		h["transient"] = dbus.MakeVariant(true)
	}
	return h
}
