// Package notify sends desktop notifications for device events such as a
// remote session connecting or the track changing.
package notify

// Urgency is the freedesktop notification urgency level.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification is one desktop notification.
type Notification struct {
	Title string
	Body  string
	// Category is a freedesktop category hint such as "device" or
	// "device.error". Empty sends none.
	Category string
	// Timeout is in milliseconds; -1 leaves it to the server and 0 never
	// expires.
	Timeout int32
	// ReplacesID replaces an earlier notification when non-zero.
	ReplacesID uint32
	Urgency    Urgency
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify shows n and returns the id the server assigned, or 0 if
	// notifications are unavailable.
	Notify(n Notification) (uint32, error)
	// Close withdraws a notification.
	Close(id uint32) error
}

// Nop is a Notifier that drops everything.
type Nop struct{}

func (Nop) Notify(Notification) (uint32, error) { return 0, nil }

func (Nop) Close(uint32) error { return nil }
