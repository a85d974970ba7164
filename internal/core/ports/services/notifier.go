package services

// Notification is a direct message destined for one or more Discord users.
type Notification struct {
	Targets     []int64
	Title       string
	Description string
	URL         string
	Fields      []NotificationField
}

// NotificationField is an embed field rendered under the message body.
type NotificationField struct {
	Name   string
	Value  string
	Inline bool
}

// Notifier delivers notifications asynchronously. Enqueue never blocks the
// caller; delivery happens on a background worker with retries.
type Notifier interface {
	Enqueue(n Notification)
}
