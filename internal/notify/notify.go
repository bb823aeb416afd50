// Package notify delivers grade-update notifications. Sinks are best-effort:
// delivery failures are logged and retried by the dispatcher queue but never
// propagate back into the poller.
package notify

import "context"

// Notification is one user-facing grade update event. Slot distinguishes
// concurrent notifications so sinks that support replacement semantics can
// keep them separate.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Slot    int    `json:"slot"`
}

// Notifier delivers a single notification.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
