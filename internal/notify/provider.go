// Package notify shows native desktop notifications for messages that arrive over
// the bridge.
package notify

import "errors"

// ErrUnsupported is returned by providers on systems without a notification service.
var ErrUnsupported = errors.New("native notifications are not supported on this system")

// Notification is one native notification.
type Notification struct {
	ID    string // correlation id for logs; not shown
	Title string
	Body  string
	Icon  string // file path
}

// Provider is the host-side notification facility.
type Provider interface {
	// Supported reports whether Show can currently display anything.
	Supported() bool
	// Show displays n. onClick, when non-nil, runs if the user activates the
	// notification and the platform reports it.
	Show(n Notification, onClick func()) error
	Close() error
}
