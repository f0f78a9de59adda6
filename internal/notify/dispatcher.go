package notify

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Focuser brings the host window to the front. It returns false when there is no
// window any more.
type Focuser interface {
	Focus() bool
}

// Dispatcher turns bridge messages into native notifications. Every message is
// shown independently; nothing is queued, merged or rate limited.
type Dispatcher struct {
	provider Provider
	focus    Focuser
	log      zerolog.Logger

	mu      sync.RWMutex
	icon    string
	enabled bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithIcon sets the icon path attached to every notification.
func WithIcon(path string) Option {
	return func(d *Dispatcher) { d.icon = path }
}

// WithEnabled starts the dispatcher muted when false.
func WithEnabled(enabled bool) Option {
	return func(d *Dispatcher) { d.enabled = enabled }
}

// NewDispatcher creates a dispatcher. focus may be nil.
func NewDispatcher(p Provider, focus Focuser, log zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		provider: p,
		focus:    focus,
		log:      log,
		enabled:  true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnBridgeMessage implements bridge.Handler.
func (d *Dispatcher) OnBridgeMessage(title, body string) {
	d.mu.RLock()
	icon, enabled := d.icon, d.enabled
	d.mu.RUnlock()

	n := Notification{ID: uuid.NewString(), Title: title, Body: body, Icon: icon}
	log := d.log.With().Str("id", n.ID).Logger()

	if !enabled {
		log.Debug().Str("title", title).Msg("notifications muted; dropping")
		return
	}
	if !d.provider.Supported() {
		log.Info().Str("title", title).Msg("notifications not supported on this system")
		return
	}
	if err := d.provider.Show(n, func() { d.clicked(n.ID) }); err != nil {
		log.Warn().Err(err).Str("title", title).Msg("failed to show notification")
		return
	}
	log.Debug().Str("title", title).Msg("notification shown")
}

func (d *Dispatcher) clicked(id string) {
	if d.focus == nil || !d.focus.Focus() {
		d.log.Debug().Str("id", id).Msg("notification clicked but window is gone")
		return
	}
	d.log.Debug().Str("id", id).Msg("notification clicked; window focused")
}

// SetEnabled mutes or unmutes the dispatcher.
func (d *Dispatcher) SetEnabled(enabled bool) {
	d.mu.Lock()
	d.enabled = enabled
	d.mu.Unlock()
}

// Enabled reports whether notifications are currently shown.
func (d *Dispatcher) Enabled() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enabled
}

// SetIcon changes the icon for subsequent notifications.
func (d *Dispatcher) SetIcon(path string) {
	d.mu.Lock()
	d.icon = path
	d.mu.Unlock()
}
