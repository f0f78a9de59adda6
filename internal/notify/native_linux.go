//go:build linux

package notify

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

const (
	dbusName      = "org.freedesktop.Notifications"
	dbusPath      = dbus.ObjectPath("/org/freedesktop/Notifications")
	dbusInterface = "org.freedesktop.Notifications"
	defaultAction = "default"
)

// NativeProvider talks to the freedesktop notification service over the session
// bus, which also tells us when a notification is clicked.
type NativeProvider struct {
	appName string
	log     zerolog.Logger

	connOnce sync.Once
	conn     *dbus.Conn
	connErr  error
	signals  chan *dbus.Signal

	mu     sync.Mutex
	clicks map[uint32]func()
}

// NewNativeProvider returns the platform provider. The bus connection is opened
// lazily on first use.
func NewNativeProvider(appName string, log zerolog.Logger) *NativeProvider {
	return &NativeProvider{
		appName: appName,
		log:     log,
		clicks:  make(map[uint32]func()),
	}
}

func (p *NativeProvider) connect() error {
	p.connOnce.Do(func() {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			p.connErr = fmt.Errorf("connect session bus: %w", err)
			return
		}
		if err := conn.AddMatchSignal(
			dbus.WithMatchObjectPath(dbusPath),
			dbus.WithMatchInterface(dbusInterface),
		); err != nil {
			conn.Close()
			p.connErr = fmt.Errorf("subscribe notification signals: %w", err)
			return
		}
		p.signals = make(chan *dbus.Signal, 16)
		conn.Signal(p.signals)
		p.conn = conn
		go p.listen()
	})
	return p.connErr
}

// Supported reports whether a notification server currently owns the bus name.
func (p *NativeProvider) Supported() bool {
	if err := p.connect(); err != nil {
		p.log.Debug().Err(err).Msg("session bus unavailable")
		return false
	}
	var owned bool
	err := p.conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, dbusName).Store(&owned)
	if err != nil {
		p.log.Debug().Err(err).Msg("NameHasOwner failed")
		return false
	}
	return owned
}

// Show sends Notify with a default action so activation is reported back.
func (p *NativeProvider) Show(n Notification, onClick func()) error {
	if err := p.connect(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(1)),
	}
	if n.Icon != "" {
		hints["image-path"] = dbus.MakeVariant(n.Icon)
	}

	var id uint32
	obj := p.conn.Object(dbusName, dbusPath)
	err := obj.Call(dbusInterface+".Notify", 0,
		p.appName,
		uint32(0),
		n.Icon,
		n.Title,
		n.Body,
		[]string{defaultAction, "Open"},
		hints,
		int32(-1),
	).Store(&id)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	if onClick != nil {
		p.mu.Lock()
		p.clicks[id] = onClick
		p.mu.Unlock()
	}
	p.log.Trace().Str("id", n.ID).Uint32("dbus_id", id).Msg("notification sent")
	return nil
}

func (p *NativeProvider) listen() {
	for sig := range p.signals {
		p.handleSignal(sig)
	}
}

func (p *NativeProvider) handleSignal(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return
	}

	switch sig.Name {
	case dbusInterface + ".ActionInvoked":
		key, _ := sig.Body[1].(string)
		if key != defaultAction {
			return
		}
		p.mu.Lock()
		fn := p.clicks[id]
		delete(p.clicks, id)
		p.mu.Unlock()
		if fn != nil {
			fn()
		}
	case dbusInterface + ".NotificationClosed":
		p.mu.Lock()
		delete(p.clicks, id)
		p.mu.Unlock()
	}
}

// Close drops the bus connection, which also ends the signal loop.
func (p *NativeProvider) Close() error {
	if p.conn == nil {
		return nil
	}
	p.conn.RemoveSignal(p.signals)
	close(p.signals)
	return p.conn.Close()
}
