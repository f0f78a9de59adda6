// Package shim makes native desktop notifications look like ordinary browser
// notification support to the hosted web application.
//
// The shipped artifact is the script returned by Script, which runs inside the web
// view after every load. Context is the same logic expressed over Go interfaces; the
// CLI self test drives it against the real bridge and dispatcher.
package shim

import (
	"context"
	"sync"
)

// PermissionGranted is the only permission value content ever observes.
const PermissionGranted = "granted"

// Sender is the content-facing end of the bridge.
type Sender interface {
	Send(title, body string)
}

// Options configure a Context.
type Options struct {
	// Tag is the envelope discriminator: messages whose "type" equals Tag are
	// notification requests.
	Tag string
	// DefaultTitle replaces an empty title.
	DefaultTitle string
}

// Context is the shim state of one content context. A page reload gets a new Context,
// so nothing carries over between loads.
type Context struct {
	sender Sender
	opts   Options

	mu      sync.Mutex
	wrapped map[string]*interceptor
}

// NewContext returns shim state forwarding to sender.
func NewContext(sender Sender, opts Options) *Context {
	return &Context{
		sender:  sender,
		opts:    opts,
		wrapped: make(map[string]*interceptor),
	}
}

func (c *Context) forward(title, body string) {
	if title == "" {
		title = c.opts.DefaultTitle
	}
	c.sender.Send(title, body)
}

// NotificationOptions is the second constructor argument.
type NotificationOptions struct {
	Body string
}

// Notification is what the substituted constructor returns. Its event methods
// accept handlers and ignore them so content that registers listeners keeps working.
type Notification struct {
	Title string
	Body  string
}

// NewNotification is the substituted constructor: it forwards immediately.
func (c *Context) NewNotification(title string, opts NotificationOptions) *Notification {
	n := &Notification{Title: title, Body: opts.Body}
	c.forward(n.Title, n.Body)
	return n
}

func (n *Notification) Close() {}
func (n *Notification) AddEventListener(event string, fn func()) {}
func (n *Notification) RemoveEventListener(event string, fn func()) {}

// Permission is the static permission property.
func (c *Context) Permission() string { return PermissionGranted }

// RequestPermission resolves to granted through both styles: cb is called when
// non-nil, and the returned channel already holds the result.
func (c *Context) RequestPermission(cb func(string)) <-chan string {
	if cb != nil {
		cb(PermissionGranted)
	}
	ch := make(chan string, 1)
	ch <- PermissionGranted
	close(ch)
	return ch
}

// PermissionStatus is the result of a permission query. OnChange is always nil
// for the synthesized notifications status.
type PermissionStatus struct {
	State    string
	OnChange func()
}

// Permissions is the capability permission query API.
type Permissions interface {
	Query(ctx context.Context, name string) (PermissionStatus, error)
}

// WrapPermissions answers "notifications" itself and passes every other name to
// base. A nil base means the browser has no such API and nil is returned.
func (c *Context) WrapPermissions(base Permissions) Permissions {
	if base == nil {
		return nil
	}
	return &permissions{base: base}
}

type permissions struct {
	base Permissions
}

func (p *permissions) Query(ctx context.Context, name string) (PermissionStatus, error) {
	if name == "notifications" {
		return PermissionStatus{State: PermissionGranted}, nil
	}
	return p.base.Query(ctx, name)
}
