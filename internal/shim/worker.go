package shim

import (
	"context"
)

// fallbackWorkerID keys the synthetic worker used when the real lookup fails.
const fallbackWorkerID = "\x00fallback"

// Worker is the active background worker of a registration.
type Worker interface {
	ID() string
	PostMessage(msg any)
}

// Registration is a worker registration handle.
type Registration struct {
	Scope  string
	Active Worker
}

// Container is the worker registration API of the content context.
type Container interface {
	Ready(ctx context.Context) (*Registration, error)
	GetRegistration(ctx context.Context, clientURL string) (*Registration, error)
	GetRegistrations(ctx context.Context) ([]*Registration, error)
}

// WrapContainer routes every registration the content can obtain through Patch.
// Lookup failures resolve to a fallback registration instead of an error. A nil
// base means no worker support and nil is returned.
func (c *Context) WrapContainer(base Container) Container {
	if base == nil {
		return nil
	}
	return &container{shim: c, base: base}
}

type container struct {
	shim *Context
	base Container
}

func (w *container) Ready(ctx context.Context) (*Registration, error) {
	reg, err := w.base.Ready(ctx)
	if err != nil {
		return w.shim.fallback(), nil
	}
	return w.shim.Patch(reg), nil
}

func (w *container) GetRegistration(ctx context.Context, clientURL string) (*Registration, error) {
	reg, err := w.base.GetRegistration(ctx, clientURL)
	if err != nil {
		return w.shim.fallback(), nil
	}
	return w.shim.Patch(reg), nil
}

func (w *container) GetRegistrations(ctx context.Context) ([]*Registration, error) {
	regs, err := w.base.GetRegistrations(ctx)
	if err != nil {
		return []*Registration{w.shim.fallback()}, nil
	}
	for i, reg := range regs {
		regs[i] = w.shim.Patch(reg)
	}
	return regs, nil
}

// Patch installs the intercepting PostMessage on reg's active worker. Each worker
// is wrapped once; later calls for the same worker reuse the existing wrapper.
func (c *Context) Patch(reg *Registration) *Registration {
	if reg == nil || reg.Active == nil {
		return reg
	}
	if _, ok := reg.Active.(*interceptor); ok {
		return reg
	}

	id := reg.Active.ID()
	c.mu.Lock()
	w, ok := c.wrapped[id]
	if !ok {
		w = &interceptor{shim: c, next: reg.Active}
		c.wrapped[id] = w
	}
	c.mu.Unlock()

	reg.Active = w
	return reg
}

// Wrapped reports how many distinct workers have been wrapped.
func (c *Context) Wrapped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.wrapped)
}

func (c *Context) fallback() *Registration {
	c.mu.Lock()
	w, ok := c.wrapped[fallbackWorkerID]
	if !ok {
		w = &interceptor{shim: c, next: discard{}}
		c.wrapped[fallbackWorkerID] = w
	}
	c.mu.Unlock()
	return &Registration{Active: w}
}

type interceptor struct {
	shim *Context
	next Worker
}

func (w *interceptor) ID() string { return w.next.ID() }

func (w *interceptor) PostMessage(msg any) {
	if env, ok := w.shim.envelope(msg); ok {
		w.shim.forward(env.Title, env.Body)
		return
	}
	w.next.PostMessage(msg)
}

type discard struct{}

func (discard) ID() string { return fallbackWorkerID }
func (discard) PostMessage(any) {}
