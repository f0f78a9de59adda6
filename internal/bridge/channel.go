package bridge

import (
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	queueSize = 64
	// gapTimeout bounds how long a message waits for a missing predecessor.
	gapTimeout = 200 * time.Millisecond
)

// Handler receives bridge messages on the host side.
type Handler interface {
	OnBridgeMessage(title, body string)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(title, body string)

func (f HandlerFunc) OnBridgeMessage(title, body string) { f(title, body) }

// Channel delivers messages to its Handler from a single goroutine, preserving
// send order. Send never fails from the caller's point of view.
//
// The window runtime hands every page event to its own goroutine, so page
// messages can reach Post out of order. They carry a per-page sequence number
// and are held back until their predecessors have been delivered.
type Channel struct {
	handler Handler
	log     zerolog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan Message
	done   chan struct{}

	page       string
	next       uint64
	pending    map[uint64]Message
	gap        *time.Timer
	gapGen     uint64
	gapTimeout time.Duration
}

// NewChannel starts the delivery goroutine. Call Close to stop it.
func NewChannel(h Handler, log zerolog.Logger) *Channel {
	c := &Channel{
		handler:    h,
		log:        log,
		queue:      make(chan Message, queueSize),
		done:       make(chan struct{}),
		pending:    make(map[uint64]Message),
		gapTimeout: gapTimeout,
	}
	go c.run()
	return c
}

// Send enqueues one message from the host itself.
func (c *Channel) Send(title, body string) {
	c.Post(Message{Title: title, Body: body})
}

// Post enqueues m. Messages with a Page are delivered in Seq order within that
// page; a new Page starts counting again from zero. A predecessor that has not
// arrived within the gap timeout is skipped and delivered late if it ever comes.
// After Close messages are dropped silently.
func (c *Channel) Post(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.log.Debug().Str("title", m.Title).Msg("bridge closed; dropping message")
		return
	}
	if m.Page == "" {
		c.queue <- m
		return
	}
	if m.Page != c.page {
		c.flushLocked()
		c.page, c.next = m.Page, 0
	}
	switch {
	case m.Seq < c.next:
		c.log.Debug().Uint64("seq", m.Seq).Msg("late bridge message")
		c.queue <- m
	case m.Seq == c.next:
		c.queue <- m
		c.next++
		c.drainLocked()
	default:
		c.pending[m.Seq] = m
		if c.gap == nil {
			c.gapGen++
			gen := c.gapGen
			c.gap = time.AfterFunc(c.gapTimeout, func() { c.skipGap(gen) })
		}
	}
}

// drainLocked delivers the pending messages that are now in sequence.
func (c *Channel) drainLocked() {
	for {
		m, ok := c.pending[c.next]
		if !ok {
			break
		}
		delete(c.pending, c.next)
		c.queue <- m
		c.next++
	}
	if len(c.pending) == 0 {
		c.stopGapLocked()
	}
}

// stopGapLocked disarms the gap timer; a callback already running sees a stale
// generation and does nothing.
func (c *Channel) stopGapLocked() {
	if c.gap != nil {
		c.gap.Stop()
		c.gap = nil
		c.gapGen++
	}
}

// flushLocked delivers everything pending in Seq order, giving up on gaps.
func (c *Channel) flushLocked() {
	c.stopGapLocked()
	if len(c.pending) == 0 {
		return
	}
	seqs := make([]uint64, 0, len(c.pending))
	for seq := range c.pending {
		seqs = append(seqs, seq)
	}
	slices.Sort(seqs)
	c.log.Debug().Uint64("missing", c.next).Int("pending", len(seqs)).Msg("skipping bridge sequence gap")
	for _, seq := range seqs {
		c.queue <- c.pending[seq]
		delete(c.pending, seq)
	}
	c.next = seqs[len(seqs)-1] + 1
}

func (c *Channel) skipGap(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gapGen {
		return
	}
	c.flushLocked()
}

// Close stops accepting messages, delivers what is queued or held back, and waits.
func (c *Channel) Close() {
	c.mu.Lock()
	if !c.closed {
		c.flushLocked()
		c.closed = true
		close(c.queue)
	}
	c.mu.Unlock()
	<-c.done
}

func (c *Channel) run() {
	defer close(c.done)
	for m := range c.queue {
		c.deliver(m)
	}
}

func (c *Channel) deliver(m Message) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Str("title", m.Title).Msg("bridge handler panicked")
		}
	}()
	c.handler.OnBridgeMessage(m.Title, m.Body)
}
