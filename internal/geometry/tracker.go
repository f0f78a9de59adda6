package geometry

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/rs/zerolog"
)

// Source reports the current window bounds. ok is false while the bounds are not
// meaningful, for example when the window is minimised.
type Source interface {
	Bounds() (g Geometry, ok bool)
}

// Tracker samples the window periodically and persists every change. The window
// runtime has no resize or move events, so a change between two samples stands in
// for them. Bursts of changes (a drag) collapse into one write.
type Tracker struct {
	src      Source
	store    *Store
	log      zerolog.Logger
	interval time.Duration
	save     func(func())

	mu   sync.Mutex
	last Geometry
}

// NewTracker creates a tracker polling every interval and writing at most once
// per quiet period delay.
func NewTracker(src Source, store *Store, log zerolog.Logger, interval, delay time.Duration) *Tracker {
	return &Tracker{
		src:      src,
		store:    store,
		log:      log,
		interval: interval,
		save:     debounce.New(delay),
	}
}

// Seed records the geometry the window was created with so it is not rewritten
// on the first sample.
func (t *Tracker) Seed(g Geometry) {
	t.mu.Lock()
	t.last = g
	t.mu.Unlock()
}

// Run samples until ctx is done.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.Sample()
		}
	}
}

// Sample takes one reading and schedules a save if the bounds changed.
func (t *Tracker) Sample() {
	g, ok := t.src.Bounds()
	if !ok || !g.Valid() {
		return
	}
	t.mu.Lock()
	changed := !g.Equal(t.last)
	if changed {
		t.last = g
	}
	t.mu.Unlock()
	if !changed {
		return
	}
	t.save(func() { t.write(g) })
}

// Flush writes the current bounds immediately. Used on close.
func (t *Tracker) Flush() error {
	g, ok := t.src.Bounds()
	if !ok || !g.Valid() {
		t.mu.Lock()
		g = t.last
		t.mu.Unlock()
		if !g.Valid() {
			return nil
		}
	}
	t.mu.Lock()
	t.last = g
	t.mu.Unlock()
	return t.store.Save(g)
}

// FlushLast writes the last sampled geometry without asking the window, which
// may already be gone during shutdown.
func (t *Tracker) FlushLast() error {
	t.mu.Lock()
	g := t.last
	t.mu.Unlock()
	if !g.Valid() {
		return nil
	}
	return t.store.Save(g)
}

func (t *Tracker) write(g Geometry) {
	if err := t.store.Save(g); err != nil {
		t.log.Warn().Err(err).Msg("failed to save window geometry")
		return
	}
	t.log.Debug().Stringer("geometry", g).Msg("window geometry saved")
}
