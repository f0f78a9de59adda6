package desktop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pulinafi/lounge-desktop/internal/bridge"
	"github.com/pulinafi/lounge-desktop/internal/config"
	"github.com/pulinafi/lounge-desktop/internal/geometry"
	"github.com/pulinafi/lounge-desktop/internal/logx"
	"github.com/pulinafi/lounge-desktop/internal/notify"
	"github.com/pulinafi/lounge-desktop/internal/shim"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	mu         sync.Mutex
	bounds     geometry.Geometry
	minimised  bool
	handlers   map[string]func(...interface{})
	scripts    []string
	positions  [][2]int
	shown      int
	hidden     int
	unminimise int
	reloads    int
	quits      int
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{bounds: geometry.Default(), handlers: map[string]func(...interface{}){}}
}

func (w *fakeWindow) Bounds() (geometry.Geometry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bounds, !w.minimised
}

func (w *fakeWindow) SetPosition(x, y int) {
	w.mu.Lock()
	w.positions = append(w.positions, [2]int{x, y})
	w.mu.Unlock()
}

func (w *fakeWindow) Show()       { w.mu.Lock(); w.shown++; w.mu.Unlock() }
func (w *fakeWindow) Hide()       { w.mu.Lock(); w.hidden++; w.mu.Unlock() }
func (w *fakeWindow) Unminimise() { w.mu.Lock(); w.unminimise++; w.mu.Unlock() }
func (w *fakeWindow) Reload()     { w.mu.Lock(); w.reloads++; w.mu.Unlock() }
func (w *fakeWindow) Quit()       { w.mu.Lock(); w.quits++; w.mu.Unlock() }

func (w *fakeWindow) ExecJS(js string) {
	w.mu.Lock()
	w.scripts = append(w.scripts, js)
	w.mu.Unlock()
}

func (w *fakeWindow) On(event string, fn func(data ...interface{})) func() {
	w.mu.Lock()
	w.handlers[event] = fn
	w.mu.Unlock()
	return func() {
		w.mu.Lock()
		delete(w.handlers, event)
		w.mu.Unlock()
	}
}

func (w *fakeWindow) emit(event string, data ...interface{}) bool {
	w.mu.Lock()
	fn := w.handlers[event]
	w.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(data...)
	return true
}

type fakeProvider struct {
	mu     sync.Mutex
	shown  []notify.Notification
	clicks []func()
	closed bool
}

func (p *fakeProvider) Supported() bool { return true }

func (p *fakeProvider) Show(n notify.Notification, onClick func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = append(p.shown, n)
	p.clicks = append(p.clicks, onClick)
	return nil
}

func (p *fakeProvider) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

func (p *fakeProvider) snapshot() ([]notify.Notification, []func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.Notification(nil), p.shown...), append([]func(){}, p.clicks...)
}

type harness struct {
	app    *App
	win    *fakeWindow
	prov   *fakeProvider
	cfg    *config.Config
	opened []string
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	logger, err := logx.New(logx.Config{Level: "debug", NoColor: true})
	require.NoError(t, err)

	h := &harness{win: newFakeWindow(), prov: &fakeProvider{}, cfg: cfg}
	h.app, err = NewApp(Options{
		Config:       cfg,
		Logger:       logger,
		Provider:     h.prov,
		Open:         func(u string) error { h.opened = append(h.opened, u); return nil },
		PollInterval: time.Hour,
		SaveDelay:    10 * time.Millisecond,
	})
	require.NoError(t, err)
	h.app.attach(context.Background(), h.win)
	t.Cleanup(func() { h.app.Shutdown(context.Background()) })
	return h
}

func TestNewAppRequiresDependencies(t *testing.T) {
	_, err := NewApp(Options{})
	require.Error(t, err)
}

func TestNewAppInstallsBundledIcon(t *testing.T) {
	h := newHarness(t, nil)
	_, err := os.Stat(filepath.Join(h.cfg.DataDir, config.IconFileName))
	require.NoError(t, err)
}

func TestBridgeEventReachesProvider(t *testing.T) {
	h := newHarness(t, nil)

	require.True(t, h.win.emit(bridge.EventName, map[string]interface{}{"title": "alice", "body": "hi"}))
	require.True(t, h.win.emit(bridge.EventName, `{"title":"bob","body":"there"}`))
	h.win.emit(bridge.EventName)

	require.Eventually(t, func() bool {
		shown, _ := h.prov.snapshot()
		return len(shown) == 2
	}, time.Second, 5*time.Millisecond)

	shown, _ := h.prov.snapshot()
	assert.Equal(t, "alice", shown[0].Title)
	assert.Equal(t, "hi", shown[0].Body)
	assert.Equal(t, "bob", shown[1].Title)
	assert.Equal(t, h.cfg.IconPath(), shown[0].Icon)
}

func TestBridgeEventsKeepPageOrder(t *testing.T) {
	h := newHarness(t, nil)

	// The window runtime runs each event handler on its own goroutine.
	const n = 40
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := n - 1; i >= 0; i-- {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			<-start
			h.win.emit(bridge.EventName, map[string]interface{}{
				"page": "load-1", "seq": float64(seq), "title": fmt.Sprint(seq), "body": "",
			})
		}(i)
	}
	close(start)
	wg.Wait()

	require.Eventually(t, func() bool {
		shown, _ := h.prov.snapshot()
		return len(shown) == n
	}, 2*time.Second, 5*time.Millisecond)

	shown, _ := h.prov.snapshot()
	for i, s := range shown {
		assert.Equal(t, fmt.Sprint(i), s.Title)
	}
}

func TestClickFocusesWindow(t *testing.T) {
	h := newHarness(t, nil)
	h.win.emit(bridge.EventName, map[string]interface{}{"title": "t", "body": "b"})

	require.Eventually(t, func() bool {
		_, clicks := h.prov.snapshot()
		return len(clicks) == 1
	}, time.Second, 5*time.Millisecond)

	_, clicks := h.prov.snapshot()
	h.win.mu.Lock()
	h.win.minimised = true
	h.win.mu.Unlock()
	clicks[0]()

	h.win.mu.Lock()
	defer h.win.mu.Unlock()
	assert.Equal(t, 1, h.win.unminimise)
	assert.Equal(t, 1, h.win.shown)
}

func TestFocusAfterShutdown(t *testing.T) {
	h := newHarness(t, nil)
	h.app.Shutdown(context.Background())
	assert.False(t, h.app.Focus())
	assert.True(t, h.prov.closed)
	assert.False(t, h.win.emit(bridge.EventName, map[string]interface{}{"title": "late"}))
}

func TestDomReadyInjectsEveryTime(t *testing.T) {
	x, y := 40, 60
	h := newHarness(t, nil)
	h.app.initial = geometry.Geometry{Width: 1000, Height: 700, X: &x, Y: &y}

	h.app.DomReady(context.Background())
	h.app.DomReady(context.Background())
	h.app.DomReady(context.Background())

	h.win.mu.Lock()
	defer h.win.mu.Unlock()
	require.Len(t, h.win.scripts, 3)
	for _, js := range h.win.scripts {
		assert.Equal(t, h.app.Script(), js)
	}
	assert.Equal(t, [][2]int{{40, 60}}, h.win.positions)
	assert.Equal(t, 1, h.win.shown)
}

func TestDomReadyWithoutSavedPosition(t *testing.T) {
	h := newHarness(t, nil)
	h.app.DomReady(context.Background())

	h.win.mu.Lock()
	defer h.win.mu.Unlock()
	assert.Empty(t, h.win.positions)
	assert.Equal(t, 1, h.win.shown)
}

func TestNavigateEvent(t *testing.T) {
	h := newHarness(t, nil)

	h.win.emit(shim.NavigateEvent, map[string]interface{}{"url": "https://example.org/a"})
	h.win.emit(shim.NavigateEvent, `{"url":"mailto:someone@example.org"}`)
	h.win.emit(shim.NavigateEvent, map[string]interface{}{"url": "javascript:alert(1)"})
	h.win.emit(shim.NavigateEvent, map[string]interface{}{})

	assert.Equal(t, []string{"https://example.org/a", "mailto:someone@example.org"}, h.opened)
}

func TestApplyConfig(t *testing.T) {
	h := newHarness(t, nil)
	before := h.app.Script()

	next := *h.cfg
	next.Notifications.Enabled = false
	next.Notifications.DefaultTitle = "Lounge (work)"
	h.app.ApplyConfig(&next)

	assert.False(t, h.app.Dispatcher().Enabled())
	assert.NotEqual(t, before, h.app.Script())
	assert.Contains(t, h.app.Script(), `"Lounge (work)"`)

	h.win.emit(bridge.EventName, map[string]interface{}{"title": "muted"})
	h.app.channel.Close()
	shown, _ := h.prov.snapshot()
	assert.Empty(t, shown)
}

func TestReloadAndQuit(t *testing.T) {
	h := newHarness(t, nil)
	h.app.Reload()
	h.app.Quit()

	h.win.mu.Lock()
	defer h.win.mu.Unlock()
	assert.Equal(t, 1, h.win.reloads)
	assert.Equal(t, 1, h.win.quits)
}

func TestShutdownSavesLastGeometry(t *testing.T) {
	h := newHarness(t, nil)
	h.win.mu.Lock()
	h.win.bounds = geometry.At(1024, 768, 5, 6)
	h.win.mu.Unlock()
	h.app.tracker.Sample()
	require.Eventually(t, func() bool {
		_, err := os.Stat(h.cfg.GeometryPath())
		return err == nil
	}, time.Second, 5*time.Millisecond)

	h.win.mu.Lock()
	h.win.bounds = geometry.At(1, 1, 0, 0)
	h.win.mu.Unlock()
	h.app.Shutdown(context.Background())

	got := geometry.NewStore(h.cfg.GeometryPath()).Load()
	assert.True(t, got.Equal(geometry.At(1024, 768, 5, 6)), got.String())
}

func TestNavigator(t *testing.T) {
	var opened []string
	n := NewNavigator(zerolog.Nop(), func(u string) error {
		opened = append(opened, u)
		return nil
	})

	tests := []struct {
		url     string
		blocked bool
	}{
		{"https://github.com/thelounge/thelounge", false},
		{"http://example.org", false},
		{"mailto:a@example.org", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"https://", true},
		{"::", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			opened = nil
			err := n.Open(tt.url)
			if tt.blocked {
				require.Error(t, err)
				assert.Empty(t, opened)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{tt.url}, opened)
		})
	}

	failing := NewNavigator(zerolog.Nop(), func(string) error { return errors.New("no browser") })
	require.Error(t, failing.Open("https://example.org"))
}
