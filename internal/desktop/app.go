// Package desktop owns the single application window: it injects the page script,
// routes bridge and navigation events, remembers the window geometry and brings
// the window back when a notification is clicked.
package desktop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/browser"
	"github.com/pulinafi/lounge-desktop/internal/assets"
	"github.com/pulinafi/lounge-desktop/internal/bridge"
	"github.com/pulinafi/lounge-desktop/internal/config"
	"github.com/pulinafi/lounge-desktop/internal/geometry"
	"github.com/pulinafi/lounge-desktop/internal/logx"
	"github.com/pulinafi/lounge-desktop/internal/notify"
	"github.com/pulinafi/lounge-desktop/internal/shim"
	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/options"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultSaveDelay    = 400 * time.Millisecond
)

// Options configures an App.
type Options struct {
	Config *config.Config
	// ConfigPath enables live reload of the config file when set.
	ConfigPath string
	Logger     *logx.Logger
	Provider   notify.Provider
	// Open hands a URL to the system; browser.OpenURL when nil.
	Open func(string) error

	PollInterval time.Duration
	SaveDelay    time.Duration
}

// App is the window lifecycle manager. Its Startup, DomReady, BeforeClose and
// Shutdown methods are the Wails lifecycle hooks.
type App struct {
	logger   *logx.Logger
	log      zerolog.Logger
	provider notify.Provider
	store    *geometry.Store
	initial  geometry.Geometry
	nav      *Navigator

	dispatcher *notify.Dispatcher
	channel    *bridge.Channel

	configPath   string
	pollInterval time.Duration
	saveDelay    time.Duration

	mu       sync.Mutex
	cfg      *config.Config
	script   string
	win      Window
	tracker  *geometry.Tracker
	placed   bool
	closed   bool
	quitting bool
	offs     []func()
	cancel   context.CancelFunc
	group    *errgroup.Group
}

// NewApp prepares everything that does not need a window yet.
func NewApp(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("desktop: config is required")
	}
	if opts.Logger == nil {
		return nil, errors.New("desktop: logger is required")
	}
	if opts.Provider == nil {
		return nil, errors.New("desktop: notification provider is required")
	}
	cfg := opts.Config
	script, err := renderScript(cfg)
	if err != nil {
		return nil, err
	}
	open := opts.Open
	if open == nil {
		open = browser.OpenURL
	}

	a := &App{
		logger:       opts.Logger,
		log:          opts.Logger.Component("desktop"),
		provider:     opts.Provider,
		store:        geometry.NewStore(cfg.GeometryPath()),
		configPath:   opts.ConfigPath,
		pollInterval: opts.PollInterval,
		saveDelay:    opts.SaveDelay,
		cfg:          cfg,
		script:       script,
	}
	if a.pollInterval <= 0 {
		a.pollInterval = defaultPollInterval
	}
	if a.saveDelay <= 0 {
		a.saveDelay = defaultSaveDelay
	}
	a.nav = NewNavigator(a.log, open)
	a.initial = a.store.Load()

	icon := a.installIcon(cfg)
	a.dispatcher = notify.NewDispatcher(opts.Provider, a, opts.Logger.Component("notify"),
		notify.WithIcon(icon),
		notify.WithEnabled(cfg.Notifications.Enabled),
	)
	a.channel = bridge.NewChannel(a.dispatcher, opts.Logger.Component("bridge"))
	return a, nil
}

func renderScript(cfg *config.Config) (string, error) {
	return shim.Script(shim.ScriptOptions{
		Origin:       cfg.Origin(),
		Event:        bridge.EventName,
		Tag:          cfg.Notifications.Tag,
		DefaultTitle: cfg.Notifications.DefaultTitle,
		ZoomStep:     cfg.Window.ZoomStep,
	})
}

// installIcon writes the bundled icon next to the geometry file unless the user
// configured one. A failed write only costs the notification its icon.
func (a *App) installIcon(cfg *config.Config) string {
	path := cfg.IconPath()
	if cfg.Notifications.Icon != "" {
		return path
	}
	if err := notify.InstallIcon(path, assets.Icon); err != nil {
		a.log.Warn().Err(err).Str("path", path).Msg("could not install notification icon")
		return ""
	}
	return path
}

// InitialGeometry is the geometry the window should be created with.
func (a *App) InitialGeometry() geometry.Geometry { return a.initial }

// Dispatcher exposes the notification dispatcher (tray mute toggle, CLI).
func (a *App) Dispatcher() *notify.Dispatcher { return a.dispatcher }

// Script returns the page script injected on every content-ready event.
func (a *App) Script() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.script
}

// Startup is the OnStartup hook.
func (a *App) Startup(ctx context.Context) {
	a.attach(ctx, newWailsWindow(ctx))
}

func (a *App) attach(ctx context.Context, win Window) {
	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)

	tracker := geometry.NewTracker(win, a.store, a.logger.Component("geometry"), a.pollInterval, a.saveDelay)
	tracker.Seed(a.initial)

	a.mu.Lock()
	a.win = win
	a.tracker = tracker
	a.cancel = cancel
	a.group = g
	a.offs = append(a.offs,
		win.On(bridge.EventName, a.onBridgeEvent),
		win.On(shim.NavigateEvent, a.onNavigateEvent),
	)
	a.mu.Unlock()

	g.Go(func() error { return tracker.Run(gctx) })
	if a.configPath != "" {
		w := config.NewWatcher(a.configPath, a.logger.Component("config"), a.ApplyConfig)
		g.Go(func() error {
			if err := w.Run(gctx); err != nil {
				a.log.Warn().Err(err).Msg("config reload disabled")
			}
			return nil
		})
	}
	a.log.Info().Str("url", a.cfg.App.URL).Str("geometry", a.initial.String()).Msg("window started")
}

// DomReady is the OnDomReady hook. It fires for the launcher page and again for
// every load of the hosted application; the script is injected each time and
// does nothing outside the application origin.
func (a *App) DomReady(ctx context.Context) {
	a.contentReady()
}

func (a *App) contentReady() {
	a.mu.Lock()
	win, script, first := a.win, a.script, !a.placed
	a.placed = true
	a.mu.Unlock()
	if win == nil {
		return
	}
	if first {
		if g := a.initial; g.HasPosition() {
			win.SetPosition(*g.X, *g.Y)
		}
		win.Show()
	}
	win.ExecJS(script)
	a.log.Debug().Msg("page script injected")
}

func (a *App) onBridgeEvent(data ...interface{}) {
	m, err := bridge.Decode(data...)
	if err != nil {
		a.log.Debug().Err(err).Msg("ignoring malformed bridge event")
		return
	}
	a.channel.Post(m)
}

type navigateRequest struct {
	URL string `json:"url"`
}

func (a *App) onNavigateEvent(data ...interface{}) {
	if len(data) == 0 {
		return
	}
	var req navigateRequest
	switch v := data[0].(type) {
	case string:
		if err := sonic.UnmarshalString(v, &req); err != nil {
			req.URL = v
		}
	case map[string]interface{}:
		req.URL, _ = v["url"].(string)
	}
	if req.URL == "" {
		a.log.Debug().Msg("ignoring navigation event without url")
		return
	}
	if err := a.nav.Open(req.URL); err != nil {
		a.log.Warn().Err(err).Msg("external navigation refused")
	}
}

// Focus implements notify.Focuser.
func (a *App) Focus() bool {
	a.mu.Lock()
	win, closed := a.win, a.closed
	a.mu.Unlock()
	if win == nil || closed {
		return false
	}
	win.Unminimise()
	win.Show()
	return true
}

// SecondInstance is the single-instance callback: a second launch focuses the
// running window and exits.
func (a *App) SecondInstance(data options.SecondInstanceData) {
	a.log.Info().Strs("args", data.Args).Msg("second instance launched")
	a.Focus()
}

// Reload reloads the hosted application.
func (a *App) Reload() {
	if win := a.window(); win != nil {
		win.Reload()
	}
}

// Quit ends the application. The close hook lets the window go instead of
// hiding it to the tray.
func (a *App) Quit() {
	a.mu.Lock()
	a.quitting = true
	a.mu.Unlock()
	if win := a.window(); win != nil {
		win.Quit()
	}
}

func (a *App) window() Window {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.win
}

// flushGeometry writes the final geometry. live reads the window first; after
// shutdown only the last sample is used.
func (a *App) flushGeometry(live bool) {
	a.mu.Lock()
	tracker := a.tracker
	a.mu.Unlock()
	if tracker == nil {
		return
	}
	flush := tracker.FlushLast
	if live {
		flush = tracker.Flush
	}
	if err := flush(); err != nil {
		a.log.Warn().Err(err).Msg("could not save window geometry")
	}
}

// ApplyConfig applies the settings that can change while running.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.dispatcher.SetEnabled(cfg.Notifications.Enabled)
	a.dispatcher.SetIcon(a.installIcon(cfg))
	a.logger.SetLevel(cfg.Log.Level)

	script, err := renderScript(cfg)
	a.mu.Lock()
	old := a.cfg
	a.cfg = cfg
	if err == nil {
		a.script = script
	}
	a.mu.Unlock()
	if err != nil {
		a.log.Warn().Err(err).Msg("keeping previous page script")
	}
	if old.App.URL != cfg.App.URL || old.DataDir != cfg.DataDir {
		a.log.Info().Msg("app.url and data_dir changes take effect after a restart")
	}
	a.log.Info().
		Bool("notifications", cfg.Notifications.Enabled).
		Str("level", cfg.Log.Level).
		Msg("config reloaded")
}

// Shutdown is the OnShutdown hook.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	a.closed = true
	offs, cancel, group := a.offs, a.cancel, a.group
	a.offs = nil
	a.mu.Unlock()

	for _, off := range offs {
		off()
	}
	if cancel != nil {
		cancel()
	}
	if group != nil {
		if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Warn().Err(err).Msg("background task failed")
		}
	}
	a.flushGeometry(false)
	a.channel.Close()
	if err := a.provider.Close(); err != nil {
		a.log.Debug().Err(err).Msg("close notification provider")
	}
	a.log.Info().Msg("shutdown complete")
}
