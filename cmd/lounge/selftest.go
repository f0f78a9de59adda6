package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pterm/pterm"
	"github.com/pulinafi/lounge-desktop/internal/bridge"
	"github.com/pulinafi/lounge-desktop/internal/config"
	"github.com/pulinafi/lounge-desktop/internal/notify"
	"github.com/pulinafi/lounge-desktop/internal/shim"
	"github.com/pulinafi/lounge-desktop/internal/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Run the notification scenarios end to end without a window",
	Long: `Drives the in-process model of the page shim through the bridge and the
dispatcher. Without --dry-run the supported scenarios show real notifications.`,
	Args: cobra.NoArgs,
	RunE: runSelftest,
}

func init() {
	selftestCmd.Flags().Bool("dry-run", false, "Record notifications instead of showing them")
}

func runSelftest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)
	defer logger.Close()

	var provider notify.Provider = dryRunProvider{log: logger.Component("notify")}
	if dry, _ := cmd.Flags().GetBool("dry-run"); !dry {
		native := notify.NewNativeProvider(version.AppName, logger.Component("notify"))
		defer native.Close()
		provider = native
	}

	results := selftest(cmd.Context(), cfg, provider)

	rows := pterm.TableData{{"Scenario", "Result", "Detail"}}
	failed := 0
	for _, r := range results {
		status := pterm.Green("ok")
		detail := r.detail
		if r.err != nil {
			failed++
			status = pterm.Red("FAIL")
			detail = r.err.Error()
		}
		rows = append(rows, []string{r.name, status, detail})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
	}
	pterm.Success.Println("All scenarios passed")
	return nil
}

type scenarioResult struct {
	name   string
	detail string
	err    error
}

// pipeline is one content context wired to a dispatcher, the way the window
// wires it, with every shown notification recorded.
type pipeline struct {
	ctx      *shim.Context
	channel  *bridge.Channel
	recorder *recordingProvider
	logs     *bytes.Buffer
}

func newPipeline(cfg *config.Config, p notify.Provider) *pipeline {
	logs := &bytes.Buffer{}
	log := zerolog.New(logs)
	rec := &recordingProvider{inner: p}
	d := notify.NewDispatcher(rec, nil, log, notify.WithIcon(cfg.IconPath()))
	ch := bridge.NewChannel(d, log)
	return &pipeline{
		ctx:      shim.NewContext(ch, shim.Options{Tag: cfg.Notifications.Tag, DefaultTitle: cfg.Notifications.DefaultTitle}),
		channel:  ch,
		recorder: rec,
		logs:     logs,
	}
}

// finish drains the channel and returns what was shown.
func (p *pipeline) finish() []notify.Notification {
	p.channel.Close()
	return p.recorder.snapshot()
}

func selftest(ctx context.Context, cfg *config.Config, p notify.Provider) []scenarioResult {
	if ctx == nil {
		ctx = context.Background()
	}
	return []scenarioResult{
		scenarioConstructor(cfg, p),
		scenarioWorker(ctx, cfg, p),
		scenarioUnsupported(cfg),
		scenarioFallback(ctx, cfg, p),
	}
}

func expectShown(shown []notify.Notification, title, body string) error {
	if len(shown) != 1 {
		return fmt.Errorf("expected 1 notification, got %d", len(shown))
	}
	if shown[0].Title != title || shown[0].Body != body {
		return fmt.Errorf("expected (%q, %q), got (%q, %q)", title, body, shown[0].Title, shown[0].Body)
	}
	return nil
}

func scenarioConstructor(cfg *config.Config, p notify.Provider) scenarioResult {
	r := scenarioResult{name: "A: constructor"}
	pl := newPipeline(cfg, p)
	pl.ctx.NewNotification("Alice", shim.NotificationOptions{Body: "hi"})
	if r.err = expectShown(pl.finish(), "Alice", "hi"); r.err == nil {
		r.detail = `("Alice", "hi") shown`
	}
	return r
}

func scenarioWorker(ctx context.Context, cfg *config.Config, p notify.Provider) scenarioResult {
	r := scenarioResult{name: "B: worker message"}
	pl := newPipeline(cfg, p)
	worker := &memoryWorker{id: "sw-1"}
	container := pl.ctx.WrapContainer(&memoryContainer{worker: worker})

	reg, err := container.Ready(ctx)
	if err != nil || reg == nil || reg.Active == nil {
		pl.finish()
		r.err = errors.New("ready did not resolve to an active worker")
		return r
	}
	reg.Active.PostMessage(map[string]any{"type": cfg.Notifications.Tag, "title": "Bob", "body": "ping", "chanId": 1})
	other := map[string]any{"type": "sync", "id": 7}
	reg.Active.PostMessage(other)
	// Looking the registration up again must not wrap the worker twice.
	if again, err := container.GetRegistration(ctx, ""); err == nil && again != nil {
		again.Active.PostMessage(map[string]any{"type": "ping"})
	}

	shown := pl.finish()
	if r.err = expectShown(shown, "Bob", "ping"); r.err != nil {
		return r
	}
	got := worker.messages()
	if len(got) != 2 {
		r.err = fmt.Errorf("worker received %d messages, want 2 pass-through", len(got))
		return r
	}
	if n := pl.ctx.Wrapped(); n != 1 {
		r.err = fmt.Errorf("worker wrapped %d times", n)
		return r
	}
	r.detail = `("Bob", "ping") shown; other messages passed through`
	return r
}

func scenarioUnsupported(cfg *config.Config) scenarioResult {
	r := scenarioResult{name: "C: unsupported system"}
	pl := newPipeline(cfg, unsupportedProvider{})
	n := pl.ctx.NewNotification("Carol", shim.NotificationOptions{Body: "hello"})
	shown := pl.finish()
	switch {
	case n == nil:
		r.err = errors.New("constructor returned nothing")
	case len(shown) != 0:
		r.err = fmt.Errorf("%d notifications shown on an unsupported system", len(shown))
	case !strings.Contains(pl.logs.String(), "not supported"):
		r.err = errors.New("no diagnostic was logged")
	default:
		r.detail = "nothing shown; diagnostic logged"
	}
	return r
}

func scenarioFallback(ctx context.Context, cfg *config.Config, p notify.Provider) scenarioResult {
	r := scenarioResult{name: "ready failure"}
	pl := newPipeline(cfg, p)
	container := pl.ctx.WrapContainer(&memoryContainer{err: errors.New("no registration")})

	reg, err := container.Ready(ctx)
	if err != nil || reg == nil || reg.Active == nil {
		pl.finish()
		r.err = errors.New("ready failure was not replaced by a fallback registration")
		return r
	}
	reg.Active.PostMessage(map[string]any{"type": cfg.Notifications.Tag, "title": "Dave", "body": "fallback"})
	if r.err = expectShown(pl.finish(), "Dave", "fallback"); r.err == nil {
		r.detail = "fallback registration forwarded the envelope"
	}
	return r
}

// recordingProvider remembers what the inner provider displayed.
type recordingProvider struct {
	inner notify.Provider

	mu    sync.Mutex
	shown []notify.Notification
}

func (p *recordingProvider) Supported() bool { return p.inner.Supported() }

func (p *recordingProvider) Show(n notify.Notification, onClick func()) error {
	if err := p.inner.Show(n, onClick); err != nil {
		return err
	}
	p.mu.Lock()
	p.shown = append(p.shown, n)
	p.mu.Unlock()
	return nil
}

func (p *recordingProvider) Close() error { return nil }

func (p *recordingProvider) snapshot() []notify.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.Notification(nil), p.shown...)
}

type dryRunProvider struct {
	log zerolog.Logger
}

func (p dryRunProvider) Supported() bool { return true }

func (p dryRunProvider) Show(n notify.Notification, _ func()) error {
	p.log.Info().Str("title", n.Title).Str("body", n.Body).Msg("dry run: notification not shown")
	return nil
}

func (p dryRunProvider) Close() error { return nil }

type unsupportedProvider struct{}

func (unsupportedProvider) Supported() bool                        { return false }
func (unsupportedProvider) Show(notify.Notification, func()) error { return notify.ErrUnsupported }
func (unsupportedProvider) Close() error                           { return nil }

// memoryWorker and memoryContainer stand in for the page's service worker API.
type memoryWorker struct {
	id string

	mu  sync.Mutex
	got []any
}

func (w *memoryWorker) ID() string { return w.id }

func (w *memoryWorker) PostMessage(msg any) {
	w.mu.Lock()
	w.got = append(w.got, msg)
	w.mu.Unlock()
}

func (w *memoryWorker) messages() []any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]any(nil), w.got...)
}

type memoryContainer struct {
	worker *memoryWorker
	err    error
}

func (c *memoryContainer) registration() (*shim.Registration, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &shim.Registration{Scope: "/", Active: c.worker}, nil
}

func (c *memoryContainer) Ready(context.Context) (*shim.Registration, error) {
	return c.registration()
}

func (c *memoryContainer) GetRegistration(context.Context, string) (*shim.Registration, error) {
	return c.registration()
}

func (c *memoryContainer) GetRegistrations(context.Context) ([]*shim.Registration, error) {
	reg, err := c.registration()
	if err != nil {
		return nil, err
	}
	return []*shim.Registration{reg}, nil
}
