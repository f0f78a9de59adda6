package desktop

import (
	"context"

	"github.com/pulinafi/lounge-desktop/internal/geometry"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Window is the part of the window runtime the shell drives.
type Window interface {
	Bounds() (geometry.Geometry, bool)
	SetPosition(x, y int)
	Show()
	Hide()
	Unminimise()
	ExecJS(js string)
	On(event string, fn func(data ...interface{})) (off func())
	Reload()
	Quit()
}

// wailsWindow implements Window on top of the Wails runtime.
type wailsWindow struct {
	ctx context.Context
}

func newWailsWindow(ctx context.Context) *wailsWindow {
	return &wailsWindow{ctx: ctx}
}

// Bounds reports nothing while minimised; the runtime returns off-screen
// coordinates for minimised windows on Windows.
func (w *wailsWindow) Bounds() (geometry.Geometry, bool) {
	if runtime.WindowIsMinimised(w.ctx) {
		return geometry.Geometry{}, false
	}
	width, height := runtime.WindowGetSize(w.ctx)
	x, y := runtime.WindowGetPosition(w.ctx)
	return geometry.At(width, height, x, y), true
}

func (w *wailsWindow) SetPosition(x, y int) { runtime.WindowSetPosition(w.ctx, x, y) }
func (w *wailsWindow) Show()                { runtime.WindowShow(w.ctx) }
func (w *wailsWindow) Hide()                { runtime.WindowHide(w.ctx) }
func (w *wailsWindow) Unminimise()          { runtime.WindowUnminimise(w.ctx) }
func (w *wailsWindow) ExecJS(js string)     { runtime.WindowExecJS(w.ctx, js) }
func (w *wailsWindow) Reload()              { runtime.WindowReload(w.ctx) }
func (w *wailsWindow) Quit()                { runtime.Quit(w.ctx) }

func (w *wailsWindow) On(event string, fn func(data ...interface{})) func() {
	return runtime.EventsOn(w.ctx, event, fn)
}
