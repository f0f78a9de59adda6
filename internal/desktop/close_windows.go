//go:build windows

package desktop

import "context"

// BeforeClose saves the geometry. With close_to_tray the window is hidden and
// the tray keeps the application running.
func (a *App) BeforeClose(ctx context.Context) bool {
	a.flushGeometry(true)
	a.mu.Lock()
	toTray, win, closed := a.cfg.Window.CloseToTray, a.win, a.closed || a.quitting
	a.mu.Unlock()
	if !toTray || closed || win == nil {
		a.log.Debug().Msg("window close requested")
		return false
	}
	a.log.Debug().Msg("window close requested - hiding to tray")
	win.Hide()
	return true
}
