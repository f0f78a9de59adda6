//go:build !windows

package desktop

import "context"

// BeforeClose saves the geometry and lets the window close.
func (a *App) BeforeClose(ctx context.Context) bool {
	a.log.Debug().Msg("window close requested")
	a.flushGeometry(true)
	return false
}
