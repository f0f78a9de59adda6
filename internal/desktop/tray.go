//go:build windows

package desktop

import (
	"github.com/getlantern/systray"
	"github.com/pulinafi/lounge-desktop/internal/assets"
	"github.com/pulinafi/lounge-desktop/internal/version"
	"github.com/rs/zerolog"
)

// TrayManager runs the Windows notification-area icon.
type TrayManager struct {
	app        *App
	log        zerolog.Logger
	menuShow   *systray.MenuItem
	menuReload *systray.MenuItem
	menuMute   *systray.MenuItem
	menuQuit   *systray.MenuItem
}

// NewTrayManager creates the tray for app.
func NewTrayManager(app *App) *TrayManager {
	return &TrayManager{app: app, log: app.logger.Component("tray")}
}

// Start blocks running the tray loop; call it from its own goroutine.
func (t *TrayManager) Start() {
	systray.Run(t.onReady, t.onExit)
}

// Stop ends the tray loop.
func (t *TrayManager) Stop() {
	systray.Quit()
}

func (t *TrayManager) onReady() {
	t.log.Debug().Msg("initializing system tray")

	systray.SetIcon(assets.TrayIcon)
	systray.SetTitle(version.AppName)
	systray.SetTooltip(version.AppName)

	t.menuShow = systray.AddMenuItem("Show window", "Bring the window to the front")
	t.menuReload = systray.AddMenuItem("Reload", "Reload The Lounge")
	systray.AddSeparator()
	t.menuMute = systray.AddMenuItemCheckbox("Mute notifications", "Stop showing desktop notifications", !t.app.Dispatcher().Enabled())
	systray.AddSeparator()
	t.menuQuit = systray.AddMenuItem("Quit", "Quit the application")

	go t.handleMenuEvents()
}

func (t *TrayManager) onExit() {
	t.log.Debug().Msg("system tray exited")
}

func (t *TrayManager) handleMenuEvents() {
	for {
		select {
		case <-t.menuShow.ClickedCh:
			t.app.Focus()

		case <-t.menuReload.ClickedCh:
			t.log.Info().Msg("reload requested from tray")
			t.app.Reload()

		case <-t.menuMute.ClickedCh:
			t.toggleMute()

		case <-t.menuQuit.ClickedCh:
			t.log.Info().Msg("quit requested from tray")
			t.app.Quit()
			systray.Quit()
			return
		}
	}
}

func (t *TrayManager) toggleMute() {
	d := t.app.Dispatcher()
	enabled := !d.Enabled()
	d.SetEnabled(enabled)
	if enabled {
		t.menuMute.Uncheck()
	} else {
		t.menuMute.Check()
	}
	t.log.Info().Bool("notifications", enabled).Msg("notifications toggled from tray")
}
