package main

import (
	"context"
	"log"
	"net/http"
	"os"
	goruntime "runtime"

	"github.com/pulinafi/lounge-desktop/internal/assets"
	"github.com/pulinafi/lounge-desktop/internal/config"
	"github.com/pulinafi/lounge-desktop/internal/desktop"
	"github.com/pulinafi/lounge-desktop/internal/handler"
	"github.com/pulinafi/lounge-desktop/internal/logx"
	"github.com/pulinafi/lounge-desktop/internal/notify"
	"github.com/pulinafi/lounge-desktop/internal/version"
	"github.com/wailsapp/wails/v2"
	wailslogger "github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

const singleInstanceID = "fi.pulina.lounge-desktop"

func main() {
	configPath := config.Path()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logx.New(logx.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		log.Printf("Log file disabled: %v", err)
		logger, _ = logx.New(logx.Config{Level: cfg.Log.Level})
	}
	defer logger.Close()
	logger.RedirectStdLog()

	mainLog := logger.Component("main")
	mainLog.Info().Str("version", version.Full()).Str("config", configPath).Msg("starting")

	app, err := desktop.NewApp(desktop.Options{
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     logger,
		Provider:   notify.NewNativeProvider(version.AppName, logger.Component("notify")),
	})
	if err != nil {
		mainLog.Fatal().Err(err).Msg("failed to initialize desktop app")
	}

	launcher, err := handler.NewLauncherHandler(handler.LauncherOptions{
		URL:   cfg.App.URL,
		Title: cfg.App.Title,
		Icon:  assets.Icon,
	})
	if err != nil {
		mainLog.Fatal().Err(err).Msg("failed to build launcher page")
	}

	tray := desktop.NewTrayManager(app)

	err = wails.Run(newAppOptions(cfg, app, launcher, tray, logger))
	if err != nil {
		mainLog.Error().Err(err).Msg("window runtime failed")
		logger.Close()
		os.Exit(1)
	}
}

// newAppOptions describes the window. The hosted application's origin is
// allowed to use the IPC port; the runtime otherwise only accepts messages from
// the launcher page, and the bridge would be silently dropped.
func newAppOptions(cfg *config.Config, app *desktop.App, launcher http.Handler, tray *desktop.TrayManager, logger *logx.Logger) *options.App {
	// Only macOS gets a menu; without the Edit menu copy and paste stop working.
	var appMenu *menu.Menu
	if goruntime.GOOS == "darwin" {
		appMenu = menu.NewMenu()
		appMenu.Append(menu.AppMenu())
		appMenu.Append(menu.EditMenu())
	}

	initial := app.InitialGeometry()
	return &options.App{
		Title:       cfg.App.Title,
		Width:       initial.Width,
		Height:      initial.Height,
		MinWidth:    cfg.Window.MinWidth,
		MinHeight:   cfg.Window.MinHeight,
		StartHidden: true,
		AssetServer: &assetserver.Options{
			Handler: launcher,
		},
		BindingsAllowedOrigins: cfg.Origin(),
		BackgroundColour:       &options.RGBA{R: 21, G: 33, B: 46, A: 1},
		OnStartup: func(ctx context.Context) {
			app.Startup(ctx)
			go tray.Start()
		},
		OnDomReady:    app.DomReady,
		OnBeforeClose: app.BeforeClose,
		OnShutdown: func(ctx context.Context) {
			tray.Stop()
			app.Shutdown(ctx)
		},
		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId:               singleInstanceID,
			OnSecondInstanceLaunch: app.SecondInstance,
		},
		Menu:                     appMenu,
		Logger:                   logx.Wails{L: logger.Component("wails")},
		LogLevel:                 wailslogger.DEBUG,
		LogLevelProduction:       wailslogger.INFO,
		EnableDefaultContextMenu: cfg.Window.DevTools,
		Debug: options.Debug{
			OpenInspectorOnStartup: false,
		},
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
		},
		Linux: &linux.Options{
			Icon:        assets.Icon,
			ProgramName: "lounge",
		},
		Mac: &mac.Options{
			Appearance: mac.NSAppearanceNameDarkAqua,
			About: &mac.AboutInfo{
				Title:   version.AppName,
				Message: "Desktop shell for The Lounge\n" + version.Full(),
				Icon:    assets.Icon,
			},
		},
	}
}
