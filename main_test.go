package main

import (
	"net/http"
	"testing"

	"github.com/pulinafi/lounge-desktop/internal/config"
	"github.com/pulinafi/lounge-desktop/internal/desktop"
	"github.com/pulinafi/lounge-desktop/internal/geometry"
	"github.com/pulinafi/lounge-desktop/internal/logx"
	"github.com/pulinafi/lounge-desktop/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type silentProvider struct{}

func (silentProvider) Supported() bool                        { return true }
func (silentProvider) Show(notify.Notification, func()) error { return nil }
func (silentProvider) Close() error                           { return nil }

func TestAppOptionsAllowHostedOrigin(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://irc.pulina.fi", "https://irc.pulina.fi"},
		{"https://IRC.Example.org:443/lounge/", "https://irc.example.org"},
		{"http://10.0.0.2:9000", "http://10.0.0.2:9000"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.DataDir = t.TempDir()
			cfg.App.URL = tt.url
			require.NoError(t, cfg.Validate())

			logger, err := logx.New(logx.Config{Level: "error", NoColor: true})
			require.NoError(t, err)
			app, err := desktop.NewApp(desktop.Options{Config: cfg, Logger: logger, Provider: silentProvider{}})
			require.NoError(t, err)

			opts := newAppOptions(cfg, app, http.NotFoundHandler(), desktop.NewTrayManager(app), logger)

			assert.Equal(t, tt.want, opts.BindingsAllowedOrigins)
			assert.Equal(t, cfg.App.Title, opts.Title)
			assert.Equal(t, geometry.DefaultWidth, opts.Width)
			assert.Equal(t, geometry.DefaultHeight, opts.Height)
			assert.True(t, opts.StartHidden)
			require.NotNil(t, opts.AssetServer)
			assert.NotNil(t, opts.AssetServer.Handler)
			require.NotNil(t, opts.SingleInstanceLock)
			assert.NotNil(t, opts.SingleInstanceLock.OnSecondInstanceLaunch)
		})
	}
}
