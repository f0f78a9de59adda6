//go:build !linux

package notify

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

// NativeProvider uses beeep (toast on Windows, osascript on macOS). Neither
// backend reports clicks, so onClick is never called.
type NativeProvider struct {
	log       zerolog.Logger
	clickOnce sync.Once
}

// NewNativeProvider returns the platform provider.
func NewNativeProvider(appName string, log zerolog.Logger) *NativeProvider {
	beeep.AppName = appName
	return &NativeProvider{log: log}
}

func (p *NativeProvider) Supported() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}

func (p *NativeProvider) Show(n Notification, onClick func()) error {
	if !p.Supported() {
		return ErrUnsupported
	}
	if onClick != nil {
		p.clickOnce.Do(func() {
			p.log.Debug().Str("os", runtime.GOOS).Msg("click-to-focus is not available on this platform")
		})
	}
	if err := beeep.Notify(n.Title, n.Body, n.Icon); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

func (p *NativeProvider) Close() error { return nil }
