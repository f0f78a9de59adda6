package desktop

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
)

var errBlockedScheme = errors.New("scheme not allowed for external open")

// Navigator hands URLs that leave the hosted application to the system browser.
type Navigator struct {
	log  zerolog.Logger
	open func(string) error
}

// NewNavigator returns a navigator using open (browser.OpenURL in production).
func NewNavigator(log zerolog.Logger, open func(string) error) *Navigator {
	return &Navigator{log: log, open: open}
}

// Open validates raw and passes it on. Only http, https and mailto leave the shell.
func (n *Navigator) Open(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: %q has no host", errBlockedScheme, raw)
		}
	case "mailto":
	default:
		return fmt.Errorf("%w: %q", errBlockedScheme, u.Scheme)
	}
	n.log.Debug().Str("url", u.String()).Msg("opening in system browser")
	if err := n.open(u.String()); err != nil {
		return fmt.Errorf("open %s: %w", u.Redacted(), err)
	}
	return nil
}
