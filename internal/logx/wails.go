package logx

import "github.com/rs/zerolog"

// Wails adapts a zerolog.Logger to the wails/v2 logger.Logger interface.
type Wails struct {
	L zerolog.Logger
}

func (w Wails) Print(message string)   { w.L.Log().Msg(message) }
func (w Wails) Trace(message string)   { w.L.Trace().Msg(message) }
func (w Wails) Debug(message string)   { w.L.Debug().Msg(message) }
func (w Wails) Info(message string)    { w.L.Info().Msg(message) }
func (w Wails) Warning(message string) { w.L.Warn().Msg(message) }
func (w Wails) Error(message string)   { w.L.Error().Msg(message) }

// Fatal logs at error level. Wails decides itself whether to exit.
func (w Wails) Fatal(message string) { w.L.Error().Bool("fatal", true).Msg(message) }
