// Package logx configures the shell's structured logging.
//
// Console output stays human readable (short timestamps, component field), the
// optional file sink is JSON. Wails and the standard library logger are routed
// through the same zerolog pipeline so a single level setting governs everything.
package logx
