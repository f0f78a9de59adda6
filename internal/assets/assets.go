// Package assets holds the binary resources shared by the window, tray and notifications.
package assets

import _ "embed"

// Icon is the application icon used for the window and native notifications.
//
//go:embed thelounge.png
var Icon []byte

// TrayIcon is the Windows tray icon.
//
//go:embed icon.ico
var TrayIcon []byte
