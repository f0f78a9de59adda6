package shim

import (
	"embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasttemplate"
)

// NavigateEvent is emitted by the injected script for links leaving the application.
const NavigateEvent = "lounge:navigate"

// BridgeName is the only property the script exposes on window.
const BridgeName = "loungeNotifications"

//go:embed js/*.js
var scripts embed.FS

// parts are concatenated in this order inside one function scope, so later
// parts can use post() and forward().
var parts = []string{"prelude", "bridge", "shim", "glue"}

// ScriptOptions are the values baked into the injected script.
type ScriptOptions struct {
	Origin       string // scheme://host of the hosted application
	Event        string // bridge event name
	Tag          string
	DefaultTitle string
	ZoomStep     float64
}

// Script renders the injectable script. Every value is JSON-encoded before it is
// substituted, so arbitrary configuration text cannot break out of its literal.
func Script(opts ScriptOptions) (string, error) {
	values := map[string]string{
		"origin":        opts.Origin,
		"event":         opts.Event,
		"tag":           opts.Tag,
		"defaultTitle":  opts.DefaultTitle,
		"bridgeName":    BridgeName,
		"navigateEvent": NavigateEvent,
	}
	subst := make(map[string]interface{}, len(values)+1)
	for k, v := range values {
		lit, err := sonic.MarshalString(v)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", k, err)
		}
		subst[k] = lit
	}
	subst["zoomStep"] = strconv.FormatFloat(opts.ZoomStep, 'f', -1, 64)

	var b strings.Builder
	b.WriteString("(function () {\n'use strict';\n")
	for _, name := range parts {
		src, err := scripts.ReadFile("js/" + name + ".js")
		if err != nil {
			return "", fmt.Errorf("read %s.js: %w", name, err)
		}
		t, err := fasttemplate.NewTemplate(string(src), "{{", "}}")
		if err != nil {
			return "", fmt.Errorf("parse %s.js: %w", name, err)
		}
		if _, err := t.Execute(&b, subst); err != nil {
			return "", fmt.Errorf("render %s.js: %w", name, err)
		}
		b.WriteString("\n")
	}
	b.WriteString("})();\n")
	return b.String(), nil
}
