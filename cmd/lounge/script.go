package main

import (
	"fmt"

	"github.com/pulinafi/lounge-desktop/internal/bridge"
	"github.com/pulinafi/lounge-desktop/internal/shim"
	"github.com/spf13/cobra"
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Print the script injected into the page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		js, err := shim.Script(shim.ScriptOptions{
			Origin:       cfg.Origin(),
			Event:        bridge.EventName,
			Tag:          cfg.Notifications.Tag,
			DefaultTitle: cfg.Notifications.DefaultTitle,
			ZoomStep:     cfg.Window.ZoomStep,
		})
		if err != nil {
			return fmt.Errorf("render script: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), js)
		return nil
	},
}
