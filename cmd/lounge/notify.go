package main

import (
	"github.com/pterm/pterm"
	"github.com/pulinafi/lounge-desktop/internal/bridge"
	"github.com/pulinafi/lounge-desktop/internal/notify"
	"github.com/pulinafi/lounge-desktop/internal/version"
	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify TITLE [BODY]",
	Short: "Send one message through the bridge and show it",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runNotify,
}

func init() {
	notifyCmd.Flags().String("icon", "", "Icon file (default: configured or bundled icon)")
}

func runNotify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)
	defer logger.Close()

	icon, _ := cmd.Flags().GetString("icon")
	if icon == "" {
		icon = cfg.IconPath()
	}

	provider := notify.NewNativeProvider(version.AppName, logger.Component("notify"))
	defer provider.Close()
	if !provider.Supported() {
		pterm.Warning.Println("No notification service found; the message will only be logged.")
	}

	title, body := args[0], ""
	if len(args) > 1 {
		body = args[1]
	}

	// No window: clicks are logged and otherwise ignored.
	d := notify.NewDispatcher(provider, nil, logger.Component("notify"), notify.WithIcon(icon))
	ch := bridge.NewChannel(d, logger.Component("bridge"))
	ch.Send(title, body)
	ch.Close()

	pterm.Success.Printf("Sent %q\n", title)
	return nil
}
