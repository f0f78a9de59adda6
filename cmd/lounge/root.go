package main

import (
	"fmt"

	"github.com/pulinafi/lounge-desktop/internal/config"
	"github.com/pulinafi/lounge-desktop/internal/logx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "lounge",
	Short:         "Tools for The Lounge desktop shell",
	Long:          "Inspect and exercise the notification bridge and window state of The Lounge desktop shell without opening a window.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default: $LOUNGE_CONFIG or ~/.config/lounge/config.toml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (trace, debug, info, warn, error)")

	rootCmd.AddCommand(notifyCmd, selftestCmd, scriptCmd, geometryCmd, versionCmd)
}

// loadConfig loads the config named by --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds a console logger at the configured level, or --log-level.
func newLogger(cmd *cobra.Command, cfg *config.Config) *logx.Logger {
	level := cfg.Log.Level
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		level = v
	}
	logger, err := logx.New(logx.Config{Level: level})
	if err != nil {
		// Only a file sink can fail and none is configured here.
		panic(err)
	}
	return logger
}
