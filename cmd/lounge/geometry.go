package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/pulinafi/lounge-desktop/internal/geometry"
	"github.com/spf13/cobra"
)

var geometryCmd = &cobra.Command{
	Use:   "geometry",
	Short: "Show or reset the remembered window geometry",
}

var geometryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the geometry the window will open with",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store := geometry.NewStore(cfg.GeometryPath())
		g := store.Load()

		rows := pterm.TableData{{"Property", "Value"}}
		rows = append(rows, []string{"File", store.Path()})
		rows = append(rows, []string{"Width", strconv.Itoa(g.Width)})
		rows = append(rows, []string{"Height", strconv.Itoa(g.Height)})
		if g.HasPosition() {
			rows = append(rows, []string{"X", strconv.Itoa(*g.X)})
			rows = append(rows, []string{"Y", strconv.Itoa(*g.Y)})
		} else {
			rows = append(rows, []string{"Position", "centered"})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

var geometryResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the saved geometry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := geometry.NewStore(cfg.GeometryPath()).Reset(); err != nil {
			return fmt.Errorf("reset geometry: %w", err)
		}
		d := geometry.Default()
		pterm.Success.Printf("Window geometry reset; next start opens at %dx%d\n", d.Width, d.Height)
		return nil
	},
}

func init() {
	geometryCmd.AddCommand(geometryShowCmd, geometryResetCmd)
}
