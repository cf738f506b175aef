package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"screener/internal/config"
)

func (a *app) toggleHighlightCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-highlight",
		Short: "Turn highlighting of processed input rows on or off",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			store, err := a.loadStore()
			if err != nil {
				return err
			}
			enabled, err := store.ToggleHighlight()
			if err != nil {
				return err
			}
			state := "off"
			if enabled {
				state = "on"
			}
			fmt.Fprintf(a.stdout, "Row highlighting %s\n", state)
			return nil
		},
	}
}

func (a *app) setCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set SECTION KEY VALUE",
		Short: "Change one control panel setting",
		Example: "  screener set sheet_controls input_sheet_name Signups\n" +
			"  screener set inference_controls temperature 0.2",
		Args: exactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := a.loadStore()
			if err != nil {
				return err
			}
			if err := store.Update(args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Set %s.%s\n", args[0], args[1])
			return nil
		},
	}
}

func (a *app) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the control panel for errors",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			path := a.configPath()
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("control panel %s: %w", path, err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			cfg, err := config.Parse(data)
			if err != nil {
				return err
			}
			config.Normalize(&cfg)
			if err := config.Validate(&cfg); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "Config OK")
			return nil
		},
	}
}
