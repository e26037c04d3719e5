package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Client configuration",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.store()
			cfg, err := st.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"config": cfg}})
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration key (server, speak-command, transcript)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.store()
			cfg, err := st.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			key := strings.TrimSpace(args[0])
			val := strings.TrimSpace(args[1])
			switch key {
			case "server":
				cfg.ServerURL = val
			case "speak-command":
				cfg.SpeakCommand = val
			case "transcript":
				cfg.TranscriptDisabled = val == "off" || val == "false"
			default:
				return writeErr(cmd, errors.New("unknown key: "+key))
			}
			if err := st.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"config": cfg}})
		},
	}
}
