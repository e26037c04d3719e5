package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"bonsai-cli/internal/api"
	"bonsai-cli/internal/format"
	"bonsai-cli/internal/session"
	"bonsai-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Server     string
	Dir        string
	Format     string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "bonsai",
		Short:        "Terminal client for the Evolution of Todo service",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  bonsai

  # Scriptable commands
  bonsai login --email you@example.com
  bonsai tasks list
  bonsai tasks add "Water the garden"

  # Talk to the assistant (it can mutate tasks for you)
  bonsai chat "add a task to buy soil"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("BONSAI_SERVER", ""), "API base URL including prefix (default from config, else "+session.DefaultServerURL+")")
	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("BONSAI_DIR", ""), "Config dir (session, config, transcript; default ~/.bonsai)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("BONSAI_FORMAT", "json"), "Output format (json|plain)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newChatCmd(app))
	cmd.AddCommand(newAdminCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive TUI (same as running bonsai with no arguments)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(app)
		},
	}
}

func runTUI(app *App) error {
	st := app.store()
	cfg, err := st.LoadConfig()
	if err != nil {
		return err
	}
	return tui.Run(tui.Options{
		Dir:       st.Dir,
		ServerURL: session.ResolveServerURL(app.Server, cfg),
		Config:    cfg,
	})
}

func (app *App) store() session.Store {
	dir := strings.TrimSpace(app.Dir)
	if dir == "" {
		dir = session.DefaultDir()
	}
	return session.Store{Dir: dir}
}

// anonClient builds a gateway with no credential (login/register).
func anonClient(app *App) (*api.Client, session.Store, error) {
	st := app.store()
	cfg, err := st.LoadConfig()
	if err != nil {
		return nil, st, err
	}
	return api.New(session.ResolveServerURL(app.Server, cfg), ""), st, nil
}

// authedClient loads the stored session and builds a gateway carrying its
// credential. Missing or corrupt sessions fail here, before any protected
// call is attempted.
func authedClient(app *App) (*api.Client, session.Session, session.Store, error) {
	st := app.store()
	cfg, err := st.LoadConfig()
	if err != nil {
		return nil, session.Session{}, st, err
	}
	sess, err := st.Load()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, session.Session{}, st, errors.New("not logged in (run `bonsai login` first)")
		}
		return nil, session.Session{}, st, err
	}
	return api.New(session.ResolveServerURL(app.Server, cfg), sess.Token), sess, st, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
