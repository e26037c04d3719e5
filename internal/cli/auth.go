package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"bonsai-cli/internal/api"
	"bonsai-cli/internal/session"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session locally",
		Long: strings.TrimSpace(`
Exchanges email/password for a bearer credential and stores credential +
identity under the config dir. Subsequent commands attach the credential
automatically; logout (or a corrupt session) clears both together.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, st, err := anonClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(email) == "" {
				return writeErr(cmd, errors.New("missing --email"))
			}
			if password == "" {
				// Password on stdin keeps it out of shell history.
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil {
					return writeErr(cmd, err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			token, user, err := c.Login(cmdContext(cmd), api.Credentials{Email: email, Password: password})
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.Save(token, user); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"user": user},
				"_hints": []string{
					"bonsai tasks list",
					"bonsai chat \"what's pending?\"",
				},
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (omit to be prompted on stdin)")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var name string
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (then log in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := anonClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(email) == "" {
				return writeErr(cmd, errors.New("missing --email"))
			}
			if password == "" {
				return writeErr(cmd, errors.New("missing --password"))
			}
			msg, err := c.Register(cmdContext(cmd), api.RegisterInput{Name: name, Email: email, Password: password})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"message": msg},
				"_hints": []string{"bonsai login --email " + email},
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.store()
			if err := st.Clear(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"loggedOut": true},
			})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.store()
			sess, err := st.Load()
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					return writeErr(cmd, errors.New("not logged in"))
				}
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"user": sess.User},
			})
		},
	}
}
