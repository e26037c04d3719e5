package cli

import (
	"errors"
	"strconv"

	"bonsai-cli/internal/api"
	"bonsai-cli/internal/model"

	"github.com/spf13/cobra"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin commands (require the admin role)",
	}
	cmd.AddCommand(newAdminUsersCmd(app))
	return cmd
}

type rosterTable []model.AdminUser

func (r rosterTable) TabHeader() []string {
	return []string{"ID", "EMAIL", "NAME", "ROLE", "TASKS", "JOINED"}
}

func (r rosterTable) TabRows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, u := range r {
		rows = append(rows, []string{
			u.ID, u.Email, u.Name, string(u.Role),
			strconv.Itoa(u.TaskCount),
			u.JoinedAt.Format("2006-01-02"),
		})
	}
	return rows
}

func newAdminUsersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "Show the user roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, sess, _, err := authedClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// Local role check avoids a doomed round trip; the server's 403
			// remains the real boundary.
			if !sess.User.IsAdmin() {
				return writeErr(cmd, errors.New("access denied: admin role required"))
			}
			users, err := c.AdminUsers(cmdContext(cmd))
			if err != nil {
				if api.IsAuthError(err) {
					return writeErr(cmd, errors.New("access denied: "+err.Error()))
				}
				return writeErr(cmd, err)
			}
			if app.Format == "plain" {
				return writeOut(cmd, app, rosterTable(users))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"users": users},
				"meta": map[string]any{"count": len(users)},
			})
		},
	}
}
