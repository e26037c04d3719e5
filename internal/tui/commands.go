package tui

import (
	"context"

	"bonsai-cli/internal/api"
	"bonsai-cli/internal/chat"
	"bonsai-cli/internal/model"
	"bonsai-cli/internal/session"
	"bonsai-cli/internal/tasklist"

	tea "github.com/charmbracelet/bubbletea"
)

// All network work happens inside tea.Cmds; the Update loop is the single
// event thread and only ever consumes completed results.

type sessionLoadedMsg struct {
	sess session.Session
	err  error
}

type authDoneMsg struct {
	token string
	user  model.User
	err   error
}

type registerDoneMsg struct {
	message string
	err     error
}

type tasksRefreshedMsg struct {
	tasks []model.Task
	err   error
}

// mutationDoneMsg reports a create/toggle/delete completion. The controller
// has already refreshed internally on success; the snapshot rides along.
type mutationDoneMsg struct {
	tasks []model.Task
	err   error
}

type chatReplyMsg struct {
	reply   string
	mutated bool
	err     error
}

type adminUsersMsg struct {
	users  []model.AdminUser
	denied bool
	err    error
}

func loadSessionCmd(st session.Store) tea.Cmd {
	return func() tea.Msg {
		sess, err := st.Load()
		return sessionLoadedMsg{sess: sess, err: err}
	}
}

func loginCmd(c *api.Client, st session.Store, email, password string) tea.Cmd {
	return func() tea.Msg {
		token, user, err := c.Login(context.Background(), api.Credentials{Email: email, Password: password})
		if err != nil {
			return authDoneMsg{err: err}
		}
		// Credential and identity persist together or not at all.
		if err := st.Save(token, user); err != nil {
			return authDoneMsg{err: err}
		}
		return authDoneMsg{token: token, user: user}
	}
}

func registerCmd(c *api.Client, in api.RegisterInput) tea.Cmd {
	return func() tea.Msg {
		msg, err := c.Register(context.Background(), in)
		return registerDoneMsg{message: msg, err: err}
	}
}

func refreshTasksCmd(ctl *tasklist.Controller) tea.Cmd {
	return func() tea.Msg {
		err := ctl.Refresh(context.Background())
		return tasksRefreshedMsg{tasks: ctl.Tasks(), err: err}
	}
}

func addTaskCmd(ctl *tasklist.Controller, title string) tea.Cmd {
	return func() tea.Msg {
		err := ctl.Add(context.Background(), title)
		return mutationDoneMsg{tasks: ctl.Tasks(), err: err}
	}
}

func toggleTaskCmd(ctl *tasklist.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		err := ctl.Toggle(context.Background(), id)
		return mutationDoneMsg{tasks: ctl.Tasks(), err: err}
	}
}

func removeTaskCmd(ctl *tasklist.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		err := ctl.Remove(context.Background(), id)
		return mutationDoneMsg{tasks: ctl.Tasks(), err: err}
	}
}

func sendChatCmd(bridge *chat.Bridge, utterance string) tea.Cmd {
	return func() tea.Msg {
		reply, mutated, err := bridge.Send(context.Background(), utterance)
		return chatReplyMsg{reply: reply, mutated: mutated, err: err}
	}
}

func fetchAdminUsersCmd(c *api.Client) tea.Cmd {
	return func() tea.Msg {
		users, err := c.AdminUsers(context.Background())
		if err != nil {
			return adminUsersMsg{denied: api.IsAuthError(err), err: err}
		}
		return adminUsersMsg{users: users}
	}
}
