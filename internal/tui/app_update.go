package tui

import (
	"context"
	"errors"
	"strings"

	"bonsai-cli/internal/api"
	"bonsai-cli/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case sessionLoadedMsg:
		if msg.err != nil {
			var corrupt *session.CorruptError
			if errors.As(msg.err, &corrupt) {
				m.authNotice = "Stored session was unreadable; please log in again."
			}
			m.view = viewLogin
			return m, textinput.Blink
		}
		cmd := m.startSession(msg.sess.Token, msg.sess.User)
		return m, cmd

	case authDoneMsg:
		m.authBusy = false
		if msg.err != nil {
			m.authErr = userMessage(msg.err)
			return m, nil
		}
		m.authErr = ""
		m.authNotice = ""
		cmd := m.startSession(msg.token, msg.user)
		return m, cmd

	case registerDoneMsg:
		m.authBusy = false
		if msg.err != nil {
			m.authErr = userMessage(msg.err)
			return m, nil
		}
		// Registration does not log in; hand the user back to the form.
		m.registerMode = false
		m.authErr = ""
		m.authNotice = msg.message + " — log in to continue."
		m.setLoginFocus(fieldEmail)
		return m, nil

	case tasksRefreshedMsg:
		m.busy = false
		if msg.err != nil {
			m.tasksErr = userMessage(msg.err)
			return m, nil
		}
		m.tasksErr = ""
		m.everLoaded = true
		m.tasksList.SetItems(taskItems(msg.tasks))
		return m, nil

	case mutationDoneMsg:
		m.busy = false
		if msg.err != nil {
			// Keep showing the tasks the user already had; only the error
			// line changes.
			m.tasksErr = userMessage(msg.err)
			return m, nil
		}
		m.tasksErr = ""
		m.everLoaded = true
		m.tasksList.SetItems(taskItems(msg.tasks))
		return m, nil

	case chatReplyMsg:
		m.sending = false
		m.persistChatTail()
		if msg.err != nil {
			// The bridge already appended the fallback reply; a chat failure
			// stays a chat failure and never touches the task list.
			m.chatErr = userMessage(msg.err)
		} else {
			m.chatErr = ""
		}
		m.renderChat()
		m.chatView.GotoBottom()
		if msg.mutated {
			// Same refresh seam as direct actions.
			m.busy = true
			return m, refreshTasksCmd(m.ctl)
		}
		return m, nil

	case adminUsersMsg:
		m.adminBusy = false
		if msg.denied {
			m.adminDenied = true
			m.adminErr = ""
			return m, nil
		}
		if msg.err != nil {
			m.adminErr = userMessage(msg.err)
			return m, nil
		}
		m.adminDenied = false
		m.adminErr = ""
		m.adminTable.SetRows(rosterRows(msg.users))
		return m, nil

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case viewLogin:
			return m.updateLogin(msg)
		case viewTasks:
			return m.updateTasks(msg)
		case viewChat:
			return m.updateChat(msg)
		case viewAdmin:
			return m.updateAdmin(msg)
		}
	}

	return m, nil
}

// persistChatTail mirrors the newest exchange (user message + reply, or
// fallback) into the local transcript. Best-effort.
func (m *appModel) persistChatTail() {
	if m.ts == nil || m.bridge == nil {
		return
	}
	hist := m.bridge.History()
	if len(hist) < 2 {
		return
	}
	for _, msg := range hist[len(hist)-2:] {
		_ = m.ts.Append(context.Background(), m.user.ID, msg)
	}
}

// userMessage keeps the taxonomy visible in what the user reads: access
// problems say so, everything else is the normalized gateway error.
func userMessage(err error) string {
	if api.IsAuthError(err) {
		return "access denied: " + err.Error()
	}
	return err.Error()
}

func (m *appModel) setLoginFocus(f loginField) {
	m.loginFocus = f
	for i, ti := range []*textinput.Model{&m.nameInput, &m.emailInput, &m.passInput} {
		if loginField(i) == f {
			ti.Focus()
		} else {
			ti.Blur()
		}
	}
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+t":
		m.registerMode = !m.registerMode
		m.authErr = ""
		if m.registerMode {
			m.setLoginFocus(fieldName)
		} else {
			m.setLoginFocus(fieldEmail)
		}
		return m, nil

	case "tab", "shift+tab", "up", "down":
		next := m.loginFocus
		forward := msg.String() == "tab" || msg.String() == "down"
		first := fieldEmail
		if m.registerMode {
			first = fieldName
		}
		if forward {
			if next == fieldPassword {
				next = first
			} else {
				next++
			}
		} else {
			if next == first {
				next = fieldPassword
			} else {
				next--
			}
		}
		m.setLoginFocus(next)
		return m, nil

	case "enter":
		if m.loginFocus != fieldPassword {
			m.setLoginFocus(m.loginFocus + 1)
			return m, nil
		}
		if m.authBusy {
			return m, nil
		}
		email := strings.TrimSpace(m.emailInput.Value())
		password := m.passInput.Value()
		if email == "" || password == "" {
			m.authErr = "email and password are required"
			return m, nil
		}
		m.authBusy = true
		m.authErr = ""
		anon := api.New(m.opts.ServerURL, "")
		if m.registerMode {
			return m, registerCmd(anon, api.RegisterInput{
				Name:     strings.TrimSpace(m.nameInput.Value()),
				Email:    email,
				Password: password,
			})
		}
		return m, loginCmd(anon, m.store, email, password)
	}

	var cmd tea.Cmd
	switch m.loginFocus {
	case fieldName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case fieldEmail:
		m.emailInput, cmd = m.emailInput.Update(msg)
	case fieldPassword:
		m.passInput, cmd = m.passInput.Update(msg)
	}
	return m, cmd
}

func (m appModel) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Add-input capture comes first so typed letters never trigger hotkeys.
	if m.adding {
		switch msg.String() {
		case "esc":
			m.adding = false
			m.addInput.Reset()
			return m, nil
		case "enter":
			title := strings.TrimSpace(m.addInput.Value())
			if title == "" {
				// Blank titles never leave the client.
				m.adding = false
				m.addInput.Reset()
				return m, nil
			}
			m.adding = false
			m.addInput.Reset()
			m.busy = true
			return m, addTaskCmd(m.ctl, title)
		}
		var cmd tea.Cmd
		m.addInput, cmd = m.addInput.Update(msg)
		return m, cmd
	}

	if m.confirmRmID != "" {
		switch msg.String() {
		case "y", "enter":
			id := m.confirmRmID
			m.confirmRmID = ""
			m.busy = true
			return m, removeTaskCmd(m.ctl, id)
		case "n", "esc":
			m.confirmRmID = ""
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "a":
		m.adding = true
		m.addInput.Focus()
		return m, textinput.Blink
	case "r":
		m.busy = true
		return m, refreshTasksCmd(m.ctl)
	case "enter", " ":
		if it, ok := m.tasksList.SelectedItem().(taskItem); ok && !m.busy {
			m.busy = true
			return m, toggleTaskCmd(m.ctl, it.task.ID)
		}
		return m, nil
	case "d":
		if it, ok := m.tasksList.SelectedItem().(taskItem); ok {
			m.confirmRmID = it.task.ID
		}
		return m, nil
	case "c":
		m.view = viewChat
		m.chatInput.Focus()
		m.renderChat()
		m.chatView.GotoBottom()
		return m, textinput.Blink
	case "A":
		if !m.user.IsAdmin() {
			// Local gating only avoids a flash of protected UI; the server
			// still rejects non-admin calls.
			m.tasksErr = "access denied: admin role required"
			return m, nil
		}
		m.view = viewAdmin
		m.adminBusy = true
		return m, fetchAdminUsersCmd(m.client)
	case "L":
		// Session teardown is synchronous, then back to login.
		_ = m.store.Clear()
		fresh := newAppModel(m.opts)
		fresh.width, fresh.height = m.width, m.height
		fresh.resize()
		return fresh, textinput.Blink
	}

	var cmd tea.Cmd
	m.tasksList, cmd = m.tasksList.Update(msg)
	return m, cmd
}

func (m appModel) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewTasks
		m.chatInput.Blur()
		return m, nil
	case "enter":
		if m.sending {
			// One exchange at a time; input stays disabled while loading.
			return m, nil
		}
		utterance := strings.TrimSpace(m.chatInput.Value())
		if utterance == "" {
			return m, nil
		}
		m.chatInput.Reset()
		m.sending = true
		m.chatErr = ""
		// The bridge appends the user message synchronously inside Send; we
		// re-render on reply. Show the optimistic transcript immediately by
		// rendering a pending row.
		cmd := sendChatCmd(m.bridge, utterance)
		return m, tea.Batch(cmd, m.spin.Tick)
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m appModel) updateAdmin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.view = viewTasks
		return m, nil
	case "r":
		if !m.adminDenied {
			m.adminBusy = true
			return m, fetchAdminUsersCmd(m.client)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.adminTable, cmd = m.adminTable.Update(msg)
	return m, cmd
}
