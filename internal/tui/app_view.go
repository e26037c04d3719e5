package tui

import (
	"strings"

	"bonsai-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func (m appModel) View() string {
	switch m.view {
	case viewLogin:
		return m.viewLoginScreen()
	case viewTasks:
		return m.viewTasksScreen()
	case viewChat:
		return m.viewChatScreen()
	case viewAdmin:
		return m.viewAdminScreen()
	}
	return ""
}

// header renders the one-line chrome shared by the signed-in screens.
func (m appModel) header(section string) string {
	left := titleStyle.Render("bonsai") + mutedStyle.Render(" · "+section)
	right := ""
	if m.user.ID != "" {
		right = mutedStyle.Render(m.user.Email)
		if m.user.IsAdmin() {
			right += " " + okStyle.Render("(admin)")
		}
	}
	line := left
	if right != "" {
		pad := m.width - xansi.StringWidth(left) - xansi.StringWidth(right) - 2
		if pad > 0 {
			line = left + strings.Repeat(" ", pad) + right
		} else {
			line = left + "  " + right
		}
	}
	return clampLine(line, m.width)
}

// clampLine keeps chrome lines within the terminal width; styling is
// terminated so colors never bleed into the next line.
func clampLine(line string, width int) string {
	if width > 0 && xansi.StringWidth(line) > width {
		return xansi.Cut(line, 0, width) + "\x1b[0m"
	}
	return line
}

func (m appModel) viewLoginScreen() string {
	var b strings.Builder

	mode := "Log in"
	if m.registerMode {
		mode = "Register"
	}
	b.WriteString(titleStyle.Render("bonsai — "+mode) + "\n\n")

	if m.registerMode {
		b.WriteString("  Name     " + m.nameInput.View() + "\n")
	}
	b.WriteString("  Email    " + m.emailInput.View() + "\n")
	b.WriteString("  Password " + m.passInput.View() + "\n\n")

	switch {
	case m.authBusy:
		b.WriteString(mutedStyle.Render("  ...") + "\n")
	case m.authErr != "":
		b.WriteString(errStyle.Render("  "+m.authErr) + "\n")
	case m.authNotice != "":
		b.WriteString(okStyle.Render("  "+m.authNotice) + "\n")
	}

	b.WriteString("\n" + mutedStyle.Render("  enter submit · tab next field · ctrl+t switch login/register · ctrl+c quit"))
	return b.String()
}

func (m appModel) viewTasksScreen() string {
	var b strings.Builder
	b.WriteString(m.header("tasks") + "\n")

	if m.confirmRmID != "" {
		title := m.confirmRmID
		if t, ok := m.ctl.Find(m.confirmRmID); ok {
			title = t.Title
		}
		b.WriteString("\n" + modalStyle.Render("Delete \""+title+"\"?  y/n") + "\n")
	}

	if m.adding {
		b.WriteString("\n  New task: " + m.addInput.View() + "\n")
	}

	items := m.tasksList.Items()
	switch {
	case m.busy && !m.everLoaded:
		b.WriteString("\n" + mutedStyle.Render("  Loading tasks...") + "\n")
	case !m.everLoaded && m.tasksErr != "":
		// First load failed: no list to show, and that is different from
		// an empty list.
		b.WriteString("\n" + errStyle.Render("  Could not load tasks: "+m.tasksErr) + "\n")
	case m.everLoaded && len(items) == 0:
		b.WriteString("\n" + mutedStyle.Render("  No tasks found. Time to seed!") + "\n")
	default:
		b.WriteString(m.tasksList.View())
	}

	status := ""
	if m.everLoaded && m.tasksErr != "" {
		status = errStyle.Render(m.tasksErr)
	} else if m.busy {
		status = mutedStyle.Render("syncing...")
	}
	if status != "" {
		b.WriteString("\n" + clampLine(" "+status, m.width))
	}

	help := "a add · enter toggle · d delete · r refresh · c chat"
	if m.user.IsAdmin() {
		help += " · A admin"
	}
	help += " · L logout · q quit"
	b.WriteString("\n" + mutedStyle.Render(" "+help))
	return b.String()
}

func (m *appModel) renderChat() {
	width := m.chatView.Width
	if width <= 0 {
		width = 76
	}
	var b strings.Builder
	hist := m.bridge.History()
	if len(hist) == 0 {
		b.WriteString(mutedStyle.Render("Ask me to add tasks or list what's pending!"))
	}
	for i, msg := range hist {
		if i > 0 {
			b.WriteString("\n")
		}
		if msg.Role == model.ChatRoleUser {
			b.WriteString(chatUserStyle.Render("You") + "\n")
			b.WriteString(lipgloss.NewStyle().Width(width).Render(msg.Content) + "\n")
			continue
		}
		b.WriteString(chatAssistantStyle.Render("Bonsai") + "\n")
		b.WriteString(renderMarkdown(msg.Content, width) + "\n")
	}
	m.chatView.SetContent(b.String())
}

func (m appModel) viewChatScreen() string {
	var b strings.Builder
	b.WriteString(m.header("assistant") + "\n\n")
	b.WriteString(m.chatView.View() + "\n")

	switch {
	case m.sending:
		b.WriteString(m.spin.View() + " " + mutedStyle.Render("thinking...") + "\n")
	case m.chatErr != "":
		b.WriteString(errStyle.Render(" "+m.chatErr) + "\n")
	default:
		b.WriteString("\n")
	}

	b.WriteString(" > " + m.chatInput.View() + "\n")
	b.WriteString(mutedStyle.Render(" enter send · esc back · ctrl+c quit"))
	return b.String()
}

func (m appModel) viewAdminScreen() string {
	var b strings.Builder
	b.WriteString(m.header("admin · users") + "\n\n")

	switch {
	case m.adminDenied:
		// Distinct from an empty roster: non-admins get told, not shown
		// a zero-row table.
		b.WriteString(errStyle.Render("  Access denied. This view requires the admin role.") + "\n")
	case m.adminBusy:
		b.WriteString(mutedStyle.Render("  Loading roster...") + "\n")
	case m.adminErr != "":
		b.WriteString(errStyle.Render("  "+m.adminErr) + "\n")
	default:
		b.WriteString(m.adminTable.View() + "\n")
	}

	b.WriteString("\n" + mutedStyle.Render(" r reload · esc back"))
	return b.String()
}
