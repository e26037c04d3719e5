package tui

import (
	"strings"

	"bonsai-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
)

type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }

func (i taskItem) Title() string {
	box := glyphPending
	if i.task.IsCompleted {
		box = glyphDone
	}
	return box + " " + i.task.Title
}

func (i taskItem) Description() string {
	parts := []string{}
	if label := model.PriorityLabel(i.task.Priority); label != "" {
		parts = append(parts, "priority: "+label)
	}
	if tags := strings.TrimSpace(i.task.Tags); tags != "" {
		parts = append(parts, tags)
	}
	if len(parts) == 0 {
		return i.task.ID
	}
	return strings.Join(parts, "  ·  ")
}

func taskItems(tasks []model.Task) []list.Item {
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{task: t})
	}
	return items
}

func newTaskList() list.Model {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(colorAccent).BorderLeftForeground(colorAccent)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(colorMuted).BorderLeftForeground(colorAccent)

	l := list.New([]list.Item{}, d, 0, 0)
	l.Title = "Tasks"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle
	return l
}

func newRosterTable() table.Model {
	cols := []table.Column{
		{Title: "Email", Width: 28},
		{Title: "Name", Width: 18},
		{Title: "Role", Width: 6},
		{Title: "Tasks", Width: 6},
		{Title: "Joined", Width: 10},
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(true))
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).Foreground(colorAccent)
	st.Selected = st.Selected.Foreground(colorSelectedFg).Background(colorSelectedBg)
	t.SetStyles(st)
	return t
}

func rosterRows(users []model.AdminUser) []table.Row {
	rows := make([]table.Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, table.Row{
			u.Email,
			u.Name,
			string(u.Role),
			itoa(u.TaskCount),
			u.JoinedAt.Format("2006-01-02"),
		})
	}
	return rows
}
