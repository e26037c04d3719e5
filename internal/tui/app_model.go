package tui

import (
	"context"

	"bonsai-cli/internal/api"
	"bonsai-cli/internal/chat"
	"bonsai-cli/internal/model"
	"bonsai-cli/internal/session"
	"bonsai-cli/internal/tasklist"
	"bonsai-cli/internal/transcript"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type view int

const (
	viewLogin view = iota
	viewTasks
	viewChat
	viewAdmin
)

// loginField indexes the focusable inputs on the login form.
type loginField int

const (
	fieldName loginField = iota // register mode only
	fieldEmail
	fieldPassword
)

type appModel struct {
	opts  Options
	store session.Store

	client *api.Client
	user   model.User
	ctl    *tasklist.Controller
	bridge *chat.Bridge
	ts     *transcript.Store

	width  int
	height int

	view view

	// Login form.
	registerMode bool
	nameInput    textinput.Model
	emailInput   textinput.Model
	passInput    textinput.Model
	loginFocus   loginField
	authBusy     bool
	authErr      string
	authNotice   string

	// Task dashboard.
	tasksList   list.Model
	adding      bool
	addInput    textinput.Model
	confirmRmID string // non-empty => delete confirm modal for that task id
	tasksErr    string // last load/mutation failure, "" means no error
	everLoaded  bool   // distinguishes "no tasks" from "first load failed"
	busy        bool

	// Chat panel.
	chatView  viewport.Model
	chatInput textinput.Model
	spin      spinner.Model
	sending   bool
	chatErr   string

	// Admin roster.
	adminTable  table.Model
	adminDenied bool
	adminErr    string
	adminBusy   bool
}

func newAppModel(opts Options) appModel {
	m := appModel{
		opts:  opts,
		store: session.Store{Dir: opts.Dir},
		view:  viewLogin,
	}

	m.nameInput = newField("name", 0)
	m.emailInput = newField("you@example.com", 0)
	m.passInput = newField("password", 0)
	m.passInput.EchoMode = textinput.EchoPassword
	m.loginFocus = fieldEmail
	m.emailInput.Focus()

	m.tasksList = newTaskList()
	m.addInput = newField("Seed a new task...", 64)

	m.chatInput = newField("Ask me to add tasks or list what's pending", 0)
	m.chatView = viewport.New(0, 0)
	m.spin = spinner.New(spinner.WithSpinner(spinner.MiniDot))

	m.adminTable = newRosterTable()

	return m
}

func newField(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if limit > 0 {
		ti.CharLimit = limit
	}
	return ti
}

// Init restores the stored session. A missing or corrupt session leaves the
// model on the login view (the store has already cleared any partial state).
func (m appModel) Init() tea.Cmd {
	return loadSessionCmd(m.store)
}

// startSession installs an authenticated gateway and the controllers built
// on it, then kicks off the first task load.
func (m *appModel) startSession(token string, user model.User) tea.Cmd {
	m.client = api.New(m.opts.ServerURL, token)
	m.user = user
	m.ctl = tasklist.New(m.client)
	m.bridge = chat.NewBridge(m.client, user.ID)
	if m.opts.Config.SpeakCommand != "" {
		m.bridge.Output = chat.CommandSpeaker{Command: m.opts.Config.SpeakCommand}
	}
	if !m.opts.Config.TranscriptDisabled {
		// Best-effort: chat works without the local transcript.
		if ts, err := transcript.Open(context.Background(), m.opts.Dir); err == nil {
			m.ts = ts
			if prior, err := ts.Recent(context.Background(), user.ID, 20); err == nil {
				m.bridge.Seed(prior)
			}
		}
	}
	m.view = viewTasks
	m.busy = true
	return refreshTasksCmd(m.ctl)
}

func (m *appModel) resize() {
	w, h := m.width, m.height
	if w <= 0 || h <= 0 {
		return
	}
	m.tasksList.SetSize(w-4, h-6)
	m.chatView.Width = w - 4
	m.chatView.Height = h - 8
	m.adminTable.SetWidth(w - 4)
	m.adminTable.SetHeight(h - 8)
	for _, ti := range []*textinput.Model{&m.addInput, &m.chatInput, &m.nameInput, &m.emailInput, &m.passInput} {
		ti.Width = min(60, w-8)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
