package dashboard

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fivetwenty-io/identity-console/internal/page"
	"github.com/fivetwenty-io/identity-console/internal/view"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// chromeHeight is the lines taken by tabs, status and help.
const chromeHeight = 4

type loadedMsg struct {
	apply page.Applier
}

type mutatedMsg struct {
	label string
	err   error
}

// Model is the terminal dashboard.
type Model struct {
	ctx     context.Context
	screens []Screen
	active  int
	// stack holds drill-down screens opened from the active tab.
	stack    []Screen
	cursor   int
	keys     keyMap
	input    textinput.Model
	editing  bool
	confirm  *RowAction
	status   string
	viewport viewport.Model
	ready    bool
	logger   ops.Logger
}

// NewModel creates the dashboard over screens. ctx bounds every fetch.
func NewModel(ctx context.Context, screens []Screen, logger ops.Logger) Model {
	input := textinput.New()
	input.Prompt = "filter › "
	input.Placeholder = "key=value ..."

	return Model{
		ctx:     ctx,
		screens: screens,
		keys:    defaultKeyMap(),
		input:   input,
		logger:  logger,
	}
}

// Current returns the screen on display.
func (m Model) Current() Screen {
	if len(m.stack) > 0 {
		return m.stack[len(m.stack)-1]
	}

	return m.screens[m.active]
}

// Cursor returns the selected row.
func (m Model) Cursor() int {
	return m.cursor
}

// Init loads the first screen.
func (m Model) Init() tea.Cmd {
	if len(m.screens) == 0 {
		return tea.Quit
	}

	return m.load(m.Current().Refresh())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		msg.apply()
		m.clampCursor()
		m.syncViewport()

		return m, nil
	case mutatedMsg:
		if msg.err != nil {
			m.status = msg.label + " failed"
			m.debug("row action failed", map[string]interface{}{"action": msg.label, "error": msg.err})
		} else {
			m.status = msg.label + " done"
		}

		m.clampCursor()
		m.syncViewport()

		return m, nil
	case tea.WindowSizeMsg:
		height := max(msg.Height-chromeHeight, 1)

		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}

		m.syncViewport()

		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		return m.handleConfirm(msg)
	}

	if m.editing {
		return m.handleFilterInput(msg)
	}

	screen := m.Current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(-1)
	case key.Matches(msg, m.keys.NextPg):
		if loader, ok := screen.NextPage(); ok {
			m.cursor = 0

			return m, m.load(loader)
		}
	case key.Matches(msg, m.keys.PrevPg):
		if loader, ok := screen.PrevPage(); ok {
			m.cursor = 0

			return m, m.load(loader)
		}
	case key.Matches(msg, m.keys.Refresh):
		m.status = ""

		return m, m.load(screen.Refresh())
	case key.Matches(msg, m.keys.Filter):
		if form := screen.Filters(); form != nil {
			m.editing = true
			m.input.SetValue(form.String())
			m.input.CursorEnd()

			return m, m.input.Focus()
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < screen.Len()-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Action):
		if action, ok := screen.Action(m.cursor); ok {
			m.confirm = action
		}
	case key.Matches(msg, m.keys.Open):
		if detail, ok := screen.Open(m.cursor); ok {
			m.stack = append(m.stack, detail)
			m.cursor = 0

			return m, m.load(detail.Refresh())
		}
	case key.Matches(msg, m.keys.Back):
		if len(m.stack) > 0 {
			m.stack = m.stack[:len(m.stack)-1]
			m.cursor = 0
		}
	}

	m.syncViewport()

	return m, nil
}

func (m Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.confirm
	m.confirm = nil

	if !view.IsConfirmKey(msg.String()) {
		m.status = action.Label + " cancelled"

		return m, nil
	}

	ctx := m.ctx
	m.status = action.Label + "…"

	return m, func() tea.Msg {
		return mutatedMsg{label: action.Label, err: action.Run(ctx)}
	}
}

func (m Model) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()

		return m, nil
	case tea.KeyEnter:
		screen := m.Current()

		values, err := screen.Filters().ParseAssignments(m.input.Value())
		if err != nil {
			m.status = err.Error()

			return m, nil
		}

		loader, err := screen.ApplyFilters(values)
		if err != nil {
			m.status = err.Error()

			return m, nil
		}

		m.editing = false
		m.input.Blur()
		m.cursor = 0
		m.status = ""

		return m, m.load(loader)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m Model) switchTab(step int) (tea.Model, tea.Cmd) {
	m.stack = nil
	m.cursor = 0
	m.status = ""
	m.active = (m.active + step + len(m.screens)) % len(m.screens)

	if m.Current().Status() == page.StatusIdle {
		return m, m.load(m.Current().Refresh())
	}

	m.syncViewport()

	return m, nil
}

// load runs loader as a command; the applier is called back in Update.
func (m Model) load(loader Loader) tea.Cmd {
	ctx := m.ctx

	return func() tea.Msg {
		return Loaded(ctx, loader)
	}
}

// Loaded runs loader and wraps its applier in the message Update applies.
func Loaded(ctx context.Context, loader Loader) tea.Msg {
	return loadedMsg{apply: loader(ctx)}
}

func (m *Model) clampCursor() {
	if rows := m.Current().Len(); m.cursor >= rows {
		m.cursor = max(rows-1, 0)
	}
}

func (m *Model) syncViewport() {
	if m.ready {
		m.viewport.SetContent(m.body())
	}
}

func (m Model) body() string {
	var out strings.Builder

	err := m.Current().Render(&out, m.cursor)
	if err != nil {
		return view.ErrorStyle.Render(err.Error())
	}

	return out.String()
}

func (m Model) debug(msg string, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.Debug(msg, fields)
	}
}

// View renders the dashboard.
func (m Model) View() string {
	var out strings.Builder

	out.WriteString(m.tabs() + "\n")

	switch {
	case m.confirm != nil:
		out.WriteString(view.Modal{Title: "Confirm " + m.confirm.Label, Body: m.confirm.Question}.View())
	case m.ready:
		out.WriteString(m.viewport.View())
	default:
		out.WriteString(m.body())
	}

	out.WriteString("\n")

	if m.editing {
		out.WriteString(m.input.View() + "\n")
	}

	if m.status != "" {
		out.WriteString(view.MutedStyle.Render(m.status) + "\n")
	}

	out.WriteString(m.help())

	return out.String()
}

func (m Model) tabs() string {
	names := make([]string, len(m.screens))

	for i, screen := range m.screens {
		if i == m.active {
			names[i] = view.ActiveTab.Render(screen.Name())
		} else {
			names[i] = view.InactiveTab.Render(screen.Name())
		}
	}

	return strings.Join(names, " ")
}

func (m Model) help() string {
	parts := make([]string, 0, len(m.keys.help()))

	for _, binding := range m.keys.help() {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}

	return view.MutedStyle.Render(strings.Join(parts, " · "))
}

// Run starts the dashboard program and blocks until it exits.
func Run(ctx context.Context, screens []Screen, logger ops.Logger) error {
	program := tea.NewProgram(NewModel(ctx, screens, logger), tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := program.Run()

	return err
}
