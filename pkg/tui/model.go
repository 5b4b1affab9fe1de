package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/chatgate/pkg/render"
)

const (
	inputHeight  = 1
	statusHeight = 1
	gapHeight    = 1
)

var (
	statusStyle = lipgloss.NewStyle().Faint(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

type turnDoneMsg struct {
	outcome Outcome
	err     error
}

type copyResetMsg struct{}

// Model is the bubbletea model of an interactive chat.
type Model struct {
	ctx     context.Context
	session *Session
	color   bool

	formatter *Formatter
	input     textinput.Model
	spin      spinner.Model
	viewport  viewport.Model
	ready     bool

	busy   bool
	notice string
	err    error
}

// NewModel creates the interactive model for session.
func NewModel(ctx context.Context, session *Session, color bool) *Model {
	in := textinput.New()
	in.Placeholder = "Digite sua mensagem..."
	in.Prompt = "> "
	in.Focus()
	in.CharLimit = 0
	in.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = assistantStyle

	return &Model{
		ctx:       ctx,
		session:   session,
		color:     color,
		formatter: NewFormatter(80, color),
		input:     in,
		spin:      s,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-inputHeight-statusHeight-gapHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.input.Width = max(msg.Width-4, 10)
		m.formatter = NewFormatter(msg.Width-2, m.color)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			line := m.input.Value()
			m.input.Reset()
			m.notice = ""
			m.err = nil
			m.busy = true
			return m, tea.Batch(m.execute(line), m.spin.Tick)
		}

	case turnDoneMsg:
		m.busy = false
		m.notice = msg.outcome.Notice
		m.err = msg.err
		m.refresh()
		if msg.outcome.Quit {
			return m, tea.Quit
		}
		if msg.outcome.Copied {
			return m, tea.Tick(render.CopyResetDelay, func(time.Time) tea.Msg { return copyResetMsg{} })
		}
		return m, nil

	case copyResetMsg:
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		// The turn runs off the event loop; pick up its user block and typing
		// placeholder as they land.
		m.refresh()
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) execute(line string) tea.Cmd {
	return func() tea.Msg {
		outcome, err := m.session.Execute(m.ctx, line)
		return turnDoneMsg{outcome: outcome, err: err}
	}
}

// refresh redraws the conversation and follows the newest block.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.formatter.View(m.session.Widget.View()))
	m.viewport.GotoBottom()
}

func (m *Model) View() string {
	if !m.ready {
		return "\n  Iniciando..."
	}

	status := statusStyle.Render("Enter envia, /help mostra os comandos, Ctrl+C sai")
	switch {
	case m.err != nil:
		status = errorStyle.Render(m.err.Error())
	case m.notice != "":
		status = noticeStyle.Render(m.notice)
	}

	prompt := m.input.View()
	if m.busy {
		prompt = m.spin.View() + " " + statusStyle.Render("aguardando resposta")
	}

	return m.viewport.View() + "\n\n" + prompt + "\n" + status
}
