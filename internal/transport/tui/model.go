package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/internal/service/transcript"
	"github.com/sandevgo/tuskchat/internal/service/ui"
)

const (
	inputHeight  = 3
	headerHeight = 2
)

type submitDoneMsg struct{ err error }

type model struct {
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	units   []transcript.Unit
	pending bool
	status  string
	width   int
	ready   bool

	submit func(text string) tea.Cmd
}

func newModel(submit func(text string) tea.Cmd) model {
	ti := textinput.New()
	ti.Placeholder = "Type a message and press enter"
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Focus()

	return model{
		viewport: viewport.New(0, 0),
		input:    ti,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		submit:   submit,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-inputHeight-headerHeight, 1)
		m.input.Width = max(msg.Width-4, 1)
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.pending {
				m.status = "Waiting for the reply..."
				return m, nil
			}
			text := m.input.Value()
			if strings.TrimSpace(text) == "" {
				return m, nil
			}
			m.input.Reset()
			m.status = ""
			return m, m.submit(text)
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case unitMsg:
		m.units = append(m.units, msg.unit)
		m.refresh()
		return m, nil

	case scrollMsg:
		m.viewport.GotoBottom()
		return m, nil

	case pendingMsg:
		m.pending = bool(msg)
		if m.pending {
			m.input.Blur()
			return m, m.spinner.Tick
		}
		m.status = ""
		return m, m.input.Focus()

	case submitDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, chat.ErrEmptyMessage) {
			m.status = msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// refresh re-lays out the transcript; scrolling is left to scrollMsg.
func (m *model) refresh() {
	if !m.ready {
		return
	}
	parts := make([]string, len(m.units))
	for i, u := range m.units {
		parts[i] = ui.FormatUnit(u, m.width-2)
	}
	m.viewport.SetContent(strings.Join(parts, "\n\n"))
}

func (m model) View() string {
	if !m.ready {
		return "Starting...\n"
	}

	header := ui.TitleStyle.Render(core.TuskName)

	footer := m.input.View()
	switch {
	case m.pending:
		footer = m.spinner.View() + " " + ui.DescStyle.Render("waiting for reply")
	case m.status != "":
		footer += "\n" + ui.DescStyle.Render(m.status)
	}

	return header + "\n" + m.viewport.View() + "\n\n" + footer
}
