package main

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Padding(0, 1)
	callerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle      = lipgloss.NewStyle().Faint(true)
)

type entry struct {
	speaker string
	text    string
	failed  bool
}

type replyMsg struct{ text string }

type errMsg struct{ err error }

type model struct {
	client *chatClient

	viewport viewport.Model
	input    textinput.Model
	entries  []entry
	waiting  bool
	width    int
}

func newModel(client *chatClient) model {
	input := textinput.New()
	input.Placeholder = "Describe your emergency..."
	input.CharLimit = 500
	input.Focus()

	return model{
		client:   client,
		viewport: viewport.New(80, 20),
		input:    input,
		width:    80,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 1)
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			message := strings.TrimSpace(m.input.Value())
			if message == "" || m.waiting {
				return m, nil
			}
			m.input.Reset()
			m.entries = append(m.entries, entry{speaker: "You", text: message})
			m.waiting = true
			m.refresh()
			return m, m.send(message)
		}

	case replyMsg:
		m.waiting = false
		m.entries = append(m.entries, entry{speaker: "Helpline", text: msg.text})
		m.refresh()
		return m, nil

	case errMsg:
		m.waiting = false
		m.entries = append(m.entries, entry{speaker: "Error", text: msg.err.Error(), failed: true})
		m.refresh()
		return m, nil
	}

	var inputCmd, viewportCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.viewport, viewportCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, viewportCmd)
}

func (m model) View() string {
	status := "enter to send, esc to quit"
	if m.waiting {
		status = "waiting for the helpline..."
	}
	return titleStyle.Render("Emergency Helpline") + "\n" +
		m.viewport.View() + "\n" +
		m.input.View() + "\n" +
		hintStyle.Render(status)
}

func (m model) send(message string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.client.send(context.Background(), message)
		if err != nil {
			return errMsg{err: err}
		}
		return replyMsg{text: reply}
	}
}

func (m *model) refresh() {
	m.viewport.SetContent(m.render())
	m.viewport.GotoBottom()
}

func (m model) render() string {
	var b strings.Builder
	for _, e := range m.entries {
		style := assistantStyle
		switch {
		case e.failed:
			style = errorStyle
		case e.speaker == "You":
			style = callerStyle
		}
		b.WriteString(style.Render(e.speaker + ":"))
		b.WriteString("\n")
		b.WriteString(wordwrap.String(e.text, max(m.width-2, 20)))
		b.WriteString("\n\n")
	}
	return b.String()
}
