// Package tui renders the chat client in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/hackmentor/hackmentor/internal/client"
	"github.com/hackmentor/hackmentor/internal/model/chat"
)

// Message types for the TUI event loop.
type (
	// streamUpdateMsg fires for every visible change during a stream.
	streamUpdateMsg struct{}
	// streamEndMsg carries the terminal state of a finished turn.
	streamEndMsg struct {
		state client.StreamState
		err   error
	}
	actionErrMsg struct{ err error }
)

// Model is the bubbletea state for the chat view.
type Model struct {
	conv     *client.Conversation
	username string

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	updates   chan struct{}
	streaming bool
	status    string
	ready     bool
	width     int
	height    int
}

// New builds the chat model. username is "" for guest mode.
func New(conv *client.Conversation, username string) *Model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question... (enter to send, esc to stop, ctrl+c to quit)"
	ta.Focus()
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		conv:     conv,
		username: username,
		textarea: ta,
		spinner:  sp,
		updates:  make(chan struct{}, 16),
	}
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 2
		footerHeight := m.textarea.Height() + 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.textarea.SetWidth(msg.Width)
		m.refreshTranscript()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.conv.Stop()
			return m, tea.Quit

		case tea.KeyEsc:
			if m.streaming {
				m.conv.Stop()
			}

		case tea.KeyCtrlN:
			if !m.streaming {
				return m, m.runAction(func(ctx context.Context) error {
					return m.conv.NewChat(ctx)
				})
			}

		case tea.KeyCtrlD:
			if id := m.conv.ActiveSession(); id != "" && !m.streaming {
				return m, m.runAction(func(ctx context.Context) error {
					return m.conv.DeleteSession(ctx, id)
				})
			}

		case tea.KeyEnter:
			prompt := strings.TrimSpace(m.textarea.Value())
			if prompt == "" || m.streaming {
				break
			}
			m.textarea.Reset()
			m.streaming = true
			m.status = ""
			cmds = append(cmds, m.startSend(prompt), m.waitForUpdate(), m.spinner.Tick)
		}

	case streamUpdateMsg:
		m.refreshTranscript()
		if m.streaming {
			cmds = append(cmds, m.waitForUpdate())
		}

	case streamEndMsg:
		m.streaming = false
		switch {
		case msg.err != nil:
			m.status = errorStyle.Render(msg.err.Error())
		case msg.state == client.StateAborted:
			m.status = statusStyle.Render("stopped")
		}
		m.refreshTranscript()

	case actionErrMsg:
		m.status = errorStyle.Render(msg.err.Error())
		m.refreshTranscript()

	case spinner.TickMsg:
		if m.streaming {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m *Model) header() string {
	who := "guest (nothing is saved)"
	if m.username != "" {
		who = m.username
	}
	left := titleStyle.Render("hackmentor")
	right := sessionStyle.Render(who + m.sessionSuffix())
	return left + "  " + right
}

func (m *Model) sessionSuffix() string {
	sessions := m.conv.Sessions()
	if len(sessions) == 0 {
		return ""
	}
	for _, session := range sessions {
		if session.ID == m.conv.ActiveSession() {
			return fmt.Sprintf(" | %s (%d saved)", session.Title, len(sessions))
		}
	}
	return fmt.Sprintf(" | %d saved", len(sessions))
}

func (m *Model) footer() string {
	if m.streaming {
		return m.spinner.View() + statusStyle.Render(" thinking... esc to stop") + "\n" + m.textarea.View()
	}
	line := m.status
	if line == "" {
		line = statusStyle.Render("ctrl+n new chat | ctrl+d delete chat | ctrl+c quit")
	}
	return line + "\n" + m.textarea.View()
}

// startSend runs the whole turn off the UI loop; per-delta updates arrive
// through the updates channel.
func (m *Model) startSend(prompt string) tea.Cmd {
	return func() tea.Msg {
		state, err := m.conv.Send(context.Background(), prompt, func() {
			select {
			case m.updates <- struct{}{}:
			default:
			}
		})
		return streamEndMsg{state: state, err: err}
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		<-m.updates
		return streamUpdateMsg{}
	}
}

func (m *Model) runAction(action func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := action(context.Background()); err != nil {
			return actionErrMsg{err: err}
		}
		return streamUpdateMsg{}
	}
}

func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m *Model) renderMessages() string {
	messages := m.conv.Messages()
	if len(messages) == 0 {
		return statusStyle.Render("Waiting for your question...")
	}

	var b strings.Builder
	for i, message := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		switch message.Role {
		case chat.RoleUser:
			b.WriteString(userLabelStyle.Render("You") + "\n")
			b.WriteString(message.Content + "\n")
		case chat.RoleAssistant:
			b.WriteString(assistantLabelStyle.Render("Mentor") + "\n")
			b.WriteString(m.renderAssistant(message, i == len(messages)-1) + "\n")
		}
	}
	return b.String()
}

// renderAssistant pretty-prints finished replies; the in-flight one stays
// raw so appends render without re-flowing on every delta.
func (m *Model) renderAssistant(message chat.Message, last bool) string {
	if last && m.streaming {
		return message.Content
	}
	rendered, err := glamour.Render(message.Content, "dark")
	if err != nil {
		return message.Content
	}
	return strings.TrimRight(rendered, "\n")
}
