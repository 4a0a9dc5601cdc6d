package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/normanking/pia/internal/command"
)

// Focus tracks which panel is active.
type Focus int

const (
	FocusChat Focus = iota
	FocusHelp
)

// ChatMessage is one entry in the transcript.
type ChatMessage struct {
	Role      string // "user" or "assistant"
	Content   string
	Timestamp time.Time
}

// helpItem adapts a command.HelpEntry to the bubbles list.
type helpItem struct {
	entry command.HelpEntry
}

func (h helpItem) Title() string       { return h.entry.Command }
func (h helpItem) Description() string { return h.entry.Description }
func (h helpItem) FilterValue() string { return h.entry.Command }

// Model is the TUI state.
type Model struct {
	width  int
	height int
	ready  bool

	focus    Focus
	messages []ChatMessage
	viewport viewport.Model
	textarea textarea.Model
	helpList list.Model

	styles Styles
	keys   KeyMap

	messageChan chan<- string
}

// NewModel creates the TUI model.
func NewModel() Model {
	ta := textarea.New()
	ta.Placeholder = "Type a command, or 'help'..."
	ta.Focus()
	ta.CharLimit = 1024
	ta.SetWidth(80)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(80, 20)

	items := make([]list.Item, 0, len(command.HelpEntries()))
	for _, e := range command.HelpEntries() {
		items = append(items, helpItem{entry: e})
	}
	helpList := list.New(items, list.NewDefaultDelegate(), 80, 20)
	helpList.Title = "Commands"
	helpList.SetShowStatusBar(false)

	return Model{
		textarea: ta,
		viewport: vp,
		helpList: helpList,
		styles:   DefaultStyles(),
		keys:     DefaultKeyMap(),
		focus:    FocusChat,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m = m.updateDimensions()

	case ChatResponseMsg:
		m.messages = append(m.messages, ChatMessage{
			Role:      "assistant",
			Content:   msg.Content,
			Timestamp: time.Now(),
		})
		m.viewport.SetContent(m.renderChat())
		m.viewport.GotoBottom()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == FocusHelp {
		return m.handleHelpKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.focus = FocusHelp
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.messages = nil
		m.viewport.SetContent("")
		return m, nil

	case key.Matches(msg, m.keys.Send):
		return m.handleSend()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// handleHelpKeys drives the interactive help panel. Enter copies the
// selected command's example into the input.
func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Esc), key.Matches(msg, m.keys.Help):
		m.focus = FocusChat
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		if item, ok := m.helpList.SelectedItem().(helpItem); ok {
			m.textarea.SetValue(item.entry.Example)
		}
		m.focus = FocusChat
		return m, nil
	}

	var cmd tea.Cmd
	m.helpList, cmd = m.helpList.Update(msg)
	return m, cmd
}

func (m Model) handleSend() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.textarea.Value())
	if content == "" {
		return m, nil
	}

	m.messages = append(m.messages, ChatMessage{
		Role:      "user",
		Content:   content,
		Timestamp: time.Now(),
	})
	m.textarea.Reset()
	m.viewport.SetContent(m.renderChat())
	m.viewport.GotoBottom()

	if m.messageChan != nil {
		ch := m.messageChan
		return m, func() tea.Msg {
			ch <- content
			return nil
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}

	if m.focus == FocusHelp {
		hint := m.styles.HelpHint.Render("enter: use example  esc: back")
		return lipgloss.JoinVertical(lipgloss.Left, m.helpList.View(), hint)
	}

	header := m.styles.Header.Render("Pia")
	input := m.styles.InputBox.Render(m.textarea.View())
	status := m.styles.StatusBar.Render(fmt.Sprintf("%d messages | f1: help  ctrl+l: clear  ctrl+c: quit", len(m.messages)))

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), input, status)
}

func (m Model) updateDimensions() Model {
	headerHeight := 1
	statusHeight := 1
	inputHeight := 3
	padding := 1

	chatHeight := m.height - headerHeight - statusHeight - inputHeight - padding
	if chatHeight < 1 {
		chatHeight = 1
	}

	m.viewport.Width = m.width - 2
	m.viewport.Height = chatHeight
	m.textarea.SetWidth(m.width - 4)
	m.helpList.SetSize(m.width-2, m.height-2)

	return m
}

func (m Model) renderChat() string {
	var sb strings.Builder
	for _, msg := range m.messages {
		switch msg.Role {
		case "user":
			sb.WriteString(m.styles.UserMsg.Render("You: "))
		case "assistant":
			sb.WriteString(m.styles.BotMsg.Render("Pia: "))
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// SetMessageChannel sets the channel user input is forwarded on.
func (m *Model) SetMessageChannel(ch chan<- string) {
	m.messageChan = ch
}

// ChatResponseMsg carries an interpreter response into the transcript.
type ChatResponseMsg struct {
	Content string
}
