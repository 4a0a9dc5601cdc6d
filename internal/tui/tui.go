// Package tui is the full-screen terminal front-end built on bubbletea.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// TUI wraps the bubbletea program. User input comes out of Messages();
// responses go back in through SendResponse.
type TUI struct {
	program     *tea.Program
	model       *Model
	messageChan chan string
}

// New creates a TUI instance.
func New() *TUI {
	model := NewModel()
	t := &TUI{
		model:       &model,
		messageChan: make(chan string, 10),
	}
	model.SetMessageChannel(t.messageChan)
	return t
}

// Run starts the TUI and blocks until it exits.
func (t *TUI) Run(ctx context.Context) error {
	t.program = tea.NewProgram(
		*t.model,
		tea.WithAltScreen(),
	)

	go func() {
		<-ctx.Done()
		t.program.Quit()
	}()

	if _, err := t.program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// Messages returns the stream of user input lines.
func (t *TUI) Messages() <-chan string {
	return t.messageChan
}

// SendResponse displays an interpreter response in the transcript.
func (t *TUI) SendResponse(content string) {
	if t.program != nil {
		t.program.Send(ChatResponseMsg{Content: content})
	}
}

// Quit stops the program.
func (t *TUI) Quit() {
	if t.program != nil {
		t.program.Quit()
	}
}
