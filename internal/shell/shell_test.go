package shell

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/pia/internal/command"
	"github.com/normanking/pia/internal/config"
	"github.com/normanking/pia/internal/store"
)

type stubVolume struct{}

func (stubVolume) Set(level int) error { return nil }
func (stubVolume) Mute() error         { return nil }

type recordingSpeaker struct {
	spoken []string
}

func (r *recordingSpeaker) Speak(text string) error {
	r.spoken = append(r.spoken, text)
	return nil
}

func newTestInterpreter(t *testing.T) *command.Interpreter {
	t.Helper()
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "notes.json"), filepath.Join(dir, "reminders.json"), nil)
	return command.New(command.Options{
		Config:  config.Default(),
		Store:   st,
		Volume:  stubVolume{},
		Speaker: &recordingSpeaker{},
		Now:     func() time.Time { return time.Date(2025, 7, 15, 16, 45, 0, 0, time.UTC) },
	})
}

func TestRun_ProcessesLinesUntilExit(t *testing.T) {
	in := strings.NewReader("note add buy milk\ntime\nexit\n")
	var out bytes.Buffer

	s := New(newTestInterpreter(t), nil, in, &out, nil)
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Note added: buy milk")
	assert.Contains(t, out.String(), "The current time is 16:45")
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestRun_ExitsOnEOF(t *testing.T) {
	var out bytes.Buffer
	s := New(newTestInterpreter(t), nil, strings.NewReader("time\n"), &out, nil)
	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "The current time is 16:45")
}

func TestRun_SkipsEmptyLines(t *testing.T) {
	var out bytes.Buffer
	s := New(newTestInterpreter(t), nil, strings.NewReader("\n\nexit\n"), &out, nil)
	require.NoError(t, s.Run(context.Background()))
	assert.NotContains(t, out.String(), "Unknown command")
}

func TestRun_SpeaksResponses(t *testing.T) {
	speaker := &recordingSpeaker{}
	var out bytes.Buffer
	s := New(newTestInterpreter(t), speaker, strings.NewReader("time\nexit\n"), &out, nil)
	require.NoError(t, s.Run(context.Background()))

	require.Len(t, speaker.spoken, 1)
	assert.Equal(t, "The current time is 16:45", speaker.spoken[0])
}
