package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/pia/internal/apperr"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return New(filepath.Join(dir, "notes.json"), filepath.Join(dir, "reminders.json"), nil)
}

func TestNotes_EmptyOnMissingFile(t *testing.T) {
	s := newTestStore(t)

	notes, err := s.Notes()
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestAddNote_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2025, 7, 15, 16, 30, 5, 0, time.UTC)

	note, err := s.AddNote("buy groceries", now)
	require.NoError(t, err)
	assert.NotEmpty(t, note.ID)
	assert.Equal(t, "buy groceries", note.Content)
	assert.Equal(t, "2025-07-15 16:30:05", note.Timestamp)

	// A second store over the same files sees the identical sequence.
	reloaded := New(s.notesPath, s.remindersPath, nil)
	notes, err := reloaded.Notes()
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, note, notes[0])
}

func TestNotesDocumentLayout(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddNote("layout check", time.Now())
	require.NoError(t, err)

	data, err := os.ReadFile(s.notesPath)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	_, ok := doc["notes"]
	assert.True(t, ok, "document must be wrapped in a top-level notes key")
}

func TestDeleteNote(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	_, err := s.AddNote("first", now)
	require.NoError(t, err)
	_, err = s.AddNote("second", now)
	require.NoError(t, err)

	removed, err := s.DeleteNote(1)
	require.NoError(t, err)
	assert.Equal(t, "first", removed.Content)

	notes, err := s.Notes()
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "second", notes[0].Content)
}

func TestDeleteNote_OutOfRange(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddNote("only", time.Now())
	require.NoError(t, err)

	for _, pos := range []int{0, -1, 2} {
		_, err := s.DeleteNote(pos)
		require.Error(t, err)
		assert.Equal(t, apperr.KindIndex, apperr.KindOf(err), "pos %d", pos)
	}

	// Collection unchanged after failed deletes.
	notes, err := s.Notes()
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestDeleteNote_EmptyCollection(t *testing.T) {
	s := newTestStore(t)

	_, err := s.DeleteNote(1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindIndex, apperr.KindOf(err))
}

func TestAddReminder(t *testing.T) {
	s := newTestStore(t)

	r, err := s.AddReminder("Dentist", "2025-07-15 17:00")
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "2025-07-15 17:00", r.DateTime)

	reminders, err := s.Reminders()
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "Dentist", reminders[0].Content)
}

func TestAddReminder_InvalidFormat(t *testing.T) {
	s := newTestStore(t)

	bad := []string{
		"2025-07-15",
		"tomorrow",
		"2025-07-15 17:00:00",
		"2025-7-15 17:00",
		"2025-07-15 7:0",
		"",
	}
	for _, due := range bad {
		_, err := s.AddReminder("x", due)
		require.Error(t, err, "due %q", due)
		assert.Equal(t, apperr.KindFormat, apperr.KindOf(err), "due %q", due)
	}

	reminders, err := s.Reminders()
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestDeleteReminder_OutOfRange(t *testing.T) {
	s := newTestStore(t)

	_, err := s.DeleteReminder(1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindIndex, apperr.KindOf(err))
}

func TestTakeDue(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddReminder("now", "2025-07-15 17:00")
	require.NoError(t, err)
	_, err = s.AddReminder("later", "2025-07-15 18:00")
	require.NoError(t, err)

	now := time.Date(2025, 7, 15, 17, 0, 42, 0, time.Local)
	due, err := s.TakeDue(now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "now", due[0].Content)

	// The fired reminder is gone from the document.
	reminders, err := s.Reminders()
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "later", reminders[0].Content)

	// A second pass in the same minute fires nothing.
	due, err = s.TakeDue(now)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestTakeDue_NoMatchNoRewrite(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddReminder("later", "2030-01-01 00:00")
	require.NoError(t, err)

	before, err := os.Stat(s.remindersPath)
	require.NoError(t, err)

	due, err := s.TakeDue(time.Date(2025, 7, 15, 17, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Empty(t, due)

	after, err := os.Stat(s.remindersPath)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime(), "no-match pass must not rewrite the document")
}

func TestValidDue(t *testing.T) {
	assert.True(t, ValidDue("2025-07-15 17:00"))
	assert.False(t, ValidDue("2025-07-15 25:00"))
	assert.False(t, ValidDue("2025-07-15"))
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2025-07-15"))
	assert.False(t, ValidDate("2025-7-15"))
	assert.False(t, ValidDate("2025-07-15 17:00"))
}
