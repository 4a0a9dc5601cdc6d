// Package store persists the assistant's notes and reminders as
// whole-document JSON collections.
//
// Each collection lives in its own file and is always replaced as a whole:
// every mutation is a load-modify-save cycle executed under the store's
// mutex, and saves go through a temp-file-then-rename so a reader never
// observes a torn write. The store is the single owner of both documents;
// all writers (front-ends and the scheduler) go through it.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/normanking/pia/internal/apperr"
)

// Time layouts used across the assistant.
const (
	// TimestampLayout is the note creation timestamp format.
	TimestampLayout = "2006-01-02 15:04:05"
	// DueLayout is the reminder due-time format, minute precision.
	DueLayout = "2006-01-02 15:04"
	// DateLayout is the date-only filter format.
	DateLayout = "2006-01-02"
)

// Note is a stored note. The ID is a stable opaque identifier assigned at
// creation; list positions are display-only and shift on deletion.
type Note struct {
	ID        string `json:"id,omitempty"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Reminder is a stored reminder. Due is minute-precision and the entry is
// consumed when the scheduler observes due == now.
type Reminder struct {
	ID       string `json:"id,omitempty"`
	Content  string `json:"content"`
	DateTime string `json:"date_time"`
}

type notesDoc struct {
	Notes []Note `json:"notes"`
}

type remindersDoc struct {
	Reminders []Reminder `json:"reminders"`
}

// Store owns the notes and reminders documents.
type Store struct {
	notesPath     string
	remindersPath string
	logger        *slog.Logger
	mu            sync.Mutex
}

// New creates a store over the given document paths.
func New(notesPath, remindersPath string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		notesPath:     notesPath,
		remindersPath: remindersPath,
		logger:        logger.With("component", "store"),
	}
}

// Notes returns the ordered notes collection. A missing document is an
// empty collection, not an error.
func (s *Store) Notes() ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadNotes()
}

// AddNote appends a note stamped with now and persists the collection.
func (s *Store) AddNote(content string, now time.Time) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.loadNotes()
	if err != nil {
		return Note{}, err
	}

	note := Note{
		ID:        uuid.NewString(),
		Content:   content,
		Timestamp: now.Format(TimestampLayout),
	}
	notes = append(notes, note)

	if err := s.saveNotes(notes); err != nil {
		return Note{}, err
	}
	s.logger.Info("note added", "id", note.ID)
	return note, nil
}

// DeleteNote removes the note at the given 1-based position and returns it.
func (s *Store) DeleteNote(pos int) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.loadNotes()
	if err != nil {
		return Note{}, err
	}
	if pos < 1 || pos > len(notes) {
		return Note{}, apperr.New(apperr.KindIndex, "Invalid note index")
	}

	removed := notes[pos-1]
	notes = append(notes[:pos-1], notes[pos:]...)

	if err := s.saveNotes(notes); err != nil {
		return Note{}, err
	}
	s.logger.Info("note deleted", "id", removed.ID)
	return removed, nil
}

// Reminders returns the ordered reminders collection.
func (s *Store) Reminders() ([]Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadReminders()
}

// AddReminder validates the due time against the exact YYYY-MM-DD HH:MM
// pattern, appends the reminder and persists the collection.
func (s *Store) AddReminder(content, due string) (Reminder, error) {
	if !ValidDue(due) {
		return Reminder{}, apperr.New(apperr.KindFormat, "Invalid date format (YYYY-MM-DD HH:MM)")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reminders, err := s.loadReminders()
	if err != nil {
		return Reminder{}, err
	}

	reminder := Reminder{
		ID:       uuid.NewString(),
		Content:  content,
		DateTime: due,
	}
	reminders = append(reminders, reminder)

	if err := s.saveReminders(reminders); err != nil {
		return Reminder{}, err
	}
	s.logger.Info("reminder added", "id", reminder.ID, "due", due)
	return reminder, nil
}

// DeleteReminder removes the reminder at the given 1-based position.
func (s *Store) DeleteReminder(pos int) (Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminders, err := s.loadReminders()
	if err != nil {
		return Reminder{}, err
	}
	if pos < 1 || pos > len(reminders) {
		return Reminder{}, apperr.New(apperr.KindIndex, "Invalid reminder index")
	}

	removed := reminders[pos-1]
	reminders = append(reminders[:pos-1], reminders[pos:]...)

	if err := s.saveReminders(reminders); err != nil {
		return Reminder{}, err
	}
	s.logger.Info("reminder deleted", "id", removed.ID)
	return removed, nil
}

// TakeDue removes and returns every reminder whose due time equals now at
// minute precision. The document is rewritten only when at least one
// reminder matched. The whole pass runs under the store lock so a
// concurrent edit never resurrects a fired reminder.
func (s *Store) TakeDue(now time.Time) ([]Reminder, error) {
	current := now.Format(DueLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	reminders, err := s.loadReminders()
	if err != nil {
		return nil, err
	}

	var due []Reminder
	remaining := reminders[:0]
	for _, r := range reminders {
		if r.DateTime == current {
			due = append(due, r)
		} else {
			remaining = append(remaining, r)
		}
	}

	if len(due) == 0 {
		return nil, nil
	}

	if err := s.saveReminders(remaining); err != nil {
		return nil, err
	}
	return due, nil
}

// ValidDue reports whether due matches YYYY-MM-DD HH:MM exactly.
func ValidDue(due string) bool {
	t, err := time.Parse(DueLayout, due)
	// Round-trip comparison rejects unpadded variants like "2025-1-1 7:05".
	return err == nil && t.Format(DueLayout) == due
}

// ValidDate reports whether date matches YYYY-MM-DD exactly.
func ValidDate(date string) bool {
	t, err := time.Parse(DateLayout, date)
	return err == nil && t.Format(DateLayout) == date
}

func (s *Store) loadNotes() ([]Note, error) {
	var doc notesDoc
	if err := loadJSON(s.notesPath, &doc); err != nil {
		return nil, err
	}
	return doc.Notes, nil
}

func (s *Store) saveNotes(notes []Note) error {
	if notes == nil {
		notes = []Note{}
	}
	return saveJSON(s.notesPath, notesDoc{Notes: notes})
}

func (s *Store) loadReminders() ([]Reminder, error) {
	var doc remindersDoc
	if err := loadJSON(s.remindersPath, &doc); err != nil {
		return nil, err
	}
	return doc.Reminders, nil
}

func (s *Store) saveReminders(reminders []Reminder) error {
	if reminders == nil {
		reminders = []Reminder{}
	}
	return saveJSON(s.remindersPath, remindersDoc{Reminders: reminders})
}

// loadJSON reads a whole document, defaulting to the zero value when the
// file does not exist yet.
func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// saveJSON replaces the document atomically: write to a temp file in the
// same directory, then rename over the target.
func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
