package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/pia/internal/notify"
	"github.com/normanking/pia/internal/store"
)

type recordingSink struct {
	name  string
	ok    bool
	sent  []string
	panic bool
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Send(text string) (bool, string) {
	if r.panic {
		panic("sink exploded")
	}
	r.sent = append(r.sent, text)
	if !r.ok {
		return false, "delivery refused"
	}
	return true, "delivered"
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	return store.New(filepath.Join(dir, "notes.json"), filepath.Join(dir, "reminders.json"), nil)
}

func TestCheck_FiresDueReminders(t *testing.T) {
	st := newTestStore(t)
	now := time.Date(2025, 7, 15, 17, 0, 0, 0, time.UTC)

	_, err := st.AddReminder("dentist", "2025-07-15 17:00")
	require.NoError(t, err)
	_, err = st.AddReminder("train", "2025-07-16 08:30")
	require.NoError(t, err)

	sink := &recordingSink{name: "test", ok: true}
	s := New(st, notify.NewSet(sink), time.Minute, nil)
	s.now = func() time.Time { return now }

	s.check()

	require.Len(t, sink.sent, 1)
	assert.Equal(t, "Reminder: dentist", sink.sent[0])

	reminders, err := st.Reminders()
	require.NoError(t, err)
	require.Len(t, reminders, 1, "the fired reminder must be consumed")
	assert.Equal(t, "train", reminders[0].Content)
}

func TestCheck_FiresAtMostOnce(t *testing.T) {
	st := newTestStore(t)
	now := time.Date(2025, 7, 15, 17, 0, 0, 0, time.UTC)

	_, err := st.AddReminder("dentist", "2025-07-15 17:00")
	require.NoError(t, err)

	sink := &recordingSink{name: "test", ok: true}
	s := New(st, notify.NewSet(sink), time.Minute, nil)
	s.now = func() time.Time { return now }

	s.check()
	s.check()

	assert.Len(t, sink.sent, 1, "a second pass in the same minute must not refire")
}

func TestCheck_DeliveryFailureStillConsumes(t *testing.T) {
	st := newTestStore(t)
	now := time.Date(2025, 7, 15, 17, 0, 0, 0, time.UTC)

	_, err := st.AddReminder("dentist", "2025-07-15 17:00")
	require.NoError(t, err)

	failing := &recordingSink{name: "chat", ok: false}
	working := &recordingSink{name: "speech", ok: true}
	s := New(st, notify.NewSet(failing, working), time.Minute, nil)
	s.now = func() time.Time { return now }

	s.check()

	assert.Len(t, failing.sent, 1)
	assert.Len(t, working.sent, 1, "one failing sink must not block the others")

	reminders, err := st.Reminders()
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestCheck_SurvivesPanickingSink(t *testing.T) {
	st := newTestStore(t)
	now := time.Date(2025, 7, 15, 17, 0, 0, 0, time.UTC)

	_, err := st.AddReminder("dentist", "2025-07-15 17:00")
	require.NoError(t, err)

	s := New(st, notify.NewSet(&recordingSink{name: "bad", panic: true}), time.Minute, nil)
	s.now = func() time.Time { return now }

	assert.NotPanics(t, s.check)
}

func TestCheck_NoDueReminders(t *testing.T) {
	st := newTestStore(t)
	_, err := st.AddReminder("dentist", "2025-07-15 17:00")
	require.NoError(t, err)

	sink := &recordingSink{name: "test", ok: true}
	s := New(st, notify.NewSet(sink), time.Minute, nil)
	s.now = func() time.Time { return time.Date(2025, 7, 15, 16, 59, 0, 0, time.UTC) }

	s.check()
	assert.Empty(t, sink.sent)
}

func TestRun_StopsOnCancel(t *testing.T) {
	st := newTestStore(t)
	s := New(st, notify.NewSet(), 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}
