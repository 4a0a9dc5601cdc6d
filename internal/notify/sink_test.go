package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSpeaker struct {
	spoken []string
	err    error
}

func (f *fakeSpeaker) Speak(text string) error {
	if f.err != nil {
		return f.err
	}
	f.spoken = append(f.spoken, text)
	return nil
}

type fakeBroadcaster struct {
	sent   []string
	ok     bool
	detail string
}

func (f *fakeBroadcaster) Broadcast(text string) (bool, string) {
	f.sent = append(f.sent, text)
	return f.ok, f.detail
}

func TestSpeechSink(t *testing.T) {
	speaker := &fakeSpeaker{}
	sink := NewSpeechSink(speaker, nil)

	ok, detail := sink.Send("Reminder: dentist")
	assert.True(t, ok)
	assert.Equal(t, "spoken", detail)
	assert.Equal(t, []string{"Reminder: dentist"}, speaker.spoken)
}

func TestSpeechSink_FailureNeverPanics(t *testing.T) {
	sink := NewSpeechSink(&fakeSpeaker{err: errors.New("no engine")}, nil)

	ok, detail := sink.Send("hello")
	assert.False(t, ok)
	assert.Contains(t, detail, "no engine")
}

func TestChatSink(t *testing.T) {
	b := &fakeBroadcaster{ok: true, detail: "sent"}
	sink := NewChatSink(b, nil)

	ok, detail := sink.Send("New note: milk")
	assert.True(t, ok)
	assert.Equal(t, "sent", detail)
	assert.Equal(t, []string{"New note: milk"}, b.sent)
}

func TestSet_FailureDoesNotBlockOtherSinks(t *testing.T) {
	speaker := &fakeSpeaker{err: errors.New("muted")}
	b := &fakeBroadcaster{ok: true, detail: "sent"}

	set := NewSet(NewSpeechSink(speaker, nil), NewChatSink(b, nil))
	results := set.Send("Reminder: dentist")

	assert.Len(t, results, 2)
	assert.False(t, results[0].OK)
	assert.True(t, results[1].OK)
	assert.Equal(t, []string{"Reminder: dentist"}, b.sent, "chat must still receive the text")
}
