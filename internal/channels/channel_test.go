package channels

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/pia/internal/apperr"
)

type stubChannel struct {
	*BaseChannel
	started    bool
	stopped    bool
	sendOK     bool
	sent       []string
	clearCount int
	clearErr   error
}

func newStubChannel(name string, enabled, sendOK bool) *stubChannel {
	return &stubChannel{BaseChannel: NewBaseChannel(name, enabled), sendOK: sendOK}
}

func (s *stubChannel) Start(ctx context.Context) error { s.started = true; return nil }
func (s *stubChannel) Stop() error                     { s.stopped = true; return nil }

func (s *stubChannel) Send(channelID, text string) (bool, string) {
	s.sent = append(s.sent, text)
	if !s.sendOK {
		return false, "send refused"
	}
	return true, "sent"
}

func (s *stubChannel) Broadcast(text string) (bool, string) {
	return s.Send("", text)
}

func (s *stubChannel) ClearBotMessages(channelID string) (int, error) {
	return s.clearCount, s.clearErr
}

func TestRouter_RegisterAndGet(t *testing.T) {
	r := NewRouter()
	ch := newStubChannel("discord", true, true)
	r.Register(ch)

	got, ok := r.Get("discord")
	require.True(t, ok)
	assert.Equal(t, "discord", got.Name())

	_, ok = r.Get("telegram")
	assert.False(t, ok)
	assert.Len(t, r.All(), 1)
}

func TestRouter_Enabled(t *testing.T) {
	r := NewRouter()
	assert.False(t, r.Enabled())

	r.Register(newStubChannel("discord", false, true))
	assert.False(t, r.Enabled())

	r.Register(newStubChannel("telegram", true, true))
	assert.True(t, r.Enabled())
}

func TestRouter_StartAllSkipsDisabled(t *testing.T) {
	r := NewRouter()
	enabled := newStubChannel("discord", true, true)
	disabled := newStubChannel("slack", false, true)
	r.Register(enabled)
	r.Register(disabled)

	require.NoError(t, r.StartAll(context.Background()))
	assert.True(t, enabled.started)
	assert.False(t, disabled.started)
}

func TestRouter_AggregatesIncoming(t *testing.T) {
	r := NewRouter()
	a := newStubChannel("discord", true, true)
	b := newStubChannel("telegram", true, true)
	r.Register(a)
	r.Register(b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.StartAll(ctx))

	a.EnqueueMessage(&InboundMessage{ChannelName: "discord", Content: "hello"})
	b.EnqueueMessage(&InboundMessage{ChannelName: "telegram", Content: "world"})

	seen := map[string]string{}
	for range 2 {
		select {
		case msg := <-r.Incoming():
			seen[msg.ChannelName] = msg.Content
		case <-time.After(time.Second):
			t.Fatal("message was not aggregated")
		}
	}
	assert.Equal(t, map[string]string{"discord": "hello", "telegram": "world"}, seen)
}

func TestRouter_BroadcastPartialFailure(t *testing.T) {
	r := NewRouter()
	good := newStubChannel("discord", true, true)
	bad := newStubChannel("telegram", true, false)
	disabled := newStubChannel("slack", false, true)
	r.Register(good)
	r.Register(bad)
	r.Register(disabled)

	ok, detail := r.Broadcast("New note: x")
	assert.True(t, ok, "one successful delivery counts as success")
	assert.Equal(t, "delivered", detail)
	assert.Len(t, good.sent, 1)
	assert.Len(t, bad.sent, 1)
	assert.Empty(t, disabled.sent, "disabled channels never receive broadcasts")
}

func TestRouter_BroadcastAllFail(t *testing.T) {
	r := NewRouter()
	r.Register(newStubChannel("telegram", true, false))

	ok, detail := r.Broadcast("New note: x")
	assert.False(t, ok)
	assert.Equal(t, "telegram: send refused", detail)
}

func TestRouter_BroadcastNoChannels(t *testing.T) {
	r := NewRouter()
	ok, detail := r.Broadcast("New note: x")
	assert.False(t, ok)
	assert.Equal(t, "no chat channel enabled", detail)
}

func TestRouter_ClearMessages(t *testing.T) {
	r := NewRouter()
	ch := newStubChannel("discord", true, true)
	ch.clearCount = 4
	r.Register(ch)

	count, err := r.ClearMessages("discord", "123")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestRouter_ClearMessagesUnsupported(t *testing.T) {
	r := NewRouter()
	ch := newStubChannel("telegram", true, true)
	ch.clearErr = ErrNotSupported
	r.Register(ch)

	_, err := r.ClearMessages("telegram", "123")
	require.Error(t, err)
	assert.Equal(t, apperr.KindDisabled, apperr.KindOf(err))
	assert.Equal(t, "Clearing messages is not supported on telegram", apperr.Message(err))
}

func TestRouter_ClearMessagesUnknownChannel(t *testing.T) {
	r := NewRouter()
	_, err := r.ClearMessages("irc", "123")
	require.Error(t, err)
	assert.Equal(t, "Clearing messages is only available in chat", apperr.Message(err))
}

func TestRouter_StopAll(t *testing.T) {
	r := NewRouter()
	a := newStubChannel("discord", true, true)
	b := newStubChannel("telegram", false, true)
	r.Register(a)
	r.Register(b)

	require.NoError(t, r.StopAll())
	assert.True(t, a.stopped)
	assert.True(t, b.stopped)
}

func TestBaseChannel_EnqueueDropsWhenFull(t *testing.T) {
	b := NewBaseChannel("test", true)
	for range 200 {
		b.EnqueueMessage(&InboundMessage{Content: "x"})
	}
	assert.Len(t, b.incoming, 100, "a full queue drops instead of blocking")
}
