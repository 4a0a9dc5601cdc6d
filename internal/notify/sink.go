// Package notify provides the notification sink abstraction: a destination
// that can deliver a short text to the user outside the request/response
// path (local speech synthesis or a remote chat channel).
//
// Sinks never return an error. Send reports a success flag and a
// human-readable detail string so callers can annotate their responses
// without having to handle delivery faults.
package notify

import (
	"log/slog"

	"github.com/normanking/pia/internal/speech"
)

// Sink delivers text to one destination.
type Sink interface {
	Name() string
	Send(text string) (ok bool, detail string)
}

// Broadcaster is the chat side of the sink abstraction, implemented by the
// channel router.
type Broadcaster interface {
	Broadcast(text string) (ok bool, detail string)
}

// SpeechSink speaks text through the local TTS engine.
type SpeechSink struct {
	speaker speech.Speaker
	logger  *slog.Logger
}

// NewSpeechSink creates a speech sink.
func NewSpeechSink(speaker speech.Speaker, logger *slog.Logger) *SpeechSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpeechSink{speaker: speaker, logger: logger.With("sink", "speech")}
}

// Name implements Sink.
func (s *SpeechSink) Name() string { return "speech" }

// Send implements Sink.
func (s *SpeechSink) Send(text string) (bool, string) {
	if err := s.speaker.Speak(text); err != nil {
		s.logger.Warn("speech delivery failed", "error", err)
		return false, err.Error()
	}
	return true, "spoken"
}

// ChatSink broadcasts text to the configured chat channel(s).
type ChatSink struct {
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewChatSink creates a chat sink over the channel router.
func NewChatSink(b Broadcaster, logger *slog.Logger) *ChatSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatSink{broadcaster: b, logger: logger.With("sink", "chat")}
}

// Name implements Sink.
func (c *ChatSink) Name() string { return "chat" }

// Send implements Sink.
func (c *ChatSink) Send(text string) (bool, string) {
	ok, detail := c.broadcaster.Broadcast(text)
	if !ok {
		c.logger.Warn("chat delivery failed", "detail", detail)
	}
	return ok, detail
}

// Result is the outcome of one sink delivery.
type Result struct {
	Sink   string
	OK     bool
	Detail string
}

// Set fans one text out to every registered sink. A failure on one sink
// never prevents delivery on another.
type Set struct {
	sinks []Sink
}

// NewSet creates a sink set.
func NewSet(sinks ...Sink) *Set {
	return &Set{sinks: sinks}
}

// Add appends a sink to the set.
func (s *Set) Add(sink Sink) {
	s.sinks = append(s.sinks, sink)
}

// Send delivers text through every sink and returns the per-sink outcomes.
func (s *Set) Send(text string) []Result {
	results := make([]Result, 0, len(s.sinks))
	for _, sink := range s.sinks {
		ok, detail := sink.Send(text)
		results = append(results, Result{Sink: sink.Name(), OK: ok, Detail: detail})
	}
	return results
}
