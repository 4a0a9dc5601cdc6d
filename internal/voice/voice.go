// Package voice is the hands-free front-end: a capture loop that waits for
// the wake phrase and then records one command.
package voice

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/normanking/pia/internal/command"
	"github.com/normanking/pia/internal/config"
	"github.com/normanking/pia/internal/speech"
)

// retryDelay throttles the loop after a failed capture so a broken
// microphone does not spin the recognizer.
const retryDelay = 2 * time.Second

// Loop listens continuously. An utterance starting with the wake phrase is
// interpreted as a command; the bare wake phrase prompts for one.
type Loop struct {
	cfg         *config.Config
	interpreter *command.Interpreter
	recognizer  speech.Recognizer
	speaker     speech.Speaker
	logger      *slog.Logger
}

// New creates a voice loop.
func New(cfg *config.Config, interpreter *command.Interpreter, recognizer speech.Recognizer, speaker speech.Speaker, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		cfg:         cfg,
		interpreter: interpreter,
		recognizer:  recognizer,
		speaker:     speaker,
		logger:      logger.With("component", "voice"),
	}
}

// Run captures and dispatches utterances until ctx is cancelled or an exit
// command is spoken.
func (l *Loop) Run(ctx context.Context) error {
	l.speaker.Speak("Voice mode active")
	wake := strings.ToLower(strings.TrimSpace(l.cfg.WakePhrase))

	for ctx.Err() == nil {
		utterance, err := l.recognizer.Listen(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn("speech capture failed", "error", err)
			sleep(ctx, retryDelay)
			continue
		}

		heard := strings.ToLower(strings.TrimSpace(utterance))
		if heard == "" || !strings.HasPrefix(heard, wake) {
			continue
		}

		cmd := strings.TrimSpace(heard[len(wake):])
		if cmd == "" {
			// Bare wake phrase: acknowledge and capture the command itself.
			l.speaker.Speak("Yes?")
			cmd, err = l.recognizer.Listen(ctx)
			if err != nil {
				l.logger.Warn("command capture failed", "error", err)
				continue
			}
			cmd = strings.TrimSpace(cmd)
			if cmd == "" {
				continue
			}
		}

		res := l.interpreter.Interpret(ctx, cmd, command.Origin{Channel: "voice"})
		if res.Terminate {
			l.speaker.Speak("Goodbye!")
			return nil
		}
		if res.Text != "" {
			l.speaker.Speak(res.Text)
		}
	}
	return ctx.Err()
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
