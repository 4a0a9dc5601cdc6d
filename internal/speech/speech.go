// Package speech defines the capability interfaces over the external
// text-to-speech and speech-to-text engines, plus exec-backed defaults.
// The engines themselves are thin, replaceable collaborators; everything
// above this package talks to the interfaces only.
package speech

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Speaker converts text to audible speech.
type Speaker interface {
	Speak(text string) error
}

// Recognizer captures one utterance and returns the recognized text.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// Runner executes an external command. Injectable for tests.
type Runner interface {
	Run(name string, args ...string) error
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

const termuxRoot = "/data/data/com.termux"

// OnTermux reports whether the process runs inside a Termux environment.
func OnTermux() bool {
	_, err := os.Stat(termuxRoot)
	return err == nil
}

// ExecSpeaker speaks through termux-tts-speak on Termux and espeak
// elsewhere, matching the platform's locally available TTS engine.
type ExecSpeaker struct {
	lang   string
	termux bool
	runner Runner
}

// NewSpeaker creates the platform speaker. lang is a locale such as "en" or
// "de-DE"; only the language part is passed to the engine.
func NewSpeaker(lang string) *ExecSpeaker {
	return &ExecSpeaker{lang: lang, termux: OnTermux(), runner: ExecRunner{}}
}

// NewSpeakerWithRunner is NewSpeaker with an injected runner.
func NewSpeakerWithRunner(lang string, termux bool, runner Runner) *ExecSpeaker {
	return &ExecSpeaker{lang: lang, termux: termux, runner: runner}
}

// Speak implements Speaker.
func (s *ExecSpeaker) Speak(text string) error {
	if s.termux {
		if err := s.runner.Run("termux-tts-speak", text); err != nil {
			return fmt.Errorf("termux-tts-speak failed: %w", err)
		}
		return nil
	}

	lang, _, _ := strings.Cut(s.lang, "-")
	if lang == "" {
		lang = "en"
	}
	if err := s.runner.Run("espeak", "-v", lang, text); err != nil {
		return fmt.Errorf("espeak failed: %w", err)
	}
	return nil
}

// ExecRecognizer shells out to a configured speech-to-text command and
// returns its trimmed stdout as the recognized utterance.
type ExecRecognizer struct {
	command string
}

// NewRecognizer creates a recognizer around the configured command line.
// An empty command yields a nil Recognizer, which disables the voice loop.
func NewRecognizer(command string) *ExecRecognizer {
	if command == "" {
		return nil
	}
	return &ExecRecognizer{command: command}
}

// Listen implements Recognizer.
func (r *ExecRecognizer) Listen(ctx context.Context) (string, error) {
	parts := strings.Fields(r.command)
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)

	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}
