// Package shell is the line-oriented terminal front-end.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/normanking/pia/internal/command"
	"github.com/normanking/pia/internal/speech"
)

// Shell reads commands from an input stream and prints the responses.
// When a speaker is set, every response is also spoken.
type Shell struct {
	interpreter *command.Interpreter
	speaker     speech.Speaker
	in          io.Reader
	out         io.Writer
	logger      *slog.Logger
}

// New creates a shell front-end. speaker may be nil.
func New(interpreter *command.Interpreter, speaker speech.Speaker, in io.Reader, out io.Writer, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{
		interpreter: interpreter,
		speaker:     speaker,
		in:          in,
		out:         out,
		logger:      logger.With("component", "shell"),
	}
}

// Run reads input lines until EOF, an exit command or ctx cancellation.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Pia ready. Type 'help' for commands, 'exit' to quit.")

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		res := s.interpreter.Interpret(ctx, line, command.Origin{Channel: "shell"})
		if res.Terminate {
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}

		fmt.Fprintln(s.out, res.Text)
		if s.speaker != nil {
			if err := s.speaker.Speak(res.Text); err != nil {
				s.logger.Warn("speech output failed", "error", err)
			}
		}
	}
}
