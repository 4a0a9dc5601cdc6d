// Package bot runs the chat gateway loop: it consumes the router's unified
// inbound stream, translates chat conventions (structured !/ commands and
// the wake phrase) into interpreter input, and replies on the originating
// channel.
package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/normanking/pia/internal/channels"
	"github.com/normanking/pia/internal/command"
	"github.com/normanking/pia/internal/config"
)

// wakeAck answers a bare wake phrase with no command attached.
const wakeAck = "Yes, I'm here!"

// commandAliases maps structured chat commands to interpreter input. The
// alias is the part after the !/ prefix; the remainder of the message is
// appended as the argument.
var commandAliases = map[string]string{
	"note":            "note add",
	"note_delete":     "note delete",
	"notes":           "note list",
	"reminder":        "reminder add",
	"reminder_delete": "reminder delete",
	"reminders":       "reminder list",
	"reminders_read":  "reminder read-aloud",
	"weather":         "weather",
	"time":            "time",
	"volume":          "volume",
	"clear":           "clear messages",
	"ask":             "ask",
	"help":            "help",
}

// Bot wires the channel router to the command interpreter.
type Bot struct {
	cfg         *config.Config
	router      *channels.Router
	interpreter *command.Interpreter
	logger      *slog.Logger
}

// New creates a bot.
func New(cfg *config.Config, router *channels.Router, interpreter *command.Interpreter, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		cfg:         cfg,
		router:      router,
		interpreter: interpreter,
		logger:      logger.With("component", "bot"),
	}
}

// Run consumes inbound chat messages until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.logger.Info("chat gateway started")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("chat gateway stopped")
			return
		case msg, ok := <-b.router.Incoming():
			if !ok {
				return
			}
			b.handle(ctx, msg)
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg *channels.InboundMessage) {
	input, ok := b.translate(msg.Content)
	if !ok {
		return
	}

	if input == "" {
		b.reply(msg, wakeAck)
		return
	}

	origin := command.Origin{Channel: msg.ChannelName, ChannelID: msg.ChannelID}
	res := b.interpreter.Interpret(ctx, input, origin)
	// A chat user cannot stop the process; exit only ends local sessions.
	if res.Terminate {
		b.reply(msg, "Goodbye!")
		return
	}
	if res.Text != "" {
		b.reply(msg, res.Text)
	}
}

// translate maps one chat message onto interpreter input. It returns
// ok=false for messages addressed to nobody: plain chatter without a
// command prefix or the wake phrase. An empty input with ok=true is the
// bare wake phrase.
func (b *Bot) translate(content string) (string, bool) {
	text := strings.TrimSpace(content)
	lower := strings.ToLower(text)

	if strings.HasPrefix(text, "!") || strings.HasPrefix(text, "/") {
		return expandAlias(text[1:]), true
	}

	wake := strings.ToLower(strings.TrimSpace(b.cfg.WakePhrase))
	if wake != "" && strings.HasPrefix(lower, wake) {
		return strings.TrimSpace(text[len(wake):]), true
	}
	return "", false
}

// expandAlias rewrites "note_delete 1" to "note delete 1" and so on.
// An unknown alias passes through unchanged and falls to the
// interpreter's unknown-command handling.
func expandAlias(text string) string {
	name, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	// Telegram appends @botname to group commands.
	name, _, _ = strings.Cut(name, "@")
	name = strings.ToLower(name)

	expanded, ok := commandAliases[name]
	if !ok {
		expanded = name
	}
	if rest = strings.TrimSpace(rest); rest != "" {
		return expanded + " " + rest
	}
	return expanded
}

// reply sends the response back on the channel the message came from.
func (b *Bot) reply(msg *channels.InboundMessage, text string) {
	ok, detail := b.router.Send(msg.ChannelName, msg.ChannelID, text)
	if !ok {
		b.logger.Warn("reply failed", "channel", msg.ChannelName, "detail", detail)
	}
}
