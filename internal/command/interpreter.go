// Package command implements the textual command interpreter shared by all
// front-ends.
//
// Commands are not parsed grammatically: input is lowercased and trimmed,
// then matched by keyword prefix in a fixed priority order, with arguments
// extracted by fixed string splits. Every call yields a response text; a
// failing operation is converted into its user-facing message right here
// and never escapes as a fault.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/normanking/pia/internal/apperr"
	"github.com/normanking/pia/internal/config"
	"github.com/normanking/pia/internal/speech"
	"github.com/normanking/pia/internal/store"
)

// Origin identifies where a command came from, so responses and
// administrative commands can be routed back correctly.
type Origin struct {
	Channel   string // "shell", "tui", "voice", or a chat adapter name
	ChannelID string // platform channel/chat id for chat origins
}

// IsChat reports whether the origin is a chat channel.
func (o Origin) IsChat() bool {
	return o.ChannelID != ""
}

// Result is the interpreter's answer to one input line.
type Result struct {
	Text      string
	Terminate bool
}

// WeatherService looks up current conditions for a city.
type WeatherService interface {
	Current(ctx context.Context, city string) (string, error)
}

// AIService answers free-form questions.
type AIService interface {
	Enabled() bool
	Query(ctx context.Context, prompt string) (string, error)
}

// VolumeService controls the platform audio volume.
type VolumeService interface {
	Set(level int) error
	Mute() error
}

// Chat is the interpreter's view of the chat channels: note/reminder
// broadcasts and the administrative clear-messages operation.
type Chat interface {
	Enabled() bool
	Broadcast(text string) (ok bool, detail string)
	ClearMessages(channel, channelID string) (int, error)
}

// Interpreter dispatches one line of input to a domain operation. It holds
// no mutable state of its own; everything it changes lives in the store.
type Interpreter struct {
	cfg     *config.Config
	store   *store.Store
	weather WeatherService
	ai      AIService
	volume  VolumeService
	speaker speech.Speaker
	chat    Chat
	logger  *slog.Logger
	now     func() time.Time
}

// Options wires an Interpreter.
type Options struct {
	Config  *config.Config
	Store   *store.Store
	Weather WeatherService
	AI      AIService
	Volume  VolumeService
	Speaker speech.Speaker
	Chat    Chat
	Logger  *slog.Logger
	Now     func() time.Time
}

// New creates an interpreter.
func New(opts Options) *Interpreter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Interpreter{
		cfg:     opts.Config,
		store:   opts.Store,
		weather: opts.Weather,
		ai:      opts.AI,
		volume:  opts.Volume,
		speaker: opts.Speaker,
		chat:    opts.Chat,
		logger:  logger.With("component", "interpreter"),
		now:     now,
	}
}

const unknownCommand = "Unknown command. Use 'help' for a list of commands."

// Interpret normalizes raw input, dispatches it and returns the response.
// The termination signal is consumed by the front-end's input loop, never
// by the interpreter itself.
func (i *Interpreter) Interpret(ctx context.Context, raw string, origin Origin) Result {
	cmd := strings.ToLower(strings.TrimSpace(raw))
	i.logger.Debug("interpreting", "command", cmd, "origin", origin.Channel)

	switch {
	case cmd == "exit" || cmd == ":q" || cmd == "quit":
		return Result{Terminate: true}

	case strings.HasPrefix(cmd, "note add"):
		return Result{Text: i.addNote(argAfter(cmd, "note add"))}

	case strings.HasPrefix(cmd, "note delete"):
		return Result{Text: i.deleteNote(argAfter(cmd, "note delete"))}

	case cmd == "note list" || cmd == "notes":
		return Result{Text: i.listNotes()}

	case strings.HasPrefix(cmd, "reminder add"):
		return Result{Text: i.addReminder(argAfter(cmd, "reminder add"))}

	case strings.HasPrefix(cmd, "reminder delete"):
		return Result{Text: i.deleteReminder(argAfter(cmd, "reminder delete"))}

	case cmd == "reminders":
		return Result{Text: i.listReminders("")}

	case strings.HasPrefix(cmd, "reminder list"):
		return Result{Text: i.listReminders(argAfter(cmd, "reminder list"))}

	case cmd == "reminder read-aloud":
		return Result{Text: i.readRemindersAloud()}

	case strings.HasPrefix(cmd, "weather"):
		return Result{Text: i.getWeather(ctx, argAfter(cmd, "weather"))}

	case cmd == "time":
		return Result{Text: fmt.Sprintf("The current time is %s", i.now().Format("15:04"))}

	case strings.HasPrefix(cmd, "volume"):
		return Result{Text: i.setVolume(argAfter(cmd, "volume"))}

	case cmd == "clear messages":
		return Result{Text: i.clearMessages(origin)}

	case cmd == "help":
		return Result{Text: renderHelp()}

	case strings.HasPrefix(cmd, "ask"):
		return Result{Text: i.queryAI(ctx, argAfter(cmd, "ask"))}

	default:
		if i.cfg.FallbackToAI && i.ai != nil && i.ai.Enabled() {
			return Result{Text: i.queryAI(ctx, cmd)}
		}
		return Result{Text: unknownCommand}
	}
}

// argAfter strips the matched keyword prefix and returns the remainder.
func argAfter(cmd, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(cmd, prefix))
}

func (i *Interpreter) addNote(content string) string {
	if content == "" {
		return "No note content provided"
	}

	note, err := i.store.AddNote(content, i.now())
	if err != nil {
		i.logger.Error("failed to save note", "error", err)
		return apperr.Message(err)
	}

	if i.chat != nil && i.chat.Enabled() {
		ok, detail := i.chat.Broadcast(fmt.Sprintf("New note: %s", note.Content))
		if ok {
			return fmt.Sprintf("Note added and sent to chat: %s", note.Content)
		}
		return fmt.Sprintf("Note added (chat not sent: %s): %s", detail, note.Content)
	}
	return fmt.Sprintf("Note added: %s", note.Content)
}

func (i *Interpreter) deleteNote(arg string) string {
	pos, err := strconv.Atoi(arg)
	if err != nil {
		return "Invalid note index"
	}

	note, err := i.store.DeleteNote(pos)
	if err != nil {
		return apperr.Message(err)
	}
	return fmt.Sprintf("Note deleted: %s", note.Content)
}

func (i *Interpreter) listNotes() string {
	notes, err := i.store.Notes()
	if err != nil {
		i.logger.Error("failed to load notes", "error", err)
		return apperr.Message(err)
	}
	if len(notes) == 0 {
		return "No notes stored"
	}

	lines := make([]string, 0, len(notes))
	for n, note := range notes {
		lines = append(lines, fmt.Sprintf("%d. %s (%s)", n+1, note.Content, note.Timestamp))
	}
	return strings.Join(lines, "\n")
}

const reminderUsage = "Invalid format (expected: reminder add <text> at <YYYY-MM-DD HH:MM>)"

func (i *Interpreter) addReminder(arg string) string {
	// The due time follows the last " at " so the text itself may contain
	// the separator word.
	sep := strings.LastIndex(arg, " at ")
	if sep < 0 {
		return reminderUsage
	}
	content := strings.TrimSpace(arg[:sep])
	due := strings.TrimSpace(arg[sep+len(" at "):])
	if content == "" {
		return reminderUsage
	}

	reminder, err := i.store.AddReminder(content, due)
	if err != nil {
		return apperr.Message(err)
	}

	if i.chat != nil && i.chat.Enabled() {
		ok, detail := i.chat.Broadcast(fmt.Sprintf("New reminder: %s at %s", reminder.Content, reminder.DateTime))
		if ok {
			return fmt.Sprintf("Reminder added and sent to chat: %s", reminder.Content)
		}
		return fmt.Sprintf("Reminder added (chat not sent: %s): %s", detail, reminder.Content)
	}
	return fmt.Sprintf("Reminder added: %s", reminder.Content)
}

func (i *Interpreter) deleteReminder(arg string) string {
	pos, err := strconv.Atoi(arg)
	if err != nil {
		return "Invalid reminder index"
	}

	reminder, err := i.store.DeleteReminder(pos)
	if err != nil {
		return apperr.Message(err)
	}
	return fmt.Sprintf("Reminder deleted: %s", reminder.Content)
}

func (i *Interpreter) listReminders(dateFilter string) string {
	reminders, err := i.store.Reminders()
	if err != nil {
		i.logger.Error("failed to load reminders", "error", err)
		return apperr.Message(err)
	}
	if len(reminders) == 0 {
		return "No reminders stored"
	}

	if dateFilter != "" {
		if !store.ValidDate(dateFilter) {
			return "Invalid date format (YYYY-MM-DD)"
		}
		filtered := reminders[:0:0]
		for _, r := range reminders {
			if strings.HasPrefix(r.DateTime, dateFilter) {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) == 0 {
			return fmt.Sprintf("No reminders for %s", dateFilter)
		}
		reminders = filtered
	}

	lines := make([]string, 0, len(reminders))
	for n, r := range reminders {
		lines = append(lines, fmt.Sprintf("%d. %s (%s)", n+1, r.Content, r.DateTime))
	}
	return strings.Join(lines, "\n")
}

func (i *Interpreter) readRemindersAloud() string {
	reminders, err := i.store.Reminders()
	if err != nil {
		return apperr.Message(err)
	}
	if len(reminders) == 0 {
		return "No reminders stored"
	}

	parts := make([]string, 0, len(reminders))
	for _, r := range reminders {
		parts = append(parts, fmt.Sprintf("%s at %s", r.Content, r.DateTime))
	}

	if err := i.speaker.Speak("Your reminders: " + strings.Join(parts, "; ")); err != nil {
		return fmt.Sprintf("Read-aloud failed: %v", err)
	}
	return "Reminders read aloud"
}

func (i *Interpreter) getWeather(ctx context.Context, arg string) string {
	city := strings.TrimSpace(strings.TrimPrefix(arg, "in "))
	if city == "" {
		return "No city given (e.g. weather Berlin)"
	}

	report, err := i.weather.Current(ctx, city)
	if err != nil {
		return apperr.Message(err)
	}
	return report
}

func (i *Interpreter) setVolume(arg string) string {
	if arg == "mute" {
		if err := i.volume.Mute(); err != nil {
			return apperr.Message(err)
		}
		return "Audio muted"
	}

	level, err := strconv.Atoi(arg)
	if err != nil {
		return "Invalid volume level (0-100 or 'mute')"
	}
	if err := i.volume.Set(level); err != nil {
		return apperr.Message(err)
	}
	return fmt.Sprintf("Volume set to %d%%", level)
}

func (i *Interpreter) clearMessages(origin Origin) string {
	if i.chat == nil || !origin.IsChat() {
		return "Clearing messages is only available in chat"
	}

	count, err := i.chat.ClearMessages(origin.Channel, origin.ChannelID)
	if err != nil {
		return apperr.Message(err)
	}
	return fmt.Sprintf("%d messages deleted", count)
}

func (i *Interpreter) queryAI(ctx context.Context, prompt string) string {
	if prompt == "" {
		return "No question given (e.g. ask What is the capital of Germany?)"
	}
	if i.ai == nil {
		return "AI is disabled"
	}

	answer, err := i.ai.Query(ctx, prompt)
	if err != nil {
		return apperr.Message(err)
	}
	if answer == "" {
		return "AI returned no completion"
	}
	return answer
}
