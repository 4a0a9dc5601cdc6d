package command

import "strings"

// HelpEntry describes one command for the help menu.
type HelpEntry struct {
	Command     string
	Description string
	Example     string
}

// HelpEntries returns the static help menu. Front-ends render it as plain
// text or as an interactive paginated view.
func HelpEntries() []HelpEntry {
	return []HelpEntry{
		{"note add <text>", "Adds a new note.", "note add buy groceries"},
		{"note delete <n>", "Deletes a note by its number.", "note delete 1"},
		{"note list", "Lists all stored notes.", "note list"},
		{"reminder add <text> at <YYYY-MM-DD HH:MM>", "Adds a reminder.", "reminder add Dentist at 2025-07-15 17:00"},
		{"reminder delete <n>", "Deletes a reminder by its number.", "reminder delete 1"},
		{"reminder list [YYYY-MM-DD]", "Lists all reminders, or those for a date.", "reminder list 2025-07-15"},
		{"reminder read-aloud", "Reads all reminders aloud.", "reminder read-aloud"},
		{"weather <city>", "Looks up the current weather.", "weather Berlin"},
		{"time", "Shows the current time.", "time"},
		{"volume <0-100|mute>", "Sets the volume or mutes audio.", "volume 50"},
		{"ask <question>", "Asks the AI backend a question.", "ask What is the capital of Germany?"},
		{"clear messages", "Deletes the assistant's messages in this chat.", "clear messages"},
		{"help", "Shows this help menu.", "help"},
		{"exit, :q, quit", "Leaves the shell.", "exit"},
	}
}

// renderHelp formats the help menu as plain text.
func renderHelp() string {
	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	for _, e := range HelpEntries() {
		sb.WriteString("\n")
		sb.WriteString(e.Command)
		sb.WriteString("\n  ")
		sb.WriteString(e.Description)
		sb.WriteString("\n  Example: ")
		sb.WriteString(e.Example)
		sb.WriteString("\n")
	}
	return sb.String()
}
