// Package bot dispatches chat events to the session state machine and the
// theme synthesizer and replies through a Sender.
package bot

import (
	"strings"

	"github.com/knoguchi/themefather/internal/theme"
)

// Command is a bot command name, normalized to lower case.
type Command string

// Commands understood by the bot.
const (
	CommandStart              Command = "start"
	CommandCreateIOSTheme     Command = "createiostheme"
	CommandCreateAndroidTheme Command = "createandroidtheme"
	CommandCreateMacOSTheme   Command = "createmacostheme"
	CommandCreateWindowsTheme Command = "createwindowstheme"
	CommandReset              Command = "reset"
)

// CommandInfo describes a command for menus.
type CommandInfo struct {
	Name        string
	Description string
}

// Commands lists the commands in menu order with their camelCase names.
var Commands = []CommandInfo{
	{Name: "start", Description: "Start the bot and show available commands"},
	{Name: "createIosTheme", Description: "Create a theme for iOS"},
	{Name: "createAndroidTheme", Description: "Create a theme for Android"},
	{Name: "createMacosTheme", Description: "Create a theme for macOS"},
	{Name: "createWindowsTheme", Description: "Create a theme for Windows"},
	{Name: "reset", Description: "Reset the current theme creation process"},
}

// Platform returns the platform a creation command selects.
func (c Command) Platform() (theme.Platform, bool) {
	switch c {
	case CommandCreateIOSTheme:
		return theme.IOS, true
	case CommandCreateAndroidTheme:
		return theme.Android, true
	case CommandCreateMacOSTheme:
		return theme.MacOS, true
	case CommandCreateWindowsTheme:
		return theme.Windows, true
	default:
		return "", false
	}
}

// Event is one inbound chat event: a command or a free-text message.
type Event struct {
	UserID  int64
	ChatID  int64
	Command Command
	Text    string
}

// IsCommand reports whether the event carries a command.
func (e Event) IsCommand() bool {
	return e.Command != ""
}

// ParseEvent builds an event from message text. Text starting with "/" is a
// command; a "@botname" suffix and trailing arguments are dropped.
func ParseEvent(userID, chatID int64, text string) Event {
	ev := Event{UserID: userID, ChatID: chatID, Text: text}

	if !strings.HasPrefix(text, "/") {
		return ev
	}

	name := strings.TrimPrefix(text, "/")
	if i := strings.IndexAny(name, " \t\n"); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return ev
	}

	ev.Command = Command(strings.ToLower(name))
	ev.Text = ""
	return ev
}
