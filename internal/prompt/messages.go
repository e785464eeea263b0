package prompt

import (
	"fmt"

	"github.com/knoguchi/themefather/internal/theme"
)

const commandList = `Available commands:
/createIosTheme     - Create theme for iOS
/createAndroidTheme - Create theme for Android
/createMacosTheme   - Create theme for macOS
/createWindowsTheme - Create theme for Windows
/reset              - Reset current theme creation process`

// WelcomeMessage is sent on /start and for unknown commands.
const WelcomeMessage = "Welcome to Theme Father Bot! 🎨\n" +
	"I can help you create Telegram themes for different platforms.\n\n" +
	commandList

// ResetMessage is sent on /reset.
const ResetMessage = "Theme creation process has been reset.\n\n" + commandList

// FailureMessage is sent when a theme could not be generated.
const FailureMessage = "Sorry, I couldn't create your theme this time. " +
	"Pick a platform again to retry."

// PlatformPrompt asks the user to describe the theme for p.
func PlatformPrompt(p theme.Platform) string {
	return fmt.Sprintf("Starting drawing the theme for %s! Please describe how you want your theme to look:", p)
}

// Acknowledgement confirms a description was received.
func Acknowledgement(p theme.Platform) string {
	return fmt.Sprintf("Got your description! I'm now creating a %s theme based on your prompt \n\n"+
		"Processing, this may take a few minutes...", p)
}

// EmptyThemeMessage is sent when the model finished without producing any text.
const EmptyThemeMessage = "The model finished without producing a theme. " +
	"Try describing it differently."

// BusyMessage is sent when every synthesis slot is taken.
const BusyMessage = "I'm drawing too many themes right now. " +
	"Please pick a platform again in a minute."
