package prompt

import (
	"strings"
	"testing"

	"github.com/knoguchi/themefather/internal/llm"
	"github.com/knoguchi/themefather/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tmpl := "windowBg: #17212B\nwindowFg: #F5F5F5\n"
	desc := "a calm forest at dusk, mostly greens"

	msgs := Build(tmpl, desc)

	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, llm.RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[0].Content, tmpl)
	assert.Contains(t, msgs[1].Content, desc)
	assert.Contains(t, msgs[1].Content, tmpl)
}

func TestBuild_SystemRules(t *testing.T) {
	sys := Build("a: b", "x")[0].Content

	for _, rule := range []string{
		`"key: value"`,
		"6-digit hex",
		"whitespace and indentation",
		"explanatory text",
		"add or remove ANY lines",
		"after each colon",
	} {
		assert.Contains(t, sys, rule)
	}
}

func TestBuild_ArbitraryDescriptions(t *testing.T) {
	store := theme.NewStore()
	tmpl, ok := store.Get("ios")
	require.True(t, ok)

	for _, desc := range []string{"", "тёмная тема 🌙", strings.Repeat("neon ", 2000), "%s %d {{}}"} {
		msgs := Build(tmpl, desc)
		require.Len(t, msgs, 2)
		assert.Contains(t, msgs[0].Content, tmpl)
		assert.Contains(t, msgs[1].Content, desc)
	}
}

func TestPlatformTexts(t *testing.T) {
	assert.Equal(t,
		"Starting drawing the theme for macOS! Please describe how you want your theme to look:",
		PlatformPrompt(theme.MacOS))
	assert.Contains(t, Acknowledgement(theme.Android), "creating a Android theme")
	assert.Contains(t, WelcomeMessage, "/createWindowsTheme")
	assert.Contains(t, ResetMessage, "/reset")
}
