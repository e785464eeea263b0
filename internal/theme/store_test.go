package theme

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetCaseInsensitive(t *testing.T) {
	store := NewStore()

	for _, key := range []string{"android", "ios", "macos", "tdesktop"} {
		for _, variant := range []string{key, strings.ToUpper(key), strings.ToUpper(key[:1]) + key[1:]} {
			tmpl, ok := store.Get(variant)
			require.True(t, ok, "template %q should exist", variant)
			assert.NotEmpty(t, tmpl)
		}
	}
}

func TestStore_GetUnknown(t *testing.T) {
	store := NewStore()

	for _, key := range []string{"", "linux", "web", "ios "} {
		_, ok := store.Get(key)
		assert.False(t, ok, "unexpected template for %q", key)
	}
}

func TestStore_EveryPlatformHasTemplate(t *testing.T) {
	store := NewStore()

	assert.Empty(t, store.Missing())
	assert.Equal(t, []string{"android", "ios", "macos", "tdesktop"}, store.Keys())

	win, ok := store.Get("Windows")
	require.True(t, ok)
	desk, _ := store.Get("tdesktop")
	assert.Equal(t, desk, win)
}

func TestStore_TemplatesAreKeyValueLines(t *testing.T) {
	store := NewStore()

	for _, key := range store.Keys() {
		tmpl, _ := store.Get(key)
		for i, line := range strings.Split(strings.TrimRight(tmpl, "\n"), "\n") {
			assert.Contains(t, line, ": ", "%s line %d is not key: value", key, i+1)
		}
	}
}

func TestNewStoreFS_SkipsMissingAndInvalid(t *testing.T) {
	fsys := fstest.MapFS{
		"assets/themes/template_ios_theme.txt":     {Data: []byte("bg: #000000\n")},
		"assets/themes/template_android_theme.txt": {Data: []byte{0xff, 0xfe, 0x00}},
	}

	store := NewStoreFS(fsys)

	tmpl, ok := store.Get("IOS")
	require.True(t, ok)
	assert.Equal(t, "bg: #000000\n", tmpl)

	_, ok = store.Get("android")
	assert.False(t, ok, "non UTF-8 asset must be absent")

	_, ok = store.Get("macos")
	assert.False(t, ok, "missing asset must be absent")

	assert.Equal(t, []Platform{Android, MacOS, Windows}, store.Missing())
}

func TestParsePlatform(t *testing.T) {
	tests := map[string]Platform{
		"ios":      IOS,
		"iOS":      IOS,
		"ANDROID":  Android,
		"macos":    MacOS,
		"windows":  Windows,
		"tdesktop": Windows,
	}
	for in, want := range tests {
		got, ok := ParsePlatform(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParsePlatform("symbian")
	assert.False(t, ok)
}
