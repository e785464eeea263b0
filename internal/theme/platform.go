// Package theme holds the supported platforms and their embedded configuration templates.
package theme

import "strings"

// Platform identifies the client a theme is generated for.
type Platform string

// Supported platforms.
const (
	IOS     Platform = "iOS"
	Android Platform = "Android"
	MacOS   Platform = "macOS"
	Windows Platform = "Windows"
)

// Platforms lists every supported platform in menu order.
var Platforms = []Platform{IOS, Android, MacOS, Windows}

// String returns the display name.
func (p Platform) String() string {
	return string(p)
}

// TemplateKey returns the asset key of the platform's template.
// Windows themes target Telegram Desktop.
func (p Platform) TemplateKey() string {
	switch p {
	case IOS:
		return "ios"
	case Android:
		return "android"
	case MacOS:
		return "macos"
	case Windows:
		return "tdesktop"
	default:
		return strings.ToLower(string(p))
	}
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePlatform resolves a platform name case-insensitively.
func ParsePlatform(name string) (Platform, bool) {
	for _, p := range Platforms {
		if strings.EqualFold(name, string(p)) || strings.EqualFold(name, p.TemplateKey()) {
			return p, true
		}
	}
	return "", false
}
