package theme

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
	"unicode/utf8"
)

//go:embed assets/themes/*.txt
var embeddedAssets embed.FS

// templatePaths maps lowercase template keys to asset paths.
var templatePaths = map[string]string{
	"android":  "assets/themes/template_android_theme.txt",
	"ios":      "assets/themes/template_ios_theme.txt",
	"macos":    "assets/themes/template_macos_theme.txt",
	"tdesktop": "assets/themes/template_tdesktop_theme.txt",
}

// aliases maps alternative names onto template keys.
var aliases = map[string]string{
	"windows": "tdesktop",
}

// Store serves template text by platform key. Templates are read once when
// the store is created and never change afterwards.
type Store struct {
	templates map[string]string
}

// NewStore loads the templates compiled into the binary.
func NewStore() *Store {
	return NewStoreFS(embeddedAssets)
}

// NewStoreFS loads templates from fsys using the built-in key to path mapping.
// Assets that are missing or not valid UTF-8 are left out.
func NewStoreFS(fsys fs.FS) *Store {
	s := &Store{templates: make(map[string]string, len(templatePaths))}
	for key, path := range templatePaths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil || !utf8.Valid(data) {
			continue
		}
		s.templates[key] = string(data)
	}
	return s
}

// Get returns the template for a platform key, case-insensitively.
func (s *Store) Get(platform string) (string, bool) {
	key := strings.ToLower(platform)
	if target, ok := aliases[key]; ok {
		key = target
	}
	tmpl, ok := s.templates[key]
	return tmpl, ok
}

// Keys returns the loaded template keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.templates))
	for k := range s.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Missing returns the supported platforms that have no loaded template.
func (s *Store) Missing() []Platform {
	var missing []Platform
	for _, p := range Platforms {
		if _, ok := s.Get(p.TemplateKey()); !ok {
			missing = append(missing, p)
		}
	}
	return missing
}
