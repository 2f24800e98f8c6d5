// Package prefs keeps the small set of per-user UI preferences in
// ~/.config/shelf/prefs.toml. Preferences never block startup: a missing or
// unreadable file yields the defaults.
package prefs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/moby/sys/atomicwriter"
	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for shelf.
type Prefs struct {
	Theme string `toml:"theme"`
	// LastUsername pre-fills the login form.
	LastUsername string `toml:"last_username,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/shelf/prefs.toml"
	defaultTheme     = "Nightfox"
)

// Default returns the preferences used when nothing is stored.
func Default() Prefs {
	return Prefs{Theme: defaultTheme}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path, or the default path when empty. A
// missing or malformed file is not an error.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Default(), nil
	}

	p := Default()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Default(), nil
	}
	return p.normalize(), nil
}

func (p Prefs) normalize() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.LastUsername = strings.TrimSpace(p.LastUsername)
	return p
}

// Save writes preferences to path, creating directories as needed. The file
// is replaced atomically.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return errors.Wrap(err, "resolve path")
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return errors.Wrap(err, "create prefs dir")
	}

	data, err := toml.Marshal(p.normalize())
	if err != nil {
		return errors.Wrap(err, "marshal prefs")
	}
	if err := atomicwriter.WriteFile(resolved, data, 0o644); err != nil {
		return errors.Wrap(err, "write prefs")
	}
	return nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultPrefsPath
	}
	if rest, ok := strings.CutPrefix(path, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home dir")
		}
		path = filepath.Join(home, rest)
	}
	return filepath.Abs(path)
}
