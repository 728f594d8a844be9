package model

import (
	"strconv"
	"strings"
)

// ThemeMode is the user's colour scheme preference.
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

// Settings are the user's global preferences, cached under globalSettings.
type Settings struct {
	Currency        string    `json:"currency"`
	Locale          string    `json:"locale"`
	Theme           ThemeMode `json:"theme"`
	AccentColor     string    `json:"accentColor"`
	FontScale       float64   `json:"fontScale"`
	RefreshInterval int       `json:"refreshInterval"` // minutes
}

// DefaultSettings returns the settings used before anything is cached.
func DefaultSettings() Settings {
	return Settings{
		Currency:        "USD",
		Locale:          "en-US",
		Theme:           ThemeSystem,
		AccentColor:     "#3b82f6",
		FontScale:       1.0,
		RefreshInterval: 60,
	}
}

// StyleDescriptor is what a rendering layer needs to theme itself. It is
// derived from Settings and never applied by this module.
type StyleDescriptor struct {
	ClassNames []string          `json:"classNames"`
	Variables  map[string]string `json:"variables"`
}

var palettes = map[ThemeMode]map[string]string{
	ThemeLight: {"--bg": "#ffffff", "--fg": "#111827", "--muted": "#6b7280"},
	ThemeDark:  {"--bg": "#111827", "--fg": "#f9fafb", "--muted": "#9ca3af"},
}

// Style maps settings to a style descriptor. systemDark is the current
// system preference, consulted only when Theme is "system".
func (s Settings) Style(systemDark bool) StyleDescriptor {
	mode := s.Theme
	if mode != ThemeLight && mode != ThemeDark {
		mode = ThemeLight
		if systemDark {
			mode = ThemeDark
		}
	}

	vars := make(map[string]string, len(palettes[mode])+2)
	for k, v := range palettes[mode] {
		vars[k] = v
	}
	accent := s.AccentColor
	if !strings.HasPrefix(accent, "#") {
		accent = DefaultSettings().AccentColor
	}
	vars["--accent"] = accent
	scale := s.FontScale
	if scale <= 0 {
		scale = 1.0
	}
	vars["--font-scale"] = strconv.FormatFloat(scale, 'f', -1, 64)

	return StyleDescriptor{
		ClassNames: []string{"theme-" + string(mode)},
		Variables:  vars,
	}
}
