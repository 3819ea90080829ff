// Package style holds the small set of visual settings that cross the bridge:
// the light/dark theme and the four document padding edges.
package style

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ErrInvalidTheme is returned when a theme name is neither light nor dark.
var ErrInvalidTheme = errors.New("invalid theme")

// Theme selects the document color scheme.
type Theme int

const (
	Light Theme = iota
	Dark
)

func (t Theme) String() string {
	if t == Dark {
		return "dark"
	}
	return "light"
}

// ParseTheme parses "light" or "dark", ignoring case and surrounding space.
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return Light, nil
	case "dark":
		return Dark, nil
	}
	return Light, fmt.Errorf("%w: %q", ErrInvalidTheme, s)
}

// Appearance reports the ambient theme used when no override is given.
type Appearance func() Theme

// TerminalAppearance derives the ambient theme from the controlling
// terminal's background color.
func TerminalAppearance() Theme {
	if lipgloss.HasDarkBackground() {
		return Dark
	}
	return Light
}

// Fixed returns an Appearance that always reports t.
func Fixed(t Theme) Appearance {
	return func() Theme { return t }
}

// Effective resolves the theme to apply: an explicit override beats the
// ambient default. A nil ambient falls back to Light.
func Effective(override *Theme, ambient Appearance) Theme {
	if override != nil {
		return *override
	}
	if ambient == nil {
		return Light
	}
	return ambient()
}
