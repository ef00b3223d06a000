// Package theme holds the colour presets of the terminal client and
// persists the chosen one as TOML.
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	ModeLight = "light"
	ModeDark  = "dark"
)

type Theme struct {
	Name        string `toml:"name"`
	Mode        string `toml:"mode"`
	Bg          string `toml:"bg"`
	Card        string `toml:"card"`
	Text        string `toml:"text"`
	Muted       string `toml:"muted"`
	Border      string `toml:"border"`
	Primary     string `toml:"primary"`
	PrimaryText string `toml:"primary_text"`
	Success     string `toml:"success"`
	Danger      string `toml:"danger"`
	Chip        string `toml:"chip"`
}

var presets = []Theme{
	{
		Name: "Default (blue)", Mode: ModeLight,
		Bg: "#f6f7fb", Card: "#ffffff", Text: "#111827", Muted: "#6b7280", Border: "#e5e7eb",
		Primary: "#2563eb", PrimaryText: "#ffffff", Success: "#16a34a", Danger: "#ef4444", Chip: "#f3f4f6",
	},
	{
		Name: "Green/red", Mode: ModeLight,
		Bg: "#f7faf9", Card: "#ffffff", Text: "#0f172a", Muted: "#64748b", Border: "#e2e8f0",
		Primary: "#1d4ed8", PrimaryText: "#ffffff", Success: "#22c55e", Danger: "#ef4444", Chip: "#f1f5f9",
	},
	{
		Name: "Dark (navy)", Mode: ModeDark,
		Bg: "#0b1220", Card: "#0f1b2d", Text: "#e5e7eb", Muted: "#94a3b8", Border: "#1f2a44",
		Primary: "#3b82f6", PrimaryText: "#0b1220", Success: "#22c55e", Danger: "#fb7185", Chip: "#111c2f",
	},
	{
		Name: "Sunset", Mode: ModeLight,
		Bg: "#fff7ed", Card: "#ffffff", Text: "#111827", Muted: "#6b7280", Border: "#fde68a",
		Primary: "#f97316", PrimaryText: "#ffffff", Success: "#16a34a", Danger: "#db2777", Chip: "#ffedd5",
	},
}

// Presets returns a copy of the built-in themes. The first one is the default.
func Presets() []Theme {
	out := make([]Theme, len(presets))
	copy(out, presets)
	return out
}

func Default() Theme {
	return presets[0]
}

// Next returns the preset after the one named name, wrapping around.
// Unknown names yield the first preset.
func Next(name string) Theme {
	for i, p := range presets {
		if p.Name == name {
			return presets[(i+1)%len(presets)]
		}
	}
	return presets[0]
}

// ToggleMode flips between light and dark.
func (t Theme) ToggleMode() Theme {
	if t.Mode == ModeDark {
		t.Mode = ModeLight
	} else {
		t.Mode = ModeDark
	}
	return t
}

// Editable lists the colours that can be changed on top of a preset.
var Editable = []string{"primary", "text", "success", "danger"}

// Color returns the value of one of the Editable colours.
func (t Theme) Color(field string) string {
	switch field {
	case "primary":
		return t.Primary
	case "text":
		return t.Text
	case "success":
		return t.Success
	case "danger":
		return t.Danger
	}
	return ""
}

// WithColor sets one of the Editable colours. value is a #rgb or #rrggbb hex
// colour, the leading # optional; it is stored as lowercase #rrggbb.
func (t Theme) WithColor(field, value string) (Theme, error) {
	if !strings.HasPrefix(value, "#") {
		value = "#" + value
	}
	c, err := colorful.Hex(value)
	if err != nil {
		return t, fmt.Errorf("%s: invalid colour %q", field, value)
	}
	hex := c.Hex()

	switch field {
	case "primary":
		t.Primary = hex
	case "text":
		t.Text = hex
	case "success":
		t.Success = hex
	case "danger":
		t.Danger = hex
	default:
		return t, fmt.Errorf("unknown colour %q", field)
	}
	return t, nil
}

func (t Theme) Dark() bool {
	return t.Mode == ModeDark
}

// DefaultPath is theme.toml in the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "todoctl", "theme.toml"), nil
}

// Load reads a theme file. A missing or unreadable file yields the default theme
// together with the error, so callers may ignore it.
func Load(path string) (Theme, error) {
	t := Default()
	if _, err := toml.DecodeFile(path, &t); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("load theme %s: %w", path, err)
	}
	if t.Mode != ModeLight && t.Mode != ModeDark {
		t.Mode = ModeLight
	}
	return t, nil
}

func Save(path string, t Theme) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(t); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return f.Close()
}
