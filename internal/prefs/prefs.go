// Package prefs persists the UI theme and named design presets.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cristianadrielbraun/qrstudio/internal/payload"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrInvalidTheme   = errors.New("invalid theme")
	ErrInvalidName    = errors.New("invalid preset name")
)

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts light or dark.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return ThemeLight, fmt.Errorf("%w: %q", ErrInvalidTheme, s)
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Preset is a saved design as stored by FileStore and RedisStore.
type Preset struct {
	Type              string  `json:"type"`
	Size              int     `json:"size"`
	ErrorCorrection   string  `json:"errorCorrection"`
	ForegroundColor   string  `json:"foregroundColor"`
	BackgroundColor   string  `json:"backgroundColor"`
	LogoSize          int     `json:"logoSize"`
	LogoBackground    string  `json:"logoBackground"`
	BackgroundOpacity float64 `json:"backgroundOpacity"`
	BackgroundFit     string  `json:"backgroundFit"`
}

// NewPreset captures the design settings of opts. Images are not stored.
func NewPreset(kind payload.Type, opts render.Options) Preset {
	opts = opts.Normalize()
	return Preset{
		Type:              string(kind),
		Size:              opts.Size,
		ErrorCorrection:   opts.Level.String(),
		ForegroundColor:   render.HexColor(opts.Foreground),
		BackgroundColor:   render.HexColor(opts.Background),
		LogoSize:          opts.LogoSizePercent,
		LogoBackground:    string(opts.LogoBackground),
		BackgroundOpacity: opts.BackgroundOpacity,
		BackgroundFit:     string(opts.BackgroundFit),
	}
}

// Apply overlays the preset onto base, keeping base's images and clip flag.
func (p Preset) Apply(base render.Options) (render.Options, error) {
	out := base
	var err error
	if p.Size > 0 {
		out.Size = p.Size
	}
	if out.Level, err = render.ParseLevel(p.ErrorCorrection); err != nil {
		return base, err
	}
	out.Foreground = render.ParseHexColor(p.ForegroundColor, base.Foreground)
	out.Background = render.ParseHexColor(p.BackgroundColor, base.Background)
	if p.LogoSize > 0 {
		out.LogoSizePercent = p.LogoSize
	}
	if out.LogoBackground, err = render.ParseLogoBackground(p.LogoBackground); err != nil {
		return base, err
	}
	out.BackgroundOpacity = p.BackgroundOpacity
	if out.BackgroundFit, err = render.ParseFit(p.BackgroundFit); err != nil {
		return base, err
	}
	out = out.Normalize()
	if err := out.Validate(); err != nil {
		return base, err
	}
	return out, nil
}

// Store persists preferences per scope. A scope is a browser session id or
// a fixed name for the CLI.
type Store interface {
	Theme(ctx context.Context, scope string) (Theme, error)
	SetTheme(ctx context.Context, scope string, t Theme) error
	Presets(ctx context.Context, scope string) (map[string]Preset, error)
	Preset(ctx context.Context, scope, name string) (Preset, error)
	SavePreset(ctx context.Context, scope, name string, p Preset) error
	DeletePreset(ctx context.Context, scope, name string) error
	Close() error
}

// CheckName trims a preset name and rejects empty or oversized ones.
func CheckName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 64 {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}
