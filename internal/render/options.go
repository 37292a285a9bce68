package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
)

// ErrInvalidOptions is returned when Options fail validation.
var ErrInvalidOptions = errors.New("invalid render options")

// MaxSize caps the target edge length in pixels.
const MaxSize = 4096

// DefaultLogoSizePercent is the logo edge as a percentage of the surface.
const DefaultLogoSizePercent = 20

// DefaultBackgroundOpacity is applied when no opacity is configured.
const DefaultBackgroundOpacity = 0.5

// Level is the error-correction level, ordered from least to most redundancy.
type Level int

const (
	LevelL Level = iota // ~7% recovery
	LevelM              // ~15% recovery
	LevelQ              // ~25% recovery
	LevelH              // ~30% recovery
)

// String returns the single-letter level name.
func (l Level) String() string {
	switch l {
	case LevelL:
		return "L"
	case LevelM:
		return "M"
	case LevelQ:
		return "Q"
	case LevelH:
		return "H"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel accepts L, M, Q or H in any case. Empty input yields M.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return LevelM, nil
	case "L":
		return LevelL, nil
	case "M":
		return LevelM, nil
	case "Q":
		return LevelQ, nil
	case "H":
		return LevelH, nil
	}
	return LevelM, fmt.Errorf("%w: unknown error correction level %q", ErrInvalidOptions, s)
}

// Fit is the strategy used to place a background image on the surface.
type Fit string

const (
	FitCover   Fit = "cover"   // uniform scale to fill, overflow cropped, centered
	FitContain Fit = "contain" // uniform scale to fit, centered, letterboxed
	FitStretch Fit = "stretch" // non-uniform scale to the exact surface size
)

// ParseFit accepts cover, contain or stretch. "fill" is an alias of stretch.
func ParseFit(s string) (Fit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cover":
		return FitCover, nil
	case "contain":
		return FitContain, nil
	case "stretch", "fill":
		return FitStretch, nil
	}
	return FitCover, fmt.Errorf("%w: unknown background fit %q", ErrInvalidOptions, s)
}

// LogoBackground is the backing shape drawn behind a logo.
type LogoBackground string

const (
	LogoNone    LogoBackground = "none"
	LogoWhite   LogoBackground = "white"
	LogoBlack   LogoBackground = "black"
	LogoRounded LogoBackground = "rounded" // white, rounded corners, padded
)

// ParseLogoBackground accepts none, white, black or rounded.
func ParseLogoBackground(s string) (LogoBackground, error) {
	switch LogoBackground(strings.ToLower(strings.TrimSpace(s))) {
	case "", LogoNone:
		return LogoNone, nil
	case LogoWhite:
		return LogoWhite, nil
	case LogoBlack:
		return LogoBlack, nil
	case LogoRounded:
		return LogoRounded, nil
	}
	return LogoNone, fmt.Errorf("%w: unknown logo background %q", ErrInvalidOptions, s)
}

// Options controls a single render and composite pass. Logo and
// BackgroundImage are borrowed; they are never modified.
type Options struct {
	Size       int
	Level      Level
	Foreground color.RGBA
	Background color.RGBA

	Logo            image.Image
	LogoSizePercent int
	LogoBackground  LogoBackground
	LogoClip        bool

	BackgroundImage   image.Image
	BackgroundOpacity float64
	BackgroundFit     Fit
}

// DefaultOptions mirrors the web UI defaults: 256px, level M, black on white.
func DefaultOptions() Options {
	return Options{
		Size:              256,
		Level:             LevelM,
		Foreground:        color.RGBA{0, 0, 0, 255},
		Background:        color.RGBA{255, 255, 255, 255},
		LogoSizePercent:   DefaultLogoSizePercent,
		LogoBackground:    LogoNone,
		BackgroundOpacity: DefaultBackgroundOpacity,
		BackgroundFit:     FitCover,
	}
}

// Normalize fills unset optional fields and forces both colors opaque.
func (o Options) Normalize() Options {
	o.Foreground.A = 255
	o.Background.A = 255
	if o.LogoSizePercent == 0 {
		o.LogoSizePercent = DefaultLogoSizePercent
	}
	if o.LogoBackground == "" {
		o.LogoBackground = LogoNone
	}
	if o.BackgroundFit == "" {
		o.BackgroundFit = FitCover
	}
	return o
}

// Validate checks ranges. It expects normalized options.
func (o Options) Validate() error {
	if o.Size <= 0 || o.Size > MaxSize {
		return fmt.Errorf("%w: size must be between 1 and %d, got %d", ErrInvalidOptions, MaxSize, o.Size)
	}
	if o.Level < LevelL || o.Level > LevelH {
		return fmt.Errorf("%w: unknown error correction level %d", ErrInvalidOptions, int(o.Level))
	}
	if o.Foreground == o.Background {
		return fmt.Errorf("%w: foreground and background colors must differ", ErrInvalidOptions)
	}
	if o.LogoSizePercent < 1 || o.LogoSizePercent > 100 {
		return fmt.Errorf("%w: logo size must be between 1 and 100 percent, got %d", ErrInvalidOptions, o.LogoSizePercent)
	}
	if o.BackgroundOpacity < 0 || o.BackgroundOpacity > 1 {
		return fmt.Errorf("%w: background opacity must be within [0,1], got %g", ErrInvalidOptions, o.BackgroundOpacity)
	}
	switch o.BackgroundFit {
	case FitCover, FitContain, FitStretch:
	default:
		return fmt.Errorf("%w: unknown background fit %q", ErrInvalidOptions, o.BackgroundFit)
	}
	switch o.LogoBackground {
	case LogoNone, LogoWhite, LogoBlack, LogoRounded:
	default:
		return fmt.Errorf("%w: unknown logo background %q", ErrInvalidOptions, o.LogoBackground)
	}
	return nil
}
