package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
)

var (
	// ErrEncodingTimeout is returned when an encoder produced no artifact
	// within its polling budget.
	ErrEncodingTimeout = errors.New("encoding timed out")

	// ErrNoEncoderAvailable is returned when every configured encoder failed
	// or none was configured.
	ErrNoEncoderAvailable = errors.New("no QR encoder available")
)

// Artifact is the raw output of a Backend: an image covering exactly the
// module grid (no quiet zone), and the module count per side.
type Artifact struct {
	Image   image.Image
	Modules int
}

// Backend turns a payload into a matrix image. Implementations are chosen
// once at startup.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Scannable reports whether output is a conformant QR symbol.
	Scannable() bool
	Encode(ctx context.Context, payload string, opts Options) (Artifact, error)
}

// Backend names accepted by NewBackend.
const (
	BackendYeqown  = "yeqown"
	BackendSkip2   = "skip2"
	BackendPattern = "pattern"
)

// NewBackend builds the named backend. moduleWidth is the pixel size of one
// module in the intermediate artifact.
func NewBackend(name string, moduleWidth int, poll PollConfig) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendYeqown:
		return &YeqownBackend{ModuleWidth: moduleWidth, Poll: poll}, nil
	case BackendSkip2:
		return &Skip2Backend{ModuleWidth: moduleWidth}, nil
	case BackendPattern:
		return &PatternBackend{ModuleWidth: moduleWidth}, nil
	}
	return nil, fmt.Errorf("unknown QR backend %q", name)
}
