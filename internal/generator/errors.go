package generator

import (
	"errors"

	"github.com/cristianadrielbraun/qrstudio/internal/payload"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

var (
	// ErrValidationFailed is returned when the request does not pass input
	// validation.
	ErrValidationFailed = errors.New("validation failed")
	// ErrAlreadyInProgress is returned when a generation is requested while
	// another one is running. The caller should ignore it or retry later.
	ErrAlreadyInProgress = errors.New("generation already in progress")
)

// Message maps err to a one-line message suitable for end users. Internal
// details are never included.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidationFailed):
		return "Please enter valid data to generate QR code."
	case errors.Is(err, ErrAlreadyInProgress):
		return "A QR code is already being generated."
	case errors.Is(err, render.ErrNoEncoderAvailable):
		return "QR Code libraries are not available. Please try again later."
	case errors.Is(err, render.ErrEncodingTimeout):
		return "QR code generation timed out. Please try again."
	case errors.Is(err, render.ErrInvalidOptions):
		return "Invalid design options."
	case errors.Is(err, payload.ErrUnsupportedType):
		return "Unsupported QR code type."
	default:
		return "An error occurred while generating the QR code"
	}
}
