package render

import (
	"context"
	"fmt"

	skip2 "github.com/skip2/go-qrcode"
)

// Skip2Backend encodes with github.com/skip2/go-qrcode. It is synchronous.
type Skip2Backend struct {
	ModuleWidth int
}

func (b *Skip2Backend) Name() string    { return BackendSkip2 }
func (b *Skip2Backend) Scannable() bool { return true }

// Encode implements Backend.
func (b *Skip2Backend) Encode(ctx context.Context, payload string, opts Options) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	q, err := skip2.New(payload, skip2Level(opts.Level))
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to generate QR code: %w", err)
	}
	q.DisableBorder = true
	q.ForegroundColor = opts.Foreground
	q.BackgroundColor = opts.Background

	modules := len(q.Bitmap())
	if modules == 0 {
		return Artifact{}, fmt.Errorf("empty QR matrix")
	}
	width := b.ModuleWidth
	if width <= 0 {
		width = 8
	}
	// A negative size asks for a fixed pixel count per module.
	return Artifact{Image: q.Image(-width), Modules: modules}, nil
}

func skip2Level(l Level) skip2.RecoveryLevel {
	switch l {
	case LevelL:
		return skip2.Low
	case LevelQ:
		return skip2.High
	case LevelH:
		return skip2.Highest
	default:
		return skip2.Medium
	}
}
