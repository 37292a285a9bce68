package render

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

// YeqownBackend encodes with github.com/yeqown/go-qrcode. The library's
// standard writer delivers its output as a file, so the artifact is written
// in the background and picked up by polling.
type YeqownBackend struct {
	// ModuleWidth is the pixel width of one module in the artifact.
	ModuleWidth int
	Poll        PollConfig
	// TempDir defaults to os.TempDir().
	TempDir string
}

func (b *YeqownBackend) Name() string    { return BackendYeqown }
func (b *YeqownBackend) Scannable() bool { return true }

// Encode implements Backend.
func (b *YeqownBackend) Encode(ctx context.Context, payload string, opts Options) (Artifact, error) {
	qrc, err := qrcode.NewWith(payload, yeqownLevel(opts.Level))
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to create QR code: %w", err)
	}
	dimension := qrc.Dimension()
	if dimension <= 0 {
		return Artifact{}, fmt.Errorf("invalid QR matrix dimension %d", dimension)
	}

	dir := b.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	final := filepath.Join(dir, generateUniqueFilename("qr", ".png"))
	partial := final + ".part"

	done := make(chan error, 1)
	go func() {
		done <- b.write(qrc, partial, final, opts)
	}()

	img, err := waitForArtifact(ctx, final, done, b.Poll)
	if err != nil {
		// The writer may still be running; clean up once it settles.
		go func() {
			<-done
			os.Remove(partial)
			os.Remove(final)
		}()
		return Artifact{}, err
	}
	os.Remove(final)

	return Artifact{Image: img, Modules: dimension}, nil
}

// write renders qrc to partial and renames it to final once complete, so a
// poller never observes a half-written file.
func (b *YeqownBackend) write(qrc *qrcode.QRCode, partial, final string, opts Options) error {
	writer, err := standard.New(partial,
		standard.WithQRWidth(moduleWidth8(b.ModuleWidth)),
		standard.WithBorderWidth(0),
		standard.WithBgColor(opts.Background),
		standard.WithFgColor(opts.Foreground),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	)
	if err != nil {
		return fmt.Errorf("failed to create QR writer: %w", err)
	}
	if err := qrc.Save(writer); err != nil {
		_ = writer.Close()
		os.Remove(partial)
		return fmt.Errorf("failed to generate QR code image: %w", err)
	}
	// Save closes the writer; a second close only reports the file as closed.
	_ = writer.Close()

	if err := os.Rename(partial, final); err != nil {
		os.Remove(partial)
		return fmt.Errorf("failed to publish QR artifact: %w", err)
	}
	return nil
}

func yeqownLevel(l Level) qrcode.EncodeOption {
	switch l {
	case LevelL:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow)
	case LevelQ:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart)
	case LevelH:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest)
	default:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium)
	}
}

// moduleWidth8 clamps w into the writer's uint8 range, defaulting to 8.
func moduleWidth8(w int) uint8 {
	switch {
	case w <= 0:
		return 8
	case w > 255:
		return 255
	default:
		return uint8(w)
	}
}

// generateUniqueFilename returns prefix_<nanos>_<random hex><extension>.
func generateUniqueFilename(prefix, extension string) string {
	timestamp := time.Now().UnixNano()
	randomBytes := make([]byte, 4)
	rand.Read(randomBytes)
	return fmt.Sprintf("%s_%d_%x%s", prefix, timestamp, randomBytes, extension)
}
