package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"
)

// PollConfig bounds how long a backend waits for an out-of-band artifact.
type PollConfig struct {
	Interval time.Duration
	Attempts int
}

// DefaultPoll checks every 50ms, 20 times.
var DefaultPoll = PollConfig{Interval: 50 * time.Millisecond, Attempts: 20}

func (p PollConfig) withDefaults() PollConfig {
	if p.Interval <= 0 {
		p.Interval = DefaultPoll.Interval
	}
	if p.Attempts <= 0 {
		p.Attempts = DefaultPoll.Attempts
	}
	return p
}

// waitForArtifact polls path until a decodable PNG appears there, the
// producer reports an error on done, ctx ends, or the attempt budget runs
// out (ErrEncodingTimeout). A nil error on done only means the producer
// finished; the file is still picked up by the next poll.
func waitForArtifact(ctx context.Context, path string, done <-chan error, cfg PollConfig) (image.Image, error) {
	cfg = cfg.withDefaults()

	timer := time.NewTimer(cfg.Interval)
	defer timer.Stop()

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case err := <-done:
			if err != nil {
				return nil, err
			}
			done = nil
			<-timer.C
		case <-timer.C:
		}

		if img, ok := readArtifact(path); ok {
			return img, nil
		}
		timer.Reset(cfg.Interval)
	}
	return nil, fmt.Errorf("%w: no artifact after %d attempts", ErrEncodingTimeout, cfg.Attempts)
}

// readArtifact returns the decoded image at path if it is complete.
func readArtifact(path string) (image.Image, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return nil, false
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, false
	}
	return img, true
}
