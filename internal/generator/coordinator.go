// Package generator coordinates a generation: validate, encode the payload,
// render the matrix, composite overlays and report a single Result.
package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cristianadrielbraun/qrstudio/internal/payload"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

// Renderer turns a payload into a surface.
type Renderer interface {
	Render(ctx context.Context, payload string, opts render.Options) (*render.Surface, error)
}

// Painter applies overlays and returns a new surface.
type Painter interface {
	Composite(s *render.Surface, opts render.Options) *render.Surface
}

// Recorder observes finished generations. internal/metrics implements it.
type Recorder interface {
	ObserveGeneration(kind, outcome, backend string, elapsed time.Duration)
}

// Result is the outcome of one generation.
type Result struct {
	Surface *render.Surface
	Payload string
	Err     error
	// Message is a one-line user-facing description of Err.
	Message string
}

// OK reports whether the generation succeeded.
func (r Result) OK() bool { return r.Err == nil && r.Surface != nil }

// Coordinator runs at most one generation at a time and keeps the last
// successful output.
type Coordinator struct {
	renderer Renderer
	painter  Painter
	recorder Recorder
	logger   *log.Logger
	debounce *Debouncer

	mu    sync.Mutex
	state State
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// WithDebounce sets the Regenerate quiet period.
func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) { c.debounce = NewDebouncer(d) }
}

// New returns an idle Coordinator.
func New(renderer Renderer, painter Painter, opts ...Option) *Coordinator {
	c := &Coordinator{
		renderer: renderer,
		painter:  painter,
		logger:   log.Default(),
		debounce: NewDebouncer(DefaultDebounce),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns a snapshot of the coordinator state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Generate runs one generation. While another one is running it returns
// ErrAlreadyInProgress immediately and leaves the running one untouched.
// Every failure is reported in the Result; the last successful output stays
// available through State.
func (c *Coordinator) Generate(ctx context.Context, req payload.Request, opts render.Options) Result {
	c.mu.Lock()
	next, err := c.state.Begin()
	if err != nil {
		c.mu.Unlock()
		c.logger.Debug("generation rejected", "err", err)
		c.record(req, err, "", 0)
		return Result{Err: err, Message: Message(err)}
	}
	c.state = next
	c.mu.Unlock()

	start := time.Now()
	out, encoded, err := c.run(ctx, req, opts)
	elapsed := time.Since(start)

	c.mu.Lock()
	if err != nil {
		c.state = c.state.Fail(err).Settle()
	} else {
		c.state = c.state.Succeed(out).Settle()
	}
	c.mu.Unlock()

	backend := ""
	if out != nil {
		backend = out.Backend
	}
	c.record(req, err, backend, elapsed)

	if err != nil {
		c.logger.Warn("generation failed", "err", err, "elapsed", elapsed)
		return Result{Payload: encoded, Err: err, Message: Message(err)}
	}
	c.logger.Info("generation succeeded", "backend", backend, "size", out.Size(), "elapsed", elapsed)
	return Result{Surface: out, Payload: encoded}
}

// Regenerate schedules a generation after the debounce window. A burst of
// calls yields a single generation using the last request and options; done
// receives its Result.
func (c *Coordinator) Regenerate(req payload.Request, opts render.Options, done func(Result)) {
	c.debounce.Trigger(func() {
		res := c.Generate(context.Background(), req, opts)
		if done != nil {
			done(res)
		}
	})
}

// Cancel drops a pending Regenerate. A generation already running is not
// affected.
func (c *Coordinator) Cancel() {
	c.debounce.Stop()
}

func (c *Coordinator) run(ctx context.Context, req payload.Request, opts render.Options) (out *render.Surface, encoded string, err error) {
	if req == nil {
		return nil, "", fmt.Errorf("%w: no request", payload.ErrUnsupportedType)
	}
	if !payload.Valid(req) {
		return nil, "", fmt.Errorf("%w: %s input", ErrValidationFailed, req.Type())
	}
	encoded = payload.Encode(req)

	surface, err := c.renderer.Render(ctx, encoded, opts)
	if err != nil {
		return nil, encoded, fmt.Errorf("render: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("composite: %v", r)
		}
	}()
	return c.painter.Composite(surface, opts), encoded, nil
}

func (c *Coordinator) record(req payload.Request, err error, backend string, elapsed time.Duration) {
	if c.recorder == nil {
		return
	}
	kind := "unknown"
	if req != nil {
		kind = string(req.Type())
	}
	c.recorder.ObserveGeneration(kind, Outcome(err), backend, elapsed)
}

// Outcome classifies err into a short label for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidationFailed):
		return "invalid"
	case errors.Is(err, ErrAlreadyInProgress):
		return "in_progress"
	case errors.Is(err, render.ErrNoEncoderAvailable):
		return "no_encoder"
	case errors.Is(err, render.ErrEncodingTimeout):
		return "timeout"
	default:
		return "error"
	}
}
