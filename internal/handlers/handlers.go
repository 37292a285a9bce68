package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/generator"
	"github.com/cristianadrielbraun/qrstudio/internal/metrics"
	"github.com/cristianadrielbraun/qrstudio/internal/payload"
	"github.com/cristianadrielbraun/qrstudio/internal/prefs"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

// Handler holds the dependencies shared by the HTTP handlers.
type Handler struct {
	sessions  *Sessions
	store     prefs.Store
	metrics   *metrics.Metrics
	logger    *log.Logger
	maxUpload int64
}

// Deps configures a Handler. Metrics may be nil.
type Deps struct {
	Sessions       *Sessions
	Store          prefs.Store
	Metrics        *metrics.Metrics
	Logger         *log.Logger
	MaxUploadBytes int64
}

// New returns a Handler wired to d.
func New(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = log.Default()
	}
	return &Handler{
		sessions:  d.Sessions,
		store:     d.Store,
		metrics:   d.Metrics,
		logger:    d.Logger,
		maxUpload: d.MaxUploadBytes,
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	{
		api.GET("/qr", h.QRCodeHandler)
		api.GET("/qr/dataurl", h.DataURLHandler)
		api.POST("/qr/regenerate", h.RegenerateHandler)
		api.GET("/qr/latest", h.LatestHandler)
		api.POST("/validate", h.ValidateHandler)
		api.POST("/uploads/:kind", h.UploadHandler)
		api.DELETE("/uploads/:kind", h.ClearUploadHandler)
		api.GET("/prefs/theme", h.GetTheme)
		api.PUT("/prefs/theme", h.SetTheme)
		api.POST("/prefs/theme/toggle", h.ToggleTheme)
		api.GET("/presets", h.ListPresets)
		api.GET("/presets/:name", h.GetPreset)
		api.PUT("/presets/:name", h.SavePreset)
		api.DELETE("/presets/:name", h.DeletePreset)
		api.POST("/htmx/toast", h.GenericToast)
	}
	r.GET("/", h.HomePage)
	r.GET("/print", h.PrintPage)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
}

// statusFor maps a generation error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, generator.ErrValidationFailed),
		errors.Is(err, payload.ErrUnsupportedType),
		errors.Is(err, render.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.Is(err, generator.ErrAlreadyInProgress):
		return http.StatusConflict
	case errors.Is(err, render.ErrNoEncoderAvailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, render.ErrEncodingTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// abortWith writes the user-facing message for err as JSON.
func abortWith(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": generator.Message(err)})
}

// param reads key from the query string, then the form body.
func param(c *gin.Context, key string) (string, bool) {
	if v, ok := c.GetQuery(key); ok {
		return v, true
	}
	return c.GetPostForm(key)
}

// parseRequest builds a payload request from the type and field params.
func parseRequest(c *gin.Context) (payload.Request, error) {
	raw, _ := param(c, "type")
	if raw == "" {
		raw = string(payload.TypeText)
	}
	t, err := payload.ParseType(raw)
	if err != nil {
		return nil, err
	}
	fields := payload.Fields{}
	for _, k := range payload.FieldKeys {
		if v, ok := param(c, k); ok {
			fields[k] = v
		}
	}
	return payload.Build(t, fields)
}

// parseOptions applies design params over base. Unset params keep base's
// values.
func parseOptions(c *gin.Context, base render.Options) (render.Options, error) {
	opts := base
	var err error
	if v, ok := param(c, "size"); ok && v != "" {
		if opts.Size, err = strconv.Atoi(v); err != nil {
			return base, invalid("size must be an integer")
		}
	}
	if v, ok := param(c, "errorCorrection"); ok {
		if opts.Level, err = render.ParseLevel(v); err != nil {
			return base, err
		}
	}
	if v, ok := param(c, "fg"); ok {
		opts.Foreground = render.ParseHexColor(v, base.Foreground)
	}
	if v, ok := param(c, "bg"); ok {
		opts.Background = render.ParseHexColor(v, base.Background)
	}
	if v, ok := param(c, "logoSize"); ok && v != "" {
		if opts.LogoSizePercent, err = strconv.Atoi(v); err != nil {
			return base, invalid("logoSize must be an integer")
		}
	}
	if v, ok := param(c, "logoBackground"); ok {
		if opts.LogoBackground, err = render.ParseLogoBackground(v); err != nil {
			return base, err
		}
	}
	if v, ok := param(c, "logoClip"); ok {
		opts.LogoClip = v == "1" || strings.EqualFold(v, "true") || v == "on"
	}
	if v, ok := param(c, "backgroundOpacity"); ok && v != "" {
		if opts.BackgroundOpacity, err = strconv.ParseFloat(v, 64); err != nil {
			return base, invalid("backgroundOpacity must be a number")
		}
	}
	if v, ok := param(c, "backgroundFit"); ok {
		if opts.BackgroundFit, err = render.ParseFit(v); err != nil {
			return base, err
		}
	}
	opts = opts.Normalize()
	return opts, opts.Validate()
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", render.ErrInvalidOptions, msg)
}
