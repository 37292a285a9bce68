package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/export"
	"github.com/cristianadrielbraun/qrstudio/internal/generator"
	"github.com/cristianadrielbraun/qrstudio/internal/payload"
	"github.com/cristianadrielbraun/qrstudio/internal/prefs"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

// designOptions resolves the render options for a request: defaults, then
// the named preset (if any), then explicit params, then the session's
// uploaded images.
func (h *Handler) designOptions(c *gin.Context, sess *session) (render.Options, error) {
	base := render.DefaultOptions()
	if name := c.Query("preset"); name != "" {
		p, err := h.store.Preset(c.Request.Context(), sess.id, name)
		if err != nil {
			return base, err
		}
		if base, err = p.Apply(base); err != nil {
			return base, err
		}
	}
	opts, err := parseOptions(c, base)
	if err != nil {
		return opts, err
	}
	opts.Logo, opts.BackgroundImage = sess.images()
	return opts, nil
}

// generate parses the request and runs it through the session coordinator.
// It writes the error response itself and returns ok=false on failure.
func (h *Handler) generate(c *gin.Context) (*session, payload.Request, generator.Result, bool) {
	sess := h.session(c)

	req, err := parseRequest(c)
	if err != nil {
		abortWith(c, err)
		return sess, nil, generator.Result{}, false
	}
	opts, err := h.designOptions(c, sess)
	if errors.Is(err, prefs.ErrPresetNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Preset not found"})
		return sess, req, generator.Result{}, false
	}
	if err != nil {
		abortWith(c, err)
		return sess, req, generator.Result{}, false
	}

	h.logger.Debug("request start", "type", req.Type(), "size", opts.Size, "level", opts.Level, "logo", opts.Logo != nil, "background", opts.BackgroundImage != nil)

	res := sess.coord.Generate(c.Request.Context(), req, opts)
	if res.Err != nil {
		abortWith(c, res.Err)
		return sess, req, res, false
	}
	sess.setLatest(res)
	c.Header("X-QR-Backend", res.Surface.Backend)
	if !res.Surface.Scannable {
		c.Header("X-QR-Warning", "visual fallback, this code will not scan")
	}
	return sess, req, res, true
}

// QRCodeHandler renders a QR code and returns it as an image. Query params:
// type plus the type's fields, design params, preset, format (png|jpg|svg),
// large and download.
func (h *Handler) QRCodeHandler(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format"})
		return
	}
	large := queryBool(c, "large")

	_, req, res, ok := h.generate(c)
	if !ok {
		return
	}
	h.writeSurface(c, res.Surface, req.Type(), format, large)
}

// DataURLHandler returns the QR code as a PNG data URL for clipboard use.
func (h *Handler) DataURLHandler(c *gin.Context) {
	_, _, res, ok := h.generate(c)
	if !ok {
		return
	}
	u, err := export.DataURL(res.Surface)
	if err != nil {
		h.logger.Error("data url", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to copy QR code to clipboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataUrl":   u,
		"payload":   res.Payload,
		"scannable": res.Surface.Scannable,
	})
}

// RegenerateHandler schedules a debounced generation for the session. The
// result is fetched from LatestHandler.
func (h *Handler) RegenerateHandler(c *gin.Context) {
	sess := h.session(c)
	req, err := parseRequest(c)
	if err != nil {
		abortWith(c, err)
		return
	}
	opts, err := h.designOptions(c, sess)
	if errors.Is(err, prefs.ErrPresetNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Preset not found"})
		return
	}
	if err != nil {
		abortWith(c, err)
		return
	}
	sess.coord.Regenerate(req, opts, sess.setLatest)
	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled"})
}

// LatestHandler serves the session's most recent successful QR code. When the
// newest generation failed, the previous image is still served and the
// failure is reported in X-QR-Error. A later success clears the report.
func (h *Handler) LatestHandler(c *gin.Context) {
	sess := h.session(c)
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format"})
		return
	}

	latest := sess.latestResult()
	last := sess.coord.State().Last
	if last == nil {
		if latest != nil && latest.Err != nil {
			abortWith(c, latest.Err)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "No QR code available to download"})
		return
	}
	if latest != nil && latest.Err != nil {
		c.Header("X-QR-Error", latest.Message)
	}
	kind, err := payload.ParseType(c.DefaultQuery("type", string(payload.TypeText)))
	if err != nil {
		kind = payload.TypeText
	}
	h.writeSurface(c, last, kind, format, queryBool(c, "large"))
}

// ValidateHandler classifies the request fields without generating.
func (h *Handler) ValidateHandler(c *gin.Context) {
	req, err := parseRequest(c)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, payload.Check(req))
}

func (h *Handler) writeSurface(c *gin.Context, s *render.Surface, kind payload.Type, format export.Format, large bool) {
	b, err := export.Bytes(s, format, large)
	if err != nil {
		h.logger.Error("export failed", "format", format, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to download QR code"})
		return
	}
	c.Header("Cache-Control", "no-store")
	if queryBool(c, "download") {
		c.Header("Content-Disposition", `attachment; filename="`+export.Filename(string(kind), format, time.Now())+`"`)
	}
	c.Data(http.StatusOK, format.ContentType(), b)
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}
