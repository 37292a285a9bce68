package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/prefs"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

// prefsError maps a store error onto a status and a user message.
func (h *Handler) prefsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, prefs.ErrPresetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Preset not found"})
	case errors.Is(err, prefs.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a preset name"})
	case errors.Is(err, prefs.ErrInvalidTheme):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Theme must be light or dark"})
	case errors.Is(err, render.ErrInvalidOptions):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid design options."})
	default:
		h.logger.Error("preference store", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to access saved preferences"})
	}
}

// GetTheme returns the session's theme.
func (h *Handler) GetTheme(c *gin.Context) {
	sess := h.session(c)
	t, err := h.store.Theme(c.Request.Context(), sess.id)
	if err != nil {
		h.prefsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": t})
}

// SetTheme stores the theme given as JSON {"theme": "..."} or a form value.
func (h *Handler) SetTheme(c *gin.Context) {
	sess := h.session(c)
	var body struct {
		Theme string `json:"theme" form:"theme"`
	}
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Theme must be light or dark"})
		return
	}
	t, err := prefs.ParseTheme(body.Theme)
	if err != nil {
		h.prefsError(c, err)
		return
	}
	if err := h.store.SetTheme(c.Request.Context(), sess.id, t); err != nil {
		h.prefsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": t})
}

// ToggleTheme flips between light and dark.
func (h *Handler) ToggleTheme(c *gin.Context) {
	sess := h.session(c)
	ctx := c.Request.Context()
	t, err := h.store.Theme(ctx, sess.id)
	if err != nil {
		h.prefsError(c, err)
		return
	}
	t = t.Toggle()
	if err := h.store.SetTheme(ctx, sess.id, t); err != nil {
		h.prefsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": t})
}

// ListPresets returns every preset of the session.
func (h *Handler) ListPresets(c *gin.Context) {
	sess := h.session(c)
	all, err := h.store.Presets(c.Request.Context(), sess.id)
	if err != nil {
		h.prefsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"presets": all})
}

// GetPreset returns one preset.
func (h *Handler) GetPreset(c *gin.Context) {
	sess := h.session(c)
	p, err := h.store.Preset(c.Request.Context(), sess.id, c.Param("name"))
	if err != nil {
		h.prefsError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// SavePreset stores the JSON preset body under the path name, replacing
// any preset of the same name.
func (h *Handler) SavePreset(c *gin.Context) {
	sess := h.session(c)
	name, err := prefs.CheckName(c.Param("name"))
	if err != nil {
		h.prefsError(c, err)
		return
	}
	var p prefs.Preset
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid preset"})
		return
	}
	if _, err := p.Apply(render.DefaultOptions()); err != nil {
		h.prefsError(c, err)
		return
	}
	if err := h.store.SavePreset(c.Request.Context(), sess.id, name, p); err != nil {
		h.prefsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Preset %q saved successfully!", name)})
}

// DeletePreset removes a preset.
func (h *Handler) DeletePreset(c *gin.Context) {
	sess := h.session(c)
	if err := h.store.DeletePreset(c.Request.Context(), sess.id, c.Param("name")); err != nil {
		h.prefsError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
