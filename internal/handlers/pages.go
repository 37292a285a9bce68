package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/export"
	"github.com/cristianadrielbraun/qrstudio/web/pages"
)

// HomePage renders the generator page in the session's theme.
func (h *Handler) HomePage(c *gin.Context) {
	sess := h.session(c)
	ctx := c.Request.Context()

	theme, err := h.store.Theme(ctx, sess.id)
	if err != nil {
		h.logger.Warn("theme lookup", "err", err)
	}
	var names []string
	if all, err := h.store.Presets(ctx, sess.id); err == nil {
		for name := range all {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := pages.HomePage(pages.HomeProps{Theme: string(theme), Presets: names}).Render(ctx, c.Writer); err != nil {
		c.String(http.StatusInternalServerError, err.Error())
	}
}

// PrintPage generates the requested QR code and renders a page that prints
// it.
func (h *Handler) PrintPage(c *gin.Context) {
	_, _, res, ok := h.generate(c)
	if !ok {
		return
	}
	u, err := export.DataURL(res.Surface)
	if err != nil {
		h.logger.Error("print", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to print QR code"})
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := pages.PrintPage(pages.PrintProps{DataURL: u, Payload: res.Payload}).Render(c.Request.Context(), c.Writer); err != nil {
		h.logger.Warn("print page render", "err", err)
	}
}
