package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/web/components/toast"
)

// GenericToast returns a toast rendered as HTML for HTMX swaps.
func (h *Handler) GenericToast(c *gin.Context) {
	title := c.PostForm("title")
	description := c.PostForm("description")
	variant := toast.ParseVariant(c.PostForm("variant"))
	dismissible := c.PostForm("dismissible") == "on"

	duration := 2000
	if variant == toast.VariantError {
		duration = 4000
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)

	if err := toast.Toast(toast.Props{
		Title:       title,
		Description: description,
		Variant:     variant,
		Duration:    duration,
		Dismissible: dismissible,
	}).Render(c.Request.Context(), c.Writer); err != nil {
		h.logger.Warn("toast render", "err", err)
	}
}
