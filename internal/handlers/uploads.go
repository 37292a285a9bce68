package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/imageio"
)

var uploadLabels = map[string]string{
	"logo":       "Logo",
	"background": "Background",
}

// UploadHandler stores a logo or background image for the session. The
// multipart field is "file".
func (h *Handler) UploadHandler(c *gin.Context) {
	kind := c.Param("kind")
	label, ok := uploadLabels[kind]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown upload kind"})
		return
	}
	sess := h.session(c)

	fh, err := c.FormFile("file")
	if err != nil {
		h.observeUpload(kind, false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload a valid image file."})
		return
	}
	tooLarge := fmt.Sprintf("Image file too large. Please choose a file under %dMB.", h.maxUpload>>20)
	if fh.Size > h.maxUpload {
		h.observeUpload(kind, false)
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": tooLarge})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.observeUpload(kind, false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to load %s image", kind)})
		return
	}
	defer f.Close()

	img, mime, err := imageio.Decode(f, h.maxUpload)
	switch {
	case errors.Is(err, imageio.ErrTooLarge):
		h.observeUpload(kind, false)
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": tooLarge})
		return
	case errors.Is(err, imageio.ErrUnsupportedFormat):
		h.observeUpload(kind, false)
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Please upload a valid image file (JPEG, PNG, GIF, WebP)"})
		return
	case err != nil:
		h.observeUpload(kind, false)
		h.logger.Warn("upload decode failed", "kind", kind, "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to load %s image", kind)})
		return
	}

	sess.setImage(kind, img)
	h.observeUpload(kind, true)
	b := img.Bounds()
	h.logger.Debug("upload stored", "kind", kind, "mime", mime, "width", b.Dx(), "height", b.Dy())
	c.JSON(http.StatusOK, gin.H{
		"kind":    kind,
		"mime":    mime,
		"width":   b.Dx(),
		"height":  b.Dy(),
		"message": label + " uploaded successfully!",
	})
}

// ClearUploadHandler removes the session's logo or background.
func (h *Handler) ClearUploadHandler(c *gin.Context) {
	kind := c.Param("kind")
	if _, ok := uploadLabels[kind]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown upload kind"})
		return
	}
	h.session(c).setImage(kind, nil)
	c.Status(http.StatusNoContent)
}

func (h *Handler) observeUpload(kind string, ok bool) {
	if h.metrics != nil {
		h.metrics.ObserveUpload(kind, ok)
	}
}
