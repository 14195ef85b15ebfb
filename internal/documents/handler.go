package documents

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"novel-assistant/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/:id", h.get)
	rg.GET("/documents/:id/text", h.text)
	rg.GET("/documents/:id/original", h.original)
}

func (h *Handler) get(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	doc, err := h.Svc.Get(c.Request.Context(), documentID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

// text returns the extracted plain text the analysis ran on.
func (h *Handler) text(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	doc, err := h.Svc.Get(c.Request.Context(), documentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", attachment(doc.Title+".txt"))
	c.Data(http.StatusOK, plainTextMime, []byte(doc.Content))
}

// original streams the upload exactly as it was received.
func (h *Handler) original(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	doc, rc, err := h.Svc.OpenOriginal(c.Request.Context(), documentID)
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, doc.SizeBytes, doc.MimeType, rc, map[string]string{
		"Content-Disposition": attachment(doc.Title),
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrNotArchived):
		respond.Error(c, http.StatusNotFound, "not_archived", "original upload is not available", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
	}
}

func attachment(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
