package analyses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"novel-assistant/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc  *Service
	Docs DocumentChecker
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, docs DocumentChecker) *Handler {
	return &Handler{Svc: svc, Docs: docs}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/:id/analyses", h.listForDocument)
	rg.GET("/analyses/:id", h.getAnalysis)
}

func (h *Handler) listForDocument(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	ok, err := h.Docs.Exists(c.Request.Context(), documentID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		return
	}

	list, err := h.Svc.ListByDocument(c.Request.Context(), documentID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}
	respond.JSON(c, http.StatusOK, list)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysisID := c.Param("id")
	c.Set("analysisId", analysisID)

	analysis, err := h.Svc.Get(c.Request.Context(), analysisID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}
	c.Set("documentId", analysis.DocumentID)
	respond.JSON(c, http.StatusOK, analysis)
}
