package uploads

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"novel-assistant/internal/shared/server/respond"
)

// multipartOverhead leaves room for form boundaries and headers around the file.
const multipartOverhead = 1 << 20

// Handler serves the upload form, the upload pipeline and its JSON variant.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterPages attaches the browser-facing routes.
func (h *Handler) RegisterPages(r gin.IRoutes) {
	r.GET("/", h.form)
	r.POST("/upload", h.uploadPage)
}

// RegisterRoutes attaches the JSON API routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.createDocument)
}

type createDocumentRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

func (h *Handler) form(c *gin.Context) {
	respond.Page(c, http.StatusOK, "index.html", gin.H{
		"MaxUploadMB": h.Svc.maxBytes() >> 20,
	})
}

func (h *Handler) uploadPage(c *gin.Context) {
	up, closeFn, status, msg := h.readMultipart(c)
	if status != 0 {
		respond.ErrorPage(c, status, codeFor(status), msg)
		return
	}
	defer closeFn()

	res, err := h.Svc.Process(c.Request.Context(), up)
	if err != nil {
		status, code, msg := mapError(err)
		respond.ErrorPage(c, status, code, msg)
		return
	}
	c.Set("documentId", res.DocumentID)
	c.Set("analysisId", res.AnalysisID)
	respond.Page(c, http.StatusOK, "result.html", res)
}

func (h *Handler) createDocument(c *gin.Context) {
	var up Upload
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req createDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "title is required", nil)
			return
		}
		up = Upload{FileName: req.Title, MimeType: "text/plain; charset=utf-8", Body: strings.NewReader(req.Content)}
	} else {
		var closeFn func()
		var status int
		var msg string
		up, closeFn, status, msg = h.readMultipart(c)
		if status != 0 {
			respond.Error(c, status, codeFor(status), msg, nil)
			return
		}
		defer closeFn()
	}

	res, err := h.Svc.Process(c.Request.Context(), up)
	if err != nil {
		status, code, msg := mapError(err)
		respond.Error(c, status, code, msg, nil)
		return
	}
	c.Set("documentId", res.DocumentID)
	c.Set("analysisId", res.AnalysisID)
	respond.JSON(c, http.StatusCreated, res)
}

// readMultipart returns the "file" part, or a non-zero status with a message.
func (h *Handler) readMultipart(c *gin.Context) (Upload, func(), int, string) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.maxBytes()+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Upload{}, nil, http.StatusRequestEntityTooLarge, "file is too large"
		}
		return Upload{}, nil, http.StatusBadRequest, "a file is required in the \"file\" field"
	}
	if fh.Size > h.Svc.maxBytes() {
		return Upload{}, nil, http.StatusRequestEntityTooLarge, "file is too large"
	}

	f, err := fh.Open()
	if err != nil {
		return Upload{}, nil, http.StatusBadRequest, "could not read uploaded file"
	}
	return Upload{
		FileName: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Body:     f,
	}, closer(f), 0, ""
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large", "file is too large"
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, "validation_error", err.Error()
	default:
		return http.StatusInternalServerError, "internal_error", "failed to process upload"
	}
}

func codeFor(status int) string {
	if status == http.StatusRequestEntityTooLarge {
		return "too_large"
	}
	return "validation_error"
}
