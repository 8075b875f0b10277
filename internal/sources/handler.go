package sources

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"engineo-backend/internal/products"
	"engineo-backend/internal/shared/server/middleware"
	"engineo-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches source routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/products/:id/sources", h.upload)
	rg.GET("/products/:id/sources", h.list)
}

type sourceResponse struct {
	SourceID    string     `json:"sourceId"`
	FileName    string     `json:"fileName"`
	MimeType    string     `json:"mimeType"`
	SizeBytes   int64      `json:"sizeBytes"`
	ExtractedAt *time.Time `json:"extractedAt,omitempty"`
	UploadedAt  time.Time  `json:"uploadedAt"`
}

func toResponse(src Source) sourceResponse {
	return sourceResponse{
		SourceID:    src.ID,
		FileName:    src.FileName,
		MimeType:    src.MimeType,
		SizeBytes:   src.SizeBytes,
		ExtractedAt: src.ExtractedAt,
		UploadedAt:  src.CreatedAt,
	}
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	productID := c.Param("id")
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	src, err := h.Svc.Upload(c.Request.Context(), userID, productID, fileHeader.Filename, file)
	if err != nil {
		respondSourceError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(src))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	productID := c.Param("id")

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	srcs, err := h.Svc.List(c.Request.Context(), userID, productID, limit, offset)
	if err != nil {
		respondSourceError(c, err)
		return
	}
	out := make([]sourceResponse, 0, len(srcs))
	for _, src := range srcs {
		out = append(out, toResponse(src))
	}
	respond.JSON(c, http.StatusOK, gin.H{"sources": out})
}

func respondSourceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, products.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid source request", nil)
	case errors.Is(err, ErrNotFound), errors.Is(err, products.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "product or source not found", nil)
	case errors.Is(err, products.ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "product belongs to another account", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "source operation failed", nil)
	}
}
