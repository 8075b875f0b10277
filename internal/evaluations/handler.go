package evaluations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"engineo-backend/internal/products"
	"engineo-backend/internal/shared/server/middleware"
	"engineo-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the evaluations service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches evaluation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/products/:id/evaluate", h.evaluate)
	rg.GET("/products/:id/evaluation", h.latest)
}

func (h *Handler) evaluate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	productID := c.Param("id")

	snapshot, err := h.Svc.Run(c.Request.Context(), userID, productID)
	if err != nil {
		respondEvalError(c, err)
		return
	}
	respond.OK(c, snapshot)
}

func (h *Handler) latest(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	productID := c.Param("id")

	eval, err := h.Svc.Latest(c.Request.Context(), userID, productID)
	if err != nil {
		respondEvalError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"evaluation":  eval.Snapshot,
		"evaluatedAt": eval.EvaluatedAt,
	})
}

func respondEvalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, products.ErrNotFound), errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "no evaluation for this product", nil)
	case errors.Is(err, products.ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "product belongs to another account", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "evaluation failed", nil)
	}
}
