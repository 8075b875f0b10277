package products

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"engineo-backend/internal/shared/server/middleware"
	"engineo-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the products service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches product routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/products", h.create)
	rg.GET("/products", h.list)
	rg.GET("/products/:id", h.get)
	rg.PUT("/products/:id/units", h.putUnit)
	rg.GET("/products/:id/units", h.listUnits)
}

type createProductRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Audience string `json:"audience"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	product, err := h.Svc.Create(c.Request.Context(), userID, req.Name, req.Category, req.Audience)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "name is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create product", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(product))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list products", nil)
		return
	}

	out := make([]ProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toResponse(p))
	}
	respond.OK(c, gin.H{"products": out})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	productID := c.Param("id")

	product, err := h.Svc.Get(c.Request.Context(), userID, productID)
	if err != nil {
		respondProductError(c, err)
		return
	}
	respond.OK(c, toResponse(product))
}

type putUnitRequest struct {
	UnitID       string `json:"unitId"`
	QuestionID   string `json:"questionId"`
	Text         string `json:"text"`
	RequiresJS   bool   `json:"requiresJs"`
	RequiresAuth bool   `json:"requiresAuth"`
}

func (h *Handler) putUnit(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	productID := c.Param("id")

	var req putUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	unit, err := h.Svc.PutAnswerUnit(c.Request.Context(), userID, AnswerUnit{
		ID:           req.UnitID,
		ProductID:    productID,
		QuestionID:   req.QuestionID,
		Text:         req.Text,
		RequiresJS:   req.RequiresJS,
		RequiresAuth: req.RequiresAuth,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "questionId must be canonical", nil)
		default:
			respondProductError(c, err)
		}
		return
	}

	respond.OK(c, toUnitResponse(unit))
}

func (h *Handler) listUnits(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	productID := c.Param("id")

	units, err := h.Svc.Units(c.Request.Context(), userID, productID)
	if err != nil {
		respondProductError(c, err)
		return
	}

	out := make([]AnswerUnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, toUnitResponse(u))
	}
	respond.OK(c, gin.H{"units": out})
}

func respondProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "product not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "product belongs to another account", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid input", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
	}
}
