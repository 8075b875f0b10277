package drafts

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"engineo-backend/internal/products"
	"engineo-backend/internal/shared/server/middleware"
	"engineo-backend/internal/shared/server/respond"
	"engineo-backend/internal/usage"
)

// Handler wires HTTP handlers to the drafts service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches draft routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/products/:id/drafts", h.generate)
	rg.GET("/products/:id/drafts", h.list)
	rg.POST("/drafts/:id/apply", h.apply)
	rg.POST("/drafts/:id/discard", h.discard)
}

func (h *Handler) generate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	productID := c.Param("id")

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "questionId and issueType are required", nil)
		return
	}

	result, err := h.Svc.GeneratePreview(c.Request.Context(), userID, productID, req.QuestionID, req.IssueType)
	if err != nil {
		respondDraftError(c, err)
		return
	}

	status := http.StatusCreated
	if !result.GeneratedWithAI {
		status = http.StatusOK
	}
	body := gin.H{
		"draft":           toDraftResponse(result.Draft),
		"generatedWithAi": result.GeneratedWithAI,
	}
	if result.AIUsage != nil {
		body["aiUsage"] = gin.H{
			"promptTokens":     result.AIUsage.PromptTokens,
			"completionTokens": result.AIUsage.CompletionTokens,
			"totalTokens":      result.AIUsage.TotalTokens,
			"latencyMs":        result.AIUsage.LatencyMs,
		}
	}
	c.JSON(status, body)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	productID := c.Param("id")

	drafts, err := h.Svc.ListOpen(c.Request.Context(), userID, productID)
	if err != nil {
		respondDraftError(c, err)
		return
	}
	out := make([]draftResponse, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, toDraftResponse(d))
	}
	respond.OK(c, gin.H{"drafts": out})
}

func (h *Handler) apply(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	draftID := c.Param("id")

	result, err := h.Svc.Apply(c.Request.Context(), userID, draftID)
	if err != nil {
		respondDraftError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"success":             result.Success,
		"updatedEvaluation":   result.UpdatedEvaluation,
		"issuesResolved":      result.IssuesResolved,
		"issuesResolvedCount": result.IssuesResolvedCount,
	})
}

func (h *Handler) discard(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	draftID := c.Param("id")

	if err := h.Svc.Discard(c.Request.Context(), userID, draftID); err != nil {
		respondDraftError(c, err)
		return
	}
	respond.OK(c, gin.H{"discarded": true})
}

func respondDraftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, products.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid draft request", nil)
	case errors.Is(err, ErrNotFound), errors.Is(err, products.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "draft or product not found", nil)
	case errors.Is(err, products.ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "resource belongs to another account", nil)
	case errors.Is(err, ErrDraftExpired):
		respond.Error(c, http.StatusConflict, "draft_expired", "draft has expired, generate a new preview", nil)
	case errors.Is(err, ErrAlreadyApplied):
		respond.Error(c, http.StatusConflict, "draft_not_applicable", "draft is no longer applicable", nil)
	case errors.Is(err, ErrGenerationInProgress):
		respond.Error(c, http.StatusConflict, "generation_in_progress", "a draft for this target is already being generated", nil)
	case errors.Is(err, usage.ErrLimitReached):
		respond.Error(c, http.StatusTooManyRequests, "limit_reached", "AI draft limit reached for the current period", nil)
	case errors.Is(err, ErrGenerationTimeout):
		respond.Error(c, http.StatusGatewayTimeout, "generation_timeout", "draft generation timed out", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "draft operation failed", nil)
	}
}
