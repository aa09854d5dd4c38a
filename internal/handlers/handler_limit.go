package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkovtun/spend_limits_app/internal/apperrors"
	portssvc "github.com/mkovtun/spend_limits_app/internal/core/ports/services"
	"github.com/mkovtun/spend_limits_app/internal/dto"
	"github.com/mkovtun/spend_limits_app/internal/middleware"
)

// limitHandler handles HTTP requests related to expense limits.
type limitHandler struct {
	limitService portssvc.LimitSvcFacade
}

// newLimitHandler creates a new limitHandler.
func newLimitHandler(ls portssvc.LimitSvcFacade) *limitHandler {
	return &limitHandler{
		limitService: ls,
	}
}

// registerLimitRoutes registers routes related to expense limits.
func registerLimitRoutes(rg *gin.RouterGroup, limitService portssvc.LimitSvcFacade) {
	h := newLimitHandler(limitService)

	limits := rg.Group("/limits")
	{
		limits.POST("", h.setNewLimit)
	}
}

// setNewLimit godoc
// @Summary Set a new monthly expense limit
// @Description Appends a new limit version for a category, effective from now. Earlier versions are kept; past transactions stay judged against the limit in force when they occurred.
func (h *limitHandler) setNewLimit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SetLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for limit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	limit, err := h.limitService.SetNewLimit(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error setting limit", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to set limit", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set limit"})
		}
		return
	}

	logger.Info("Limit set", slog.String("limit_id", limit.LimitID), slog.String("category", string(limit.Category)))
	c.JSON(http.StatusCreated, dto.ToLimitResponse(limit))
}
