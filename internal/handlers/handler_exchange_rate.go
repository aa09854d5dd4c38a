package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkovtun/spend_limits_app/internal/apperrors"
	portssvc "github.com/mkovtun/spend_limits_app/internal/core/ports/services"
	"github.com/mkovtun/spend_limits_app/internal/dto"
	"github.com/mkovtun/spend_limits_app/internal/middleware"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
	}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	rates := rg.Group("/rates")
	{
		rates.GET("/today", h.getTodaysRates)
		rates.GET("/:from/:to", h.resolveRate)
	}
}

// getTodaysRates godoc
// @Summary Get today's exchange rates
// @Description Returns all exchange rates recorded for the current date.
func (h *exchangeRateHandler) getTodaysRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	today := dateOnly(time.Now())
	rates, err := h.exchangeRateService.RatesOnDate(c.Request.Context(), today)
	if err != nil {
		logger.Error("Failed to list today's rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rates"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListExchangeRateResponse(rates))
}

// resolveRate godoc
// @Summary Resolve an exchange rate
// @Description Resolves a rate for a currency pair on a date (today when omitted): exact match, most recent fallback, then bridge cross-rate derivation.
func (h *exchangeRateHandler) resolveRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fromCode := strings.ToUpper(c.Param("from"))
	toCode := strings.ToUpper(c.Param("to"))

	if len(fromCode) != 3 || len(toCode) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency codes must be 3 letters"})
		return
	}

	date := dateOnly(time.Now())
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	rate, err := h.exchangeRateService.Resolve(c.Request.Context(), fromCode, toCode, date)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrRateUnavailable):
			logger.Warn("Rate unavailable", slog.String("from", fromCode), slog.String("to", toCode))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to resolve rate", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve rate"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ResolvedRateResponse{
		FromCurrency: fromCode,
		ToCurrency:   toCode,
		Date:         date,
		Rate:         rate,
	})
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
