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

// transactionHandler handles HTTP requests related to transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

// newTransactionHandler creates a new transactionHandler.
func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{
		transactionService: ts,
	}
}

// registerTransactionRoutes registers routes related to transactions.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.receiveTransaction)
		transactions.GET("/exceeded", h.getExceededTransactions)
	}
}

// receiveTransaction godoc
// @Summary Register a new transaction
// @Description Converts the amount into the reference currency, checks the monthly category limit, and persists the transaction.
func (h *transactionHandler) receiveTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for transaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received transaction",
		slog.String("account_from", req.AccountFrom),
		slog.String("currency", req.CurrencyShortname),
		slog.String("category", req.ExpenseCategory),
	)

	txn, err := h.transactionService.ProcessTransaction(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error processing transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrRateUnavailable):
			logger.Warn("No usable exchange rate for transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to process transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process transaction"})
		}
		return
	}

	logger.Info("Transaction processed",
		slog.String("transaction_id", txn.TransactionID),
		slog.Bool("limit_exceeded", txn.LimitExceeded),
	)
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// getExceededTransactions godoc
// @Summary List limit-exceeding transactions
// @Description Returns all transactions flagged as exceeding their monthly limit, joined with the limit version applicable at each transaction's timestamp, newest first.
func (h *transactionHandler) getExceededTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	exceeded, err := h.transactionService.ExceededTransactions(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list exceeded transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve exceeded transactions"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListExceededTransactionResponse(exceeded))
}
