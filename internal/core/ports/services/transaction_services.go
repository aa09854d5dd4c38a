package services

import (
	"context"

	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	"github.com/mkovtun/spend_limits_app/internal/dto"
)

// TransactionSvcFacade defines the operations of the transaction processor.
type TransactionSvcFacade interface {
	// ProcessTransaction converts, classifies and persists an incoming
	// transaction. Conversion failure aborts the whole operation.
	ProcessTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error)

	// ExceededTransactions lists all limit-exceeding transactions with the
	// limit version applicable at each transaction's timestamp, newest first.
	ExceededTransactions(ctx context.Context) ([]domain.ExceededTransaction, error)
}

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	ExchangeRate ExchangeRateSvcFacade
	Limit        LimitSvcFacade
	Transaction  TransactionSvcFacade
}
