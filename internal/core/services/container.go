package services

import (
	"log/slog"

	portsrepo "github.com/mkovtun/spend_limits_app/internal/core/ports/repositories"
	portssvc "github.com/mkovtun/spend_limits_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// ContainerOptions carries the configuration the services need.
type ContainerOptions struct {
	BaseCurrency string
	DefaultLimit decimal.Decimal
	BridgeRoutes map[string]string
	Logger       *slog.Logger
}

// NewContainer creates a service container with properly initialized dependencies.
func NewContainer(repos *portsrepo.RepositoryProvider, opts ContainerOptions) *portssvc.ServiceContainer {
	rateService := NewExchangeRateService(repos.ExchangeRateRepo, opts.BaseCurrency, opts.BridgeRoutes, opts.Logger)
	limitService := NewLimitService(repos.LimitRepo, opts.BaseCurrency, opts.DefaultLimit, opts.Logger)
	txnService := NewTransactionService(repos.TransactionRepo, rateService, limitService, opts.BaseCurrency, opts.Logger)

	return &portssvc.ServiceContainer{
		ExchangeRate: rateService,
		Limit:        limitService,
		Transaction:  txnService,
	}
}

// Compile-time interface checks.
var (
	_ portssvc.ExchangeRateSvcFacade = (*ExchangeRateService)(nil)
	_ portssvc.LimitSvcFacade        = (*LimitService)(nil)
	_ portssvc.TransactionSvcFacade  = (*TransactionService)(nil)
)
