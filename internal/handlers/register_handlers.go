package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	portssvc "github.com/mkovtun/spend_limits_app/internal/core/ports/services"
	"github.com/mkovtun/spend_limits_app/internal/dto"
	"github.com/mkovtun/spend_limits_app/internal/middleware"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	limiterInstance *limiter.Limiter,
) {
	registerCustomValidators()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Setup API v1 routes, passing service interfaces
	v1 := r.Group("/api/v1", middleware.RateLimit(limiterInstance))
	registerTransactionRoutes(v1, services.Transaction)
	registerLimitRoutes(v1, services.Limit)
	registerExchangeRateRoutes(v1, services.ExchangeRate)
}

// registerCustomValidators wires binding rules not covered by the built-in tags.
func registerCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("expensecategory", dto.ValidateExpenseCategory)
	}
}
