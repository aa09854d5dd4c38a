package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkovtun/spend_limits_app/internal/apperrors"
	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	portssvc "github.com/mkovtun/spend_limits_app/internal/core/ports/services"
	"github.com/mkovtun/spend_limits_app/internal/core/services"
	"github.com/mkovtun/spend_limits_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock LimitRepository ---
type MockLimitRepository struct {
	mock.Mock
}

func (m *MockLimitRepository) FindApplicableAt(ctx context.Context, category domain.ExpenseCategory, at time.Time) (*domain.ExpenseLimit, error) {
	args := m.Called(ctx, category, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseLimit), args.Error(1)
}

func (m *MockLimitRepository) SaveLimit(ctx context.Context, limit domain.ExpenseLimit) error {
	args := m.Called(ctx, limit)
	return args.Error(0)
}

// --- Test Suite ---
type LimitServiceTestSuite struct {
	suite.Suite
	mockLimitRepo *MockLimitRepository
	service       portssvc.LimitSvcFacade
	defaultLimit  decimal.Decimal
}

func (suite *LimitServiceTestSuite) SetupTest() {
	suite.mockLimitRepo = new(MockLimitRepository)
	suite.defaultLimit = decimal.RequireFromString("1000.00")
	suite.service = services.NewLimitService(suite.mockLimitRepo, "USD", suite.defaultLimit, nil)
}

func (suite *LimitServiceTestSuite) TestSetNewLimit_Success() {
	ctx := context.Background()
	req := dto.SetLimitRequest{
		LimitSum:        decimal.RequireFromString("500.00"),
		ExpenseCategory: "product",
	}

	suite.mockLimitRepo.On("SaveLimit", ctx, mock.AnythingOfType("domain.ExpenseLimit")).Return(nil).Once()

	limit, err := suite.service.SetNewLimit(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(limit)
	suite.NotEmpty(limit.LimitID)
	suite.True(limit.LimitSum.Equal(req.LimitSum))
	suite.Equal("USD", limit.Currency)
	suite.Equal(domain.CategoryProduct, limit.Category)
	suite.False(limit.EffectiveFrom.IsZero())
	suite.mockLimitRepo.AssertExpectations(suite.T())
}

func (suite *LimitServiceTestSuite) TestSetNewLimit_NonPositiveSum() {
	ctx := context.Background()
	req := dto.SetLimitRequest{
		LimitSum:        decimal.Zero,
		ExpenseCategory: "product",
	}

	limit, err := suite.service.SetNewLimit(ctx, req)

	suite.Require().Error(err)
	suite.Nil(limit)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "must be positive")
	suite.mockLimitRepo.AssertNotCalled(suite.T(), "SaveLimit")
}

func (suite *LimitServiceTestSuite) TestSetNewLimit_UnknownCategory() {
	ctx := context.Background()
	req := dto.SetLimitRequest{
		LimitSum:        decimal.RequireFromString("500.00"),
		ExpenseCategory: "groceries",
	}

	limit, err := suite.service.SetNewLimit(ctx, req)

	suite.Require().Error(err)
	suite.Nil(limit)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLimitRepo.AssertNotCalled(suite.T(), "SaveLimit")
}

func (suite *LimitServiceTestSuite) TestSetNewLimit_SaveFailure() {
	ctx := context.Background()
	req := dto.SetLimitRequest{
		LimitSum:        decimal.RequireFromString("500.00"),
		ExpenseCategory: "service",
	}

	suite.mockLimitRepo.On("SaveLimit", ctx, mock.AnythingOfType("domain.ExpenseLimit")).Return(errors.New("connection reset")).Once()

	limit, err := suite.service.SetNewLimit(ctx, req)

	suite.Require().Error(err)
	suite.Nil(limit)
	suite.mockLimitRepo.AssertExpectations(suite.T())
}

func (suite *LimitServiceTestSuite) TestApplicableLimit_VersionInForce() {
	ctx := context.Background()
	at := time.Date(2022, 2, 10, 12, 0, 0, 0, time.UTC)
	stored := &domain.ExpenseLimit{
		LimitID:       "limit_1",
		LimitSum:      decimal.RequireFromString("750.00"),
		Currency:      "USD",
		Category:      domain.CategoryProduct,
		EffectiveFrom: at.AddDate(0, 0, -5),
	}

	suite.mockLimitRepo.On("FindApplicableAt", ctx, domain.CategoryProduct, at).Return(stored, nil).Once()

	limit, err := suite.service.ApplicableLimit(ctx, domain.CategoryProduct, at)

	suite.Require().NoError(err)
	suite.True(limit.Equal(stored.LimitSum))
	suite.mockLimitRepo.AssertExpectations(suite.T())
}

func (suite *LimitServiceTestSuite) TestApplicableLimit_DefaultWhenNoneSet() {
	ctx := context.Background()
	at := time.Date(2022, 2, 10, 12, 0, 0, 0, time.UTC)

	suite.mockLimitRepo.On("FindApplicableAt", ctx, domain.CategoryService, at).Return(nil, apperrors.ErrNotFound).Once()

	limit, err := suite.service.ApplicableLimit(ctx, domain.CategoryService, at)

	suite.Require().NoError(err)
	suite.True(limit.Equal(suite.defaultLimit))
	suite.mockLimitRepo.AssertExpectations(suite.T())
}

func (suite *LimitServiceTestSuite) TestApplicableLimit_RepositoryFailure() {
	ctx := context.Background()
	at := time.Date(2022, 2, 10, 12, 0, 0, 0, time.UTC)

	suite.mockLimitRepo.On("FindApplicableAt", ctx, domain.CategoryService, at).Return(nil, errors.New("connection reset")).Once()

	limit, err := suite.service.ApplicableLimit(ctx, domain.CategoryService, at)

	suite.Require().Error(err)
	suite.True(limit.IsZero())
	suite.mockLimitRepo.AssertExpectations(suite.T())
}

// --- Run Suite ---
func TestLimitService(t *testing.T) {
	suite.Run(t, new(LimitServiceTestSuite))
}
