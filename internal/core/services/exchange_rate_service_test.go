package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mkovtun/spend_limits_app/internal/apperrors"
	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	portssvc "github.com/mkovtun/spend_limits_app/internal/core/ports/services"
	"github.com/mkovtun/spend_limits_app/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindByPairAndDate(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrency, toCurrency, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) FindLatestByPair(ctx context.Context, fromCurrency, toCurrency string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrency, toCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListByDate(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) InsertIfAbsent(ctx context.Context, rate domain.ExchangeRate) (bool, error) {
	args := m.Called(ctx, rate)
	return args.Bool(0), args.Error(1)
}

// --- Test Suite ---
type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo *MockExchangeRateRepository
	service      portssvc.ExchangeRateSvcFacade
	today        time.Time
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.service = services.NewExchangeRateService(suite.mockRateRepo, "USD", map[string]string{"KZT": "RUB"}, nil)
	suite.today = time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *ExchangeRateServiceTestSuite) rateRecord(from, to string, close string) *domain.ExchangeRate {
	return &domain.ExchangeRate{
		RateID:             uuid.NewString(),
		FromCurrency:       from,
		ToCurrency:         to,
		Date:               suite.today,
		ClosePrice:         decimal.RequireFromString(close),
		PreviousClosePrice: decimal.RequireFromString(close),
		CreatedAt:          suite.today,
	}
}

// --- Resolve ---

func (suite *ExchangeRateServiceTestSuite) TestResolve_SameCurrencyIsIdentity() {
	ctx := context.Background()

	rate, err := suite.service.Resolve(ctx, "USD", "USD", suite.today)

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.NewFromInt(1)))
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindByPairAndDate")
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_ExactMatch() {
	ctx := context.Background()
	stored := suite.rateRecord("EUR", "USD", "1.08")

	suite.mockRateRepo.On("FindByPairAndDate", ctx, "EUR", "USD", suite.today).Return(stored, nil).Once()

	rate, err := suite.service.Resolve(ctx, "EUR", "USD", suite.today)

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.RequireFromString("1.08")))
	suite.mockRateRepo.AssertExpectations(suite.T())
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindLatestByPair")
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_FallsBackToMostRecent() {
	ctx := context.Background()
	stale := suite.rateRecord("EUR", "USD", "1.05")
	stale.Date = suite.today.AddDate(0, 0, -3)

	suite.mockRateRepo.On("FindByPairAndDate", ctx, "EUR", "USD", suite.today).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestByPair", ctx, "EUR", "USD").Return(stale, nil).Once()

	rate, err := suite.service.Resolve(ctx, "EUR", "USD", suite.today)

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.RequireFromString("1.05")))
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_DerivesCrossRateThroughBridge() {
	ctx := context.Background()
	leg1 := suite.rateRecord("KZT", "RUB", "0.0021")
	leg2 := suite.rateRecord("RUB", "USD", "0.011")

	suite.mockRateRepo.On("FindByPairAndDate", ctx, "KZT", "USD", suite.today).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestByPair", ctx, "KZT", "USD").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindByPairAndDate", ctx, "KZT", "RUB", suite.today).Return(leg1, nil).Once()
	suite.mockRateRepo.On("FindByPairAndDate", ctx, "RUB", "USD", suite.today).Return(leg2, nil).Once()
	suite.mockRateRepo.On("InsertIfAbsent", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(true, nil).Once()

	rate, err := suite.service.Resolve(ctx, "KZT", "USD", suite.today)

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.RequireFromString("0.0000231")), "got %s", rate)
	suite.mockRateRepo.AssertExpectations(suite.T())

	// The derived rate must be cached under the original pair and date.
	cached := suite.mockRateRepo.Calls[len(suite.mockRateRepo.Calls)-1].Arguments.Get(1).(domain.ExchangeRate)
	suite.Equal("KZT", cached.FromCurrency)
	suite.Equal("USD", cached.ToCurrency)
	suite.True(cached.Date.Equal(suite.today))
	suite.True(cached.ClosePrice.Equal(rate))
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_CrossRateCacheFailureIsNotFatal() {
	ctx := context.Background()
	leg1 := suite.rateRecord("KZT", "RUB", "0.0021")
	leg2 := suite.rateRecord("RUB", "USD", "0.011")

	suite.mockRateRepo.On("FindByPairAndDate", ctx, "KZT", "USD", suite.today).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestByPair", ctx, "KZT", "USD").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindByPairAndDate", ctx, "KZT", "RUB", suite.today).Return(leg1, nil).Once()
	suite.mockRateRepo.On("FindByPairAndDate", ctx, "RUB", "USD", suite.today).Return(leg2, nil).Once()
	suite.mockRateRepo.On("InsertIfAbsent", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(false, errors.New("connection reset")).Once()

	rate, err := suite.service.Resolve(ctx, "KZT", "USD", suite.today)

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.RequireFromString("0.0000231")))
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_CrossRateMissingLegNamesThePair() {
	ctx := context.Background()
	leg1 := suite.rateRecord("KZT", "RUB", "0.0021")

	suite.mockRateRepo.On("FindByPairAndDate", ctx, "KZT", "USD", suite.today).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestByPair", ctx, "KZT", "USD").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindByPairAndDate", ctx, "KZT", "RUB", suite.today).Return(leg1, nil).Once()
	suite.mockRateRepo.On("FindByPairAndDate", ctx, "RUB", "USD", suite.today).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestByPair", ctx, "RUB", "USD").Return(nil, apperrors.ErrNotFound).Once()

	rate, err := suite.service.Resolve(ctx, "KZT", "USD", suite.today)

	suite.Require().Error(err)
	suite.True(rate.IsZero())
	suite.ErrorIs(err, apperrors.ErrRateUnavailable)
	suite.Contains(err.Error(), "RUB/USD")
	suite.mockRateRepo.AssertNotCalled(suite.T(), "InsertIfAbsent")
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_NoBridgeConfigured() {
	ctx := context.Background()

	suite.mockRateRepo.On("FindByPairAndDate", ctx, "GBP", "USD", suite.today).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestByPair", ctx, "GBP", "USD").Return(nil, apperrors.ErrNotFound).Once()

	rate, err := suite.service.Resolve(ctx, "GBP", "USD", suite.today)

	suite.Require().Error(err)
	suite.True(rate.IsZero())
	suite.ErrorIs(err, apperrors.ErrRateUnavailable)
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_NoDerivationAwayFromBaseCurrency() {
	ctx := context.Background()

	// KZT has a bridge, but the target is not the base currency.
	suite.mockRateRepo.On("FindByPairAndDate", ctx, "KZT", "EUR", suite.today).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestByPair", ctx, "KZT", "EUR").Return(nil, apperrors.ErrNotFound).Once()

	rate, err := suite.service.Resolve(ctx, "KZT", "EUR", suite.today)

	suite.Require().Error(err)
	suite.True(rate.IsZero())
	suite.ErrorIs(err, apperrors.ErrRateUnavailable)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindByPairAndDate", ctx, "KZT", "RUB", suite.today)
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_InvalidCode() {
	ctx := context.Background()

	rate, err := suite.service.Resolve(ctx, "US", "EUR", suite.today)

	suite.Require().Error(err)
	suite.True(rate.IsZero())
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- SaveRateIfAbsent ---

func (suite *ExchangeRateServiceTestSuite) TestSaveRateIfAbsent_Success() {
	ctx := context.Background()
	rate := *suite.rateRecord("EUR", "USD", "1.08")

	suite.mockRateRepo.On("InsertIfAbsent", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(true, nil).Once()

	saved, err := suite.service.SaveRateIfAbsent(ctx, rate)

	suite.Require().NoError(err)
	suite.True(saved)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestSaveRateIfAbsent_DuplicateSkipped() {
	ctx := context.Background()
	rate := *suite.rateRecord("EUR", "USD", "1.08")

	suite.mockRateRepo.On("InsertIfAbsent", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(false, nil).Once()

	saved, err := suite.service.SaveRateIfAbsent(ctx, rate)

	suite.Require().NoError(err)
	suite.False(saved)
}

func (suite *ExchangeRateServiceTestSuite) TestSaveRateIfAbsent_SameCurrency() {
	ctx := context.Background()
	rate := *suite.rateRecord("USD", "USD", "1")

	saved, err := suite.service.SaveRateIfAbsent(ctx, rate)

	suite.Require().Error(err)
	suite.False(saved)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "cannot be the same")
	suite.mockRateRepo.AssertNotCalled(suite.T(), "InsertIfAbsent")
}

func (suite *ExchangeRateServiceTestSuite) TestSaveRateIfAbsent_NonPositiveClose() {
	ctx := context.Background()
	rate := *suite.rateRecord("EUR", "USD", "1.08")
	rate.ClosePrice = decimal.Zero

	saved, err := suite.service.SaveRateIfAbsent(ctx, rate)

	suite.Require().Error(err)
	suite.False(saved)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "must be positive")
}

func (suite *ExchangeRateServiceTestSuite) TestSaveRateIfAbsent_FillsIdentity() {
	ctx := context.Background()
	rate := *suite.rateRecord("EUR", "USD", "1.08")
	rate.RateID = ""
	rate.CreatedAt = time.Time{}

	suite.mockRateRepo.On("InsertIfAbsent", ctx, mock.MatchedBy(func(r domain.ExchangeRate) bool {
		return r.RateID != "" && !r.CreatedAt.IsZero()
	})).Return(true, nil).Once()

	saved, err := suite.service.SaveRateIfAbsent(ctx, rate)

	suite.Require().NoError(err)
	suite.True(saved)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

// --- RatesOnDate ---

func (suite *ExchangeRateServiceTestSuite) TestRatesOnDate_Success() {
	ctx := context.Background()
	stored := []domain.ExchangeRate{*suite.rateRecord("EUR", "USD", "1.08"), *suite.rateRecord("RUB", "USD", "0.011")}

	suite.mockRateRepo.On("ListByDate", ctx, suite.today).Return(stored, nil).Once()

	rates, err := suite.service.RatesOnDate(ctx, suite.today)

	suite.Require().NoError(err)
	suite.Len(rates, 2)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func TestNewExchangeRateService(t *testing.T) {
	mockRateRepo := new(MockExchangeRateRepository)

	service := services.NewExchangeRateService(mockRateRepo, "USD", nil, nil)

	assert.NotNil(t, service)
	var _ portssvc.ExchangeRateSvcFacade = service
}

// --- Run Suite ---
func TestExchangeRateService(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
