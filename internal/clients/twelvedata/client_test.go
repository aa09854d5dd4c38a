package twelvedata_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkovtun/spend_limits_app/internal/apperrors"
	"github.com/mkovtun/spend_limits_app/internal/clients/twelvedata"
	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock ExchangeRateService ---
type MockRateService struct {
	mock.Mock
}

func (m *MockRateService) Resolve(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, fromCurrency, toCurrency, date)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRateService) LookupRate(ctx context.Context, fromCurrency, toCurrency string, date time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrency, toCurrency, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockRateService) RatesOnDate(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockRateService) SaveRateIfAbsent(ctx context.Context, rate domain.ExchangeRate) (bool, error) {
	args := m.Called(ctx, rate)
	return args.Bool(0), args.Error(1)
}

func TestRefreshAll_StoresFetchedRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/time_series", r.URL.Path)
		assert.Equal(t, "EUR/USD", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"values":[{"datetime":"2022-02-10","close":"1.08"}],"status":"ok"}`))
	}))
	defer server.Close()

	mockSvc := new(MockRateService)
	// No stored rate for yesterday, so previous close falls back to today's.
	mockSvc.On("LookupRate", mock.Anything, "EUR", "USD", mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrNotFound).Once()
	mockSvc.On("SaveRateIfAbsent", mock.Anything, mock.MatchedBy(func(rate domain.ExchangeRate) bool {
		return rate.FromCurrency == "EUR" && rate.ToCurrency == "USD" &&
			rate.ClosePrice.Equal(decimal.RequireFromString("1.08")) &&
			rate.PreviousClosePrice.Equal(decimal.RequireFromString("1.08"))
	})).Return(true, nil).Once()

	client := twelvedata.New(server.URL, "test-key", []string{"EUR/USD"}, time.Hour, mockSvc, nil)
	client.RefreshAll(context.Background())

	mockSvc.AssertExpectations(t)
}

func TestRefreshAll_EmptyPayloadFallsBackToLastKnown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"values":[],"status":"ok"}`))
	}))
	defer server.Close()

	lastKnown := &domain.ExchangeRate{
		FromCurrency: "EUR",
		ToCurrency:   "USD",
		Date:         time.Now().AddDate(0, 0, -2).UTC().Truncate(24 * time.Hour),
		ClosePrice:   decimal.RequireFromString("1.05"),
	}

	mockSvc := new(MockRateService)
	mockSvc.On("LookupRate", mock.Anything, "EUR", "USD", mock.AnythingOfType("time.Time")).
		Return(lastKnown, nil).Once()
	mockSvc.On("SaveRateIfAbsent", mock.Anything, mock.MatchedBy(func(rate domain.ExchangeRate) bool {
		return rate.ClosePrice.Equal(lastKnown.ClosePrice)
	})).Return(true, nil).Once()

	client := twelvedata.New(server.URL, "test-key", []string{"EUR/USD"}, time.Hour, mockSvc, nil)
	client.RefreshAll(context.Background())

	mockSvc.AssertExpectations(t)
}

func TestRefreshAll_NoDataAnywhereSkipsPair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"error","message":"symbol not found"}`))
	}))
	defer server.Close()

	mockSvc := new(MockRateService)
	mockSvc.On("LookupRate", mock.Anything, "EUR", "USD", mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrNotFound).Once()

	client := twelvedata.New(server.URL, "test-key", []string{"EUR/USD"}, time.Hour, mockSvc, nil)
	client.RefreshAll(context.Background())

	mockSvc.AssertExpectations(t)
	mockSvc.AssertNotCalled(t, "SaveRateIfAbsent")
}

func TestNew_DropsMalformedPairs(t *testing.T) {
	mockSvc := new(MockRateService)
	client := twelvedata.New("http://example.invalid", "test-key", []string{"EURUSD", "EUR/US", "EUR/USD/JPY"}, time.Hour, mockSvc, nil)
	require.NotNil(t, client)

	// All pairs were rejected, so a refresh makes no calls at all.
	client.RefreshAll(context.Background())
	mockSvc.AssertNotCalled(t, "SaveRateIfAbsent")
	mockSvc.AssertNotCalled(t, "LookupRate")
}
