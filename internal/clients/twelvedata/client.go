// Package twelvedata polls the Twelve Data API for daily currency closes and
// feeds them into the rate store. Writes are deduplicated per (pair, date);
// when the provider returns nothing for a pair, the day degrades to the last
// known rate instead of being skipped.
package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkovtun/spend_limits_app/internal/apperrors"
	"github.com/mkovtun/spend_limits_app/internal/core/domain"
	portssvc "github.com/mkovtun/spend_limits_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// Client fetches daily exchange rates for a configured set of currency pairs.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	pairs       [][2]string
	interval    time.Duration
	rateService portssvc.ExchangeRateSvcFacade
	logger      *slog.Logger
}

// New creates a quote poller. pairs are "FROM/TO" strings; malformed entries
// are dropped with a warning.
func New(baseURL, apiKey string, pairs []string, interval time.Duration, rateService portssvc.ExchangeRateSvcFacade, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	parsed := make([][2]string, 0, len(pairs))
	for _, pair := range pairs {
		parts := strings.Split(pair, "/")
		if len(parts) != 2 || len(parts[0]) != 3 || len(parts[1]) != 3 {
			logger.Warn("skipping malformed currency pair", slog.String("pair", pair))
			continue
		}
		parsed = append(parsed, [2]string{strings.ToUpper(parts[0]), strings.ToUpper(parts[1])})
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		pairs:       parsed,
		interval:    interval,
		rateService: rateService,
		logger:      logger,
	}
}

// Run refreshes all pairs immediately, then on every tick until the context
// is cancelled.
func (c *Client) Run(ctx context.Context) {
	c.RefreshAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("rate poller stopping")
			return
		case <-ticker.C:
			c.RefreshAll(ctx)
		}
	}
}

// RefreshAll fetches and stores today's rate for every configured pair.
// Per-pair failures are logged and skipped; they never abort the run.
func (c *Client) RefreshAll(ctx context.Context) {
	c.logger.Info("refreshing exchange rates", slog.Int("pairs", len(c.pairs)))
	for _, pair := range c.pairs {
		rate, err := c.fetchRate(ctx, pair[0], pair[1])
		if err != nil {
			c.logger.Error("failed to fetch rate",
				slog.String("from", pair[0]), slog.String("to", pair[1]),
				slog.String("error", err.Error()))
			continue
		}
		if rate == nil {
			continue
		}
		saved, err := c.rateService.SaveRateIfAbsent(ctx, *rate)
		if err != nil {
			c.logger.Error("failed to save fetched rate",
				slog.String("from", pair[0]), slog.String("to", pair[1]),
				slog.String("error", err.Error()))
			continue
		}
		if saved {
			c.logger.Info("new rate stored",
				slog.String("from", pair[0]), slog.String("to", pair[1]),
				slog.String("close", rate.ClosePrice.String()))
		}
	}
	c.logger.Info("exchange rate refresh finished")
}

type timeSeriesResponse struct {
	Values []struct {
		Datetime string `json:"datetime"`
		Close    string `json:"close"`
	} `json:"values"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// fetchRate builds today's rate record for a pair from the provider's latest
// daily close. When the provider has no data, it degrades to the last known
// rate for the pair; a nil record with nil error means the pair has no usable
// rate at all today.
func (c *Client) fetchRate(ctx context.Context, fromCurrency, toCurrency string) (*domain.ExchangeRate, error) {
	today := dateOnly(time.Now())

	query := url.Values{}
	query.Set("symbol", fromCurrency+"/"+toCurrency)
	query.Set("interval", "1day")
	query.Set("outputsize", "1")
	query.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/time_series?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var payload timeSeriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	if payload.Status == "error" {
		c.logger.Warn("provider reported an error, trying last known rate",
			slog.String("from", fromCurrency), slog.String("to", toCurrency),
			slog.String("message", payload.Message))
		return c.fallbackRate(ctx, fromCurrency, toCurrency, today)
	}
	if len(payload.Values) == 0 {
		c.logger.Warn("provider returned no data, trying last known rate",
			slog.String("from", fromCurrency), slog.String("to", toCurrency))
		return c.fallbackRate(ctx, fromCurrency, toCurrency, today)
	}

	closePrice, err := decimal.NewFromString(payload.Values[0].Close)
	if err != nil {
		return nil, fmt.Errorf("provider returned unparseable close %q: %w", payload.Values[0].Close, err)
	}

	// Previous close comes from yesterday's stored rate; today's close stands
	// in when there is none.
	previousClose := closePrice
	if prev, err := c.rateService.LookupRate(ctx, fromCurrency, toCurrency, today.AddDate(0, 0, -1)); err == nil {
		previousClose = prev.ClosePrice
	}

	return &domain.ExchangeRate{
		RateID:             uuid.NewString(),
		FromCurrency:       fromCurrency,
		ToCurrency:         toCurrency,
		Date:               today,
		ClosePrice:         closePrice,
		PreviousClosePrice: previousClose,
		CreatedAt:          time.Now(),
	}, nil
}

// fallbackRate reuses the most recent stored rate as today's record, so the
// day is not left without a quote. Returns nil when the pair has never had a
// rate.
func (c *Client) fallbackRate(ctx context.Context, fromCurrency, toCurrency string, today time.Time) (*domain.ExchangeRate, error) {
	last, err := c.rateService.LookupRate(ctx, fromCurrency, toCurrency, today)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.logger.Error("no rate data available at all for pair",
				slog.String("from", fromCurrency), slog.String("to", toCurrency))
			return nil, nil
		}
		return nil, err
	}
	if last.Date.Equal(today) {
		// Today's record already exists; nothing to write.
		return nil, nil
	}
	c.logger.Info("using last known rate as today's quote",
		slog.String("from", fromCurrency), slog.String("to", toCurrency),
		slog.String("close", last.ClosePrice.String()))
	return &domain.ExchangeRate{
		RateID:             uuid.NewString(),
		FromCurrency:       fromCurrency,
		ToCurrency:         toCurrency,
		Date:               today,
		ClosePrice:         last.ClosePrice,
		PreviousClosePrice: last.ClosePrice,
		CreatedAt:          time.Now(),
	}, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
