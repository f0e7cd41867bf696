/*
Package currency provides the USD market-rate lookup used on quote
previews. Display-only: the rate is never reconciled into payment plans.

The rate (the Colombian TRM, the official COP/USD reference) is fetched
from a primary API with a secondary fallback and a fixed last-resort
value, then cached so repeated previews don't refetch.
*/
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPrimaryURL  = "https://co.dolarapi.com/v1/trm"
	defaultFallbackURL = "https://open.er-api.com/v6/latest/USD"

	cacheKey = "currency:trm"

	// lastResortRate is used when every upstream fails. Stale beats
	// blank on a preview document.
	lastResortRate = 4000
)

// Service fetches and caches the market rate.
type Service struct {
	client      *http.Client
	cache       Cache
	log         *zap.Logger
	primaryURL  string
	fallbackURL string
	ttl         time.Duration
}

// NewService builds a rate service. cache may be nil (no caching);
// logger may be nil (no logging).
func NewService(cache Cache, log *zap.Logger, ttl time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		client:      &http.Client{Timeout: 10 * time.Second},
		cache:       cache,
		log:         log,
		primaryURL:  defaultPrimaryURL,
		fallbackURL: defaultFallbackURL,
		ttl:         ttl,
	}
}

// Rate returns the current COP/USD rate, preferring the cache, then the
// primary API, then the fallback, then the fixed last resort. It never
// returns an error to the caller: the rate is a display nicety and the
// quote flow must not block on it.
func (s *Service) Rate(ctx context.Context) decimal.Decimal {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, cacheKey); ok {
			if rate, err := decimal.NewFromString(cached); err == nil {
				return rate
			}
		}
	}

	rate, err := s.fetchPrimary(ctx)
	if err != nil {
		s.log.Warn("primary rate source failed, trying fallback", zap.Error(err))
		rate, err = s.fetchFallback(ctx)
	}
	if err != nil {
		s.log.Warn("all rate sources failed, using last resort", zap.Error(err))
		return decimal.NewFromInt(lastResortRate)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, rate.String(), s.ttl); err != nil {
			s.log.Warn("failed to cache rate", zap.Error(err))
		}
	}
	return rate
}

func (s *Service) fetchPrimary(ctx context.Context) (decimal.Decimal, error) {
	var payload struct {
		Valor json.Number `json:"valor"`
	}
	if err := s.getJSON(ctx, s.primaryURL, &payload); err != nil {
		return decimal.Zero, err
	}
	rate, err := decimal.NewFromString(payload.Valor.String())
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid rate %q from primary source", payload.Valor)
	}
	return rate, nil
}

func (s *Service) fetchFallback(ctx context.Context) (decimal.Decimal, error) {
	var payload struct {
		Rates map[string]json.Number `json:"rates"`
	}
	if err := s.getJSON(ctx, s.fallbackURL, &payload); err != nil {
		return decimal.Zero, err
	}
	cop, ok := payload.Rates["COP"]
	if !ok {
		return decimal.Zero, fmt.Errorf("fallback source missing COP rate")
	}
	rate, err := decimal.NewFromString(cop.String())
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid rate %q from fallback source", cop)
	}
	return rate, nil
}

func (s *Service) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ConvertToUSD converts an integer COP amount at the given rate,
// rounded to whole dollars. Zero when either input is unusable.
func ConvertToUSD(cop int64, rate decimal.Decimal) int64 {
	if cop == 0 || !rate.IsPositive() {
		return 0
	}
	return decimal.NewFromInt(cop).Div(rate).Round(0).IntPart()
}
