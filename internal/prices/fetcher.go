package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fintrackhq/fintrack/internal/config"
	"github.com/fintrackhq/fintrack/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Fetcher retrieves a quote for a single symbol from an external provider
type Fetcher interface {
	Fetch(ctx context.Context, symbol string) (models.PriceQuote, error)
}

// QuoteFetcher calls the Alpha Vantage GLOBAL_QUOTE endpoint, one symbol per
// request. The provider has no batch endpoint; rate limiting across calls is
// the resolver's job.
type QuoteFetcher struct {
	url    string
	apiKey string
	client *http.Client
	log    *logrus.Logger
}

// NewQuoteFetcher initializes a new quote fetcher
func NewQuoteFetcher(cfg *config.Config, log *logrus.Logger) *QuoteFetcher {
	return &QuoteFetcher{
		url:    cfg.QuoteURL,
		apiKey: cfg.QuoteAPIKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// globalQuoteResponse mirrors the provider's JSON envelope
type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
	} `json:"Global Quote"`
}

// Fetch retrieves the current price for one symbol. A non-success response
// or an unusable price yields an error; the caller treats the symbol as
// unavailable and moves on.
func (f *QuoteFetcher) Fetch(ctx context.Context, symbol string) (models.PriceQuote, error) {
	addr := fmt.Sprintf("%s?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		f.url, url.QueryEscape(symbol), url.QueryEscape(f.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return models.PriceQuote{}, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return models.PriceQuote{}, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.PriceQuote{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.PriceQuote{}, fmt.Errorf("failed to read response: %v", err)
	}
	f.log.Debugf("provider response for %s: %s", symbol, string(body))

	var parsed globalQuoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.PriceQuote{}, fmt.Errorf("failed to parse response: %v", err)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(parsed.GlobalQuote.Price))
	if err != nil {
		return models.PriceQuote{}, fmt.Errorf("unusable price %q for %s", parsed.GlobalQuote.Price, symbol)
	}
	if price.Sign() <= 0 {
		return models.PriceQuote{}, fmt.Errorf("non-positive price %s for %s", price, symbol)
	}

	return models.PriceQuote{
		Symbol:   symbol,
		Price:    price,
		Currency: "USD",
		AsOf:     time.Now().UTC(),
	}, nil
}
