package prices

import (
	"context"
	"strings"
	"time"

	"github.com/fintrackhq/fintrack/internal/config"
	"github.com/fintrackhq/fintrack/internal/models"
	"github.com/sirupsen/logrus"
)

// Cache is the persistent symbol-to-quote store consulted before going to
// the external provider. It is shared across all users.
type Cache interface {
	GetQuotes(ctx context.Context, symbols []string) (map[string]models.PriceQuote, error)
	UpsertQuotes(ctx context.Context, quotes []models.PriceQuote) error
}

// Resolver assembles quotes for a symbol set: cache first, provider for the
// misses, fetched values written back for the next caller.
type Resolver struct {
	cache      Cache
	fetcher    Fetcher
	log        *logrus.Logger
	delay      time.Duration
	maxSymbols int
	staleAfter time.Duration

	now func() time.Time
}

// NewResolver initializes a new price resolver
func NewResolver(cache Cache, fetcher Fetcher, cfg *config.Config, log *logrus.Logger) *Resolver {
	return &Resolver{
		cache:      cache,
		fetcher:    fetcher,
		log:        log,
		delay:      cfg.QuoteCallDelay,
		maxSymbols: cfg.QuoteMaxSymbols,
		staleAfter: cfg.QuoteStaleAfter,
		now:        time.Now,
	}
}

// Resolve returns a quote for every requested symbol that is either cached
// or successfully fetched. Symbols with no cache entry and no successful
// fetch are absent from the result; absence is how "unavailable" is
// surfaced. Provider calls for cache misses run serially with the
// configured delay between successive calls.
func (r *Resolver) Resolve(ctx context.Context, symbols []string) (map[string]models.PriceQuote, error) {
	requested := normalize(symbols, r.maxSymbols)
	if len(requested) == 0 {
		return map[string]models.PriceQuote{}, nil
	}

	cached, err := r.cache.GetQuotes(ctx, requested)
	if err != nil {
		return nil, err
	}

	result := make(map[string]models.PriceQuote, len(requested))
	var missing []string
	for _, symbol := range requested {
		quote, ok := cached[symbol]
		if !ok {
			missing = append(missing, symbol)
			continue
		}
		if r.stale(quote) {
			// refetched below; the stale value stays in the result as a
			// fallback in case the provider call fails
			missing = append(missing, symbol)
		}
		result[symbol] = quote
	}

	var fetched []models.PriceQuote
	for i, symbol := range missing {
		if i > 0 {
			if err := wait(ctx, r.delay); err != nil {
				return nil, err
			}
		}
		quote, err := r.fetcher.Fetch(ctx, symbol)
		if err != nil {
			r.log.Debugf("quote unavailable for %s: %v", symbol, err)
			continue
		}
		fetched = append(fetched, quote)
		result[symbol] = quote
	}

	// Best effort: a failed cache write only costs the next caller a fetch,
	// this invocation still returns the fresh quotes.
	if len(fetched) > 0 {
		if err := r.cache.UpsertQuotes(ctx, fetched); err != nil {
			r.log.Errorf("Failed to cache %d quotes: %v", len(fetched), err)
		}
	}

	return result, nil
}

func (r *Resolver) stale(quote models.PriceQuote) bool {
	if r.staleAfter <= 0 {
		return false
	}
	return r.now().Sub(quote.AsOf) > r.staleAfter
}

// normalize trims, uppercases and de-duplicates symbols, keeping first
// occurrence order, and caps the set at max entries. Excess symbols are
// silently dropped.
func normalize(symbols []string, max int) []string {
	seen := make(map[string]bool, len(symbols))
	var out []string
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
