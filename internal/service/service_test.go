package service

import (
	"context"
	"io"
	"reflect"
	"testing"

	"github.com/fintrackhq/fintrack/internal/config"
	"github.com/fintrackhq/fintrack/internal/models"
	"github.com/sirupsen/logrus"
)

type mockResolver struct {
	resolved [][]string
	result   map[string]models.PriceQuote
}

func (m *mockResolver) Resolve(ctx context.Context, symbols []string) (map[string]models.PriceQuote, error) {
	m.resolved = append(m.resolved, symbols)
	return m.result, nil
}

func newPriceService(store *mockStore, resolver *mockResolver) *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(store, resolver, nil, log, &config.Config{})
}

func TestResolvePricesRequiresIdentity(t *testing.T) {
	resolver := &mockResolver{}
	svc := newPriceService(&mockStore{}, resolver)

	if _, err := svc.ResolvePrices(context.Background(), []string{"AAPL"}); err == nil {
		t.Fatal("expected error")
	}
	if len(resolver.resolved) != 0 {
		t.Error("resolver invoked without identity")
	}

	if _, err := svc.ResolvePrices(authedContext("42"), []string{"AAPL"}); err != nil {
		t.Fatalf("ResolvePrices failed: %v", err)
	}
	if len(resolver.resolved) != 1 {
		t.Errorf("resolver calls = %d, want 1", len(resolver.resolved))
	}
}

func TestRefreshHeldQuotes(t *testing.T) {
	store := &mockStore{heldSymbols: []string{"AAPL", "MSFT"}}
	resolver := &mockResolver{result: map[string]models.PriceQuote{}}
	svc := newPriceService(store, resolver)

	if err := svc.RefreshHeldQuotes(context.Background()); err != nil {
		t.Fatalf("RefreshHeldQuotes failed: %v", err)
	}
	if len(resolver.resolved) != 1 || !reflect.DeepEqual(resolver.resolved[0], []string{"AAPL", "MSFT"}) {
		t.Errorf("resolved = %v", resolver.resolved)
	}
}

func TestRefreshHeldQuotesNoHoldings(t *testing.T) {
	resolver := &mockResolver{}
	svc := newPriceService(&mockStore{}, resolver)

	if err := svc.RefreshHeldQuotes(context.Background()); err != nil {
		t.Fatalf("RefreshHeldQuotes failed: %v", err)
	}
	if len(resolver.resolved) != 0 {
		t.Error("resolver invoked with no held symbols")
	}
}
