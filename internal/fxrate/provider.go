// Package fxrate resolves the USD to BRL exchange rate used by the
// landed-cost simulator. A live quote is cached for a TTL; any failure
// falls back to a fixed rate so simulations never fail on the quote.
package fxrate

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/httpx"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/observability"
)

// Rate sources reported with every quote.
const (
	SourceLive     = "live"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// Defaults for Options.
const (
	DefaultQuoteURL = "https://economia.awesomeapi.com.br/json/last/USD-BRL"
	DefaultTTL      = 15 * time.Minute
	DefaultFallback = 6.10

	cacheKey = "fxrate:USD-BRL"
)

// Quote is a resolved exchange rate.
type Quote struct {
	Rate   float64   `json:"rate"`
	Source string    `json:"source"`
	At     time.Time `json:"at"`
}

// Provider resolves quotes.
type Provider struct {
	client   *httpx.Client
	url      string
	cache    Cache
	ttl      time.Duration
	fallback float64
	logger   *log.Logger
	now      func() time.Time
}

// Options configures Provider.
type Options struct {
	Client   *httpx.Client
	QuoteURL string        // Default: DefaultQuoteURL
	Cache    Cache         // Default: in-memory
	TTL      time.Duration // Default: 15m
	Fallback float64       // Default: 6.10
	Logger   *log.Logger
	Now      func() time.Time
}

// NewProvider creates a rate provider.
func NewProvider(opts Options) *Provider {
	p := &Provider{
		client:   opts.Client,
		url:      opts.QuoteURL,
		cache:    opts.Cache,
		ttl:      opts.TTL,
		fallback: opts.Fallback,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if p.client == nil {
		p.client = httpx.NewClient(httpx.WithTimeout(5*time.Second), httpx.WithMaxRetries(1))
	}
	if p.url == "" {
		p.url = DefaultQuoteURL
	}
	if p.cache == nil {
		p.cache = NewMemoryCache()
	}
	if p.ttl == 0 {
		p.ttl = DefaultTTL
	}
	if p.fallback <= 0 {
		p.fallback = DefaultFallback
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

type awesomeQuote struct {
	USDBRL struct {
		Bid string `json:"bid"`
	} `json:"USDBRL"`
}

// Resolve returns the cached rate, a fresh live rate, or the fallback, in
// that order of preference. It never returns an error.
func (p *Provider) Resolve(ctx context.Context) Quote {
	now := p.now().UTC()

	rate, ok, err := p.cache.Get(ctx, cacheKey)
	if err != nil {
		p.logger.Printf("fx cache read failed: %v", err)
	}
	if ok && valid(rate) {
		observability.RecordExchangeRateLookup(SourceCache)
		return Quote{Rate: rate, Source: SourceCache, At: now}
	}

	rate, err = p.Live(ctx)
	if err != nil {
		p.logger.Printf("fx live quote failed, using fallback %.2f: %v", p.fallback, err)
		observability.RecordExchangeRateLookup(SourceFallback)
		return Quote{Rate: p.fallback, Source: SourceFallback, At: now}
	}

	if err := p.cache.Set(ctx, cacheKey, rate, p.ttl); err != nil {
		p.logger.Printf("fx cache write failed: %v", err)
	}
	observability.RecordExchangeRateLookup(SourceLive)
	return Quote{Rate: rate, Source: SourceLive, At: now}
}

// Live fetches the current bid, bypassing the cache.
func (p *Provider) Live(ctx context.Context) (float64, error) {
	var q awesomeQuote
	if err := p.client.GetJSON(ctx, p.url, nil, &q); err != nil {
		return 0, fmt.Errorf("quote: %w", err)
	}
	rate, err := strconv.ParseFloat(q.USDBRL.Bid, 64)
	if err != nil {
		return 0, fmt.Errorf("parse bid %q: %w", q.USDBRL.Bid, err)
	}
	if !valid(rate) {
		return 0, fmt.Errorf("invalid bid %v", rate)
	}
	return rate, nil
}

func valid(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}
