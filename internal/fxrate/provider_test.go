package fxrate

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/httpx"
)

func newTestProvider(url string, cache Cache) *Provider {
	return NewProvider(Options{
		Client:   httpx.NewClient(httpx.WithMaxRetries(0)),
		QuoteURL: url,
		Cache:    cache,
		Logger:   log.New(io.Discard, "", 0),
	})
}

func TestResolve_LiveThenCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"USDBRL":{"code":"USD","codein":"BRL","bid":"5.4321","ask":"5.44"}}`)
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL, NewMemoryCache())
	ctx := context.Background()

	q := p.Resolve(ctx)
	assert.Equal(t, SourceLive, q.Source)
	assert.InDelta(t, 5.4321, q.Rate, 1e-9)

	q = p.Resolve(ctx)
	assert.Equal(t, SourceCache, q.Source)
	assert.InDelta(t, 5.4321, q.Rate, 1e-9)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResolve_FallbackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"unparseable bid", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"USDBRL":{"bid":"n/a"}}`)
		}},
		{"zero bid", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"USDBRL":{"bid":"0"}}`)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			cache := NewMemoryCache()
			q := newTestProvider(srv.URL, cache).Resolve(context.Background())
			assert.Equal(t, SourceFallback, q.Source)
			assert.Equal(t, DefaultFallback, q.Rate)

			_, ok, err := cache.Get(context.Background(), cacheKey)
			require.NoError(t, err)
			assert.False(t, ok, "fallback must not be cached")
		})
	}
}

func TestResolve_CustomFallback(t *testing.T) {
	p := NewProvider(Options{
		Client:   httpx.NewClient(httpx.WithMaxRetries(0)),
		QuoteURL: "http://127.0.0.1:1/unreachable",
		Fallback: 5.0,
		Logger:   log.New(io.Discard, "", 0),
	})
	q := p.Resolve(context.Background())
	assert.Equal(t, SourceFallback, q.Source)
	assert.Equal(t, 5.0, q.Rate)
}

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 5.5, time.Minute))
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5.5, v)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
}
