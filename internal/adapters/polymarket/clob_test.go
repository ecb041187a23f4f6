package polymarket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bluabaleno/premarket-tracker/internal/adapters/polymarket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(gammaSrv, clobSrv *httptest.Server) *polymarket.Client {
	opts := polymarket.Options{
		RetryWait: time.Millisecond,
		Now:       func() time.Time { return time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC) },
	}
	if gammaSrv != nil {
		opts.GammaBase = gammaSrv.URL
	}
	if clobSrv != nil {
		opts.CLOBBase = clobSrv.URL
	} else {
		opts.SkipBooks = true
	}
	return polymarket.NewClient(opts)
}

func fixtureServer(t *testing.T, path, fixture string) *httptest.Server {
	t.Helper()
	data, err := os.ReadFile("../../../testdata/fixtures/" + fixture)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchOrderBooks_Batch(t *testing.T) {
	srv := fixtureServer(t, "/books", "clob_orderbooks_batch.json")

	client := newTestClient(nil, srv)
	books, err := client.FetchOrderBooks(context.Background(), []string{"tok_zama_500m_yes", "tok_zama_1b_yes"})

	require.NoError(t, err)
	require.Len(t, books, 3)

	book, ok := books["tok_zama_500m_yes"]
	require.True(t, ok)
	assert.InDelta(t, 0.61, book.BestBid(), 0.001)
	assert.InDelta(t, 0.63, book.BestAsk(), 0.001)
	assert.InDelta(t, 0.62, book.Midpoint(), 0.001)

	// Bids: mayor a menor. Asks: menor a mayor.
	require.Len(t, book.Bids, 2)
	assert.Greater(t, book.Bids[0].Price, book.Bids[1].Price)
	require.Len(t, book.Asks, 2)
	assert.Less(t, book.Asks[0].Price, book.Asks[1].Price)

	// Niveles con precio 0 se descartan
	assert.Len(t, books["tok_sent_yes"].Asks, 1)
}

func TestFetchOrderBooks_BatchSplitting(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]any{})
	}))
	defer srv.Close()

	client := newTestClient(nil, srv)

	// 25 token_ids → 2 requests (batch de 20 + batch de 5)
	tokenIDs := make([]string, 25)
	for i := range tokenIDs {
		tokenIDs[i] = "token_" + string(rune('a'+i%26))
	}

	_, err := client.FetchOrderBooks(context.Background(), tokenIDs)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "debe hacer 2 requests batch para 25 tokens")
}

func TestFetchOrderBooks_Empty(t *testing.T) {
	client := newTestClient(nil, nil)
	books, err := client.FetchOrderBooks(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, books)
}
