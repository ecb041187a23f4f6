package polymarket

// clob.go — orderbooks del CLOB de Polymarket.
//
// FetchOrderBooks lanza un goroutine por batch de /books. El rate limiter del
// endpoint marca el ritmo, así que no hace falta semáforo explícito.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

const (
	booksPath = "/books"
	batchSize = 20 // máx token_ids por request a /books

	// depthBand es la distancia máxima al midpoint para contar profundidad.
	depthBand = 0.05
)

// EnrichLiquidity pide el book del token YES de cada mercado abierto y
// rellena Liquidity (bids, asks y USDC en reposo a ±5c del mid).
// Los mercados sin book en la respuesta quedan con profundidad 0.
func (c *Client) EnrichLiquidity(ctx context.Context, quotes []domain.MarketQuote) error {
	var tokenIDs []string
	for _, q := range quotes {
		if !q.Closed && q.YesTokenID != "" {
			tokenIDs = append(tokenIDs, q.YesTokenID)
		}
	}

	books, err := c.FetchOrderBooks(ctx, tokenIDs)
	if err != nil {
		return fmt.Errorf("polymarket.EnrichLiquidity: %w", err)
	}

	enriched := 0
	for i := range quotes {
		book, ok := books[quotes[i].YesTokenID]
		if !ok {
			continue
		}
		quotes[i].Liquidity = domain.Liquidity{
			Type:  domain.LiquidityCLOB,
			Depth: book.DepthWithinUSDC(depthBand),
			Bids:  book.Bids,
			Asks:  book.Asks,
		}
		enriched++
	}

	slog.Debug("clob enrichment complete", "markets", len(quotes), "enriched", enriched)
	return nil
}

// FetchOrderBooks obtiene los orderbooks para los token_ids dados usando el
// endpoint batch. Un goroutine por batch de máx batchSize tokens.
func (c *Client) FetchOrderBooks(ctx context.Context, tokenIDs []string) (map[string]domain.OrderBook, error) {
	if len(tokenIDs) == 0 {
		return map[string]domain.OrderBook{}, nil
	}

	batches := splitBatches(tokenIDs, batchSize)

	type batchResult struct {
		books map[string]domain.OrderBook
		err   error
		idx   int
	}

	resultCh := make(chan batchResult, len(batches))
	var wg sync.WaitGroup

	for i, batch := range batches {
		i, batch := i, batch
		wg.Add(1)
		go func() {
			defer wg.Done()
			books, err := c.fetchBooksBatch(ctx, batch)
			resultCh <- batchResult{books: books, err: err, idx: i}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	result := make(map[string]domain.OrderBook, len(tokenIDs))
	var firstErr error

	for r := range resultCh {
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("clob.FetchOrderBooks batch %d: %w", r.idx, r.err)
			}
			continue
		}
		for k, v := range r.books {
			result[k] = v
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}

	slog.Debug("order books fetched", "tokens", len(tokenIDs), "books", len(result))
	return result, nil
}

// splitBatches divide tokenIDs en slices de tamaño máximo size.
func splitBatches(tokenIDs []string, size int) [][]string {
	if size <= 0 {
		size = batchSize
	}
	batches := make([][]string, 0, (len(tokenIDs)+size-1)/size)
	for i := 0; i < len(tokenIDs); i += size {
		end := i + size
		if end > len(tokenIDs) {
			end = len(tokenIDs)
		}
		batches = append(batches, tokenIDs[i:end])
	}
	return batches
}

// fetchBooksBatch hace un POST /books para un batch de token_ids.
func (c *Client) fetchBooksBatch(ctx context.Context, tokenIDs []string) (map[string]domain.OrderBook, error) {
	body := make([]orderBookRequest, len(tokenIDs))
	for i, id := range tokenIDs {
		body[i] = orderBookRequest{TokenID: id}
	}

	var resp []orderBookResponse
	if err := c.http.Post(ctx, c.booksLimiter, c.clobBase+booksPath, body, &resp); err != nil {
		return nil, fmt.Errorf("POST /books: %w", err)
	}

	return mapOrderBooks(resp), nil
}
