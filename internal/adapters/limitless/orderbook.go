package limitless

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

// depthBand es la distancia máxima al midpoint para contar profundidad.
const depthBand = 0.05

// FetchOrderBook obtiene el book del lado YES de un mercado CLOB.
// decimals escala los tamaños desde unidades mínimas del colateral.
func (c *Client) FetchOrderBook(ctx context.Context, slug string, decimals int) (domain.OrderBook, error) {
	var resp orderbook
	u := fmt.Sprintf("%s/markets/%s/orderbook", c.base, url.PathEscape(slug))
	if err := c.http.Get(ctx, c.limiter, u, &resp); err != nil {
		return domain.OrderBook{}, fmt.Errorf("limitless.FetchOrderBook %q: %w", slug, err)
	}
	return mapOrderBook(resp, decimals), nil
}

// enrichBooks pide los books de los mercados CLOB abiertos en paralelo.
// Un fallo deja ese mercado con la liquidez del listado y se loguea.
func (c *Client) enrichBooks(ctx context.Context, raw []market, quotes []domain.MarketQuote) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bookWorkers)

	books := make([]*domain.OrderBook, len(quotes))
	for i := range quotes {
		if quotes[i].Closed || quotes[i].Liquidity.Type != domain.LiquidityCLOB {
			continue
		}
		i := i
		g.Go(func() error {
			book, err := c.FetchOrderBook(gctx, quotes[i].Slug, decimalsOf(raw[i]))
			if err != nil {
				slog.Warn("limitless orderbook failed", "slug", quotes[i].Slug, "err", err)
				return nil
			}
			books[i] = &book
			return nil
		})
	}
	_ = g.Wait() // las goroutines nunca devuelven error

	enriched := 0
	for i, book := range books {
		if book == nil {
			continue
		}
		quotes[i].Liquidity.Bids = book.Bids
		quotes[i].Liquidity.Asks = book.Asks
		quotes[i].Liquidity.Depth = book.DepthWithinUSDC(depthBand)
		enriched++
	}
	slog.Debug("limitless books enriched", "clob_markets", enriched)
}
