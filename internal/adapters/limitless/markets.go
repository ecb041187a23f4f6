package limitless

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

// FetchProjects devuelve los proyectos Pre-TGE de Limitless agrupados por
// nombre canónico y ordenados por volumen total descendente.
//
// Pagina hasta una página vacía o maxPages. Si falla una página posterior a la
// primera se conservan las ya obtenidas. Los mercados CLOB piden además su book.
func (c *Client) FetchProjects(ctx context.Context) ([]domain.Project, error) {
	raw, err := c.fetchActiveMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("limitless.FetchProjects: %w", err)
	}

	quotes := mapMarkets(c.normalizer, raw)

	if !c.skipBooks {
		c.enrichBooks(ctx, raw, quotes)
	}

	return domain.GroupProjects(domain.PlatformLimitless, quotes), nil
}

// fetchActiveMarkets pagina GET /markets/active/{category}.
func (c *Client) fetchActiveMarkets(ctx context.Context) ([]market, error) {
	var all []market

	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(pageLimit))
		q.Set("sortBy", "trending")
		u := fmt.Sprintf("%s/markets/active/%d?%s", c.base, c.categoryID, q.Encode())

		var resp marketsPage
		if err := c.http.Get(ctx, c.limiter, u, &resp); err != nil {
			if page == 1 {
				return nil, fmt.Errorf("GET markets page 1: %w", err)
			}
			slog.Warn("limitless page failed, keeping partial result",
				"page", page,
				"markets", len(all),
				"err", err,
			)
			break
		}

		slog.Debug("fetched limitless page", "page", page, "count", len(resp.Data))
		if len(resp.Data) == 0 {
			break
		}
		all = append(all, resp.Data...)
	}

	slog.Info("limitless markets fetched", "total", len(all))
	return all, nil
}
