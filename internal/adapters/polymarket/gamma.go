package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

const gammaEventsPath = "/events"

// FetchProjects devuelve los proyectos pre-market de Polymarket agrupados por
// nombre canónico y ordenados por volumen total descendente.
//
// Los orderbooks del CLOB se piden después para rellenar la liquidez; si esa
// parte falla se loguea y se devuelven las cotizaciones sin profundidad.
func (c *Client) FetchProjects(ctx context.Context) ([]domain.Project, error) {
	events, err := c.fetchEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("polymarket.FetchProjects: %w", err)
	}

	quotes := mapEvents(c.normalizer, events)
	slog.Info("polymarket events fetched", "events", len(events), "markets", len(quotes))

	if !c.skipBooks {
		if err := c.EnrichLiquidity(ctx, quotes); err != nil {
			// La profundidad es opcional: logueamos pero no fallamos
			slog.Warn("clob enrichment failed, continuing without depth", "err", err)
		}
	}

	return domain.GroupProjects(domain.PlatformPolymarket, quotes), nil
}

// fetchEvents hace GET /events?tag_slug=...&order=volume&ascending=false.
func (c *Client) fetchEvents(ctx context.Context) ([]gammaEvent, error) {
	q := url.Values{}
	q.Set("tag_slug", c.tag)
	q.Set("limit", strconv.Itoa(c.limit))
	q.Set("order", "volume")
	q.Set("ascending", "false")

	var events []gammaEvent
	u := c.gammaBase + gammaEventsPath + "?" + q.Encode()
	if err := c.http.Get(ctx, c.gammaLimiter, u, &events); err != nil {
		return nil, fmt.Errorf("GET /events: %w", err)
	}
	return events, nil
}
