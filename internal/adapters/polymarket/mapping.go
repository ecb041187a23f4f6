package polymarket

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

// mapEvents convierte los eventos de Gamma a cotizaciones del dominio.
// El proyecto sale del título del evento; la clave, de la pregunta de cada mercado.
func mapEvents(n *domain.Normalizer, events []gammaEvent) []domain.MarketQuote {
	var quotes []domain.MarketQuote
	for _, ev := range events {
		project := n.ProjectName(ev.Title, domain.PlatformPolymarket)
		for _, gm := range ev.Markets {
			quotes = append(quotes, mapMarket(n, ev, gm, project))
		}
	}
	return quotes
}

// mapMarket convierte un mercado de Gamma a domain.MarketQuote.
func mapMarket(n *domain.Normalizer, ev gammaEvent, gm gammaMarket, project string) domain.MarketQuote {
	q := domain.MarketQuote{
		Platform:        domain.PlatformPolymarket,
		Project:         project,
		ProjectRawTitle: ev.Title,
		Question:        gm.Question,
		Slug:            gm.Slug,
		Volume:          float64(gm.Volume),
		Closed:          gm.Closed || ev.Closed,
		ClosedAt:        parseClosedTime(gm.ClosedTime),
		Liquidity:       domain.Liquidity{Type: domain.LiquidityCLOB},
		Key:             n.ExtractKey(gm.Question),
	}
	if len(gm.OutcomePrices) > 0 {
		q.YesPrice = domain.ParsePrice(strings.TrimSpace(gm.OutcomePrices[0]))
	}
	if len(gm.ClobTokenIDs) > 0 {
		q.YesTokenID = gm.ClobTokenIDs[0]
	}
	return q
}

// closedTimeLayouts son los formatos de closedTime vistos en Gamma.
var closedTimeLayouts = []string{
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05Z07:00",
	time.RFC3339,
}

// parseClosedTime devuelve el instante en UTC, o cero si falta o no se entiende.
func parseClosedTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range closedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	slog.Debug("unparseable closedTime", "value", s)
	return time.Time{}
}

// mapOrderBooks convierte la respuesta batch de /books a un map tokenID→OrderBook.
func mapOrderBooks(raw []orderBookResponse) map[string]domain.OrderBook {
	result := make(map[string]domain.OrderBook, len(raw))
	for _, r := range raw {
		result[r.AssetID] = domain.OrderBook{
			Bids: mapBookEntries(r.Bids, false),
			Asks: mapBookEntries(r.Asks, true),
		}
	}
	return result
}

// mapBookEntries convierte entries raw a domain.BookEntry y los ordena.
// ascending=true → menor a mayor (asks), ascending=false → mayor a menor (bids).
func mapBookEntries(raw []bookEntryRaw, ascending bool) []domain.BookEntry {
	entries := make([]domain.BookEntry, 0, len(raw))
	for _, r := range raw {
		price := domain.ParsePrice(r.Price)
		size := domain.ParsePrice(r.Size)
		if price <= 0 || size <= 0 {
			continue
		}
		entries = append(entries, domain.BookEntry{Price: price, Size: size})
	}

	sort.Slice(entries, func(i, j int) bool {
		if ascending {
			return entries[i].Price < entries[j].Price
		}
		return entries[i].Price > entries[j].Price
	})

	return entries
}
