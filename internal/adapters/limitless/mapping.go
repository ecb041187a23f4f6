package limitless

import (
	"math"
	"sort"
	"strings"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

const defaultDecimals = 6 // USDC

// mapMarkets convierte los mercados raw a cotizaciones, en el mismo orden.
func mapMarkets(n *domain.Normalizer, raw []market) []domain.MarketQuote {
	quotes := make([]domain.MarketQuote, len(raw))
	for i, m := range raw {
		quotes[i] = mapMarket(n, m)
	}
	return quotes
}

// mapMarket convierte un mercado de Limitless a domain.MarketQuote.
// El título es a la vez fuente del proyecto y pregunta del mercado.
func mapMarket(n *domain.Normalizer, m market) domain.MarketQuote {
	scale := math.Pow10(decimalsOf(m))

	q := domain.MarketQuote{
		Platform:        domain.PlatformLimitless,
		Project:         n.ProjectName(m.Title, domain.PlatformLimitless),
		ProjectRawTitle: m.Title,
		Question:        m.Title,
		Slug:            m.Slug,
		Volume:          float64(m.Volume) / scale,
		Closed:          isClosed(m),
		Key:             n.ExtractKey(m.Title),
	}

	if len(m.Prices) > 0 {
		q.YesPrice = normalizePrice(float64(m.Prices[0]))
	}

	if strings.EqualFold(m.TradeType, string(domain.LiquidityCLOB)) {
		q.Liquidity = domain.Liquidity{Type: domain.LiquidityCLOB}
	} else {
		q.Liquidity = domain.Liquidity{
			Type:  domain.LiquidityAMM,
			Depth: float64(m.Liquidity) / scale,
		}
	}
	return q
}

// normalizePrice pasa precios en escala 0-100 a 0-1.
func normalizePrice(p float64) float64 {
	if p > 1 {
		return p / 100
	}
	return p
}

func decimalsOf(m market) int {
	if m.CollateralToken.Decimals == nil {
		return defaultDecimals
	}
	return *m.CollateralToken.Decimals
}

func isClosed(m market) bool {
	if m.Expired {
		return true
	}
	switch strings.ToLower(m.Status) {
	case "resolved", "closed":
		return true
	}
	return false
}

// mapOrderBook convierte el book raw, ordenando bids desc y asks asc.
func mapOrderBook(raw orderbook, decimals int) domain.OrderBook {
	scale := math.Pow10(decimals)
	return domain.OrderBook{
		Bids: mapLevels(raw.Bids, scale, false),
		Asks: mapLevels(raw.Asks, scale, true),
	}
}

func mapLevels(raw []level, scale float64, ascending bool) []domain.BookEntry {
	entries := make([]domain.BookEntry, 0, len(raw))
	for _, l := range raw {
		price := normalizePrice(float64(l.Price))
		size := float64(l.Size) / scale
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
