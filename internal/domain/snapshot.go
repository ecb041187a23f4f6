package domain

import (
	"math"
	"sort"
)

// PriceChange es la variación del precio YES de un mercado entre dos ciclos.
type PriceChange struct {
	Platform  Platform
	Project   string
	Question  string
	Slug      string
	PrevPrice float64
	Price     float64
	Change    float64 // Price − PrevPrice
	ChangePct float64 // Change / PrevPrice × 100 (0 si PrevPrice = 0)
}

// Direction filtra movimientos en TopMovers.
type Direction int

const (
	DirectionBoth Direction = iota
	DirectionUp
	DirectionDown
)

// ChangeSummary resume los cambios de un ciclo.
type ChangeSummary struct {
	Total     int
	Up        int
	Down      int
	AvgChange float64
	MaxUp     *PriceChange
	MaxDown   *PriceChange
}

type quoteKey struct {
	platform Platform
	slug     string
}

// CompareSnapshots compara las cotizaciones actuales con las del ciclo anterior.
// Solo se reportan mercados abiertos presentes en ambos con precio distinto,
// ordenados por |ChangePct| descendente.
func CompareSnapshots(current, previous []MarketQuote) []PriceChange {
	if len(previous) == 0 {
		return nil
	}

	prev := make(map[quoteKey]float64, len(previous))
	for _, q := range previous {
		prev[quoteKey{q.Platform, q.Slug}] = q.YesPrice
	}

	var changes []PriceChange
	for _, q := range current {
		if q.Closed {
			continue
		}
		prevPrice, ok := prev[quoteKey{q.Platform, q.Slug}]
		if !ok || prevPrice == q.YesPrice {
			continue
		}
		change := q.YesPrice - prevPrice
		pct := 0.0
		if prevPrice > 0 {
			pct = change / prevPrice * 100
		}
		changes = append(changes, PriceChange{
			Platform:  q.Platform,
			Project:   q.Project,
			Question:  q.Question,
			Slug:      q.Slug,
			PrevPrice: prevPrice,
			Price:     q.YesPrice,
			Change:    change,
			ChangePct: pct,
		})
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return math.Abs(changes[i].ChangePct) > math.Abs(changes[j].ChangePct)
	})
	return changes
}

// TopMovers devuelve hasta limit cambios en la dirección pedida.
func TopMovers(changes []PriceChange, limit int, dir Direction) []PriceChange {
	var out []PriceChange
	for _, c := range changes {
		if limit > 0 && len(out) >= limit {
			break
		}
		switch {
		case dir == DirectionUp && c.Change <= 0:
			continue
		case dir == DirectionDown && c.Change >= 0:
			continue
		}
		out = append(out, c)
	}
	return out
}

// SummarizeChanges calcula conteos, media y extremos de una lista de cambios.
func SummarizeChanges(changes []PriceChange) ChangeSummary {
	s := ChangeSummary{Total: len(changes)}
	if len(changes) == 0 {
		return s
	}
	sum := 0.0
	for i := range changes {
		c := &changes[i]
		sum += c.Change
		if c.Change > 0 {
			s.Up++
			if s.MaxUp == nil || c.Change > s.MaxUp.Change {
				s.MaxUp = c
			}
		}
		if c.Change < 0 {
			s.Down++
			if s.MaxDown == nil || c.Change < s.MaxDown.Change {
				s.MaxDown = c
			}
		}
	}
	s.AvgChange = sum / float64(len(changes))
	return s
}
