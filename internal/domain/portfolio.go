package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidPosition indica una posición mal formada (sin patas, shares
// negativos, precio de entrada fuera de [0,1]).
var ErrInvalidPosition = errors.New("invalid position")

// ErrUnknownPosition indica que no existe una posición con ese id.
var ErrUnknownPosition = errors.New("unknown position")

// Side es el lado comprado en una pata.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// ParseSide acepta "yes"/"no" sin distinguir mayúsculas.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideYes:
		return SideYes, nil
	case SideNo:
		return SideNo, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// Leg es una compra en un mercado concreto.
type Leg struct {
	Platform   Platform
	Slug       string
	Side       Side
	Shares     float64
	EntryPrice float64
	Cost       float64 // 0 = Shares × EntryPrice
}

// CostBasis devuelve lo pagado por la pata.
func (l Leg) CostBasis() float64 {
	if l.Cost > 0 {
		return l.Cost
	}
	return l.Shares * l.EntryPrice
}

// Position agrupa las patas de una operación (p. ej. las dos de un arbitraje).
type Position struct {
	ID       string
	Name     string
	OpenedAt time.Time
	Legs     []Leg
}

// Validate comprueba que la posición se puede valorar.
func (p Position) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidPosition)
	}
	if len(p.Legs) == 0 {
		return fmt.Errorf("%w: %s has no legs", ErrInvalidPosition, p.ID)
	}
	for i, l := range p.Legs {
		switch {
		case l.Slug == "":
			return fmt.Errorf("%w: %s leg %d without slug", ErrInvalidPosition, p.ID, i)
		case l.Side != SideYes && l.Side != SideNo:
			return fmt.Errorf("%w: %s leg %d side %q", ErrInvalidPosition, p.ID, i, l.Side)
		case math.IsNaN(l.Shares) || l.Shares < 0:
			return fmt.Errorf("%w: %s leg %d shares %v", ErrInvalidPosition, p.ID, i, l.Shares)
		case math.IsNaN(l.EntryPrice) || l.EntryPrice < 0 || l.EntryPrice > 1:
			return fmt.Errorf("%w: %s leg %d entry price %v out of [0,1]", ErrInvalidPosition, p.ID, i, l.EntryPrice)
		case math.IsNaN(l.Cost) || l.Cost < 0:
			return fmt.Errorf("%w: %s leg %d cost %v", ErrInvalidPosition, p.ID, i, l.Cost)
		}
	}
	return nil
}

// LegPnL es la valoración de una pata al precio actual.
// Priced=false: no se encontró el mercado y se valora a coste.
type LegPnL struct {
	Leg          Leg
	CurrentPrice float64
	Value        float64
	PnL          float64
	Priced       bool
}

// PositionPnL es la valoración de una posición completa.
type PositionPnL struct {
	Position Position
	Legs     []LegPnL
	Cost     float64
	Value    float64
	PnL      float64
	PnLPct   float64
}

// PortfolioTotal agrega todas las posiciones.
type PortfolioTotal struct {
	Positions int
	Cost      float64
	Value     float64
	PnL       float64
	PnLPct    float64
}

// ValuePosition valora cada pata con la cotización de su plataforma.
//
// El mercado se busca por slug exacto y, si no aparece, por slug contenido en
// cualquiera de los dos sentidos. El lado NO vale 1 − YES.
func ValuePosition(pos Position, quotes []MarketQuote) PositionPnL {
	out := PositionPnL{Position: pos, Legs: make([]LegPnL, 0, len(pos.Legs))}
	for _, leg := range pos.Legs {
		lp := LegPnL{Leg: leg, CurrentPrice: leg.EntryPrice}
		cost := leg.CostBasis()
		if yes, ok := findYesPrice(quotes, leg.Platform, leg.Slug); ok {
			lp.Priced = true
			lp.CurrentPrice = yes
			if leg.Side == SideNo {
				lp.CurrentPrice = 1 - yes
			}
			lp.Value = leg.Shares * lp.CurrentPrice
		} else {
			lp.Value = cost
		}
		lp.PnL = lp.Value - cost

		out.Legs = append(out.Legs, lp)
		out.Cost += cost
		out.Value += lp.Value
	}
	out.PnL = out.Value - out.Cost
	out.PnLPct = pct(out.PnL, out.Cost)
	return out
}

// ValuePortfolio valora todas las posiciones en su orden.
func ValuePortfolio(positions []Position, quotes []MarketQuote) []PositionPnL {
	out := make([]PositionPnL, 0, len(positions))
	for _, p := range positions {
		out = append(out, ValuePosition(p, quotes))
	}
	return out
}

// TotalPnL suma coste, valor y P&L de todas las posiciones.
func TotalPnL(results []PositionPnL) PortfolioTotal {
	t := PortfolioTotal{Positions: len(results)}
	for _, r := range results {
		t.Cost += r.Cost
		t.Value += r.Value
	}
	t.PnL = t.Value - t.Cost
	t.PnLPct = pct(t.PnL, t.Cost)
	return t
}

func findYesPrice(quotes []MarketQuote, platform Platform, slug string) (float64, bool) {
	for _, q := range quotes {
		if q.Platform == platform && q.Slug == slug {
			return q.YesPrice, true
		}
	}
	for _, q := range quotes {
		if q.Platform != platform || q.Slug == "" {
			continue
		}
		if strings.Contains(q.Slug, slug) || strings.Contains(slug, q.Slug) {
			return q.YesPrice, true
		}
	}
	return 0, false
}

func pct(part, whole float64) float64 {
	if whole > 0 {
		return part / whole * 100
	}
	return 0
}
