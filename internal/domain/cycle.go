package domain

import (
	"fmt"
	"time"
)

// Evaluation es la salida completa del motor para un par de snapshots.
type Evaluation struct {
	Aligned   []AlignedProject
	Pairs     []MatchedPair
	Report    GapReport
	Arbs      []ArbOpportunity
	Liquidity LiquidityReport
}

// Evaluate ejecuta alineación → matching → análisis de huecos → arbitraje →
// liquidez sobre proyectos ya normalizados. Es puro y determinista.
// Devuelve ErrInvalidQuote si alguna cotización viola sus invariantes.
func Evaluate(poly, lim []Project, th LiquidityThresholds) (Evaluation, error) {
	if err := ValidateProjects(poly); err != nil {
		return Evaluation{}, fmt.Errorf("domain.Evaluate: polymarket: %w", err)
	}
	if err := ValidateProjects(lim); err != nil {
		return Evaluation{}, fmt.Errorf("domain.Evaluate: limitless: %w", err)
	}

	aligned := Align(poly, lim)
	pairs := MatchAll(aligned)
	return Evaluation{
		Aligned:   aligned,
		Pairs:     pairs,
		Report:    AnalyzeAligned(aligned),
		Arbs:      FindArbs(pairs),
		Liquidity: AnalyzeLiquidity(lim, th),
	}, nil
}

// Cycle es un ciclo de tracking: snapshots de entrada + evaluación + cambios
// respecto al ciclo anterior.
type Cycle struct {
	ID         string
	RunAt      time.Time
	Poly       []Project
	Lim        []Project
	Evaluation Evaluation
	Changes    []PriceChange

	// Launches son los lanzamientos detectados por primera vez en este ciclo.
	Launches []Launch
	// Portfolio valora las posiciones abiertas con las cotizaciones del ciclo.
	Portfolio []PositionPnL
}

// Quotes aplana todas las cotizaciones del ciclo (ambas plataformas).
func (c Cycle) Quotes() []MarketQuote {
	var out []MarketQuote
	for _, group := range [][]Project{c.Poly, c.Lim} {
		for _, p := range group {
			out = append(out, p.Markets...)
		}
	}
	return out
}
