package domain

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// ArbOpportunity es una pareja donde comprar YES en Limitless + NO en
// Polymarket cuesta menos que el pago garantizado de $1.
//
// Supuestos no modelados: ejecución sin slippage a precio cotizado y que ambas
// plataformas resuelvan el evento igual y a la vez.
type ArbOpportunity struct {
	Pair         MatchedPair
	CombinedCost float64 // lim.yes + (1 − poly.yes)
	EdgePct      float64 // (1 − CombinedCost) × 100
}

// ArbResult es el reparto de capital para un presupuesto concreto.
type ArbResult struct {
	Budget       float64
	CombinedCost float64
	Shares       float64
	LimSpend     float64 // compra de YES en Limitless
	PolySpend    float64 // compra de NO en Polymarket
	Payout       float64 // cada share paga $1 al resolver
	Profit       float64
	ProfitPct    float64
}

// CombinedCost devuelve el coste de comprar YES en Limitless y NO en Polymarket.
func CombinedCost(limYes, polyYes float64) float64 {
	return limYes + (1 - polyYes)
}

// DetectArb devuelve la oportunidad si la pareja está emparejada y cuesta < $1.
// Coste 0 (Lim YES a 0 y Poly YES a 1) no es una oportunidad sino dos
// mercados ya decididos en sentidos opuestos: se descarta.
func DetectArb(pair MatchedPair) (ArbOpportunity, bool) {
	if !pair.IsMatched() {
		return ArbOpportunity{}, false
	}
	cost := CombinedCost(pair.Lim.YesPrice, pair.Poly.YesPrice)
	if cost >= 1.0 || cost <= 0 {
		return ArbOpportunity{}, false
	}
	return ArbOpportunity{
		Pair:         pair,
		CombinedCost: cost,
		EdgePct:      (1 - cost) * 100,
	}, true
}

// Split reparte budget entre ambas patas para fijar el pago.
// El presupuesto es un input del usuario, no estado guardado.
// Con coste no positivo devuelve un reparto vacío.
func (o ArbOpportunity) Split(budget float64) ArbResult {
	if o.CombinedCost <= 0 {
		return ArbResult{Budget: budget, CombinedCost: o.CombinedCost}
	}
	shares := budget / o.CombinedCost
	res := ArbResult{
		Budget:       budget,
		CombinedCost: o.CombinedCost,
		Shares:       shares,
		LimSpend:     shares * o.Pair.Lim.YesPrice,
		PolySpend:    shares * o.Pair.Poly.NoPrice(),
		Payout:       shares,
	}
	res.Profit = res.Payout - budget
	if budget > 0 {
		res.ProfitPct = res.Profit / budget * 100
	}
	return res
}

// ComputeArb calcula el reparto para un presupuesto positivo.
// ok=false si no hay arbitraje (coste ≥ 1), la pareja no está emparejada o budget ≤ 0.
func ComputeArb(pair MatchedPair, budget float64) (ArbResult, bool) {
	if budget <= 0 {
		return ArbResult{}, false
	}
	opp, ok := DetectArb(pair)
	if !ok {
		return ArbResult{}, false
	}
	return opp.Split(budget), true
}

// FindArbs devuelve todas las oportunidades, la de mayor edge primero.
func FindArbs(pairs []MatchedPair) []ArbOpportunity {
	var out []ArbOpportunity
	for _, p := range pairs {
		if opp, ok := DetectArb(p); ok {
			out = append(out, opp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EdgePct > out[j].EdgePct
	})
	return out
}

// CentSplit es el reparto redondeado a céntimos para mostrar u operar a mano.
type CentSplit struct {
	LimSpend  decimal.Decimal
	PolySpend decimal.Decimal
	Profit    decimal.Decimal
}

// Cents redondea el reparto a céntimos. Profit se deriva de los importes
// redondeados para que LimSpend + PolySpend + Profit cuadre con el pago.
// Valores no finitos cuentan como 0.
func (r ArbResult) Cents() CentSplit {
	lim := toCents(r.LimSpend)
	poly := toCents(r.PolySpend)
	payout := toCents(r.Payout)
	return CentSplit{
		LimSpend:  lim,
		PolySpend: poly,
		Profit:    payout.Sub(lim).Sub(poly),
	}
}

func toCents(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(2)
}
