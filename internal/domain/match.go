package domain

// MatchedPair es la salida del matcher para un mercado o pareja de mercados.
// Ambos lados presentes = match; un lado nil = mercado exclusivo de la otra plataforma.
type MatchedPair struct {
	Project string
	Poly    *MarketQuote
	Lim     *MarketQuote
}

// IsMatched devuelve true si la pareja tiene ambos lados.
func (p MatchedPair) IsMatched() bool {
	return p.Poly != nil && p.Lim != nil
}

// Exclusive devuelve la plataforma que tiene el mercado en exclusiva.
// ok=false si la pareja está emparejada.
func (p MatchedPair) Exclusive() (Platform, bool) {
	switch {
	case p.Poly != nil && p.Lim == nil:
		return PlatformPolymarket, true
	case p.Lim != nil && p.Poly == nil:
		return PlatformLimitless, true
	}
	return 0, false
}

// SpreadPP devuelve (poly.yes − lim.yes) × 100. Solo tiene sentido si IsMatched.
func (p MatchedPair) SpreadPP() float64 {
	if !p.IsMatched() {
		return 0
	}
	return SpreadPP(p.Poly.YesPrice, p.Lim.YesPrice)
}

// Key devuelve la clave con la que se formó la pareja (o la del único lado).
func (p MatchedPair) Key() *MatchKey {
	if p.Poly != nil {
		return p.Poly.Key
	}
	if p.Lim != nil {
		return p.Lim.Key
	}
	return nil
}

// SpreadPP es antisimétrica: SpreadPP(a, b) == -SpreadPP(b, a).
func SpreadPP(polyYes, limYes float64) float64 {
	return (polyYes - limYes) * 100
}

// Match empareja uno-a-uno los mercados de un proyecto alineado.
//
// Cada mercado abierto de Polymarket con clave toma el primer mercado abierto
// de Limitless no consumido con clave igual. Los mercados sin clave o sin
// pareja salen como exclusivos. Nunca se compara texto: solo claves.
func Match(ap AlignedProject) []MatchedPair {
	var polyMarkets, limMarkets []MarketQuote
	if ap.Poly != nil {
		polyMarkets = ap.Poly.Markets
	}
	if ap.Lim != nil {
		limMarkets = ap.Lim.Markets
	}

	consumed := make([]bool, len(limMarkets))
	var pairs []MatchedPair

	for i := range polyMarkets {
		pm := &polyMarkets[i]
		if pm.Closed {
			continue
		}
		pair := MatchedPair{Project: ap.Name, Poly: pm}
		if pm.Key != nil {
			for j := range limMarkets {
				lm := &limMarkets[j]
				if consumed[j] || lm.Closed || !pm.Key.Equal(lm.Key) {
					continue
				}
				consumed[j] = true
				pair.Lim = lm
				break
			}
		}
		pairs = append(pairs, pair)
	}

	for j := range limMarkets {
		if consumed[j] || limMarkets[j].Closed {
			continue
		}
		pairs = append(pairs, MatchedPair{Project: ap.Name, Lim: &limMarkets[j]})
	}
	return pairs
}

// MatchAll aplica Match a cada proyecto alineado, conservando el orden.
func MatchAll(aligned []AlignedProject) []MatchedPair {
	var pairs []MatchedPair
	for _, ap := range aligned {
		pairs = append(pairs, Match(ap)...)
	}
	return pairs
}
