package domain

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// AlignedProject es un proyecto visto en ambas plataformas, o solo en una.
// Exactamente uno de Poly/Lim puede ser nil.
type AlignedProject struct {
	Name string
	Poly *Project
	Lim  *Project
}

// OnPolymarket devuelve true si el proyecto existe en Polymarket.
func (a AlignedProject) OnPolymarket() bool { return a.Poly != nil }

// OnLimitless devuelve true si el proyecto existe en Limitless.
// false = "NOT ON LIMITLESS".
func (a AlignedProject) OnLimitless() bool { return a.Lim != nil }

// NormalizeName pasa a minúsculas y elimina todo lo que no sea [a-z0-9].
// "Zama Protocol" → "zamaprotocol", "USD.AI" → "usdai".
func NormalizeName(name string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(name), "")
}

// namesAlign aplica la regla de alineación: iguales, o uno contiene al otro.
// Un nombre normalizado vacío no alinea con nada (sería substring de todo).
func namesAlign(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// Align empareja proyectos de Polymarket con proyectos de Limitless.
//
// Greedy y first-match: se recorren los proyectos de Polymarket en su orden
// (volumen desc, fijado aguas arriba) y cada uno toma el PRIMER proyecto de
// Limitless no consumido que cumpla la regla. Un proyecto de Limitless se
// consume como mucho una vez. No hay resolución de conflictos: con "Sol",
// "Solana" y "SolanaFM" el primero en llegar se lleva el candidato.
//
// Salida: una entrada por proyecto de Polymarket (con o sin pareja) en orden,
// seguida de los proyectos de Limitless nunca consumidos.
func Align(poly, lim []Project) []AlignedProject {
	limNorm := make([]string, len(lim))
	for i, p := range lim {
		limNorm[i] = NormalizeName(p.Name)
	}
	consumed := make([]bool, len(lim))

	out := make([]AlignedProject, 0, len(poly)+len(lim))
	for i := range poly {
		ap := AlignedProject{Name: poly[i].Name, Poly: &poly[i]}
		pNorm := NormalizeName(poly[i].Name)
		for j := range lim {
			if consumed[j] || !namesAlign(pNorm, limNorm[j]) {
				continue
			}
			consumed[j] = true
			ap.Lim = &lim[j]
			break
		}
		out = append(out, ap)
	}

	for j := range lim {
		if !consumed[j] {
			out = append(out, AlignedProject{Name: lim[j].Name, Lim: &lim[j]})
		}
	}
	return out
}
