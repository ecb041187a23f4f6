package domain

import (
	"math"
	"sort"
)

// Severity clasifica el spread absoluto de una pareja. Solo se usa para
// dar énfasis en el reporte, nunca para filtrar.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Umbrales de severidad en puntos porcentuales.
const (
	highSpreadPP   = 10.0
	mediumSpreadPP = 5.0
)

// ClassifySpread: |spread| > 10 → high, 5 < |spread| ≤ 10 → medium, resto → low.
func ClassifySpread(absSpread float64) Severity {
	switch {
	case absSpread > highSpreadPP:
		return SeverityHigh
	case absSpread > mediumSpreadPP:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Thinness clasifica la relación volumen/profundidad de un book.
type Thinness int

const (
	ThinnessModerate Thinness = iota
	ThinnessHealthy
	ThinnessThin // necesita más profundidad
)

func (t Thinness) String() string {
	switch t {
	case ThinnessThin:
		return "thin"
	case ThinnessHealthy:
		return "healthy"
	default:
		return "moderate"
	}
}

const (
	thinRatio    = 10.0
	healthyRatio = 2.0
)

// ThinnessRatio = volume / depth. Sin profundidad: +Inf si hubo volumen, 0 si no.
func ThinnessRatio(volume, depth float64) float64 {
	if depth > 0 {
		return volume / depth
	}
	if volume > 0 {
		return math.Inf(1)
	}
	return 0
}

// ClassifyThinness: ratio > 10 → thin, ratio < 2 → healthy.
func ClassifyThinness(ratio float64) Thinness {
	switch {
	case ratio > thinRatio:
		return ThinnessThin
	case ratio < healthyRatio:
		return ThinnessHealthy
	default:
		return ThinnessModerate
	}
}

// PairAnalysis contiene las métricas derivadas de una pareja emparejada.
type PairAnalysis struct {
	Pair      MatchedPair
	SpreadPP  float64
	AbsSpread float64
	Severity  Severity
	Ratio     float64 // volumen/profundidad del lado Limitless
	Thinness  Thinness
}

// ProjectGap resume la cobertura de un proyecto entre plataformas.
type ProjectGap struct {
	Name         string
	OnPolymarket bool
	OnLimitless  bool // false = NOT ON LIMITLESS
	Matched      []PairAnalysis
	PolyOnly     []MarketQuote
	LimOnly      []MarketQuote
	MaxAbsSpread float64

	// GapCandidate: hay mercados solo en Polymarket y ninguno emparejado,
	// es decir, una estructura de mercado sin equivalente en Limitless.
	GapCandidate bool
}

// GapReport es el resultado del análisis de spreads y huecos de un ciclo.
type GapReport struct {
	Projects       []ProjectGap
	TotalMatched   int
	TotalPolyOnly  int
	TotalLimOnly   int
	GapCandidates  int
	ThinMatched    int
	HighSeverities int
}

// AnalyzePair calcula spread, severidad y delgadez de una pareja emparejada.
func AnalyzePair(pair MatchedPair) PairAnalysis {
	spread := pair.SpreadPP()
	abs := math.Abs(spread)
	ratio := ThinnessRatio(pair.Lim.Volume, pair.Lim.Liquidity.Depth)
	return PairAnalysis{
		Pair:      pair,
		SpreadPP:  spread,
		AbsSpread: abs,
		Severity:  ClassifySpread(abs),
		Ratio:     ratio,
		Thinness:  ClassifyThinness(ratio),
	}
}

// Analyze agrupa las parejas por nombre de proyecto y calcula el reporte de huecos.
//
// Orden de proyectos: GapCandidate primero, luego mayor spread absoluto.
// El orden de entrada se conserva en empates. Dentro de cada proyecto las
// parejas se ordenan por spread absoluto descendente.
func Analyze(pairs []MatchedPair) GapReport {
	index := make(map[string]int)
	var projects []ProjectGap

	for _, pair := range pairs {
		i, ok := index[pair.Project]
		if !ok {
			i = len(projects)
			index[pair.Project] = i
			projects = append(projects, ProjectGap{Name: pair.Project})
		}
		projects[i].add(pair)
	}

	return buildReport(projects)
}

// AnalyzeAligned empareja y analiza con una entrada del reporte por proyecto
// alineado. Dos entradas con el mismo nombre (p. ej. Poly "SolanaFM" alineado
// con Lim "Solana" y el "SolanaFM" de Limitless sobrante) no se mezclan.
//
// Las banderas de presencia salen de la alineación: un proyecto alineado cuyos
// mercados de Limitless están todos cerrados sigue contando como presente.
// Las entradas sin ningún mercado abierto no aparecen.
func AnalyzeAligned(aligned []AlignedProject) GapReport {
	var projects []ProjectGap
	for _, ap := range aligned {
		pairs := Match(ap)
		if len(pairs) == 0 {
			continue
		}
		pg := ProjectGap{Name: ap.Name}
		for _, pair := range pairs {
			pg.add(pair)
		}
		pg.OnPolymarket = ap.OnPolymarket()
		pg.OnLimitless = ap.OnLimitless()
		projects = append(projects, pg)
	}
	return buildReport(projects)
}

func (pg *ProjectGap) add(pair MatchedPair) {
	switch {
	case pair.IsMatched():
		pa := AnalyzePair(pair)
		pg.Matched = append(pg.Matched, pa)
		if pa.AbsSpread > pg.MaxAbsSpread {
			pg.MaxAbsSpread = pa.AbsSpread
		}
		pg.OnPolymarket, pg.OnLimitless = true, true
	case pair.Poly != nil:
		pg.PolyOnly = append(pg.PolyOnly, *pair.Poly)
		pg.OnPolymarket = true
	case pair.Lim != nil:
		pg.LimOnly = append(pg.LimOnly, *pair.Lim)
		pg.OnLimitless = true
	}
}

func buildReport(projects []ProjectGap) GapReport {
	var report GapReport
	for i := range projects {
		pg := &projects[i]
		pg.GapCandidate = len(pg.PolyOnly) > 0 && len(pg.Matched) == 0

		sort.SliceStable(pg.Matched, func(a, b int) bool {
			return pg.Matched[a].AbsSpread > pg.Matched[b].AbsSpread
		})

		report.TotalMatched += len(pg.Matched)
		report.TotalPolyOnly += len(pg.PolyOnly)
		report.TotalLimOnly += len(pg.LimOnly)
		if pg.GapCandidate {
			report.GapCandidates++
		}
		for _, pa := range pg.Matched {
			if pa.Thinness == ThinnessThin {
				report.ThinMatched++
			}
			if pa.Severity == SeverityHigh {
				report.HighSeverities++
			}
		}
	}

	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].GapCandidate != projects[j].GapCandidate {
			return projects[i].GapCandidate
		}
		return projects[i].MaxAbsSpread > projects[j].MaxAbsSpread
	})

	report.Projects = projects
	return report
}
