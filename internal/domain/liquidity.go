package domain

import "sort"

// LiquidityThresholds controla qué mercados entran en cada lista del reporte.
type LiquidityThresholds struct {
	MinVolume        float64 // mercados por debajo se consideran muertos
	CriticalRatio    float64 // volumen/profundidad por encima = crítico
	WideSpreadPP     float64 // spread bid/ask CLOB por encima = ancho
	LowDepth         float64 // profundidad por debajo = baja...
	LowDepthVolume   float64 // ...si además hubo al menos este volumen
	PriorityVolume   float64 // CLOB con más volumen que esto...
	PriorityMaxDepth float64 // ...y menos profundidad que esto = prioridad
}

// DefaultLiquidityThresholds devuelve los umbrales históricos del tracker.
func DefaultLiquidityThresholds() LiquidityThresholds {
	return LiquidityThresholds{
		MinVolume:        100,
		CriticalRatio:    thinRatio,
		WideSpreadPP:     5,
		LowDepth:         500,
		LowDepthVolume:   500,
		PriorityVolume:   1000,
		PriorityMaxDepth: 2000,
	}
}

// MarketLiquidity es la foto de liquidez de un mercado.
type MarketLiquidity struct {
	Quote     MarketQuote
	Ratio     float64
	Thinness  Thinness
	SpreadPP  float64 // solo válido si HasSpread
	HasSpread bool
}

// LiquidityReport identifica books delgados que necesitan profundidad.
type LiquidityReport struct {
	Markets    []MarketLiquidity // activos, por ratio desc (más delgados primero)
	Critical   []MarketLiquidity
	WideSpread []MarketLiquidity
	LowDepth   []MarketLiquidity
	Priority   []MarketLiquidity
	CLOBCount  int
	AMMCount   int
}

// AnalyzeLiquidity evalúa la liquidez de todos los mercados abiertos de los
// proyectos dados. Pensado para Limitless, donde se decide qué books profundizar.
func AnalyzeLiquidity(projects []Project, th LiquidityThresholds) LiquidityReport {
	var report LiquidityReport

	for _, p := range projects {
		for _, q := range p.Markets {
			if q.Closed || q.Volume <= th.MinVolume {
				continue
			}
			ml := MarketLiquidity{Quote: q}
			ml.Ratio = ThinnessRatio(q.Volume, q.Liquidity.Depth)
			ml.Thinness = ClassifyThinness(ml.Ratio)
			ml.SpreadPP, ml.HasSpread = q.Liquidity.Book().SpreadPP()
			report.Markets = append(report.Markets, ml)
		}
	}

	sort.SliceStable(report.Markets, func(i, j int) bool {
		return report.Markets[i].Ratio > report.Markets[j].Ratio
	})

	for _, ml := range report.Markets {
		isCLOB := ml.Quote.Liquidity.Type == LiquidityCLOB
		if isCLOB {
			report.CLOBCount++
		} else {
			report.AMMCount++
		}
		if ml.Ratio > th.CriticalRatio {
			report.Critical = append(report.Critical, ml)
		}
		if isCLOB && ml.HasSpread && ml.SpreadPP > th.WideSpreadPP {
			report.WideSpread = append(report.WideSpread, ml)
		}
		if ml.Quote.Liquidity.Depth < th.LowDepth && ml.Quote.Volume > th.LowDepthVolume {
			report.LowDepth = append(report.LowDepth, ml)
		}
		if isCLOB && ml.Quote.Volume > th.PriorityVolume && ml.Quote.Liquidity.Depth < th.PriorityMaxDepth {
			report.Priority = append(report.Priority, ml)
		}
	}
	return report
}
