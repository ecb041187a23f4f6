package domain

import (
	"sort"
	"strings"
	"time"
)

// resolvedYes: precio a partir del cual un mercado cerrado se da por resuelto YES.
const resolvedYes = 0.99

// Launch es un proyecto cuyo TGE ya ocurrió, deducido de sus mercados
// "FDV above X one day after launch" resueltos.
type Launch struct {
	Project    string
	TGEDate    time.Time // día UTC anterior al primer cierre
	FirstClose time.Time
	FDVResult  *MatchKey // mayor umbral resuelto YES; nil si ninguno

	FDVVolume    float64 // mercados FDV post-launch
	LaunchVolume float64 // mercados "launch ... by"
	OtherVolume  float64
	LimVolume    float64 // mismo proyecto en Limitless
}

// TotalPolyVolume suma todo el volumen de Polymarket del proyecto.
func (l Launch) TotalPolyVolume() float64 {
	return l.FDVVolume + l.LaunchVolume + l.OtherVolume
}

// DetectLaunches busca proyectos de Polymarket con mercados FDV post-launch
// cerrados y con instante de cierre conocido.
//
// Esos mercados resuelven un día después del lanzamiento, así que el TGE es
// el día anterior al cierre más temprano. Solo cuentan los TGE del año year
// (0 = cualquier año). Salida ordenada por TGE descendente y nombre.
func DetectLaunches(poly, lim []Project, year int) []Launch {
	limVolume := make(map[string]float64, len(lim))
	for _, p := range lim {
		for _, m := range p.Markets {
			limVolume[NormalizeName(p.Name)] += m.Volume
		}
	}

	var out []Launch
	for _, p := range poly {
		l, ok := detectLaunch(p)
		if !ok {
			continue
		}
		if year != 0 && l.TGEDate.Year() != year {
			continue
		}
		l.LimVolume = limVolume[NormalizeName(p.Name)]
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TGEDate.Equal(out[j].TGEDate) {
			return out[i].TGEDate.After(out[j].TGEDate)
		}
		return out[i].Project < out[j].Project
	})
	return out
}

func detectLaunch(p Project) (Launch, bool) {
	l := Launch{Project: p.Name}
	for _, m := range p.Markets {
		switch {
		case isPostLaunchFDV(m):
			l.FDVVolume += m.Volume
			if !m.Closed || m.ClosedAt.IsZero() {
				continue
			}
			if l.FirstClose.IsZero() || m.ClosedAt.Before(l.FirstClose) {
				l.FirstClose = m.ClosedAt
			}
			if m.YesPrice >= resolvedYes && m.Key != nil && m.Key.Kind == KeyThreshold {
				if l.FDVResult == nil || m.Key.Amount > l.FDVResult.Amount {
					l.FDVResult = m.Key
				}
			}
		case isLaunchBy(m):
			l.LaunchVolume += m.Volume
		default:
			l.OtherVolume += m.Volume
		}
	}
	if l.FirstClose.IsZero() {
		return Launch{}, false
	}
	first := l.FirstClose.UTC()
	l.TGEDate = time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return l, true
}

// marketTitle prefiere el título del evento, que es el que fija la estructura.
func marketTitle(m MarketQuote) string {
	if m.ProjectRawTitle != "" {
		return strings.ToLower(m.ProjectRawTitle)
	}
	return strings.ToLower(m.Question)
}

func isPostLaunchFDV(m MarketQuote) bool {
	t := marketTitle(m)
	return strings.Contains(t, "fdv above") && strings.Contains(t, "one day after launch")
}

func isLaunchBy(m MarketQuote) bool {
	t := marketTitle(m)
	return strings.Contains(t, "launch") && strings.Contains(t, " by ")
}
