package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrInvalidQuote indica que un colaborador entregó una cotización mal formada.
// Es una violación del contrato de entrada, no un error de dominio.
var ErrInvalidQuote = errors.New("invalid market quote")

// Platform identifica el exchange de origen de una cotización.
type Platform int

const (
	PlatformPolymarket Platform = iota
	PlatformLimitless
)

func (p Platform) String() string {
	switch p {
	case PlatformPolymarket:
		return "polymarket"
	case PlatformLimitless:
		return "limitless"
	default:
		return "unknown"
	}
}

// ParsePlatform convierte el nombre persistido de vuelta a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch s {
	case "polymarket":
		return PlatformPolymarket, nil
	case "limitless":
		return PlatformLimitless, nil
	}
	return 0, fmt.Errorf("unknown platform %q", s)
}

// LiquidityType distingue mercados AMM de mercados con order book (CLOB).
type LiquidityType string

const (
	LiquidityAMM  LiquidityType = "amm"
	LiquidityCLOB LiquidityType = "clob"
)

// Liquidity describe la profundidad disponible de un mercado.
// Los mercados AMM no tienen book: Bids y Asks quedan vacíos.
type Liquidity struct {
	Type  LiquidityType
	Depth float64     // USDC en reposo cerca del touch
	Bids  []BookEntry // mayor a menor precio
	Asks  []BookEntry // menor a mayor precio
}

// Book devuelve la liquidez como OrderBook para reutilizar BestBid/BestAsk.
func (l Liquidity) Book() OrderBook {
	return OrderBook{Bids: l.Bids, Asks: l.Asks}
}

// MarketQuote es un mercado binario cotizado en una plataforma.
type MarketQuote struct {
	Platform        Platform
	Project         string // nombre canónico del proyecto
	ProjectRawTitle string // texto del que se derivó Project
	Question        string
	Slug            string // solo para enlazar, nunca para matching
	YesPrice        float64
	Volume          float64
	Liquidity       Liquidity
	Closed          bool
	ClosedAt        time.Time // instante de cierre; cero si abierto o desconocido
	YesTokenID      string    // solo Polymarket, para pedir el book al CLOB

	Key *MatchKey // nil si la pregunta no tiene umbral ni fecha
}

// NoPrice devuelve el precio implícito del lado NO.
func (q MarketQuote) NoPrice() float64 {
	return 1 - q.YesPrice
}

// Validate comprueba las invariantes numéricas de la cotización.
func (q MarketQuote) Validate() error {
	switch {
	case math.IsNaN(q.YesPrice) || q.YesPrice < 0 || q.YesPrice > 1:
		return fmt.Errorf("%w: %s %q yes_price %v out of [0,1]", ErrInvalidQuote, q.Platform, q.Slug, q.YesPrice)
	case math.IsNaN(q.Volume) || q.Volume < 0:
		return fmt.Errorf("%w: %s %q negative volume %v", ErrInvalidQuote, q.Platform, q.Slug, q.Volume)
	case math.IsNaN(q.Liquidity.Depth) || q.Liquidity.Depth < 0:
		return fmt.Errorf("%w: %s %q negative depth %v", ErrInvalidQuote, q.Platform, q.Slug, q.Liquidity.Depth)
	}
	return nil
}

// Project agrupa las cotizaciones de una entidad real en una plataforma.
// Se recalcula en cada ciclo; nunca se muta incrementalmente.
type Project struct {
	Name     string
	Platform Platform
	Markets  []MarketQuote
}

// TotalVolume suma el volumen de todos los mercados del proyecto.
func (p Project) TotalVolume() float64 {
	total := 0.0
	for _, m := range p.Markets {
		total += m.Volume
	}
	return total
}

// ValidateProjects valida cada cotización de los proyectos dados.
func ValidateProjects(projects []Project) error {
	for _, p := range projects {
		for _, m := range p.Markets {
			if err := m.Validate(); err != nil {
				return fmt.Errorf("project %q: %w", p.Name, err)
			}
		}
	}
	return nil
}

// GroupProjects agrupa cotizaciones por Project (conservando el orden de llegada
// dentro de cada proyecto) y ordena los proyectos por volumen total descendente.
func GroupProjects(platform Platform, quotes []MarketQuote) []Project {
	index := make(map[string]int)
	var projects []Project
	for _, q := range quotes {
		i, ok := index[q.Project]
		if !ok {
			i = len(projects)
			index[q.Project] = i
			projects = append(projects, Project{Name: q.Project, Platform: platform})
		}
		projects[i].Markets = append(projects[i].Markets, q)
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].TotalVolume() > projects[j].TotalVolume()
	})
	return projects
}

// TruncateQuestion devuelve la pregunta truncada a maxLen caracteres.
// Si la pregunta está vacía usa el slug como fallback.
func TruncateQuestion(question, slug string, maxLen int) string {
	q := question
	if q == "" {
		q = slug
	}
	r := []rune(q)
	if len(r) > maxLen {
		return string(r[:maxLen-3]) + "..."
	}
	return q
}
