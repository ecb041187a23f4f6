package ports

import (
	"context"
	"time"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

// CycleSummary es la fila de resumen persistida por ciclo.
type CycleSummary struct {
	ID            string
	RunAt         time.Time
	PolyMarkets   int
	LimMarkets    int
	Matched       int
	GapCandidates int
	Arbs          int
	BestEdgePct   float64
}

// Storage persiste los ciclos del tracker y sus cotizaciones.
type Storage interface {
	// SaveCycle persiste el resumen del ciclo y todas sus cotizaciones.
	SaveCycle(ctx context.Context, cycle domain.Cycle) error

	// PreviousQuotes devuelve las cotizaciones del ciclo más reciente
	// estrictamente anterior a before. Vacío si no hay ciclo previo.
	PreviousQuotes(ctx context.Context, before time.Time) ([]domain.MarketQuote, error)

	// ListCycles devuelve los últimos limit ciclos, el más reciente primero.
	ListCycles(ctx context.Context, limit int) ([]CycleSummary, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}

// LaunchStore recuerda los lanzamientos ya detectados.
type LaunchStore interface {
	// RecordLaunches guarda los lanzamientos y devuelve solo los que no
	// estaban registrados (por nombre normalizado de proyecto).
	RecordLaunches(ctx context.Context, launches []domain.Launch) ([]domain.Launch, error)

	// ListLaunches devuelve todos los lanzamientos, el TGE más reciente primero.
	ListLaunches(ctx context.Context) ([]domain.Launch, error)
}

// PortfolioStore persiste las posiciones abiertas del usuario.
type PortfolioStore interface {
	SavePosition(ctx context.Context, pos domain.Position) error
	DeletePosition(ctx context.Context, id string) error
	ListPositions(ctx context.Context) ([]domain.Position, error)
}
