package ports

import (
	"context"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

// ReportCache guarda el resumen del último ciclo para consultas rápidas.
type ReportCache interface {
	StoreCycle(ctx context.Context, cycle domain.Cycle) error
	// LatestSummary devuelve el último resumen serializado (JSON).
	// ok=false si no hay ninguno guardado.
	LatestSummary(ctx context.Context) (summary []byte, ok bool, err error)
	Close() error
}

// Publisher emite las oportunidades de arbitraje de un ciclo a un bus de eventos.
type Publisher interface {
	PublishArbs(ctx context.Context, cycle domain.Cycle) error
	Close() error
}
