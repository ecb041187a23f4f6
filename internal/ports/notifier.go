package ports

import (
	"context"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

// Notifier presenta el resultado de un ciclo al usuario.
type Notifier interface {
	// Notify muestra huecos, spreads, arbitrajes, liquidez y movimientos.
	// En la implementación de consola, imprime tablas formateadas.
	Notify(ctx context.Context, cycle domain.Cycle) error
}
