package ports

import (
	"context"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

// MarketProvider obtiene el snapshot de proyectos de una plataforma.
type MarketProvider interface {
	// Platform identifica la plataforma que sirve este provider.
	Platform() domain.Platform

	// FetchProjects devuelve los proyectos con sus mercados ya normalizados
	// (nombre canónico y MatchKey), ordenados por volumen total descendente.
	FetchProjects(ctx context.Context) ([]domain.Project, error)
}
