package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
	"github.com/bluabaleno/premarket-tracker/internal/ports"
)

// DefaultSchedule ejecuta un ciclo al día a las 09:00 (hora local).
const DefaultSchedule = "0 9 * * *"

// Config contiene la configuración del tracker.
type Config struct {
	Schedule   string // expresión cron de 5 campos o descriptor (@every 6h)
	Thresholds domain.LiquidityThresholds
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		Schedule:   DefaultSchedule,
		Thresholds: domain.DefaultLiquidityThresholds(),
	}
}

// Tracker es el orquestador de ciclos: descarga ambas plataformas, evalúa
// y reparte el resultado entre notificador, storage, caché y publisher.
type Tracker struct {
	cfg       Config
	poly      ports.MarketProvider
	lim       ports.MarketProvider
	storage   ports.Storage
	notifier  ports.Notifier
	cache     ports.ReportCache
	publisher ports.Publisher
	launches  ports.LaunchStore
	portfolio ports.PortfolioStore
	now       func() time.Time
	newID     func() string
}

// Option configura dependencias opcionales del Tracker.
type Option func(*Tracker)

// WithCache guarda el resumen de cada ciclo en c.
func WithCache(c ports.ReportCache) Option {
	return func(t *Tracker) { t.cache = c }
}

// WithPublisher publica los arbitrajes de cada ciclo en p.
func WithPublisher(p ports.Publisher) Option {
	return func(t *Tracker) { t.publisher = p }
}

// WithLaunches registra en ls los lanzamientos detectados; el ciclo solo
// informa de los nuevos. Sin él se informa de todos en cada ciclo.
func WithLaunches(ls ports.LaunchStore) Option {
	return func(t *Tracker) { t.launches = ls }
}

// WithPortfolio valora en cada ciclo las posiciones guardadas en ps.
func WithPortfolio(ps ports.PortfolioStore) Option {
	return func(t *Tracker) { t.portfolio = ps }
}

// WithClock fija el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDs fija el generador de IDs de ciclo (tests).
func WithIDs(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

// New crea un Tracker. storage puede ser nil (sin persistencia ni comparación).
func New(
	cfg Config,
	poly, lim ports.MarketProvider,
	storage ports.Storage,
	notifier ports.Notifier,
	opts ...Option,
) *Tracker {
	t := &Tracker{
		cfg:      cfg,
		poly:     poly,
		lim:      lim,
		storage:  storage,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run ejecuta un ciclo inmediatamente y después uno por cada disparo del
// schedule hasta que el contexto se cancele. Los fallos de ciclo se loguean.
func (t *Tracker) Run(ctx context.Context) error {
	schedule := t.cfg.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() { t.runLogged(ctx) }); err != nil {
		return fmt.Errorf("tracker.Run: schedule %q: %w", schedule, err)
	}

	slog.Info("tracker starting", "schedule", schedule)
	t.runLogged(ctx)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	slog.Info("tracker stopped")
	return nil
}

// runLogged ejecuta un ciclo y loguea el error. Un panic dentro del ciclo
// se recupera para no tumbar el daemon.
func (t *Tracker) runLogged(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("tracking cycle panicked", "panic", r)
		}
	}()
	if _, err := t.RunOnce(ctx); err != nil {
		slog.Error("tracking cycle failed", "err", err)
	}
}

// RunOnce ejecuta exactamente un ciclo completo y lo devuelve.
// Solo la descarga y la validación son fatales: notificador, storage,
// caché y publisher se loguean y el ciclo sigue.
func (t *Tracker) RunOnce(ctx context.Context) (domain.Cycle, error) {
	start := time.Now()
	runAt := t.now()

	poly, lim, err := t.fetch(ctx)
	if err != nil {
		return domain.Cycle{}, err
	}

	ev, err := domain.Evaluate(poly, lim, t.cfg.Thresholds)
	if err != nil {
		return domain.Cycle{}, fmt.Errorf("tracker.RunOnce: %w", err)
	}

	cycle := domain.Cycle{
		ID:         t.newID(),
		RunAt:      runAt,
		Poly:       poly,
		Lim:        lim,
		Evaluation: ev,
	}
	cycle.Changes = t.compare(ctx, cycle)
	cycle.Launches = t.detectLaunches(ctx, cycle)
	cycle.Portfolio = t.valuePortfolio(ctx, cycle)

	if err := t.notifier.Notify(ctx, cycle); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if t.storage != nil {
		if err := t.storage.SaveCycle(ctx, cycle); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	if t.cache != nil {
		if err := t.cache.StoreCycle(ctx, cycle); err != nil {
			slog.Warn("cache error", "err", err)
		}
	}

	if t.publisher != nil {
		if err := t.publisher.PublishArbs(ctx, cycle); err != nil {
			slog.Warn("publisher error", "err", err)
		}
	}

	slog.Info("tracking cycle complete",
		"cycle", cycle.ID,
		"matched", ev.Report.TotalMatched,
		"gaps", ev.Report.GapCandidates,
		"arbs", len(ev.Arbs),
		"changes", len(cycle.Changes),
		"launches", len(cycle.Launches),
		"positions", len(cycle.Portfolio),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return cycle, nil
}

// fetch descarga ambas plataformas en paralelo. Si una falla, el ciclo falla:
// sin los dos lados no hay nada que comparar.
func (t *Tracker) fetch(ctx context.Context) (poly, lim []domain.Project, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if poly, err = t.poly.FetchProjects(gctx); err != nil {
			return fmt.Errorf("tracker.fetch: %s: %w", t.poly.Platform(), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if lim, err = t.lim.FetchProjects(gctx); err != nil {
			return fmt.Errorf("tracker.fetch: %s: %w", t.lim.Platform(), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return poly, lim, nil
}

// compare devuelve los cambios de precio respecto al ciclo guardado anterior.
func (t *Tracker) compare(ctx context.Context, cycle domain.Cycle) []domain.PriceChange {
	if t.storage == nil {
		return nil
	}
	prev, err := t.storage.PreviousQuotes(ctx, cycle.RunAt)
	if err != nil {
		slog.Warn("previous snapshot unavailable", "err", err)
		return nil
	}
	if len(prev) == 0 {
		slog.Debug("no previous cycle to compare")
		return nil
	}
	return domain.CompareSnapshots(cycle.Quotes(), prev)
}

// detectLaunches devuelve los lanzamientos del año del ciclo no vistos antes.
func (t *Tracker) detectLaunches(ctx context.Context, cycle domain.Cycle) []domain.Launch {
	found := domain.DetectLaunches(cycle.Poly, cycle.Lim, cycle.RunAt.Year())
	if t.launches == nil || len(found) == 0 {
		return found
	}
	added, err := t.launches.RecordLaunches(ctx, found)
	if err != nil {
		slog.Warn("launch store error", "err", err)
		return nil
	}
	for _, l := range added {
		slog.Info("launch detected", "project", l.Project, "tge", l.TGEDate.Format("2006-01-02"))
	}
	return added
}

// valuePortfolio valora las posiciones guardadas con las cotizaciones del ciclo.
func (t *Tracker) valuePortfolio(ctx context.Context, cycle domain.Cycle) []domain.PositionPnL {
	if t.portfolio == nil {
		return nil
	}
	positions, err := t.portfolio.ListPositions(ctx)
	if err != nil {
		slog.Warn("portfolio unavailable", "err", err)
		return nil
	}
	if len(positions) == 0 {
		return nil
	}
	return domain.ValuePortfolio(positions, cycle.Quotes())
}
