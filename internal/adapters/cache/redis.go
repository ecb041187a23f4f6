package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

const (
	defaultTTL    = 48 * time.Hour
	defaultPrefix = "premarket"
	summaryArbs   = 10
)

// Summary es el resumen JSON de un ciclo que se guarda en Redis.
type Summary struct {
	CycleID       string       `json:"cycle_id"`
	RunAt         time.Time    `json:"run_at"`
	PolyProjects  int          `json:"poly_projects"`
	LimProjects   int          `json:"lim_projects"`
	Matched       int          `json:"matched"`
	PolyOnly      int          `json:"poly_only"`
	LimOnly       int          `json:"lim_only"`
	GapCandidates []string     `json:"gap_candidates"`
	NotOnLim      []string     `json:"not_on_limitless"`
	Arbs          []ArbSummary `json:"arbs"`
	CriticalBooks int          `json:"critical_books"`
	PriceChanges  int          `json:"price_changes"`
}

// ArbSummary es una oportunidad de arbitraje dentro del resumen.
type ArbSummary struct {
	Project      string  `json:"project"`
	Key          string  `json:"key"`
	LimYes       float64 `json:"lim_yes"`
	PolyNo       float64 `json:"poly_no"`
	CombinedCost float64 `json:"combined_cost"`
	EdgePct      float64 `json:"edge_pct"`
	LimSlug      string  `json:"lim_slug"`
	PolySlug     string  `json:"poly_slug"`
}

// NewSummary construye el resumen de un ciclo. Solo guarda los
// summaryArbs arbitrajes con más edge.
func NewSummary(cycle domain.Cycle) Summary {
	r := cycle.Evaluation.Report
	s := Summary{
		CycleID:       cycle.ID,
		RunAt:         cycle.RunAt.UTC(),
		PolyProjects:  len(cycle.Poly),
		LimProjects:   len(cycle.Lim),
		Matched:       r.TotalMatched,
		PolyOnly:      r.TotalPolyOnly,
		LimOnly:       r.TotalLimOnly,
		GapCandidates: []string{},
		NotOnLim:      []string{},
		Arbs:          []ArbSummary{},
		CriticalBooks: len(cycle.Evaluation.Liquidity.Critical),
		PriceChanges:  len(cycle.Changes),
	}
	for _, pg := range r.Projects {
		if pg.GapCandidate {
			s.GapCandidates = append(s.GapCandidates, pg.Name)
		}
		if !pg.OnLimitless {
			s.NotOnLim = append(s.NotOnLim, pg.Name)
		}
	}
	for i, arb := range cycle.Evaluation.Arbs {
		if i >= summaryArbs {
			break
		}
		s.Arbs = append(s.Arbs, ArbSummary{
			Project:      arb.Pair.Project,
			Key:          arb.Pair.Key().String(),
			LimYes:       arb.Pair.Lim.YesPrice,
			PolyNo:       arb.Pair.Poly.NoPrice(),
			CombinedCost: arb.CombinedCost,
			EdgePct:      arb.EdgePct,
			LimSlug:      arb.Pair.Lim.Slug,
			PolySlug:     arb.Pair.Poly.Slug,
		})
	}
	return s
}

// RedisReportCache implementa ports.ReportCache sobre Redis.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// Options configura la conexión a Redis.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// NewRedisReportCache crea la caché. No abre la conexión hasta el primer comando.
func NewRedisReportCache(opts Options) (*RedisReportCache, error) {
	if opts.Addr == "" {
		return nil, errors.New("cache.NewRedisReportCache: redis addr is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultPrefix
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisReportCache{client: client, ttl: opts.TTL, prefix: opts.Prefix}, nil
}

func (c *RedisReportCache) latestKey() string {
	return c.prefix + ":latest"
}

func (c *RedisReportCache) cycleKey(id string) string {
	return fmt.Sprintf("%s:cycle:%s", c.prefix, id)
}

// StoreCycle guarda el resumen bajo la clave del ciclo y como último resumen.
func (c *RedisReportCache) StoreCycle(ctx context.Context, cycle domain.Cycle) error {
	payload, err := json.Marshal(NewSummary(cycle))
	if err != nil {
		return fmt.Errorf("cache.StoreCycle: marshal: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.cycleKey(cycle.ID), payload, c.ttl)
	pipe.Set(ctx, c.latestKey(), payload, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache.StoreCycle: %w", err)
	}
	return nil
}

// LatestSummary devuelve el JSON del último ciclo guardado.
func (c *RedisReportCache) LatestSummary(ctx context.Context) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, c.latestKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache.LatestSummary: %w", err)
	}
	return raw, true, nil
}

// Close cierra el cliente de Redis.
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}
