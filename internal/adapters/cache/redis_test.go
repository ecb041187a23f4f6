package cache_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluabaleno/premarket-tracker/internal/adapters/cache"
	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

func makeCycle(t *testing.T) domain.Cycle {
	t.Helper()
	key := domain.ThresholdKey(1e9, "$1B")
	poly := []domain.Project{{
		Name:     "Sentient",
		Platform: domain.PlatformPolymarket,
		Markets: []domain.MarketQuote{
			{Platform: domain.PlatformPolymarket, Project: "Sentient", Slug: "poly-1b", YesPrice: 0.60, Key: key},
			{Platform: domain.PlatformPolymarket, Project: "Sentient", Slug: "poly-2b", YesPrice: 0.30, Key: domain.ThresholdKey(2e9, "$2B")},
		},
	}, {
		Name:     "Backpack",
		Platform: domain.PlatformPolymarket,
		Markets: []domain.MarketQuote{
			{Platform: domain.PlatformPolymarket, Project: "Backpack", Slug: "bp", YesPrice: 0.20},
		},
	}}
	lim := []domain.Project{{
		Name:     "Sentient",
		Platform: domain.PlatformLimitless,
		Markets: []domain.MarketQuote{
			{Platform: domain.PlatformLimitless, Project: "Sentient", Slug: "lim-1b", YesPrice: 0.40, Key: key},
		},
	}}

	ev, err := domain.Evaluate(poly, lim, domain.DefaultLiquidityThresholds())
	require.NoError(t, err)
	return domain.Cycle{
		ID:         "cycle-1",
		RunAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Poly:       poly,
		Lim:        lim,
		Evaluation: ev,
	}
}

func TestNewSummary(t *testing.T) {
	s := cache.NewSummary(makeCycle(t))

	assert.Equal(t, "cycle-1", s.CycleID)
	assert.Equal(t, 2, s.PolyProjects)
	assert.Equal(t, 1, s.LimProjects)
	assert.Equal(t, 1, s.Matched)
	assert.Equal(t, []string{"Backpack"}, s.NotOnLim)
	require.Len(t, s.Arbs, 1)

	arb := s.Arbs[0]
	assert.Equal(t, "Sentient", arb.Project)
	assert.Equal(t, "$1B", arb.Key)
	assert.Equal(t, "lim-1b", arb.LimSlug)
	assert.Equal(t, "poly-1b", arb.PolySlug)
	assert.InDelta(t, 0.80, arb.CombinedCost, 1e-9)
	assert.InDelta(t, 20.0, arb.EdgePct, 1e-9)
}

func TestNewSummary_EmptyCycleSerializesArrays(t *testing.T) {
	raw, err := json.Marshal(cache.NewSummary(domain.Cycle{ID: "empty"}))
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"arbs":[]`)
	assert.Contains(t, string(raw), `"gap_candidates":[]`)
}

func TestNewRedisReportCache_RequiresAddr(t *testing.T) {
	_, err := cache.NewRedisReportCache(cache.Options{})
	assert.Error(t, err)
}

// TestRedisReportCache_RoundTrip necesita un Redis real: REDIS_ADDR=localhost:6379.
func TestRedisReportCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	c, err := cache.NewRedisReportCache(cache.Options{
		Addr:   addr,
		TTL:    time.Minute,
		Prefix: "premarket-test-" + time.Now().Format("150405.000000"),
	})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	_, ok, err := c.LatestSummary(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.StoreCycle(ctx, makeCycle(t)))

	raw, ok, err := c.LatestSummary(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	var s cache.Summary
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, "cycle-1", s.CycleID)
	assert.Len(t, s.Arbs, 1)
}
