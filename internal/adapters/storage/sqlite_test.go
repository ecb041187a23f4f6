package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bluabaleno/premarket-tracker/internal/adapters/storage"
	"github.com/bluabaleno/premarket-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCycle(id string, runAt time.Time, zamaYes float64) domain.Cycle {
	key := domain.ThresholdKey(5e8, "$500M")
	poly := domain.Project{
		Name:     "Zama",
		Platform: domain.PlatformPolymarket,
		Markets: []domain.MarketQuote{{
			Platform: domain.PlatformPolymarket, Project: "Zama", Question: "Zama FDV above $500M?",
			Slug: "zama-500m", YesPrice: zamaYes, Volume: 9000,
			Liquidity: domain.Liquidity{Type: domain.LiquidityCLOB, Depth: 300}, Key: key,
		}},
	}
	lim := domain.Project{
		Name:     "Zama",
		Platform: domain.PlatformLimitless,
		Markets: []domain.MarketQuote{
			{
				Platform: domain.PlatformLimitless, Project: "Zama", ProjectRawTitle: "🔥 Zama FDV above $0.5B",
				Question: "🔥 Zama FDV above $0.5B", Slug: "zama-0-5b", YesPrice: 0.40, Volume: 250,
				Liquidity: domain.Liquidity{Type: domain.LiquidityAMM, Depth: 40}, Key: key,
			},
			{
				Platform: domain.PlatformLimitless, Project: "Zama", Question: "Will Zama launch by March 31?",
				Slug: "zama-mar31", YesPrice: 0.7, Closed: true, Key: domain.DateKey("2026-03-31"),
			},
		},
	}
	ev, err := domain.Evaluate([]domain.Project{poly}, []domain.Project{lim}, domain.DefaultLiquidityThresholds())
	if err != nil {
		panic(err)
	}
	return domain.Cycle{ID: id, RunAt: runAt, Poly: []domain.Project{poly}, Lim: []domain.Project{lim}, Evaluation: ev}
}

func TestSQLiteStorage_SaveAndPreviousQuotes(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	t0 := time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, db.SaveCycle(ctx, makeCycle("c1", t0, 0.60)))
	require.NoError(t, db.SaveCycle(ctx, makeCycle("c2", t0.Add(time.Hour), 0.70)))

	// El ciclo más reciente anterior a "ahora" es c2
	quotes, err := db.PreviousQuotes(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	poly := quotes[0]
	assert.Equal(t, domain.PlatformPolymarket, poly.Platform)
	assert.Equal(t, "zama-500m", poly.Slug)
	assert.InDelta(t, 0.70, poly.YesPrice, 1e-9)
	assert.Equal(t, domain.LiquidityCLOB, poly.Liquidity.Type)
	require.NotNil(t, poly.Key)
	assert.True(t, poly.Key.Equal(domain.ThresholdKey(5e8, "$500M")))

	lim := quotes[1]
	assert.Equal(t, domain.PlatformLimitless, lim.Platform)
	assert.Equal(t, "🔥 Zama FDV above $0.5B", lim.ProjectRawTitle)

	dated := quotes[2]
	assert.True(t, dated.Closed)
	require.NotNil(t, dated.Key)
	assert.Equal(t, domain.KeyDate, dated.Key.Kind)
	assert.Equal(t, "2026-03-31", dated.Key.Date)

	// Antes de c2 solo existe c1
	older, err := db.PreviousQuotes(ctx, t0.Add(30*time.Minute))
	require.NoError(t, err)
	require.NotEmpty(t, older)
	assert.InDelta(t, 0.60, older[0].YesPrice, 1e-9)
}

func TestSQLiteStorage_PreviousQuotes_NoCycle(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	quotes, err := db.PreviousQuotes(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestSQLiteStorage_ListCycles(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, db.SaveCycle(ctx, makeCycle(id, base.Add(time.Duration(i)*time.Minute), 0.70)))
	}

	cycles, err := db.ListCycles(ctx, 2)
	require.NoError(t, err)
	require.Len(t, cycles, 2)
	assert.Equal(t, "c", cycles[0].ID)
	assert.Equal(t, "b", cycles[1].ID)

	c := cycles[0]
	assert.Equal(t, 1, c.PolyMarkets)
	assert.Equal(t, 2, c.LimMarkets)
	assert.Equal(t, 1, c.Matched)
	assert.Equal(t, 1, c.Arbs)
	assert.InDelta(t, 30.0, c.BestEdgePct, 1e-9)
	assert.WithinDuration(t, base.Add(2*time.Minute), c.RunAt, time.Millisecond)
}

func TestSQLiteStorage_PrunesOldCyclesOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")
	ctx := context.Background()

	db, err := storage.NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, db.SaveCycle(ctx, makeCycle("old", time.Now().Add(-100*24*time.Hour), 0.5)))
	require.NoError(t, db.SaveCycle(ctx, makeCycle("recent", time.Now().Add(-time.Hour), 0.5)))
	require.NoError(t, db.Close())

	db, err = storage.NewSQLiteStorage(path)
	require.NoError(t, err)
	defer db.Close()

	cycles, err := db.ListCycles(ctx, 10)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, "recent", cycles[0].ID)
}

func TestSQLiteStorage_DuplicateCycleID(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SaveCycle(ctx, makeCycle("dup", time.Now(), 0.5)))
	assert.Error(t, db.SaveCycle(ctx, makeCycle("dup", time.Now(), 0.5)))
}
