package publish_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluabaleno/premarket-tracker/internal/adapters/publish"
	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

func arbCycle(t *testing.T) domain.Cycle {
	t.Helper()
	return zamaCycle(t, 0.65, 0.55)
}

func zamaCycle(t *testing.T, polyYes, limYes float64) domain.Cycle {
	t.Helper()
	key := domain.ThresholdKey(5e8, "$500M")
	poly := []domain.Project{{
		Name:     "Zama",
		Platform: domain.PlatformPolymarket,
		Markets: []domain.MarketQuote{
			{Platform: domain.PlatformPolymarket, Project: "Zama", Slug: "zama-500m", YesPrice: polyYes, Key: key},
		},
	}}
	lim := []domain.Project{{
		Name:     "Zama",
		Platform: domain.PlatformLimitless,
		Markets: []domain.MarketQuote{
			{Platform: domain.PlatformLimitless, Project: "Zama", Slug: "lim-zama-500m", YesPrice: limYes, Key: key},
		},
	}}
	ev, err := domain.Evaluate(poly, lim, domain.DefaultLiquidityThresholds())
	require.NoError(t, err)
	return domain.Cycle{
		ID:         "c-42",
		RunAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Poly:       poly,
		Lim:        lim,
		Evaluation: ev,
	}
}

func TestBuildMessages(t *testing.T) {
	msgs, err := publish.BuildMessages(arbCycle(t), 100)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	assert.Equal(t, "Zama:lim-zama-500m", string(msgs[0].Key))

	var m publish.ArbMessage
	require.NoError(t, json.Unmarshal(msgs[0].Value, &m))
	assert.Equal(t, "c-42", m.CycleID)
	assert.Equal(t, "$500M", m.Key)
	assert.Equal(t, "threshold", m.KeyKind)
	assert.InDelta(t, 0.90, m.CombinedCost, 1e-9)
	assert.InDelta(t, 10.0, m.EdgePct, 1e-9)
	// 100 / 0.90 = 111.11 shares → 61.11 en Limitless, 38.89 en Polymarket
	assert.Equal(t, "61.11", m.LimSpend)
	assert.Equal(t, "38.89", m.PolySpend)
	assert.Equal(t, "11.11", m.Profit)
}

func TestBuildMessages_NoBudgetOmitsSplit(t *testing.T) {
	msgs, err := publish.BuildMessages(arbCycle(t), 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.NotContains(t, string(msgs[0].Value), "lim_spend")
}

func TestBuildMessages_NoArbs(t *testing.T) {
	msgs, err := publish.BuildMessages(domain.Cycle{ID: "none"}, 100)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestBuildMessages_ResolvedPairIsNotAnArb(t *testing.T) {
	cycle := zamaCycle(t, 1.0, 0.0)
	require.NotPanics(t, func() {
		msgs, err := publish.BuildMessages(cycle, 100)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	_, err := publish.NewKafkaPublisher(nil, "", 100)
	assert.Error(t, err)
}
