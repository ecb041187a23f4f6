package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(year int) func() time.Time {
	return func() time.Time { return time.Date(year, time.January, 10, 12, 0, 0, 0, time.UTC) }
}

func TestProjectName_Patterns(t *testing.T) {
	n := NewNormalizer(fixedClock(2026))

	cases := []struct {
		title    string
		platform Platform
		want     string
	}{
		{"Will Zama launch a token in 2025?", PlatformPolymarket, "Zama"},
		{"Infinex FDV above $3B one day after launch?", PlatformPolymarket, "Infinex"},
		{"Zama Protocol FDV above $1B one day after launch?", PlatformPolymarket, "Zama"},
		{"MegaETH market cap (FDV) one day after launch?", PlatformPolymarket, "MegaETH"},
		{"Over $100M committed to the MegaETH public sale?", PlatformPolymarket, "MegaETH"},
		{"What day will the Linea airdrop happen?", PlatformPolymarket, "Linea"},
		{"Will Kraken IPO by June 30?", PlatformPolymarket, "Kraken"},
		{"Berachain Labs airdrop by March 31?", PlatformPolymarket, "Berachain"},
		{"🚀 Monad FDV above $5B", PlatformLimitless, "Monad"},
		{"💎✨ Zama airdrop by March 31?", PlatformLimitless, "Zama"},
	}

	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			assert.Equal(t, tc.want, n.ProjectName(tc.title, tc.platform))
		})
	}
}

func TestProjectName_Fallbacks(t *testing.T) {
	n := NewNormalizer(fixedClock(2026))

	// Ninguna regla matchea, pero hay keyword "IPO" → texto anterior
	assert.Equal(t, "Backpack", n.ProjectName("Backpack IPO?", PlatformPolymarket))

	// Sin keywords: truncado a 30 caracteres
	got := n.ProjectName("Something entirely different without keywords here at all", PlatformPolymarket)
	assert.Equal(t, "Something entirely different w", got)

	assert.Equal(t, "Unknown", n.ProjectName("   ", PlatformPolymarket))
	assert.Equal(t, "Unknown", n.ProjectName("🚀🚀", PlatformLimitless))
}

func TestCanonicalizeThreshold_SameValueAcrossUnits(t *testing.T) {
	m, ok := CanonicalizeThreshold("$500M")
	require.True(t, ok)
	b, ok := CanonicalizeThreshold("$0.5B")
	require.True(t, ok)

	assert.Equal(t, 500_000_000.0, m)
	assert.Equal(t, m, b)

	big, _ := CanonicalizeThreshold("$1.2B")
	mil, _ := CanonicalizeThreshold("$1200M")
	assert.Equal(t, big, mil)

	k, ok := CanonicalizeThreshold("750k")
	require.True(t, ok)
	assert.Equal(t, 750_000.0, k)

	_, ok = CanonicalizeThreshold("no number here")
	assert.False(t, ok)
}

func TestExtractKey_Threshold(t *testing.T) {
	n := NewNormalizer(fixedClock(2026))

	key := n.ExtractKey("Zama FDV above $500M one day after launch?")
	require.NotNil(t, key)
	assert.Equal(t, KeyThreshold, key.Kind)
	assert.Equal(t, 500_000_000.0, key.Amount)
	assert.Equal(t, "$500M", key.Label)

	lower := n.ExtractKey("infinex fdv above $2b")
	require.NotNil(t, lower)
	assert.Equal(t, "$2B", lower.Label)
	assert.Equal(t, 2_000_000_000.0, lower.Amount)
}

func TestExtractKey_FirstDollarFigureWins(t *testing.T) {
	// Limitación conocida: la primera cifra gana aunque no sea el umbral.
	n := NewNormalizer(fixedClock(2026))
	key := n.ExtractKey("Will Zama have $10M volume and FDV above $1B?")
	require.NotNil(t, key)
	assert.Equal(t, 10_000_000.0, key.Amount)
}

func TestExtractKey_ThresholdBeatsDate(t *testing.T) {
	n := NewNormalizer(fixedClock(2026))
	key := n.ExtractKey("Zama FDV above $1B by March 31?")
	require.NotNil(t, key)
	assert.Equal(t, KeyThreshold, key.Kind)
}

func TestExtractKey_Date(t *testing.T) {
	n := NewNormalizer(fixedClock(2026))

	cases := []struct {
		question string
		want     string
	}{
		{"Will Monad launch a token by March 15?", "2026-03-15"},
		{"Will Base launch a token by Dec 31, 2027?", "2027-12-31"},
		{"Will Linea airdrop by Sept 30?", "2026-09-30"},
		{"Will MetaMask launch a token by June 1st?", "2026-06-01"},
	}
	for _, tc := range cases {
		t.Run(tc.question, func(t *testing.T) {
			key := n.ExtractKey(tc.question)
			require.NotNil(t, key)
			assert.Equal(t, KeyDate, key.Kind)
			assert.Equal(t, tc.want, key.Date)
		})
	}
}

func TestExtractKey_DateUsesInjectedYear(t *testing.T) {
	q := "Will Monad launch a token by March 15?"
	assert.Equal(t, "2026-03-15", NewNormalizer(fixedClock(2026)).ExtractKey(q).Date)
	assert.Equal(t, "2027-03-15", NewNormalizer(fixedClock(2027)).ExtractKey(q).Date)
}

func TestExtractKey_NoKey(t *testing.T) {
	n := NewNormalizer(fixedClock(2026))
	assert.Nil(t, n.ExtractKey("Will Zama win the hackathon?"))
	assert.Nil(t, n.ExtractKey("Will Monad launch by February 30?"))
	assert.Nil(t, n.ExtractKey("Will Monad launch by Smarch 3?"))
}

func TestNormalize_CombinesNameAndKey(t *testing.T) {
	n := NewNormalizer(fixedClock(2026))
	name, key := n.Normalize("🔥 Zama FDV above $0.5B", "🔥 Zama FDV above $0.5B", PlatformLimitless)
	assert.Equal(t, "Zama", name)
	require.NotNil(t, key)
	assert.Equal(t, 500_000_000.0, key.Amount)
}

func TestMatchKey_Equal(t *testing.T) {
	a := ThresholdKey(5e8, "$500M")
	b := ThresholdKey(0.5*1e9, "$0.5B")
	d := DateKey("2026-03-15")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(ThresholdKey(8e8, "$800M")))
	assert.False(t, a.Equal(d), "cross-variant keys never match")
	assert.True(t, d.Equal(DateKey("2026-03-15")))
	assert.False(t, a.Equal(nil))

	var nilKey *MatchKey
	assert.False(t, nilKey.Equal(a))
	assert.Equal(t, "-", nilKey.String())
}
