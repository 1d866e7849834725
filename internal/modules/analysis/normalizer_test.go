package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time {
		return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
	}
}

func TestNormalize_NestedProducerPayload(t *testing.T) {
	n := NewNormalizer()
	n.now = fixedClock(2025, time.August, 29)

	payload := map[string]any{
		"analysis_type": "fundamental",
		"investment_classification": map[string]any{
			"investment_grade": "A-",
			"primary_category": "GROWTH",
		},
		"financial_health": map[string]any{
			"profitability": map[string]any{
				"roe_2024":        0.34,
				"roa_2024":        0.21,
				"net_margin_2024": 0.25,
			},
			"liquidity": map[string]any{
				"current_ratio_2024":   1.1,
				"cash_and_equivalents": 62000000000.0,
			},
			"leverage": map[string]any{
				"debt_to_equity_2024": 1.5,
				"interest_coverage":   28.0,
			},
			"efficiency": map[string]any{
				"asset_turnover": 1.08,
			},
		},
		"valuation_metrics": map[string]any{
			"pe_ratio": 29.5,
			"pb_ratio": 45.2,
		},
		"valuation": map[string]any{
			"ev_ebitda":  22.1,
			"pfcf_ratio": 27.3,
		},
		"growth_analysis": map[string]any{
			"revenue_growth": map[string]any{"cagr_5yr": 0.08},
		},
		"company_profile": map[string]any{
			"market_cap": 2900000000000.0,
			"sector":     "Technology",
			"industry":   "Consumer Electronics",
		},
		"current_price": map[string]any{"price": 189.5},
	}

	rec := n.Normalize("AAPL", payload)

	assert.Equal(t, "AAPL", rec.Symbol)
	assert.Equal(t, "2025-08-29", rec.AnalysisDate)
	assert.Equal(t, "fundamental", rec.AnalysisType)

	require.NotNil(t, rec.ROE)
	assert.InDelta(t, 0.34, *rec.ROE, 1e-9)
	require.NotNil(t, rec.CurrentRatio)
	assert.InDelta(t, 1.1, *rec.CurrentRatio, 1e-9)
	require.NotNil(t, rec.CashPosition)
	require.NotNil(t, rec.InterestCoverage)
	require.NotNil(t, rec.AssetTurnover)
	require.NotNil(t, rec.PERatio)
	assert.InDelta(t, 29.5, *rec.PERatio, 1e-9)
	require.NotNil(t, rec.EVEBITDA)
	require.NotNil(t, rec.PriceToFCF)
	require.NotNil(t, rec.RevenueGrowth1Yr)
	require.NotNil(t, rec.MarketCap)
	require.NotNil(t, rec.CurrentPrice)
	assert.InDelta(t, 189.5, *rec.CurrentPrice, 1e-9)
	require.NotNil(t, rec.Sector)
	assert.Equal(t, "Technology", *rec.Sector)
	require.NotNil(t, rec.InvestmentGrade)
	assert.Equal(t, "A-", *rec.InvestmentGrade)
	require.NotNil(t, rec.StockClassification)
	assert.Equal(t, "GROWTH", *rec.StockClassification)

	// Dimensions not carried by this producer stay nil
	assert.Nil(t, rec.RSI14)
	assert.Nil(t, rec.SentimentScore)
	assert.Nil(t, rec.ImpliedVolatility)
}

func TestNormalize_FlatPayloadFallback(t *testing.T) {
	n := NewNormalizer()
	n.now = fixedClock(2025, time.August, 29)

	payload := map[string]any{
		"roe":            0.18,
		"pe_ratio":       15.0,
		"market_cap":     500000000000.0,
		"sector":         "Financials",
		"dividend_yield": 0.031,
	}

	rec := n.Normalize("JPM", payload)

	require.NotNil(t, rec.ROE)
	assert.InDelta(t, 0.18, *rec.ROE, 1e-9)
	require.NotNil(t, rec.PERatio)
	require.NotNil(t, rec.DividendYield)
	require.NotNil(t, rec.Sector)
	assert.Equal(t, "Financials", *rec.Sector)
}

func TestNormalize_SchemaDriftDegradesToNil(t *testing.T) {
	n := NewNormalizer()

	// Intermediate node is a scalar, not a mapping: must not panic
	rec := n.Normalize("X", map[string]any{
		"financial_health":  "unexpected string",
		"valuation_metrics": []any{1, 2, 3},
	})

	assert.Nil(t, rec.ROE)
	assert.Nil(t, rec.PERatio)

	// Empty payload
	rec = n.Normalize("Y", map[string]any{})
	assert.Nil(t, rec.MarketCap)

	// Nil payload
	rec = n.Normalize("Z", nil)
	assert.Equal(t, "Z", rec.Symbol)
}

func TestEnrichEarnings(t *testing.T) {
	n := NewNormalizer()
	n.now = fixedClock(2025, time.August, 29)

	t.Run("iso strings", func(t *testing.T) {
		rec := &Record{}
		n.EnrichEarnings(rec, "2025-08-01", "2025-10-30")

		require.NotNil(t, rec.DaysSinceEarnings)
		assert.Equal(t, 28, *rec.DaysSinceEarnings)
		require.NotNil(t, rec.DaysUntilEarnings)
		assert.Equal(t, 62, *rec.DaysUntilEarnings)
		require.NotNil(t, rec.LastEarningsDate)
		assert.Equal(t, "2025-08-01", *rec.LastEarningsDate)
	})

	t.Run("time values", func(t *testing.T) {
		rec := &Record{}
		n.EnrichEarnings(rec,
			time.Date(2025, time.August, 22, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC))

		require.NotNil(t, rec.DaysSinceEarnings)
		assert.Equal(t, 7, *rec.DaysSinceEarnings)
		require.NotNil(t, rec.DaysUntilEarnings)
		assert.Equal(t, 7, *rec.DaysUntilEarnings)
	})

	t.Run("past next-earnings date yields negative delta", func(t *testing.T) {
		rec := &Record{}
		n.EnrichEarnings(rec, nil, "2025-08-20")

		require.NotNil(t, rec.DaysUntilEarnings)
		assert.Equal(t, -9, *rec.DaysUntilEarnings)
	})

	t.Run("absent dates leave fields nil", func(t *testing.T) {
		rec := &Record{}
		n.EnrichEarnings(rec, nil, nil)

		assert.Nil(t, rec.DaysSinceEarnings)
		assert.Nil(t, rec.DaysUntilEarnings)
	})

	t.Run("garbage dates leave fields nil", func(t *testing.T) {
		rec := &Record{}
		n.EnrichEarnings(rec, "not-a-date", 12345)

		assert.Nil(t, rec.DaysSinceEarnings)
		assert.Nil(t, rec.DaysUntilEarnings)
	})
}
