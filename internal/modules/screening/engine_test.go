package screening

import (
	"os"
	"testing"

	"github.com/aristath/analytics/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestEngine(t *testing.T) (*Engine, *database.DB, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test_screening_*.db")
	require.NoError(t, err)
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: database.ProfileAnalytics,
		Name:    "analytics",
	})
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())

	cleanup := func() {
		_ = db.Close()
		_ = os.Remove(tmpPath)
	}
	return NewEngine(db, zerolog.Nop()), db, cleanup
}

func seedFundamental(t *testing.T, db *database.DB, symbol, date string, roe, pe float64, grade, signal, sector string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT OR REPLACE INTO stock_analysis
			(symbol, analysis_date, analysis_type, roe, pe_ratio, revenue_growth_1yr,
			 investment_grade, technical_signal, sector, current_price, market_cap)
		VALUES (?, ?, 'fundamental', ?, ?, 0.08, ?, ?, ?, 100.0, 5.0e11)
	`, symbol, date, roe, pe, grade, signal, sector)
	require.NoError(t, err)
}

func seedTechnical(t *testing.T, db *database.DB, symbol, date string, rsi float64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT OR REPLACE INTO stock_analysis
			(symbol, analysis_date, analysis_type, rsi_14, price_vs_sma_50)
		VALUES (?, ?, 'technical', ?, 1.02)
	`, symbol, date, rsi)
	require.NoError(t, err)
}

func TestCompare(t *testing.T) {
	engine, db, cleanup := setupTestEngine(t)
	defer cleanup()

	// AAPL has a stale row that must lose to the newer one
	seedFundamental(t, db, "AAPL", "2025-08-01", 0.10, 40.0, "B", "HOLD", "Technology")
	seedFundamental(t, db, "AAPL", "2025-08-28", 0.28, 31.5, "A", "BUY", "Technology")
	seedFundamental(t, db, "MSFT", "2025-08-28", 0.35, 34.0, "A+", "BUY", "Technology")
	seedTechnical(t, db, "AAPL", "2025-08-28", 61.0)
	seedTechnical(t, db, "MSFT", "2025-08-28", 55.5)

	result := engine.Compare([]string{"AAPL", "MSFT", "NVDA"}, nil)
	require.Equal(t, "success", result.Status)
	assert.Equal(t, defaultDimensions, result.Dimensions)

	// 2 fundamental + 2 technical rows; NVDA has nothing stored
	require.Len(t, result.ComparisonMatrix, 4)

	for _, row := range result.ComparisonMatrix {
		if row.Symbol == "AAPL" && row.AnalysisType == "fundamental" {
			require.NotNil(t, row.ROE)
			assert.InDelta(t, 0.28, *row.ROE, 1e-9)
			assert.Equal(t, "2025-08-28", row.AnalysisDate)
		}
	}

	t.Run("rankings are descending and exclude missing values", func(t *testing.T) {
		roe := result.Rankings["roe"]
		require.Len(t, roe, 2)
		assert.Equal(t, "MSFT", roe[0].Symbol)
		assert.Equal(t, "AAPL", roe[1].Symbol)

		rsi := result.Rankings["rsi_14"]
		require.Len(t, rsi, 2)
		assert.Equal(t, "AAPL", rsi[0].Symbol)

		_, ok := result.Rankings["iv_rank"]
		assert.False(t, ok, "no options rows stored")
	})

	t.Run("summary stats", func(t *testing.T) {
		roe := result.Summary["roe"]
		assert.Equal(t, 2, roe.Count)
		assert.InDelta(t, 0.315, roe.Mean, 1e-9)
		assert.Greater(t, roe.StdDev, 0.0)
	})
}

func TestCompare_NarrowedDimensions(t *testing.T) {
	engine, db, cleanup := setupTestEngine(t)
	defer cleanup()

	seedFundamental(t, db, "AAPL", "2025-08-28", 0.28, 31.5, "A", "BUY", "Technology")
	seedTechnical(t, db, "AAPL", "2025-08-28", 61.0)

	result := engine.Compare([]string{"AAPL"}, []string{"technical"})
	require.Equal(t, "success", result.Status)
	require.Len(t, result.ComparisonMatrix, 1)
	assert.Equal(t, "technical", result.ComparisonMatrix[0].AnalysisType)
}

func TestCompare_NoSymbols(t *testing.T) {
	engine, _, cleanup := setupTestEngine(t)
	defer cleanup()

	result := engine.Compare(nil, nil)
	require.Equal(t, "success", result.Status)
	assert.Empty(t, result.ComparisonMatrix)
}

func TestScreen(t *testing.T) {
	engine, db, cleanup := setupTestEngine(t)
	defer cleanup()

	seedFundamental(t, db, "AAPL", "2025-08-28", 0.28, 31.5, "A", "BUY", "Technology")
	seedFundamental(t, db, "MSFT", "2025-08-28", 0.35, 34.0, "A+", "BUY", "Technology")
	seedFundamental(t, db, "F", "2025-08-28", 0.09, 7.2, "C", "HOLD", "Consumer Cyclical")
	// stale high-ROE row that must not resurrect F
	seedFundamental(t, db, "F", "2025-07-01", 0.50, 6.0, "A", "BUY", "Consumer Cyclical")

	t.Run("threshold criteria", func(t *testing.T) {
		result := engine.Screen(map[string]any{"min_roe": 0.20})
		require.Equal(t, "success", result.Status)
		require.Equal(t, 2, result.TotalMatches)
		assert.Equal(t, "MSFT", result.Results[0].Symbol)
		assert.Equal(t, "AAPL", result.Results[1].Symbol)
	})

	t.Run("signal membership", func(t *testing.T) {
		result := engine.Screen(map[string]any{"technical_signals": []any{"HOLD"}})
		require.Equal(t, 1, result.TotalMatches)
		assert.Equal(t, "F", result.Results[0].Symbol)
	})

	t.Run("combined criteria", func(t *testing.T) {
		result := engine.Screen(map[string]any{
			"min_roe": 0.20,
			"max_pe":  32.0,
			"sectors": []any{"Technology"},
		})
		require.Equal(t, 1, result.TotalMatches)
		assert.Equal(t, "AAPL", result.Results[0].Symbol)
	})

	t.Run("empty criteria matches universe", func(t *testing.T) {
		result := engine.Screen(nil)
		require.Equal(t, "success", result.Status)
		assert.Equal(t, 3, result.TotalMatches)
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		result := engine.Screen(map[string]any{
			"min_roe":        0.20,
			"min_unicorns":   9000,
			"max_dragons":    "several",
			"min_market_cap": "not a number",
		})
		require.Equal(t, "success", result.Status)
		assert.Equal(t, 2, result.TotalMatches)
	})
}
