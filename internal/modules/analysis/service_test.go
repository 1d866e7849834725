package analysis

import (
	"testing"
	"time"

	"github.com/aristath/analytics/internal/grading"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, func()) {
	t.Helper()

	db, cleanup := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())
	agents := NewAgentResultRepository(db, zerolog.Nop())
	svc := NewService(repo, agents, grading.Default(), zerolog.Nop())
	return svc, cleanup
}

func TestStoreFundamentalAnalysis(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	svc.now = fixedClock(2025, time.August, 29)
	svc.normalizer.now = svc.now

	payload := map[string]any{
		"investment_grade": "A",
		"roe":              0.31,
		"pe_ratio":         24.0,
		"sector":           "Technology",
		"earnings_context": map[string]any{
			"last_earnings_date": "2025-07-31",
			"next_earnings_date": "2025-10-30",
		},
		"cache_info": map[string]any{
			"strategy":     "EARNINGS_AWARE",
			"cache_expiry": "2025-10-30T00:00:00Z",
		},
		"data_sources":     []any{"FMP", "news"},
		"confidence_score": 92,
	}

	result := svc.StoreFundamentalAnalysis("AAPL", payload)

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "A", result.InvestmentGrade)
	assert.Equal(t, 90, result.GradeScore)
	assert.Equal(t, grading.StrongBuy, result.Recommendation)
	require.NotNil(t, result.StorageSuccess)
	assert.True(t, result.StorageSuccess.NormalizedStored)
	assert.True(t, result.StorageSuccess.RawStored)

	require.NotNil(t, result.EarningsContext)
	require.NotNil(t, result.EarningsContext.DaysSinceEarnings)
	assert.Equal(t, 29, *result.EarningsContext.DaysSinceEarnings)
	require.NotNil(t, result.EarningsContext.DaysUntilEarnings)
	assert.Equal(t, 62, *result.EarningsContext.DaysUntilEarnings)
	assert.Equal(t, "EARNINGS_AWARE", result.EarningsContext.CacheStrategy)
}

func TestStoreFundamentalAnalysis_UnknownGradeFallsBack(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	result := svc.StoreFundamentalAnalysis("XYZ", map[string]any{
		"investment_grade": "Z-",
	})

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, 60, result.GradeScore)
	assert.Equal(t, grading.Hold, result.Recommendation)
}

func TestStoreFundamentalAnalysis_MissingGradeDefaultsToC(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	result := svc.StoreFundamentalAnalysis("XYZ", map[string]any{"roe": 0.1})

	assert.Equal(t, "C", result.InvestmentGrade)
	assert.Equal(t, 60, result.GradeScore)
}

func TestStoreSentimentAnalysisAndReadBack(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	base := time.Date(2025, time.August, 29, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	payload := map[string]any{
		"sentiment_score":       0.65,
		"confidence_level":      "High",
		"news_sentiment_1w":     0.7,
		"news_sentiment_1m":     0.5,
		"sentiment_trend":       "IMPROVING",
		"key_sentiment_drivers": []any{"product launch", "analyst upgrades"},
		"data_sources":          []any{"news_api"},
	}

	stored := svc.StoreSentimentAnalysis("META", payload)
	require.Equal(t, "success", stored.Status)
	assert.Equal(t, "12h TTL", stored.CacheStrategy)
	assert.Equal(t, "High", stored.ConfidenceLevel)

	t.Run("cache hit before expiry with all fields", func(t *testing.T) {
		svc.now = func() time.Time { return base.Add(11 * time.Hour) }

		cached := svc.GetCachedSentiment("META")
		require.Equal(t, "cache_hit", cached.Status)
		require.NotNil(t, cached.SentimentScore)
		assert.InDelta(t, 0.65, *cached.SentimentScore, 1e-9)
		require.NotNil(t, cached.SentimentTrend)
		assert.Equal(t, "IMPROVING", *cached.SentimentTrend)
		assert.Equal(t, []string{"product launch", "analyst upgrades"}, cached.KeySentimentDrivers)
		require.NotNil(t, cached.ConfidenceScore)
		assert.Equal(t, 90, *cached.ConfidenceScore)

		// The date must come back in the same form it was written, and the
		// age counts from that day's midnight to the read clock.
		assert.Equal(t, "2025-08-29", cached.AnalysisDate)
		assert.InDelta(t, 20.0, cached.CacheAgeHours, 1e-9)
	})

	t.Run("cache miss after expiry", func(t *testing.T) {
		svc.now = func() time.Time { return base.Add(13 * time.Hour) }

		cached := svc.GetCachedSentiment("META")
		assert.Equal(t, "cache_miss", cached.Status)
	})

	t.Run("cache miss for unknown symbol", func(t *testing.T) {
		cached := svc.GetCachedSentiment("NOPE")
		assert.Equal(t, "cache_miss", cached.Status)
	})
}

func TestStoreSentimentAnalysis_UnknownConfidenceUsesMediumWindow(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	result := svc.StoreSentimentAnalysis("META", map[string]any{
		"sentiment_score":  0.2,
		"confidence_level": "Bizarre",
	})

	require.Equal(t, "success", result.Status)
	assert.Equal(t, "6h TTL", result.CacheStrategy)
}

func TestAgentResultAudit(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	svc.now = fixedClock(2025, time.August, 29)

	payload := map[string]any{"investment_grade": "B", "data_freshness": "FRESH"}

	svc.StoreFundamentalAnalysis("AAPL", payload)
	// Rerun on the same day supersedes the audit row rather than duplicating it
	svc.StoreFundamentalAnalysis("AAPL", payload)

	n, err := svc.agents.Count("AAPL", "fundamental")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A different day accumulates history
	svc.now = fixedClock(2025, time.August, 30)
	svc.StoreFundamentalAnalysis("AAPL", payload)

	n, err = svc.agents.Count("AAPL", "fundamental")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
