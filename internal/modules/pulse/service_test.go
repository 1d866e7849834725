package pulse

import (
	"os"
	"testing"
	"time"

	"github.com/aristath/analytics/internal/database"
	"github.com/aristath/analytics/internal/marketcal"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*database.DB, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test_pulse_*.db")
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
	return db, cleanup
}

func newTestService(t *testing.T) (*Service, func()) {
	t.Helper()
	db, cleanup := setupTestDB(t)
	svc := NewService(NewRepository(db, zerolog.Nop()), marketcal.NewUSCalendar(), zerolog.Nop())
	return svc, cleanup
}

func pulsePayload() map[string]any {
	return map[string]any{
		"market_pulse": map[string]any{
			"spy_price":       645.2,
			"spy_change":      0.4,
			"vix":             14.8,
			"vix_change":      -0.3,
			"top_sector":      "Technology",
			"treasury_10y":    4.23,
			"advance_decline": 1.6,
			"sentiment":       "BULLISH",
			"summary":         "Broad advance led by megacaps",
			"news": []any{
				map[string]any{"headline": "Fed holds rates", "source": "wire"},
			},
		},
		"market_pulse_score": 72,
	}
}

func TestStore_TradingDay(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	// Friday 2025-08-29 is a regular trading day
	svc.now = func() time.Time {
		return time.Date(2025, time.August, 29, 14, 0, 0, 0, time.UTC)
	}

	result := svc.Store(pulsePayload())

	require.Equal(t, "success", result.Status)
	assert.Equal(t, "2025-08-29", result.AnalysisDate)
	assert.False(t, result.IsHoliday)
	assert.Equal(t, 1, result.CacheTTLHours)
	assert.Equal(t, "1h TTL", result.CacheStrategy)
}

func TestStore_WeekendExtendsToNextOpen(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	// Saturday: window extends to Monday 09:30
	svc.now = func() time.Time {
		return time.Date(2025, time.August, 16, 12, 0, 0, 0, time.UTC)
	}

	result := svc.Store(pulsePayload())

	require.Equal(t, "success", result.Status)
	assert.True(t, result.IsHoliday)
	assert.Equal(t, 45, result.CacheTTLHours)
}

func TestStore_HolidayWeekendExtendsPastHoliday(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	// Saturday before Labor Day: window extends to Tuesday 09:30
	svc.now = func() time.Time {
		return time.Date(2025, time.August, 30, 12, 0, 0, 0, time.UTC)
	}

	result := svc.Store(pulsePayload())

	require.Equal(t, "success", result.Status)
	assert.True(t, result.IsHoliday)
	assert.Equal(t, 69, result.CacheTTLHours)
}

func TestGetCached(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	base := time.Date(2025, time.August, 29, 14, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	t.Run("miss on empty table", func(t *testing.T) {
		assert.Equal(t, "cache_miss", svc.GetCached().Status)
	})

	require.Equal(t, "success", svc.Store(pulsePayload()).Status)

	t.Run("hit within the hour", func(t *testing.T) {
		svc.now = func() time.Time { return base.Add(30 * time.Minute) }

		cached := svc.GetCached()
		require.Equal(t, "cache_hit", cached.Status)
		assert.Equal(t, "2025-08-29", cached.AnalysisDate)
		require.NotNil(t, cached.MarketPulseScore)
		assert.Equal(t, 72, *cached.MarketPulseScore)
		assert.InDelta(t, 0.5, cached.CacheAgeHours, 0.01)

		news, ok := cached.MarketPulse["news"].([]any)
		require.True(t, ok)
		require.Len(t, news, 1)
	})

	t.Run("miss after the window has elapsed", func(t *testing.T) {
		svc.now = func() time.Time { return base.Add(2 * time.Hour) }
		assert.Equal(t, "cache_miss", svc.GetCached().Status)
	})
}

func TestStore_SameDayRerunReplaces(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	base := time.Date(2025, time.August, 29, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	require.Equal(t, "success", svc.Store(pulsePayload()).Status)

	payload := pulsePayload()
	payload["market_pulse_score"] = 55
	svc.now = func() time.Time { return base.Add(30 * time.Minute) }
	require.Equal(t, "success", svc.Store(payload).Status)

	cached := svc.GetCached()
	require.Equal(t, "cache_hit", cached.Status)
	require.NotNil(t, cached.MarketPulseScore)
	assert.Equal(t, 55, *cached.MarketPulseScore)
}
