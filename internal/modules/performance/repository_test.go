package performance

import (
	"os"
	"testing"

	"github.com/aristath/analytics/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test_performance_*.db")
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
	return NewRepository(db, zerolog.Nop()), cleanup
}

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

func TestInsertAndListBySymbol(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	pending := AccuracyPending
	id1, err := repo.Insert(&Record{
		Symbol:         "AAPL",
		AnalysisDate:   "2025-07-01",
		Recommendation: "BUY",
		TargetPrice:    fptr(250.0),
		Accuracy:       &pending,
	})
	require.NoError(t, err)
	assert.Greater(t, id1, int64(0))

	id2, err := repo.Insert(&Record{
		Symbol:           "AAPL",
		AnalysisDate:     "2025-08-01",
		Recommendation:   "HOLD",
		ActualPrice1M:    fptr(232.4),
		Performance1MPct: fptr(3.1),
		Accuracy:         sptr(AccuracyCorrect),
	})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	records, err := repo.ListBySymbol("AAPL")
	require.NoError(t, err)
	require.Len(t, records, 2)

	// newest first
	assert.Equal(t, "2025-08-01", records[0].AnalysisDate)
	require.NotNil(t, records[0].Accuracy)
	assert.Equal(t, AccuracyCorrect, *records[0].Accuracy)
	assert.Equal(t, "2025-07-01", records[1].AnalysisDate)

	t.Run("repeat rows are appended, not replaced", func(t *testing.T) {
		_, err := repo.Insert(&Record{
			Symbol:         "AAPL",
			AnalysisDate:   "2025-08-01",
			Recommendation: "HOLD",
		})
		require.NoError(t, err)

		records, err := repo.ListBySymbol("AAPL")
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("unknown symbol yields empty list", func(t *testing.T) {
		records, err := repo.ListBySymbol("ZZZZ")
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
