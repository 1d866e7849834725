package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateScan(t *testing.T) {
	t.Run("driver time values collapse to the stored key format", func(t *testing.T) {
		var d Date
		require.NoError(t, d.Scan(time.Date(2025, time.August, 29, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, "2025-08-29", d.String())
	})

	t.Run("text passes through", func(t *testing.T) {
		var d Date
		require.NoError(t, d.Scan("2025-08-29"))
		assert.Equal(t, "2025-08-29", d.String())

		require.NoError(t, d.Scan([]byte("2025-06-15")))
		assert.Equal(t, "2025-06-15", d.String())
	})

	t.Run("null becomes empty", func(t *testing.T) {
		var d Date
		require.NoError(t, d.Scan(nil))
		assert.Equal(t, "", d.String())
	})

	t.Run("unsupported source errors", func(t *testing.T) {
		var d Date
		assert.Error(t, d.Scan(42))
	})
}

func TestTimestampScan(t *testing.T) {
	t.Run("driver time values normalize to RFC3339 UTC", func(t *testing.T) {
		loc := time.FixedZone("EST", -5*3600)
		var ts Timestamp
		require.NoError(t, ts.Scan(time.Date(2025, time.August, 29, 9, 30, 0, 0, loc)))
		assert.Equal(t, "2025-08-29T14:30:00Z", ts.String())
	})

	t.Run("text passes through", func(t *testing.T) {
		var ts Timestamp
		require.NoError(t, ts.Scan("2025-08-29T14:30:00Z"))
		assert.Equal(t, "2025-08-29T14:30:00Z", ts.String())
	})

	t.Run("null becomes empty", func(t *testing.T) {
		var ts Timestamp
		require.NoError(t, ts.Scan(nil))
		assert.Equal(t, "", ts.String())
	})
}
