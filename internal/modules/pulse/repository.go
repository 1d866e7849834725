// Package pulse stores market-wide pulse analysis with holiday-aware caching.
// There is exactly one row per calendar day; a rerun on the same day replaces
// that day's row.
package pulse

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/analytics/internal/database"
	"github.com/rs/zerolog"
)

// Record is one market_pulse_analysis row.
type Record struct {
	AnalysisDate      string // YYYY-MM-DD, primary key
	AnalysisTimestamp string // RFC3339 UTC

	SpyPrice          *float64
	SpyChange         *float64
	VIX               *float64
	VIXChange         *float64
	TopSector         *string
	TopSectorChange   *float64
	WorstSector       *string
	WorstSectorChange *float64
	Treasury10Y       *float64
	Treasury2Y        *float64
	AdvanceDecline    *float64
	Sentiment         *string // 'BULLISH', 'NEUTRAL', 'BEARISH'
	Summary           *string
	NewsJSON          *string // JSON array of news objects
	MarketPulseScore  *int

	CacheExpiry   string // RFC3339 UTC
	IsHoliday     bool
	CacheTTLHours int
}

// Repository handles market_pulse_analysis persistence.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new market pulse repository.
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "market_pulse").Logger(),
	}
}

// Upsert writes a pulse row, replacing any existing row for the same day.
func (r *Repository) Upsert(rec *Record) error {
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO market_pulse_analysis (
			analysis_date, analysis_timestamp,
			spy_price, spy_change, vix, vix_change,
			top_sector, top_sector_change, worst_sector, worst_sector_change,
			treasury_10y, treasury_2y, advance_decline,
			sentiment, summary, news_json,
			market_pulse_score, cache_expiry, is_holiday, cache_ttl_hours
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.AnalysisDate, rec.AnalysisTimestamp,
		rec.SpyPrice, rec.SpyChange, rec.VIX, rec.VIXChange,
		rec.TopSector, rec.TopSectorChange, rec.WorstSector, rec.WorstSectorChange,
		rec.Treasury10Y, rec.Treasury2Y, rec.AdvanceDecline,
		rec.Sentiment, rec.Summary, rec.NewsJSON,
		rec.MarketPulseScore, rec.CacheExpiry, rec.IsHoliday, rec.CacheTTLHours,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert market pulse row: %w", err)
	}

	r.log.Debug().
		Str("date", rec.AnalysisDate).
		Bool("is_holiday", rec.IsHoliday).
		Int("ttl_hours", rec.CacheTTLHours).
		Msg("Stored market pulse analysis")

	return nil
}

// GetCached returns the most recent pulse row still within its validity
// window, or (nil, nil) on a cache miss.
func (r *Repository) GetCached(now time.Time) (*Record, error) {
	row := r.db.QueryRow(`
		SELECT analysis_date, analysis_timestamp,
		       spy_price, spy_change, vix, vix_change,
		       top_sector, top_sector_change, worst_sector, worst_sector_change,
		       treasury_10y, treasury_2y, advance_decline,
		       sentiment, summary, news_json,
		       market_pulse_score, cache_expiry, is_holiday, cache_ttl_hours
		FROM market_pulse_analysis
		WHERE cache_expiry > ?
		ORDER BY analysis_timestamp DESC
		LIMIT 1
	`, now.UTC().Format(time.RFC3339))

	var rec Record
	var analysisDate database.Date
	var analysisTS, cacheExpiry database.Timestamp
	err := row.Scan(
		&analysisDate, &analysisTS,
		&rec.SpyPrice, &rec.SpyChange, &rec.VIX, &rec.VIXChange,
		&rec.TopSector, &rec.TopSectorChange, &rec.WorstSector, &rec.WorstSectorChange,
		&rec.Treasury10Y, &rec.Treasury2Y, &rec.AdvanceDecline,
		&rec.Sentiment, &rec.Summary, &rec.NewsJSON,
		&rec.MarketPulseScore, &cacheExpiry, &rec.IsHoliday, &rec.CacheTTLHours,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cached market pulse: %w", err)
	}

	rec.AnalysisDate = analysisDate.String()
	rec.AnalysisTimestamp = analysisTS.String()
	rec.CacheExpiry = cacheExpiry.String()
	return &rec, nil
}
