package analysis

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/analytics/internal/database"
	"github.com/rs/zerolog"
)

// Repository handles stock_analysis persistence.
// All writes are INSERT OR REPLACE on the (symbol, analysis_date,
// analysis_type) composite key: a repeated write fully replaces the prior row,
// no merging. Callers must populate every field they want retained.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new analysis repository.
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "analysis").Logger(),
	}
}

// placeholders returns "?, ?, ..., ?" with n markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Upsert writes a normalized analysis row, replacing any existing row with the
// same composite key.
func (r *Repository) Upsert(rec *Record) error {
	args := recordArgs(rec)
	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO stock_analysis (%s) VALUES (%s)",
		recordColumns, placeholders(len(args)),
	)

	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to upsert analysis row: %w", err)
	}

	r.log.Debug().
		Str("symbol", rec.Symbol).
		Str("type", rec.AnalysisType).
		Str("date", rec.AnalysisDate).
		Msg("Stored normalized analysis")

	return nil
}

// CachedSentiment is the sentiment slice of a still-valid analysis row.
type CachedSentiment struct {
	SentimentScore      *float64
	NewsSentiment1W     *float64
	NewsSentiment1M     *float64
	SocialSentiment     *float64
	AnalystSentiment    *float64
	SentimentTrend      *string
	KeySentimentDrivers *string // JSON array
	ConfidenceScore     *int
	AnalysisDate        string
	CacheExpiry         string
}

// GetCachedSentiment returns the most recent sentiment row for the symbol
// whose cache validity window still covers now. Returns (nil, nil) when no
// valid row exists — a cache miss is not an error.
func (r *Repository) GetCachedSentiment(symbol string, now time.Time) (*CachedSentiment, error) {
	row := r.db.QueryRow(`
		SELECT sentiment_score, news_sentiment_1w, news_sentiment_1m,
		       social_sentiment, analyst_sentiment, sentiment_trend,
		       key_sentiment_drivers, confidence_score, analysis_date,
		       cache_expiry
		FROM stock_analysis
		WHERE symbol = ? AND analysis_type = 'sentiment'
		AND cache_expiry > ?
		ORDER BY analysis_date DESC
		LIMIT 1
	`, symbol, now.UTC().Format(time.RFC3339))

	var cs CachedSentiment
	var analysisDate database.Date
	var cacheExpiry database.Timestamp
	err := row.Scan(
		&cs.SentimentScore, &cs.NewsSentiment1W, &cs.NewsSentiment1M,
		&cs.SocialSentiment, &cs.AnalystSentiment, &cs.SentimentTrend,
		&cs.KeySentimentDrivers, &cs.ConfidenceScore, &analysisDate,
		&cacheExpiry,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cached sentiment: %w", err)
	}

	cs.AnalysisDate = analysisDate.String()
	cs.CacheExpiry = cacheExpiry.String()
	return &cs, nil
}

// LatestDate returns the most recent analysis_date stored for a symbol across
// all dimensions, or "" when the symbol has no rows.
func (r *Repository) LatestDate(symbol string) (string, error) {
	var date database.Date
	err := r.db.QueryRow(`
		SELECT MAX(analysis_date) FROM stock_analysis WHERE symbol = ?
	`, symbol).Scan(&date)
	if err != nil {
		return "", fmt.Errorf("failed to query latest analysis date: %w", err)
	}
	return date.String(), nil
}
