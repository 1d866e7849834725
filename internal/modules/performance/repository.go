// Package performance tracks realized outcomes of past recommendations.
// Rows are written by external collaborators once outcome prices are known;
// nothing in the ingestion path populates this table.
package performance

import (
	"fmt"

	"github.com/aristath/analytics/internal/database"
	"github.com/rs/zerolog"
)

// Accuracy labels for a resolved recommendation.
const (
	AccuracyCorrect   = "CORRECT"
	AccuracyIncorrect = "INCORRECT"
	AccuracyPending   = "PENDING"
)

// Record is one analysis_performance row.
type Record struct {
	ID               int64
	Symbol           string
	AnalysisDate     string // YYYY-MM-DD
	Recommendation   string
	TargetPrice      *float64
	ActualPrice1W    *float64
	ActualPrice1M    *float64
	ActualPrice3M    *float64
	Performance1WPct *float64
	Performance1MPct *float64
	Performance3MPct *float64
	Accuracy         *string
}

// Repository handles analysis_performance persistence.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new performance repository.
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "performance").Logger(),
	}
}

// Insert appends a performance record and returns its identity.
func (r *Repository) Insert(rec *Record) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO analysis_performance (
			symbol, analysis_date, recommendation, target_price,
			actual_price_1w, actual_price_1m, actual_price_3m,
			performance_1w_pct, performance_1m_pct, performance_3m_pct,
			recommendation_accuracy
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Symbol, rec.AnalysisDate, rec.Recommendation, rec.TargetPrice,
		rec.ActualPrice1W, rec.ActualPrice1M, rec.ActualPrice3M,
		rec.Performance1WPct, rec.Performance1MPct, rec.Performance3MPct,
		rec.Accuracy,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert performance record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read performance record id: %w", err)
	}

	return id, nil
}

// ListBySymbol returns all performance records for a symbol, newest first.
func (r *Repository) ListBySymbol(symbol string) ([]Record, error) {
	rows, err := r.db.Query(`
		SELECT id, symbol, analysis_date, recommendation, target_price,
		       actual_price_1w, actual_price_1m, actual_price_3m,
		       performance_1w_pct, performance_1m_pct, performance_3m_pct,
		       recommendation_accuracy
		FROM analysis_performance
		WHERE symbol = ?
		ORDER BY analysis_date DESC
	`, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var analysisDate database.Date
		if err := rows.Scan(
			&rec.ID, &rec.Symbol, &analysisDate, &rec.Recommendation, &rec.TargetPrice,
			&rec.ActualPrice1W, &rec.ActualPrice1M, &rec.ActualPrice3M,
			&rec.Performance1WPct, &rec.Performance1MPct, &rec.Performance3MPct,
			&rec.Accuracy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan performance record: %w", err)
		}
		rec.AnalysisDate = analysisDate.String()
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating performance records: %w", err)
	}

	return records, nil
}
