// Package composite persists cross-dimension composite scores. Scores are
// computed upstream; this module only stores and retrieves them.
package composite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aristath/analytics/internal/database"
	"github.com/rs/zerolog"
)

// Score is one composite_scores row, keyed by (symbol, analysis_date).
type Score struct {
	Symbol       string
	AnalysisDate string // YYYY-MM-DD

	OverallScore     *int
	FundamentalScore *int
	TechnicalScore   *int
	SentimentScore   *int
	VolatilityScore  *int

	TotalRiskScore  *int
	VolatilityRisk  *int
	FundamentalRisk *int
	LiquidityRisk   *int

	PrimaryClassification *string
	RiskProfile           *string
	InvestmentHorizon     *string

	OverallRecommendation *string
	TargetPriceLow        *float64
	TargetPriceHigh       *float64
	StopLossLevel         *float64
}

// Repository handles composite_scores persistence.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new composite score repository.
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "composite_scores").Logger(),
	}
}

// Upsert writes a composite score row, replacing any existing row with the
// same (symbol, analysis_date) key.
func (r *Repository) Upsert(s *Score) error {
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO composite_scores (
			symbol, analysis_date,
			overall_score, fundamental_score, technical_score,
			sentiment_score, volatility_score,
			total_risk_score, volatility_risk, fundamental_risk, liquidity_risk,
			primary_classification, risk_profile, investment_horizon,
			overall_recommendation, target_price_low, target_price_high, stop_loss_level
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.Symbol, s.AnalysisDate,
		s.OverallScore, s.FundamentalScore, s.TechnicalScore,
		s.SentimentScore, s.VolatilityScore,
		s.TotalRiskScore, s.VolatilityRisk, s.FundamentalRisk, s.LiquidityRisk,
		s.PrimaryClassification, s.RiskProfile, s.InvestmentHorizon,
		s.OverallRecommendation, s.TargetPriceLow, s.TargetPriceHigh, s.StopLossLevel,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert composite score: %w", err)
	}

	r.log.Debug().Str("symbol", s.Symbol).Str("date", s.AnalysisDate).Msg("Stored composite score")
	return nil
}

// GetLatest returns the most recent composite score for a symbol, or
// (nil, nil) when none exists.
func (r *Repository) GetLatest(symbol string) (*Score, error) {
	row := r.db.QueryRow(`
		SELECT symbol, analysis_date,
		       overall_score, fundamental_score, technical_score,
		       sentiment_score, volatility_score,
		       total_risk_score, volatility_risk, fundamental_risk, liquidity_risk,
		       primary_classification, risk_profile, investment_horizon,
		       overall_recommendation, target_price_low, target_price_high, stop_loss_level
		FROM composite_scores
		WHERE symbol = ?
		ORDER BY analysis_date DESC
		LIMIT 1
	`, symbol)

	var s Score
	var analysisDate database.Date
	err := row.Scan(
		&s.Symbol, &analysisDate,
		&s.OverallScore, &s.FundamentalScore, &s.TechnicalScore,
		&s.SentimentScore, &s.VolatilityScore,
		&s.TotalRiskScore, &s.VolatilityRisk, &s.FundamentalRisk, &s.LiquidityRisk,
		&s.PrimaryClassification, &s.RiskProfile, &s.InvestmentHorizon,
		&s.OverallRecommendation, &s.TargetPriceLow, &s.TargetPriceHigh, &s.StopLossLevel,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query composite score: %w", err)
	}

	s.AnalysisDate = analysisDate.String()
	return &s, nil
}
