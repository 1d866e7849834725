// Package migration imports rows from the standalone fundamental analyses
// database that predates the unified schema. The legacy table is flat with a
// fixed column order; each row is remapped into a producer-shaped payload and
// pushed through the same normalization path live data takes.
package migration

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aristath/analytics/internal/database"
	"github.com/aristath/analytics/internal/grading"
	"github.com/aristath/analytics/internal/modules/analysis"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

const maxReportedErrors = 10

// Migrator reads a legacy fundamental_analyses database and writes its rows
// into the unified store.
type Migrator struct {
	repo       *analysis.Repository
	normalizer *analysis.Normalizer
	grades     *grading.Table
	log        zerolog.Logger
}

// NewMigrator creates a new legacy database migrator.
func NewMigrator(repo *analysis.Repository, normalizer *analysis.Normalizer, grades *grading.Table, log zerolog.Logger) *Migrator {
	return &Migrator{
		repo:       repo,
		normalizer: normalizer,
		grades:     grades,
		log:        log.With().Str("service", "migration").Logger(),
	}
}

// Result is the status-tagged outcome of Migrate. A missing legacy file is a
// warning, not an error; per-record failures accumulate without aborting the
// run and are reported capped at ten entries.
type Result struct {
	Status           string   `json:"status"` // success | warning | error
	Message          string   `json:"message,omitempty"`
	MigratedRecords  int      `json:"migrated_records"`
	TotalRecords     int      `json:"total_records,omitempty"`
	Errors           []string `json:"errors,omitempty"`
	MigrationSummary string   `json:"migration_summary,omitempty"`
}

// legacyRow mirrors the fundamental_analyses column order. Everything beyond
// the key is nullable in practice, so all metric columns scan into pointers.
// Date and timestamp columns scan through the database types because legacy
// files declare them DATE/TIMESTAMP and the driver would otherwise hand back
// time values.
type legacyRow struct {
	Symbol           *string
	AnalysisDate     database.Date
	LastEarningsDate database.Date
	NextEarningsDate database.Date

	ROE              *float64
	ROA              *float64
	ROIC             *float64
	CurrentRatio     *float64
	DebtToEquity     *float64
	NetMargin        *float64
	OperatingMargin  *float64
	GrossMargin      *float64
	InterestCoverage *float64
	CashPosition     *float64

	RevenueGrowth1Yr     *float64
	RevenueGrowth5YrCAGR *float64
	EarningsGrowth1Yr    *float64
	EPSGrowth5YrCAGR     *float64
	FCFGrowth1Yr         *float64
	BookValueGrowth      *float64

	PERatio       *float64
	PBRatio       *float64
	PSRatio       *float64
	PEGRatio      *float64
	EVEBITDA      *float64
	FCFYield      *float64
	PriceToFCF    *float64
	DividendYield *float64

	MarketCap     *float64
	CurrentPrice  *float64
	PriceChange1M *float64
	PriceChange3M *float64

	StockClassification *string
	InvestmentGrade     *string
	Sector              *string
	Industry            *string
	MarketCapCategory   *string

	FinancialHealthScore *float64
	GrowthScore          *float64
	ValuationScore       *float64
	OverallScore         *float64

	AnalystRecommendation *string
	TargetPriceLow        *float64
	TargetPriceHigh       *float64
	KeyStrengths          *string
	KeyRisks              *string

	CacheExpirationDate database.Timestamp
	DataSource          *string
	CreatedAt           database.Timestamp
}

const legacySelect = `
	SELECT symbol, analysis_date, last_earnings_date, next_earnings_date,
	       roe, roa, roic, current_ratio, debt_to_equity,
	       net_margin, operating_margin, gross_margin,
	       interest_coverage, cash_position,
	       revenue_growth_1yr, revenue_growth_5yr_cagr,
	       earnings_growth_1yr, eps_growth_5yr_cagr,
	       fcf_growth_1yr, book_value_growth,
	       pe_ratio, pb_ratio, ps_ratio, peg_ratio,
	       ev_ebitda, fcf_yield, price_to_fcf, dividend_yield,
	       market_cap, current_price,
	       price_change_1m, price_change_3m,
	       stock_classification, investment_grade,
	       sector, industry, market_cap_category,
	       financial_health_score, growth_score,
	       valuation_score, overall_score,
	       analyst_recommendation, target_price_low, target_price_high,
	       key_strengths, key_risks,
	       cache_expiration_date, data_source, created_at
	FROM fundamental_analyses
	ORDER BY symbol, analysis_date DESC
`

// Migrate imports every row of the legacy database at legacyPath. Legacy
// stored health scores are discarded; the score is recomputed from the stored
// investment grade under the current grading table so migrated and live rows
// agree.
func (m *Migrator) Migrate(legacyPath string) *Result {
	if _, err := os.Stat(legacyPath); os.IsNotExist(err) {
		m.log.Warn().Str("path", legacyPath).Msg("Legacy database not found, nothing to migrate")
		return &Result{
			Status:  "warning",
			Message: fmt.Sprintf("Legacy database %s not found", legacyPath),
		}
	}

	legacy, err := sql.Open("sqlite", legacyPath)
	if err != nil {
		return &Result{Status: "error", Message: fmt.Sprintf("Migration failed: %v", err)}
	}
	defer legacy.Close()

	rows, err := legacy.Query(legacySelect)
	if err != nil {
		return &Result{Status: "error", Message: fmt.Sprintf("Migration failed: %v", err)}
	}
	defer rows.Close()

	migrated := 0
	total := 0
	var errs []string

	for rows.Next() {
		total++

		var row legacyRow
		if err := rows.Scan(
			&row.Symbol, &row.AnalysisDate, &row.LastEarningsDate, &row.NextEarningsDate,
			&row.ROE, &row.ROA, &row.ROIC, &row.CurrentRatio, &row.DebtToEquity,
			&row.NetMargin, &row.OperatingMargin, &row.GrossMargin,
			&row.InterestCoverage, &row.CashPosition,
			&row.RevenueGrowth1Yr, &row.RevenueGrowth5YrCAGR,
			&row.EarningsGrowth1Yr, &row.EPSGrowth5YrCAGR,
			&row.FCFGrowth1Yr, &row.BookValueGrowth,
			&row.PERatio, &row.PBRatio, &row.PSRatio, &row.PEGRatio,
			&row.EVEBITDA, &row.FCFYield, &row.PriceToFCF, &row.DividendYield,
			&row.MarketCap, &row.CurrentPrice,
			&row.PriceChange1M, &row.PriceChange3M,
			&row.StockClassification, &row.InvestmentGrade,
			&row.Sector, &row.Industry, &row.MarketCapCategory,
			&row.FinancialHealthScore, &row.GrowthScore,
			&row.ValuationScore, &row.OverallScore,
			&row.AnalystRecommendation, &row.TargetPriceLow, &row.TargetPriceHigh,
			&row.KeyStrengths, &row.KeyRisks,
			&row.CacheExpirationDate, &row.DataSource, &row.CreatedAt,
		); err != nil {
			errs = append(errs, fmt.Sprintf("Error reading legacy record %d: %v", total, err))
			continue
		}

		if err := m.migrateRow(&row); err != nil {
			symbol := "?"
			if row.Symbol != nil {
				symbol = *row.Symbol
			}
			errs = append(errs, fmt.Sprintf("Error migrating record for %s: %v", symbol, err))
			continue
		}
		migrated++
	}
	if err := rows.Err(); err != nil {
		return &Result{Status: "error", Message: fmt.Sprintf("Migration failed: %v", err), MigratedRecords: migrated}
	}

	status := "success"
	if migrated == 0 && len(errs) > 0 {
		status = "error"
	}
	if len(errs) > maxReportedErrors {
		errs = errs[:maxReportedErrors]
	}

	m.log.Info().Int("migrated", migrated).Int("total", total).Msg("Legacy migration finished")
	return &Result{
		Status:           status,
		MigratedRecords:  migrated,
		TotalRecords:     total,
		Errors:           errs,
		MigrationSummary: fmt.Sprintf("Migrated %d/%d records", migrated, total),
	}
}

// migrateRow remaps one legacy row into the flat payload shape the normalizer
// accepts and writes it through the normal path.
func (m *Migrator) migrateRow(row *legacyRow) error {
	if row.Symbol == nil || *row.Symbol == "" {
		return fmt.Errorf("record has no symbol")
	}
	if row.AnalysisDate.String() == "" {
		return fmt.Errorf("record has no analysis date")
	}
	symbol := *row.Symbol

	payload := map[string]any{
		"analysis_type": "fundamental",
	}
	putFloat(payload, "roe", row.ROE)
	putFloat(payload, "roa", row.ROA)
	putFloat(payload, "roic", row.ROIC)
	putFloat(payload, "current_ratio", row.CurrentRatio)
	putFloat(payload, "debt_to_equity", row.DebtToEquity)
	putFloat(payload, "net_margin", row.NetMargin)
	putFloat(payload, "operating_margin", row.OperatingMargin)
	putFloat(payload, "gross_margin", row.GrossMargin)
	putFloat(payload, "interest_coverage", row.InterestCoverage)
	putFloat(payload, "cash_position", row.CashPosition)
	putFloat(payload, "revenue_growth_1yr", row.RevenueGrowth1Yr)
	putFloat(payload, "revenue_growth_5yr_cagr", row.RevenueGrowth5YrCAGR)
	putFloat(payload, "earnings_growth_1yr", row.EarningsGrowth1Yr)
	putFloat(payload, "eps_growth_5yr_cagr", row.EPSGrowth5YrCAGR)
	putFloat(payload, "fcf_growth_1yr", row.FCFGrowth1Yr)
	putFloat(payload, "book_value_growth", row.BookValueGrowth)
	putFloat(payload, "pe_ratio", row.PERatio)
	putFloat(payload, "pb_ratio", row.PBRatio)
	putFloat(payload, "ps_ratio", row.PSRatio)
	putFloat(payload, "peg_ratio", row.PEGRatio)
	putFloat(payload, "ev_ebitda", row.EVEBITDA)
	putFloat(payload, "fcf_yield", row.FCFYield)
	putFloat(payload, "price_to_fcf", row.PriceToFCF)
	putFloat(payload, "dividend_yield", row.DividendYield)
	putFloat(payload, "market_cap", row.MarketCap)
	putFloat(payload, "current_price", row.CurrentPrice)
	putString(payload, "stock_classification", row.StockClassification)
	putString(payload, "sector", row.Sector)
	putString(payload, "industry", row.Industry)
	if d := row.LastEarningsDate.String(); d != "" {
		payload["last_earnings_date"] = d
	}
	if d := row.NextEarningsDate.String(); d != "" {
		payload["next_earnings_date"] = d
	}

	grade := "C"
	if row.InvestmentGrade != nil && *row.InvestmentGrade != "" {
		grade = *row.InvestmentGrade
	}
	payload["investment_grade"] = grade

	rec := m.normalizer.Normalize(symbol, payload)
	rec.AnalysisDate = row.AnalysisDate.String()

	// Legacy score columns are intentionally dropped; recompute from the
	// grade so migrated rows match live grading.
	profile := m.grades.Profile(grade)
	rec.FinancialHealthScore = &profile.Score

	strategy := "MIGRATED_LEGACY"
	rec.EarningsCacheStrategy = &strategy

	confidence := 80
	rec.ConfidenceScore = &confidence

	source := "FMP_LEGACY"
	if row.DataSource != nil && *row.DataSource != "" {
		source = *row.DataSource
	}
	if sources, err := json.Marshal([]string{source}); err == nil {
		s := string(sources)
		rec.DataSources = &s
	}

	if raw := row.CacheExpirationDate.String(); raw != "" {
		if exp, ok := normalizeExpiry(raw); ok {
			rec.CacheExpiry = &exp
		}
	}

	return m.repo.Upsert(rec)
}

// normalizeExpiry coerces a legacy expiration value into the RFC3339 UTC form
// cached reads compare against. Legacy rows stored either bare dates or full
// timestamps.
func normalizeExpiry(raw string) (string, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().Format(time.RFC3339), true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC().Format(time.RFC3339), true
	}
	if t, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
		return t.UTC().Format(time.RFC3339), true
	}
	return "", false
}

func putFloat(payload map[string]any, key string, v *float64) {
	if v != nil {
		payload[key] = *v
	}
}

func putString(payload map[string]any, key string, v *string) {
	if v != nil && *v != "" {
		payload[key] = *v
	}
}
