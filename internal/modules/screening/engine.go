// Package screening compares symbols across analysis dimensions and filters
// the stored universe against threshold criteria. It reads the latest row per
// (symbol, analysis_type) and never mutates anything.
package screening

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aristath/analytics/internal/database"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// Metrics that get per-symbol rankings and distribution summaries. Higher is
// treated as better for ranking purposes; consumers that want ascending order
// (pe_ratio) read the list from the tail.
var rankedMetrics = []string{"roe", "pe_ratio", "rsi_14", "sentiment_score", "iv_rank"}

// defaultDimensions are the analysis types compared when the caller doesn't
// narrow the request.
var defaultDimensions = []string{"fundamental", "technical", "sentiment", "volatility"}

// Engine runs read-only comparison and screening queries.
type Engine struct {
	db  *database.DB
	log zerolog.Logger
}

// NewEngine creates a new screening engine.
func NewEngine(db *database.DB, log zerolog.Logger) *Engine {
	return &Engine{
		db:  db,
		log: log.With().Str("service", "screening").Logger(),
	}
}

// ComparisonRow is one symbol/dimension cell of the comparison matrix.
type ComparisonRow struct {
	Symbol       string `json:"symbol"`
	AnalysisType string `json:"analysis_type"`
	AnalysisDate string `json:"analysis_date"`

	ROE              *float64 `json:"roe,omitempty"`
	PERatio          *float64 `json:"pe_ratio,omitempty"`
	RevenueGrowth1Yr *float64 `json:"revenue_growth_1yr,omitempty"`
	InvestmentGrade  *string  `json:"investment_grade,omitempty"`
	RSI14            *float64 `json:"rsi_14,omitempty"`
	TechnicalSignal  *string  `json:"technical_signal,omitempty"`
	PriceVsSMA50     *float64 `json:"price_vs_sma_50,omitempty"`
	SentimentScore   *float64 `json:"sentiment_score,omitempty"`
	SentimentTrend   *string  `json:"sentiment_trend,omitempty"`
	IVRank           *float64 `json:"iv_rank,omitempty"`
	VolatilityTrend  *string  `json:"volatility_trend,omitempty"`
	CurrentPrice     *float64 `json:"current_price,omitempty"`
	MarketCap        *float64 `json:"market_cap,omitempty"`
}

// RankingEntry pairs a symbol with its metric value, best first.
type RankingEntry struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
}

// MetricSummary describes the distribution of one metric across the
// compared symbols.
type MetricSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
}

// ComparisonResult is the status-tagged outcome of Compare.
type ComparisonResult struct {
	Status           string                    `json:"status"`
	Error            string                    `json:"error,omitempty"`
	Symbols          []string                  `json:"symbols"`
	Dimensions       []string                  `json:"dimensions"`
	ComparisonMatrix []ComparisonRow           `json:"comparison_matrix"`
	Rankings         map[string][]RankingEntry `json:"rankings,omitempty"`
	Summary          map[string]MetricSummary  `json:"summary,omitempty"`
}

// Compare builds a side-by-side matrix for the given symbols across the given
// dimensions, using each symbol's most recent row per dimension. Symbols with
// no stored analysis simply have no rows in the matrix.
func (e *Engine) Compare(symbols []string, dimensions []string) *ComparisonResult {
	if len(dimensions) == 0 {
		dimensions = defaultDimensions
	}
	result := &ComparisonResult{
		Status:     "success",
		Symbols:    symbols,
		Dimensions: dimensions,
	}
	if len(symbols) == 0 {
		result.ComparisonMatrix = []ComparisonRow{}
		return result
	}

	query := fmt.Sprintf(`
		SELECT symbol, analysis_type, analysis_date,
		       roe, pe_ratio, revenue_growth_1yr, investment_grade,
		       rsi_14, technical_signal, price_vs_sma_50,
		       sentiment_score, sentiment_trend,
		       iv_rank, volatility_trend,
		       current_price, market_cap
		FROM stock_analysis sa
		WHERE symbol IN (%s)
		  AND analysis_type IN (%s)
		  AND analysis_date = (
		      SELECT MAX(analysis_date) FROM stock_analysis
		      WHERE symbol = sa.symbol AND analysis_type = sa.analysis_type
		  )
		ORDER BY symbol, analysis_type
	`, placeholders(len(symbols)), placeholders(len(dimensions)))

	args := make([]interface{}, 0, len(symbols)+len(dimensions))
	for _, sym := range symbols {
		args = append(args, sym)
	}
	for _, dim := range dimensions {
		args = append(args, dim)
	}

	rows, err := e.db.Query(query, args...)
	if err != nil {
		e.log.Error().Err(err).Msg("Comparison query failed")
		return &ComparisonResult{Status: "error", Error: err.Error(), Symbols: symbols, Dimensions: dimensions}
	}
	defer rows.Close()

	for rows.Next() {
		var row ComparisonRow
		var analysisDate database.Date
		if err := rows.Scan(
			&row.Symbol, &row.AnalysisType, &analysisDate,
			&row.ROE, &row.PERatio, &row.RevenueGrowth1Yr, &row.InvestmentGrade,
			&row.RSI14, &row.TechnicalSignal, &row.PriceVsSMA50,
			&row.SentimentScore, &row.SentimentTrend,
			&row.IVRank, &row.VolatilityTrend,
			&row.CurrentPrice, &row.MarketCap,
		); err != nil {
			e.log.Error().Err(err).Msg("Failed to scan comparison row")
			return &ComparisonResult{Status: "error", Error: err.Error(), Symbols: symbols, Dimensions: dimensions}
		}
		row.AnalysisDate = analysisDate.String()
		result.ComparisonMatrix = append(result.ComparisonMatrix, row)
	}
	if err := rows.Err(); err != nil {
		return &ComparisonResult{Status: "error", Error: err.Error(), Symbols: symbols, Dimensions: dimensions}
	}

	result.Rankings, result.Summary = rankAndSummarize(result.ComparisonMatrix)
	if result.ComparisonMatrix == nil {
		result.ComparisonMatrix = []ComparisonRow{}
	}
	return result
}

// rankAndSummarize produces descending per-metric rankings and distribution
// stats over the matrix. Null metric values are excluded, and a symbol
// contributes at most one value per metric (its latest row carrying it).
func rankAndSummarize(matrix []ComparisonRow) (map[string][]RankingEntry, map[string]MetricSummary) {
	rankings := make(map[string][]RankingEntry)
	summary := make(map[string]MetricSummary)

	for _, metric := range rankedMetrics {
		seen := make(map[string]bool)
		var entries []RankingEntry
		var values []float64

		for _, row := range matrix {
			v := metricValue(&row, metric)
			if v == nil || seen[row.Symbol] {
				continue
			}
			seen[row.Symbol] = true
			entries = append(entries, RankingEntry{Symbol: row.Symbol, Value: *v})
			values = append(values, *v)
		}
		if len(entries) == 0 {
			continue
		}

		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Value > entries[j].Value
		})
		rankings[metric] = entries

		mean, std := stat.MeanStdDev(values, nil)
		if len(values) < 2 {
			std = 0
		}
		summary[metric] = MetricSummary{Mean: mean, StdDev: std, Count: len(values)}
	}

	return rankings, summary
}

func metricValue(row *ComparisonRow, metric string) *float64 {
	switch metric {
	case "roe":
		return row.ROE
	case "pe_ratio":
		return row.PERatio
	case "rsi_14":
		return row.RSI14
	case "sentiment_score":
		return row.SentimentScore
	case "iv_rank":
		return row.IVRank
	}
	return nil
}

// ScreenRow is one symbol matching a screen.
type ScreenRow struct {
	Symbol          string   `json:"symbol"`
	AnalysisDate    string   `json:"analysis_date"`
	ROE             *float64 `json:"roe,omitempty"`
	PERatio         *float64 `json:"pe_ratio,omitempty"`
	RSI14           *float64 `json:"rsi_14,omitempty"`
	SentimentScore  *float64 `json:"sentiment_score,omitempty"`
	InvestmentGrade *string  `json:"investment_grade,omitempty"`
	TechnicalSignal *string  `json:"technical_signal,omitempty"`
	Sector          *string  `json:"sector,omitempty"`
	CurrentPrice    *float64 `json:"current_price,omitempty"`
	MarketCap       *float64 `json:"market_cap,omitempty"`
}

// ScreenResult is the status-tagged outcome of Screen.
type ScreenResult struct {
	Status       string         `json:"status"`
	Error        string         `json:"error,omitempty"`
	Criteria     map[string]any `json:"criteria"`
	TotalMatches int            `json:"total_matches"`
	Results      []ScreenRow    `json:"results"`
}

// Screen filters each symbol's latest stored analysis against the whitelisted
// criteria. An empty criteria map matches the whole universe. Results come
// back strongest ROE first, capped at 50.
func (e *Engine) Screen(raw map[string]any) *ScreenResult {
	if raw == nil {
		raw = map[string]any{}
	}
	conditions, args := buildPredicates(raw)

	query := fmt.Sprintf(`
		SELECT symbol, analysis_date, roe, pe_ratio, rsi_14, sentiment_score,
		       investment_grade, technical_signal, sector, current_price, market_cap
		FROM stock_analysis sa
		WHERE analysis_date = (
		      SELECT MAX(analysis_date) FROM stock_analysis WHERE symbol = sa.symbol
		  )
		  AND %s
		GROUP BY symbol
		ORDER BY roe DESC
		LIMIT 50
	`, strings.Join(conditions, " AND "))

	rows, err := e.db.Query(query, args...)
	if err != nil {
		e.log.Error().Err(err).Msg("Screening query failed")
		return &ScreenResult{Status: "error", Error: err.Error(), Criteria: raw, Results: []ScreenRow{}}
	}
	defer rows.Close()

	results := []ScreenRow{}
	for rows.Next() {
		var row ScreenRow
		var analysisDate database.Date
		if err := rows.Scan(
			&row.Symbol, &analysisDate, &row.ROE, &row.PERatio, &row.RSI14, &row.SentimentScore,
			&row.InvestmentGrade, &row.TechnicalSignal, &row.Sector, &row.CurrentPrice, &row.MarketCap,
		); err != nil {
			e.log.Error().Err(err).Msg("Failed to scan screen row")
			return &ScreenResult{Status: "error", Error: err.Error(), Criteria: raw, Results: []ScreenRow{}}
		}
		row.AnalysisDate = analysisDate.String()
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return &ScreenResult{Status: "error", Error: err.Error(), Criteria: raw, Results: []ScreenRow{}}
	}

	return &ScreenResult{
		Status:       "success",
		Criteria:     raw,
		TotalMatches: len(results),
		Results:      results,
	}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
