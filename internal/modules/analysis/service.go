package analysis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aristath/analytics/internal/extract"
	"github.com/aristath/analytics/internal/grading"
	"github.com/aristath/analytics/internal/marketcal"
	"github.com/rs/zerolog"
)

// Service is the public boundary for storing and reading analysis results.
// Every operation is total: it returns a status-tagged result and never
// propagates an error to the caller. Callers branch on the Status field.
//
// The normalized write and the raw audit write are independent operations by
// contract. One failing does not roll back the other; the composite
// StorageSuccess reports exactly what persisted.
type Service struct {
	normalizer *Normalizer
	repo       *Repository
	agents     *AgentResultRepository
	grades     *grading.Table
	log        zerolog.Logger
	now        func() time.Time
}

// NewService creates a new analysis service.
func NewService(repo *Repository, agents *AgentResultRepository, grades *grading.Table, log zerolog.Logger) *Service {
	return &Service{
		normalizer: NewNormalizer(),
		repo:       repo,
		agents:     agents,
		grades:     grades,
		log:        log.With().Str("service", "analysis").Logger(),
		now:        time.Now,
	}
}

// StorageSuccess reports the outcome of the two independent writes.
type StorageSuccess struct {
	NormalizedStored bool `json:"normalized_stored"`
	RawStored        bool `json:"raw_stored"`
}

// EarningsContext echoes the earnings timing derived during normalization.
type EarningsContext struct {
	LastEarningsDate  *string `json:"last_earnings_date"`
	NextEarningsDate  *string `json:"next_earnings_date"`
	DaysSinceEarnings *int    `json:"days_since_earnings"`
	DaysUntilEarnings *int    `json:"days_until_earnings"`
	CacheStrategy     string  `json:"cache_strategy"`
}

// FundamentalResult is the status-tagged outcome of StoreFundamentalAnalysis.
type FundamentalResult struct {
	Status          string           `json:"status"` // success | partial | error
	Symbol          string           `json:"symbol"`
	Error           string           `json:"error,omitempty"`
	InvestmentGrade string           `json:"investment_grade,omitempty"`
	GradeScore      int              `json:"grade_score,omitempty"`
	Recommendation  string           `json:"recommendation,omitempty"`
	EarningsContext *EarningsContext `json:"earnings_context,omitempty"`
	StorageSuccess  *StorageSuccess  `json:"storage_success,omitempty"`
}

// StoreFundamentalAnalysis normalizes and persists a fundamental producer
// payload: grade mapping, earnings-aware enrichment, normalized row plus raw
// audit row.
func (s *Service) StoreFundamentalAnalysis(symbol string, payload map[string]any) *FundamentalResult {
	grade := "C"
	if g := firstString(payload, "investment_grade", "investment_classification.investment_grade"); g != nil {
		grade = *g
	}
	profile := s.grades.Profile(grade)

	cacheStrategy := "STANDARD"
	if cs := extract.String(payload, "cache_info.strategy"); cs != nil {
		cacheStrategy = *cs
	}

	rec := s.normalizer.Normalize(symbol, payload)
	rec.AnalysisType = "fundamental"
	rec.InvestmentGrade = &grade
	rec.FinancialHealthScore = &profile.Score
	rec.EarningsCacheStrategy = &cacheStrategy

	lastEarnings, _ := extract.Get(payload, "earnings_context.last_earnings_date")
	nextEarnings, _ := extract.Get(payload, "earnings_context.next_earnings_date")
	s.normalizer.EnrichEarnings(rec, lastEarnings, nextEarnings)

	sources := extract.Strings(payload, "data_sources")
	if sources == nil {
		sources = []string{"FMP"}
	}
	rec.DataSources = marshalJSON(sources)

	confidence := 85
	if c := extract.Int(payload, "confidence_score"); c != nil {
		confidence = *c
	}
	rec.ConfidenceScore = &confidence

	if exp := extract.String(payload, "cache_info.cache_expiry"); exp != nil {
		rec.CacheExpiry = exp
	}

	normalizedErr := s.repo.Upsert(rec)
	rawErr := s.agents.Store(symbol, "fundamental", payload, payloadExecutionMS(payload), s.now())

	result := &FundamentalResult{
		Symbol:          symbol,
		InvestmentGrade: grade,
		GradeScore:      profile.Score,
		Recommendation:  profile.Recommendation,
		EarningsContext: &EarningsContext{
			LastEarningsDate:  rec.LastEarningsDate,
			NextEarningsDate:  rec.NextEarningsDate,
			DaysSinceEarnings: rec.DaysSinceEarnings,
			DaysUntilEarnings: rec.DaysUntilEarnings,
			CacheStrategy:     cacheStrategy,
		},
		StorageSuccess: &StorageSuccess{
			NormalizedStored: normalizedErr == nil,
			RawStored:        rawErr == nil,
		},
	}

	switch {
	case normalizedErr == nil && rawErr == nil:
		result.Status = "success"
	case normalizedErr != nil && rawErr != nil:
		result.Status = "error"
		result.Error = normalizedErr.Error()
		s.log.Error().Err(normalizedErr).Str("symbol", symbol).Msg("Failed to store fundamental analysis")
	default:
		result.Status = "partial"
		if normalizedErr != nil {
			s.log.Warn().Err(normalizedErr).Str("symbol", symbol).Msg("Normalized write failed, raw audit stored")
		} else {
			s.log.Warn().Err(rawErr).Str("symbol", symbol).Msg("Raw audit write failed, normalized row stored")
		}
	}

	return result
}

// SentimentResult is the status-tagged outcome of StoreSentimentAnalysis.
type SentimentResult struct {
	Status          string          `json:"status"`
	Symbol          string          `json:"symbol"`
	AnalysisType    string          `json:"analysis_type,omitempty"`
	Error           string          `json:"error,omitempty"`
	CacheStrategy   string          `json:"cache_strategy,omitempty"`
	CacheExpiry     string          `json:"cache_expiry,omitempty"`
	ConfidenceLevel string          `json:"confidence_level,omitempty"`
	SentimentScore  *float64        `json:"sentiment_score,omitempty"`
	StoredAt        string          `json:"stored_at,omitempty"`
	StorageSuccess  *StorageSuccess `json:"storage_success,omitempty"`
}

// StoreSentimentAnalysis persists a sentiment producer payload with a
// confidence-scaled cache validity window (High 12h, Medium 6h, Low 2h).
func (s *Service) StoreSentimentAnalysis(symbol string, payload map[string]any) *SentimentResult {
	now := s.now()

	confidenceLevel := "Medium"
	if cl := extract.String(payload, "confidence_level"); cl != nil {
		confidenceLevel = *cl
	}

	cacheHours := marketcal.SentimentTTL(confidenceLevel)
	cacheExpiry := now.Add(time.Duration(cacheHours) * time.Hour).UTC().Format(time.RFC3339)
	confidenceScore := s.grades.ConfidenceScore(confidenceLevel)

	drivers := extract.Strings(payload, "key_sentiment_drivers")
	if drivers == nil {
		drivers = []string{}
	}
	sources := extract.Strings(payload, "data_sources")
	if sources == nil {
		sources = []string{}
	}

	rec := &Record{
		Symbol:              symbol,
		AnalysisDate:        now.Format("2006-01-02"),
		AnalysisType:        "sentiment",
		SentimentScore:      extract.Float(payload, "sentiment_score"),
		NewsSentiment1W:     extract.Float(payload, "news_sentiment_1w"),
		NewsSentiment1M:     extract.Float(payload, "news_sentiment_1m"),
		SocialSentiment:     extract.Float(payload, "social_sentiment"),
		AnalystSentiment:    extract.Float(payload, "analyst_sentiment"),
		NewsCount1W:         extract.Int(payload, "news_count_1w"),
		NewsCount1M:         extract.Int(payload, "news_count_1m"),
		SentimentTrend:      extract.String(payload, "sentiment_trend"),
		KeySentimentDrivers: marshalJSON(drivers),
		ConfidenceScore:     &confidenceScore,
		DataSources:         marshalJSON(sources),
		CacheExpiry:         &cacheExpiry,
	}

	normalizedErr := s.repo.Upsert(rec)
	rawErr := s.agents.Store(symbol, "sentiment", payload, payloadExecutionMS(payload), now)

	result := &SentimentResult{
		Symbol:          symbol,
		AnalysisType:    "sentiment",
		CacheStrategy:   fmt.Sprintf("%dh TTL", cacheHours),
		CacheExpiry:     cacheExpiry,
		ConfidenceLevel: confidenceLevel,
		SentimentScore:  rec.SentimentScore,
		StoredAt:        now.UTC().Format(time.RFC3339),
		StorageSuccess: &StorageSuccess{
			NormalizedStored: normalizedErr == nil,
			RawStored:        rawErr == nil,
		},
	}

	switch {
	case normalizedErr == nil && rawErr == nil:
		result.Status = "success"
	case normalizedErr != nil && rawErr != nil:
		result.Status = "error"
		result.Error = normalizedErr.Error()
		s.log.Error().Err(normalizedErr).Str("symbol", symbol).Msg("Failed to store sentiment analysis")
	default:
		result.Status = "partial"
	}

	return result
}

// CachedSentimentResult is the status-tagged outcome of GetCachedSentiment.
// A cache miss is a distinct status, not an error: it tells the caller to
// recompute rather than that something broke.
type CachedSentimentResult struct {
	Status              string   `json:"status"` // cache_hit | cache_miss | error
	Symbol              string   `json:"symbol"`
	Error               string   `json:"error,omitempty"`
	SentimentScore      *float64 `json:"sentiment_score,omitempty"`
	NewsSentiment1W     *float64 `json:"news_sentiment_1w,omitempty"`
	NewsSentiment1M     *float64 `json:"news_sentiment_1m,omitempty"`
	SocialSentiment     *float64 `json:"social_sentiment,omitempty"`
	AnalystSentiment    *float64 `json:"analyst_sentiment,omitempty"`
	SentimentTrend      *string  `json:"sentiment_trend,omitempty"`
	KeySentimentDrivers []string `json:"key_sentiment_drivers,omitempty"`
	ConfidenceScore     *int     `json:"confidence_score,omitempty"`
	AnalysisDate        string   `json:"analysis_date,omitempty"`
	CacheExpiry         string   `json:"cache_expiry,omitempty"`
	CacheAgeHours       float64  `json:"cache_age_hours,omitempty"`
}

// GetCachedSentiment returns the latest sentiment row for the symbol whose
// validity window still covers now.
func (s *Service) GetCachedSentiment(symbol string) *CachedSentimentResult {
	now := s.now()

	cs, err := s.repo.GetCachedSentiment(symbol, now)
	if err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to read cached sentiment")
		return &CachedSentimentResult{Status: "error", Symbol: symbol, Error: err.Error()}
	}
	if cs == nil {
		return &CachedSentimentResult{Status: "cache_miss", Symbol: symbol}
	}

	var drivers []string
	if cs.KeySentimentDrivers != nil {
		_ = json.Unmarshal([]byte(*cs.KeySentimentDrivers), &drivers)
	}

	ageHours := 0.0
	if analysisDate, ok := parseDate(cs.AnalysisDate); ok {
		ageHours = now.Sub(analysisDate).Hours()
	}

	return &CachedSentimentResult{
		Status:              "cache_hit",
		Symbol:              symbol,
		SentimentScore:      cs.SentimentScore,
		NewsSentiment1W:     cs.NewsSentiment1W,
		NewsSentiment1M:     cs.NewsSentiment1M,
		SocialSentiment:     cs.SocialSentiment,
		AnalystSentiment:    cs.AnalystSentiment,
		SentimentTrend:      cs.SentimentTrend,
		KeySentimentDrivers: drivers,
		ConfidenceScore:     cs.ConfidenceScore,
		AnalysisDate:        cs.AnalysisDate,
		CacheExpiry:         cs.CacheExpiry,
		CacheAgeHours:       ageHours,
	}
}

// marshalJSON serializes v, returning a pointer to the JSON text.
// Serialization of plain slices cannot fail; errors degrade to nil.
func marshalJSON(v any) *string {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// payloadExecutionMS reads an optional execution_time_ms hint from the payload.
func payloadExecutionMS(payload map[string]any) int {
	if ms := extract.Int(payload, "execution_time_ms"); ms != nil {
		return *ms
	}
	return 0
}
