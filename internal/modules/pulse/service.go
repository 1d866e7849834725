package pulse

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aristath/analytics/internal/extract"
	"github.com/aristath/analytics/internal/marketcal"
	"github.com/rs/zerolog"
)

// Service is the public boundary for market pulse storage and cached reads.
// Like the analysis service, every operation returns a status-tagged result.
type Service struct {
	repo *Repository
	cal  *marketcal.Calendar
	log  zerolog.Logger
	now  func() time.Time
}

// NewService creates a new market pulse service.
func NewService(repo *Repository, cal *marketcal.Calendar, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		cal:  cal,
		log:  log.With().Str("service", "market_pulse").Logger(),
		now:  time.Now,
	}
}

// StoreResult is the status-tagged outcome of Store.
type StoreResult struct {
	Status        string `json:"status"`
	AnalysisDate  string `json:"analysis_date,omitempty"`
	Error         string `json:"error,omitempty"`
	CacheStrategy string `json:"cache_strategy,omitempty"`
	CacheExpiry   string `json:"cache_expiry,omitempty"`
	IsHoliday     bool   `json:"is_holiday"`
	CacheTTLHours int    `json:"cache_ttl_hours,omitempty"`
	StoredAt      string `json:"stored_at,omitempty"`
}

// Store persists a market pulse payload with holiday-aware caching: 1 hour on
// trading days, until next trading day's 09:30 open on weekends and holidays.
func (s *Service) Store(payload map[string]any) *StoreResult {
	now := s.now()
	today := now.Format("2006-01-02")

	cacheHours, isHoliday := s.cal.PulseTTL(now)
	cacheExpiry := now.Add(time.Duration(cacheHours) * time.Hour).UTC().Format(time.RFC3339)

	news := extract.GetOr(payload, "market_pulse.news", []any{})
	newsJSON, err := json.Marshal(news)
	if err != nil {
		newsJSON = []byte("[]")
	}
	newsText := string(newsJSON)

	rec := &Record{
		AnalysisDate:      today,
		AnalysisTimestamp: now.UTC().Format(time.RFC3339),
		SpyPrice:          extract.Float(payload, "market_pulse.spy_price"),
		SpyChange:         extract.Float(payload, "market_pulse.spy_change"),
		VIX:               extract.Float(payload, "market_pulse.vix"),
		VIXChange:         extract.Float(payload, "market_pulse.vix_change"),
		TopSector:         extract.String(payload, "market_pulse.top_sector"),
		TopSectorChange:   extract.Float(payload, "market_pulse.top_sector_change"),
		WorstSector:       extract.String(payload, "market_pulse.worst_sector"),
		WorstSectorChange: extract.Float(payload, "market_pulse.worst_sector_change"),
		Treasury10Y:       extract.Float(payload, "market_pulse.treasury_10y"),
		Treasury2Y:        extract.Float(payload, "market_pulse.treasury_2y"),
		AdvanceDecline:    extract.Float(payload, "market_pulse.advance_decline"),
		Sentiment:         extract.String(payload, "market_pulse.sentiment"),
		Summary:           extract.String(payload, "market_pulse.summary"),
		NewsJSON:          &newsText,
		MarketPulseScore:  extract.Int(payload, "market_pulse_score"),
		CacheExpiry:       cacheExpiry,
		IsHoliday:         isHoliday,
		CacheTTLHours:     cacheHours,
	}

	if err := s.repo.Upsert(rec); err != nil {
		s.log.Error().Err(err).Msg("Failed to store market pulse")
		return &StoreResult{Status: "error", Error: err.Error(), AnalysisDate: today}
	}

	return &StoreResult{
		Status:        "success",
		AnalysisDate:  today,
		CacheStrategy: fmt.Sprintf("%dh TTL", cacheHours),
		CacheExpiry:   cacheExpiry,
		IsHoliday:     isHoliday,
		CacheTTLHours: cacheHours,
		StoredAt:      now.UTC().Format(time.RFC3339),
	}
}

// CachedResult is the status-tagged outcome of GetCached.
type CachedResult struct {
	Status           string         `json:"status"` // cache_hit | cache_miss | error
	Error            string         `json:"error,omitempty"`
	AnalysisDate     string         `json:"analysis_date,omitempty"`
	MarketPulse      map[string]any `json:"market_pulse,omitempty"`
	MarketPulseScore *int           `json:"market_pulse_score,omitempty"`
	CacheExpiry      string         `json:"cache_expiry,omitempty"`
	IsHoliday        bool           `json:"is_holiday,omitempty"`
	CacheTTLHours    int            `json:"cache_ttl_hours,omitempty"`
	CacheAgeHours    float64        `json:"cache_age_hours,omitempty"`
}

// GetCached returns the latest market pulse still within its validity window.
func (s *Service) GetCached() *CachedResult {
	now := s.now()

	rec, err := s.repo.GetCached(now)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read cached market pulse")
		return &CachedResult{Status: "error", Error: err.Error()}
	}
	if rec == nil {
		return &CachedResult{Status: "cache_miss"}
	}

	var news []any
	if rec.NewsJSON != nil {
		_ = json.Unmarshal([]byte(*rec.NewsJSON), &news)
	}

	ageHours := 0.0
	if ts, err := time.Parse(time.RFC3339, rec.AnalysisTimestamp); err == nil {
		ageHours = now.Sub(ts).Hours()
	}

	return &CachedResult{
		Status:       "cache_hit",
		AnalysisDate: rec.AnalysisDate,
		MarketPulse: map[string]any{
			"spy_price":           rec.SpyPrice,
			"spy_change":          rec.SpyChange,
			"vix":                 rec.VIX,
			"vix_change":          rec.VIXChange,
			"top_sector":          rec.TopSector,
			"top_sector_change":   rec.TopSectorChange,
			"worst_sector":        rec.WorstSector,
			"worst_sector_change": rec.WorstSectorChange,
			"treasury_10y":        rec.Treasury10Y,
			"treasury_2y":         rec.Treasury2Y,
			"advance_decline":     rec.AdvanceDecline,
			"sentiment":           rec.Sentiment,
			"summary":             rec.Summary,
			"news":                news,
		},
		MarketPulseScore: rec.MarketPulseScore,
		CacheExpiry:      rec.CacheExpiry,
		IsHoliday:        rec.IsHoliday,
		CacheTTLHours:    rec.CacheTTLHours,
		CacheAgeHours:    ageHours,
	}
}
