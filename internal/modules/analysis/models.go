// Package analysis provides normalization and persistence for per-symbol
// analysis results across all dimensions (fundamental, technical, sentiment,
// volatility, options).
package analysis

// Record is one wide row in stock_analysis, keyed by
// (symbol, analysis_date, analysis_type). Only the columns relevant to the
// row's analysis type are populated; all other dimensions stay nil. Pointer
// fields map directly to nullable columns.
type Record struct {
	Symbol       string
	AnalysisDate string // YYYY-MM-DD
	AnalysisType string

	// Fundamental metrics
	ROE                  *float64
	ROA                  *float64
	ROIC                 *float64
	NetMargin            *float64
	OperatingMargin      *float64
	GrossMargin          *float64
	DebtToEquity         *float64
	CurrentRatio         *float64
	InterestCoverage     *float64
	RevenueGrowth1Yr     *float64
	RevenueGrowth5YrCAGR *float64
	EarningsGrowth1Yr    *float64
	EPSGrowth5YrCAGR     *float64
	PERatio              *float64
	PBRatio              *float64
	PSRatio              *float64
	PEGRatio             *float64
	FCFYield             *float64
	DividendYield        *float64
	InvestmentGrade      *string
	StockClassification  *string
	FinancialHealthScore *int

	// Enhanced fundamental metrics (earnings-aware)
	LastEarningsDate      *string // YYYY-MM-DD
	NextEarningsDate      *string // YYYY-MM-DD
	DaysSinceEarnings     *int
	DaysUntilEarnings     *int
	EarningsCacheStrategy *string

	// Financial efficiency metrics
	AssetTurnover       *float64
	InventoryTurnover   *float64
	ReceivablesTurnover *float64
	CashConversionCycle *float64
	QuickRatio          *float64

	// Enhanced growth metrics
	TangibleBookValueGrowth *float64
	FCFGrowth1Yr            *float64
	BookValueGrowth         *float64
	RevenueGrowth3YrCAGR    *float64

	// Enhanced valuation metrics
	EVEBITDA        *float64
	PriceToFCF      *float64
	EVRevenue       *float64
	PEGRatioForward *float64

	// Cash & balance sheet strength
	CashPosition          *float64
	TotalDebt             *float64
	NetDebt               *float64
	DebtServiceCapability *float64

	// Technical metrics
	RSI14             *float64
	MACDSignal        *float64
	MACDHistogram     *float64
	PriceVsSMA20      *float64
	PriceVsSMA50      *float64
	PriceVsSMA200     *float64
	BollingerPosition *float64
	VolumeTrend20D    *float64
	PriceMomentum1M   *float64
	PriceMomentum3M   *float64
	SupportLevel      *float64
	ResistanceLevel   *float64
	TechnicalScore    *int
	TechnicalSignal   *string

	// Sentiment metrics
	SentimentScore      *float64
	NewsSentiment1W     *float64
	NewsSentiment1M     *float64
	SocialSentiment     *float64
	AnalystSentiment    *float64
	NewsCount1W         *int
	NewsCount1M         *int
	SentimentTrend      *string
	KeySentimentDrivers *string // JSON array

	// Volatility metrics
	RealizedVolatility30D *float64
	ImpliedVolatility     *float64
	IVRank                *float64
	IVPercentile          *float64
	VIXLevel              *float64
	VolatilityTrend       *string
	VolTradingSignal      *string

	// Options metrics
	OptionsVolumeAvg       *float64
	PutCallRatio           *float64
	UnusualOptionsActivity *bool
	GammaExposure          *float64
	DealerPositioning      *string
	OptionsFlowSentiment   *string

	// Market context
	MarketCap              *float64
	CurrentPrice           *float64
	Beta                   *float64
	Sector                 *string
	Industry               *string
	SPYCorrelation60D      *float64
	SectorRelativeStrength *float64

	// Analysis metadata
	DataSources      *string // JSON array
	ConfidenceScore  *int
	NextCatalystDate *string
	CacheExpiry      *string // RFC3339 UTC
}

// recordColumns lists every stock_analysis column written by Upsert, in the
// same order as recordArgs. Replace-on-conflict means the full column set must
// always be written; omitted columns would silently null out on refresh.
const recordColumns = `symbol, analysis_date, analysis_type,
	roe, roa, roic, net_margin, operating_margin, gross_margin,
	debt_to_equity, current_ratio, interest_coverage,
	revenue_growth_1yr, revenue_growth_5yr_cagr,
	earnings_growth_1yr, eps_growth_5yr_cagr,
	pe_ratio, pb_ratio, ps_ratio, peg_ratio,
	fcf_yield, dividend_yield, investment_grade, stock_classification,
	financial_health_score,
	last_earnings_date, next_earnings_date, days_since_earnings,
	days_until_earnings, earnings_cache_strategy,
	asset_turnover, inventory_turnover, receivables_turnover,
	cash_conversion_cycle, quick_ratio,
	tangible_book_value_growth, fcf_growth_1yr, book_value_growth,
	revenue_growth_3yr_cagr,
	ev_ebitda, price_to_fcf, ev_revenue, peg_ratio_forward,
	cash_position, total_debt, net_debt, debt_service_capability,
	rsi_14, macd_signal, macd_histogram,
	price_vs_sma_20, price_vs_sma_50, price_vs_sma_200,
	bollinger_position, volume_trend_20d, price_momentum_1m, price_momentum_3m,
	support_level, resistance_level, technical_score, technical_signal,
	sentiment_score, news_sentiment_1w, news_sentiment_1m,
	social_sentiment, analyst_sentiment, news_count_1w, news_count_1m,
	sentiment_trend, key_sentiment_drivers,
	realized_volatility_30d, implied_volatility, iv_rank, iv_percentile,
	vix_level, volatility_trend, vol_trading_signal,
	options_volume_avg, put_call_ratio, unusual_options_activity,
	gamma_exposure, dealer_positioning, options_flow_sentiment,
	market_cap, current_price, beta, sector, industry,
	spy_correlation_60d, sector_relative_strength,
	data_sources, confidence_score, next_catalyst_date, cache_expiry`

// recordArgs returns the values for recordColumns, in order.
func recordArgs(r *Record) []interface{} {
	return []interface{}{
		r.Symbol, r.AnalysisDate, r.AnalysisType,
		r.ROE, r.ROA, r.ROIC, r.NetMargin, r.OperatingMargin, r.GrossMargin,
		r.DebtToEquity, r.CurrentRatio, r.InterestCoverage,
		r.RevenueGrowth1Yr, r.RevenueGrowth5YrCAGR,
		r.EarningsGrowth1Yr, r.EPSGrowth5YrCAGR,
		r.PERatio, r.PBRatio, r.PSRatio, r.PEGRatio,
		r.FCFYield, r.DividendYield, r.InvestmentGrade, r.StockClassification,
		r.FinancialHealthScore,
		r.LastEarningsDate, r.NextEarningsDate, r.DaysSinceEarnings,
		r.DaysUntilEarnings, r.EarningsCacheStrategy,
		r.AssetTurnover, r.InventoryTurnover, r.ReceivablesTurnover,
		r.CashConversionCycle, r.QuickRatio,
		r.TangibleBookValueGrowth, r.FCFGrowth1Yr, r.BookValueGrowth,
		r.RevenueGrowth3YrCAGR,
		r.EVEBITDA, r.PriceToFCF, r.EVRevenue, r.PEGRatioForward,
		r.CashPosition, r.TotalDebt, r.NetDebt, r.DebtServiceCapability,
		r.RSI14, r.MACDSignal, r.MACDHistogram,
		r.PriceVsSMA20, r.PriceVsSMA50, r.PriceVsSMA200,
		r.BollingerPosition, r.VolumeTrend20D, r.PriceMomentum1M, r.PriceMomentum3M,
		r.SupportLevel, r.ResistanceLevel, r.TechnicalScore, r.TechnicalSignal,
		r.SentimentScore, r.NewsSentiment1W, r.NewsSentiment1M,
		r.SocialSentiment, r.AnalystSentiment, r.NewsCount1W, r.NewsCount1M,
		r.SentimentTrend, r.KeySentimentDrivers,
		r.RealizedVolatility30D, r.ImpliedVolatility, r.IVRank, r.IVPercentile,
		r.VIXLevel, r.VolatilityTrend, r.VolTradingSignal,
		r.OptionsVolumeAvg, r.PutCallRatio, r.UnusualOptionsActivity,
		r.GammaExposure, r.DealerPositioning, r.OptionsFlowSentiment,
		r.MarketCap, r.CurrentPrice, r.Beta, r.Sector, r.Industry,
		r.SPYCorrelation60D, r.SectorRelativeStrength,
		r.DataSources, r.ConfidenceScore, r.NextCatalystDate, r.CacheExpiry,
	}
}
