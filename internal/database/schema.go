package database

import (
	"database/sql"
	"fmt"
)

// Schema DDL for the unified analytics database. All statements are idempotent
// (IF NOT EXISTS) so InitSchema can run on every startup and in tests.
//
// Five record families:
//   - stock_analysis:        one wide row per (symbol, analysis_date, analysis_type);
//     only the columns of the row's dimension are populated, the rest stay NULL
//   - composite_scores:      cross-dimension scores per (symbol, analysis_date)
//   - agent_results:         append-only raw payload audit log
//   - analysis_performance:  realized outcomes of past recommendations
//   - market_pulse_analysis: one market-wide row per day, holiday-aware expiry
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS stock_analysis (
		symbol TEXT,
		analysis_date DATE,
		analysis_type TEXT, -- 'fundamental', 'technical', 'sentiment', 'volatility', 'options'

		-- Fundamental metrics
		roe REAL, roa REAL, roic REAL,
		net_margin REAL, operating_margin REAL, gross_margin REAL,
		debt_to_equity REAL, current_ratio REAL, interest_coverage REAL,
		revenue_growth_1yr REAL, revenue_growth_5yr_cagr REAL,
		earnings_growth_1yr REAL, eps_growth_5yr_cagr REAL,
		pe_ratio REAL, pb_ratio REAL, ps_ratio REAL, peg_ratio REAL,
		fcf_yield REAL, dividend_yield REAL,
		investment_grade TEXT, stock_classification TEXT,
		financial_health_score INTEGER,

		-- Enhanced fundamental metrics (earnings-aware)
		last_earnings_date DATE,
		next_earnings_date DATE,
		days_since_earnings INTEGER,
		days_until_earnings INTEGER,
		earnings_cache_strategy TEXT,

		-- Financial efficiency metrics
		asset_turnover REAL,
		inventory_turnover REAL,
		receivables_turnover REAL,
		cash_conversion_cycle REAL,
		quick_ratio REAL,

		-- Enhanced growth metrics
		tangible_book_value_growth REAL,
		fcf_growth_1yr REAL,
		book_value_growth REAL,
		revenue_growth_3yr_cagr REAL,

		-- Enhanced valuation metrics
		ev_ebitda REAL,
		price_to_fcf REAL,
		ev_revenue REAL,
		peg_ratio_forward REAL,

		-- Cash & balance sheet strength
		cash_position REAL,
		total_debt REAL,
		net_debt REAL,
		debt_service_capability REAL,

		-- Technical metrics
		rsi_14 REAL, macd_signal REAL, macd_histogram REAL,
		price_vs_sma_20 REAL, price_vs_sma_50 REAL, price_vs_sma_200 REAL,
		bollinger_position REAL,
		volume_trend_20d REAL, price_momentum_1m REAL, price_momentum_3m REAL,
		support_level REAL, resistance_level REAL,
		technical_score INTEGER,
		technical_signal TEXT, -- 'STRONG_BUY', 'BUY', 'HOLD', 'SELL', 'STRONG_SELL'

		-- Sentiment metrics
		sentiment_score REAL,
		news_sentiment_1w REAL, news_sentiment_1m REAL,
		social_sentiment REAL, analyst_sentiment REAL,
		news_count_1w INTEGER, news_count_1m INTEGER,
		sentiment_trend TEXT, -- 'IMPROVING', 'STABLE', 'DETERIORATING'
		key_sentiment_drivers TEXT, -- JSON array of sentiment factors

		-- Volatility metrics
		realized_volatility_30d REAL, implied_volatility REAL,
		iv_rank REAL, iv_percentile REAL,
		vix_level REAL,
		volatility_trend TEXT, -- 'RISING', 'STABLE', 'FALLING'
		vol_trading_signal TEXT, -- 'BUY_VOL', 'SELL_VOL', 'NEUTRAL'

		-- Options metrics
		options_volume_avg REAL, put_call_ratio REAL,
		unusual_options_activity BOOLEAN,
		gamma_exposure REAL, dealer_positioning TEXT,
		options_flow_sentiment TEXT, -- 'BULLISH', 'BEARISH', 'NEUTRAL'

		-- Market context
		market_cap REAL, current_price REAL, beta REAL,
		sector TEXT, industry TEXT,
		spy_correlation_60d REAL, sector_relative_strength REAL,

		-- Analysis metadata
		data_sources TEXT, -- JSON array of data sources used
		confidence_score INTEGER, -- 1-100 confidence in analysis
		next_catalyst_date DATE,
		cache_expiry TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

		PRIMARY KEY (symbol, analysis_date, analysis_type)
	)`,

	`CREATE TABLE IF NOT EXISTS composite_scores (
		symbol TEXT,
		analysis_date DATE,

		overall_score INTEGER,
		fundamental_score INTEGER,
		technical_score INTEGER,
		sentiment_score INTEGER,
		volatility_score INTEGER,

		total_risk_score INTEGER, -- 1-100, lower is better
		volatility_risk INTEGER,
		fundamental_risk INTEGER,
		liquidity_risk INTEGER,

		primary_classification TEXT, -- 'GROWTH', 'VALUE', 'DIVIDEND', etc.
		risk_profile TEXT, -- 'LOW', 'MEDIUM', 'HIGH'
		investment_horizon TEXT, -- 'SHORT', 'MEDIUM', 'LONG'

		overall_recommendation TEXT, -- 'STRONG_BUY', 'BUY', etc.
		target_price_low REAL,
		target_price_high REAL,
		stop_loss_level REAL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

		PRIMARY KEY (symbol, analysis_date)
	)`,

	`CREATE TABLE IF NOT EXISTS agent_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		symbol TEXT NOT NULL,
		agent_type TEXT NOT NULL, -- 'fundamental', 'sentiment', etc.
		analysis_date DATE NOT NULL,
		raw_result JSON NOT NULL, -- Full agent output
		execution_time_ms INTEGER,
		data_freshness TEXT, -- 'FRESH', 'CACHED', 'STALE'
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (symbol, agent_type, analysis_date)
	)`,

	`CREATE TABLE IF NOT EXISTS analysis_performance (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		analysis_date DATE NOT NULL,
		recommendation TEXT NOT NULL,
		target_price REAL,
		actual_price_1w REAL,
		actual_price_1m REAL,
		actual_price_3m REAL,
		performance_1w_pct REAL,
		performance_1m_pct REAL,
		performance_3m_pct REAL,
		recommendation_accuracy TEXT, -- 'CORRECT', 'INCORRECT', 'PENDING'
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS market_pulse_analysis (
		analysis_date DATE PRIMARY KEY,
		analysis_timestamp TIMESTAMP NOT NULL,

		spy_price REAL,
		spy_change REAL,
		vix REAL,
		vix_change REAL,

		top_sector TEXT,
		top_sector_change REAL,
		worst_sector TEXT,
		worst_sector_change REAL,

		treasury_10y REAL,
		treasury_2y REAL,

		advance_decline REAL,

		sentiment TEXT, -- 'BULLISH', 'NEUTRAL', 'BEARISH'
		summary TEXT,

		news_json TEXT, -- JSON array of news objects

		market_pulse_score INTEGER, -- 0-100

		cache_expiry TIMESTAMP NOT NULL,
		is_holiday BOOLEAN DEFAULT 0,
		cache_ttl_hours INTEGER,

		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	// Main analysis table indexes
	`CREATE INDEX IF NOT EXISTS idx_stock_symbol_date ON stock_analysis(symbol, analysis_date)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_type ON stock_analysis(analysis_type)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_sector ON stock_analysis(sector)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_grade ON stock_analysis(investment_grade)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_scores ON stock_analysis(financial_health_score, technical_score)`,

	// Composite scores indexes
	`CREATE INDEX IF NOT EXISTS idx_composite_overall ON composite_scores(overall_score DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_composite_recommendation ON composite_scores(overall_recommendation)`,
	`CREATE INDEX IF NOT EXISTS idx_composite_risk ON composite_scores(risk_profile, total_risk_score)`,

	// Agent results indexes
	`CREATE INDEX IF NOT EXISTS idx_agent_symbol ON agent_results(symbol, agent_type)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_date ON agent_results(analysis_date)`,

	// Performance tracking indexes
	`CREATE INDEX IF NOT EXISTS idx_performance_symbol ON analysis_performance(symbol)`,
	`CREATE INDEX IF NOT EXISTS idx_performance_accuracy ON analysis_performance(recommendation_accuracy)`,

	// Market pulse indexes
	`CREATE INDEX IF NOT EXISTS idx_market_pulse_timestamp ON market_pulse_analysis(analysis_timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_market_pulse_expiry ON market_pulse_analysis(cache_expiry)`,
}

// InitSchema creates all tables and indexes if they don't already exist.
// Safe to call multiple times.
func (db *DB) InitSchema() error {
	return WithTransaction(db.conn, func(tx *sql.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("failed to execute schema statement: %w", err)
			}
		}
		return nil
	})
}
