package analysis

import (
	"time"

	"github.com/aristath/analytics/internal/extract"
)

// Normalizer flattens loosely-structured producer payloads into a Record.
// It is a pure transformer: no retained state, no side effects.
//
// Producers drift: the primary fundamental producer nests metrics under
// financial_health/valuation_metrics/company_profile, while enrichment and
// migration paths hand over already-flat payloads. Each field therefore
// resolves against a candidate list of dotted paths, nested shape first, flat
// key last; the first hit wins and a full miss leaves the field nil.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a normalizer. The clock is injectable for tests.
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

func firstFloat(payload map[string]any, paths ...string) *float64 {
	for _, p := range paths {
		if v := extract.Float(payload, p); v != nil {
			return v
		}
	}
	return nil
}

func firstString(payload map[string]any, paths ...string) *string {
	for _, p := range paths {
		if v := extract.String(payload, p); v != nil {
			return v
		}
	}
	return nil
}

// Normalize maps a raw nested analysis payload into a flat Record for the
// given symbol, dated today. Unresolvable paths degrade to nil, never error.
func (n *Normalizer) Normalize(symbol string, payload map[string]any) *Record {
	rec := &Record{
		Symbol:       symbol,
		AnalysisDate: n.now().Format("2006-01-02"),
		AnalysisType: "multi_dimensional",
	}
	if at := extract.String(payload, "analysis_type"); at != nil {
		rec.AnalysisType = *at
	}

	// Classification
	rec.InvestmentGrade = firstString(payload,
		"investment_classification.investment_grade", "investment_grade")
	rec.StockClassification = firstString(payload,
		"investment_classification.primary_category", "stock_classification")

	// Profitability
	rec.ROE = firstFloat(payload, "financial_health.profitability.roe_2024", "roe")
	rec.ROA = firstFloat(payload, "financial_health.profitability.roa_2024", "roa")
	rec.ROIC = firstFloat(payload, "financial_health.profitability.roic_2024", "roic")
	rec.NetMargin = firstFloat(payload, "financial_health.profitability.net_margin_2024", "net_margin")
	rec.OperatingMargin = firstFloat(payload, "financial_health.profitability.operating_margin_2024", "operating_margin")
	rec.GrossMargin = firstFloat(payload, "financial_health.profitability.gross_margin_2024", "gross_margin")

	// Liquidity
	rec.CurrentRatio = firstFloat(payload, "financial_health.liquidity.current_ratio_2024", "current_ratio")
	rec.QuickRatio = firstFloat(payload, "financial_health.liquidity.quick_ratio_2024", "quick_ratio")
	rec.CashPosition = firstFloat(payload, "financial_health.liquidity.cash_and_equivalents", "cash_position")

	// Leverage
	rec.DebtToEquity = firstFloat(payload, "financial_health.leverage.debt_to_equity_2024", "debt_to_equity")
	rec.InterestCoverage = firstFloat(payload, "financial_health.leverage.interest_coverage", "interest_coverage")
	rec.TotalDebt = firstFloat(payload, "total_debt")
	rec.NetDebt = firstFloat(payload, "net_debt")
	rec.DebtServiceCapability = firstFloat(payload, "debt_service_capability")

	// Efficiency
	rec.AssetTurnover = firstFloat(payload, "financial_health.efficiency.asset_turnover", "asset_turnover")
	rec.InventoryTurnover = firstFloat(payload, "financial_health.efficiency.inventory_turnover", "inventory_turnover")
	rec.ReceivablesTurnover = firstFloat(payload, "financial_health.efficiency.receivables_turnover", "receivables_turnover")
	rec.CashConversionCycle = firstFloat(payload, "cash_conversion_cycle")

	// Growth
	rec.RevenueGrowth1Yr = firstFloat(payload, "growth_analysis.revenue_growth.cagr_5yr", "revenue_growth_1yr")
	rec.RevenueGrowth3YrCAGR = firstFloat(payload, "revenue_growth_3yr_cagr")
	rec.RevenueGrowth5YrCAGR = firstFloat(payload, "revenue_growth_5yr_cagr")
	rec.EarningsGrowth1Yr = firstFloat(payload, "earnings_growth_1yr")
	rec.EPSGrowth5YrCAGR = firstFloat(payload, "eps_growth_5yr_cagr")
	rec.FCFGrowth1Yr = firstFloat(payload, "fcf_growth_1yr")
	rec.BookValueGrowth = firstFloat(payload, "book_value_growth")
	rec.TangibleBookValueGrowth = firstFloat(payload, "tangible_book_value_growth")

	// Valuation
	rec.PERatio = firstFloat(payload, "valuation_metrics.pe_ratio", "pe_ratio")
	rec.PBRatio = firstFloat(payload, "valuation_metrics.pb_ratio", "pb_ratio")
	rec.PSRatio = firstFloat(payload, "valuation_metrics.ps_ratio", "ps_ratio")
	rec.PEGRatio = firstFloat(payload, "valuation_metrics.peg_ratio", "peg_ratio")
	rec.PEGRatioForward = firstFloat(payload, "peg_ratio_forward")
	rec.EVEBITDA = firstFloat(payload, "valuation.ev_ebitda", "ev_ebitda")
	rec.EVRevenue = firstFloat(payload, "ev_revenue")
	rec.PriceToFCF = firstFloat(payload, "valuation.pfcf_ratio", "price_to_fcf")
	rec.FCFYield = firstFloat(payload, "fcf_yield")
	rec.DividendYield = firstFloat(payload, "dividend_yield")

	// Market context
	rec.MarketCap = firstFloat(payload, "company_profile.market_cap", "market_cap")
	rec.CurrentPrice = firstFloat(payload, "current_price.price", "current_price")
	rec.Beta = firstFloat(payload, "beta")
	rec.Sector = firstString(payload, "company_profile.sector", "sector")
	rec.Industry = firstString(payload, "company_profile.industry", "industry")

	// Earnings context carried by the payload itself
	rec.LastEarningsDate = firstString(payload, "last_earnings_date")
	rec.NextEarningsDate = firstString(payload,
		"earnings_cache_strategy.next_earnings_date", "next_earnings_date")
	rec.EarningsCacheStrategy = firstString(payload, "earnings_cache_strategy.strategy")

	return rec
}

// EnrichEarnings computes signed day deltas between today and the last/next
// earnings dates. Dates are accepted as time.Time or ISO YYYY-MM-DD strings;
// anything else (or absence) leaves the derived field nil. Only the
// fundamental enrichment path calls this; other dimensions carry no earnings
// context.
func (n *Normalizer) EnrichEarnings(rec *Record, lastEarnings, nextEarnings any) {
	today := n.now()

	if d, ok := parseDate(lastEarnings); ok {
		iso := d.Format("2006-01-02")
		rec.LastEarningsDate = &iso
		days := daysBetween(d, today)
		rec.DaysSinceEarnings = &days
	}

	if d, ok := parseDate(nextEarnings); ok {
		iso := d.Format("2006-01-02")
		rec.NextEarningsDate = &iso
		days := daysBetween(today, d)
		rec.DaysUntilEarnings = &days
	}
}

// parseDate accepts time.Time or an ISO date string.
func parseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case *time.Time:
		if d != nil {
			return *d, true
		}
	case string:
		if t, err := time.Parse("2006-01-02", d); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t, true
		}
	case *string:
		if d != nil {
			return parseDate(*d)
		}
	}
	return time.Time{}, false
}

// daysBetween returns the signed whole-day difference to - from, comparing
// calendar dates rather than instants.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
