// Package grading maps categorical analysis inputs (letter investment grades,
// qualitative confidence levels) to numeric scores, recommendations and risk
// tiers. The tables are immutable process-wide configuration, built once and
// injected into consumers so tests can substitute alternates.
package grading

// Recommendation labels produced by the grade table.
const (
	StrongBuy  = "STRONG_BUY"
	Buy        = "BUY"
	WeakBuy    = "WEAK_BUY"
	Hold       = "HOLD"
	WeakHold   = "WEAK_HOLD"
	Sell       = "SELL"
	StrongSell = "STRONG_SELL"
)

// Risk tiers.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// GradeProfile is the numeric profile of a letter investment grade.
type GradeProfile struct {
	Score          int    `json:"score"` // 0-100
	Recommendation string `json:"recommendation"`
	Risk           string `json:"risk"`
}

// Table holds the grade and confidence lookup tables.
type Table struct {
	grades     map[string]GradeProfile
	confidence map[string]int
	fallback   GradeProfile
}

// Default returns the standard grading table covering the twelve letter grades
// A+ down to D-. Unknown grades fall back to {60, HOLD, MEDIUM}; unknown
// confidence levels fall back to 70.
func Default() *Table {
	return &Table{
		grades: map[string]GradeProfile{
			"A+": {Score: 95, Recommendation: StrongBuy, Risk: RiskLow},
			"A":  {Score: 90, Recommendation: StrongBuy, Risk: RiskLow},
			"A-": {Score: 85, Recommendation: Buy, Risk: RiskLow},
			"B+": {Score: 80, Recommendation: Buy, Risk: RiskMedium},
			"B":  {Score: 75, Recommendation: Buy, Risk: RiskMedium},
			"B-": {Score: 70, Recommendation: WeakBuy, Risk: RiskMedium},
			"C+": {Score: 65, Recommendation: Hold, Risk: RiskMedium},
			"C":  {Score: 60, Recommendation: Hold, Risk: RiskMedium},
			"C-": {Score: 55, Recommendation: WeakHold, Risk: RiskHigh},
			"D+": {Score: 45, Recommendation: Sell, Risk: RiskHigh},
			"D":  {Score: 35, Recommendation: StrongSell, Risk: RiskHigh},
			"D-": {Score: 25, Recommendation: StrongSell, Risk: RiskHigh},
		},
		confidence: map[string]int{
			"High":   90,
			"Medium": 70,
			"Low":    50,
		},
		fallback: GradeProfile{Score: 60, Recommendation: Hold, Risk: RiskMedium},
	}
}

// Profile returns the profile for a letter grade. Unknown or empty grades
// return the fallback profile.
func (t *Table) Profile(grade string) GradeProfile {
	if p, ok := t.grades[grade]; ok {
		return p
	}
	return t.fallback
}

// Known reports whether a letter grade is in the table.
func (t *Table) Known(grade string) bool {
	_, ok := t.grades[grade]
	return ok
}

// ConfidenceScore converts a qualitative confidence level to a numeric score.
// Unknown levels return 70.
func (t *Table) ConfidenceScore(level string) int {
	if s, ok := t.confidence[level]; ok {
		return s
	}
	return 70
}
