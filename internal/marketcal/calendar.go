// Package marketcal models the US trading calendar and the cache-validity
// policies that depend on it.
//
// Two policies exist:
//   - confidence-scaled TTL for sentiment records (12h/6h/2h)
//   - calendar-aware TTL for market-wide pulse records: 1 hour on trading
//     days, and on weekends/holidays the window extends to 09:30 market open
//     on the next trading day
package marketcal

import "time"

// MarketOpenHour and MarketOpenMinute define the local market open instant
// used when extending cache windows across non-trading days.
const (
	MarketOpenHour   = 9
	MarketOpenMinute = 30
)

type ymd struct {
	year  int
	month time.Month
	day   int
}

// Calendar answers trading-day questions against a fixed holiday table.
// The zero value is not usable; construct with NewUSCalendar.
type Calendar struct {
	holidays map[ymd]bool
}

// NewUSCalendar returns a calendar loaded with the US market holidays for
// 2024 through 2026. Extend the table when the covered range runs out.
func NewUSCalendar() *Calendar {
	days := []ymd{
		// 2024
		{2024, time.January, 1},   // New Year's Day
		{2024, time.January, 15},  // MLK Day
		{2024, time.February, 19}, // Presidents' Day
		{2024, time.March, 29},    // Good Friday
		{2024, time.May, 27},      // Memorial Day
		{2024, time.June, 19},     // Juneteenth
		{2024, time.July, 4},      // Independence Day
		{2024, time.September, 2}, // Labor Day
		{2024, time.November, 28}, // Thanksgiving
		{2024, time.December, 25}, // Christmas

		// 2025
		{2025, time.January, 1},   // New Year's Day
		{2025, time.January, 20},  // MLK Day
		{2025, time.February, 17}, // Presidents' Day
		{2025, time.April, 18},    // Good Friday
		{2025, time.May, 26},      // Memorial Day
		{2025, time.June, 19},     // Juneteenth
		{2025, time.July, 4},      // Independence Day
		{2025, time.September, 1}, // Labor Day
		{2025, time.November, 27}, // Thanksgiving
		{2025, time.December, 25}, // Christmas

		// 2026
		{2026, time.January, 1},   // New Year's Day
		{2026, time.January, 19},  // MLK Day
		{2026, time.February, 16}, // Presidents' Day
		{2026, time.April, 3},     // Good Friday
		{2026, time.May, 25},      // Memorial Day
		{2026, time.June, 19},     // Juneteenth
		{2026, time.July, 3},      // Independence Day (observed)
		{2026, time.September, 7}, // Labor Day
		{2026, time.November, 26}, // Thanksgiving
		{2026, time.December, 25}, // Christmas
	}

	holidays := make(map[ymd]bool, len(days))
	for _, d := range days {
		holidays[d] = true
	}
	return &Calendar{holidays: holidays}
}

// IsMarketHoliday reports whether the date is a weekend day or a listed
// market holiday (i.e. not a trading day).
func (c *Calendar) IsMarketHoliday(date time.Time) bool {
	wd := date.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return true
	}
	return c.holidays[ymd{date.Year(), date.Month(), date.Day()}]
}

// NextTradingDay advances one day at a time until a trading day is found.
func (c *Calendar) NextTradingDay(date time.Time) time.Time {
	next := date.AddDate(0, 0, 1)
	for c.IsMarketHoliday(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// SentimentTTL returns the cache validity in hours for a sentiment record,
// scaled by producer confidence. Unknown levels get the Medium window.
func SentimentTTL(confidenceLevel string) int {
	switch confidenceLevel {
	case "High":
		return 12
	case "Medium":
		return 6
	case "Low":
		return 2
	}
	return 6
}

// PulseTTL computes the cache validity window for a market pulse record.
// On a trading day the window is exactly 1 hour. On a weekend or holiday the
// record stays valid until 09:30 local time on the next trading day.
// Returns the hours valid and whether a holiday period applied.
func (c *Calendar) PulseTTL(now time.Time) (int, bool) {
	if !c.IsMarketHoliday(now) {
		return 1, false
	}

	next := c.NextTradingDay(now)
	open := time.Date(next.Year(), next.Month(), next.Day(),
		MarketOpenHour, MarketOpenMinute, 0, 0, now.Location())
	hours := int(open.Sub(now).Hours())
	return hours, true
}
