// Package scoring computes the priority score and quick-win flag for an intake request.
package scoring

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Categorical levels accepted by the scored fields.
const (
	Low    = "Low"
	Medium = "Medium"
	High   = "High"
)

var ordinals = map[string]int64{
	Low:    1,
	Medium: 2,
	High:   3,
}

var (
	weightRevenue    = decimal.RequireFromString("0.35")
	weightAudit      = decimal.RequireFromString("0.30")
	weightTimeline   = decimal.RequireFromString("0.20")
	weightComplexity = decimal.RequireFromString("0.10")
	weightEffort     = decimal.RequireFromString("0.05")

	quickWinThreshold = decimal.RequireFromString("2.2")
	four              = decimal.NewFromInt(4)
)

// Inputs holds the five categorical fields that drive scoring.
type Inputs struct {
	RevenueImpact         string
	AuditRisk             string
	Complexity            string
	CrossFunctionalEffort string
	TimelinePressure      string
}

// Result is the derived pair stored alongside a record.
type Result struct {
	PriorityScore float64
	QuickWin      bool
}

// Ordinal maps Low/Medium/High to 1/2/3. Anything else maps to 0.
func Ordinal(level string) int {
	return int(ordinals[level])
}

func ordinal(level string) decimal.Decimal {
	return decimal.NewFromInt(ordinals[level])
}

// Score returns the weighted priority score rounded half away from zero to
// two decimal places. The weighted sum is exact, so the result never depends
// on binary floating point.
func Score(revenueImpact, auditRisk, complexity, crossFunctionalEffort, timelinePressure string) float64 {
	return score(revenueImpact, auditRisk, complexity, crossFunctionalEffort, timelinePressure).InexactFloat64()
}

func score(revenueImpact, auditRisk, complexity, crossFunctionalEffort, timelinePressure string) decimal.Decimal {
	sum := ordinal(revenueImpact).Mul(weightRevenue).
		Add(ordinal(auditRisk).Mul(weightAudit)).
		Add(ordinal(timelinePressure).Mul(weightTimeline)).
		Add(four.Sub(ordinal(complexity)).Mul(weightComplexity)).
		Add(four.Sub(ordinal(crossFunctionalEffort)).Mul(weightEffort))
	return sum.Round(2)
}

// IsQuickWin reports whether a request qualifies for fast-tracking: score at
// least 2.2, complexity and effort at most Medium, timeline at least Medium.
func IsQuickWin(priorityScore float64, complexity, crossFunctionalEffort, timelinePressure string) bool {
	return isQuickWin(decimal.NewFromFloat(priorityScore).Round(2), complexity, crossFunctionalEffort, timelinePressure)
}

func isQuickWin(priorityScore decimal.Decimal, complexity, crossFunctionalEffort, timelinePressure string) bool {
	return priorityScore.GreaterThanOrEqual(quickWinThreshold) &&
		Ordinal(complexity) <= 2 &&
		Ordinal(crossFunctionalEffort) <= 2 &&
		Ordinal(timelinePressure) >= 2
}

// Evaluate derives both the score and the quick-win flag from the inputs.
func Evaluate(in Inputs) Result {
	s := score(in.RevenueImpact, in.AuditRisk, in.Complexity, in.CrossFunctionalEffort, in.TimelinePressure)
	return Result{
		PriorityScore: s.InexactFloat64(),
		QuickWin:      isQuickWin(s, in.Complexity, in.CrossFunctionalEffort, in.TimelinePressure),
	}
}

// Format renders a score with the fewest digits that round-trip, e.g. "3" or "2.15".
func Format(priorityScore float64) string {
	return strconv.FormatFloat(priorityScore, 'f', -1, 64)
}
