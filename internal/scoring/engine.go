package scoring

import (
	"fmt"
	"math"

	"github.com/albapepper/diamondstats/internal/model"
)

// BreakdownEntry is one audited contribution to a point total.
type BreakdownEntry struct {
	Stat        string  `json:"stat"`
	Value       float64 `json:"value"`
	Points      float64 `json:"points"`
	Calculation string  `json:"calculation"`
}

// Result is the outcome of scoring one stat record.
type Result struct {
	TotalPoints    float64          `json:"total_points"`
	Breakdown      []BreakdownEntry `json:"breakdown"`
	BonusesApplied []string         `json:"bonuses_applied,omitempty"`
}

// Score evaluates one stat record against a ruleset.
//
// Pure and deterministic: identical (record, ruleset) inputs always produce
// identical totals and identically ordered breakdowns — declared rule order
// first, then bonus order. Null or unknown stats contribute nothing, and a
// zero-valued stat produces no breakdown entry regardless of its weight, so
// the audit trail carries no no-op lines.
func Score(rec model.StatRecord, rs *Ruleset) Result {
	var result Result

	rules := rs.Batting
	if rec.Domain() == model.DomainPitching {
		rules = rs.Pitching
	}

	for _, rule := range rules {
		value, ok := rec.Stat(rule.Stat)
		if !ok || value == 0 {
			continue
		}

		var points float64
		var calc string
		if rule.Divisor != nil && *rule.Divisor != 0 {
			points = round2(value / *rule.Divisor * rule.Points)
			calc = fmt.Sprintf("%s / %s x %s", trim(value), trim(*rule.Divisor), trim(rule.Points))
		} else {
			points = round2(value * rule.Points)
			calc = fmt.Sprintf("%s x %s", trim(value), trim(rule.Points))
		}

		result.Breakdown = append(result.Breakdown, BreakdownEntry{
			Stat:        rule.Stat,
			Value:       value,
			Points:      points,
			Calculation: calc,
		})
		result.TotalPoints += points
	}

	for _, bonus := range rs.Bonuses {
		if !bonusApplies(rec.Domain(), bonus) {
			continue
		}
		if !evaluateBonus(rec, bonus) {
			continue
		}
		result.TotalPoints += bonus.Points
		result.BonusesApplied = append(result.BonusesApplied, bonus.Name)
		result.Breakdown = append(result.Breakdown, BreakdownEntry{
			Stat:        "bonus:" + bonus.Name,
			Value:       1,
			Points:      bonus.Points,
			Calculation: "bonus",
		})
	}

	result.TotalPoints = round2(result.TotalPoints)
	return result
}

// bonusApplies infers the bonus's domain from stat-name membership: the
// bonus is evaluated when any condition references a stat known to the
// record's domain. An ambiguous name like "strikeouts" belongs to both
// tables, so such a bonus fires for both domains; authors who need one side
// only should use a domain-specific stat in at least one condition.
func bonusApplies(d model.Domain, bonus BonusRule) bool {
	for _, cond := range bonus.Conditions {
		if model.KnownStat(d, cond.Stat) {
			return true
		}
	}
	return false
}

// evaluateBonus combines the condition results with the declared combinator.
// Missing stats evaluate as 0.
func evaluateBonus(rec model.StatRecord, bonus BonusRule) bool {
	if len(bonus.Conditions) == 0 {
		return false
	}
	for _, cond := range bonus.Conditions {
		value, _ := rec.Stat(cond.Stat)
		hold := compare(value, cond.Op, cond.Value)
		switch bonus.Combinator {
		case CombinatorOr:
			if hold {
				return true
			}
		default: // AND
			if !hold {
				return false
			}
		}
	}
	return bonus.Combinator != CombinatorOr
}

func compare(value float64, op string, threshold float64) bool {
	switch op {
	case OpGTE:
		return value >= threshold
	case OpLTE:
		return value <= threshold
	case OpGT:
		return value > threshold
	case OpLT:
		return value < threshold
	case OpEQ:
		return value == threshold
	}
	return false
}

// round2 rounds half up at the hundredths place.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// trim renders a float without trailing zeros for calculation strings.
func trim(v float64) string {
	return fmt.Sprintf("%g", v)
}
