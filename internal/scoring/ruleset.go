// Package scoring evaluates stat records against rulesets to produce
// deterministic, auditable fantasy point totals.
package scoring

// Rule awards points per unit of a named stat. With a Divisor the stat is
// divided first: outs_pitched with points=1, divisor=3 scores one point per
// full inning.
type Rule struct {
	Stat    string   `json:"stat" yaml:"stat"`
	Points  float64  `json:"points" yaml:"points"`
	Divisor *float64 `json:"divisor,omitempty" yaml:"divisor,omitempty"`
}

// Condition ops.
const (
	OpGTE = "gte"
	OpLTE = "lte"
	OpGT  = "gt"
	OpLT  = "lt"
	OpEQ  = "eq"
)

// Condition compares a named stat against a threshold.
type Condition struct {
	Stat  string  `json:"stat" yaml:"stat"`
	Op    string  `json:"op" yaml:"op"`
	Value float64 `json:"value" yaml:"value"`
}

// Bonus combinators.
const (
	CombinatorAnd = "AND"
	CombinatorOr  = "OR"
)

// BonusRule awards flat points when its condition set is satisfied.
type BonusRule struct {
	Name       string      `json:"name" yaml:"name"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
	Combinator string      `json:"combinator" yaml:"combinator"`
	Points     float64     `json:"points" yaml:"points"`
}

// Ruleset is the stable contract between rule authors and the engine.
// Rule order is meaningful: breakdown entries follow declared order, and
// computed totals are persisted, so the document must stay reproducible.
type Ruleset struct {
	ID       string      `json:"id" yaml:"id"`
	Name     string      `json:"name" yaml:"name"`
	Batting  []Rule      `json:"batting" yaml:"batting"`
	Pitching []Rule      `json:"pitching" yaml:"pitching"`
	Bonuses  []BonusRule `json:"bonuses,omitempty" yaml:"bonuses,omitempty"`
}
