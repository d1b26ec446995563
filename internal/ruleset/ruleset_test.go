package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/diamondstats/internal/ruleset"
	"github.com/albapepper/diamondstats/internal/scoring"
)

func writeRuleset(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ruleset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeRuleset(t, `
id: standard
name: Standard Scoring
batting:
  - stat: home_runs
    points: 4
  - stat: strikeouts
    points: -0.5
pitching:
  - stat: outs_pitched
    points: 1
    divisor: 3
bonuses:
  - name: Complete Game
    combinator: AND
    points: 3
    conditions:
      - stat: complete_game
        op: eq
        value: 1
`)

	rs, err := ruleset.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "standard", rs.ID)
	assert.Equal(t, "Standard Scoring", rs.Name)
	require.Len(t, rs.Batting, 2)
	assert.Equal(t, scoring.Rule{Stat: "home_runs", Points: 4}, rs.Batting[0])
	assert.Equal(t, -0.5, rs.Batting[1].Points)

	require.Len(t, rs.Pitching, 1)
	require.NotNil(t, rs.Pitching[0].Divisor)
	assert.Equal(t, 3.0, *rs.Pitching[0].Divisor)

	require.Len(t, rs.Bonuses, 1)
	bonus := rs.Bonuses[0]
	assert.Equal(t, "Complete Game", bonus.Name)
	assert.Equal(t, scoring.CombinatorAnd, bonus.Combinator)
	require.Len(t, bonus.Conditions, 1)
	assert.Equal(t, scoring.Condition{Stat: "complete_game", Op: scoring.OpEQ, Value: 1}, bonus.Conditions[0])
}

func TestLoadFileBadYAML(t *testing.T) {
	path := writeRuleset(t, "id: [unterminated")
	_, err := ruleset.LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := ruleset.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *scoring.Ruleset {
		return &scoring.Ruleset{
			ID:   "std",
			Name: "Standard",
			Bonuses: []scoring.BonusRule{{
				Name: "Shutout", Combinator: scoring.CombinatorAnd, Points: 5,
				Conditions: []scoring.Condition{{Stat: "shutout", Op: scoring.OpGTE, Value: 1}},
			}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*scoring.Ruleset)
		wantErr string
	}{
		{"valid", func(rs *scoring.Ruleset) {}, ""},
		{"empty combinator defaults to AND", func(rs *scoring.Ruleset) {
			rs.Bonuses[0].Combinator = ""
		}, ""},
		{"missing id", func(rs *scoring.Ruleset) { rs.ID = "" }, "missing id"},
		{"missing name", func(rs *scoring.Ruleset) { rs.Name = "" }, "missing name"},
		{"unnamed bonus", func(rs *scoring.Ruleset) { rs.Bonuses[0].Name = "" }, "missing name"},
		{"conditionless bonus", func(rs *scoring.Ruleset) {
			rs.Bonuses[0].Conditions = nil
		}, "no conditions"},
		{"bad combinator", func(rs *scoring.Ruleset) {
			rs.Bonuses[0].Combinator = "XOR"
		}, "unknown combinator"},
		{"bad op", func(rs *scoring.Ruleset) {
			rs.Bonuses[0].Conditions[0].Op = "between"
		}, "unknown op"},
		// Unknown stat names are allowed on purpose; they score as absent.
		{"unknown stat name", func(rs *scoring.Ruleset) {
			rs.Bonuses[0].Conditions[0].Stat = "exit_velocity"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := base()
			tt.mutate(rs)
			err := ruleset.Validate(rs)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
