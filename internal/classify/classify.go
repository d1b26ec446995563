// Package classify splits unified per-appearance source rows into
// domain-specific batting and pitching rows.
//
// The unified file carries both B_* and P_* columns on every row. A row is
// routed to a domain when that domain's game indicator (B_G / P_G) is a
// positive number; a malformed or missing indicator means "no activity",
// never an error. A two-way player's row yields both projections; a pure
// fielding appearance yields neither.
package classify

import (
	"strconv"
	"strings"

	"github.com/albapepper/diamondstats/internal/source"
)

// SchemaVersion names the column vocabulary the projection tables target.
const SchemaVersion = "retrosplits-v1"

// Identity and context columns copied into every projected row.
var identityColumns = []string{
	"game.key", "game.date", "game.number", "game.site", "game.type",
	"box.flag", "pbp.flag",
	"team.key", "opp.key", "team.align",
	"person.key", "seq", "slot",
}

// battingColumns are the B_* stat columns present in the unified schema.
var battingColumns = []string{
	"B_G", "B_PA", "B_AB", "B_R", "B_H", "B_2B", "B_3B", "B_HR",
	"B_RBI", "B_BB", "B_IBB", "B_SO", "B_HP", "B_SH", "B_SF",
	"B_SB", "B_CS", "B_GDP",
}

// battingAbsent are legacy per-domain columns the unified file never carries
// (team win/loss/tie is not recorded per appearance). Projected as empty
// string so downstream conversion yields null.
var battingAbsent = []string{"B_G_W", "B_G_L", "B_G_T"}

var pitchingColumns = []string{
	"P_G", "P_GS", "P_CG", "P_SHO", "P_GF", "P_W", "P_L", "P_SV",
	"P_OUT", "P_TBF", "P_R", "P_ER", "P_H", "P_HR", "P_BB", "P_IBB",
	"P_SO", "P_WP", "P_HP", "P_BK",
}

var pitchingAbsent = []string{"P_G_W", "P_G_L", "P_G_T"}

// Split classifies one unified row. Either return value may be nil when the
// row shows no activity in that domain. Pure function; never errors.
func Split(row source.RawRow) (batting, pitching source.RawRow) {
	if activity(row.Get("B_G")) {
		batting = project(row, battingColumns, battingAbsent)
	}
	if activity(row.Get("P_G")) {
		pitching = project(row, pitchingColumns, pitchingAbsent)
	}
	return batting, pitching
}

// activity reports whether the value parses to a positive number.
func activity(v string) bool {
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return false
	}
	return n > 0
}

func project(row source.RawRow, statCols, absentCols []string) source.RawRow {
	out := make(source.RawRow, len(identityColumns)+len(statCols)+len(absentCols))
	for _, col := range identityColumns {
		out[col] = row.Get(col)
	}
	for _, col := range statCols {
		out[col] = row.Get(col)
	}
	for _, col := range absentCols {
		out[col] = ""
	}
	return out
}
