package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/diamondstats/internal/model"
)

func TestBattingStatResolution(t *testing.T) {
	pa := 5
	won := true
	b := &model.BattingGameStat{
		GameID: "g", PlayerID: "p",
		Hits: 2, HomeRuns: 1, PlateAppearances: &pa, TeamWon: &won,
	}

	v, ok := b.Stat("hits")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	v, ok = b.Stat("plate_appearances")
	require.True(t, ok)
	assert.Equal(t, 5.0, v)

	// Booleans coerce to 1/0.
	v, ok = b.Stat("team_won")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	// Null stats resolve as not-ok, unlike a genuine zero.
	_, ok = b.Stat("intentional_walks")
	assert.False(t, ok)
	v, ok = b.Stat("strikeouts")
	require.True(t, ok)
	assert.Zero(t, v)

	_, ok = b.Stat("outs_pitched")
	assert.False(t, ok, "pitching names must not resolve on a batting line")
}

func TestPitchingStatResolution(t *testing.T) {
	lost := false
	p := &model.PitchingGameStat{
		GameID: "g", PlayerID: "p",
		OutsPitched: 19, Strikeouts: 6, TeamLost: &lost,
	}

	v, ok := p.Stat("outs_pitched")
	require.True(t, ok)
	assert.Equal(t, 19.0, v)

	v, ok = p.Stat("team_lost")
	require.True(t, ok)
	assert.Zero(t, v)

	_, ok = p.Stat("batters_faced")
	assert.False(t, ok)
	_, ok = p.Stat("rbi")
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	b := &model.BattingGameStat{GameID: "BOS197809070", PlayerID: "ricej001"}
	assert.Equal(t, model.StatKey{
		GameID: "BOS197809070", PlayerID: "ricej001", Domain: model.DomainBatting,
	}, b.Key())
	assert.Equal(t, model.DomainBatting, b.Domain())

	p := &model.PitchingGameStat{GameID: "BOS197809070", PlayerID: "torrm001"}
	assert.Equal(t, model.DomainPitching, p.Key().Domain)
}

func TestKnownStat(t *testing.T) {
	assert.True(t, model.KnownStat(model.DomainBatting, "stolen_bases"))
	assert.True(t, model.KnownStat(model.DomainPitching, "balks"))
	// Shared vocabulary belongs to both tables.
	assert.True(t, model.KnownStat(model.DomainBatting, "strikeouts"))
	assert.True(t, model.KnownStat(model.DomainPitching, "strikeouts"))

	assert.False(t, model.KnownStat(model.DomainBatting, "saves"))
	assert.False(t, model.KnownStat(model.DomainPitching, "gidp"))
	assert.False(t, model.KnownStat(model.Domain("fielding"), "games"))
}

func TestDomainValid(t *testing.T) {
	assert.True(t, model.DomainBatting.Valid())
	assert.True(t, model.DomainPitching.Valid())
	assert.False(t, model.Domain("fielding").Valid())
	assert.False(t, model.Domain("").Valid())
}
