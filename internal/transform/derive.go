package transform

import (
	"github.com/albapepper/diamondstats/internal/model"
	"github.com/albapepper/diamondstats/internal/source"
)

// deriveGame builds a Game from a projected row. Home and away sides come
// from the alignment flag: 1 means the row's team batted at home.
func deriveGame(row source.RawRow) model.Game {
	team := row.Get("team.key")
	opp := row.Get("opp.key")
	home, away := opp, team
	if toInt(row.Get("team.align")) == 1 {
		home, away = team, opp
	}
	return model.Game{
		ID:         row.Get("game.key"),
		Date:       toDate(row.Get("game.date")),
		GameNumber: toInt(row.Get("game.number")),
		Site:       row.Get("game.site"),
		HomeTeam:   home,
		AwayTeam:   away,
		GameType:   row.Get("game.type"),
		HasBox:     toBool(row.Get("box.flag")),
		HasPBP:     toBool(row.Get("pbp.flag")),
	}
}

func deriveBatting(row source.RawRow) *model.BattingGameStat {
	return &model.BattingGameStat{
		GameID:   row.Get("game.key"),
		PlayerID: row.Get("person.key"),
		Team:     row.Get("team.key"),
		Opponent: row.Get("opp.key"),

		Seq:  toNullInt(row.Get("seq")),
		Slot: toNullInt(row.Get("slot")),

		Games:            toInt(row.Get("B_G")),
		PlateAppearances: toNullInt(row.Get("B_PA")),
		AtBats:           toInt(row.Get("B_AB")),
		Runs:             toInt(row.Get("B_R")),
		Hits:             toInt(row.Get("B_H")),
		Doubles:          toInt(row.Get("B_2B")),
		Triples:          toInt(row.Get("B_3B")),
		HomeRuns:         toInt(row.Get("B_HR")),
		RBI:              toInt(row.Get("B_RBI")),
		Walks:            toInt(row.Get("B_BB")),
		IntentionalWalks: toNullInt(row.Get("B_IBB")),
		Strikeouts:       toInt(row.Get("B_SO")),
		HitByPitch:       toInt(row.Get("B_HP")),
		SacrificeHits:    toNullInt(row.Get("B_SH")),
		SacrificeFlies:   toNullInt(row.Get("B_SF")),
		StolenBases:      toInt(row.Get("B_SB")),
		CaughtStealing:   toNullInt(row.Get("B_CS")),
		GIDP:             toNullInt(row.Get("B_GDP")),

		TeamWon:  toNullBool(row.Get("B_G_W")),
		TeamLost: toNullBool(row.Get("B_G_L")),
		TeamTied: toNullBool(row.Get("B_G_T")),
	}
}

func derivePitching(row source.RawRow) *model.PitchingGameStat {
	return &model.PitchingGameStat{
		GameID:   row.Get("game.key"),
		PlayerID: row.Get("person.key"),
		Team:     row.Get("team.key"),
		Opponent: row.Get("opp.key"),

		Seq: toNullInt(row.Get("seq")),

		Games:            toInt(row.Get("P_G")),
		GamesStarted:     toInt(row.Get("P_GS")),
		CompleteGames:    toInt(row.Get("P_CG")),
		Shutouts:         toInt(row.Get("P_SHO")),
		GamesFinished:    toInt(row.Get("P_GF")),
		Wins:             toInt(row.Get("P_W")),
		Losses:           toInt(row.Get("P_L")),
		Saves:            toInt(row.Get("P_SV")),
		OutsPitched:      toInt(row.Get("P_OUT")),
		BattersFaced:     toNullInt(row.Get("P_TBF")),
		RunsAllowed:      toInt(row.Get("P_R")),
		EarnedRuns:       toInt(row.Get("P_ER")),
		HitsAllowed:      toInt(row.Get("P_H")),
		HomeRunsAllowed:  toInt(row.Get("P_HR")),
		Walks:            toInt(row.Get("P_BB")),
		IntentionalWalks: toNullInt(row.Get("P_IBB")),
		Strikeouts:       toInt(row.Get("P_SO")),
		WildPitches:      toInt(row.Get("P_WP")),
		HitBatters:       toInt(row.Get("P_HP")),
		Balks:            toInt(row.Get("P_BK")),

		TeamWon:  toNullBool(row.Get("P_G_W")),
		TeamLost: toNullBool(row.Get("P_G_L")),
		TeamTied: toNullBool(row.Get("P_G_T")),
	}
}
