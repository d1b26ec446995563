package model

// BattingGameStat is one player's batting line for one game.
// Nullable fields are stats that are simply unrecorded in parts of the
// historical record; they stay null rather than defaulting to zero.
type BattingGameStat struct {
	GameID   string
	PlayerID string
	Team     string
	Opponent string

	// Sequencing metadata within the source file.
	Seq  *int
	Slot *int

	Games            int
	PlateAppearances *int
	AtBats           int
	Runs             int
	Hits             int
	Doubles          int
	Triples          int
	HomeRuns         int
	RBI              int
	Walks            int
	IntentionalWalks *int
	Strikeouts       int
	HitByPitch       int
	SacrificeHits    *int
	SacrificeFlies   *int
	StolenBases      int
	CaughtStealing   *int
	GIDP             *int

	TeamWon  *bool
	TeamLost *bool
	TeamTied *bool
}

func (b *BattingGameStat) Domain() Domain { return DomainBatting }

func (b *BattingGameStat) Key() StatKey {
	return StatKey{GameID: b.GameID, PlayerID: b.PlayerID, Domain: DomainBatting}
}

func (b *BattingGameStat) Stat(name string) (float64, bool) {
	fn, ok := battingStats[name]
	if !ok {
		return 0, false
	}
	return fn(b)
}

// PitchingGameStat is one player's pitching line for one game.
// OutsPitched stores innings as an integer count of outs (innings*3 +
// partial); conversion to fractional innings happens at display time.
type PitchingGameStat struct {
	GameID   string
	PlayerID string
	Team     string
	Opponent string

	Seq *int

	Games            int
	GamesStarted     int
	CompleteGames    int
	Shutouts         int
	GamesFinished    int
	Wins             int
	Losses           int
	Saves            int
	OutsPitched      int
	BattersFaced     *int
	RunsAllowed      int
	EarnedRuns       int
	HitsAllowed      int
	HomeRunsAllowed  int
	Walks            int
	IntentionalWalks *int
	Strikeouts       int
	WildPitches      int
	HitBatters       int
	Balks            int

	TeamWon  *bool
	TeamLost *bool
	TeamTied *bool
}

func (p *PitchingGameStat) Domain() Domain { return DomainPitching }

func (p *PitchingGameStat) Key() StatKey {
	return StatKey{GameID: p.GameID, PlayerID: p.PlayerID, Domain: DomainPitching}
}

func (p *PitchingGameStat) Stat(name string) (float64, bool) {
	fn, ok := pitchingStats[name]
	if !ok {
		return 0, false
	}
	return fn(p)
}

// KnownStat reports whether name belongs to the given domain's stat table.
// Bonus rules use this membership test to decide which domain they apply to.
func KnownStat(d Domain, name string) bool {
	switch d {
	case DomainBatting:
		_, ok := battingStats[name]
		return ok
	case DomainPitching:
		_, ok := pitchingStats[name]
		return ok
	}
	return false
}

// --------------------------------------------------------------------------
// Stat name tables
//
// The map keys are the stable vocabulary ruleset authors write against.
// Resolvers return ok=false for null values so the scoring engine can
// distinguish "unrecorded" from zero.
// --------------------------------------------------------------------------

func intStat(v int) (float64, bool) { return float64(v), true }

func nullIntStat(v *int) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return float64(*v), true
}

func nullBoolStat(v *bool) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if *v {
		return 1, true
	}
	return 0, true
}

var battingStats = map[string]func(*BattingGameStat) (float64, bool){
	"games":              func(b *BattingGameStat) (float64, bool) { return intStat(b.Games) },
	"plate_appearances":  func(b *BattingGameStat) (float64, bool) { return nullIntStat(b.PlateAppearances) },
	"at_bats":            func(b *BattingGameStat) (float64, bool) { return intStat(b.AtBats) },
	"runs":               func(b *BattingGameStat) (float64, bool) { return intStat(b.Runs) },
	"hits":               func(b *BattingGameStat) (float64, bool) { return intStat(b.Hits) },
	"doubles":            func(b *BattingGameStat) (float64, bool) { return intStat(b.Doubles) },
	"triples":            func(b *BattingGameStat) (float64, bool) { return intStat(b.Triples) },
	"home_runs":          func(b *BattingGameStat) (float64, bool) { return intStat(b.HomeRuns) },
	"rbi":                func(b *BattingGameStat) (float64, bool) { return intStat(b.RBI) },
	"walks":              func(b *BattingGameStat) (float64, bool) { return intStat(b.Walks) },
	"intentional_walks":  func(b *BattingGameStat) (float64, bool) { return nullIntStat(b.IntentionalWalks) },
	"strikeouts":         func(b *BattingGameStat) (float64, bool) { return intStat(b.Strikeouts) },
	"hit_by_pitch":       func(b *BattingGameStat) (float64, bool) { return intStat(b.HitByPitch) },
	"sacrifice_hits":     func(b *BattingGameStat) (float64, bool) { return nullIntStat(b.SacrificeHits) },
	"sacrifice_flies":    func(b *BattingGameStat) (float64, bool) { return nullIntStat(b.SacrificeFlies) },
	"stolen_bases":       func(b *BattingGameStat) (float64, bool) { return intStat(b.StolenBases) },
	"caught_stealing":    func(b *BattingGameStat) (float64, bool) { return nullIntStat(b.CaughtStealing) },
	"gidp":               func(b *BattingGameStat) (float64, bool) { return nullIntStat(b.GIDP) },
	"team_won":           func(b *BattingGameStat) (float64, bool) { return nullBoolStat(b.TeamWon) },
	"team_lost":          func(b *BattingGameStat) (float64, bool) { return nullBoolStat(b.TeamLost) },
	"team_tied":          func(b *BattingGameStat) (float64, bool) { return nullBoolStat(b.TeamTied) },
}

var pitchingStats = map[string]func(*PitchingGameStat) (float64, bool){
	"games":             func(p *PitchingGameStat) (float64, bool) { return intStat(p.Games) },
	"games_started":     func(p *PitchingGameStat) (float64, bool) { return intStat(p.GamesStarted) },
	"complete_game":     func(p *PitchingGameStat) (float64, bool) { return intStat(p.CompleteGames) },
	"shutout":           func(p *PitchingGameStat) (float64, bool) { return intStat(p.Shutouts) },
	"games_finished":    func(p *PitchingGameStat) (float64, bool) { return intStat(p.GamesFinished) },
	"won":               func(p *PitchingGameStat) (float64, bool) { return intStat(p.Wins) },
	"lost":              func(p *PitchingGameStat) (float64, bool) { return intStat(p.Losses) },
	"saves":             func(p *PitchingGameStat) (float64, bool) { return intStat(p.Saves) },
	"outs_pitched":      func(p *PitchingGameStat) (float64, bool) { return intStat(p.OutsPitched) },
	"batters_faced":     func(p *PitchingGameStat) (float64, bool) { return nullIntStat(p.BattersFaced) },
	"runs_allowed":      func(p *PitchingGameStat) (float64, bool) { return intStat(p.RunsAllowed) },
	"earned_runs":       func(p *PitchingGameStat) (float64, bool) { return intStat(p.EarnedRuns) },
	"hits_allowed":      func(p *PitchingGameStat) (float64, bool) { return intStat(p.HitsAllowed) },
	"home_runs_allowed": func(p *PitchingGameStat) (float64, bool) { return intStat(p.HomeRunsAllowed) },
	"walks":             func(p *PitchingGameStat) (float64, bool) { return intStat(p.Walks) },
	"intentional_walks": func(p *PitchingGameStat) (float64, bool) { return nullIntStat(p.IntentionalWalks) },
	"strikeouts":        func(p *PitchingGameStat) (float64, bool) { return intStat(p.Strikeouts) },
	"wild_pitches":      func(p *PitchingGameStat) (float64, bool) { return intStat(p.WildPitches) },
	"hit_batters":       func(p *PitchingGameStat) (float64, bool) { return intStat(p.HitBatters) },
	"balks":             func(p *PitchingGameStat) (float64, bool) { return intStat(p.Balks) },
	"team_won":          func(p *PitchingGameStat) (float64, bool) { return nullBoolStat(p.TeamWon) },
	"team_lost":         func(p *PitchingGameStat) (float64, bool) { return nullBoolStat(p.TeamLost) },
	"team_tied":         func(p *PitchingGameStat) (float64, bool) { return nullBoolStat(p.TeamTied) },
}
