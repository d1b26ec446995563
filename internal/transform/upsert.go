package transform

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/diamondstats/internal/model"
)

// Write ordering within a page is Teams -> Players -> Games -> stat records,
// so dependents never reference an id that does not exist yet.

// insertTeams creates any teams not yet present. Existing rows are left
// untouched — teams carry identity only.
func insertTeams(ctx context.Context, tx pgx.Tx, ids []string) error {
	b := &pgx.Batch{}
	for _, id := range ids {
		b.Queue("INSERT INTO teams (id) VALUES ($1) ON CONFLICT (id) DO NOTHING", id)
	}
	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("insert teams: %w", err)
	}
	return nil
}

// insertPlayers creates any players not yet present.
func insertPlayers(ctx context.Context, tx pgx.Tx, ids []string) error {
	b := &pgx.Batch{}
	for _, id := range ids {
		b.Queue("INSERT INTO players (id) VALUES ($1) ON CONFLICT (id) DO NOTHING", id)
	}
	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("insert players: %w", err)
	}
	return nil
}

// upsertGame creates a game on first reference. Identity fields are
// immutable afterwards; only the box/pbp flags merge, and only upward.
func upsertGame(ctx context.Context, tx pgx.Tx, g model.Game) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO games (id, date, game_number, site, home_team, away_team, game_type, has_box, has_pbp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			has_box = games.has_box OR EXCLUDED.has_box,
			has_pbp = games.has_pbp OR EXCLUDED.has_pbp`,
		g.ID, g.Date, g.GameNumber, nilEmpty(g.Site), nilEmpty(g.HomeTeam),
		nilEmpty(g.AwayTeam), nilEmpty(g.GameType), g.HasBox, g.HasPBP,
	)
	if err != nil {
		return fmt.Errorf("upsert game %s: %w", g.ID, err)
	}
	return nil
}

// upsertBattingStat overwrites the full batting line for its key.
// Last write wins; re-running a batch converges to the same state.
func upsertBattingStat(ctx context.Context, tx pgx.Tx, s *model.BattingGameStat) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO batting_stats (
			game_id, player_id, team, opponent, seq, slot,
			games, plate_appearances, at_bats, runs, hits, doubles, triples,
			home_runs, rbi, walks, intentional_walks, strikeouts, hit_by_pitch,
			sacrifice_hits, sacrifice_flies, stolen_bases, caught_stealing, gidp,
			team_won, team_lost, team_tied
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,
			$20,$21,$22,$23,$24,$25,$26,$27
		)
		ON CONFLICT (game_id, player_id) DO UPDATE SET
			team = EXCLUDED.team,
			opponent = EXCLUDED.opponent,
			seq = EXCLUDED.seq,
			slot = EXCLUDED.slot,
			games = EXCLUDED.games,
			plate_appearances = EXCLUDED.plate_appearances,
			at_bats = EXCLUDED.at_bats,
			runs = EXCLUDED.runs,
			hits = EXCLUDED.hits,
			doubles = EXCLUDED.doubles,
			triples = EXCLUDED.triples,
			home_runs = EXCLUDED.home_runs,
			rbi = EXCLUDED.rbi,
			walks = EXCLUDED.walks,
			intentional_walks = EXCLUDED.intentional_walks,
			strikeouts = EXCLUDED.strikeouts,
			hit_by_pitch = EXCLUDED.hit_by_pitch,
			sacrifice_hits = EXCLUDED.sacrifice_hits,
			sacrifice_flies = EXCLUDED.sacrifice_flies,
			stolen_bases = EXCLUDED.stolen_bases,
			caught_stealing = EXCLUDED.caught_stealing,
			gidp = EXCLUDED.gidp,
			team_won = EXCLUDED.team_won,
			team_lost = EXCLUDED.team_lost,
			team_tied = EXCLUDED.team_tied,
			updated_at = NOW()`,
		s.GameID, s.PlayerID, s.Team, s.Opponent, s.Seq, s.Slot,
		s.Games, s.PlateAppearances, s.AtBats, s.Runs, s.Hits, s.Doubles,
		s.Triples, s.HomeRuns, s.RBI, s.Walks, s.IntentionalWalks,
		s.Strikeouts, s.HitByPitch, s.SacrificeHits, s.SacrificeFlies,
		s.StolenBases, s.CaughtStealing, s.GIDP,
		s.TeamWon, s.TeamLost, s.TeamTied,
	)
	if err != nil {
		return fmt.Errorf("upsert batting stat %s/%s: %w", s.GameID, s.PlayerID, err)
	}
	return nil
}

// upsertPitchingStat overwrites the full pitching line for its key.
func upsertPitchingStat(ctx context.Context, tx pgx.Tx, s *model.PitchingGameStat) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO pitching_stats (
			game_id, player_id, team, opponent, seq,
			games, games_started, complete_games, shutouts, games_finished,
			wins, losses, saves, outs_pitched, batters_faced, runs_allowed,
			earned_runs, hits_allowed, home_runs_allowed, walks,
			intentional_walks, strikeouts, wild_pitches, hit_batters, balks,
			team_won, team_lost, team_tied
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,
			$19,$20,$21,$22,$23,$24,$25,$26,$27,$28
		)
		ON CONFLICT (game_id, player_id) DO UPDATE SET
			team = EXCLUDED.team,
			opponent = EXCLUDED.opponent,
			seq = EXCLUDED.seq,
			games = EXCLUDED.games,
			games_started = EXCLUDED.games_started,
			complete_games = EXCLUDED.complete_games,
			shutouts = EXCLUDED.shutouts,
			games_finished = EXCLUDED.games_finished,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			saves = EXCLUDED.saves,
			outs_pitched = EXCLUDED.outs_pitched,
			batters_faced = EXCLUDED.batters_faced,
			runs_allowed = EXCLUDED.runs_allowed,
			earned_runs = EXCLUDED.earned_runs,
			hits_allowed = EXCLUDED.hits_allowed,
			home_runs_allowed = EXCLUDED.home_runs_allowed,
			walks = EXCLUDED.walks,
			intentional_walks = EXCLUDED.intentional_walks,
			strikeouts = EXCLUDED.strikeouts,
			wild_pitches = EXCLUDED.wild_pitches,
			hit_batters = EXCLUDED.hit_batters,
			balks = EXCLUDED.balks,
			team_won = EXCLUDED.team_won,
			team_lost = EXCLUDED.team_lost,
			team_tied = EXCLUDED.team_tied,
			updated_at = NOW()`,
		s.GameID, s.PlayerID, s.Team, s.Opponent, s.Seq,
		s.Games, s.GamesStarted, s.CompleteGames, s.Shutouts, s.GamesFinished,
		s.Wins, s.Losses, s.Saves, s.OutsPitched, s.BattersFaced, s.RunsAllowed,
		s.EarnedRuns, s.HitsAllowed, s.HomeRunsAllowed, s.Walks,
		s.IntentionalWalks, s.Strikeouts, s.WildPitches, s.HitBatters, s.Balks,
		s.TeamWon, s.TeamLost, s.TeamTied,
	)
	if err != nil {
		return fmt.Errorf("upsert pitching stat %s/%s: %w", s.GameID, s.PlayerID, err)
	}
	return nil
}

// nilEmpty returns nil for empty strings (maps to SQL NULL).
func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
