// Package points computes and persists fantasy point totals for normalized
// stat records, and serves filtered point queries for reporting.
package points

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/diamondstats/internal/model"
	"github.com/albapepper/diamondstats/internal/scoring"
)

// Result tracks counts and errors from a scoring run.
type Result struct {
	BattingScored  int
	PitchingScored int
	Errors         []string
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf("batting=%d pitching=%d errors=%d",
		r.BattingScored, r.PitchingScored, len(r.Errors))
}

// ComputeSeason scores every stat record of a season under the ruleset and
// upserts the results. Safe to re-run at any time: scoring is a pure
// function of (record, ruleset), and recomputation overwrites the prior
// value for each (ruleset, game, player, domain) key.
func ComputeSeason(ctx context.Context, pool *pgxpool.Pool, rs *scoring.Ruleset, year int, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var result Result

	from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	logger.Info("Scoring batting stats...", "ruleset", rs.ID, "year", year)
	if err := computeBatting(ctx, pool, rs, from, to, &result); err != nil {
		return result, err
	}
	logger.Info("Batting done", "scored", result.BattingScored)

	logger.Info("Scoring pitching stats...", "ruleset", rs.ID, "year", year)
	if err := computePitching(ctx, pool, rs, from, to, &result); err != nil {
		return result, err
	}
	logger.Info("Pitching done", "scored", result.PitchingScored)

	return result, nil
}

func computeBatting(ctx context.Context, pool *pgxpool.Pool, rs *scoring.Ruleset, from, to time.Time, result *Result) error {
	rows, err := pool.Query(ctx, `
		SELECT bs.game_id, bs.player_id, bs.team, bs.opponent, bs.seq, bs.slot,
			bs.games, bs.plate_appearances, bs.at_bats, bs.runs, bs.hits,
			bs.doubles, bs.triples, bs.home_runs, bs.rbi, bs.walks,
			bs.intentional_walks, bs.strikeouts, bs.hit_by_pitch,
			bs.sacrifice_hits, bs.sacrifice_flies, bs.stolen_bases,
			bs.caught_stealing, bs.gidp, bs.team_won, bs.team_lost, bs.team_tied,
			g.date
		FROM batting_stats bs
		JOIN games g ON g.id = bs.game_id
		WHERE g.date >= $1 AND g.date < $2`,
		from, to,
	)
	if err != nil {
		return fmt.Errorf("query batting stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s model.BattingGameStat
		var gameDate time.Time
		if err := rows.Scan(
			&s.GameID, &s.PlayerID, &s.Team, &s.Opponent, &s.Seq, &s.Slot,
			&s.Games, &s.PlateAppearances, &s.AtBats, &s.Runs, &s.Hits,
			&s.Doubles, &s.Triples, &s.HomeRuns, &s.RBI, &s.Walks,
			&s.IntentionalWalks, &s.Strikeouts, &s.HitByPitch,
			&s.SacrificeHits, &s.SacrificeFlies, &s.StolenBases,
			&s.CaughtStealing, &s.GIDP, &s.TeamWon, &s.TeamLost, &s.TeamTied,
			&gameDate,
		); err != nil {
			return fmt.Errorf("scan batting stat: %w", err)
		}

		if err := upsertPoints(ctx, pool, rs, &s, gameDate); err != nil {
			result.AddErrorf("score batting %s/%s: %v", s.GameID, s.PlayerID, err)
			continue
		}
		result.BattingScored++
	}
	return rows.Err()
}

func computePitching(ctx context.Context, pool *pgxpool.Pool, rs *scoring.Ruleset, from, to time.Time, result *Result) error {
	rows, err := pool.Query(ctx, `
		SELECT ps.game_id, ps.player_id, ps.team, ps.opponent, ps.seq,
			ps.games, ps.games_started, ps.complete_games, ps.shutouts,
			ps.games_finished, ps.wins, ps.losses, ps.saves, ps.outs_pitched,
			ps.batters_faced, ps.runs_allowed, ps.earned_runs, ps.hits_allowed,
			ps.home_runs_allowed, ps.walks, ps.intentional_walks,
			ps.strikeouts, ps.wild_pitches, ps.hit_batters, ps.balks,
			ps.team_won, ps.team_lost, ps.team_tied,
			g.date
		FROM pitching_stats ps
		JOIN games g ON g.id = ps.game_id
		WHERE g.date >= $1 AND g.date < $2`,
		from, to,
	)
	if err != nil {
		return fmt.Errorf("query pitching stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s model.PitchingGameStat
		var gameDate time.Time
		if err := rows.Scan(
			&s.GameID, &s.PlayerID, &s.Team, &s.Opponent, &s.Seq,
			&s.Games, &s.GamesStarted, &s.CompleteGames, &s.Shutouts,
			&s.GamesFinished, &s.Wins, &s.Losses, &s.Saves, &s.OutsPitched,
			&s.BattersFaced, &s.RunsAllowed, &s.EarnedRuns, &s.HitsAllowed,
			&s.HomeRunsAllowed, &s.Walks, &s.IntentionalWalks,
			&s.Strikeouts, &s.WildPitches, &s.HitBatters, &s.Balks,
			&s.TeamWon, &s.TeamLost, &s.TeamTied,
			&gameDate,
		); err != nil {
			return fmt.Errorf("scan pitching stat: %w", err)
		}

		if err := upsertPoints(ctx, pool, rs, &s, gameDate); err != nil {
			result.AddErrorf("score pitching %s/%s: %v", s.GameID, s.PlayerID, err)
			continue
		}
		result.PitchingScored++
	}
	return rows.Err()
}

func upsertPoints(ctx context.Context, pool *pgxpool.Pool, rs *scoring.Ruleset, rec model.StatRecord, gameDate time.Time) error {
	scored := scoring.Score(rec, rs)

	breakdown, err := json.Marshal(scored.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	bonuses, err := json.Marshal(scored.BonusesApplied)
	if err != nil {
		return fmt.Errorf("marshal bonuses: %w", err)
	}

	key := rec.Key()
	_, err = pool.Exec(ctx, `
		INSERT INTO fantasy_points (
			ruleset_id, game_id, player_id, stat_type,
			game_date, total_points, breakdown, bonuses_applied
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (ruleset_id, game_id, player_id, stat_type) DO UPDATE SET
			game_date = EXCLUDED.game_date,
			total_points = EXCLUDED.total_points,
			breakdown = EXCLUDED.breakdown,
			bonuses_applied = EXCLUDED.bonuses_applied,
			updated_at = NOW()`,
		rs.ID, key.GameID, key.PlayerID, string(key.Domain),
		gameDate, scored.TotalPoints, breakdown, bonuses,
	)
	if err != nil {
		return fmt.Errorf("upsert fantasy points: %w", err)
	}
	return nil
}
