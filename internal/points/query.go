package points

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/diamondstats/internal/scoring"
)

// psql builds statements with Postgres placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Filter narrows a fantasy points query. Zero values mean "no constraint";
// the ruleset id is required since totals are only comparable within one.
type Filter struct {
	RulesetID string
	Domain    string
	PlayerID  string
	From      time.Time
	To        time.Time
	Limit     int
}

// Row is one persisted fantasy points record.
type Row struct {
	RulesetID      string                   `json:"ruleset_id"`
	GameID         string                   `json:"game_id"`
	PlayerID       string                   `json:"player_id"`
	StatType       string                   `json:"stat_type"`
	GameDate       time.Time                `json:"game_date"`
	TotalPoints    float64                  `json:"total_points"`
	Breakdown      []scoring.BreakdownEntry `json:"breakdown"`
	BonusesApplied []string                 `json:"bonuses_applied"`
}

// Query returns fantasy points matching the filter, best totals first.
func Query(ctx context.Context, pool *pgxpool.Pool, f Filter) ([]Row, error) {
	if f.RulesetID == "" {
		return nil, fmt.Errorf("ruleset id is required")
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}

	q := psql.
		Select("ruleset_id", "game_id", "player_id", "stat_type",
			"game_date", "total_points", "breakdown", "bonuses_applied").
		From("fantasy_points").
		Where(sq.Eq{"ruleset_id": f.RulesetID}).
		OrderBy("total_points DESC", "game_date", "player_id").
		Limit(uint64(f.Limit))

	if f.Domain != "" {
		q = q.Where(sq.Eq{"stat_type": f.Domain})
	}
	if f.PlayerID != "" {
		q = q.Where(sq.Eq{"player_id": f.PlayerID})
	}
	if !f.From.IsZero() {
		q = q.Where(sq.GtOrEq{"game_date": f.From})
	}
	if !f.To.IsZero() {
		q = q.Where(sq.Lt{"game_date": f.To})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build points query: %w", err)
	}

	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query fantasy points: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var breakdown, bonuses []byte
		if err := rows.Scan(
			&r.RulesetID, &r.GameID, &r.PlayerID, &r.StatType,
			&r.GameDate, &r.TotalPoints, &breakdown, &bonuses,
		); err != nil {
			return nil, fmt.Errorf("scan fantasy points: %w", err)
		}
		if err := json.Unmarshal(breakdown, &r.Breakdown); err != nil {
			return nil, fmt.Errorf("decode breakdown: %w", err)
		}
		if err := json.Unmarshal(bonuses, &r.BonusesApplied); err != nil {
			return nil, fmt.Errorf("decode bonuses: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
