package transform_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/diamondstats/internal/db"
	"github.com/albapepper/diamondstats/internal/db/dbtest"
	"github.com/albapepper/diamondstats/internal/model"
	"github.com/albapepper/diamondstats/internal/source"
	"github.com/albapepper/diamondstats/internal/staging"
	"github.com/albapepper/diamondstats/internal/transform"
)

// ids unique to one test run, so tests can share a database without
// truncating between them.
type fixture struct {
	game    string
	home    string
	away    string
	batter  string
	pitcher string
}

func newFixture() fixture {
	n := uuid.New().String()[:8]
	return fixture{
		game:    "G" + n,
		home:    "H" + n,
		away:    "A" + n,
		batter:  "b" + n,
		pitcher: "p" + n,
	}
}

func (f fixture) battingRow(team, opp, align, hits string) source.RawRow {
	return source.RawRow{
		"game.key": f.game, "game.date": "1978-09-07", "game.number": "0",
		"game.site": "BOS07", "game.type": "RS", "box.flag": "1", "pbp.flag": "0",
		"team.key": team, "opp.key": opp, "team.align": align,
		"person.key": f.batter, "seq": "1", "slot": "3",
		"B_G": "1", "B_AB": "4", "B_H": hits, "B_HR": "1", "B_RBI": "3",
	}
}

func stage(t *testing.T, pool *db.Pool, batchID uuid.UUID, rows []source.RawRow) {
	t.Helper()
	w := staging.NewWriter(pool.Pool, batchID, "playing-1978.csv", 100)
	ctx := context.Background()
	for _, row := range rows {
		require.NoError(t, w.Append(ctx, row))
	}
	require.NoError(t, w.Flush(ctx))
}

func TestRunNormalizesBattingRows(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	f := newFixture()
	batchID := uuid.New()

	stage(t, pool, batchID, []source.RawRow{
		f.battingRow(f.home, f.away, "1", "2"),
	})

	res, err := transform.Run(ctx, pool.Pool, batchID, model.DomainBatting, 50, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.RowsProcessed)
	assert.Equal(t, 2, res.TeamsTouched)
	assert.Equal(t, 1, res.PlayersTouched)
	assert.Equal(t, 1, res.GamesTouched)
	assert.Equal(t, 1, res.Pages)

	var home, away string
	var hasBox, hasPBP bool
	err = pool.QueryRow(ctx,
		"SELECT home_team, away_team, has_box, has_pbp FROM games WHERE id = $1", f.game,
	).Scan(&home, &away, &hasBox, &hasPBP)
	require.NoError(t, err)
	assert.Equal(t, f.home, home)
	assert.Equal(t, f.away, away)
	assert.True(t, hasBox)
	assert.False(t, hasPBP)

	var hits, hrs int
	err = pool.QueryRow(ctx,
		"SELECT hits, home_runs FROM batting_stats WHERE game_id = $1 AND player_id = $2",
		f.game, f.batter,
	).Scan(&hits, &hrs)
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, hrs)
}

func TestRunIsIdempotent(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	f := newFixture()
	batchID := uuid.New()

	stage(t, pool, batchID, []source.RawRow{
		f.battingRow(f.home, f.away, "1", "2"),
	})

	_, err := transform.Run(ctx, pool.Pool, batchID, model.DomainBatting, 50, nil)
	require.NoError(t, err)

	// A second run finds nothing unprocessed and touches no rows.
	res, err := transform.Run(ctx, pool.Pool, batchID, model.DomainBatting, 50, nil)
	require.NoError(t, err)
	assert.Zero(t, res.RowsProcessed)
	assert.Zero(t, res.Pages)

	var count int
	err = pool.QueryRow(ctx,
		"SELECT count(*) FROM batting_stats WHERE game_id = $1", f.game,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunLastWriteWins(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	f := newFixture()
	batchID := uuid.New()

	// Two rows for the same (game, player): the later row's values stand.
	stage(t, pool, batchID, []source.RawRow{
		f.battingRow(f.home, f.away, "1", "1"),
		f.battingRow(f.home, f.away, "1", "4"),
	})

	_, err := transform.Run(ctx, pool.Pool, batchID, model.DomainBatting, 50, nil)
	require.NoError(t, err)

	var hits int
	err = pool.QueryRow(ctx,
		"SELECT hits FROM batting_stats WHERE game_id = $1 AND player_id = $2",
		f.game, f.batter,
	).Scan(&hits)
	require.NoError(t, err)
	assert.Equal(t, 4, hits)
}

func TestRunMergesGameFlags(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	f := newFixture()

	// First batch sees the game with box data only.
	first := uuid.New()
	row := f.battingRow(f.home, f.away, "1", "2")
	stage(t, pool, first, []source.RawRow{row})
	_, err := transform.Run(ctx, pool.Pool, first, model.DomainBatting, 50, nil)
	require.NoError(t, err)

	// A later batch sees the same game with play-by-play only; the flags
	// accumulate rather than overwrite.
	second := uuid.New()
	row = f.battingRow(f.home, f.away, "1", "2")
	row["box.flag"] = "0"
	row["pbp.flag"] = "1"
	stage(t, pool, second, []source.RawRow{row})
	_, err = transform.Run(ctx, pool.Pool, second, model.DomainBatting, 50, nil)
	require.NoError(t, err)

	var hasBox, hasPBP bool
	err = pool.QueryRow(ctx,
		"SELECT has_box, has_pbp FROM games WHERE id = $1", f.game,
	).Scan(&hasBox, &hasPBP)
	require.NoError(t, err)
	assert.True(t, hasBox)
	assert.True(t, hasPBP)
}

func TestRunSkipsRowsWithoutGameKey(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	f := newFixture()
	batchID := uuid.New()

	bad := f.battingRow(f.home, f.away, "1", "2")
	bad["game.key"] = ""
	stage(t, pool, batchID, []source.RawRow{
		bad,
		f.battingRow(f.home, f.away, "1", "3"),
	})

	res, err := transform.Run(ctx, pool.Pool, batchID, model.DomainBatting, 50, nil)
	require.NoError(t, err)
	// Both staged rows are consumed; only the keyed one lands.
	assert.Equal(t, 2, res.RowsProcessed)
	assert.Equal(t, 1, res.GamesTouched)
}

func TestRunPaginates(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	f := newFixture()
	batchID := uuid.New()

	var rows []source.RawRow
	for i := 0; i < 7; i++ {
		row := f.battingRow(f.home, f.away, "1", "1")
		row["person.key"] = fmt.Sprintf("%s-%d", f.batter, i)
		rows = append(rows, row)
	}
	stage(t, pool, batchID, rows)

	res, err := transform.Run(ctx, pool.Pool, batchID, model.DomainBatting, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, res.RowsProcessed)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, 7, res.PlayersTouched)
}
