package ingest_test

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/diamondstats/internal/batch"
	"github.com/albapepper/diamondstats/internal/db/dbtest"
	"github.com/albapepper/diamondstats/internal/ingest"
	"github.com/albapepper/diamondstats/internal/model"
	"github.com/albapepper/diamondstats/internal/source"
	"github.com/albapepper/diamondstats/internal/staging"
)

func testYear() int {
	return 100000 + rand.Intn(1_000_000_000)
}

var sourceHeader = strings.Join([]string{
	"game.key", "game.date", "game.number", "game.site", "game.type",
	"box.flag", "pbp.flag", "team.key", "opp.key", "team.align",
	"person.key", "seq", "slot",
	"B_G", "B_AB", "B_H", "B_HR", "B_RBI",
	"P_G", "P_GS", "P_CG", "P_OUT", "P_SO", "P_ER", "P_BB", "P_H", "P_W",
}, ",")

// writeSeasonFile places a small unified file for the year in dir: three
// batting appearances and two pitching appearances, one of them a two-way
// player, plus one row with no activity in either domain.
func writeSeasonFile(t *testing.T, dir string, year int) {
	t.Helper()
	game := fmt.Sprintf("BSN%d0", year)
	lines := []string{
		sourceHeader,
		game + ",1914-07-04,0,BOS08,RS,1,0,BSN,NY1,1,evers001,1,4,1,4,2,0,1,0,0,0,0,0,0,0,0,0",
		game + ",1914-07-04,0,BOS08,RS,1,0,BSN,NY1,1,maraw101,2,9,1,4,3,0,0,1,1,1,27,6,1,2,7,1",
		game + ",1914-07-04,0,BOS08,RS,1,0,NY1,BSN,0,burng101,1,3,1,4,1,0,0,0,0,0,0,0,0,0,0,0",
		game + ",1914-07-04,0,BOS08,RS,1,0,NY1,BSN,0,marqr101,2,9,0,0,0,0,0,1,1,0,24,4,2,3,9,0",
		game + ",1914-07-04,0,BOS08,RS,1,0,BSN,NY1,1,subst001,3,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0",
	}
	path := filepath.Join(dir, source.FileName(year))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func newFetcher(t *testing.T, year int) *source.Fetcher {
	t.Helper()
	dir := t.TempDir()
	writeSeasonFile(t, dir, year)
	return source.NewFetcher("", dir, 60, nil)
}

func TestSeasonEndToEnd(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	year := testYear()
	fetcher := newFetcher(t, year)

	res, err := ingest.Season(ctx, pool.Pool, fetcher, year, ingest.Options{}, nil)
	require.NoError(t, err)

	assert.False(t, res.Skipped)
	assert.Equal(t, source.FileName(year), res.SourceFile)
	assert.Equal(t, 3, res.Batting.Staged)
	assert.Equal(t, 2, res.Pitching.Staged)
	assert.Equal(t, 3, res.Batting.Transform.RowsProcessed)
	assert.Equal(t, 2, res.Pitching.Transform.RowsProcessed)

	for _, d := range model.Domains {
		done, err := batch.HasCompleted(ctx, pool.Pool, d, year)
		require.NoError(t, err)
		assert.True(t, done, d)
	}

	// The two-way player has a line in both stat tables.
	var hits, outs int
	game := fmt.Sprintf("BSN%d0", year)
	err = pool.QueryRow(ctx,
		"SELECT hits FROM batting_stats WHERE game_id = $1 AND player_id = 'maraw101'", game,
	).Scan(&hits)
	require.NoError(t, err)
	assert.Equal(t, 3, hits)
	err = pool.QueryRow(ctx,
		"SELECT outs_pitched FROM pitching_stats WHERE game_id = $1 AND player_id = 'maraw101'", game,
	).Scan(&outs)
	require.NoError(t, err)
	assert.Equal(t, 27, outs)

	// Staging is cleaned up after a successful run.
	batches, err := batch.ListForYear(ctx, pool.Pool, year)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	for _, b := range batches {
		count, err := staging.UnprocessedCount(ctx, pool.Pool, b.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	}
}

func TestSeasonSkipsCompletedYear(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	year := testYear()
	fetcher := newFetcher(t, year)

	_, err := ingest.Season(ctx, pool.Pool, fetcher, year, ingest.Options{}, nil)
	require.NoError(t, err)

	res, err := ingest.Season(ctx, pool.Pool, fetcher, year, ingest.Options{}, nil)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	// The skipped run creates no new batches.
	batches, err := batch.ListForYear(ctx, pool.Pool, year)
	require.NoError(t, err)
	assert.Len(t, batches, 2)

	// Force re-ingests under fresh batch ids.
	res, err = ingest.Season(ctx, pool.Pool, fetcher, year, ingest.Options{Force: true}, nil)
	require.NoError(t, err)
	assert.False(t, res.Skipped)

	batches, err = batch.ListForYear(ctx, pool.Pool, year)
	require.NoError(t, err)
	assert.Len(t, batches, 4)
}

func TestSeasonMissingSourceFailsBatches(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	year := testYear()
	fetcher := source.NewFetcher("", t.TempDir(), 60, nil)

	_, err := ingest.Season(ctx, pool.Pool, fetcher, year, ingest.Options{}, nil)
	assert.ErrorIs(t, err, source.ErrNotFound)

	batches, err := batch.ListForYear(ctx, pool.Pool, year)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	for _, b := range batches {
		assert.Equal(t, batch.StatusFailed, b.Status)
		require.NotNil(t, b.Error)
		assert.Contains(t, *b.Error, source.FileName(year))
	}
}

func TestSkipTransformThenResume(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	year := testYear()
	fetcher := newFetcher(t, year)

	res, err := ingest.Season(ctx, pool.Pool, fetcher, year, ingest.Options{SkipTransform: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Batting.Staged)
	assert.Zero(t, res.Batting.Transform.RowsProcessed)

	// Batches stay open with their staged rows intact.
	batches, err := batch.ListForYear(ctx, pool.Pool, year)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	for _, b := range batches {
		assert.Equal(t, batch.StatusInProgress, b.Status)
	}

	for _, b := range batches {
		b := b
		tr, err := ingest.Resume(ctx, pool.Pool, &b, 50, nil)
		require.NoError(t, err)
		assert.Equal(t, b.TotalRows, tr.RowsProcessed)

		got, err := batch.Get(ctx, pool.Pool, b.ID)
		require.NoError(t, err)
		assert.Equal(t, batch.StatusCompleted, got.Status)
		assert.Equal(t, b.TotalRows, got.ProcessedRows)
	}
}
