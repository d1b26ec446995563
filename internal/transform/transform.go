package transform

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/diamondstats/internal/model"
	"github.com/albapepper/diamondstats/internal/staging"
)

// Result tracks counts from a transform run, for reporting only.
type Result struct {
	RowsProcessed  int
	TeamsTouched   int
	PlayersTouched int
	GamesTouched   int
	Pages          int
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf("rows=%d teams=%d players=%d games=%d pages=%d",
		r.RowsProcessed, r.TeamsTouched, r.PlayersTouched, r.GamesTouched, r.Pages)
}

// Run converts a batch's staged rows into normalized entities.
//
// Rows are read in fixed-size pages ordered by row_num. Each page's upserts
// run inside one transaction in the order Teams -> Players -> Games -> stat
// records; after the transaction commits the page's staging rows are marked
// processed. Re-invoking Run on the same batch only touches rows still
// unprocessed, and every upsert is idempotent, so the whole operation is
// safe to retry after a crash without double counting.
func Run(ctx context.Context, pool *pgxpool.Pool, batchID uuid.UUID, domain model.Domain, pageSize int, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var result Result

	teams := map[string]struct{}{}
	players := map[string]struct{}{}
	games := map[string]struct{}{}

	for {
		page, err := staging.UnprocessedPage(ctx, pool, batchID, pageSize)
		if err != nil {
			return result, err
		}
		if len(page) == 0 {
			break
		}

		if err := processPage(ctx, pool, domain, page, teams, players, games); err != nil {
			return result, fmt.Errorf("batch %s page %d: %w", batchID, result.Pages+1, err)
		}

		rowNums := make([]int64, len(page))
		for i, r := range page {
			rowNums[i] = r.RowNum
		}
		if err := staging.MarkProcessed(ctx, pool, batchID, rowNums); err != nil {
			return result, err
		}

		result.RowsProcessed += len(page)
		result.Pages++
		logger.Info("Transform page done",
			"batch", batchID, "domain", domain,
			"page", result.Pages, "rows", result.RowsProcessed)
	}

	result.TeamsTouched = len(teams)
	result.PlayersTouched = len(players)
	result.GamesTouched = len(games)
	return result, nil
}

func processPage(ctx context.Context, pool *pgxpool.Pool, domain model.Domain, page []staging.Row, teams, players, games map[string]struct{}) error {
	// Distinct ids for this page, from both the team and opponent columns.
	pageTeams := map[string]struct{}{}
	pagePlayers := map[string]struct{}{}
	for _, r := range page {
		if id := r.Data.Get("team.key"); id != "" {
			pageTeams[id] = struct{}{}
		}
		if id := r.Data.Get("opp.key"); id != "" {
			pageTeams[id] = struct{}{}
		}
		if id := r.Data.Get("person.key"); id != "" {
			pagePlayers[id] = struct{}{}
		}
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin page: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertTeams(ctx, tx, sortedKeys(pageTeams)); err != nil {
		return err
	}
	if err := insertPlayers(ctx, tx, sortedKeys(pagePlayers)); err != nil {
		return err
	}

	for _, r := range page {
		g := deriveGame(r.Data)
		if g.ID == "" {
			// A row without a game key cannot be normalized; skip it rather
			// than failing the batch.
			continue
		}
		if err := upsertGame(ctx, tx, g); err != nil {
			return err
		}
		games[g.ID] = struct{}{}

		switch domain {
		case model.DomainBatting:
			if err := upsertBattingStat(ctx, tx, deriveBatting(r.Data)); err != nil {
				return err
			}
		case model.DomainPitching:
			if err := upsertPitchingStat(ctx, tx, derivePitching(r.Data)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown domain %q", domain)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit page: %w", err)
	}

	for id := range pageTeams {
		teams[id] = struct{}{}
	}
	for id := range pagePlayers {
		players[id] = struct{}{}
	}
	return nil
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
