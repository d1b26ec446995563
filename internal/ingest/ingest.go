// Package ingest orchestrates one season's pipeline: skip check, fetch,
// classify, stage, transform, and batch finalization.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/diamondstats/internal/batch"
	"github.com/albapepper/diamondstats/internal/classify"
	"github.com/albapepper/diamondstats/internal/model"
	"github.com/albapepper/diamondstats/internal/source"
	"github.com/albapepper/diamondstats/internal/staging"
	"github.com/albapepper/diamondstats/internal/transform"
)

// Options controls a season run.
type Options struct {
	// Force ingests even when completed batches already exist.
	Force bool
	// SkipTransform stages rows without interpreting them. Staged rows are
	// kept for a later resume.
	SkipTransform bool

	StagingPageSize   int
	TransformPageSize int
}

// DomainResult reports one domain's share of a season run.
type DomainResult struct {
	BatchID   string
	Staged    int
	Transform transform.Result
}

// SeasonResult reports a full season run.
type SeasonResult struct {
	Year       int
	SourceFile string
	Skipped    bool
	Batting    DomainResult
	Pitching   DomainResult
	Duration   time.Duration
}

// Summary returns a human-readable summary of the run.
func (r *SeasonResult) Summary() string {
	if r.Skipped {
		return fmt.Sprintf("year=%d skipped (already completed)", r.Year)
	}
	return fmt.Sprintf("year=%d staged_batting=%d staged_pitching=%d transformed_batting=%d transformed_pitching=%d dur=%s",
		r.Year, r.Batting.Staged, r.Pitching.Staged,
		r.Batting.Transform.RowsProcessed, r.Pitching.Transform.RowsProcessed,
		r.Duration.Round(time.Second))
}

// Season ingests one year of the unified source file.
//
// Without Force, a year whose batting and pitching batches are both already
// completed short-circuits with a skipped result and performs zero writes.
// Any failure after batch creation marks both batches failed with the
// captured message; normalized data written by earlier pages is not rolled
// back — a later forced re-run converges because every upsert is idempotent.
// Staging rows from a failed run are left in place for resumption or manual
// cleanup.
func Season(ctx context.Context, pool *pgxpool.Pool, fetcher *source.Fetcher, year int, opts Options, logger *slog.Logger) (SeasonResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	result := SeasonResult{Year: year, SourceFile: source.FileName(year)}

	if !opts.Force {
		skip := true
		for _, d := range model.Domains {
			done, err := batch.HasCompleted(ctx, pool, d, year)
			if err != nil {
				return result, err
			}
			if !done {
				skip = false
				break
			}
		}
		if skip {
			logger.Info("Season already ingested, skipping", "year", year)
			result.Skipped = true
			result.Duration = time.Since(start)
			return result, nil
		}
	}

	for _, d := range model.Domains {
		release := locks.acquire(d, year)
		defer release()
	}

	// Fresh batch ids for every attempt; a partially staged batch id is
	// never reused.
	battingBatch, err := batch.Create(ctx, pool, model.DomainBatting, year, result.SourceFile)
	if err != nil {
		return result, err
	}
	pitchingBatch, err := batch.Create(ctx, pool, model.DomainPitching, year, result.SourceFile)
	if err != nil {
		return result, err
	}
	result.Batting.BatchID = battingBatch.ID.String()
	result.Pitching.BatchID = pitchingBatch.ID.String()

	fail := func(cause error) (SeasonResult, error) {
		msg := cause.Error()
		for _, b := range []*batch.Batch{battingBatch, pitchingBatch} {
			if ferr := batch.Fail(ctx, pool, b.ID, msg); ferr != nil {
				logger.Error("Could not mark batch failed", "batch", b.ID, "error", ferr)
			}
		}
		result.Duration = time.Since(start)
		return result, cause
	}

	logger.Info("Fetching source", "year", year, "file", result.SourceFile)
	body, err := fetcher.Fetch(ctx, year)
	if err != nil {
		return fail(fmt.Errorf("fetch %s: %w", result.SourceFile, err))
	}

	battingWriter := staging.NewWriter(pool, battingBatch.ID, result.SourceFile, opts.StagingPageSize)
	pitchingWriter := staging.NewWriter(pool, pitchingBatch.ID, result.SourceFile, opts.StagingPageSize)

	err = source.ReadRows(body, func(row source.RawRow) error {
		b, p := classify.Split(row)
		if b != nil {
			if err := battingWriter.Append(ctx, b); err != nil {
				return err
			}
		}
		if p != nil {
			if err := pitchingWriter.Append(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	body.Close()
	if err != nil {
		return fail(fmt.Errorf("stage %s: %w", result.SourceFile, err))
	}
	if err := battingWriter.Flush(ctx); err != nil {
		return fail(err)
	}
	if err := pitchingWriter.Flush(ctx); err != nil {
		return fail(err)
	}
	result.Batting.Staged = battingWriter.Total()
	result.Pitching.Staged = pitchingWriter.Total()
	logger.Info("Staging done", "year", year,
		"batting_rows", result.Batting.Staged, "pitching_rows", result.Pitching.Staged)

	if err := batch.Start(ctx, pool, battingBatch.ID, result.Batting.Staged); err != nil {
		return fail(err)
	}
	if err := batch.Start(ctx, pool, pitchingBatch.ID, result.Pitching.Staged); err != nil {
		return fail(err)
	}

	if opts.SkipTransform {
		// Staged but uninterpreted: the batches stay in_progress and the
		// staging rows are kept so a resume can pick them up.
		logger.Info("Transform skipped", "year", year)
		result.Duration = time.Since(start)
		return result, nil
	}

	for _, run := range []struct {
		b      *batch.Batch
		domain model.Domain
		out    *DomainResult
	}{
		{battingBatch, model.DomainBatting, &result.Batting},
		{pitchingBatch, model.DomainPitching, &result.Pitching},
	} {
		tr, err := transform.Run(ctx, pool, run.b.ID, run.domain, opts.TransformPageSize, logger)
		if err != nil {
			return fail(fmt.Errorf("transform %s: %w", run.domain, err))
		}
		run.out.Transform = tr

		if err := batch.Complete(ctx, pool, run.b.ID, tr.RowsProcessed); err != nil {
			return fail(err)
		}
		if _, err := staging.Clear(ctx, pool, run.b.ID); err != nil {
			return fail(err)
		}
		logger.Info("Domain ingested", "year", year, "domain", run.domain, "summary", tr.Summary())
	}

	result.Duration = time.Since(start)
	logger.Info("Season ingested", "year", year, "summary", result.Summary())
	return result, nil
}

// Seasons ingests a range of years. A year's failure (including a missing
// source file) is recorded and the run continues with the next year.
func Seasons(ctx context.Context, pool *pgxpool.Pool, fetcher *source.Fetcher, years []int, opts Options, logger *slog.Logger) ([]SeasonResult, []error) {
	var results []SeasonResult
	var errs []error
	for _, year := range years {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		res, err := Season(ctx, pool, fetcher, year, opts, logger)
		results = append(results, res)
		if err != nil {
			logger.Error("Season failed", "year", year, "error", err)
			errs = append(errs, fmt.Errorf("year %d: %w", year, err))
		}
	}
	return results, errs
}

// Resume re-runs the Transformer over a batch's remaining unprocessed rows
// and finalizes the batch. Safe after a crash or a --skip-transform run.
func Resume(ctx context.Context, pool *pgxpool.Pool, b *batch.Batch, pageSize int, logger *slog.Logger) (transform.Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	release := locks.acquire(b.Domain, b.Year)
	defer release()

	tr, err := transform.Run(ctx, pool, b.ID, b.Domain, pageSize, logger)
	if err != nil {
		if ferr := batch.Fail(ctx, pool, b.ID, err.Error()); ferr != nil {
			logger.Error("Could not mark batch failed", "batch", b.ID, "error", ferr)
		}
		return tr, err
	}

	processed := b.ProcessedRows + tr.RowsProcessed
	if err := batch.Complete(ctx, pool, b.ID, processed); err != nil {
		return tr, err
	}
	if _, err := staging.Clear(ctx, pool, b.ID); err != nil {
		return tr, err
	}
	logger.Info("Batch resumed", "batch", b.ID, "summary", tr.Summary())
	return tr, nil
}
