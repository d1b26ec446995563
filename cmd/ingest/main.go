// Command ingest is the diamondstats ingestion and scoring CLI.
//
// Usage:
//
//	diamondstats-ingest season --year 1978
//	diamondstats-ingest season --year 1978 --force
//	diamondstats-ingest seasons --from 1971 --to 1980
//	diamondstats-ingest resume --batch 6a1f...
//	diamondstats-ingest score --ruleset standard --year 1978
//	diamondstats-ingest ruleset load rulesets/standard.yaml
//	diamondstats-ingest ruleset list
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/diamondstats/internal/batch"
	"github.com/albapepper/diamondstats/internal/config"
	"github.com/albapepper/diamondstats/internal/db"
	"github.com/albapepper/diamondstats/internal/ingest"
	"github.com/albapepper/diamondstats/internal/points"
	"github.com/albapepper/diamondstats/internal/ruleset"
	"github.com/albapepper/diamondstats/internal/source"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "diamondstats-ingest",
		Short: "Diamondstats ingestion and scoring CLI",
	}

	root.AddCommand(seasonCmd())
	root.AddCommand(seasonsCmd())
	root.AddCommand(resumeCmd())
	root.AddCommand(scoreCmd())
	root.AddCommand(rulesetCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// season / seasons commands
// --------------------------------------------------------------------------

func seasonCmd() *cobra.Command {
	var (
		year          int
		force         bool
		skipTransform bool
	)
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Ingest one season of the unified source file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				return fmt.Errorf("--year is required")
			}
			return runWithPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				fetcher := source.NewFetcher(cfg.SourceBaseURL, cfg.SourceLocalDir, cfg.SourceRatePerMinute, logger)
				start := time.Now()
				result, err := ingest.Season(ctx, pool.Pool, fetcher, year, ingestOptions(cfg, force, skipTransform), logger)
				if err != nil {
					return err
				}
				logger.Info("Season finished",
					"duration", time.Since(start).Round(time.Second),
					"summary", result.Summary())
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Season year to ingest")
	cmd.Flags().BoolVar(&force, "force", false, "Re-ingest even if completed batches exist")
	cmd.Flags().BoolVar(&skipTransform, "skip-transform", false, "Stage rows without transforming them")
	return cmd
}

func seasonsCmd() *cobra.Command {
	var (
		from, to int
		force    bool
	)
	cmd := &cobra.Command{
		Use:   "seasons",
		Short: "Ingest a range of seasons; a failed year does not stop the run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == 0 || to == 0 || to < from {
				return fmt.Errorf("--from and --to must define a valid year range")
			}
			return runWithPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				fetcher := source.NewFetcher(cfg.SourceBaseURL, cfg.SourceLocalDir, cfg.SourceRatePerMinute, logger)
				years := make([]int, 0, to-from+1)
				for y := from; y <= to; y++ {
					years = append(years, y)
				}

				start := time.Now()
				results, errs := ingest.Seasons(ctx, pool.Pool, fetcher, years, ingestOptions(cfg, force, false), logger)
				for _, r := range results {
					logger.Info("Season result", "summary", r.Summary())
				}
				logger.Info("Seasons finished",
					"years", len(years), "failed", len(errs),
					"duration", time.Since(start).Round(time.Second))
				for _, e := range errs {
					logger.Error("season error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "First season year")
	cmd.Flags().IntVar(&to, "to", 0, "Last season year (inclusive)")
	cmd.Flags().BoolVar(&force, "force", false, "Re-ingest even if completed batches exist")
	return cmd
}

func resumeCmd() *cobra.Command {
	var batchID string
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume transforming a partially processed batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(batchID)
			if err != nil {
				return fmt.Errorf("--batch must be a UUID: %w", err)
			}
			return runWithPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				b, err := batch.Get(ctx, pool.Pool, id)
				if err != nil {
					return err
				}
				start := time.Now()
				result, err := ingest.Resume(ctx, pool.Pool, b, cfg.TransformPageSize, logger)
				if err != nil {
					return err
				}
				logger.Info("Resume finished",
					"batch", id, "duration", time.Since(start).Round(time.Second),
					"summary", result.Summary())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&batchID, "batch", "", "Batch UUID to resume")
	return cmd
}

// --------------------------------------------------------------------------
// score command
// --------------------------------------------------------------------------

func scoreCmd() *cobra.Command {
	var (
		rulesetID string
		year      int
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute fantasy points for a season under a ruleset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rulesetID == "" {
				return fmt.Errorf("--ruleset is required")
			}
			if year == 0 {
				return fmt.Errorf("--year is required")
			}
			return runWithPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				rs, err := ruleset.Get(ctx, pool.Pool, rulesetID)
				if err != nil {
					return err
				}
				start := time.Now()
				result, err := points.ComputeSeason(ctx, pool.Pool, rs, year, logger)
				if err != nil {
					return err
				}
				logger.Info("Scoring finished",
					"ruleset", rs.ID, "year", year,
					"duration", time.Since(start).Round(time.Second),
					"summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("scoring error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rulesetID, "ruleset", "", "Ruleset id to score with")
	cmd.Flags().IntVar(&year, "year", 0, "Season year to score")
	return cmd
}

// --------------------------------------------------------------------------
// ruleset commands
// --------------------------------------------------------------------------

func rulesetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ruleset",
		Short: "Manage scoring rulesets",
	}
	cmd.AddCommand(rulesetLoadCmd())
	cmd.AddCommand(rulesetListCmd())
	return cmd
}

func rulesetLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <file.yaml>",
		Short: "Load a YAML ruleset document into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := ruleset.LoadFile(args[0])
			if err != nil {
				return err
			}
			return runWithPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if err := ruleset.Save(ctx, pool.Pool, rs); err != nil {
					return err
				}
				logger.Info("Ruleset saved", "id", rs.ID, "name", rs.Name,
					"batting_rules", len(rs.Batting), "pitching_rules", len(rs.Pitching),
					"bonuses", len(rs.Bonuses))
				return nil
			})
		},
	}
	return cmd
}

func rulesetListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored rulesets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				infos, err := ruleset.List(ctx, pool.Pool)
				if err != nil {
					return err
				}
				for _, info := range infos {
					fmt.Printf("%s\t%s\n", info.ID, info.Name)
				}
				return nil
			})
		},
	}
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

func ingestOptions(cfg *config.Config, force, skipTransform bool) ingest.Options {
	return ingest.Options{
		Force:             force,
		SkipTransform:     skipTransform,
		StagingPageSize:   cfg.StagingPageSize,
		TransformPageSize: cfg.TransformPageSize,
	}
}

// runWithPool handles config loading, DB connection, and context cancellation.
func runWithPool(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
