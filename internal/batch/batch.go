// Package batch tracks ingestion attempts through a per-(domain, year)
// lifecycle state machine.
//
// Transitions are monotonic: pending -> in_progress -> completed | failed.
// completed and failed are terminal. Transitions are enforced with guarded
// UPDATEs so a regression is impossible even under a racing writer.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/diamondstats/internal/model"
)

// Status is the lifecycle state of an ingestion batch.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ErrInvalidTransition is returned when a requested transition is not legal
// from the batch's current status.
var ErrInvalidTransition = errors.New("invalid batch status transition")

// ErrNotFound is returned when no batch exists for the given id.
var ErrNotFound = errors.New("batch not found")

// Batch is one logical ingestion attempt for one (domain, year) pair.
type Batch struct {
	ID            uuid.UUID
	Domain        model.Domain
	SourceFile    string
	Year          int
	Status        Status
	TotalRows     int
	ProcessedRows int
	StartedAt     time.Time
	CompletedAt   *time.Time
	Error         *string
}

// Create records a new pending batch with a freshly minted id. Batch ids are
// never reused; a retry after a partial failure gets a new one.
func Create(ctx context.Context, pool *pgxpool.Pool, domain model.Domain, year int, sourceFile string) (*Batch, error) {
	b := &Batch{
		ID:         uuid.New(),
		Domain:     domain,
		SourceFile: sourceFile,
		Year:       year,
		Status:     StatusPending,
		StartedAt:  time.Now().UTC(),
	}
	_, err := pool.Exec(ctx, `
		INSERT INTO ingestion_batches (id, domain, source_file, year, status, total_rows, processed_rows, started_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $6)`,
		b.ID, string(b.Domain), b.SourceFile, b.Year, string(b.Status), b.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	return b, nil
}

// Start transitions a pending batch to in_progress with its known row count.
func Start(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID, totalRows int) error {
	tag, err := pool.Exec(ctx, `
		UPDATE ingestion_batches
		SET status = 'in_progress', total_rows = $2
		WHERE id = $1 AND status = 'pending'`,
		id, totalRows,
	)
	if err != nil {
		return fmt.Errorf("start batch %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("start batch %s: %w", id, ErrInvalidTransition)
	}
	return nil
}

// Complete transitions an in_progress batch to the terminal completed state.
func Complete(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID, processedRows int) error {
	tag, err := pool.Exec(ctx, `
		UPDATE ingestion_batches
		SET status = 'completed', processed_rows = $2, completed_at = NOW()
		WHERE id = $1 AND status = 'in_progress'`,
		id, processedRows,
	)
	if err != nil {
		return fmt.Errorf("complete batch %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("complete batch %s: %w", id, ErrInvalidTransition)
	}
	return nil
}

// Fail transitions a non-terminal batch to the terminal failed state with
// the captured error message.
func Fail(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID, errMsg string) error {
	tag, err := pool.Exec(ctx, `
		UPDATE ingestion_batches
		SET status = 'failed', error = $2, completed_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'in_progress')`,
		id, errMsg,
	)
	if err != nil {
		return fmt.Errorf("fail batch %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("fail batch %s: %w", id, ErrInvalidTransition)
	}
	return nil
}

// HasCompleted reports whether a completed batch already exists for the
// (domain, year) pair. The orchestrator uses this for skip-on-rerun.
func HasCompleted(ctx context.Context, pool *pgxpool.Pool, domain model.Domain, year int) (bool, error) {
	var one int
	err := pool.QueryRow(ctx, "batch_completed_exists", string(domain), year).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check completed batch: %w", err)
	}
	return true, nil
}

// Get returns a batch by id.
func Get(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*Batch, error) {
	b, err := scanBatch(pool.QueryRow(ctx, "batch_by_id", id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get batch %s: %w", id, err)
	}
	return b, nil
}

// ListForYear returns all batches recorded for a year, newest first.
func ListForYear(ctx context.Context, pool *pgxpool.Pool, year int) ([]Batch, error) {
	rows, err := pool.Query(ctx, "batches_for_year", year)
	if err != nil {
		return nil, fmt.Errorf("list batches for %d: %w", year, err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, *b)
	}
	return batches, rows.Err()
}

func scanBatch(row pgx.Row) (*Batch, error) {
	var b Batch
	var domain, status string
	err := row.Scan(
		&b.ID, &domain, &b.SourceFile, &b.Year, &status,
		&b.TotalRows, &b.ProcessedRows, &b.StartedAt, &b.CompletedAt, &b.Error,
	)
	if err != nil {
		return nil, err
	}
	b.Domain = model.Domain(domain)
	b.Status = Status(status)
	return &b, nil
}
