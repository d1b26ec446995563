// Package staging persists raw, uninterpreted rows under a batch identifier
// so interpretation can resume safely after a crash.
//
// Rows are appended in fixed-size pages; each page is written inside one
// transaction, so a page either lands fully or not at all. A failure mid
// batch leaves the batch partially staged — retries mint a new batch id
// rather than reusing one.
package staging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/diamondstats/internal/source"
)

// DefaultPageSize bounds the size of one staging transaction.
const DefaultPageSize = 500

// Row is one staged row read back for transformation.
type Row struct {
	RowNum int64
	Data   source.RawRow
}

// Writer appends rows for one batch in fixed-size pages.
// Not safe for concurrent use; the pipeline stages sequentially.
type Writer struct {
	pool       *pgxpool.Pool
	batchID    uuid.UUID
	sourceFile string
	pageSize   int

	buf   []source.RawRow
	next  int64
	total int
}

// NewWriter creates a Writer for the given batch.
func NewWriter(pool *pgxpool.Pool, batchID uuid.UUID, sourceFile string, pageSize int) *Writer {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Writer{
		pool:       pool,
		batchID:    batchID,
		sourceFile: sourceFile,
		pageSize:   pageSize,
		buf:        make([]source.RawRow, 0, pageSize),
		next:       1,
	}
}

// Append buffers a row, flushing a full page when the buffer fills.
func (w *Writer) Append(ctx context.Context, row source.RawRow) error {
	w.buf = append(w.buf, row)
	if len(w.buf) >= w.pageSize {
		return w.flush(ctx)
	}
	return nil
}

// Flush writes any buffered partial page. Call once after the last Append.
func (w *Writer) Flush(ctx context.Context) error {
	if len(w.buf) == 0 {
		return nil
	}
	return w.flush(ctx)
}

// Total returns the number of rows durably staged so far.
func (w *Writer) Total() int {
	return w.total
}

func (w *Writer) flush(ctx context.Context) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin staging page: %w", err)
	}
	defer tx.Rollback(ctx)

	b := &pgx.Batch{}
	for i, row := range w.buf {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshal staged row %d: %w", w.next+int64(i), err)
		}
		b.Queue(`
			INSERT INTO staging_rows (batch_id, source_file, row_num, data, processed)
			VALUES ($1, $2, $3, $4, false)`,
			w.batchID, w.sourceFile, w.next+int64(i), data,
		)
	}

	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("stage page at row %d: %w", w.next, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit staging page: %w", err)
	}

	w.next += int64(len(w.buf))
	w.total += len(w.buf)
	w.buf = w.buf[:0]
	return nil
}

// UnprocessedPage returns up to limit unprocessed rows for a batch, ordered
// by row_num.
func UnprocessedPage(ctx context.Context, pool *pgxpool.Pool, batchID uuid.UUID, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	rows, err := pool.Query(ctx, "staging_unprocessed_page", batchID, limit)
	if err != nil {
		return nil, fmt.Errorf("read staging page: %w", err)
	}
	defer rows.Close()

	var page []Row
	for rows.Next() {
		var r Row
		var data []byte
		if err := rows.Scan(&r.RowNum, &data); err != nil {
			return nil, fmt.Errorf("scan staged row: %w", err)
		}
		if err := json.Unmarshal(data, &r.Data); err != nil {
			return nil, fmt.Errorf("unmarshal staged row %d: %w", r.RowNum, err)
		}
		page = append(page, r)
	}
	return page, rows.Err()
}

// UnprocessedCount returns how many rows in the batch still need transforming.
func UnprocessedCount(ctx context.Context, pool *pgxpool.Pool, batchID uuid.UUID) (int, error) {
	var n int
	if err := pool.QueryRow(ctx, "staging_unprocessed_count", batchID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unprocessed rows: %w", err)
	}
	return n, nil
}

// MarkProcessed flags the given rows as interpreted. Called only after the
// page's upserts have committed; this flag is the sole resumability marker.
func MarkProcessed(ctx context.Context, pool *pgxpool.Pool, batchID uuid.UUID, rowNums []int64) error {
	if len(rowNums) == 0 {
		return nil
	}
	_, err := pool.Exec(ctx, `
		UPDATE staging_rows SET processed = true
		WHERE batch_id = $1 AND row_num = ANY($2)`,
		batchID, rowNums,
	)
	if err != nil {
		return fmt.Errorf("mark rows processed: %w", err)
	}
	return nil
}

// Clear deletes all staged rows for a fully processed batch.
func Clear(ctx context.Context, pool *pgxpool.Pool, batchID uuid.UUID) (int64, error) {
	tag, err := pool.Exec(ctx, "DELETE FROM staging_rows WHERE batch_id = $1", batchID)
	if err != nil {
		return 0, fmt.Errorf("clear staging rows: %w", err)
	}
	return tag.RowsAffected(), nil
}
