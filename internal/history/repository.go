package history

import (
	"context"
	"fmt"
	"time"

	"github.com/scandeer/printbridge/internal/bridge"
	"github.com/scandeer/printbridge/internal/infrastructure/database"
)

// queryTimeout bounds journal queries so a locked database cannot stall
// the job pipeline.
const queryTimeout = 5 * time.Second

// schema is idempotent: applied on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS job_history (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp_ms INTEGER NOT NULL,
	printer_id   TEXT    NOT NULL,
	order_id     TEXT    NOT NULL,
	page         INTEGER NOT NULL,
	status       TEXT    NOT NULL,
	print_time   REAL    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_job_history_order ON job_history(order_id);
CREATE INDEX IF NOT EXISTS idx_job_history_time  ON job_history(timestamp_ms);
`

// Repository is the local job journal. Every job outcome is recorded
// here regardless of whether the status record reached the broker, so
// the paper trail survives connectivity gaps.
type Repository struct {
	db *database.DB
}

// NewRepository wraps an open database. Call EnsureSchema before use.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the journal tables if they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating job history schema: %w", err)
	}
	return nil
}

// RecordJob inserts one job outcome. Satisfies bridge.Journal.
func (r *Repository) RecordJob(rec bridge.StatusRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO job_history (timestamp_ms, printer_id, order_id, page, status, print_time)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.TimestampMS, rec.PrinterID, rec.OrderID, rec.Page, rec.Status, rec.PrintTime,
	)
	if err != nil {
		return fmt.Errorf("recording job outcome: %w", err)
	}
	return nil
}

// Recent returns the newest job outcomes, most recent first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]bridge.StatusRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT timestamp_ms, printer_id, order_id, page, status, print_time
		 FROM job_history
		 ORDER BY timestamp_ms DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying job history: %w", err)
	}
	defer rows.Close()

	var records []bridge.StatusRecord
	for rows.Next() {
		var rec bridge.StatusRecord
		if err := rows.Scan(&rec.TimestampMS, &rec.PrinterID, &rec.OrderID, &rec.Page, &rec.Status, &rec.PrintTime); err != nil {
			return nil, fmt.Errorf("scanning job history row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating job history: %w", err)
	}
	return records, nil
}

// Counts summarizes the journal by outcome.
type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Counts returns outcome totals across the whole journal.
func (r *Repository) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := r.db.QueryRowContext(ctx,
		`SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		 FROM job_history`,
		bridge.JobStatusCompleted, bridge.JobStatusFailed,
	).Scan(&c.Total, &c.Completed, &c.Failed)
	if err != nil {
		return Counts{}, fmt.Errorf("counting job history: %w", err)
	}
	return c, nil
}

// PruneBefore deletes journal entries older than the cutoff and returns
// how many were removed.
func (r *Repository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM job_history WHERE timestamp_ms < ?`,
		cutoff.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning job history: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading pruned row count: %w", err)
	}
	return removed, nil
}
