package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pharmaterm/pos-core/internal/application/ports"
	"github.com/pharmaterm/pos-core/internal/domain/pos"
	"github.com/pharmaterm/pos-core/internal/pkg/clock"
)

const schema = `
CREATE TABLE IF NOT EXISTS pending_transactions (
	offline_id  INTEGER PRIMARY KEY AUTOINCREMENT,
	reference   TEXT NOT NULL,
	org_scope   TEXT NOT NULL DEFAULT '',
	payload     TEXT NOT NULL,
	captured_at TIMESTAMP NOT NULL
);
`

// Queue is the durable offline queue, one SQLite file per terminal. The
// AUTOINCREMENT rowid doubles as the offline id: locally unique and
// monotonically increasing, so capture order is replay order.
type Queue struct {
	db  *sql.DB
	clk clock.Clock
}

func Open(path string, clk clock.Clock) (*Queue, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open offline queue: %w", err)
	}

	// One terminal process writes this file; a second connection would
	// only contend.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure offline queue: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate offline queue: %w", err)
	}

	return &Queue{db: db, clk: clk}, nil
}

func (q *Queue) Enqueue(ctx context.Context, payload *pos.CheckoutPayload) (int64, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode pending transaction: %w", err)
	}

	result, err := q.db.ExecContext(ctx, `
		INSERT INTO pending_transactions (reference, org_scope, payload, captured_at)
		VALUES (?, ?, ?, ?)`,
		payload.Reference, payload.OrgScope, string(data), q.clk.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("enqueue pending transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("enqueue pending transaction: %w", err)
	}
	return id, nil
}

// List returns all pending transactions oldest first. A row whose payload
// no longer decodes is returned with Corrupt set instead of being dropped.
func (q *Queue) List(ctx context.Context) ([]ports.PendingTransaction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT offline_id, org_scope, payload, captured_at
		FROM pending_transactions
		ORDER BY offline_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending transactions: %w", err)
	}
	defer rows.Close()

	var entries []ports.PendingTransaction
	for rows.Next() {
		var (
			entry      ports.PendingTransaction
			raw        string
			capturedAt time.Time
		)
		if err := rows.Scan(&entry.OfflineID, &entry.OrgScope, &raw, &capturedAt); err != nil {
			return nil, fmt.Errorf("list pending transactions: %w", err)
		}
		entry.CapturedAt = capturedAt

		var payload pos.CheckoutPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			entry.Corrupt = err
		} else {
			entry.Payload = &payload
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending transactions: %w", err)
	}
	return entries, nil
}

func (q *Queue) Remove(ctx context.Context, offlineID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM pending_transactions WHERE offline_id = ?`, offlineID)
	if err != nil {
		return fmt.Errorf("remove pending transaction %d: %w", offlineID, err)
	}
	return nil
}

func (q *Queue) Clear(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM pending_transactions`)
	if err != nil {
		return fmt.Errorf("clear offline queue: %w", err)
	}
	return nil
}

func (q *Queue) Depth(ctx context.Context) (int, error) {
	var depth int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_transactions`).Scan(&depth)
	if err != nil {
		return 0, fmt.Errorf("offline queue depth: %w", err)
	}
	return depth, nil
}

func (q *Queue) Close() error {
	return q.db.Close()
}
