package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/chukwumela909/project-bolt/internal/logging"
)

// SQLiteRecorder persists history to a SQLite database. Amounts are stored
// as decimal strings so they round-trip exactly.
type SQLiteRecorder struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A watching dashboard writes while `stakedash history` reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, path: dbPath}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logging.Debug("history recorder opened", "path", dbPath, logging.Component("recorder"))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        INTEGER NOT NULL,
			total_staked     TEXT NOT NULL,
			total_rewards    TEXT NOT NULL,
			daily_rewards    TEXT NOT NULL,
			referral_rewards TEXT NOT NULL,
			active_stakes    INTEGER NOT NULL,
			eth_usd          TEXT NOT NULL,
			price_fallback   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(timestamp)`,

		`CREATE TABLE IF NOT EXISTS actions (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			kind      TEXT NOT NULL,
			outcome   TEXT NOT NULL,
			target    TEXT,
			message   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_ts ON actions(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSnapshot(ctx context.Context, snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := snap.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO snapshots
		(timestamp, total_staked, total_rewards, daily_rewards, referral_rewards,
		 active_stakes, eth_usd, price_fallback)
		VALUES (?,?,?,?,?,?,?,?)`,
		at.Unix(), snap.TotalStaked.String(), snap.TotalRewards.String(),
		snap.DailyRewards.String(), snap.ReferralRewards.String(),
		snap.ActiveStakes, snap.ETHUSD.String(), boolToInt(snap.PriceFallback),
	)
	if err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordAction(ctx context.Context, evt *ActionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO actions
		(timestamp, kind, outcome, target, message)
		VALUES (?,?,?,?,?)`,
		at.Unix(), evt.Kind, evt.Outcome, evt.Target, evt.Message,
	)
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	return nil
}

// Snapshots returns up to limit snapshots, newest first.
func (r *SQLiteRecorder) Snapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
		timestamp, total_staked, total_rewards, daily_rewards, referral_rewards,
		active_stakes, eth_usd, price_fallback
		FROM snapshots ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			ts                                 int64
			staked, rewards, daily, ref, price string
			fallback                           int
			s                                  Snapshot
		)
		if err := rows.Scan(&ts, &staked, &rewards, &daily, &ref, &s.ActiveStakes, &price, &fallback); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.At = time.Unix(ts, 0)
		s.PriceFallback = fallback != 0
		for _, f := range []struct {
			dst *decimal.Decimal
			raw string
		}{
			{&s.TotalStaked, staked},
			{&s.TotalRewards, rewards},
			{&s.DailyRewards, daily},
			{&s.ReferralRewards, ref},
			{&s.ETHUSD, price},
		} {
			d, err := decimal.NewFromString(f.raw)
			if err != nil {
				return nil, fmt.Errorf("snapshot at %d: %w", ts, err)
			}
			*f.dst = d
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Actions returns up to limit actions, newest first.
func (r *SQLiteRecorder) Actions(ctx context.Context, limit int) ([]ActionEvent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT timestamp, kind, outcome, target, message
		FROM actions ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var out []ActionEvent
	for rows.Next() {
		var (
			ts              int64
			target, message sql.NullString
			e               ActionEvent
		)
		if err := rows.Scan(&ts, &e.Kind, &e.Outcome, &target, &message); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		e.At = time.Unix(ts, 0)
		e.Target = target.String
		e.Message = message.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune deletes rows recorded before the cutoff.
func (r *SQLiteRecorder) Prune(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int64
	for _, table := range []string{"snapshots", "actions"} {
		res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE timestamp < ?", before.Unix())
		if err != nil {
			return total, fmt.Errorf("prune %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if total > 0 {
		logging.Debug("pruned history", "rows", total, logging.Component("recorder"))
	}
	return total, nil
}

func (r *SQLiteRecorder) Close() error {
	logging.Debug("closing history recorder", "path", r.path, logging.Component("recorder"))
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
