// Package recorder keeps a local history of dashboard snapshots and
// completed actions.
package recorder

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chukwumela909/project-bolt/internal/config"
)

// Snapshot is the account summary as shown at one refresh.
type Snapshot struct {
	At              time.Time
	TotalStaked     decimal.Decimal
	TotalRewards    decimal.Decimal
	DailyRewards    decimal.Decimal
	ReferralRewards decimal.Decimal
	ActiveStakes    int
	ETHUSD          decimal.Decimal
	PriceFallback   bool
}

// ActionEvent is one completed deposit, unstake, restake or withdraw.
type ActionEvent struct {
	At      time.Time
	Kind    string
	Outcome string
	Target  string // stake id, plan id or destination address
	Message string
}

// Recorder persists history for the `history` command.
type Recorder interface {
	RecordSnapshot(ctx context.Context, snap *Snapshot) error
	RecordAction(ctx context.Context, evt *ActionEvent) error
	Snapshots(ctx context.Context, limit int) ([]Snapshot, error)
	Actions(ctx context.Context, limit int) ([]ActionEvent, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
	Close() error
}

// Open returns a SQLite recorder for cfg, or a no-op recorder when history
// is disabled. Rows older than cfg.RetainDays are pruned on open.
func Open(ctx context.Context, cfg config.HistoryConfig) (Recorder, error) {
	if !cfg.Enabled {
		return NewNoopRecorder(), nil
	}
	r, err := NewSQLiteRecorder(cfg.Path)
	if err != nil {
		return nil, err
	}
	if cfg.RetainDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -cfg.RetainDays)
		if _, err := r.Prune(ctx, cutoff); err != nil {
			r.Close()
			return nil, err
		}
	}
	return r, nil
}
