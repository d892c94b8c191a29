package recorder

import (
	"context"
	"time"
)

// NoopRecorder is used when history is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshot(context.Context, *Snapshot) error     { return nil }
func (n *NoopRecorder) RecordAction(context.Context, *ActionEvent) error    { return nil }
func (n *NoopRecorder) Snapshots(context.Context, int) ([]Snapshot, error)  { return nil, nil }
func (n *NoopRecorder) Actions(context.Context, int) ([]ActionEvent, error) { return nil, nil }
func (n *NoopRecorder) Prune(context.Context, time.Time) (int64, error)     { return 0, nil }
func (n *NoopRecorder) Close() error                                        { return nil }

