package logging

import (
	"context"
	"log/slog"
)

// AuditEvent describes a request that changed state on the backend, or a
// session change.
type AuditEvent struct {
	Operation string // deposit, unstake, restake, withdraw, login, logout
	Actor     string // account email when known
	Target    string // stake id, plan id or destination address
	Result    string // success or failure
	Details   string
}

// Audit writes event at info level under an "audit" group.
func Audit(event AuditEvent) {
	attrs := []any{slog.String("operation", event.Operation), slog.String("result", event.Result)}
	for _, f := range [][2]string{{"actor", event.Actor}, {"target", event.Target}, {"details", event.Details}} {
		if f[1] != "" {
			attrs = append(attrs, slog.String(f[0], f[1]))
		}
	}
	Logger().LogAttrs(context.Background(), slog.LevelInfo, "audit", slog.Group("audit", attrs...))
}
