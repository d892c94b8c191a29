package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// secretKeys are key fragments whose values are never logged.
var secretKeys = []string{"token", "password", "secret", "private_key", "api_key", "apikey", "authorization", "credential"}

// benignKeys match secretKeys but only describe a credential.
var benignKeys = map[string]bool{
	"token_source":  true,
	"token_present": true,
}

// scrubbers rewrite credentials embedded in free text such as error
// messages that quote a request.
var scrubbers = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]+`), "Bearer " + redacted},
	{regexp.MustCompile(`"(token|password)"\s*:\s*"[^"]*"`), `"$1":"` + redacted + `"`},
	{regexp.MustCompile(`\b0x[0-9a-fA-F]{64}\b`), redacted},
}

// RedactingHandler scrubs session tokens, API keys and passwords from
// records before passing them on.
type RedactingHandler struct {
	next slog.Handler
}

func NewRedactingHandler(next slog.Handler) *RedactingHandler {
	return &RedactingHandler{next: next}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, scrub(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(clean(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		cleaned = append(cleaned, clean(a))
	}
	return NewRedactingHandler(h.next.WithAttrs(cleaned))
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return NewRedactingHandler(h.next.WithGroup(name))
}

func secretKey(key string) bool {
	key = strings.ToLower(key)
	if benignKeys[key] {
		return false
	}
	for _, frag := range secretKeys {
		if strings.Contains(key, frag) {
			return true
		}
	}
	return false
}

func clean(a slog.Attr) slog.Attr {
	if secretKey(a.Key) {
		return slog.String(a.Key, redacted)
	}
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		members := v.Group()
		cleaned := make([]slog.Attr, len(members))
		for i, m := range members {
			cleaned[i] = clean(m)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(cleaned...)}
	case slog.KindString:
		return slog.String(a.Key, scrub(v.String()))
	default:
		return slog.Attr{Key: a.Key, Value: v}
	}
}

func scrub(s string) string {
	for _, sc := range scrubbers {
		s = sc.re.ReplaceAllString(s, sc.repl)
	}
	return s
}
