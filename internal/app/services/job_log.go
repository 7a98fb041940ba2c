package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	slogmulti "github.com/samber/slog-multi"

	"github.com/fr0stylo/lacquer/internal/app/domain"
)

// jobLog collects log records for one job run until they are flushed into
// metrics.logs.
type jobLog struct {
	mu      sync.Mutex
	seq     int64
	pending []domain.JobLogEntry
}

// drain hands back records not yet flushed.
func (l *jobLog) drain() []domain.JobLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.pending
	l.pending = nil
	return out
}

func (l *jobLog) append(entry domain.JobLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	entry.Seq = l.seq
	l.pending = append(l.pending, entry)
}

// newJobLogger fans records out to the process handler and the job log.
// The process handler picks job_id up from the span context.
func newJobLogger(base *slog.Logger, log *jobLog) *slog.Logger {
	return slog.New(slogmulti.Fanout(base.Handler(), &jobLogHandler{log: log}))
}

type jobLogHandler struct {
	log    *jobLog
	attrs  []slog.Attr
	groups []string
}

func (h *jobLogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *jobLogHandler) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]string, len(h.attrs)+record.NumAttrs())
	prefix := strings.Join(h.groups, ".")
	for _, attr := range h.attrs {
		flattenAttr(attrs, "", attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(attrs, prefix, attr)
		return true
	})
	delete(attrs, "job_id")
	if len(attrs) == 0 {
		attrs = nil
	}
	at := record.Time
	if at.IsZero() {
		at = time.Now()
	}
	h.log.append(domain.JobLogEntry{
		At:      at.UTC(),
		Level:   jobLogLevel(record.Level),
		Message: record.Message,
		Attrs:   attrs,
	})
	return nil
}

func (h *jobLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	prefix := strings.Join(h.groups, ".")
	next.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, attr := range attrs {
		if prefix != "" {
			attr.Key = prefix + "." + attr.Key
		}
		next.attrs = append(next.attrs, attr)
	}
	return &next
}

func (h *jobLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

func flattenAttr(out map[string]string, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, child := range attr.Value.Group() {
			flattenAttr(out, key, child)
		}
		return
	}
	if key == "" {
		return
	}
	out[key] = fmt.Sprint(attr.Value.Any())
}

func jobLogLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return domain.LogLevelError
	case level >= slog.LevelWarn:
		return domain.LogLevelWarn
	case level >= slog.LevelInfo:
		return domain.LogLevelInfo
	default:
		return domain.LogLevelDebug
	}
}
