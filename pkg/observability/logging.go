// Package observability carries the ambient logging, metrics, and
// tracing stack every keeper is wired to, mirroring the teacher's
// observability package but trimmed to what this protocol core
// actually emits: no HTTP/gRPC server, no webhook delivery, just
// structured logs, Prometheus counters/gauges, and an OTLP trace
// exporter a caller can wire into the orchestrator.
package observability

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Setup configures a JSON slog.Logger with renamed keys (timestamp,
// severity, message) and a service/environment prefix, then installs
// it as the process default — the same shape as the teacher's
// observability/logging.Setup.
func Setup(service, env string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: false,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				return slog.Attr{Key: "timestamp", Value: attr.Value}
			case slog.LevelKey:
				return slog.String("severity", strings.ToUpper(attr.Value.String()))
			case slog.MessageKey:
				return slog.Attr{Key: "message", Value: attr.Value}
			}
			return attr
		},
	})

	attrs := []slog.Attr{slog.String("service", strings.TrimSpace(service))}
	if env = strings.TrimSpace(env); env != "" {
		attrs = append(attrs, slog.String("env", env))
	}
	withArgs := make([]any, len(attrs))
	for i, a := range attrs {
		withArgs[i] = a
	}

	base := slog.New(handler).With(withArgs...)
	slog.SetDefault(base)

	stdBridge := slog.NewLogLogger(handler.WithAttrs(attrs), slog.LevelInfo)
	stdBridge.SetFlags(0)
	log.SetOutput(stdBridge.Writer())
	log.SetFlags(0)
	log.SetPrefix("")

	return base
}

// CorrelationID mints a fresh random identifier (a UUID string) a
// caller can attach to the log lines of one operation. The keepers and
// events in this module do not attach one themselves.
func CorrelationID() string {
	return uuid.NewString()
}
