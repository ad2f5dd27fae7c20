package goTodo

import (
	"io"
	"log/slog"

	internalaudit "github.com/MrEthical07/goTodo/internal/audit"
	internalmetrics "github.com/MrEthical07/goTodo/internal/metrics"
)

// Account is the public view of a registered account. The password hash and
// token list never leave the engine.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Todo is a task owned by exactly one account. CompletedAt is unix
// milliseconds and is null whenever Completed is false.
type Todo struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completedAt"`
	OwnerID     string `json:"ownerId"`
}

// TodoPatch carries the only fields a client may change. A nil Completed, or
// one pointing at false, clears completion.
type TodoPatch struct {
	Text      *string
	Completed *bool
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	AccountID string
	Token     string
}

// RegisterRequest is the input of [Engine.Register].
type RegisterRequest struct {
	Email    string
	Password string
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes JSON-encoded events, one per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// SlogSink writes events through a [slog.Logger].
type SlogSink = internalaudit.SlogSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewSlogSink creates a [SlogSink]; a nil logger means slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return internalaudit.NewSlogSink(logger)
}

// MetricID identifies a counter or histogram in the in-process metrics.
type MetricID = internalmetrics.MetricID

const (
	MetricRegisterSuccess      = MetricID(internalmetrics.MetricRegisterSuccess)
	MetricRegisterDuplicate    = MetricID(internalmetrics.MetricRegisterDuplicate)
	MetricRegisterRejected     = MetricID(internalmetrics.MetricRegisterRejected)
	MetricLoginSuccess         = MetricID(internalmetrics.MetricLoginSuccess)
	MetricLoginFailure         = MetricID(internalmetrics.MetricLoginFailure)
	MetricLoginRateLimited     = MetricID(internalmetrics.MetricLoginRateLimited)
	MetricAuthenticateSuccess  = MetricID(internalmetrics.MetricAuthenticateSuccess)
	MetricAuthenticateRejected = MetricID(internalmetrics.MetricAuthenticateRejected)
	MetricLogout               = MetricID(internalmetrics.MetricLogout)
	MetricTodoCreated          = MetricID(internalmetrics.MetricTodoCreated)
	MetricTodoUpdated          = MetricID(internalmetrics.MetricTodoUpdated)
	MetricTodoDeleted          = MetricID(internalmetrics.MetricTodoDeleted)
	MetricTodoNotFound         = MetricID(internalmetrics.MetricTodoNotFound)
	MetricStoreFailure         = MetricID(internalmetrics.MetricStoreFailure)
	MetricAuthenticateLatency  = MetricID(internalmetrics.MetricAuthenticateLatency)
)

// Metrics holds atomic counters and the optional latency histogram.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance. When cfg.Enabled is false every
// operation is a no-op.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
