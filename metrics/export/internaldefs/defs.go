package internaldefs

import (
	goTodo "github.com/MrEthical07/goTodo"
)

// CounterDef names one engine counter.
type CounterDef struct {
	ID   goTodo.MetricID
	Name string
	Help string
}

// HistogramDef names one engine latency histogram.
type HistogramDef struct {
	ID   goTodo.MetricID
	Name string
	Help string
}

// Counter exported for audit dispatcher drops.
const (
	AuditDroppedName = "gotodo_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."
)

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: goTodo.MetricRegisterSuccess, Name: "gotodo_register_success_total", Help: "Accounts registered."},
	{ID: goTodo.MetricRegisterDuplicate, Name: "gotodo_register_duplicate_total", Help: "Registrations rejected because the email was taken."},
	{ID: goTodo.MetricRegisterRejected, Name: "gotodo_register_rejected_total", Help: "Registrations rejected by validation or rate limiting."},
	{ID: goTodo.MetricLoginSuccess, Name: "gotodo_login_success_total", Help: "Successful logins."},
	{ID: goTodo.MetricLoginFailure, Name: "gotodo_login_failure_total", Help: "Logins rejected for bad credentials."},
	{ID: goTodo.MetricLoginRateLimited, Name: "gotodo_login_rate_limited_total", Help: "Logins rejected by the failed-attempt throttle."},
	{ID: goTodo.MetricAuthenticateSuccess, Name: "gotodo_authenticate_success_total", Help: "Requests admitted with a listed session token."},
	{ID: goTodo.MetricAuthenticateRejected, Name: "gotodo_authenticate_rejected_total", Help: "Requests rejected as unauthorized."},
	{ID: goTodo.MetricLogout, Name: "gotodo_logout_total", Help: "Session tokens revoked by logout."},
	{ID: goTodo.MetricTodoCreated, Name: "gotodo_todo_created_total", Help: "Tasks created."},
	{ID: goTodo.MetricTodoUpdated, Name: "gotodo_todo_updated_total", Help: "Tasks updated."},
	{ID: goTodo.MetricTodoDeleted, Name: "gotodo_todo_deleted_total", Help: "Tasks deleted."},
	{ID: goTodo.MetricTodoNotFound, Name: "gotodo_todo_not_found_total", Help: "Task lookups that matched nothing owned by the caller."},
	{ID: goTodo.MetricStoreFailure, Name: "gotodo_store_failure_total", Help: "Operations that failed on the backing store."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goTodo.MetricAuthenticateLatency, Name: "gotodo_authenticate_latency_seconds", Help: "Authenticate latency."},
}

// HistogramBounds are the Prometheus le labels, matching the engine's
// 5ms to 500ms buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix names the same bounds for instruments that cannot
// carry labels.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count. A nil
// slice, as reported when latency collection is off, yields all zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets converts per-bucket counts to running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
