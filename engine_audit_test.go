package goTodo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func collectAudit(t *testing.T, sink *ChannelSink, n int) []AuditEvent {
	t.Helper()

	out := make([]AuditEvent, 0, n)
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case ev := <-sink.Events():
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("timed out after %d of %d audit events", len(out), n)
		}
	}
	return out
}

func TestAuditEventsForAccountLifecycle(t *testing.T) {
	sink := NewChannelSink(32)
	engine, _ := newTestEngine(t, func(b *Builder) {
		cfg := testConfig()
		cfg.Audit.Enabled = true
		cfg.Audit.DropIfFull = false
		b.WithConfig(cfg).WithAuditSink(sink)
	})
	ctx := WithClientIP(context.Background(), "192.0.2.7")

	acct, token, err := engine.Register(ctx, RegisterRequest{Email: "a@b.co", Password: "pw"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, _, err := engine.Login(ctx, "a@b.co", "bad"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := engine.Logout(ctx, acct.ID, token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := engine.Authenticate(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	events := collectAudit(t, sink, 4)
	want := []string{
		auditEventAccountRegistered,
		auditEventLoginFailure,
		auditEventLogout,
		auditEventAuthRejected,
	}
	for i, ev := range events {
		if ev.EventType != want[i] {
			t.Fatalf("event %d = %q, want %q", i, ev.EventType, want[i])
		}
		if ev.IP != "192.0.2.7" {
			t.Fatalf("event %d missing client ip: %+v", i, ev)
		}
	}
	if events[0].AccountID != acct.ID || !events[0].Success {
		t.Fatalf("unexpected registration event: %+v", events[0])
	}
	if events[1].Error != string(auditErrInvalidCredentials) {
		t.Fatalf("unexpected login failure code: %q", events[1].Error)
	}
	if events[3].Metadata["reason"] != "revoked" {
		t.Fatalf("unexpected auth rejection reason: %v", events[3].Metadata)
	}
}

func TestAuditErrorCodeMapping(t *testing.T) {
	tests := []struct {
		err  error
		want AuditErrorCode
	}{
		{nil, ""},
		{ErrUnauthorized, auditErrUnauthorized},
		{ErrInvalidCredentials, auditErrInvalidCredentials},
		{ErrLoginRateLimited, auditErrRateLimited},
		{ErrRegistrationRateLimited, auditErrRateLimited},
		{ErrDuplicateEmail, auditErrDuplicate},
		{ErrValidation, auditErrValidation},
		{ErrNotFound, auditErrNotFound},
		{ErrPersistence, auditErrUnavailable},
		{errors.New("boom"), auditErrInternal},
	}
	for _, tc := range tests {
		if got := auditErrorCode(tc.err); got != tc.want {
			t.Fatalf("auditErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestMetricsCountOperations(t *testing.T) {
	engine, _ := newTestEngine(t, func(b *Builder) {
		b.WithMetricsEnabled(true).WithLatencyHistograms(true)
	})
	ctx := context.Background()

	acct, token := registerTestAccount(t, engine, "a@b.co")
	if _, err := engine.Authenticate(ctx, token); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if _, err := engine.Authenticate(ctx, "garbage"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	task, err := engine.CreateTodo(ctx, acct.ID, "x")
	if err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}
	if _, err := engine.GetTodo(ctx, acct.ID, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := engine.DeleteTodo(ctx, acct.ID, task.ID); err != nil {
		t.Fatalf("DeleteTodo failed: %v", err)
	}

	snap := engine.MetricsSnapshot()
	checks := map[MetricID]uint64{
		MetricRegisterSuccess:      1,
		MetricAuthenticateSuccess:  1,
		MetricAuthenticateRejected: 1,
		MetricTodoCreated:          1,
		MetricTodoNotFound:         1,
		MetricTodoDeleted:          1,
	}
	for id, want := range checks {
		if got := snap.Counters[id]; got != want {
			t.Fatalf("counter %d = %d, want %d", id, got, want)
		}
	}

	var observed uint64
	for _, c := range snap.Histograms[MetricAuthenticateLatency] {
		observed += c
	}
	if observed != 2 {
		t.Fatalf("expected 2 latency observations, got %d", observed)
	}
}
