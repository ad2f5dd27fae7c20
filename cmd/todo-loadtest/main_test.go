package main

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	goTodo "github.com/MrEthical07/goTodo"
	"github.com/MrEthical07/goTodo/account"
)

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(samples, 50); got != 5 {
		t.Fatalf("p50 = %d, want 5", got)
	}
	if got := percentile(samples, 100); got != 10 {
		t.Fatalf("p100 = %d, want 10", got)
	}
	if got := percentile(nil, 99); got != 0 {
		t.Fatalf("empty percentile = %d", got)
	}
}

func TestRunPhaseCountsEveryOp(t *testing.T) {
	stats := runPhase(100, 4, func(_ *rand.Rand, i int) error {
		if i%10 == 0 {
			return errors.New("boom")
		}
		return nil
	})
	if stats.ops != 100 || stats.failures != 10 {
		t.Fatalf("unexpected stats: ops=%d failures=%d", stats.ops, stats.failures)
	}
}

func TestSeedAgainstMiniredis(t *testing.T) {
	client, cleanup, err := connect("")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer cleanup()

	cfg := goTodo.DefaultConfig()
	cfg.Token.PrivateKey = []byte("loadtest-signing-secret-0123456789")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	engine, err := goTodo.New().WithConfig(cfg).WithRedis(client).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	seeded, err := seed(context.Background(), engine, 3, 2)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	for _, a := range seeded {
		p, err := engine.Authenticate(context.Background(), a.token)
		if err != nil || p.AccountID != a.id {
			t.Fatalf("seeded token should authenticate: %v", err)
		}
		if len(a.todos) != 2 {
			t.Fatalf("expected 2 tasks, got %d", len(a.todos))
		}
	}

	sessions, err := countSessions(context.Background(), account.NewStore(client, cfg.Store.KeyPrefix), seeded)
	if err != nil {
		t.Fatalf("countSessions failed: %v", err)
	}
	if sessions != 3 {
		t.Fatalf("expected one session per account, got %d", sessions)
	}
}
