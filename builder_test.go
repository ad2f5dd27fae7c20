package goTodo

import (
	"context"
	"testing"

	"github.com/MrEthical07/goTodo/account"
	"github.com/MrEthical07/goTodo/todo"
)

func TestBuildRequiresRedis(t *testing.T) {
	if _, err := New().WithConfig(testConfig()).Build(); err == nil {
		t.Fatal("expected error without redis client")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	defer rdb.Close()

	cfg := testConfig()
	cfg.Token.PrivateKey = nil
	if _, err := New().WithConfig(cfg).WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	defer rdb.Close()

	b := New().WithConfig(testConfig()).WithRedis(rdb)
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuildWithCustomStoresNeedsNoRedis(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	defer rdb.Close()

	engine, err := New().
		WithConfig(testConfig()).
		WithAccountStore(account.NewStore(rdb, "custom")).
		WithTodoStore(todo.NewStore(rdb, "custom")).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	_, token := registerTestAccount(t, engine, "a@b.co")
	if _, err := engine.Authenticate(context.Background(), token); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if mr.Exists("custom:acct:email:a@b.co") == false {
		t.Fatal("expected custom prefix to be used")
	}

	cfg := testConfig()
	cfg.Security.EnableLoginThrottle = true
	if _, err := New().
		WithConfig(cfg).
		WithAccountStore(account.NewStore(rdb, "custom")).
		WithTodoStore(todo.NewStore(rdb, "custom")).
		Build(); err == nil {
		t.Fatal("expected throttle without redis to be rejected")
	}
}
