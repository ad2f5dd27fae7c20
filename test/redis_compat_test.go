//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"testing"

	goTodo "github.com/MrEthical07/goTodo"
)

func TestLifecycleAcrossBackends(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, done := mode.setup(t)
			defer done()
			engine := newEngine(t, rdb, nil)
			ctx := context.Background()

			alice, regToken, err := engine.Register(ctx, goTodo.RegisterRequest{Email: "alice@it.io", Password: "pw-alice"})
			if err != nil {
				t.Fatalf("Register failed: %v", err)
			}
			_, loginToken, err := engine.Login(ctx, "ALICE@it.io", "pw-alice")
			if err != nil {
				t.Fatalf("Login failed: %v", err)
			}
			if loginToken == regToken {
				t.Fatal("login must issue a distinct token")
			}

			task, err := engine.CreateTodo(ctx, alice.ID, "buy milk")
			if err != nil {
				t.Fatalf("CreateTodo failed: %v", err)
			}
			yes := true
			updated, err := engine.UpdateTodo(ctx, alice.ID, task.ID, goTodo.TodoPatch{Completed: &yes})
			if err != nil {
				t.Fatalf("UpdateTodo failed: %v", err)
			}
			if !updated.Completed || updated.CompletedAt == nil {
				t.Fatalf("expected completed task: %+v", updated)
			}

			bob, _, err := engine.Register(ctx, goTodo.RegisterRequest{Email: "bob@it.io", Password: "pw-bob"})
			if err != nil {
				t.Fatalf("Register bob failed: %v", err)
			}
			if _, err := engine.GetTodo(ctx, bob.ID, task.ID); !errors.Is(err, goTodo.ErrNotFound) {
				t.Fatalf("expected ErrNotFound for bob, got %v", err)
			}
			if _, err := engine.DeleteTodo(ctx, bob.ID, task.ID); !errors.Is(err, goTodo.ErrNotFound) {
				t.Fatalf("expected ErrNotFound for bob delete, got %v", err)
			}

			if err := engine.Logout(ctx, alice.ID, regToken); err != nil {
				t.Fatalf("Logout failed: %v", err)
			}
			if _, err := engine.Authenticate(ctx, regToken); !errors.Is(err, goTodo.ErrUnauthorized) {
				t.Fatalf("expected revoked token to fail, got %v", err)
			}
			if _, err := engine.Authenticate(ctx, loginToken); err != nil {
				t.Fatalf("other token must survive logout: %v", err)
			}

			deleted, err := engine.DeleteTodo(ctx, alice.ID, task.ID)
			if err != nil || deleted.ID != task.ID {
				t.Fatalf("DeleteTodo failed: %v", err)
			}
			list, err := engine.ListTodos(ctx, alice.ID)
			if err != nil || len(list) != 0 {
				t.Fatalf("expected empty list, got %v %v", list, err)
			}
		})
	}
}

func TestLoginThrottleAcrossBackends(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, done := mode.setup(t)
			defer done()
			engine := newEngine(t, rdb, func(cfg *goTodo.Config) {
				cfg.Security.EnableLoginThrottle = true
				cfg.Security.MaxLoginAttempts = 2
			})
			ctx := context.Background()

			if _, _, err := engine.Register(ctx, goTodo.RegisterRequest{Email: "t@it.io", Password: "right"}); err != nil {
				t.Fatalf("Register failed: %v", err)
			}
			for i := 0; i < 2; i++ {
				if _, _, err := engine.Login(ctx, "t@it.io", "wrong"); !errors.Is(err, goTodo.ErrInvalidCredentials) {
					t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
				}
			}
			if _, _, err := engine.Login(ctx, "t@it.io", "right"); !errors.Is(err, goTodo.ErrLoginRateLimited) {
				t.Fatalf("expected ErrLoginRateLimited, got %v", err)
			}
		})
	}
}
