package goTodo_test

import (
	"context"
	"fmt"
	"net/http"

	goTodo "github.com/MrEthical07/goTodo"
	"github.com/MrEthical07/goTodo/api"
	"github.com/MrEthical07/goTodo/metrics/export/prometheus"
	"github.com/redis/go-redis/v9"
)

// ExampleNew builds an engine and serves the REST API.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	cfg := goTodo.DefaultConfig()
	cfg.Token.PrivateKey = []byte("replace-with-a-real-secret")
	cfg.Metrics.Enabled = true

	engine, err := goTodo.New().WithConfig(cfg).WithRedis(rdb).Build()
	if err != nil {
		return
	}
	defer engine.Close()

	handler := api.NewRouter(engine, api.Options{
		Metrics: prometheus.NewPrometheusExporter(engine).Handler(),
	})
	_ = http.ListenAndServe(":8080", handler)
}

// ExampleEngine_Register registers an account and reuses its token.
func ExampleEngine_Register() {
	var engine *goTodo.Engine
	ctx := context.Background()

	acct, token, err := engine.Register(ctx, goTodo.RegisterRequest{Email: "a@example.com", Password: "secret"})
	if err != nil {
		return
	}
	p, err := engine.Authenticate(ctx, token)
	if err != nil {
		return
	}
	fmt.Println(p.AccountID == acct.ID)
}

// ExampleEngine_UpdateTodo completes a task. Omitting Completed clears
// completion.
func ExampleEngine_UpdateTodo() {
	var engine *goTodo.Engine
	done := true
	_, _ = engine.UpdateTodo(context.Background(), "account-id", "todo-id", goTodo.TodoPatch{Completed: &done})
}
