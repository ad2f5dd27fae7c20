// todo-loadtest drives a goTodo engine with concurrent authenticate and task
// traffic and prints per-phase latency percentiles. It uses miniredis unless
// --redis-addr or REDIS_ADDR names a real server.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goTodo "github.com/MrEthical07/goTodo"
	"github.com/MrEthical07/goTodo/account"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

type seededAccount struct {
	id    string
	token string
	todos []string
}

func main() {
	var (
		accounts    = pflag.Int("accounts", 200, "number of accounts to register")
		todosPer    = pflag.Int("todos", 5, "tasks seeded per account")
		concurrency = pflag.Int("concurrency", 64, "number of concurrent workers")
		ops         = pflag.Int("ops", 50000, "operations per phase")
		redisAddr   = pflag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = pflag.String("prefix", "loadtest", "store key prefix")
	)
	pflag.Parse()

	if *accounts <= 0 || *todosPer <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "accounts, todos, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	client, cleanup, err := connect(*redisAddr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	cfg := goTodo.DefaultConfig()
	cfg.Token.PrivateKey = []byte("loadtest-signing-secret-0123456789")
	cfg.Store.KeyPrefix = *prefix
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	engine, err := goTodo.New().WithConfig(cfg).WithRedis(client).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	ctx := context.Background()
	fmt.Printf("seeding %d accounts x %d tasks...\n", *accounts, *todosPer)
	startSeed := time.Now()
	seeded, err := seed(ctx, engine, *accounts, *todosPer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	authStats := runPhase(*ops, *concurrency, func(r *rand.Rand, _ int) error {
		a := seeded[r.Intn(len(seeded))]
		_, err := engine.Authenticate(ctx, a.token)
		return err
	})
	listStats := runPhase(*ops, *concurrency, func(r *rand.Rand, _ int) error {
		a := seeded[r.Intn(len(seeded))]
		_, err := engine.ListTodos(ctx, a.id)
		return err
	})
	completed := true
	updateStats := runPhase(*ops, *concurrency, func(r *rand.Rand, _ int) error {
		a := seeded[r.Intn(len(seeded))]
		id := a.todos[r.Intn(len(a.todos))]
		_, err := engine.UpdateTodo(ctx, a.id, id, goTodo.TodoPatch{Completed: &completed})
		return err
	})
	foreignStats := runPhase(*ops, *concurrency, func(r *rand.Rand, _ int) error {
		owner := seeded[r.Intn(len(seeded))]
		caller := seeded[r.Intn(len(seeded))]
		if caller.id == owner.id {
			return nil
		}
		if _, err := engine.GetTodo(ctx, caller.id, owner.todos[0]); err == nil {
			return fmt.Errorf("foreign task %s visible to %s", owner.todos[0], caller.id)
		}
		return nil
	})

	fmt.Println("---- results ----")
	printStats("authenticate", authStats)
	printStats("list", listStats)
	printStats("update", updateStats)
	printStats("foreign-get", foreignStats)

	sessions, err := countSessions(ctx, account.NewStore(client, *prefix), seeded)
	if err != nil {
		fmt.Fprintf(os.Stderr, "count sessions: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("sessions listed: %d across %d accounts\n", sessions, len(seeded))

	snap := engine.MetricsSnapshot()
	fmt.Printf("metrics: authenticate_success=%d rejected=%d todo_updated=%d not_found=%d store_failures=%d\n",
		snap.Counters[goTodo.MetricAuthenticateSuccess],
		snap.Counters[goTodo.MetricAuthenticateRejected],
		snap.Counters[goTodo.MetricTodoUpdated],
		snap.Counters[goTodo.MetricTodoNotFound],
		snap.Counters[goTodo.MetricStoreFailure],
	)
}

func connect(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		fmt.Printf("using redis at %s\n", addr)
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start miniredis: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	fmt.Printf("using miniredis at %s\n", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

func seed(ctx context.Context, engine *goTodo.Engine, n, todosPer int) ([]seededAccount, error) {
	out := make([]seededAccount, n)
	for i := range out {
		acct, token, err := engine.Register(ctx, goTodo.RegisterRequest{
			Email:    fmt.Sprintf("user-%d@loadtest.local", i),
			Password: "loadtest",
		})
		if err != nil {
			return nil, fmt.Errorf("register %d: %w", i, err)
		}
		out[i] = seededAccount{id: acct.ID, token: token, todos: make([]string, 0, todosPer)}
		for j := 0; j < todosPer; j++ {
			t, err := engine.CreateTodo(ctx, acct.ID, fmt.Sprintf("task %d", j))
			if err != nil {
				return nil, fmt.Errorf("create todo %d/%d: %w", i, j, err)
			}
			out[i].todos = append(out[i].todos, t.ID)
		}
	}
	return out, nil
}

// runPhase executes ops calls of fn across concurrency workers.
// countSessions sums the token list length of every seeded account.
func countSessions(ctx context.Context, store *account.Store, seeded []seededAccount) (int, error) {
	total := 0
	for _, a := range seeded {
		tokens, err := store.Tokens(ctx, a.id)
		if err != nil {
			return 0, err
		}
		total += len(tokens)
	}
	return total, nil
}

func runPhase(ops, concurrency int, fn func(r *rand.Rand, i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			local := make([]time.Duration, 0, ops/concurrency+1)
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					break
				}
				t0 := time.Now()
				if err := fn(r, i); err != nil {
					atomic.AddInt64(&failures, 1)
				}
				local = append(local, time.Since(t0))
			}
			mu.Lock()
			latencies = append(latencies, local...)
			mu.Unlock()
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total, failures: failures}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(sorted []time.Duration, p int) time.Duration {
	switch {
	case len(sorted) == 0:
		return 0
	case p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[len(sorted)-1]
	}
	return sorted[(len(sorted)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%-13s ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
