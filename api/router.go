package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	goTodo "github.com/MrEthical07/goTodo"
	"github.com/MrEthical07/goTodo/middleware"
	"github.com/gorilla/mux"
)

// Engine is the subset of *goTodo.Engine used by the handlers.
type Engine interface {
	middleware.Authenticator

	Register(ctx context.Context, req goTodo.RegisterRequest) (*goTodo.Account, string, error)
	Login(ctx context.Context, email, password string) (*goTodo.Account, string, error)
	CurrentAccount(ctx context.Context, accountID string) (*goTodo.Account, error)
	Logout(ctx context.Context, accountID, token string) error

	CreateTodo(ctx context.Context, callerID, text string) (*goTodo.Todo, error)
	ListTodos(ctx context.Context, callerID string) ([]goTodo.Todo, error)
	GetTodo(ctx context.Context, callerID, id string) (*goTodo.Todo, error)
	UpdateTodo(ctx context.Context, callerID, id string, patch goTodo.TodoPatch) (*goTodo.Todo, error)
	DeleteTodo(ctx context.Context, callerID, id string) (*goTodo.Todo, error)

	Health(ctx context.Context) (time.Duration, error)
}

// Options configures [NewRouter].
type Options struct {
	// Logger receives access log lines. Defaults to slog.Default().
	Logger *slog.Logger
	// Metrics is mounted at GET /metrics when non-nil.
	Metrics http.Handler
	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64
	// TrustForwardedFor keys throttling and audit on the first
	// X-Forwarded-For hop instead of RemoteAddr. Set it only behind a
	// proxy that rewrites the header.
	TrustForwardedFor bool
}

const defaultMaxBodyBytes = 1 << 20

// NewRouter builds the HTTP router for engine.
func NewRouter(engine Engine, opts Options) *mux.Router {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	h := &handlers{
		engine:       engine,
		logger:       opts.Logger,
		maxBodyBytes: opts.MaxBodyBytes,
	}
	auth := middleware.RequireSession(engine)

	r := mux.NewRouter()
	r.Use(middleware.ClientIP(opts.TrustForwardedFor), exposeAuthHeader, accessLog(opts.Logger))

	r.Handle("/todos", auth(http.HandlerFunc(h.createTodo))).Methods(http.MethodPost)
	r.Handle("/todos", auth(http.HandlerFunc(h.listTodos))).Methods(http.MethodGet)
	r.Handle("/todos/{id}", auth(http.HandlerFunc(h.getTodo))).Methods(http.MethodGet)
	r.Handle("/todos/{id}", auth(http.HandlerFunc(h.deleteTodo))).Methods(http.MethodDelete)
	r.Handle("/todos/{id}", auth(http.HandlerFunc(h.updateTodo))).Methods(http.MethodPatch)

	r.HandleFunc("/users", h.register).Methods(http.MethodPost)
	r.Handle("/users/me", auth(http.HandlerFunc(h.me))).Methods(http.MethodGet)
	r.HandleFunc("/users/login", h.login).Methods(http.MethodPost)
	r.Handle("/users/me/token", auth(http.HandlerFunc(h.logout))).Methods(http.MethodDelete)

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics).Methods(http.MethodGet)
	}

	return r
}

type handlers struct {
	engine       Engine
	logger       *slog.Logger
	maxBodyBytes int64
}
