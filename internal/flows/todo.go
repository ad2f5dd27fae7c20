package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goTodo/todo"
	"github.com/google/uuid"
)

// TodoMetrics carries metric IDs needed by todo flows.
type TodoMetrics struct {
	Created      int
	Updated      int
	Deleted      int
	NotFound     int
	StoreFailure int
}

// TodoErrors carries host-level sentinel errors used by todo flows.
type TodoErrors struct {
	EngineNotReady error
	Validation     error
	NotFound       error
	Persistence    error
}

// TodoStore is the owner-scoped task persistence used by the todo flows.
type TodoStore interface {
	Create(ctx context.Context, rec *todo.Record) error
	ListByOwner(ctx context.Context, ownerID string) ([]*todo.Record, error)
	GetByOwner(ctx context.Context, ownerID, id string) (*todo.Record, error)
	UpdateByOwner(ctx context.Context, ownerID, id string, ch todo.Changes) (*todo.Record, error)
	DeleteByOwner(ctx context.Context, ownerID, id string) (*todo.Record, error)
}

// TodoDeps captures task flow dependencies.
type TodoDeps struct {
	Todos         TodoStore
	Now           func() time.Time
	NewID         func() string
	StoreNotFound error

	MetricInc func(int)
	Warn      func(string, ...any)

	Metrics TodoMetrics
	Errors  TodoErrors
}

// TodoPatch is the flow-local update input. Only these two fields can change.
type TodoPatch struct {
	Text      *string
	Completed *bool
}

func normalizeTodoDeps(deps *TodoDeps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
}

// ValidTodoID reports whether id is a canonical UUID string.
func ValidTodoID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// ChangesFromPatch converts p into store changes. Completion is set only when
// p.Completed is present and true; in every other case, including a patch that
// only carries text, completion is cleared.
func ChangesFromPatch(p TodoPatch, now time.Time) todo.Changes {
	ch := todo.Changes{Text: p.Text}
	if p.Completed != nil && *p.Completed {
		at := now.UnixMilli()
		ch.Completed = true
		ch.CompletedAt = &at
	}
	return ch
}

// RunCreateTodo stores a new incomplete task owned by ownerID.
func RunCreateTodo(ctx context.Context, ownerID, text string, deps TodoDeps) (*todo.Record, error) {
	normalizeTodoDeps(&deps)
	if deps.Todos == nil {
		return nil, deps.Errors.EngineNotReady
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", deps.Errors.Validation)
	}

	rec := &todo.Record{
		ID:        deps.NewID(),
		Text:      text,
		OwnerID:   ownerID,
		CreatedAt: deps.Now().UnixMilli(),
	}
	if err := deps.Todos.Create(ctx, rec); err != nil {
		return nil, mapTodoStoreError(err, deps)
	}

	deps.MetricInc(deps.Metrics.Created)
	return rec, nil
}

// RunListTodos returns every task owned by ownerID. The result is never nil.
func RunListTodos(ctx context.Context, ownerID string, deps TodoDeps) ([]*todo.Record, error) {
	normalizeTodoDeps(&deps)
	if deps.Todos == nil {
		return nil, deps.Errors.EngineNotReady
	}

	list, err := deps.Todos.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, mapTodoStoreError(err, deps)
	}
	if list == nil {
		list = []*todo.Record{}
	}
	return list, nil
}

// RunGetTodo returns the task when it exists and ownerID owns it.
func RunGetTodo(ctx context.Context, ownerID, id string, deps TodoDeps) (*todo.Record, error) {
	normalizeTodoDeps(&deps)
	if deps.Todos == nil {
		return nil, deps.Errors.EngineNotReady
	}
	if !ValidTodoID(id) {
		deps.MetricInc(deps.Metrics.NotFound)
		return nil, deps.Errors.NotFound
	}

	rec, err := deps.Todos.GetByOwner(ctx, ownerID, id)
	if err != nil {
		return nil, mapTodoStoreError(err, deps)
	}
	return rec, nil
}

// RunUpdateTodo applies p to the task owned by ownerID.
func RunUpdateTodo(ctx context.Context, ownerID, id string, p TodoPatch, deps TodoDeps) (*todo.Record, error) {
	normalizeTodoDeps(&deps)
	if deps.Todos == nil {
		return nil, deps.Errors.EngineNotReady
	}
	if !ValidTodoID(id) {
		deps.MetricInc(deps.Metrics.NotFound)
		return nil, deps.Errors.NotFound
	}

	if p.Text != nil {
		trimmed := strings.TrimSpace(*p.Text)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: text must not be empty", deps.Errors.Validation)
		}
		p.Text = &trimmed
	}

	rec, err := deps.Todos.UpdateByOwner(ctx, ownerID, id, ChangesFromPatch(p, deps.Now()))
	if err != nil {
		return nil, mapTodoStoreError(err, deps)
	}

	deps.MetricInc(deps.Metrics.Updated)
	return rec, nil
}

// RunDeleteTodo removes the task owned by ownerID and returns its last state.
func RunDeleteTodo(ctx context.Context, ownerID, id string, deps TodoDeps) (*todo.Record, error) {
	normalizeTodoDeps(&deps)
	if deps.Todos == nil {
		return nil, deps.Errors.EngineNotReady
	}
	if !ValidTodoID(id) {
		deps.MetricInc(deps.Metrics.NotFound)
		return nil, deps.Errors.NotFound
	}

	rec, err := deps.Todos.DeleteByOwner(ctx, ownerID, id)
	if err != nil {
		return nil, mapTodoStoreError(err, deps)
	}

	deps.MetricInc(deps.Metrics.Deleted)
	return rec, nil
}

func mapTodoStoreError(err error, deps TodoDeps) error {
	if deps.StoreNotFound != nil && errors.Is(err, deps.StoreNotFound) {
		deps.MetricInc(deps.Metrics.NotFound)
		return deps.Errors.NotFound
	}
	deps.MetricInc(deps.Metrics.StoreFailure)
	deps.Warn("goTodo: todo store failed", "error", err)
	return fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
}
