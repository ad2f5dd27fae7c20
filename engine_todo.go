package goTodo

import (
	"context"

	internalflows "github.com/MrEthical07/goTodo/internal/flows"
	"github.com/MrEthical07/goTodo/todo"
)

var todoNotFound = todo.ErrNotFound

// CreateTodo stores a new incomplete task owned by callerID. Text is trimmed
// and must not be empty.
func (e *Engine) CreateTodo(ctx context.Context, callerID, text string) (*Todo, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	rec, err := internalflows.RunCreateTodo(ctx, callerID, text, e.flows.Todo)
	if err != nil {
		return nil, err
	}
	return toTodo(rec), nil
}

// ListTodos returns the caller's tasks, oldest first. The slice is empty, not
// nil, when the caller has none.
func (e *Engine) ListTodos(ctx context.Context, callerID string) ([]Todo, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	recs, err := internalflows.RunListTodos(ctx, callerID, e.flows.Todo)
	if err != nil {
		return nil, err
	}

	out := make([]Todo, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *toTodo(rec))
	}
	return out, nil
}

// GetTodo returns a task owned by callerID. Malformed, unknown, and foreign
// ids all yield [ErrNotFound].
func (e *Engine) GetTodo(ctx context.Context, callerID, id string) (*Todo, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	rec, err := internalflows.RunGetTodo(ctx, callerID, id, e.flows.Todo)
	if err != nil {
		return nil, err
	}
	return toTodo(rec), nil
}

// UpdateTodo applies patch to a task owned by callerID.
//
// Completion is set (with completedAt = now) only when patch.Completed is
// present and true. Any other patch, including one that only changes text,
// clears completion.
func (e *Engine) UpdateTodo(ctx context.Context, callerID, id string, patch TodoPatch) (*Todo, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	rec, err := internalflows.RunUpdateTodo(ctx, callerID, id, internalflows.TodoPatch{
		Text:      patch.Text,
		Completed: patch.Completed,
	}, e.flows.Todo)
	if err != nil {
		return nil, err
	}
	return toTodo(rec), nil
}

// DeleteTodo removes a task owned by callerID and returns its final state.
func (e *Engine) DeleteTodo(ctx context.Context, callerID, id string) (*Todo, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	rec, err := internalflows.RunDeleteTodo(ctx, callerID, id, e.flows.Todo)
	if err != nil {
		return nil, err
	}
	return toTodo(rec), nil
}

func toTodo(rec *todo.Record) *Todo {
	t := &Todo{
		ID:        rec.ID,
		Text:      rec.Text,
		Completed: rec.Completed,
		OwnerID:   rec.OwnerID,
	}
	if rec.Completed && rec.CompletedAt != nil {
		at := *rec.CompletedAt
		t.CompletedAt = &at
	}
	return t
}
