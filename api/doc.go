// Package api is the JSON HTTP surface of goTodo.
//
// [NewRouter] mounts the account routes (/users...), the owner-scoped task
// routes (/todos...), /healthz, and optionally /metrics on a gorilla/mux
// router. Authenticated routes are wrapped with middleware.RequireSession;
// every other decision is delegated to the engine, and engine errors are
// mapped to status codes in one place ([StatusFor]).
package api
