// Package goTodo is a multi-tenant task-list engine: account registration and
// login with signed session tokens that can be revoked server-side, plus
// owner-scoped task CRUD.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Trust model
//
// A session token is accepted only when its signature verifies, its purpose
// is "auth", and it is still present on the owning account's token list.
// Logout removes one list entry, so a signature-valid token stops working
// immediately.
//
// # Ownership
//
// Every task operation filters by the caller's account id inside a single
// store operation. A task owned by another account is reported as
// [ErrNotFound], never as a permission error.
//
// # Layout
//
// Storage lives in the account and todo packages, token signing in jwt,
// hashing in password. HTTP concerns are in middleware and api. Flow
// orchestration, rate limiting, audit dispatch and metric storage live
// under internal/.
package goTodo
