// Package middleware exposes HTTP middleware adapters built on top of
// goTodo.Engine.
//
// # Guards
//
//   - [RequireSession] reads the x-auth header (or an Authorization bearer
//     token), calls Engine.Authenticate, and injects the resulting
//     [goTodo.Principal] into the request context.
//   - [ClientIP] attaches the caller address used for throttling and audit.
//     X-Forwarded-For is honoured only when the caller opts in.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself; every decision is delegated to
// Engine.Authenticate.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from Engine.Authenticate.
package middleware
