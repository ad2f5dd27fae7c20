// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunRegister, RunLogin, RunAuthenticate, RunUpdateTodo,
// etc.) accepts a typed dependency struct and returns results without
// side-effects beyond those dependencies. The Engine builds the dependency
// sets once in Build and stays a thin mapping layer.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the account and todo stores, the token
// manager, the rate limiter, audit dispatch, and metrics. They do NOT own any
// of these resources; ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goTodo (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency interfaces.
package flows
