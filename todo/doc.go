// Package todo is the Redis-backed task store. Every read and write is
// filtered by owner; update and delete check the owner and mutate inside a
// single Lua script so a task can never be changed by another account.
//
// # Key layout
//
//	<prefix>:todo:<id>             HASH text, completed, completed_at, owner, created_at
//	<prefix>:owner:<owner>:todos   SET  task ids
package todo
