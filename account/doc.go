// Package account is the Redis-backed credential store: account records, the
// case-insensitive email index, and each account's list of live session
// tokens.
//
// # Key layout
//
//	<prefix>:acct:<id>            HASH  email, password_hash, created_at
//	<prefix>:acct:email:<email>   STRING account id (lower-cased email)
//	<prefix>:acct:<id>:tokens     LIST  "<purpose>:<token>" entries
//
// Email uniqueness is enforced by a single Lua script, so concurrent
// registrations of the same address cannot both succeed.
package account
